package audit

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/doeshing/cortex-shell/internal/domain"
	"github.com/doeshing/cortex-shell/internal/ports"
)

// SQLiteMirror keeps a queryable copy of the audit trail.
type SQLiteMirror struct {
	db   *sql.DB
	path string
	mu   sync.Mutex
}

var _ ports.AuditReader = (*SQLiteMirror)(nil)

// OpenSQLiteMirror creates (or opens) the database at path.
func OpenSQLiteMirror(path string) (*SQLiteMirror, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), domain.DirectoryPermissions); err != nil {
			return nil, fmt.Errorf("create audit db dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open audit db: %w", err)
	}
	db.SetMaxOpenConns(1)
	mirror := &SQLiteMirror{db: db, path: path}
	if err := mirror.init(); err != nil {
		db.Close()
		return nil, err
	}
	return mirror, nil
}

func (m *SQLiteMirror) init() error {
	_, err := m.db.Exec(`CREATE TABLE IF NOT EXISTS audit_entries (
		id TEXT PRIMARY KEY,
		timestamp TEXT NOT NULL,
		session_id TEXT NOT NULL,
		user TEXT NOT NULL,
		kind TEXT NOT NULL,
		details TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS audit_entries_kind ON audit_entries(kind);`)
	if err != nil {
		return fmt.Errorf("init audit db: %w", err)
	}
	return nil
}

// Insert stores one entry.
func (m *SQLiteMirror) Insert(entry domain.AuditEntry) error {
	if m.db == nil {
		return errors.New("audit db is closed")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	_, err := m.db.Exec(`INSERT INTO audit_entries (id, timestamp, session_id, user, kind, details)
		VALUES (?, ?, ?, ?, ?, ?)`,
		entry.ID,
		entry.Timestamp.Format(time.RFC3339),
		entry.SessionID,
		entry.User,
		entry.Kind.String(),
		entry.Details,
	)
	return err
}

// Recent returns the last n entries, oldest first.
func (m *SQLiteMirror) Recent(n int) ([]domain.AuditEntry, error) {
	if n <= 0 {
		return m.All()
	}
	entries, err := m.query(`SELECT id, timestamp, session_id, user, kind, details FROM audit_entries
		ORDER BY id DESC LIMIT ?`, n)
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}
	return entries, nil
}

// All returns every entry in insertion order. ULIDs sort by time.
func (m *SQLiteMirror) All() ([]domain.AuditEntry, error) {
	return m.query(`SELECT id, timestamp, session_id, user, kind, details FROM audit_entries ORDER BY id`)
}

// ByKind returns the entries of one kind.
func (m *SQLiteMirror) ByKind(kind domain.AuditKind) ([]domain.AuditEntry, error) {
	return m.query(`SELECT id, timestamp, session_id, user, kind, details FROM audit_entries
		WHERE kind = ? ORDER BY id`, kind.String())
}

// Clear deletes every entry.
func (m *SQLiteMirror) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, err := m.db.Exec("DELETE FROM audit_entries")
	return err
}

// Path returns the database path.
func (m *SQLiteMirror) Path() string {
	return m.path
}

// Close releases the database handle.
func (m *SQLiteMirror) Close() error {
	return m.db.Close()
}

func (m *SQLiteMirror) query(stmt string, args ...interface{}) ([]domain.AuditEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rows, err := m.db.Query(stmt, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var entries []domain.AuditEntry
	for rows.Next() {
		var (
			entry      domain.AuditEntry
			ts, kindNm string
		)
		if err := rows.Scan(&entry.ID, &ts, &entry.SessionID, &entry.User, &kindNm, &entry.Details); err != nil {
			return nil, err
		}
		if t, err := time.Parse(time.RFC3339, ts); err == nil {
			entry.Timestamp = t
		}
		entry.Kind, _ = domain.ParseAuditKind(kindNm)
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// Package audit records security-relevant events to an append-only text log,
// optionally mirrored into SQLite.
//
// Each line has the form
//
//	[2006-01-02 15:04:05] [<session>] [<user>] [<KIND>] <details>
//
// with newlines in details flattened to spaces.
package audit

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"os/user"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/doeshing/cortex-shell/internal/domain"
	"github.com/doeshing/cortex-shell/internal/ports"
)

// ErrDisabled is returned by the read views while auditing is off.
var ErrDisabled = errors.New("audit logging is disabled")

const (
	defaultFileName = ".cortexcli_audit.log"
	fallbackPath    = "/tmp/cortexcli_audit.log"
)

// DefaultPath returns $HOME/.cortexcli_audit.log, or a /tmp path when home is
// empty.
func DefaultPath(home string) string {
	if strings.TrimSpace(home) == "" {
		return fallbackPath
	}
	return filepath.Join(home, defaultFileName)
}

// Options configures a FileSink.
type Options struct {
	Path    string
	Enabled bool
	// Mirror receives a copy of every entry when set.
	Mirror *SQLiteMirror
	Logger ports.Logger
}

// FileSink appends entries to a text log. It is safe for concurrent use.
type FileSink struct {
	mu        sync.Mutex
	path      string
	enabled   bool
	sessionID string
	user      string
	mirror    *SQLiteMirror
	logger    ports.Logger
	now       func() time.Time
}

var (
	_ ports.AuditSink   = (*FileSink)(nil)
	_ ports.AuditReader = (*FileSink)(nil)
)

// NewFileSink builds a sink. The session id is "<unix seconds>_<pid>".
func NewFileSink(opts Options) *FileSink {
	path := opts.Path
	if strings.TrimSpace(path) == "" {
		home, _ := os.UserHomeDir()
		path = DefaultPath(home)
	}
	return &FileSink{
		path:      path,
		enabled:   opts.Enabled,
		sessionID: fmt.Sprintf("%d_%d", time.Now().Unix(), os.Getpid()),
		user:      currentUser(),
		mirror:    opts.Mirror,
		logger:    opts.Logger,
		now:       time.Now,
	}
}

// Log records an entry attributed to the current user.
func (s *FileSink) Log(kind domain.AuditKind, details string) {
	s.LogAs(kind, details, s.user)
}

// LogAs records an entry attributed to user. Write failures are logged and
// otherwise ignored so that auditing never interrupts the shell.
func (s *FileSink) LogAs(kind domain.AuditKind, details, user string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.enabled {
		return
	}
	if strings.TrimSpace(user) == "" {
		user = "unknown"
	}
	entry := domain.AuditEntry{
		ID:        ulid.Make().String(),
		Timestamp: s.now().Truncate(time.Second),
		SessionID: s.sessionID,
		Kind:      kind,
		Details:   sanitize(details),
		User:      user,
	}
	if err := s.append(entry); err != nil {
		s.warn("audit write failed", err)
	}
	if s.mirror != nil {
		if err := s.mirror.Insert(entry); err != nil {
			s.warn("audit mirror write failed", err)
		}
	}
}

func (s *FileSink) append(entry domain.AuditEntry) error {
	if dir := filepath.Dir(s.path); dir != "" {
		if err := os.MkdirAll(dir, domain.DirectoryPermissions); err != nil {
			return err
		}
	}
	file, err := os.OpenFile(s.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, domain.SecureFilePermissions)
	if err != nil {
		return err
	}
	defer file.Close()
	_, err = file.WriteString(formatLine(entry))
	return err
}

// Recent returns the last n entries, oldest first.
func (s *FileSink) Recent(n int) ([]domain.AuditEntry, error) {
	entries, err := s.All()
	if err != nil {
		return nil, err
	}
	if n > 0 && len(entries) > n {
		entries = entries[len(entries)-n:]
	}
	return entries, nil
}

// All returns every parseable entry in file order.
func (s *FileSink) All() ([]domain.AuditEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.enabled {
		return nil, ErrDisabled
	}
	file, err := os.Open(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open audit log: %w", err)
	}
	defer file.Close()

	var entries []domain.AuditEntry
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		if entry, ok := parseLine(scanner.Text()); ok {
			entries = append(entries, entry)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read audit log: %w", err)
	}
	return entries, nil
}

// ByKind returns the entries of one kind.
func (s *FileSink) ByKind(kind domain.AuditKind) ([]domain.AuditEntry, error) {
	entries, err := s.All()
	if err != nil {
		return nil, err
	}
	var out []domain.AuditEntry
	for _, e := range entries {
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	return out, nil
}

// Clear truncates the log and the mirror.
func (s *FileSink) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.enabled {
		return ErrDisabled
	}
	if err := os.WriteFile(s.path, nil, domain.SecureFilePermissions); err != nil {
		return fmt.Errorf("clear audit log: %w", err)
	}
	if s.mirror != nil {
		return s.mirror.Clear()
	}
	return nil
}

// SetEnabled toggles recording.
func (s *FileSink) SetEnabled(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.enabled = enabled
}

// Enabled reports whether recording is on.
func (s *FileSink) Enabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enabled
}

// Path returns the log file path.
func (s *FileSink) Path() string {
	return s.path
}

// SessionID returns the id stamped on this process's entries.
func (s *FileSink) SessionID() string {
	return s.sessionID
}

// Mirror returns the SQLite mirror, or nil.
func (s *FileSink) Mirror() *SQLiteMirror {
	return s.mirror
}

func (s *FileSink) warn(msg string, err error) {
	if s.logger != nil {
		s.logger.Warn(msg, map[string]interface{}{"path": s.path, "error": err.Error()})
	}
}

func formatLine(entry domain.AuditEntry) string {
	return fmt.Sprintf("[%s] [%s] [%s] [%s] %s\n",
		entry.Timestamp.Format(domain.AuditTimestampFormat),
		entry.SessionID,
		entry.User,
		entry.Kind,
		entry.Details,
	)
}

func parseLine(line string) (domain.AuditEntry, bool) {
	fields := make([]string, 0, 4)
	rest := line
	for i := 0; i < 4; i++ {
		if !strings.HasPrefix(rest, "[") {
			return domain.AuditEntry{}, false
		}
		end := strings.Index(rest, "] ")
		if end < 0 {
			if !strings.HasSuffix(rest, "]") || i != 3 {
				return domain.AuditEntry{}, false
			}
			end = len(rest) - 1
		}
		fields = append(fields, rest[1:end])
		rest = rest[min(end+2, len(rest)):]
	}
	ts, err := time.ParseInLocation(domain.AuditTimestampFormat, fields[0], time.Local)
	if err != nil {
		return domain.AuditEntry{}, false
	}
	kind, ok := domain.ParseAuditKind(fields[3])
	if !ok {
		return domain.AuditEntry{}, false
	}
	return domain.AuditEntry{
		Timestamp: ts,
		SessionID: fields[1],
		User:      fields[2],
		Kind:      kind,
		Details:   rest,
	}, true
}

func sanitize(details string) string {
	return strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ").Replace(details)
}

func currentUser() string {
	if u, err := user.Current(); err == nil && u.Username != "" {
		return u.Username
	}
	if name := os.Getenv("USER"); name != "" {
		return name
	}
	return "unknown"
}

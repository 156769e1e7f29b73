// Package history keeps the command lines entered in the shell and expands
// "!!" and "!N" replays.
package history

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/doeshing/cortex-shell/internal/domain"
)

var (
	// ErrNoHistory is returned when replaying from an empty history.
	ErrNoHistory = errors.New("No history available")
	// ErrHistoryIndex is returned for "!N" outside the recorded range.
	ErrHistoryIndex = errors.New("Invalid history number")
	// ErrHistorySyntax is returned for any other "!" form.
	ErrHistorySyntax = errors.New("Unknown history syntax")
)

// Store holds at most size entries, oldest first. When a path is set, each
// entry is appended to it and the file seeds the store on open.
type Store struct {
	mu      sync.Mutex
	entries []string
	size    int
	path    string
}

// NewStore builds an in-memory store.
func NewStore(size int) *Store {
	if size <= 0 {
		size = domain.DefaultHistorySize
	}
	return &Store{size: size}
}

// OpenFileStore builds a store persisted to path, loading existing entries.
func OpenFileStore(path string, size int) (*Store, error) {
	s := NewStore(size)
	s.path = path
	file, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open history: %w", err)
	}
	defer file.Close()
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			s.push(line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read history: %w", err)
	}
	return s, nil
}

// Add records a line. Blank lines are ignored.
func (s *Store) Add(line string) error {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.push(line)
	if s.path == "" {
		return nil
	}
	return s.appendFile(line)
}

func (s *Store) push(line string) {
	s.entries = append(s.entries, line)
	if over := len(s.entries) - s.size; over > 0 {
		s.entries = append([]string(nil), s.entries[over:]...)
	}
}

func (s *Store) appendFile(line string) error {
	if err := os.MkdirAll(filepath.Dir(s.path), domain.DirectoryPermissions); err != nil {
		return err
	}
	file, err := os.OpenFile(s.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, domain.SecureFilePermissions)
	if err != nil {
		return err
	}
	defer file.Close()
	_, err = file.WriteString(line + "\n")
	return err
}

// Entries returns a copy of the recorded lines, oldest first.
func (s *Store) Entries() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.entries...)
}

// Len returns the number of recorded lines.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// IsReplay reports whether line is a history replay request.
func IsReplay(line string) bool {
	return strings.HasPrefix(strings.TrimSpace(line), "!")
}

// Expand resolves "!!" to the last entry and "!N" to the N-th entry
// (1-based).
func (s *Store) Expand(line string) (string, error) {
	line = strings.TrimSpace(line)
	s.mu.Lock()
	defer s.mu.Unlock()
	if line == "!!" {
		if len(s.entries) == 0 {
			return "", ErrNoHistory
		}
		return s.entries[len(s.entries)-1], nil
	}
	raw, ok := strings.CutPrefix(line, "!")
	if !ok || raw == "" {
		return "", ErrHistorySyntax
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return "", ErrHistorySyntax
	}
	if len(s.entries) == 0 {
		return "", ErrNoHistory
	}
	if n < 1 || n > len(s.entries) {
		return "", ErrHistoryIndex
	}
	return s.entries[n-1], nil
}

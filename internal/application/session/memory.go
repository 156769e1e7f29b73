// Package session keeps the short conversational memory replayed to the AI
// backend as context.
package session

import (
	"strings"

	"github.com/doeshing/cortex-shell/internal/domain"
)

// Memory is a fixed-capacity ring of exchanges. Pushing into a full ring
// evicts the oldest exchange.
type Memory struct {
	items []domain.SessionExchange
	start int
	count int
}

// NewMemory returns a ring holding at most capacity exchanges. A non-positive
// capacity uses domain.SessionMemorySize.
func NewMemory(capacity int) *Memory {
	if capacity <= 0 {
		capacity = domain.SessionMemorySize
	}
	return &Memory{items: make([]domain.SessionExchange, capacity)}
}

// Capacity returns the maximum number of retained exchanges.
func (m *Memory) Capacity() int {
	return len(m.items)
}

// Len returns the number of retained exchanges.
func (m *Memory) Len() int {
	return m.count
}

// Push records an exchange. Only the first line of response is kept and
// newlines in input are flattened to spaces.
func (m *Memory) Push(input, response string) {
	exchange := domain.SessionExchange{
		Input:    flatten(input),
		Response: firstLine(response),
	}
	if m.count < len(m.items) {
		m.items[(m.start+m.count)%len(m.items)] = exchange
		m.count++
		return
	}
	m.items[m.start] = exchange
	m.start = (m.start + 1) % len(m.items)
}

// Oldest returns the earliest retained exchange.
func (m *Memory) Oldest() (domain.SessionExchange, bool) {
	if m.count == 0 {
		return domain.SessionExchange{}, false
	}
	return m.items[m.start], true
}

// Newest returns the most recent exchange.
func (m *Memory) Newest() (domain.SessionExchange, bool) {
	if m.count == 0 {
		return domain.SessionExchange{}, false
	}
	return m.items[(m.start+m.count-1)%len(m.items)], true
}

// Each visits exchanges oldest first.
func (m *Memory) Each(fn func(domain.SessionExchange)) {
	for i := 0; i < m.count; i++ {
		fn(m.items[(m.start+i)%len(m.items)])
	}
}

// Snapshot copies the retained exchanges, oldest first.
func (m *Memory) Snapshot() []domain.SessionExchange {
	out := make([]domain.SessionExchange, 0, m.count)
	m.Each(func(e domain.SessionExchange) {
		out = append(out, e)
	})
	return out
}

// Clear forgets every exchange.
func (m *Memory) Clear() {
	for i := range m.items {
		m.items[i] = domain.SessionExchange{}
	}
	m.start, m.count = 0, 0
}

func firstLine(text string) string {
	text = strings.TrimSpace(text)
	if idx := strings.IndexByte(text, '\n'); idx >= 0 {
		text = text[:idx]
	}
	return strings.TrimRight(text, "\r")
}

func flatten(text string) string {
	text = strings.TrimSpace(text)
	return strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ").Replace(text)
}

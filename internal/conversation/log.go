// Package conversation holds the append-only log of a chat session.
package conversation

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/suykerbuyk/devflow/internal/segment"
)

// ErrEmptySubmission is returned when a user submission is blank.
var ErrEmptySubmission = errors.New("empty submission")

// Role tags who authored an entry.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Entry is one message in the log. Content is stored exactly as submitted
// or as returned by the model.
type Entry struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// Segments returns the display segments of an assistant entry.
// User entries are rendered as literal text and yield nil.
func (e Entry) Segments() []segment.Segment {
	if e.Role != RoleAssistant {
		return nil
	}
	return segment.Parse(e.Content)
}

// Log is an ordered, append-only sequence of entries. It is safe for
// concurrent use; appends are applied in the order they acquire the lock.
type Log struct {
	mu      sync.RWMutex
	entries []Entry
	now     func() time.Time
}

// NewLog returns an empty log.
func NewLog() *Log {
	return &Log{now: time.Now}
}

// Restore returns a log seeded with previously recorded entries.
func Restore(entries []Entry) *Log {
	l := NewLog()
	l.entries = append([]Entry(nil), entries...)
	return l
}

// AppendUser appends a user entry. Blank text is rejected with
// ErrEmptySubmission and leaves the log unchanged.
func (l *Log) AppendUser(text string) (Entry, error) {
	if strings.TrimSpace(text) == "" {
		return Entry{}, ErrEmptySubmission
	}
	return l.append(RoleUser, text), nil
}

// AppendAssistant appends the model's reply unmodified.
func (l *Log) AppendAssistant(text string) Entry {
	return l.append(RoleAssistant, text)
}

func (l *Log) append(role Role, text string) Entry {
	l.mu.Lock()
	defer l.mu.Unlock()

	e := Entry{Role: role, Content: text, CreatedAt: l.now()}
	l.entries = append(l.entries, e)
	return e
}

// Entries returns a snapshot of the log in append order.
func (l *Log) Entries() []Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Len returns the number of entries.
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}

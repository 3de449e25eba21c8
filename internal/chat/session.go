// Package chat runs conversation turns: a user submission is logged, sent to
// the completion provider, and the reply is logged for display.
package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/suykerbuyk/devflow/internal/completion"
	"github.com/suykerbuyk/devflow/internal/conversation"
	"github.com/suykerbuyk/devflow/internal/logging"
	"github.com/suykerbuyk/devflow/internal/segment"
)

// ErrNoReply is returned when the provider answers with blank text.
var ErrNoReply = errors.New("completion returned no reply")

// Recorder persists entries as they are appended.
type Recorder interface {
	Record(ctx context.Context, sessionID string, seq int, e conversation.Entry) error
}

// Turn is one log entry prepared for rendering. User turns carry their
// literal text; assistant turns carry segments.
type Turn struct {
	Role     conversation.Role
	Text     string
	Segments []segment.Segment
}

// Session owns one conversation log.
type Session struct {
	id  string
	log *conversation.Log

	// turnMu serializes Submit so each reply is appended right after the
	// user entry that produced it.
	turnMu    sync.Mutex
	completer completion.Completer

	recorder Recorder
	logger   *zap.Logger
}

// Option configures a Session.
type Option func(*Session)

// WithRecorder records every appended entry.
func WithRecorder(r Recorder) Option {
	return func(s *Session) { s.recorder = r }
}

// WithLogger sets the session logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Session) { s.logger = l }
}

// WithID resumes a session under an existing ID.
func WithID(id string) Option {
	return func(s *Session) { s.id = id }
}

// WithHistory seeds the log with earlier entries.
func WithHistory(entries []conversation.Entry) Option {
	return func(s *Session) { s.log = conversation.Restore(entries) }
}

// New starts a session with an empty log.
func New(c completion.Completer, opts ...Option) *Session {
	s := &Session{
		id:        uuid.NewString(),
		log:       conversation.NewLog(),
		completer: c,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = logging.OrNop(s.logger).With(zap.String("session", s.id))
	return s
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Entries returns a snapshot of the log.
func (s *Session) Entries() []conversation.Entry { return s.log.Entries() }

// SetCompleter replaces the completer used by later turns.
func (s *Session) SetCompleter(c completion.Completer) {
	s.turnMu.Lock()
	defer s.turnMu.Unlock()
	s.completer = c
}

// Submit runs one turn. Blank text returns conversation.ErrEmptySubmission
// without touching the log. When the provider fails, or replies with blank
// text, the user entry stays logged and no assistant entry is appended.
func (s *Session) Submit(ctx context.Context, text string) (conversation.Entry, error) {
	if strings.TrimSpace(text) == "" {
		return conversation.Entry{}, conversation.ErrEmptySubmission
	}

	s.turnMu.Lock()
	defer s.turnMu.Unlock()

	user, err := s.log.AppendUser(text)
	if err != nil {
		return conversation.Entry{}, err
	}
	s.record(ctx, user)

	reply, err := s.completer.Complete(ctx, text)
	if err != nil {
		s.logger.Warn("completion failed", zap.Error(err))
		return conversation.Entry{}, fmt.Errorf("complete: %w", err)
	}
	if strings.TrimSpace(reply) == "" {
		s.logger.Warn("completion returned blank reply")
		return conversation.Entry{}, ErrNoReply
	}

	asst := s.log.AppendAssistant(reply)
	s.record(ctx, asst)
	s.logger.Debug("turn completed", zap.Int("entries", s.log.Len()), zap.Int("reply_len", len(reply)))
	return asst, nil
}

// record persists e at its position in the log. Failures are logged and
// never fail the turn.
func (s *Session) record(ctx context.Context, e conversation.Entry) {
	if s.recorder == nil {
		return
	}
	seq := s.log.Len() - 1
	if err := s.recorder.Record(ctx, s.id, seq, e); err != nil {
		s.logger.Warn("could not record entry", zap.Int("seq", seq), zap.Error(err))
	}
}

// Turns returns every entry prepared for rendering, in log order.
func (s *Session) Turns() []Turn {
	entries := s.log.Entries()
	turns := make([]Turn, len(entries))
	for i, e := range entries {
		turns[i] = TurnOf(e)
	}
	return turns
}

// TurnOf prepares a single entry for rendering.
func TurnOf(e conversation.Entry) Turn {
	if e.Role == conversation.RoleAssistant {
		return Turn{Role: e.Role, Segments: e.Segments()}
	}
	return Turn{Role: e.Role, Text: e.Content}
}

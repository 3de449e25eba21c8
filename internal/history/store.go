// Package history records conversations in a local SQLite database so they
// can be listed, resumed and exported later.
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/suykerbuyk/devflow/internal/conversation"
	"github.com/suykerbuyk/devflow/internal/logging"
)

var (
	ErrNotFound  = errors.New("conversation not found")
	ErrAmbiguous = errors.New("conversation id prefix is ambiguous")
)

const schema = `
CREATE TABLE IF NOT EXISTS conversations (
	id TEXT PRIMARY KEY,
	title TEXT NOT NULL,
	started_at TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS entries (
	conversation_id TEXT NOT NULL REFERENCES conversations(id),
	seq INTEGER NOT NULL,
	role TEXT NOT NULL,
	content TEXT NOT NULL,
	created_at TEXT NOT NULL,
	PRIMARY KEY (conversation_id, seq)
);
CREATE INDEX IF NOT EXISTS idx_conversations_started ON conversations(started_at);
`

// Summary describes one stored conversation.
type Summary struct {
	ID        string
	Title     string
	StartedAt time.Time
	Entries   int
}

// Conversation is a stored conversation with its entries in order.
type Conversation struct {
	Summary
	Log []conversation.Entry
}

// Store is a SQLite-backed conversation history.
type Store struct {
	db     *sql.DB
	logger *zap.Logger
}

// Open creates or opens the history database at path.
func Open(path string, logger *zap.Logger) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create history dir: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open history: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init history schema: %w", err)
	}
	return &Store{db: db, logger: logging.OrNop(logger)}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Record stores one entry. The conversation row is created on first use,
// titled from the entry when it is a user submission.
func (s *Store) Record(ctx context.Context, convID string, seq int, e conversation.Entry) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	title := conversation.Title([]conversation.Entry{e})
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO conversations (id, title, started_at) VALUES (?, ?, ?)
		 ON CONFLICT(id) DO NOTHING`,
		convID, title, formatTime(e.CreatedAt)); err != nil {
		return fmt.Errorf("insert conversation: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO entries (conversation_id, seq, role, content, created_at) VALUES (?, ?, ?, ?, ?)`,
		convID, seq, string(e.Role), e.Content, formatTime(e.CreatedAt)); err != nil {
		return fmt.Errorf("insert entry %d: %w", seq, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	s.logger.Debug("recorded entry", zap.String("conversation", convID), zap.Int("seq", seq))
	return nil
}

// Import stores entries as conversation convID, keeping any seq that is
// already recorded. It returns how many entries were new, so importing a
// grown archive of a stored conversation adds only its tail.
func (s *Store) Import(ctx context.Context, convID string, entries []conversation.Entry) (int, error) {
	if len(entries) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO conversations (id, title, started_at) VALUES (?, ?, ?)
		 ON CONFLICT(id) DO NOTHING`,
		convID, conversation.Title(entries), formatTime(entries[0].CreatedAt)); err != nil {
		return 0, fmt.Errorf("insert conversation: %w", err)
	}

	added := 0
	for seq, e := range entries {
		res, err := tx.ExecContext(ctx,
			`INSERT INTO entries (conversation_id, seq, role, content, created_at) VALUES (?, ?, ?, ?, ?)
			 ON CONFLICT(conversation_id, seq) DO NOTHING`,
			convID, seq, string(e.Role), e.Content, formatTime(e.CreatedAt))
		if err != nil {
			return 0, fmt.Errorf("insert entry %d: %w", seq, err)
		}
		if n, err := res.RowsAffected(); err == nil {
			added += int(n)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	s.logger.Debug("imported conversation", zap.String("conversation", convID), zap.Int("added", added))
	return added, nil
}

// List returns the most recent conversations first. A limit of zero or
// less returns all of them.
func (s *Store) List(ctx context.Context, limit int) ([]Summary, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT c.id, c.title, c.started_at, COUNT(e.seq)
		 FROM conversations c LEFT JOIN entries e ON e.conversation_id = c.id
		 GROUP BY c.id
		 ORDER BY c.started_at DESC, c.id
		 LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}
	defer rows.Close()

	var out []Summary
	for rows.Next() {
		var sum Summary
		var started string
		if err := rows.Scan(&sum.ID, &sum.Title, &started, &sum.Entries); err != nil {
			return nil, fmt.Errorf("scan conversation: %w", err)
		}
		sum.StartedAt = parseTime(started)
		out = append(out, sum)
	}
	return out, rows.Err()
}

// Load returns the conversation whose ID starts with idPrefix. The prefix
// must identify exactly one conversation.
func (s *Store) Load(ctx context.Context, idPrefix string) (*Conversation, error) {
	if idPrefix == "" {
		return nil, ErrNotFound
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, started_at FROM conversations
		 WHERE substr(id, 1, ?) = ? LIMIT 2`, len(idPrefix), idPrefix)
	if err != nil {
		return nil, fmt.Errorf("find conversation: %w", err)
	}
	var matches []Summary
	for rows.Next() {
		var sum Summary
		var started string
		if err := rows.Scan(&sum.ID, &sum.Title, &started); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan conversation: %w", err)
		}
		sum.StartedAt = parseTime(started)
		matches = append(matches, sum)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("%w: %s", ErrNotFound, idPrefix)
	case 1:
	default:
		return nil, fmt.Errorf("%w: %s", ErrAmbiguous, idPrefix)
	}

	conv := &Conversation{Summary: matches[0]}
	conv.Log, err = s.entries(ctx, conv.ID)
	if err != nil {
		return nil, err
	}
	conv.Entries = len(conv.Log)
	return conv, nil
}

func (s *Store) entries(ctx context.Context, convID string) ([]conversation.Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT role, content, created_at FROM entries WHERE conversation_id = ? ORDER BY seq`, convID)
	if err != nil {
		return nil, fmt.Errorf("load entries: %w", err)
	}
	defer rows.Close()

	var out []conversation.Entry
	for rows.Next() {
		var e conversation.Entry
		var role, created string
		if err := rows.Scan(&role, &e.Content, &created); err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		e.Role = conversation.Role(role)
		e.CreatedAt = parseTime(created)
		out = append(out, e)
	}
	return out, rows.Err()
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

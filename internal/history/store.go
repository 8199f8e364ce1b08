// Package history records resolved posts in a local SQLite database.
package history

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/iconidentify/xresolve/internal/domain"
)

//go:embed schema.sql
var schemaSQL string

// Entry is one recorded resolution.
type Entry struct {
	ID             string    `json:"id"`
	TweetID        string    `json:"tweet_id"`
	Author         string    `json:"author"`
	ConversationID string    `json:"conversation_id"`
	MediaCount     int       `json:"media_count"`
	ThreadCount    int       `json:"thread_count"`
	ResolvedAt     time.Time `json:"resolved_at"`
}

// Store persists resolution history.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens (and creates if needed) the history database at path.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("path is required")
	}

	dir := filepath.Dir(path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.ExecContext(context.Background(), schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &Store{db: db, now: time.Now}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Ping checks the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Record stores a resolved bundle.
func (s *Store) Record(ctx context.Context, b *domain.Bundle) (Entry, error) {
	if b == nil {
		return Entry{}, errors.New("bundle is required")
	}

	e := Entry{
		ID:             uuid.NewString(),
		TweetID:        b.PostID.String(),
		Author:         b.AuthorHandle,
		ConversationID: fmt.Sprintf("%d", b.ConversationID),
		MediaCount:     len(b.Media),
		ThreadCount:    int(b.ThreadCount),
		ResolvedAt:     s.now().UTC(),
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO resolutions(id, tweet_id, author, conversation_id, media_count, thread_count, resolved_at)
		 VALUES(?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.TweetID, e.Author, e.ConversationID, e.MediaCount, e.ThreadCount, e.ResolvedAt,
	)
	if err != nil {
		return Entry{}, fmt.Errorf("insert resolution: %w", err)
	}
	return e, nil
}

// Recent returns up to limit entries, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, tweet_id, author, conversation_id, media_count, thread_count, resolved_at
		 FROM resolutions ORDER BY resolved_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query resolutions: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.TweetID, &e.Author, &e.ConversationID, &e.MediaCount, &e.ThreadCount, &e.ResolvedAt); err != nil {
			return nil, fmt.Errorf("scan resolution: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

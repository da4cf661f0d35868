// Package querylogstore persists the assistant query log in SQLite.
package querylogstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite" // pure go sqlite driver

	"vcbot/internal/core/apperror"
	"vcbot/internal/domain/querylog"
)

// SQLiteStore implements querylog.Store on a single SQLite database file.
type SQLiteStore struct {
	db *sql.DB

	// mu serializes writes; the modernc driver dislikes concurrent writers
	// on a single connection.
	mu sync.Mutex
}

// New opens (or creates) the database at path and bootstraps the schema.
func New(path string) (*SQLiteStore, error) {
	if path == "" {
		path = "querylog.db"
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil && !errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("create dirs: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS queries (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id     TEXT NOT NULL,
		user_name   TEXT NOT NULL,
		query       TEXT NOT NULL,
		response    TEXT NOT NULL,
		channel_id  TEXT,
		tool_calls  TEXT,
		tokens_used TEXT,
		created_at  TEXT NOT NULL
	)`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create queries table: %w", err)
	}
	if _, err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_queries_user ON queries(user_id)`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create user index: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Close releases the underlying database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Append implements querylog.Store.
func (s *SQLiteStore) Append(ctx context.Context, entry querylog.Entry) error {
	toolCalls, err := json.Marshal(entry.ToolCalls)
	if err != nil {
		return apperror.NewPersistence(fmt.Errorf("encode tool calls: %w", err))
	}
	tokens, err := json.Marshal(entry.Tokens)
	if err != nil {
		return apperror.NewPersistence(fmt.Errorf("encode tokens: %w", err))
	}

	createdAt := entry.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO queries (user_id, user_name, query, response, channel_id, tool_calls, tokens_used, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.UserID, entry.UserName, entry.Query, entry.Response,
		entry.ChannelID, string(toolCalls), string(tokens),
		createdAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return apperror.NewPersistence(fmt.Errorf("insert query: %w", err))
	}
	return nil
}

// Recent implements querylog.Store.
func (s *SQLiteStore) Recent(ctx context.Context, limit int) ([]querylog.Entry, error) {
	return s.selectEntries(ctx, `
		SELECT id, user_id, user_name, query, response, channel_id, tool_calls, tokens_used, created_at
		FROM queries ORDER BY id DESC LIMIT ?`, clampLimit(limit))
}

// ByUser implements querylog.Store.
func (s *SQLiteStore) ByUser(ctx context.Context, userID string, limit int) ([]querylog.Entry, error) {
	return s.selectEntries(ctx, `
		SELECT id, user_id, user_name, query, response, channel_id, tool_calls, tokens_used, created_at
		FROM queries WHERE user_id = ? ORDER BY id DESC LIMIT ?`, userID, clampLimit(limit))
}

func clampLimit(limit int) int {
	if limit <= 0 || limit > 500 {
		return 50
	}
	return limit
}

func (s *SQLiteStore) selectEntries(ctx context.Context, query string, args ...any) ([]querylog.Entry, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperror.NewPersistence(fmt.Errorf("select queries: %w", err))
	}
	defer func() { _ = rows.Close() }()

	var out []querylog.Entry
	for rows.Next() {
		var (
			entry     querylog.Entry
			channelID sql.NullString
			toolCalls sql.NullString
			tokens    sql.NullString
			createdAt string
		)
		if err := rows.Scan(&entry.ID, &entry.UserID, &entry.UserName, &entry.Query,
			&entry.Response, &channelID, &toolCalls, &tokens, &createdAt); err != nil {
			return nil, apperror.NewPersistence(fmt.Errorf("scan query row: %w", err))
		}
		entry.ChannelID = channelID.String
		if toolCalls.Valid && toolCalls.String != "" {
			if err := json.Unmarshal([]byte(toolCalls.String), &entry.ToolCalls); err != nil {
				return nil, apperror.NewCorruptStore("queries.tool_calls", err)
			}
		}
		if tokens.Valid && tokens.String != "" {
			if err := json.Unmarshal([]byte(tokens.String), &entry.Tokens); err != nil {
				return nil, apperror.NewCorruptStore("queries.tokens_used", err)
			}
		}
		ts, err := time.Parse(time.RFC3339Nano, createdAt)
		if err != nil {
			return nil, apperror.NewCorruptStore("queries.created_at", err)
		}
		entry.CreatedAt = ts
		out = append(out, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.NewPersistence(err)
	}
	return out, nil
}

var _ querylog.Store = (*SQLiteStore)(nil)

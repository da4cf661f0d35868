// Package querylog records assistant interactions for audit and history.
package querylog

import (
	"context"
	"time"
)

// Entry is one recorded user query and its AI response.
type Entry struct {
	ID        int64            `json:"id,omitempty"`
	UserID    string           `json:"user_id"`
	UserName  string           `json:"user_name"`
	Query     string           `json:"query"`
	Response  string           `json:"response"`
	ChannelID string           `json:"channel_id,omitempty"`
	ToolCalls []string         `json:"tool_calls,omitempty"`
	Tokens    map[string]int64 `json:"tokens_used,omitempty"`
	CreatedAt time.Time        `json:"timestamp"`
}

// Store persists query log entries.
type Store interface {
	Append(ctx context.Context, entry Entry) error
	Recent(ctx context.Context, limit int) ([]Entry, error)
	ByUser(ctx context.Context, userID string, limit int) ([]Entry, error)
}

// MockStore is a test implementation of Store.
type MockStore struct {
	AppendFunc func(ctx context.Context, entry Entry) error
	RecentFunc func(ctx context.Context, limit int) ([]Entry, error)
	ByUserFunc func(ctx context.Context, userID string, limit int) ([]Entry, error)
}

func (m *MockStore) Append(ctx context.Context, entry Entry) error {
	if m.AppendFunc != nil {
		return m.AppendFunc(ctx, entry)
	}
	return nil
}

func (m *MockStore) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if m.RecentFunc != nil {
		return m.RecentFunc(ctx, limit)
	}
	return nil, nil
}

func (m *MockStore) ByUser(ctx context.Context, userID string, limit int) ([]Entry, error) {
	if m.ByUserFunc != nil {
		return m.ByUserFunc(ctx, userID, limit)
	}
	return nil, nil
}

var _ Store = (*MockStore)(nil)

package querylogstore

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vcbot/internal/domain/querylog"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := New(filepath.Join(t.TempDir(), "queries.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestAppendAndRecent(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	for i := 0; i < 3; i++ {
		require.NoError(t, store.Append(ctx, querylog.Entry{
			UserID:    "42",
			UserName:  "alice",
			Query:     "what is hr-12 about?",
			Response:  "It modernizes infrastructure.",
			ToolCalls: []string{"call_bill_search"},
			Tokens:    map[string]int64{"prompt": 120, "completion": 45},
			CreatedAt: time.Now(),
		}))
	}

	recent, err := store.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	// Newest first.
	assert.Greater(t, recent[0].ID, recent[1].ID)
	assert.Equal(t, []string{"call_bill_search"}, recent[0].ToolCalls)
	assert.Equal(t, int64(120), recent[0].Tokens["prompt"])
}

func TestByUser(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	require.NoError(t, store.Append(ctx, querylog.Entry{UserID: "1", UserName: "a", Query: "q1", Response: "r1"}))
	require.NoError(t, store.Append(ctx, querylog.Entry{UserID: "2", UserName: "b", Query: "q2", Response: "r2"}))
	require.NoError(t, store.Append(ctx, querylog.Entry{UserID: "1", UserName: "a", Query: "q3", Response: "r3"}))

	mine, err := store.ByUser(ctx, "1", 10)
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, "q3", mine[0].Query)
	assert.Equal(t, "q1", mine[1].Query)
}

func TestRecentClampsLimit(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	require.NoError(t, store.Append(ctx, querylog.Entry{UserID: "1", UserName: "a", Query: "q", Response: "r"}))

	entries, err := store.Recent(ctx, -5)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestAppendDefaultsTimestamp(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	require.NoError(t, store.Append(ctx, querylog.Entry{UserID: "1", UserName: "a", Query: "q", Response: "r"}))

	entries, err := store.Recent(ctx, 1)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.WithinDuration(t, time.Now(), entries[0].CreatedAt, time.Minute)
}

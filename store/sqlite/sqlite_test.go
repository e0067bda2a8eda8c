package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smallnest/langlab/store"
)

func TestSqliteStore(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "history.db")

	s, err := New(Options{Path: path})
	require.NoError(t, err)
	defer s.Close()

	at := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, s.Append(ctx, "b", store.Turn{Role: store.RoleHuman, Text: "hi", At: at}))
	require.NoError(t, s.Append(ctx, "a",
		store.Turn{Role: store.RoleHuman, Text: "What is 2+2?", At: at},
		store.Turn{Role: store.RoleAI, Text: "4", At: at.Add(time.Second)},
	))
	require.NoError(t, s.Append(ctx, "a"))

	turns, err := s.Load(ctx, "a")
	require.NoError(t, err)
	require.Len(t, turns, 2)
	assert.Equal(t, "What is 2+2?", turns[0].Text)
	assert.Equal(t, store.RoleAI, turns[1].Role)
	assert.True(t, turns[1].At.Equal(at.Add(time.Second)))

	ids, err := s.Sessions(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, ids)

	require.NoError(t, s.Clear(ctx, "a"))
	turns, err = s.Load(ctx, "a")
	require.NoError(t, err)
	assert.Empty(t, turns)

	ids, err = s.Sessions(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, ids)
}

func TestSqliteStore_Reopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "history.db")

	s, err := New(Options{Path: path, TableName: "turns"})
	require.NoError(t, err)
	require.NoError(t, s.Append(ctx, "s1", store.Turn{Role: store.RoleHuman, Text: "remember me"}))
	require.NoError(t, s.Close())

	s, err = New(Options{Path: path, TableName: "turns"})
	require.NoError(t, err)
	defer s.Close()

	turns, err := s.Load(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, turns, 1)
	assert.Equal(t, "remember me", turns[0].Text)
	assert.False(t, turns[0].At.IsZero())
}

package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smallnest/langlab/store"
)

func TestRedisStore(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	s := New(Options{Addr: mr.Addr()})
	defer s.Close()
	ctx := context.Background()
	require.NoError(t, s.Ping(ctx))

	at := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	require.NoError(t, s.Append(ctx, "sess-1",
		store.Turn{Role: store.RoleHuman, Text: "hi", At: at},
		store.Turn{Role: store.RoleAI, Text: "hello", At: at},
	))
	require.NoError(t, s.Append(ctx, "sess-1", store.Turn{Role: store.RoleHuman, Text: "bye", At: at}))
	require.NoError(t, s.Append(ctx, "sess-0", store.Turn{Role: store.RoleHuman, Text: "x"}))
	require.NoError(t, s.Append(ctx, "sess-1"))

	turns, err := s.Load(ctx, "sess-1")
	require.NoError(t, err)
	require.Len(t, turns, 3)
	assert.Equal(t, "hello", turns[1].Text)
	assert.Equal(t, store.RoleAI, turns[1].Role)
	assert.True(t, at.Equal(turns[2].At))
	assert.True(t, mr.Exists("langlab:history:sess-1"))

	ids, err := s.Sessions(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"sess-0", "sess-1"}, ids)

	require.NoError(t, s.Clear(ctx, "sess-1"))
	turns, err = s.Load(ctx, "sess-1")
	require.NoError(t, err)
	assert.Empty(t, turns)
	ids, _ = s.Sessions(ctx)
	assert.Equal(t, []string{"sess-0"}, ids)
}

func TestRedisStore_TTL(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	s := New(Options{Addr: mr.Addr(), Prefix: "test:", TTL: time.Minute})
	ctx := context.Background()
	require.NoError(t, s.Append(ctx, "short", store.Turn{Role: store.RoleHuman, Text: "hi"}))
	assert.Equal(t, time.Minute, mr.TTL("test:history:short"))

	mr.FastForward(2 * time.Minute)
	ids, err := s.Sessions(ctx)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestRedisStore_Unreachable(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	s := New(Options{Addr: mr.Addr()})
	mr.Close()

	_, err = s.Load(context.Background(), "x")
	assert.ErrorContains(t, err, "failed to load history from redis")
}

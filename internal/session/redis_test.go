package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	store, err := NewRedisStore(mr.Addr(), "", 0)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store, mr
}

func TestRedisStoreRoundTrip(t *testing.T) {
	store, mr := newRedisStore(t)
	ctx := context.Background()

	sess := &Session{ID: "abc", Token: "tok", Notice: &Notice{Kind: NoticeError, Text: "Server error"}}
	require.NoError(t, store.Save(ctx, sess, time.Hour))
	assert.Equal(t, "tok", mr.HGet("session:abc", "token"))
	assert.Equal(t, time.Hour, mr.TTL("session:abc"))

	got, err := store.Get(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, "tok", got.Token)
	require.NotNil(t, got.Notice)
	assert.Equal(t, "Server error", got.Notice.Text)

	require.NoError(t, store.Delete(ctx, "abc"))
	_, err = store.Get(ctx, "abc")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedisStoreExpires(t *testing.T) {
	store, mr := newRedisStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, &Session{ID: "x", Token: "tok"}, time.Minute))
	mr.FastForward(2 * time.Minute)

	_, err := store.Get(ctx, "x")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestNewRedisStoreUnreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := NewRedisStore(addr, "", 0)
	assert.ErrorContains(t, err, "failed to connect to Redis")
}

package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	m := NewMemory()
	m.now = func() time.Time { return now }

	_, ok, err := m.Get(ctx, "/")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, m.Set(ctx, "/", []byte("index"), 20*time.Second))
	body, ok, err := m.Get(ctx, "/")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "index", string(body))

	body[0] = 'X'
	again, _, _ := m.Get(ctx, "/")
	assert.Equal(t, "index", string(again))

	now = now.Add(19 * time.Second)
	_, ok, _ = m.Get(ctx, "/")
	assert.True(t, ok)

	now = now.Add(time.Second)
	_, ok, _ = m.Get(ctx, "/")
	assert.False(t, ok)

	require.NoError(t, m.Set(ctx, "/?page=2", []byte("two"), time.Minute))
	require.NoError(t, m.Clear(ctx))
	_, ok, _ = m.Get(ctx, "/?page=2")
	assert.False(t, ok)

	require.NoError(t, m.Set(ctx, "/", []byte("index"), 0))
	_, ok, _ = m.Get(ctx, "/")
	assert.False(t, ok)
}

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *Redis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, NewRedis(client, "")
}

func TestRedis(t *testing.T) {
	ctx := context.Background()
	mr, r := newTestRedis(t)

	_, ok, err := r.Get(ctx, "/")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, r.Set(ctx, "/", []byte("index"), 20*time.Second))
	assert.True(t, mr.Exists(DefaultPrefix+"/"))
	body, ok, err := r.Get(ctx, "/")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "index", string(body))

	mr.FastForward(21 * time.Second)
	_, ok, err = r.Get(ctx, "/")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisClearKeepsForeignKeys(t *testing.T) {
	ctx := context.Background()
	mr, r := newTestRedis(t)

	require.NoError(t, mr.Set("session:1", "keep"))
	require.NoError(t, r.Set(ctx, "/", []byte("index"), time.Minute))
	require.NoError(t, r.Set(ctx, "/?page=2", []byte("two"), time.Minute))

	require.NoError(t, r.Clear(ctx))
	_, ok, _ := r.Get(ctx, "/")
	assert.False(t, ok)
	_, ok, _ = r.Get(ctx, "/?page=2")
	assert.False(t, ok)
	assert.True(t, mr.Exists("session:1"))

	require.NoError(t, r.Clear(ctx))
}

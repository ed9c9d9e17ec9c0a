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

func TestRedisCache(t *testing.T) {
	mr := miniredis.RunT(t)
	ctx := context.Background()

	c, err := NewRedisCache(ctx, &redis.Options{Addr: mr.Addr()})
	require.NoError(t, err)
	defer c.Close()

	_, hit, err := c.Get(ctx, "assignment:x")
	require.NoError(t, err)
	assert.False(t, hit, "empty cache should miss")

	require.NoError(t, c.Set(ctx, "assignment:x", []byte("data"), time.Minute))
	data, hit, err := c.Get(ctx, "assignment:x")
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, []byte("data"), data)

	mr.FastForward(2 * time.Minute)
	_, hit, err = c.Get(ctx, "assignment:x")
	require.NoError(t, err)
	assert.False(t, hit, "entry should expire")

	require.NoError(t, c.Set(ctx, "frame:b", []byte("f"), 0))
	require.NoError(t, c.Delete(ctx, "frame:b"))
	assert.False(t, mr.Exists("frame:b"))
}

func TestRedisCacheUnreachable(t *testing.T) {
	defer func(d time.Duration) { Backoff = d }(Backoff)
	Backoff = time.Millisecond

	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := NewRedisCache(context.Background(), &redis.Options{Addr: addr, MaxRetries: -1})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNetwork)
}

package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/powerset/pkg/cache"
)

func newRedis(t *testing.T) (*miniredis.Miniredis, *cache.RedisCache) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	c := cache.NewRedisCacheFromClient(client, cache.WithPrefix("test:"))
	t.Cleanup(func() { _ = c.Close() })
	return mr, c
}

func TestRedisCache_GetSetDelete(t *testing.T) {
	ctx := context.Background()
	mr, c := newRedis(t)

	_, hit, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, hit)

	require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Minute))
	assert.True(t, mr.Exists("test:k"), "key should carry the prefix")

	data, hit, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, []byte("v"), data)

	require.NoError(t, c.Delete(ctx, "k"))
	_, hit, err = c.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, hit)

	// Deleting a missing key is fine
	assert.NoError(t, c.Delete(ctx, "k"))
}

func TestRedisCache_TTL(t *testing.T) {
	ctx := context.Background()
	mr, c := newRedis(t)

	require.NoError(t, c.Set(ctx, "short", []byte("x"), time.Second))
	require.NoError(t, c.Set(ctx, "forever", []byte("y"), 0))

	mr.FastForward(2 * time.Second)

	_, hit, err := c.Get(ctx, "short")
	require.NoError(t, err)
	assert.False(t, hit, "entry should expire")

	_, hit, err = c.Get(ctx, "forever")
	require.NoError(t, err)
	assert.True(t, hit, "zero ttl should not expire")
}

func TestRedisCache_Clear(t *testing.T) {
	ctx := context.Background()
	mr, c := newRedis(t)

	require.NoError(t, mr.Set("other:key", "keep"))
	for _, k := range []string{"a", "b", "c"} {
		require.NoError(t, c.Set(ctx, k, []byte(k), 0))
	}

	n, err := c.Clear(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.True(t, mr.Exists("other:key"), "keys outside the prefix must survive")
	assert.False(t, mr.Exists("test:a"))
}

func TestNewRedisCache(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	c, err := cache.NewRedisCache(context.Background(), mr.Addr(), "", 0)
	require.NoError(t, err)
	defer c.Close()

	require.NoError(t, c.Set(context.Background(), "k", []byte("v"), 0))
	assert.True(t, mr.Exists("powerset:k"))
}

func TestNewRedisCache_Unreachable(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	addr := mr.Addr()
	mr.Close()

	_, err = cache.NewRedisCache(context.Background(), addr, "", 0)
	require.Error(t, err)
	assert.ErrorIs(t, err, cache.ErrNetwork)
}

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

// newTestRedis поднимает miniredis и возвращает клиент к нему
func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { client.Close() })
	return srv, client
}

func TestCache_GetSet(t *testing.T) {
	_, client := newTestRedis(t)

	caches := map[string]Cache{
		"memory": NewMemoryCache(time.Hour),
		"redis":  NewRedisCache(client, time.Hour),
	}

	for name, c := range caches {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			_, ok, err := c.Get(ctx, "abc123")
			require.NoError(t, err)
			assert.False(t, ok, "empty cache must miss")

			require.NoError(t, c.Set(ctx, "abc123", "https://example.com/a"))

			url, ok, err := c.Get(ctx, "abc123")
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, "https://example.com/a", url)

			require.NoError(t, c.Set(ctx, "abc123", "https://example.com/b"))
			url, _, _ = c.Get(ctx, "abc123")
			assert.Equal(t, "https://example.com/b", url)
		})
	}
}

func TestMemoryCache_Expiration(t *testing.T) {
	c := NewMemoryCache(20 * time.Millisecond)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "abc123", "https://example.com/a"))
	assert.Equal(t, 1, c.Len())

	time.Sleep(50 * time.Millisecond)

	_, ok, err := c.Get(ctx, "abc123")
	require.NoError(t, err)
	assert.False(t, ok, "expired entry must miss")
}

func TestMemoryCache_CanceledContext(t *testing.T) {
	c := NewMemoryCache(time.Hour)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.Error(t, c.Set(ctx, "abc123", "https://example.com/a"))
	_, _, err := c.Get(ctx, "abc123")
	assert.Error(t, err)
}

func TestRedisCache_Expiration(t *testing.T) {
	srv, client := newTestRedis(t)
	c := NewRedisCache(client, time.Minute)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "abc123", "https://example.com/a"))
	assert.True(t, srv.Exists("link:abc123"))
	assert.Equal(t, time.Minute, srv.TTL("link:abc123"))

	srv.FastForward(2 * time.Minute)

	_, ok, err := c.Get(ctx, "abc123")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisCache_Unavailable(t *testing.T) {
	srv, client := newTestRedis(t)
	c := NewRedisCache(client, time.Minute)
	srv.Close()

	ctx := context.Background()
	_, ok, err := c.Get(ctx, "abc123")
	assert.Error(t, err)
	assert.False(t, ok)
	assert.Error(t, c.Set(ctx, "abc123", "https://example.com/a"))
}

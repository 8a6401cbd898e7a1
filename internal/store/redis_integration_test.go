//go:build integration

package store_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/serroba/link-lifecycle/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func getRedisAddr() string {
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		return addr
	}

	return "localhost:6379"
}

func newRedisClient(t *testing.T) *redis.Client {
	t.Helper()

	client := redis.NewClient(&redis.Options{Addr: getRedisAddr()})
	t.Cleanup(func() { _ = client.Close() })

	if err := client.Ping(context.Background()).Err(); err != nil {
		t.Skipf("Redis not available: %v", err)
	}

	return client
}

func TestRedisCollectionIntegration(t *testing.T) {
	ctx := context.Background()
	client := newRedisClient(t)

	t.Run("absent slot loads empty", func(t *testing.T) {
		c := store.NewRedisCollection(client, "it-absent", zap.NewNop())

		links, err := c.Load(ctx)

		require.NoError(t, err)
		assert.Empty(t, links)
	})

	t.Run("save and load", func(t *testing.T) {
		c := store.NewRedisCollection(client, "it-roundtrip", zap.NewNop())
		defer client.Del(ctx, "links:it-roundtrip")

		require.NoError(t, c.Save(ctx, sampleLinks()))

		links, err := c.Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, sampleLinks(), links)
	})

	t.Run("corrupt slot loads empty", func(t *testing.T) {
		c := store.NewRedisCollection(client, "it-corrupt", zap.NewNop())
		defer client.Del(ctx, "links:it-corrupt")

		require.NoError(t, client.Set(ctx, "links:it-corrupt", "garbage", 0).Err())

		links, err := c.Load(ctx)
		require.NoError(t, err)
		assert.Empty(t, links)
	})
}

func TestCachedCollectionIntegration(t *testing.T) {
	ctx := context.Background()
	client := newRedisClient(t)

	t.Run("serves reads from cache after a save", func(t *testing.T) {
		backing := store.NewMemoryCollection(zap.NewNop())
		c := store.NewCachedCollection(backing, client, "it-cache", time.Minute, zap.NewNop())
		defer client.Del(ctx, "links-cache:it-cache")

		require.NoError(t, c.Save(ctx, sampleLinks()))

		// Diverge the backing store; the cached copy must win.
		backing.SetRaw([]byte("[]"))

		links, err := c.Load(ctx)
		require.NoError(t, err)
		assert.Len(t, links, 2)
	})

	t.Run("falls back to the store on a miss", func(t *testing.T) {
		backing := store.NewMemoryCollection(zap.NewNop())
		require.NoError(t, backing.Save(ctx, sampleLinks()[:1]))

		c := store.NewCachedCollection(backing, client, "it-miss", time.Minute, zap.NewNop())
		defer client.Del(ctx, "links-cache:it-miss")

		links, err := c.Load(ctx)
		require.NoError(t, err)
		assert.Len(t, links, 1)
	})
}

func TestRateLimitRedisStoreIntegration(t *testing.T) {
	ctx := context.Background()
	client := newRedisClient(t)
	s := store.NewRateLimitRedisStore(client)

	defer client.Del(ctx, "ratelimit:it-key")

	first, err := s.Record(ctx, "it-key", time.Minute)
	require.NoError(t, err)

	second, err := s.Record(ctx, "it-key", time.Minute)
	require.NoError(t, err)

	assert.Equal(t, int64(1), first)
	assert.Equal(t, int64(2), second)
}

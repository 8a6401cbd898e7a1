package store

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/serroba/link-lifecycle/internal/shortener"
	"go.uber.org/zap"
)

// CachedCollection wraps a Collection with a Redis copy of the serialized slot.
// Reads are served from Redis when present; writes go to the underlying store first.
type CachedCollection struct {
	store  shortener.Collection
	client *redis.Client
	key    string
	ttl    time.Duration
	logger *zap.Logger
}

// NewCachedCollection creates a Redis-cached collection decorator.
func NewCachedCollection(
	store shortener.Collection, client *redis.Client, slot string, ttl time.Duration, logger *zap.Logger,
) *CachedCollection {
	return &CachedCollection{
		store:  store,
		client: client,
		key:    "links-cache:" + slot,
		ttl:    ttl,
		logger: logger,
	}
}

// Load returns the cached collection, falling back to the underlying store on a miss.
func (c *CachedCollection) Load(ctx context.Context) ([]shortener.Link, error) {
	data, err := c.client.Get(ctx, c.key).Bytes()
	if err == nil {
		return decodeLinks(data, c.key, c.logger), nil
	}

	links, err := c.store.Load(ctx)
	if err != nil {
		return nil, err
	}

	c.cache(ctx, links)

	return links, nil
}

// Save writes through to the underlying store and refreshes the cache.
func (c *CachedCollection) Save(ctx context.Context, links []shortener.Link) error {
	if err := c.store.Save(ctx, links); err != nil {
		// The cached copy may now be ahead of or behind the store.
		c.client.Del(ctx, c.key)

		return err
	}

	c.cache(ctx, links)

	return nil
}

func (c *CachedCollection) cache(ctx context.Context, links []shortener.Link) {
	data, err := encodeLinks(links)
	if err != nil {
		return
	}

	if err = c.client.Set(ctx, c.key, data, c.ttl).Err(); err != nil {
		c.logger.Debug("collection cache write failed", zap.String("key", c.key), zap.Error(err))
	}
}

// Compile-time check.
var _ shortener.Collection = (*CachedCollection)(nil)

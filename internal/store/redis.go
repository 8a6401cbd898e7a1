package store

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
	"github.com/serroba/link-lifecycle/internal/shortener"
	"go.uber.org/zap"
)

// RedisCollection stores the collection as a single string key.
type RedisCollection struct {
	client *redis.Client
	key    string
	logger *zap.Logger
}

// NewRedisCollection creates a Redis-backed collection under "links:<slot>".
func NewRedisCollection(client *redis.Client, slot string, logger *zap.Logger) *RedisCollection {
	return &RedisCollection{
		client: client,
		key:    "links:" + slot,
		logger: logger,
	}
}

func (r *RedisCollection) Load(ctx context.Context) ([]shortener.Link, error) {
	data, err := r.client.Get(ctx, r.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}

		return nil, err
	}

	return decodeLinks(data, r.key, r.logger), nil
}

func (r *RedisCollection) Save(ctx context.Context, links []shortener.Link) error {
	data, err := encodeLinks(links)
	if err != nil {
		return err
	}

	return r.client.Set(ctx, r.key, data, 0).Err()
}

// Ping checks Redis connectivity.
func (r *RedisCollection) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Compile-time check.
var _ shortener.Collection = (*RedisCollection)(nil)

package container

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
	"github.com/serroba/link-lifecycle/internal/health"
	"github.com/serroba/link-lifecycle/internal/shortener"
	"github.com/serroba/link-lifecycle/internal/store"
	"go.uber.org/zap"
)

const connectTimeout = 5 * time.Second

func connectContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), connectTimeout)
}

// RedisClient owns the shared Redis connection pool.
type RedisClient struct {
	*redis.Client
}

// Shutdown closes the pool.
func (c *RedisClient) Shutdown() error {
	return c.Close()
}

// PostgresPool owns the PostgreSQL connection pool.
type PostgresPool struct {
	*pgxpool.Pool
}

// Shutdown closes the pool.
func (p *PostgresPool) Shutdown() error {
	p.Close()

	return nil
}

// Storage is the selected link collection together with a probe for its backend.
type Storage struct {
	Collection shortener.Collection
	Backend    health.Checker
}

// RedisPackage provides the Redis client. Connections are opened lazily on first use.
func RedisPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*RedisClient, error) {
		opts := do.MustInvoke[*Options](i)

		return &RedisClient{Client: redis.NewClient(&redis.Options{Addr: opts.RedisAddr})}, nil
	})
}

// PostgresPackage provides the PostgreSQL pool.
func PostgresPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*PostgresPool, error) {
		opts := do.MustInvoke[*Options](i)

		ctx, cancel := connectContext()
		defer cancel()

		pool, err := pgxpool.New(ctx, opts.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}

		return &PostgresPool{Pool: pool}, nil
	})
}

// SQLitePackage provides the SQLite-backed collection.
func SQLitePackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*store.SQLiteCollection, error) {
		opts := do.MustInvoke[*Options](i)
		logger := do.MustInvoke[*zap.Logger](i)

		db, err := store.OpenSQLite(opts.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}

		collection := store.NewSQLiteCollection(db, opts.Slot, logger)

		ctx, cancel := connectContext()
		defer cancel()

		if err = collection.EnsureSchema(ctx); err != nil {
			_ = collection.Shutdown()

			return nil, fmt.Errorf("sqlite schema: %w", err)
		}

		return collection, nil
	})
}

// StoragePackage selects the collection backend from Options and optionally fronts it with
// the Redis cache.
func StoragePackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*Storage, error) {
		opts := do.MustInvoke[*Options](i)
		logger := do.MustInvoke[*zap.Logger](i)

		var (
			collection shortener.Collection
			backend    health.Checker
		)

		switch opts.Storage {
		case StorageMemory:
			memory := store.NewMemoryCollection(logger)
			collection, backend = memory, memory
		case StorageRedis:
			client := do.MustInvoke[*RedisClient](i)
			redisCollection := store.NewRedisCollection(client.Client, opts.Slot, logger)
			collection, backend = redisCollection, redisCollection
		case StoragePostgres:
			pool, err := do.Invoke[*PostgresPool](i)
			if err != nil {
				return nil, err
			}

			pg := store.NewPostgresCollection(pool.Pool, opts.Slot, logger)

			ctx, cancel := connectContext()
			defer cancel()

			if err = pg.EnsureSchema(ctx); err != nil {
				return nil, fmt.Errorf("postgres schema: %w", err)
			}

			collection, backend = pg, pg
		case StorageSQLite:
			sqlite, err := do.Invoke[*store.SQLiteCollection](i)
			if err != nil {
				return nil, err
			}

			collection, backend = sqlite, sqlite
		default:
			return nil, fmt.Errorf("unknown storage backend %q", opts.Storage)
		}

		if opts.CacheTTL > 0 && opts.Storage != StorageRedis {
			client := do.MustInvoke[*RedisClient](i)
			collection = store.NewCachedCollection(
				collection, client.Client, opts.Slot, time.Duration(opts.CacheTTL)*time.Second, logger)
		}

		logger.Info("link collection ready",
			zap.String("storage", opts.Storage),
			zap.String("slot", opts.Slot),
			zap.Int("cacheTTLSeconds", opts.CacheTTL),
		)

		return &Storage{Collection: collection, Backend: backend}, nil
	})
}

package container

import (
	"github.com/samber/do"
	"github.com/serroba/link-lifecycle/internal/analytics"
	analyticsstore "github.com/serroba/link-lifecycle/internal/analytics/store"
	"github.com/serroba/link-lifecycle/internal/messaging"
	"github.com/serroba/link-lifecycle/internal/shortener"
	"go.uber.org/zap"
)

// ConsumerGroupName is the Redis stream consumer group reading activities.
const ConsumerGroupName = "link-activity"

// PublisherGroupPackage provides the stream publisher and the activity sink built on it.
func PublisherGroupPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*messaging.PublisherGroup, error) {
		client := do.MustInvoke[*RedisClient](i)
		logger := do.MustInvoke[*zap.Logger](i)

		publisher, err := messaging.NewRedisPublisher(client.Client, logger)
		if err != nil {
			return nil, err
		}

		return messaging.NewPublisherGroup(publisher), nil
	})

	do.Provide(i, func(i *do.Injector) (messaging.Publish[shortener.Activity], error) {
		group := do.MustInvoke[*messaging.PublisherGroup](i)

		return analytics.NewPublisher(group.Publisher()), nil
	})
}

// ActivityStorePackage provides where consumed activities end up: PostgreSQL when
// --storage=postgres, otherwise the log.
func ActivityStorePackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (analytics.Store, error) {
		opts := do.MustInvoke[*Options](i)
		logger := do.MustInvoke[*zap.Logger](i)

		if opts.Storage != StoragePostgres {
			return analyticsstore.NewLog(logger), nil
		}

		pool, err := do.Invoke[*PostgresPool](i)
		if err != nil {
			return nil, err
		}

		pg := analyticsstore.NewPostgres(pool.Pool)

		ctx, cancel := connectContext()
		defer cancel()

		if err = pg.EnsureSchema(ctx); err != nil {
			return nil, err
		}

		return pg, nil
	})
}

// ConsumerGroupPackage provides the activity consumer group.
func ConsumerGroupPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*messaging.ConsumerGroup, error) {
		client := do.MustInvoke[*RedisClient](i)
		logger := do.MustInvoke[*zap.Logger](i)
		activityStore := do.MustInvoke[analytics.Store](i)

		subscriber, err := messaging.NewRedisSubscriber(client.Client, ConsumerGroupName, logger)
		if err != nil {
			return nil, err
		}

		group := messaging.NewConsumerGroup(subscriber, logger)
		group.Add(analytics.NewConsumer(subscriber, activityStore, logger))

		return group, nil
	})
}

package container

import (
	"fmt"

	"github.com/samber/do"
	"github.com/serroba/link-lifecycle/internal/metrics"
	"github.com/serroba/link-lifecycle/internal/messaging"
	"github.com/serroba/link-lifecycle/internal/shortener"
	"go.uber.org/zap"
)

// MetricsPackage provides the Prometheus collectors.
func MetricsPackage(i *do.Injector) {
	do.Provide(i, func(_ *do.Injector) (*metrics.Metrics, error) {
		return metrics.New(), nil
	})
}

// ManagerPackage provides the link lifecycle manager. Activities go to the metrics and, when
// enabled, to the Redis stream.
func ManagerPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*shortener.Manager, error) {
		opts := do.MustInvoke[*Options](i)
		logger := do.MustInvoke[*zap.Logger](i)
		storage := do.MustInvoke[*Storage](i)
		m := do.MustInvoke[*metrics.Metrics](i)

		generator, err := shortener.NewCodeGenerator(opts.CodeLength)
		if err != nil {
			return nil, fmt.Errorf("code generator: %w", err)
		}

		sinks := []messaging.Publish[shortener.Activity]{m.Observe}

		if opts.ActivityStream {
			sinks = append(sinks, do.MustInvoke[messaging.Publish[shortener.Activity]](i))
		}

		return shortener.NewManager(storage.Collection, generator, logger,
			shortener.WithNotify(shortener.Notify(messaging.Fanout(sinks...))),
			shortener.WithDefaultValidity(opts.DefaultValidityDuration()),
			shortener.WithMaxCodeAttempts(opts.MaxCodeAttempts),
		), nil
	})
}

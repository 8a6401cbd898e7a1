package container

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	_ "github.com/danielgtaylor/huma/v2/formats/cbor" // CBOR format support for huma
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/samber/do"
	"github.com/serroba/link-lifecycle/internal/handlers"
	"github.com/serroba/link-lifecycle/internal/health"
	"github.com/serroba/link-lifecycle/internal/metrics"
	"github.com/serroba/link-lifecycle/internal/middleware"
	"github.com/serroba/link-lifecycle/internal/ratelimit"
	"github.com/serroba/link-lifecycle/internal/shortener"
	"github.com/serroba/link-lifecycle/internal/store"
	"go.uber.org/zap"
)

// RateLimitPackage provides the sliding window limiter over the configured counter store.
func RateLimitPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*ratelimit.SlidingWindowLimiter, error) {
		opts := do.MustInvoke[*Options](i)

		var counters ratelimit.Store = store.NewRateLimitMemoryStore()
		if opts.RateLimitStore == StorageRedis {
			counters = store.NewRateLimitRedisStore(do.MustInvoke[*RedisClient](i).Client)
		}

		return ratelimit.NewSlidingWindowLimiter(counters), nil
	})
}

// HTTPPackage provides the router and the huma API with every route registered.
func HTTPPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*chi.Mux, error) {
		m := do.MustInvoke[*metrics.Metrics](i)

		router := chi.NewMux()
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Content-Type"},
			ExposedHeaders: []string{"Location", "Retry-After"},
			MaxAge:         300,
		}))
		router.Method(http.MethodGet, "/metrics", m.Handler())

		return router, nil
	})

	do.Provide(i, func(i *do.Injector) (huma.API, error) {
		opts := do.MustInvoke[*Options](i)
		logger := do.MustInvoke[*zap.Logger](i)
		router := do.MustInvoke[*chi.Mux](i)
		manager := do.MustInvoke[*shortener.Manager](i)
		limiter := do.MustInvoke[*ratelimit.SlidingWindowLimiter](i)
		storage := do.MustInvoke[*Storage](i)

		api := humachi.New(router, huma.DefaultConfig("Link Lifecycle", "1.0.0"))
		api.UseMiddleware(middleware.RequestMeta(api))
		api.UseMiddleware(middleware.RateLimiter(api, limiter, logger))

		checkers := map[string]health.Checker{"storage": storage.Backend}
		if opts.UsesRedis() {
			checkers["redis"] = health.NewRedisChecker(do.MustInvoke[*RedisClient](i).Client)
		}

		health.RegisterRoutes(api, health.NewHandler(checkers))
		handlers.RegisterRoutes(api,
			handlers.NewLinkHandler(manager, opts.PublicBaseURL(), logger),
			handlers.RouteLimits{
				ShortenPerMinute:  int64(opts.ShortenRateLimit),
				RedirectPerMinute: int64(opts.RedirectRateLimit),
			},
		)

		return api, nil
	})
}

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/humacli"
	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
	"github.com/samber/do"
	"github.com/serroba/link-lifecycle/internal/container"
	"github.com/serroba/link-lifecycle/internal/shortener"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func registerPackages(injector *do.Injector, options *container.Options) {
	do.ProvideValue(injector, options)
	container.LoggerPackage(injector)
	container.RedisPackage(injector)
	container.PostgresPackage(injector)
	container.SQLitePackage(injector)
	container.StoragePackage(injector)
	container.MetricsPackage(injector)
	container.PublisherGroupPackage(injector)
	container.ManagerPackage(injector)
	container.RateLimitPackage(injector)
	container.HTTPPackage(injector)
}

func main() {
	// A missing .env file is fine; the environment and flags still apply.
	_ = godotenv.Load()

	var injector *do.Injector

	cli := humacli.New(func(hooks humacli.Hooks, options *container.Options) {
		injector = do.New()
		registerPackages(injector, options)

		logger := do.MustInvoke[*zap.Logger](injector)

		if err := options.Validate(); err != nil {
			logger.Fatal("invalid options", zap.Error(err))
		}

		var server *http.Server

		hooks.OnStart(func() {
			router := do.MustInvoke[*chi.Mux](injector)

			// Invoke API to trigger route registration
			_ = do.MustInvoke[huma.API](injector)

			server = &http.Server{
				Addr:              fmt.Sprintf(":%d", options.Port),
				Handler:           router,
				ReadHeaderTimeout: 10 * time.Second,
			}

			logger.Info("server starting",
				zap.Int("port", options.Port),
				zap.String("baseURL", options.PublicBaseURL()),
				zap.String("storage", options.Storage),
			)

			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Fatal("server failed", zap.Error(err))
			}
		})

		hooks.OnStop(func() {
			logger.Info("shutting down")

			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			if server != nil {
				if err := server.Shutdown(ctx); err != nil {
					logger.Error("server shutdown error", zap.Error(err))
				}
			}

			if err := injector.Shutdown(); err != nil {
				logger.Error("service shutdown error", zap.Error(err))
			}

			logger.Info("shutdown complete")
			_ = logger.Sync()
		})
	})

	cli.Root().AddCommand(&cobra.Command{
		Use:   "purge",
		Short: "Remove expired links from the collection",
		RunE: func(cmd *cobra.Command, _ []string) error {
			defer func() { _ = injector.Shutdown() }()

			manager := do.MustInvoke[*shortener.Manager](injector)

			removed, err := manager.PurgeExpired(cmd.Context())
			if err != nil {
				return err
			}

			cmd.Printf("removed %d expired links\n", removed)

			return nil
		},
	})

	cli.Root().AddCommand(&cobra.Command{
		Use:   "openapi",
		Short: "Print the OpenAPI document",
		RunE: func(cmd *cobra.Command, _ []string) error {
			api := do.MustInvoke[huma.API](injector)

			doc, err := api.OpenAPI().YAML()
			if err != nil {
				return err
			}

			cmd.Println(string(doc))

			return nil
		},
	})

	cli.Run()
}

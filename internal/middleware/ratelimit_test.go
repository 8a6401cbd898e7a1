package middleware_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/serroba/link-lifecycle/internal/middleware"
	"github.com/serroba/link-lifecycle/internal/ratelimit"
	"github.com/serroba/link-lifecycle/internal/store"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type failingStore struct{}

func (failingStore) Record(context.Context, string, time.Duration) (int64, error) {
	return 0, errors.New("store down")
}

func setupLimitedAPI(t *testing.T, rs ratelimit.Store) *chi.Mux {
	t.Helper()

	router := chi.NewMux()
	api := humachi.New(router, huma.DefaultConfig("Test", "1.0.0"))
	api.UseMiddleware(middleware.RateLimiter(api, ratelimit.NewSlidingWindowLimiter(rs), zap.NewNop()))

	handler := func(_ context.Context, _ *struct{}) (*testOutput, error) {
		return &testOutput{Body: "ok"}, nil
	}

	huma.Register(api, huma.Operation{
		OperationID: "limited",
		Method:      http.MethodGet,
		Path:        "/limited",
		Metadata:    map[string]any{ratelimit.MetadataKey: ratelimit.PerMinute(2)},
	}, handler)

	huma.Register(api, huma.Operation{
		OperationID: "disabled",
		Method:      http.MethodGet,
		Path:        "/disabled",
		Metadata:    map[string]any{ratelimit.MetadataKey: ratelimit.PerMinute(0)},
	}, handler)

	huma.Get(api, "/open", handler)

	return router
}

func get(router http.Handler, path, userAgent string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.RemoteAddr = "192.168.1.1:12345"
	req.Header.Set("User-Agent", userAgent)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	return rec
}

func TestRateLimiter(t *testing.T) {
	t.Run("returns 429 once the endpoint budget is spent", func(t *testing.T) {
		router := setupLimitedAPI(t, store.NewRateLimitMemoryStore())

		assert.Equal(t, http.StatusOK, get(router, "/limited", "TestAgent").Code)
		assert.Equal(t, http.StatusOK, get(router, "/limited", "TestAgent").Code)

		rec := get(router, "/limited", "TestAgent")

		assert.Equal(t, http.StatusTooManyRequests, rec.Code)
		assert.Equal(t, "60", rec.Header().Get("Retry-After"))
		assert.Contains(t, rec.Body.String(), "rate limit exceeded: 3/2 requests in 1m0s")
	})

	t.Run("uses IP and User-Agent for client key", func(t *testing.T) {
		router := setupLimitedAPI(t, store.NewRateLimitMemoryStore())

		for i := 0; i < 2; i++ {
			get(router, "/limited", "TestAgent")
		}

		assert.Equal(t, http.StatusTooManyRequests, get(router, "/limited", "TestAgent").Code)
		assert.Equal(t, http.StatusOK, get(router, "/limited", "OtherAgent").Code)
	})

	t.Run("does not limit operations without or with disabled config", func(t *testing.T) {
		router := setupLimitedAPI(t, store.NewRateLimitMemoryStore())

		for i := 0; i < 5; i++ {
			assert.Equal(t, http.StatusOK, get(router, "/open", "TestAgent").Code)
			assert.Equal(t, http.StatusOK, get(router, "/disabled", "TestAgent").Code)
		}
	})

	t.Run("returns 500 when the store fails", func(t *testing.T) {
		router := setupLimitedAPI(t, failingStore{})

		assert.Equal(t, http.StatusInternalServerError, get(router, "/limited", "TestAgent").Code)
	})
}

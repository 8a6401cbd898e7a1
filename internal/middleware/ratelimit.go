package middleware

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"strconv"

	"github.com/danielgtaylor/huma/v2"
	"github.com/serroba/link-lifecycle/internal/ratelimit"
	"go.uber.org/zap"
)

// RateLimiter returns a Huma middleware applying the limits declared in operation metadata.
// Operations without ratelimit.MetadataKey, or with a disabled config, pass through.
func RateLimiter(
	api huma.API,
	limiter *ratelimit.SlidingWindowLimiter,
	logger *zap.Logger,
) func(ctx huma.Context, next func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		op := ctx.Operation()

		cfg := ratelimit.ConfigFor(op)
		if cfg == nil || cfg.Disabled || len(cfg.Limits) == 0 {
			next(ctx)

			return
		}

		exceeded, err := limiter.Check(ctx.Context(), clientKey(ctx), op.Path, cfg.Limits)
		if err != nil {
			logger.Error("rate limit check failed", zap.String("path", op.Path), zap.Error(err))
			_ = huma.WriteErr(api, ctx, http.StatusInternalServerError, "internal server error", err)

			return
		}

		if exceeded != nil {
			logger.Warn("rate limit exceeded",
				zap.String("path", op.Path),
				zap.String("method", ctx.Method()),
				zap.Int64("count", exceeded.Count),
				zap.Int64("max", exceeded.Limit.Max),
				zap.Duration("window", exceeded.Limit.Window),
				zap.String("client_ip", clientIP(ctx)),
			)

			ctx.SetHeader("Retry-After", strconv.Itoa(int(exceeded.Limit.Window.Seconds())))
			_ = huma.WriteErr(api, ctx, http.StatusTooManyRequests, fmt.Sprintf(
				"rate limit exceeded: %d/%d requests in %s", exceeded.Count, exceeded.Limit.Max, exceeded.Limit.Window))

			return
		}

		next(ctx)
	}
}

// clientKey identifies a client by IP and User-Agent.
func clientKey(ctx huma.Context) string {
	hash := sha256.Sum256([]byte(clientIP(ctx) + "|" + ctx.Header("User-Agent")))

	return hex.EncodeToString(hash[:])
}

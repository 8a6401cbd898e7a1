package ratelimit

import (
	"context"
	"fmt"
)

// Exceeded describes the limit a client ran into.
type Exceeded struct {
	Limit Limit
	Count int64
}

// SlidingWindowLimiter enforces per-route limits using a sliding window store.
type SlidingWindowLimiter struct {
	store Store
}

// NewSlidingWindowLimiter creates a new sliding window rate limiter.
func NewSlidingWindowLimiter(store Store) *SlidingWindowLimiter {
	return &SlidingWindowLimiter{store: store}
}

// Check records one request for client on route against every limit and returns the first
// limit exceeded, or nil when the request is allowed.
//
// The route is the operation's path template, so all codes behind "/{code}" share one counter
// per client.
func (l *SlidingWindowLimiter) Check(ctx context.Context, client, route string, limits []Limit) (*Exceeded, error) {
	for _, limit := range limits {
		key := fmt.Sprintf("%s:%s:%d", client, route, limit.Window.Milliseconds())

		count, err := l.store.Record(ctx, key, limit.Window)
		if err != nil {
			return nil, err
		}

		if count > limit.Max {
			return &Exceeded{Limit: limit, Count: count}, nil
		}
	}

	return nil, nil
}

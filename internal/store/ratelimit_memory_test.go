package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stepClock struct {
	now time.Time
}

func (c *stepClock) Now() time.Time { return c.now }

func (c *stepClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newClockedRateLimitStore() (*RateLimitMemoryStore, *stepClock) {
	clock := &stepClock{now: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)}
	s := NewRateLimitMemoryStore()
	s.now = clock.Now

	return s, clock
}

func TestRateLimitMemoryStore_Record(t *testing.T) {
	ctx := context.Background()

	t.Run("counts hits inside the window", func(t *testing.T) {
		s, clock := newClockedRateLimitStore()

		for want := int64(1); want <= 3; want++ {
			count, err := s.Record(ctx, "203.0.113.7:/shorten:60000", time.Minute)

			require.NoError(t, err)
			assert.Equal(t, want, count)
			clock.Advance(10 * time.Second)
		}
	})

	t.Run("keeps clients apart", func(t *testing.T) {
		s, _ := newClockedRateLimitStore()

		_, _ = s.Record(ctx, "client-a:/{code}:60000", time.Minute)
		_, _ = s.Record(ctx, "client-a:/{code}:60000", time.Minute)

		count, err := s.Record(ctx, "client-b:/{code}:60000", time.Minute)

		require.NoError(t, err)
		assert.Equal(t, int64(1), count)
	})

	t.Run("drops hits once they leave the window", func(t *testing.T) {
		s, clock := newClockedRateLimitStore()
		key := "client:/shorten:60000"

		_, _ = s.Record(ctx, key, time.Minute)
		clock.Advance(30 * time.Second)
		_, _ = s.Record(ctx, key, time.Minute)

		clock.Advance(30 * time.Second)

		count, err := s.Record(ctx, key, time.Minute)
		require.NoError(t, err)
		assert.Equal(t, int64(2), count, "the hit exactly one window old is pruned")

		clock.Advance(2 * time.Minute)

		count, err = s.Record(ctx, key, time.Minute)
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)
		assert.Len(t, s.requests[key], 1)
	})

	t.Run("prunes per window length", func(t *testing.T) {
		s, clock := newClockedRateLimitStore()

		_, _ = s.Record(ctx, "short", time.Second)
		_, _ = s.Record(ctx, "long", time.Hour)

		clock.Advance(5 * time.Second)

		short, err := s.Record(ctx, "short", time.Second)
		require.NoError(t, err)

		long, err := s.Record(ctx, "long", time.Hour)
		require.NoError(t, err)

		assert.Equal(t, int64(1), short)
		assert.Equal(t, int64(2), long)
	})
}

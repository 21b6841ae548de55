package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adlift/adlift-api/internal/asyncop"
	"github.com/adlift/adlift-api/internal/config"
)

func newTestLimiter(t *testing.T, cfg config.RateLimitConfig) (*Limiter, *time.Time) {
	t.Helper()

	l := NewLimiter(cfg)
	current := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return current }
	l.lastSweep = current
	return l, &current
}

func TestLimiter_Allow(t *testing.T) {
	t.Parallel()

	t.Run("burst then denied", func(t *testing.T) {
		t.Parallel()

		l, _ := newTestLimiter(t, config.RateLimitConfig{RequestsPerMinute: 60, Burst: 3})

		assert.True(t, l.Allow("user-a"))
		assert.True(t, l.Allow("user-a"))
		assert.True(t, l.Allow("user-a"))
		assert.False(t, l.Allow("user-a"), "fourth request within the same instant should be denied")
	})

	t.Run("keys are independent", func(t *testing.T) {
		t.Parallel()

		l, _ := newTestLimiter(t, config.RateLimitConfig{RequestsPerMinute: 60, Burst: 1})

		assert.True(t, l.Allow("user-a"))
		assert.False(t, l.Allow("user-a"))
		assert.True(t, l.Allow("user-b"), "a different key gets its own bucket")
	})

	t.Run("tokens refill over time", func(t *testing.T) {
		t.Parallel()

		l, current := newTestLimiter(t, config.RateLimitConfig{RequestsPerMinute: 60, Burst: 1})

		require.True(t, l.Allow("user-a"))
		require.False(t, l.Allow("user-a"))

		*current = current.Add(2 * time.Second) // 1 req/s refill rate
		assert.True(t, l.Allow("user-a"))
	})
}

func TestLimiter_Eviction(t *testing.T) {
	t.Parallel()

	l, current := newTestLimiter(t, config.RateLimitConfig{
		RequestsPerMinute: 60,
		Burst:             1,
		BucketTTLSeconds:  60,
	})

	l.Allow("user-a")
	l.Allow("user-b")
	require.Equal(t, 2, l.Len())

	// user-b stays active past the TTL boundary, user-a goes idle.
	*current = current.Add(45 * time.Second)
	l.Allow("user-b")

	*current = current.Add(30 * time.Second)
	l.Allow("user-c")

	assert.Equal(t, 2, l.Len(), "idle bucket should be evicted, active one kept")
}

func TestLimiter_Reset(t *testing.T) {
	t.Parallel()

	l, _ := newTestLimiter(t, config.RateLimitConfig{RequestsPerMinute: 60, Burst: 1})

	require.True(t, l.Allow("user-a"))
	require.False(t, l.Allow("user-a"))

	l.Reset()
	assert.Equal(t, 0, l.Len())
	assert.True(t, l.Allow("user-a"), "reset should restore a full bucket")
}

func TestLimiter_Wrap(t *testing.T) {
	t.Parallel()

	t.Run("runs work when a token is available", func(t *testing.T) {
		t.Parallel()

		l := NewLimiter(config.RateLimitConfig{RequestsPerMinute: 600, Burst: 10})

		called := false
		work := l.Wrap("user-a", func(ctx context.Context) (any, error) {
			called = true
			return "done", nil
		})

		result, err := work(context.Background())
		require.NoError(t, err)
		assert.True(t, called)
		assert.Equal(t, "done", result)
	})

	t.Run("cancelled wait is transient", func(t *testing.T) {
		t.Parallel()

		l := NewLimiter(config.RateLimitConfig{RequestsPerMinute: 1, Burst: 1})
		require.True(t, l.Allow("user-a"), "drain the only token")

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		work := l.Wrap("user-a", func(ctx context.Context) (any, error) {
			t.Fatal("work should not run when the wait fails")
			return nil, nil
		})

		_, err := work(ctx)
		require.Error(t, err)
		assert.True(t, asyncop.IsTransient(err))
	})
}

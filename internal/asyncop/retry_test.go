package asyncop

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRetryPolicy_NextDelay(t *testing.T) {
	t.Parallel()

	t.Run("exponential growth without jitter", func(t *testing.T) {
		t.Parallel()

		policy := RetryPolicy{
			MaxAttempts: 5,
			BaseDelay:   time.Second,
		}

		assert.Equal(t, 1*time.Second, policy.NextDelay(1))
		assert.Equal(t, 2*time.Second, policy.NextDelay(2))
		assert.Equal(t, 4*time.Second, policy.NextDelay(3))
		assert.Equal(t, 8*time.Second, policy.NextDelay(4))
	})

	t.Run("capped at max delay", func(t *testing.T) {
		t.Parallel()

		policy := RetryPolicy{
			MaxAttempts: 10,
			BaseDelay:   time.Second,
			MaxDelay:    5 * time.Second,
		}

		assert.Equal(t, 4*time.Second, policy.NextDelay(3))
		assert.Equal(t, 5*time.Second, policy.NextDelay(4))
		assert.Equal(t, 5*time.Second, policy.NextDelay(8))
	})

	t.Run("attempt below one treated as first attempt", func(t *testing.T) {
		t.Parallel()

		policy := RetryPolicy{MaxAttempts: 3, BaseDelay: time.Second}

		assert.Equal(t, time.Second, policy.NextDelay(0))
		assert.Equal(t, time.Second, policy.NextDelay(-4))
	})

	t.Run("jitter stays within half to one-and-a-half of base", func(t *testing.T) {
		t.Parallel()

		policy := RetryPolicy{
			MaxAttempts: 3,
			BaseDelay:   time.Second,
			Jitter:      true,
		}

		for i := 0; i < 200; i++ {
			delay := policy.NextDelay(1)
			assert.GreaterOrEqual(t, delay, 500*time.Millisecond)
			assert.Less(t, delay, 1500*time.Millisecond)
		}
	})
}

func TestRetryPolicy_ShouldRetry(t *testing.T) {
	t.Parallel()

	policy := RetryPolicy{
		MaxAttempts: 3,
		BaseDelay:   time.Second,
	}

	transientErr := fmt.Errorf("%w: connection reset", ErrTransient)
	validationErr := fmt.Errorf("%w: budget must be positive", ErrValidation)

	t.Run("retries transient error with budget left", func(t *testing.T) {
		t.Parallel()
		assert.True(t, policy.ShouldRetry(1, transientErr, policy.NextDelay(1), 20*time.Second))
		assert.True(t, policy.ShouldRetry(2, transientErr, policy.NextDelay(2), 20*time.Second))
	})

	t.Run("stops at max attempts", func(t *testing.T) {
		t.Parallel()
		assert.False(t, policy.ShouldRetry(3, transientErr, policy.NextDelay(3), 20*time.Second))
		assert.False(t, policy.ShouldRetry(7, transientErr, policy.NextDelay(7), 20*time.Second))
	})

	t.Run("never retries validation errors", func(t *testing.T) {
		t.Parallel()
		assert.False(t, policy.ShouldRetry(1, validationErr, policy.NextDelay(1), 20*time.Second))
	})

	t.Run("never retries plain errors", func(t *testing.T) {
		t.Parallel()
		assert.False(t, policy.ShouldRetry(1, errors.New("boom"), policy.NextDelay(1), 20*time.Second))
	})

	t.Run("skips retry when delay would pass the deadline", func(t *testing.T) {
		t.Parallel()
		// NextDelay(1) is 1s; only 500ms remain.
		assert.False(t, policy.ShouldRetry(1, transientErr, policy.NextDelay(1), 500*time.Millisecond))
		assert.False(t, policy.ShouldRetry(1, transientErr, policy.NextDelay(1), 0))
		assert.False(t, policy.ShouldRetry(1, transientErr, policy.NextDelay(1), -time.Second))
	})

	t.Run("judges the delay it is handed, not a fresh draw", func(t *testing.T) {
		t.Parallel()
		jittered := RetryPolicy{MaxAttempts: 3, BaseDelay: time.Second, Jitter: true}

		// The caller's single NextDelay draw decides; a delay just under
		// the remaining budget retries, one at or over it does not.
		assert.True(t, jittered.ShouldRetry(1, transientErr, 999*time.Millisecond, time.Second))
		assert.False(t, jittered.ShouldRetry(1, transientErr, time.Second, time.Second))
	})
}

func TestDefaultRetryPolicy(t *testing.T) {
	t.Parallel()

	policy := DefaultRetryPolicy()
	assert.Equal(t, 3, policy.MaxAttempts)
	assert.Equal(t, time.Second, policy.BaseDelay)
	assert.True(t, policy.Jitter)
}

package asyncop

import (
	"math/rand"
	"sync"
	"time"
)

// RetryPolicy decides whether a failed attempt should be retried and how
// long to wait before the next attempt. Delays grow exponentially from
// BaseDelay, optionally jittered by a uniform factor in [0.5, 1.5) so that
// many operations failing at once do not retry in lockstep.
type RetryPolicy struct {
	// MaxAttempts is the total number of attempts, including the first.
	// Must be at least 1.
	MaxAttempts int

	// BaseDelay is the wait before the first retry.
	BaseDelay time.Duration

	// MaxDelay caps the backoff. Zero means no cap.
	MaxDelay time.Duration

	// Jitter enables randomization of each delay.
	Jitter bool
}

// DefaultRetryPolicy returns the policy used for generation requests:
// three attempts with a jittered 1s/2s backoff capped at 10s.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 3,
		BaseDelay:   time.Second,
		MaxDelay:    10 * time.Second,
		Jitter:      true,
	}
}

// jitterRand is shared across policies; rand.Rand is not goroutine-safe.
var (
	jitterMu   sync.Mutex
	jitterRand = rand.New(rand.NewSource(time.Now().UnixNano()))
)

// NextDelay returns the wait before the attempt following attempt. The
// first retry (attempt == 1) waits BaseDelay, doubling thereafter.
func (p RetryPolicy) NextDelay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	delay := p.BaseDelay << (attempt - 1)
	if delay < p.BaseDelay {
		// Shift overflowed; fall back to the cap.
		delay = p.MaxDelay
	}
	if p.MaxDelay > 0 && delay > p.MaxDelay {
		delay = p.MaxDelay
	}
	if p.Jitter && delay > 0 {
		jitterMu.Lock()
		factor := 0.5 + jitterRand.Float64()
		jitterMu.Unlock()
		delay = time.Duration(float64(delay) * factor)
	}
	return delay
}

// ShouldRetry reports whether the attempt that just failed with err should
// be retried after delay. Retries require remaining attempt budget, a
// transient error, and enough time before the deadline for the wait itself.
// A validation error is never retried.
//
// The caller computes delay once with NextDelay and uses that same value for
// the actual wait, so with jitter enabled the delay that was judged to fit
// the remaining budget is the delay actually waited.
func (p RetryPolicy) ShouldRetry(attempt int, err error, delay, remaining time.Duration) bool {
	if attempt >= p.MaxAttempts {
		return false
	}
	if !IsTransient(err) {
		return false
	}
	return delay < remaining
}

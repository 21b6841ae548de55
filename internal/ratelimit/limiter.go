// Package ratelimit provides per-key token bucket rate limiting for the API
// surface and for outbound generation work.
//
// Buckets are keyed by caller identity (user ID or client IP) and evicted
// after a period of inactivity so the map does not grow without bound.
package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/adlift/adlift-api/internal/asyncop"
	"github.com/adlift/adlift-api/internal/config"
)

// bucket pairs a token bucket with the time it was last used, for eviction.
type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// Limiter hands out one token bucket per key. Safe for concurrent use.
type Limiter struct {
	mu        sync.Mutex
	buckets   map[string]*bucket
	limit     rate.Limit
	burst     int
	ttl       time.Duration
	lastSweep time.Time

	// now is replaceable in tests
	now func() time.Time
}

// NewLimiter creates a Limiter from the given configuration.
func NewLimiter(cfg config.RateLimitConfig) *Limiter {
	requestsPerMinute := cfg.RequestsPerMinute
	if requestsPerMinute <= 0 {
		requestsPerMinute = 60
	}

	burst := cfg.Burst
	if burst <= 0 {
		burst = requestsPerMinute
	}

	ttl := time.Duration(cfg.BucketTTLSeconds) * time.Second
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}

	return &Limiter{
		buckets:   make(map[string]*bucket),
		limit:     rate.Limit(float64(requestsPerMinute) / 60.0),
		burst:     burst,
		ttl:       ttl,
		lastSweep: time.Now(),
		now:       time.Now,
	}
}

// Allow reports whether the caller identified by key may proceed now.
// A previously unseen key always gets a fresh full bucket.
func (l *Limiter) Allow(key string) bool {
	return l.bucketFor(key).AllowN(l.now(), 1)
}

// Wait blocks until the caller identified by key may proceed, or until the
// context is done.
func (l *Limiter) Wait(ctx context.Context, key string) error {
	return l.bucketFor(key).Wait(ctx)
}

// Wrap returns a work function that acquires a token for key before running
// work. A wait cut short by the context is surfaced as a transient failure
// so the surrounding operation tracker classifies it consistently.
func (l *Limiter) Wrap(key string, work asyncop.WorkFunc) asyncop.WorkFunc {
	return func(ctx context.Context) (any, error) {
		if err := l.Wait(ctx, key); err != nil {
			return nil, fmt.Errorf("%w: rate limit wait for %q: %v", asyncop.ErrTransient, key, err)
		}
		return work(ctx)
	}
}

// Reset drops all buckets. Intended for tests.
func (l *Limiter) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.buckets = make(map[string]*bucket)
	l.lastSweep = l.now()
}

// Len returns the number of live buckets.
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}

// bucketFor returns the bucket for key, creating it if needed, and runs a
// lazy eviction sweep when one is due.
func (l *Limiter) bucketFor(key string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.lastSweep) >= l.ttl {
		for k, b := range l.buckets {
			if now.Sub(b.lastSeen) >= l.ttl {
				delete(l.buckets, k)
			}
		}
		l.lastSweep = now
	}

	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.buckets[key] = b
	}
	b.lastSeen = now

	return b.limiter
}

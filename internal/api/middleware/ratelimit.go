package middleware

import (
	"net/http"

	"github.com/adlift/adlift-api/internal/api/shared"
	"github.com/adlift/adlift-api/internal/ratelimit"
)

// RateLimitMiddleware limits request throughput per authenticated user.
// It must run after Authenticate so the user ID is available; unauthenticated
// requests are limited by remote address instead.
type RateLimitMiddleware struct {
	limiter *ratelimit.Limiter
}

// NewRateLimitMiddleware creates a RateLimitMiddleware using the given limiter.
func NewRateLimitMiddleware(limiter *ratelimit.Limiter) *RateLimitMiddleware {
	return &RateLimitMiddleware{limiter: limiter}
}

// Limit rejects requests exceeding the per-user rate with 429 Too Many
// Requests.
func (m *RateLimitMiddleware) Limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.RemoteAddr
		if userID, ok := GetUserID(r); ok {
			key = userID.String()
		}

		if !m.limiter.Allow(key) {
			shared.RespondWithErrorAndLog(w, r, http.StatusTooManyRequests,
				"Rate limit exceeded, try again later", nil)
			return
		}

		next.ServeHTTP(w, r)
	})
}

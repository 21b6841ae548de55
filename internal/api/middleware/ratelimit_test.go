package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/adlift/adlift-api/internal/api/shared"
	"github.com/adlift/adlift-api/internal/config"
	"github.com/adlift/adlift-api/internal/ratelimit"
)

func TestRateLimitPerUser(t *testing.T) {
	t.Parallel()

	limiter := ratelimit.NewLimiter(config.RateLimitConfig{
		RequestsPerMinute: 60,
		Burst:             2,
		BucketTTLSeconds:  60,
	})
	handler := NewRateLimitMiddleware(limiter).Limit(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusAccepted)
		}))

	do := func(userID uuid.UUID) int {
		req := httptest.NewRequest(http.MethodPost, "/api/generate/keywords", nil)
		ctx := context.WithValue(req.Context(), shared.UserIDContextKey, userID)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req.WithContext(ctx))
		return rec.Code
	}

	alice := uuid.New()
	assert.Equal(t, http.StatusAccepted, do(alice))
	assert.Equal(t, http.StatusAccepted, do(alice))
	assert.Equal(t, http.StatusTooManyRequests, do(alice))

	// A different user has an independent budget.
	bob := uuid.New()
	assert.Equal(t, http.StatusAccepted, do(bob))
}

func TestRateLimitFallsBackToRemoteAddr(t *testing.T) {
	t.Parallel()

	limiter := ratelimit.NewLimiter(config.RateLimitConfig{
		RequestsPerMinute: 60,
		Burst:             1,
		BucketTTLSeconds:  60,
	})
	handler := NewRateLimitMiddleware(limiter).Limit(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusAccepted)
		}))

	do := func(addr string) int {
		req := httptest.NewRequest(http.MethodPost, "/api/generate/keywords", nil)
		req.RemoteAddr = addr
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusAccepted, do("10.0.0.1:1234"))
	assert.Equal(t, http.StatusTooManyRequests, do("10.0.0.1:1234"))
	assert.Equal(t, http.StatusAccepted, do("10.0.0.2:1234"))
}

package api

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/adlift/adlift-api/internal/domain"
	"github.com/adlift/adlift-api/internal/generation"
	"github.com/adlift/adlift-api/internal/service"
	"github.com/adlift/adlift-api/internal/service/auth"
	"github.com/adlift/adlift-api/internal/store"
)

func TestMapErrorToStatusCode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"invalid token", auth.ErrInvalidToken, http.StatusUnauthorized},
		{"expired token", auth.ErrExpiredToken, http.StatusUnauthorized},
		{"invalid credentials", service.ErrInvalidCredentials, http.StatusUnauthorized},
		{"not owned", service.ErrNotOwned, http.StatusForbidden},
		{"campaign not found", store.ErrCampaignNotFound, http.StatusNotFound},
		{"job not found", store.ErrJobNotFound, http.StatusNotFound},
		{"generic not found", store.ErrNotFound, http.StatusNotFound},
		{"email exists", store.ErrEmailExists, http.StatusConflict},
		{"campaign archived", service.ErrCampaignArchived, http.StatusConflict},
		{"invalid status change", domain.ErrInvalidStatusChange, http.StatusConflict},
		{"invalid entity", store.ErrInvalidEntity, http.StatusBadRequest},
		{"invalid generation request", generation.ErrInvalidRequest, http.StatusBadRequest},
		{"unknown error", errors.New("boom"), http.StatusInternalServerError},
		{"wrapped sentinel", fmt.Errorf("context: %w", store.ErrJobNotFound), http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MapErrorToStatusCode(tt.err))
		})
	}
}

func TestGetSafeErrorMessage(t *testing.T) {
	t.Parallel()

	// Internal details must never reach the message.
	internal := fmt.Errorf("pq: connection refused host=10.0.0.1: %w", errors.New("boom"))
	assert.Equal(t, "An unexpected error occurred", GetSafeErrorMessage(internal))
	assert.Equal(t, "An unexpected error occurred", GetSafeErrorMessage(nil))

	assert.Equal(t, "Campaign not found", GetSafeErrorMessage(store.ErrCampaignNotFound))
	assert.Equal(t, "Generation job not found",
		GetSafeErrorMessage(fmt.Errorf("load: %w", store.ErrJobNotFound)))
	assert.Equal(t, "You do not have access to this resource", GetSafeErrorMessage(service.ErrNotOwned))
	assert.Equal(t, "Invalid token", GetSafeErrorMessage(auth.ErrExpiredToken))
}

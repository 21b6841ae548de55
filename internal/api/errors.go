package api

import (
	"errors"
	"net/http"

	"github.com/adlift/adlift-api/internal/api/shared"
	"github.com/adlift/adlift-api/internal/domain"
	"github.com/adlift/adlift-api/internal/generation"
	"github.com/adlift/adlift-api/internal/service"
	"github.com/adlift/adlift-api/internal/service/auth"
	"github.com/adlift/adlift-api/internal/store"
)

// MapErrorToStatusCode maps internal errors to HTTP status codes based on
// the error type. This keeps internal error types out of client responses.
func MapErrorToStatusCode(err error) int {
	switch {
	// Authentication errors
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrMissingToken),
		errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized

	// Authorization errors
	case errors.Is(err, service.ErrNotOwned):
		return http.StatusForbidden

	// Not found errors
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound

	// Conflict errors
	case errors.Is(err, store.ErrEmailExists):
		return http.StatusConflict
	case errors.Is(err, service.ErrCampaignArchived),
		errors.Is(err, domain.ErrInvalidStatusChange),
		errors.Is(err, domain.ErrInvalidJobTransition):
		return http.StatusConflict

	// Bad request errors
	case errors.Is(err, store.ErrInvalidEntity),
		errors.Is(err, generation.ErrInvalidRequest):
		return http.StatusBadRequest

	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-facing message for the given
// error. Internal details never leave the server.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	switch {
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrMissingToken):
		return "Invalid token"

	case errors.Is(err, service.ErrInvalidCredentials):
		return "Invalid email or password"

	case errors.Is(err, service.ErrNotOwned):
		return "You do not have access to this resource"

	case errors.Is(err, store.ErrCampaignNotFound):
		return "Campaign not found"

	case errors.Is(err, store.ErrJobNotFound):
		return "Generation job not found"

	case errors.Is(err, store.ErrUserNotFound):
		return "User not found"

	case errors.Is(err, store.ErrNotFound):
		return "Resource not found"

	case errors.Is(err, store.ErrEmailExists):
		return "Email already exists"

	case errors.Is(err, service.ErrCampaignArchived):
		return "Campaign is archived and cannot be modified"

	case errors.Is(err, domain.ErrInvalidStatusChange):
		return "Invalid campaign status transition"

	case errors.Is(err, domain.ErrInvalidJobTransition):
		return "Invalid job status transition"

	case errors.Is(err, generation.ErrInvalidRequest):
		return "Invalid generation request"

	case errors.Is(err, store.ErrInvalidEntity):
		return "Invalid request data"

	default:
		return "An unexpected error occurred"
	}
}

// RespondWithServiceError maps a service-layer error onto a status code and
// safe message, logging the original error.
func RespondWithServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status := MapErrorToStatusCode(err)
	message := GetSafeErrorMessage(err)
	shared.RespondWithErrorAndLog(w, r, status, message, err)
}

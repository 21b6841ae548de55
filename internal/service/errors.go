package service

import "errors"

// Sentinel errors shared across services. Handlers map these onto HTTP
// status codes.
var (
	// ErrNotOwned indicates that the requested resource exists but belongs
	// to a different user. Maps to HTTP 403 Forbidden.
	ErrNotOwned = errors.New("resource is owned by another user")

	// ErrInvalidCredentials indicates a failed login attempt. The cause is
	// deliberately not distinguished between an unknown email and a wrong
	// password. Maps to HTTP 401 Unauthorized.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrCampaignArchived indicates an attempt to modify an archived
	// campaign. Archival is terminal. Maps to HTTP 409 Conflict.
	ErrCampaignArchived = errors.New("campaign is archived")
)

package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// CampaignPlatform identifies the advertising network a campaign runs on.
type CampaignPlatform string

// Supported advertising platforms
const (
	PlatformLinkedIn CampaignPlatform = "linkedin"
	PlatformGoogle   CampaignPlatform = "google"
)

// CampaignStatus represents the lifecycle state of a campaign.
type CampaignStatus string

// Possible campaign status values
const (
	CampaignStatusDraft    CampaignStatus = "draft"
	CampaignStatusActive   CampaignStatus = "active"
	CampaignStatusPaused   CampaignStatus = "paused"
	CampaignStatusArchived CampaignStatus = "archived"
)

// Common validation errors for Campaign
var (
	ErrEmptyCampaignID        = errors.New("campaign ID cannot be empty")
	ErrEmptyCampaignUserID    = errors.New("campaign user ID cannot be empty")
	ErrEmptyCampaignName      = errors.New("campaign name cannot be empty")
	ErrInvalidPlatform        = errors.New("invalid campaign platform")
	ErrInvalidCampaignStatus  = errors.New("invalid campaign status")
	ErrInvalidDailyBudget     = errors.New("daily budget must be positive")
	ErrInvalidStatusChange    = errors.New("invalid campaign status transition")
	ErrCampaignNameTooLong    = errors.New("campaign name exceeds 255 characters")
	ErrEmptyCampaignObjective = errors.New("campaign objective cannot be empty")
)

// Campaign represents an advertising campaign on one platform. Campaigns
// start as drafts and move through active/paused before being archived;
// archival is terminal.
type Campaign struct {
	ID               uuid.UUID        `json:"id"`
	UserID           uuid.UUID        `json:"user_id"`
	Name             string           `json:"name"`
	Platform         CampaignPlatform `json:"platform"`
	Objective        string           `json:"objective"`
	Status           CampaignStatus   `json:"status"`
	DailyBudgetCents int64            `json:"daily_budget_cents"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
}

// NewCampaign creates a draft Campaign owned by userID.
// It generates a new UUID and sets the timestamps.
// Returns an error if validation fails.
func NewCampaign(
	userID uuid.UUID,
	name string,
	platform CampaignPlatform,
	objective string,
	dailyBudgetCents int64,
) (*Campaign, error) {
	campaign := &Campaign{
		ID:               uuid.New(),
		UserID:           userID,
		Name:             name,
		Platform:         platform,
		Objective:        objective,
		Status:           CampaignStatusDraft,
		DailyBudgetCents: dailyBudgetCents,
		CreatedAt:        time.Now().UTC(),
		UpdatedAt:        time.Now().UTC(),
	}

	if err := campaign.Validate(); err != nil {
		return nil, err
	}

	return campaign, nil
}

// Validate checks if the Campaign has valid data.
// Returns an error if any field fails validation.
func (c *Campaign) Validate() error {
	if c.ID == uuid.Nil {
		return ErrEmptyCampaignID
	}

	if c.UserID == uuid.Nil {
		return ErrEmptyCampaignUserID
	}

	if c.Name == "" {
		return ErrEmptyCampaignName
	}

	if len(c.Name) > 255 {
		return ErrCampaignNameTooLong
	}

	if !isValidPlatform(c.Platform) {
		return ErrInvalidPlatform
	}

	if c.Objective == "" {
		return ErrEmptyCampaignObjective
	}

	if !isValidCampaignStatus(c.Status) {
		return ErrInvalidCampaignStatus
	}

	if c.DailyBudgetCents <= 0 {
		return ErrInvalidDailyBudget
	}

	return nil
}

// UpdateStatus moves the campaign to a new status, rejecting transitions
// that skip the lifecycle (a draft cannot be paused, an archived campaign
// cannot change at all).
func (c *Campaign) UpdateStatus(status CampaignStatus) error {
	if !isValidCampaignStatus(status) {
		return ErrInvalidCampaignStatus
	}

	if !campaignTransitionAllowed(c.Status, status) {
		return ErrInvalidStatusChange
	}

	c.Status = status
	c.UpdatedAt = time.Now().UTC()
	return nil
}

// campaignTransitionAllowed reports whether moving from one status to
// another is legal.
func campaignTransitionAllowed(from, to CampaignStatus) bool {
	if from == to {
		return true
	}

	switch from {
	case CampaignStatusDraft:
		return to == CampaignStatusActive || to == CampaignStatusArchived
	case CampaignStatusActive:
		return to == CampaignStatusPaused || to == CampaignStatusArchived
	case CampaignStatusPaused:
		return to == CampaignStatusActive || to == CampaignStatusArchived
	case CampaignStatusArchived:
		return false
	}
	return false
}

// isValidPlatform checks if the given platform is supported.
func isValidPlatform(platform CampaignPlatform) bool {
	switch platform {
	case PlatformLinkedIn, PlatformGoogle:
		return true
	}
	return false
}

// isValidCampaignStatus checks if the given status is a valid CampaignStatus.
func isValidCampaignStatus(status CampaignStatus) bool {
	switch status {
	case CampaignStatusDraft, CampaignStatusActive, CampaignStatusPaused, CampaignStatusArchived:
		return true
	}
	return false
}

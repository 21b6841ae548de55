package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/adlift/adlift-api/internal/domain"
)

// CampaignStore defines the interface for campaign data persistence.
type CampaignStore interface {
	// Create saves a new campaign to the store.
	// Returns ErrInvalidEntity wrapping the domain error if the campaign is invalid.
	Create(ctx context.Context, campaign *domain.Campaign) error

	// GetByID retrieves a campaign by its unique ID.
	// Returns ErrCampaignNotFound if the campaign does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Campaign, error)

	// ListByUser retrieves all campaigns owned by the given user, newest first.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Campaign, error)

	// Update modifies an existing campaign. The caller provides the complete
	// campaign object; UpdatedAt is set by the store.
	// Returns ErrCampaignNotFound if the campaign does not exist.
	Update(ctx context.Context, campaign *domain.Campaign) error

	// Delete removes a campaign from the store by its ID.
	// Returns ErrCampaignNotFound if the campaign does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// WithTx returns a new CampaignStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) CampaignStore
}

package service

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/adlift/adlift-api/internal/domain"
	"github.com/adlift/adlift-api/internal/store"
)

// CampaignParams carries the fields needed to create a campaign.
type CampaignParams struct {
	Name             string
	Platform         domain.CampaignPlatform
	Objective        string
	DailyBudgetCents int64
}

// CampaignUpdate carries the optional fields of a campaign update. Nil
// fields are left unchanged.
type CampaignUpdate struct {
	Name             *string
	Objective        *string
	DailyBudgetCents *int64
	Status           *domain.CampaignStatus
}

// CampaignService provides campaign management operations. All operations
// that target an existing campaign enforce ownership: a campaign belonging
// to another user yields ErrNotOwned.
type CampaignService interface {
	// CreateCampaign creates a new draft campaign owned by userID.
	CreateCampaign(ctx context.Context, userID uuid.UUID, params CampaignParams) (*domain.Campaign, error)

	// GetCampaign retrieves a campaign by ID.
	GetCampaign(ctx context.Context, userID, campaignID uuid.UUID) (*domain.Campaign, error)

	// ListCampaigns retrieves all campaigns owned by userID, newest first.
	ListCampaigns(ctx context.Context, userID uuid.UUID) ([]*domain.Campaign, error)

	// UpdateCampaign applies the given update to a campaign. Status changes
	// follow the campaign lifecycle; an invalid transition yields
	// domain.ErrInvalidStatusChange. Archived campaigns cannot be modified.
	UpdateCampaign(ctx context.Context, userID, campaignID uuid.UUID, update CampaignUpdate) (*domain.Campaign, error)

	// DeleteCampaign removes a campaign.
	DeleteCampaign(ctx context.Context, userID, campaignID uuid.UUID) error
}

// CampaignServiceImpl implements the CampaignService interface.
type CampaignServiceImpl struct {
	campaignStore store.CampaignStore
	db            *sql.DB
	logger        *slog.Logger
}

var _ CampaignService = (*CampaignServiceImpl)(nil)

// NewCampaignService creates a new CampaignService with the given dependencies.
func NewCampaignService(
	campaignStore store.CampaignStore,
	db *sql.DB,
	logger *slog.Logger,
) *CampaignServiceImpl {
	if logger == nil {
		logger = slog.Default()
	}

	return &CampaignServiceImpl{
		campaignStore: campaignStore,
		db:            db,
		logger:        logger.With(slog.String("component", "campaign_service")),
	}
}

// CreateCampaign creates a new draft campaign owned by userID.
func (s *CampaignServiceImpl) CreateCampaign(
	ctx context.Context,
	userID uuid.UUID,
	params CampaignParams,
) (*domain.Campaign, error) {
	campaign, err := domain.NewCampaign(
		userID,
		params.Name,
		params.Platform,
		params.Objective,
		params.DailyBudgetCents,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		return s.campaignStore.WithTx(tx).Create(ctx, campaign)
	})
	if err != nil {
		s.logger.Error("failed to create campaign",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, fmt.Errorf("failed to create campaign: %w", err)
	}

	s.logger.Info("campaign created",
		slog.String("campaign_id", campaign.ID.String()),
		slog.String("user_id", userID.String()),
		slog.String("platform", string(campaign.Platform)))
	return campaign, nil
}

// GetCampaign retrieves a campaign by ID, enforcing ownership.
func (s *CampaignServiceImpl) GetCampaign(
	ctx context.Context,
	userID, campaignID uuid.UUID,
) (*domain.Campaign, error) {
	return s.ownedCampaign(ctx, userID, campaignID)
}

// ListCampaigns retrieves all campaigns owned by userID.
func (s *CampaignServiceImpl) ListCampaigns(
	ctx context.Context,
	userID uuid.UUID,
) ([]*domain.Campaign, error) {
	return s.campaignStore.ListByUser(ctx, userID)
}

// UpdateCampaign applies the given update to a campaign.
func (s *CampaignServiceImpl) UpdateCampaign(
	ctx context.Context,
	userID, campaignID uuid.UUID,
	update CampaignUpdate,
) (*domain.Campaign, error) {
	campaign, err := s.ownedCampaign(ctx, userID, campaignID)
	if err != nil {
		return nil, err
	}

	if campaign.Status == domain.CampaignStatusArchived {
		return nil, ErrCampaignArchived
	}

	if update.Name != nil {
		campaign.Name = *update.Name
	}
	if update.Objective != nil {
		campaign.Objective = *update.Objective
	}
	if update.DailyBudgetCents != nil {
		campaign.DailyBudgetCents = *update.DailyBudgetCents
	}
	if update.Status != nil && *update.Status != campaign.Status {
		if err := campaign.UpdateStatus(*update.Status); err != nil {
			return nil, err
		}
	}

	if err := campaign.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		return s.campaignStore.WithTx(tx).Update(ctx, campaign)
	})
	if err != nil {
		s.logger.Error("failed to update campaign",
			slog.String("error", err.Error()),
			slog.String("campaign_id", campaignID.String()))
		return nil, fmt.Errorf("failed to update campaign: %w", err)
	}

	s.logger.Info("campaign updated",
		slog.String("campaign_id", campaign.ID.String()),
		slog.String("status", string(campaign.Status)))
	return campaign, nil
}

// DeleteCampaign removes a campaign, enforcing ownership.
func (s *CampaignServiceImpl) DeleteCampaign(ctx context.Context, userID, campaignID uuid.UUID) error {
	if _, err := s.ownedCampaign(ctx, userID, campaignID); err != nil {
		return err
	}

	if err := s.campaignStore.Delete(ctx, campaignID); err != nil {
		s.logger.Error("failed to delete campaign",
			slog.String("error", err.Error()),
			slog.String("campaign_id", campaignID.String()))
		return fmt.Errorf("failed to delete campaign: %w", err)
	}

	s.logger.Info("campaign deleted", slog.String("campaign_id", campaignID.String()))
	return nil
}

// ownedCampaign loads a campaign and verifies it belongs to userID.
func (s *CampaignServiceImpl) ownedCampaign(
	ctx context.Context,
	userID, campaignID uuid.UUID,
) (*domain.Campaign, error) {
	campaign, err := s.campaignStore.GetByID(ctx, campaignID)
	if err != nil {
		return nil, err
	}
	if campaign.UserID != userID {
		return nil, ErrNotOwned
	}
	return campaign, nil
}

package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/adlift/adlift-api/internal/domain"
	"github.com/adlift/adlift-api/internal/platform/logger"
	"github.com/adlift/adlift-api/internal/store"
)

// PostgresCampaignStore implements the store.CampaignStore interface
// using a PostgreSQL database as the storage backend.
type PostgresCampaignStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresCampaignStore creates a new PostgreSQL implementation of the CampaignStore interface.
// If logger is nil, a default logger will be used.
func NewPostgresCampaignStore(db store.DBTX, logger *slog.Logger) *PostgresCampaignStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresCampaignStore{
		db:     db,
		logger: logger.With(slog.String("component", "campaign_store")),
	}
}

// Ensure PostgresCampaignStore implements store.CampaignStore interface
var _ store.CampaignStore = (*PostgresCampaignStore)(nil)

// Create implements store.CampaignStore.Create
// Returns store.ErrInvalidEntity if the owning user does not exist.
func (s *PostgresCampaignStore) Create(ctx context.Context, campaign *domain.Campaign) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := campaign.Validate(); err != nil {
		log.Warn("campaign validation failed during create",
			slog.String("error", err.Error()),
			slog.String("campaign_id", campaign.ID.String()))
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		INSERT INTO campaigns (id, user_id, name, platform, objective, status, daily_budget_cents, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		campaign.ID,
		campaign.UserID,
		campaign.Name,
		campaign.Platform,
		campaign.Objective,
		campaign.Status,
		campaign.DailyBudgetCents,
		campaign.CreatedAt,
		campaign.UpdatedAt,
	)

	if err != nil {
		if IsForeignKeyViolation(err) {
			log.Warn("foreign key violation during campaign creation",
				slog.String("campaign_id", campaign.ID.String()),
				slog.String("user_id", campaign.UserID.String()))
			return fmt.Errorf("%w: user with ID %s not found",
				store.ErrInvalidEntity, campaign.UserID)
		}

		log.Error("failed to create campaign",
			slog.String("error", err.Error()),
			slog.String("campaign_id", campaign.ID.String()))
		return MapError(err)
	}

	log.Info("campaign created successfully",
		slog.String("campaign_id", campaign.ID.String()),
		slog.String("user_id", campaign.UserID.String()),
		slog.String("platform", string(campaign.Platform)))
	return nil
}

// GetByID implements store.CampaignStore.GetByID
// Returns store.ErrCampaignNotFound if the campaign does not exist.
func (s *PostgresCampaignStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Campaign, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, user_id, name, platform, objective, status, daily_budget_cents, created_at, updated_at
		FROM campaigns
		WHERE id = $1
	`

	campaign, err := scanCampaign(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("campaign not found", slog.String("campaign_id", id.String()))
			return nil, store.ErrCampaignNotFound
		}
		log.Error("failed to get campaign by ID",
			slog.String("error", err.Error()),
			slog.String("campaign_id", id.String()))
		return nil, MapError(err)
	}

	return campaign, nil
}

// ListByUser implements store.CampaignStore.ListByUser
// Returns an empty slice if the user has no campaigns.
func (s *PostgresCampaignStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Campaign, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, user_id, name, platform, objective, status, daily_budget_cents, created_at, updated_at
		FROM campaigns
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		log.Error("failed to query campaigns by user",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, MapError(err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	campaigns := []*domain.Campaign{}
	for rows.Next() {
		campaign, err := scanCampaign(rows)
		if err != nil {
			log.Error("failed to scan campaign row",
				slog.String("error", err.Error()))
			return nil, err
		}
		campaigns = append(campaigns, campaign)
	}

	if err := rows.Err(); err != nil {
		log.Error("error after scanning rows",
			slog.String("error", err.Error()))
		return nil, err
	}

	log.Debug("listed campaigns by user",
		slog.String("user_id", userID.String()),
		slog.Int("count", len(campaigns)))
	return campaigns, nil
}

// Update implements store.CampaignStore.Update
// Returns store.ErrCampaignNotFound if the campaign does not exist.
func (s *PostgresCampaignStore) Update(ctx context.Context, campaign *domain.Campaign) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := campaign.Validate(); err != nil {
		log.Warn("campaign validation failed during update",
			slog.String("error", err.Error()),
			slog.String("campaign_id", campaign.ID.String()))
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	campaign.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE campaigns
		SET name = $1, platform = $2, objective = $3, status = $4, daily_budget_cents = $5, updated_at = $6
		WHERE id = $7
	`

	result, err := s.db.ExecContext(
		ctx,
		query,
		campaign.Name,
		campaign.Platform,
		campaign.Objective,
		campaign.Status,
		campaign.DailyBudgetCents,
		campaign.UpdatedAt,
		campaign.ID,
	)

	if err != nil {
		log.Error("failed to update campaign",
			slog.String("error", err.Error()),
			slog.String("campaign_id", campaign.ID.String()))
		return MapError(err)
	}

	if err := CheckRowsAffected(result, "campaign"); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return store.ErrCampaignNotFound
		}
		return err
	}

	log.Info("campaign updated successfully",
		slog.String("campaign_id", campaign.ID.String()),
		slog.String("status", string(campaign.Status)))
	return nil
}

// Delete implements store.CampaignStore.Delete
// Returns store.ErrCampaignNotFound if the campaign does not exist.
func (s *PostgresCampaignStore) Delete(ctx context.Context, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `DELETE FROM campaigns WHERE id = $1`

	result, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		log.Error("failed to delete campaign",
			slog.String("error", err.Error()),
			slog.String("campaign_id", id.String()))
		return MapError(err)
	}

	if err := CheckRowsAffected(result, "campaign"); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return store.ErrCampaignNotFound
		}
		return err
	}

	log.Info("campaign deleted successfully",
		slog.String("campaign_id", id.String()))
	return nil
}

// WithTx implements store.CampaignStore.WithTx
func (s *PostgresCampaignStore) WithTx(tx *sql.Tx) store.CampaignStore {
	return &PostgresCampaignStore{
		db:     tx,
		logger: s.logger,
	}
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanCampaign reads one campaign row into a domain.Campaign.
func scanCampaign(row rowScanner) (*domain.Campaign, error) {
	var campaign domain.Campaign
	var platform, status string

	err := row.Scan(
		&campaign.ID,
		&campaign.UserID,
		&campaign.Name,
		&platform,
		&campaign.Objective,
		&status,
		&campaign.DailyBudgetCents,
		&campaign.CreatedAt,
		&campaign.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	campaign.Platform = domain.CampaignPlatform(platform)
	campaign.Status = domain.CampaignStatus(status)
	return &campaign, nil
}

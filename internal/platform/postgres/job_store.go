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

// PostgresJobStore implements the store.JobStore interface
// using a PostgreSQL database as the storage backend.
type PostgresJobStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresJobStore creates a new PostgreSQL implementation of the JobStore interface.
// If logger is nil, a default logger will be used.
func NewPostgresJobStore(db store.DBTX, logger *slog.Logger) *PostgresJobStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresJobStore{
		db:     db,
		logger: logger.With(slog.String("component", "job_store")),
	}
}

// Ensure PostgresJobStore implements store.JobStore interface
var _ store.JobStore = (*PostgresJobStore)(nil)

// Create implements store.JobStore.Create
// Returns store.ErrInvalidEntity if the owning user does not exist.
func (s *PostgresJobStore) Create(ctx context.Context, job *domain.GenerationJob) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := job.Validate(); err != nil {
		log.Warn("job validation failed during create",
			slog.String("error", err.Error()),
			slog.String("job_id", job.ID.String()))
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		INSERT INTO generation_jobs
			(id, user_id, campaign_id, type, status, payload, result, error_message, attempts, progress, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		job.ID,
		job.UserID,
		job.CampaignID,
		job.Type,
		job.Status,
		[]byte(job.Payload),
		nullableJSON(job.Result),
		job.ErrorMessage,
		job.Attempts,
		job.Progress,
		job.CreatedAt,
		job.UpdatedAt,
	)

	if err != nil {
		if IsForeignKeyViolation(err) {
			log.Warn("foreign key violation during job creation",
				slog.String("job_id", job.ID.String()),
				slog.String("user_id", job.UserID.String()))
			return fmt.Errorf("%w: user with ID %s not found",
				store.ErrInvalidEntity, job.UserID)
		}

		log.Error("failed to create generation job",
			slog.String("error", err.Error()),
			slog.String("job_id", job.ID.String()))
		return MapError(err)
	}

	log.Info("generation job created successfully",
		slog.String("job_id", job.ID.String()),
		slog.String("user_id", job.UserID.String()),
		slog.String("type", string(job.Type)))
	return nil
}

// GetByID implements store.JobStore.GetByID
// Returns store.ErrJobNotFound if the job does not exist.
func (s *PostgresJobStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.GenerationJob, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := selectJobColumns + ` WHERE id = $1`

	job, err := scanJob(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("job not found", slog.String("job_id", id.String()))
			return nil, store.ErrJobNotFound
		}
		log.Error("failed to get job by ID",
			slog.String("error", err.Error()),
			slog.String("job_id", id.String()))
		return nil, MapError(err)
	}

	return job, nil
}

// ListByUser implements store.JobStore.ListByUser
// Returns an empty slice if the user has no jobs.
func (s *PostgresJobStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.GenerationJob, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := selectJobColumns + ` WHERE user_id = $1 ORDER BY created_at DESC`

	return s.queryJobs(ctx, log, query, userID)
}

// ListByStatus implements store.JobStore.ListByStatus
// Jobs are returned oldest first so recovery processes them in submission order.
func (s *PostgresJobStore) ListByStatus(ctx context.Context, status domain.JobStatus) ([]*domain.GenerationJob, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := selectJobColumns + ` WHERE status = $1 ORDER BY created_at ASC`

	return s.queryJobs(ctx, log, query, status)
}

// Update implements store.JobStore.Update
// Returns store.ErrJobNotFound if the job does not exist.
func (s *PostgresJobStore) Update(ctx context.Context, job *domain.GenerationJob) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := job.Validate(); err != nil {
		log.Warn("job validation failed during update",
			slog.String("error", err.Error()),
			slog.String("job_id", job.ID.String()))
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	job.UpdatedAt = time.Now().UTC()

	// The status guard makes terminal rows immutable, so a writer holding
	// a stale copy cannot overwrite a concurrent cancellation.
	query := `
		UPDATE generation_jobs
		SET status = $1, result = $2, error_message = $3, attempts = $4, progress = $5, updated_at = $6
		WHERE id = $7 AND status IN ($8, $9)
	`

	result, err := s.db.ExecContext(
		ctx,
		query,
		job.Status,
		nullableJSON(job.Result),
		job.ErrorMessage,
		job.Attempts,
		job.Progress,
		job.UpdatedAt,
		job.ID,
		domain.JobStatusPending,
		domain.JobStatusRunning,
	)

	if err != nil {
		log.Error("failed to update generation job",
			slog.String("error", err.Error()),
			slog.String("job_id", job.ID.String()))
		return MapError(err)
	}

	if err := CheckRowsAffected(result, "generation job"); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// Zero rows means either a missing row or a row the guard
			// refused to touch; tell the two apart.
			var status domain.JobStatus
			lookupErr := s.db.QueryRowContext(ctx,
				`SELECT status FROM generation_jobs WHERE id = $1`, job.ID).Scan(&status)
			switch {
			case lookupErr == nil:
				log.Info("update rejected, job already finalized",
					slog.String("job_id", job.ID.String()),
					slog.String("persisted_status", string(status)))
				return store.ErrJobFinalized
			case errors.Is(lookupErr, sql.ErrNoRows):
				return store.ErrJobNotFound
			default:
				return MapError(lookupErr)
			}
		}
		return err
	}

	log.Info("generation job updated successfully",
		slog.String("job_id", job.ID.String()),
		slog.String("status", string(job.Status)),
		slog.Int("progress", job.Progress))
	return nil
}

// WithTx implements store.JobStore.WithTx
func (s *PostgresJobStore) WithTx(tx *sql.Tx) store.JobStore {
	return &PostgresJobStore{
		db:     tx,
		logger: s.logger,
	}
}

const selectJobColumns = `
	SELECT id, user_id, campaign_id, type, status, payload, result, error_message, attempts, progress, created_at, updated_at
	FROM generation_jobs`

// queryJobs runs a multi-row job query and scans the results.
func (s *PostgresJobStore) queryJobs(
	ctx context.Context,
	log *slog.Logger,
	query string,
	args ...any,
) ([]*domain.GenerationJob, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query generation jobs",
			slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	jobs := []*domain.GenerationJob{}
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			log.Error("failed to scan job row",
				slog.String("error", err.Error()))
			return nil, err
		}
		jobs = append(jobs, job)
	}

	if err := rows.Err(); err != nil {
		log.Error("error after scanning rows",
			slog.String("error", err.Error()))
		return nil, err
	}

	return jobs, nil
}

// scanJob reads one job row into a domain.GenerationJob.
func scanJob(row rowScanner) (*domain.GenerationJob, error) {
	var job domain.GenerationJob
	var jobType, status string
	var campaignID uuid.NullUUID
	var payload, result []byte

	err := row.Scan(
		&job.ID,
		&job.UserID,
		&campaignID,
		&jobType,
		&status,
		&payload,
		&result,
		&job.ErrorMessage,
		&job.Attempts,
		&job.Progress,
		&job.CreatedAt,
		&job.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	job.Type = domain.JobType(jobType)
	job.Status = domain.JobStatus(status)
	job.Payload = payload
	job.Result = result
	if campaignID.Valid {
		id := campaignID.UUID
		job.CampaignID = &id
	}

	return &job, nil
}

// nullableJSON converts an empty raw message to NULL so the column stays
// NULL until a result exists.
func nullableJSON(raw []byte) any {
	if len(raw) == 0 {
		return nil
	}
	return raw
}

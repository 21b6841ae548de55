package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/adlift/adlift-api/internal/domain"
)

// JobStore defines the interface for generation job persistence.
type JobStore interface {
	// Create saves a new generation job to the store.
	// Returns ErrInvalidEntity wrapping the domain error if the job is invalid.
	Create(ctx context.Context, job *domain.GenerationJob) error

	// GetByID retrieves a job by its unique ID.
	// Returns ErrJobNotFound if the job does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.GenerationJob, error)

	// ListByUser retrieves all jobs owned by the given user, newest first.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.GenerationJob, error)

	// ListByStatus retrieves all jobs currently in the given status, oldest
	// first. Used on startup to recover jobs that were pending or running
	// when the previous process stopped.
	ListByStatus(ctx context.Context, status domain.JobStatus) ([]*domain.GenerationJob, error)

	// Update persists the job's current status, progress, attempts, result
	// and error message. Terminal jobs are immutable: if the persisted row
	// is already in a terminal status the update is rejected with
	// ErrJobFinalized, so a writer holding a stale copy cannot resurrect a
	// job that was cancelled or finished concurrently.
	// Returns ErrJobNotFound if the job does not exist.
	Update(ctx context.Context, job *domain.GenerationJob) error

	// WithTx returns a new JobStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) JobStore
}

package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/adlift/adlift-api/internal/domain"
	"github.com/adlift/adlift-api/internal/events"
	"github.com/adlift/adlift-api/internal/generation"
	"github.com/adlift/adlift-api/internal/store"
	"github.com/adlift/adlift-api/internal/task"
)

// GenerationService provides asynchronous AI generation operations.
// Submitting a job persists it with pending status and emits an event that
// the task runner picks up; the caller polls GetJob for progress and the
// final result.
type GenerationService interface {
	// GenerateCampaign submits a campaign drafting job. If campaignID is
	// non-nil the job is linked to that campaign, which must belong to
	// userID.
	GenerateCampaign(
		ctx context.Context,
		userID uuid.UUID,
		campaignID *uuid.UUID,
		req generation.CampaignRequest,
	) (*domain.GenerationJob, error)

	// GenerateKeywords submits a keyword generation job.
	GenerateKeywords(
		ctx context.Context,
		userID uuid.UUID,
		campaignID *uuid.UUID,
		req generation.KeywordRequest,
	) (*domain.GenerationJob, error)

	// GenerateRecommendations submits an optimization recommendation job.
	GenerateRecommendations(
		ctx context.Context,
		userID uuid.UUID,
		campaignID *uuid.UUID,
		req generation.RecommendationRequest,
	) (*domain.GenerationJob, error)

	// GetJob retrieves a generation job by ID, enforcing ownership.
	GetJob(ctx context.Context, userID, jobID uuid.UUID) (*domain.GenerationJob, error)

	// ListJobs retrieves all generation jobs owned by userID, newest first.
	ListJobs(ctx context.Context, userID uuid.UUID) ([]*domain.GenerationJob, error)

	// CancelJob requests cancellation of a generation job. Cancelling a
	// job that has already reached a terminal status is a no-op and
	// returns the job unchanged.
	CancelJob(ctx context.Context, userID, jobID uuid.UUID) (*domain.GenerationJob, error)
}

// GenerationServiceError wraps errors from the generation service with
// context about the failed operation.
type GenerationServiceError struct {
	// Operation is the operation that failed (e.g. "submit_job", "cancel_job")
	Operation string
	// Message is a human-readable description of the error
	Message string
	// Err is the underlying error that caused the failure
	Err error
}

// Error implements the error interface for GenerationServiceError.
func (e *GenerationServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("generation service %s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("generation service %s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *GenerationServiceError) Unwrap() error {
	return e.Err
}

// NewGenerationServiceError creates a new GenerationServiceError.
// Sentinel errors that handlers match on are returned directly without
// wrapping.
func NewGenerationServiceError(operation, message string, err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, store.ErrJobNotFound),
		errors.Is(err, store.ErrCampaignNotFound),
		errors.Is(err, ErrNotOwned),
		errors.Is(err, generation.ErrInvalidRequest):
		return err
	}

	return &GenerationServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}

// GenerationServiceImpl implements the GenerationService interface.
type GenerationServiceImpl struct {
	jobStore      store.JobStore
	campaignStore store.CampaignStore
	db            *sql.DB
	emitter       events.EventEmitter
	registry      *task.TrackerRegistry
	validate      *validator.Validate
	logger        *slog.Logger
}

var _ GenerationService = (*GenerationServiceImpl)(nil)

// NewGenerationService creates a new GenerationService.
// It returns an error if any of the required dependencies are nil.
func NewGenerationService(
	jobStore store.JobStore,
	campaignStore store.CampaignStore,
	db *sql.DB,
	emitter events.EventEmitter,
	registry *task.TrackerRegistry,
	logger *slog.Logger,
) (*GenerationServiceImpl, error) {
	if jobStore == nil {
		return nil, &GenerationServiceError{Operation: "create_service", Message: "jobStore cannot be nil"}
	}
	if campaignStore == nil {
		return nil, &GenerationServiceError{Operation: "create_service", Message: "campaignStore cannot be nil"}
	}
	if db == nil {
		return nil, &GenerationServiceError{Operation: "create_service", Message: "db cannot be nil"}
	}
	if emitter == nil {
		return nil, &GenerationServiceError{Operation: "create_service", Message: "emitter cannot be nil"}
	}
	if registry == nil {
		return nil, &GenerationServiceError{Operation: "create_service", Message: "registry cannot be nil"}
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &GenerationServiceImpl{
		jobStore:      jobStore,
		campaignStore: campaignStore,
		db:            db,
		emitter:       emitter,
		registry:      registry,
		validate:      validator.New(),
		logger:        logger.With(slog.String("component", "generation_service")),
	}, nil
}

// GenerateCampaign submits a campaign drafting job.
func (s *GenerationServiceImpl) GenerateCampaign(
	ctx context.Context,
	userID uuid.UUID,
	campaignID *uuid.UUID,
	req generation.CampaignRequest,
) (*domain.GenerationJob, error) {
	return s.submitJob(ctx, userID, campaignID, domain.JobTypeCampaign, req)
}

// GenerateKeywords submits a keyword generation job.
func (s *GenerationServiceImpl) GenerateKeywords(
	ctx context.Context,
	userID uuid.UUID,
	campaignID *uuid.UUID,
	req generation.KeywordRequest,
) (*domain.GenerationJob, error) {
	return s.submitJob(ctx, userID, campaignID, domain.JobTypeKeywords, req)
}

// GenerateRecommendations submits an optimization recommendation job.
func (s *GenerationServiceImpl) GenerateRecommendations(
	ctx context.Context,
	userID uuid.UUID,
	campaignID *uuid.UUID,
	req generation.RecommendationRequest,
) (*domain.GenerationJob, error) {
	return s.submitJob(ctx, userID, campaignID, domain.JobTypeRecommendations, req)
}

// submitJob validates the request, persists a pending job, and emits the
// event that hands the job to the task runner. Validation happens here so
// malformed requests fail synchronously with a 400 instead of surfacing
// later as a failed job.
func (s *GenerationServiceImpl) submitJob(
	ctx context.Context,
	userID uuid.UUID,
	campaignID *uuid.UUID,
	jobType domain.JobType,
	req any,
) (*domain.GenerationJob, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %w", generation.ErrInvalidRequest, err)
	}

	if campaignID != nil {
		campaign, err := s.campaignStore.GetByID(ctx, *campaignID)
		if err != nil {
			return nil, NewGenerationServiceError("submit_job", "failed to load campaign", err)
		}
		if campaign.UserID != userID {
			return nil, ErrNotOwned
		}
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return nil, NewGenerationServiceError("submit_job", "failed to marshal request payload", err)
	}

	job, err := domain.NewGenerationJob(userID, jobType, payload)
	if err != nil {
		return nil, NewGenerationServiceError("submit_job", "failed to create job object", err)
	}
	job.CampaignID = campaignID

	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		return s.jobStore.WithTx(tx).Create(ctx, job)
	})
	if err != nil {
		s.logger.Error("failed to persist generation job",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()),
			slog.String("job_type", string(jobType)))
		return nil, NewGenerationServiceError("submit_job", "failed to save job", err)
	}

	event := events.NewJobRequestEvent(job)
	if err := s.emitter.EmitEvent(ctx, event); err != nil {
		// The job stays pending; startup recovery requeues it after a
		// restart. Surface the failure so the caller does not wait on a
		// job that is not being processed.
		s.logger.Error("failed to emit job request event",
			slog.String("error", err.Error()),
			slog.String("job_id", job.ID.String()),
			slog.String("event_id", event.ID.String()))
		return nil, NewGenerationServiceError("submit_job", "failed to enqueue job", err)
	}

	s.logger.Info("generation job submitted",
		slog.String("job_id", job.ID.String()),
		slog.String("user_id", userID.String()),
		slog.String("job_type", string(jobType)))
	return job, nil
}

// GetJob retrieves a generation job by ID, enforcing ownership.
func (s *GenerationServiceImpl) GetJob(
	ctx context.Context,
	userID, jobID uuid.UUID,
) (*domain.GenerationJob, error) {
	return s.ownedJob(ctx, userID, jobID)
}

// ListJobs retrieves all generation jobs owned by userID.
func (s *GenerationServiceImpl) ListJobs(
	ctx context.Context,
	userID uuid.UUID,
) ([]*domain.GenerationJob, error) {
	return s.jobStore.ListByUser(ctx, userID)
}

// CancelJob requests cancellation of a generation job.
func (s *GenerationServiceImpl) CancelJob(
	ctx context.Context,
	userID, jobID uuid.UUID,
) (*domain.GenerationJob, error) {
	job, err := s.ownedJob(ctx, userID, jobID)
	if err != nil {
		return nil, err
	}

	if job.Terminal() {
		return job, nil
	}

	// An in-flight job has a live tracker; cancelling it makes the task
	// persist the cancelled status itself.
	if s.registry.Cancel(jobID) {
		s.logger.Info("cancellation signalled to running job",
			slog.String("job_id", jobID.String()))
		return job, nil
	}

	// No tracker means the job has not started executing yet (or this
	// process never picked it up). Persist the cancellation directly; the
	// task skips jobs that are already terminal when it dequeues them.
	if err := job.UpdateStatus(domain.JobStatusCancelled); err != nil {
		return nil, NewGenerationServiceError("cancel_job", "invalid status transition", err)
	}
	job.ErrorMessage = "generation cancelled"
	if err := s.jobStore.Update(ctx, job); err != nil {
		if errors.Is(err, store.ErrJobFinalized) {
			// The job finished between the read and this write; report
			// whatever actually got persisted.
			return s.jobStore.GetByID(ctx, jobID)
		}
		s.logger.Error("failed to persist job cancellation",
			slog.String("error", err.Error()),
			slog.String("job_id", jobID.String()))
		return nil, NewGenerationServiceError("cancel_job", "failed to save job", err)
	}

	s.logger.Info("pending job cancelled", slog.String("job_id", jobID.String()))
	return job, nil
}

// ownedJob loads a job and verifies it belongs to userID.
func (s *GenerationServiceImpl) ownedJob(
	ctx context.Context,
	userID, jobID uuid.UUID,
) (*domain.GenerationJob, error) {
	job, err := s.jobStore.GetByID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job.UserID != userID {
		return nil, ErrNotOwned
	}
	return job, nil
}

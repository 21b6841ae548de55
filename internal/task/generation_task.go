package task

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/adlift/adlift-api/internal/asyncop"
	"github.com/adlift/adlift-api/internal/domain"
	"github.com/adlift/adlift-api/internal/generation"
	"github.com/adlift/adlift-api/internal/ratelimit"
	"github.com/adlift/adlift-api/internal/store"
)

// Status constants for GenerationTask
// These match the TaskStatus values defined in task.go
const (
	statusPending    = "pending"
	statusProcessing = "processing"
	statusCompleted  = "completed"
	statusFailed     = "failed"
)

// Common errors
var (
	ErrNilJobStore  = errors.New("job store cannot be nil")
	ErrNilGenerator = errors.New("generator cannot be nil")
	ErrNilRegistry  = errors.New("tracker registry cannot be nil")
	ErrNilLogger    = errors.New("logger cannot be nil")
	ErrEmptyJobID   = errors.New("job ID cannot be empty")
)

// GenerationTask implements the Task interface for running one AI generation
// job under an SLA-bounded operation tracker.
//
// The tracker owns the whole time budget: retries of transient generator
// failures, the deadline, progress ticks and cancellation all happen inside
// it. The task's responsibility is persistence: it loads the job, mirrors the
// tracker's progress and terminal state into the job store, and exposes the
// tracker through the registry so the API layer can cancel it.
type GenerationTask struct {
	jobID     uuid.UUID
	payload   []byte
	jobStore  store.JobStore
	generator generation.Generator
	registry  *TrackerRegistry
	clock     asyncop.Clock
	config    asyncop.Config
	limiter   *ratelimit.Limiter
	logger    *slog.Logger
	status    string
}

// NewGenerationTask creates a task that will run the persisted job with the
// given ID. The payload is carried for queue introspection; the job record in
// the store stays authoritative and is re-read when execution starts.
func NewGenerationTask(
	jobID uuid.UUID,
	payload []byte,
	jobStore store.JobStore,
	generator generation.Generator,
	registry *TrackerRegistry,
	clock asyncop.Clock,
	config asyncop.Config,
	logger *slog.Logger,
) (*GenerationTask, error) {
	if jobStore == nil {
		return nil, ErrNilJobStore
	}
	if generator == nil {
		return nil, ErrNilGenerator
	}
	if registry == nil {
		return nil, ErrNilRegistry
	}
	if logger == nil {
		return nil, ErrNilLogger
	}
	if jobID == uuid.Nil {
		return nil, ErrEmptyJobID
	}

	if clock == nil {
		clock = asyncop.NewRealClock()
	}

	return &GenerationTask{
		jobID:     jobID,
		payload:   payload,
		jobStore:  jobStore,
		generator: generator,
		registry:  registry,
		clock:     clock,
		config:    config,
		logger:    logger.With("task_type", TaskTypeGeneration, "job_id", jobID),
		status:    statusPending,
	}, nil
}

// ID returns the task's unique identifier. It equals the job ID so queue
// logs and job records line up.
func (t *GenerationTask) ID() uuid.UUID {
	return t.jobID
}

// Type returns the task type identifier
func (t *GenerationTask) Type() string {
	return TaskTypeGeneration
}

// Payload returns the task data as a byte slice
func (t *GenerationTask) Payload() []byte {
	return t.payload
}

// Status returns the current task status
func (t *GenerationTask) Status() TaskStatus {
	return TaskStatus(t.status)
}

// Execute runs the generation job under an operation tracker and persists
// every state change. It returns an error when the job fails or times out so
// the runner's error handler fires; a cancelled job is not an error.
func (t *GenerationTask) Execute(ctx context.Context) error {
	t.status = statusProcessing
	log := t.logger

	job, err := t.jobStore.GetByID(ctx, t.jobID)
	if err != nil {
		t.status = statusFailed
		log.Error("failed to load generation job", "error", err)
		return fmt.Errorf("failed to load generation job: %w", err)
	}

	if job.Terminal() {
		// Possible when a cancel landed between enqueue and execution.
		log.Info("job already terminal, skipping", "status", job.Status)
		t.status = statusCompleted
		return nil
	}

	if job.Status == domain.JobStatusPending {
		if err := job.UpdateStatus(domain.JobStatusRunning); err != nil {
			t.status = statusFailed
			return fmt.Errorf("failed to transition job to running: %w", err)
		}
		if err := t.jobStore.Update(ctx, job); err != nil {
			if errors.Is(err, store.ErrJobFinalized) {
				// A cancel landed between loading the job and this write.
				log.Info("job finalized before execution, skipping")
				t.status = statusCompleted
				return nil
			}
			t.status = statusFailed
			log.Error("failed to persist running status", "error", err)
			return fmt.Errorf("failed to persist running status: %w", err)
		}
	}

	tracker := asyncop.NewTracker(t.clock, t.config, log)

	tracker.SetProgressSink(func(percent int) {
		job.Progress = percent
		if err := t.jobStore.Update(context.Background(), job); err != nil {
			if errors.Is(err, store.ErrJobFinalized) {
				return
			}
			log.Warn("failed to persist job progress", "error", err, "progress", percent)
		}
	})

	terminal := make(chan asyncop.State, 1)
	tracker.SetTerminalSink(func(state asyncop.State) {
		terminal <- state
	})

	t.registry.Register(t.jobID, tracker)
	defer t.registry.Unregister(t.jobID)

	work := t.workFor(job)
	if t.limiter != nil {
		// Each retry attempt waits on the owner's token bucket, so a user
		// cannot drain the model quota by queueing jobs faster than the
		// bucket refills.
		work = t.limiter.Wrap(job.UserID.String(), work)
	}

	if err := tracker.Start(ctx, work); err != nil {
		t.status = statusFailed
		return fmt.Errorf("failed to start operation tracker: %w", err)
	}

	return t.finishJob(<-terminal, job)
}

// workFor builds the tracked work function for the job's type. Each
// invocation is one attempt; the tracker decides retries and deadlines.
func (t *GenerationTask) workFor(job *domain.GenerationJob) asyncop.WorkFunc {
	return func(ctx context.Context) (any, error) {
		switch job.Type {
		case domain.JobTypeCampaign:
			var req generation.CampaignRequest
			if err := json.Unmarshal(job.Payload, &req); err != nil {
				return nil, fmt.Errorf("%w: malformed campaign payload: %v", asyncop.ErrValidation, err)
			}
			plan, err := t.generator.GenerateCampaign(ctx, req)
			if err != nil {
				return nil, classifyGenerationError(err)
			}
			return plan, nil

		case domain.JobTypeKeywords:
			var req generation.KeywordRequest
			if err := json.Unmarshal(job.Payload, &req); err != nil {
				return nil, fmt.Errorf("%w: malformed keyword payload: %v", asyncop.ErrValidation, err)
			}
			set, err := t.generator.GenerateKeywords(ctx, req)
			if err != nil {
				return nil, classifyGenerationError(err)
			}
			return set, nil

		case domain.JobTypeRecommendations:
			var req generation.RecommendationRequest
			if err := json.Unmarshal(job.Payload, &req); err != nil {
				return nil, fmt.Errorf("%w: malformed recommendation payload: %v", asyncop.ErrValidation, err)
			}
			list, err := t.generator.GenerateRecommendations(ctx, req)
			if err != nil {
				return nil, classifyGenerationError(err)
			}
			return list, nil

		default:
			return nil, fmt.Errorf("%w: unsupported job type %q", asyncop.ErrValidation, job.Type)
		}
	}
}

// finishJob maps the tracker's terminal state onto the job record and
// persists it.
func (t *GenerationTask) finishJob(state asyncop.State, job *domain.GenerationJob) error {
	ctx := context.Background()
	log := t.logger

	job.Attempts = state.Attempt
	job.Progress = state.Progress

	var target domain.JobStatus
	switch state.Phase {
	case asyncop.PhaseSucceeded:
		target = domain.JobStatusSucceeded
		result, err := json.Marshal(state.Result)
		if err != nil {
			// The generator returned something unserializable; treat as failure.
			target = domain.JobStatusFailed
			job.ErrorMessage = fmt.Sprintf("failed to serialize result: %v", err)
		} else {
			job.Result = result
		}
	case asyncop.PhaseFailed:
		target = domain.JobStatusFailed
		if state.Err != nil {
			job.ErrorMessage = state.Err.Error()
		}
	case asyncop.PhaseTimedOut:
		target = domain.JobStatusTimedOut
		job.ErrorMessage = fmt.Sprintf("generation timed out after %s", state.Elapsed)
	case asyncop.PhaseCancelled:
		target = domain.JobStatusCancelled
		job.ErrorMessage = "generation cancelled"
	default:
		t.status = statusFailed
		return fmt.Errorf("unexpected terminal phase %q for job %s", state.Phase, t.jobID)
	}

	if err := job.UpdateStatus(target); err != nil {
		t.status = statusFailed
		log.Error("invalid job status transition at finish",
			"error", err,
			"from", job.Status,
			"to", target)
		return fmt.Errorf("invalid job status transition: %w", err)
	}

	if err := t.jobStore.Update(ctx, job); err != nil {
		if errors.Is(err, store.ErrJobFinalized) {
			// A concurrent cancellation reached the store first. The
			// persisted status wins; discard this result.
			log.Info("job finalized concurrently, discarding result",
				"discarded_status", string(target))
			t.status = statusCompleted
			return nil
		}
		t.status = statusFailed
		log.Error("failed to persist terminal job state", "error", err, "status", target)
		return fmt.Errorf("failed to persist terminal job state: %w", err)
	}

	log.Info("generation job finished",
		"status", string(target),
		"attempts", state.Attempt,
		"elapsed", state.Elapsed)

	switch state.Phase {
	case asyncop.PhaseFailed, asyncop.PhaseTimedOut:
		t.status = statusFailed
		return state.Err
	default:
		t.status = statusCompleted
		return nil
	}
}

// classifyGenerationError maps generator failures onto the tracker's error
// taxonomy. Malformed requests must not burn retry attempts.
func classifyGenerationError(err error) error {
	if errors.Is(err, generation.ErrInvalidRequest) {
		return fmt.Errorf("%w: %v", asyncop.ErrValidation, err)
	}
	return err
}

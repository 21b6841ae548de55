package task

import (
	"log/slog"

	"github.com/google/uuid"

	"github.com/adlift/adlift-api/internal/asyncop"
	"github.com/adlift/adlift-api/internal/generation"
	"github.com/adlift/adlift-api/internal/ratelimit"
	"github.com/adlift/adlift-api/internal/store"
)

// GenerationTaskFactory bundles the dependencies needed to build generation
// tasks so event handlers and recovery don't each carry the full set.
type GenerationTaskFactory struct {
	jobStore  store.JobStore
	generator generation.Generator
	registry  *TrackerRegistry
	clock     asyncop.Clock
	config    asyncop.Config
	limiter   *ratelimit.Limiter
	logger    *slog.Logger
}

// NewGenerationTaskFactory creates a factory for generation tasks.
// A nil clock defaults to the real clock.
func NewGenerationTaskFactory(
	jobStore store.JobStore,
	generator generation.Generator,
	registry *TrackerRegistry,
	clock asyncop.Clock,
	config asyncop.Config,
	logger *slog.Logger,
) (*GenerationTaskFactory, error) {
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

	if clock == nil {
		clock = asyncop.NewRealClock()
	}

	return &GenerationTaskFactory{
		jobStore:  jobStore,
		generator: generator,
		registry:  registry,
		clock:     clock,
		config:    config,
		logger:    logger,
	}, nil
}

// WithLimiter attaches a per-user rate limiter. Tasks built afterwards hold
// their generator calls to the limiter's budget.
func (f *GenerationTaskFactory) WithLimiter(limiter *ratelimit.Limiter) *GenerationTaskFactory {
	f.limiter = limiter
	return f
}

// CreateTask builds a task for the persisted job with the given ID.
func (f *GenerationTaskFactory) CreateTask(jobID uuid.UUID, payload []byte) (Task, error) {
	t, err := NewGenerationTask(
		jobID,
		payload,
		f.jobStore,
		f.generator,
		f.registry,
		f.clock,
		f.config,
		f.logger,
	)
	if err != nil {
		return nil, err
	}
	t.limiter = f.limiter
	return t, nil
}

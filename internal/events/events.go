package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/adlift/adlift-api/internal/domain"
)

// JobRequestEvent represents a request to run a generation job in the
// background. It references a job that has already been persisted in pending
// status, so a crashed process can recover the work from the database.
type JobRequestEvent struct {
	// ID is a unique identifier for this event
	ID uuid.UUID `json:"id"`

	// JobID identifies the persisted generation job to run
	JobID uuid.UUID `json:"job_id"`

	// UserID identifies the user who owns the job
	UserID uuid.UUID `json:"user_id"`

	// JobType indicates what the job generates
	JobType domain.JobType `json:"job_type"`

	// Payload contains the generation request serialized as JSON
	Payload json.RawMessage `json:"payload"`

	// CreatedAt is the timestamp when the event was created
	CreatedAt time.Time `json:"created_at"`
}

// UnmarshalPayload decodes the event payload into the provided structure.
func (e *JobRequestEvent) UnmarshalPayload(v any) error {
	return json.Unmarshal(e.Payload, v)
}

// NewJobRequestEvent creates a new JobRequestEvent for the given persisted job.
func NewJobRequestEvent(job *domain.GenerationJob) *JobRequestEvent {
	return &JobRequestEvent{
		ID:        uuid.New(),
		JobID:     job.ID,
		UserID:    job.UserID,
		JobType:   job.Type,
		Payload:   job.Payload,
		CreatedAt: time.Now(),
	}
}

// EventHandler defines an interface for components that can handle events.
// Handlers are responsible for processing events and taking appropriate actions.
type EventHandler interface {
	// HandleEvent processes the given event within the provided context.
	// Returns an error if the event cannot be handled successfully.
	HandleEvent(ctx context.Context, event *JobRequestEvent) error
}

// EventEmitter defines an interface for components that can emit events.
// This allows services to publish events without direct knowledge of handlers.
type EventEmitter interface {
	// EmitEvent publishes the given event to all registered handlers.
	// Returns an error if the event cannot be emitted.
	EmitEvent(ctx context.Context, event *JobRequestEvent) error
}

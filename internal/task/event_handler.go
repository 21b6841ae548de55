package task

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/adlift/adlift-api/internal/events"
)

// TaskFactory creates tasks for persisted generation jobs.
type TaskFactory interface {
	CreateTask(jobID uuid.UUID, payload []byte) (Task, error)
}

// JobEventHandler implements the events.EventHandler interface. It turns
// job request events into tasks and hands them to the queue for execution.
type JobEventHandler struct {
	factory TaskFactory
	queue   TaskQueueWriter
	logger  *slog.Logger
}

// NewJobEventHandler creates an event handler that uses the given task
// factory to create tasks and enqueues them on the provided queue.
func NewJobEventHandler(
	factory TaskFactory,
	queue TaskQueueWriter,
	logger *slog.Logger,
) *JobEventHandler {
	return &JobEventHandler{
		factory: factory,
		queue:   queue,
		logger:  logger.With("component", "job_event_handler"),
	}
}

// Ensure JobEventHandler implements events.EventHandler
var _ events.EventHandler = (*JobEventHandler)(nil)

// HandleEvent processes job request events by creating and enqueuing tasks.
func (h *JobEventHandler) HandleEvent(ctx context.Context, event *events.JobRequestEvent) error {
	log := h.logger.With("event_id", event.ID, "job_id", event.JobID)

	if event.JobID == uuid.Nil {
		log.Error("event carries no job ID")
		return fmt.Errorf("event %s carries no job ID", event.ID)
	}

	t, err := h.factory.CreateTask(event.JobID, event.Payload)
	if err != nil {
		log.Error("failed to create task", "error", err)
		return fmt.Errorf("failed to create task for job %s: %w", event.JobID, err)
	}

	if err := h.queue.Enqueue(t); err != nil {
		log.Error("failed to enqueue task", "error", err)
		return fmt.Errorf("failed to enqueue task for job %s: %w", event.JobID, err)
	}

	log.Debug("task enqueued for job", "job_type", event.JobType)
	return nil
}

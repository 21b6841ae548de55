package task

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/adlift/adlift-api/internal/domain"
	"github.com/adlift/adlift-api/internal/store"
)

// TaskRunnerConfig holds configuration for the task runner
type TaskRunnerConfig struct {
	// WorkerCount determines how many concurrent workers process tasks
	WorkerCount int

	// QueueSize determines the buffer size for the in-memory task queue
	QueueSize int
}

// DefaultTaskRunnerConfig returns a TaskRunnerConfig with reasonable defaults
func DefaultTaskRunnerConfig() TaskRunnerConfig {
	return TaskRunnerConfig{
		WorkerCount: 2,
		QueueSize:   100,
	}
}

// TaskRunner manages background task processing. Workers consume tasks from
// the queue; on startup the runner reconciles jobs left over from a previous
// process.
type TaskRunner struct {
	jobStore   store.JobStore
	factory    TaskFactory
	queue      *TaskQueue
	ctx        context.Context
	cancelFunc context.CancelFunc
	wg         sync.WaitGroup
	config     TaskRunnerConfig
	logger     *slog.Logger
	errHandler func(task Task, err error)
}

// NewTaskRunner creates a new TaskRunner
func NewTaskRunner(
	jobStore store.JobStore,
	factory TaskFactory,
	config TaskRunnerConfig,
	logger *slog.Logger,
) *TaskRunner {
	if config.WorkerCount <= 0 {
		config.WorkerCount = DefaultTaskRunnerConfig().WorkerCount
	}
	if config.QueueSize <= 0 {
		config.QueueSize = DefaultTaskRunnerConfig().QueueSize
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &TaskRunner{
		jobStore:   jobStore,
		factory:    factory,
		queue:      NewTaskQueue(config.QueueSize, logger),
		ctx:        ctx,
		cancelFunc: cancel,
		config:     config,
		logger:     logger,
		errHandler: func(task Task, err error) {
			logger.Error("task execution failed",
				"task_id", task.ID(),
				"task_type", task.Type(),
				"error", err)
		},
	}
}

// SetErrorHandler allows setting a custom error handler function
func (r *TaskRunner) SetErrorHandler(handler func(task Task, err error)) {
	r.errHandler = handler
}

// Queue returns the writer half of the runner's queue, for wiring into the
// event handler.
func (r *TaskRunner) Queue() TaskQueueWriter {
	return r.queue
}

// Submit adds a task to the queue. The corresponding job must already be
// persisted; the queue only holds in-flight work.
func (r *TaskRunner) Submit(ctx context.Context, task Task) error {
	if err := r.queue.Enqueue(task); err != nil {
		return fmt.Errorf("failed to enqueue task: %w", err)
	}
	return nil
}

// Start reconciles unfinished jobs from previous runs and launches the
// worker pool.
func (r *TaskRunner) Start() error {
	if err := r.Recover(); err != nil {
		return fmt.Errorf("failed to recover jobs: %w", err)
	}

	for i := 0; i < r.config.WorkerCount; i++ {
		r.wg.Add(1)
		go r.worker(i)
	}

	return nil
}

// Stop gracefully shuts down the task runner. Queued tasks that have not
// started are abandoned in pending status and picked up on next start.
func (r *TaskRunner) Stop() {
	r.cancelFunc()
	r.queue.Close()
	r.wg.Wait()
}

// Recover reconciles jobs left over from a previous process. Pending jobs
// are requeued. Jobs stuck in running were interrupted mid-flight; their
// time budget is gone, so they are marked failed rather than silently rerun.
func (r *TaskRunner) Recover() error {
	ctx := context.Background()

	pending, err := r.jobStore.ListByStatus(ctx, domain.JobStatusPending)
	if err != nil {
		return fmt.Errorf("failed to list pending jobs: %w", err)
	}

	running, err := r.jobStore.ListByStatus(ctx, domain.JobStatusRunning)
	if err != nil {
		return fmt.Errorf("failed to list running jobs: %w", err)
	}

	r.logger.Info("recovering unfinished jobs",
		"pending_count", len(pending),
		"running_count", len(running))

	for _, job := range pending {
		t, err := r.factory.CreateTask(job.ID, job.Payload)
		if err != nil {
			r.logger.Error("failed to create task for pending job",
				"job_id", job.ID,
				"error", err)
			continue
		}
		if err := r.queue.Enqueue(t); err != nil {
			r.logger.Error("failed to requeue pending job",
				"job_id", job.ID,
				"error", err)
		}
	}

	for _, job := range running {
		if err := job.UpdateStatus(domain.JobStatusFailed); err != nil {
			r.logger.Error("failed to transition interrupted job",
				"job_id", job.ID,
				"error", err)
			continue
		}
		job.ErrorMessage = "interrupted by restart"
		if err := r.jobStore.Update(ctx, job); err != nil {
			r.logger.Error("failed to mark interrupted job as failed",
				"job_id", job.ID,
				"error", err)
		}
	}

	return nil
}

// worker processes tasks from the queue
func (r *TaskRunner) worker(id int) {
	defer r.wg.Done()

	r.logger.Debug("starting worker", "worker_id", id)

	for {
		select {
		case <-r.ctx.Done():
			r.logger.Debug("stopping worker", "worker_id", id)
			return

		case t, ok := <-r.queue.GetChannel():
			if !ok {
				r.logger.Debug("task channel closed, stopping worker", "worker_id", id)
				return
			}
			r.processTask(t, id)
		}
	}
}

// processTask handles execution of a single task. The task persists its own
// job lifecycle; the runner only logs and reports failures.
func (r *TaskRunner) processTask(t Task, workerID int) {
	logger := r.logger.With(
		"task_id", t.ID(),
		"task_type", t.Type(),
		"worker_id", workerID,
	)

	logger.Info("processing task")

	if err := t.Execute(r.ctx); err != nil {
		logger.Error("task execution failed", "error", err)
		r.errHandler(t, err)
		return
	}

	logger.Info("task completed", "status", t.Status())
}

package task

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockTask is a minimal Task implementation for queue and runner tests.
type mockTask struct {
	id        uuid.UUID
	taskType  string
	payload   []byte
	status    TaskStatus
	executeFn func(ctx context.Context) error
}

func newMockTask() *mockTask {
	return &mockTask{
		id:       uuid.New(),
		taskType: "mock",
		status:   TaskStatusPending,
	}
}

func (m *mockTask) ID() uuid.UUID      { return m.id }
func (m *mockTask) Type() string       { return m.taskType }
func (m *mockTask) Payload() []byte    { return m.payload }
func (m *mockTask) Status() TaskStatus { return m.status }

func (m *mockTask) Execute(ctx context.Context) error {
	if m.executeFn != nil {
		return m.executeFn(ctx)
	}
	m.status = TaskStatusCompleted
	return nil
}

func TestTaskQueue_EnqueueAndConsume(t *testing.T) {
	t.Parallel()

	queue := NewTaskQueue(2, testLogger())
	task := newMockTask()

	require.NoError(t, queue.Enqueue(task))

	received := <-queue.GetChannel()
	assert.Equal(t, task.ID(), received.ID())
}

func TestTaskQueue_Full(t *testing.T) {
	t.Parallel()

	queue := NewTaskQueue(1, testLogger())

	require.NoError(t, queue.Enqueue(newMockTask()))

	err := queue.Enqueue(newMockTask())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrQueueFull)
}

func TestTaskQueue_Closed(t *testing.T) {
	t.Parallel()

	queue := NewTaskQueue(1, testLogger())
	queue.Close()

	err := queue.Enqueue(newMockTask())
	assert.ErrorIs(t, err, ErrQueueClosed)

	// Closing again must not panic.
	queue.Close()
}

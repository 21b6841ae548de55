package mocks

import (
	"context"
	"sync"

	"github.com/adlift/adlift-api/internal/events"
)

// EventEmitter records emitted events for assertions. EmitError, when set,
// is returned from every EmitEvent call.
type EventEmitter struct {
	mu      sync.Mutex
	emitted []*events.JobRequestEvent

	EmitError error
}

// NewEventEmitter creates an empty recording emitter.
func NewEventEmitter() *EventEmitter {
	return &EventEmitter{}
}

// Ensure EventEmitter implements events.EventEmitter
var _ events.EventEmitter = (*EventEmitter)(nil)

// EmitEvent records the event and returns EmitError.
func (e *EventEmitter) EmitEvent(ctx context.Context, event *events.JobRequestEvent) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.EmitError != nil {
		return e.EmitError
	}
	e.emitted = append(e.emitted, event)
	return nil
}

// Emitted returns a copy of the recorded events in emission order.
func (e *EventEmitter) Emitted() []*events.JobRequestEvent {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]*events.JobRequestEvent, len(e.emitted))
	copy(out, e.emitted)
	return out
}

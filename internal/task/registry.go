package task

import (
	"sync"

	"github.com/google/uuid"

	"github.com/adlift/adlift-api/internal/asyncop"
)

// TrackerRegistry maps in-flight job IDs to their operation trackers so the
// API layer can cancel or inspect a running job. Tasks register their tracker
// when execution starts and remove it when the job reaches a terminal phase.
type TrackerRegistry struct {
	mu       sync.RWMutex
	trackers map[uuid.UUID]*asyncop.Tracker
}

// NewTrackerRegistry creates an empty registry.
func NewTrackerRegistry() *TrackerRegistry {
	return &TrackerRegistry{
		trackers: make(map[uuid.UUID]*asyncop.Tracker),
	}
}

// Register associates a tracker with the given job ID.
func (r *TrackerRegistry) Register(jobID uuid.UUID, tracker *asyncop.Tracker) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.trackers[jobID] = tracker
}

// Unregister removes the tracker for the given job ID, if present.
func (r *TrackerRegistry) Unregister(jobID uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.trackers, jobID)
}

// Get returns the tracker for the given job ID, or nil if the job is not
// currently executing in this process.
func (r *TrackerRegistry) Get(jobID uuid.UUID) *asyncop.Tracker {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.trackers[jobID]
}

// Cancel requests cancellation of the tracker for the given job ID.
// Returns false if the job has no in-flight tracker.
func (r *TrackerRegistry) Cancel(jobID uuid.UUID) bool {
	tracker := r.Get(jobID)
	if tracker == nil {
		return false
	}
	tracker.Cancel()
	return true
}

// Len returns the number of in-flight trackers.
func (r *TrackerRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.trackers)
}

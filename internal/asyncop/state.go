package asyncop

import "time"

// Phase identifies where an operation is in its lifecycle.
type Phase string

// Possible operation phases. Idle is the initial phase; the four outcome
// phases are terminal and only Reset returns the tracker to Idle.
const (
	PhaseIdle      Phase = "idle"
	PhaseRunning   Phase = "running"
	PhaseSucceeded Phase = "succeeded"
	PhaseFailed    Phase = "failed"
	PhaseTimedOut  Phase = "timed_out"
	PhaseCancelled Phase = "cancelled"
)

// Terminal reports whether the phase is an outcome phase.
func (p Phase) Terminal() bool {
	switch p {
	case PhaseSucceeded, PhaseFailed, PhaseTimedOut, PhaseCancelled:
		return true
	}
	return false
}

// State is a snapshot of a single invocation. Exactly one phase holds at a
// time and transitions are monotonic: once a terminal phase is reached the
// state does not change until the caller resets the tracker.
type State struct {
	// Phase is the current lifecycle phase.
	Phase Phase

	// StartedAt is when the invocation began. Zero while Idle.
	StartedAt time.Time

	// Progress is the last emitted progress percentage. It is
	// non-decreasing while Running, below 100 until success, and exactly
	// 100 in Succeeded.
	Progress int

	// Attempt is the number of the attempt currently running, or the
	// attempt that produced the terminal outcome.
	Attempt int

	// Result holds the work's return value in Succeeded.
	Result any

	// Err holds the failure in Failed, ErrDeadlineExceeded in TimedOut,
	// and ErrCancelled in Cancelled.
	Err error

	// Elapsed is the time from start to the terminal transition. For
	// TimedOut it is exactly the configured timeout, since the deadline
	// timer is authoritative.
	Elapsed time.Duration
}

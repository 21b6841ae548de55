package asyncop

import (
	"context"
	"errors"
)

// Common errors used to classify operation failures. Callers wrap their own
// errors with these sentinels (fmt.Errorf("%w: ...", asyncop.ErrTransient))
// so the tracker can branch with errors.Is.
var (
	// ErrTransient marks a failure that may succeed if retried, such as a
	// network blip, a 5xx response, or an overloaded upstream.
	ErrTransient = errors.New("transient failure")

	// ErrValidation marks a failure caused by bad input (4xx-class). It is
	// never retried and is surfaced to the caller immediately.
	ErrValidation = errors.New("validation failure")

	// ErrDeadlineExceeded is reported as the error of a TimedOut state. It is
	// distinct from ErrTransient even though the root cause may be slowness.
	ErrDeadlineExceeded = errors.New("operation deadline exceeded")

	// ErrCancelled is reported as the error of a Cancelled state. It marks a
	// deliberate stop, not a true failure.
	ErrCancelled = errors.New("operation cancelled")

	// ErrAlreadyRunning is returned by Start when the tracker is already
	// tracking an invocation.
	ErrAlreadyRunning = errors.New("operation already running")

	// ErrNotTerminal is returned by Reset when the tracker is still running.
	ErrNotTerminal = errors.New("operation has not reached a terminal state")
)

// IsTransient reports whether err should be retried. A timeout of the
// underlying call (context.DeadlineExceeded from a per-request deadline)
// counts as transient; cancellation of the operation itself does not.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	return errors.Is(err, ErrTransient) || errors.Is(err, context.DeadlineExceeded)
}

// IsValidation reports whether err is a non-retryable input error.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

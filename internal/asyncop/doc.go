// Package asyncop provides a bounded asynchronous operation tracker used to
// run a single unit of work under a hard deadline while reporting synthetic
// progress to the caller.
//
// The tracker composes four small pieces:
//
//   - Clock: an injectable time source so tests can drive timers
//     deterministically.
//   - EstimateProgress: converts elapsed time into a display-only percentage
//     that never reaches 100 before the work actually succeeds.
//   - RetryPolicy: exponential backoff with jitter for transient failures,
//     constrained so a retry is never attempted when it could not complete
//     before the deadline.
//   - Tracker: the orchestrator that runs the work, arms the deadline,
//     consults the retry policy on failure, and reports a terminal state
//     exactly once.
//
// Cancellation is cooperative: the unit of work receives a context and must
// observe it. The tracker stops processing results and retries once
// cancelled, but it cannot preempt an in-flight call that ignores its
// context; such a call runs until its own transport gives up.
//
// Each Tracker instance is owned by a single caller and tracks a single
// invocation at a time. Two concurrent generation requests use two
// independent trackers with independent deadlines, progress, and
// cancellation.
package asyncop

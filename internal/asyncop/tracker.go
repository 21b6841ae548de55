package asyncop

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

// WorkFunc is the unit of work run under the tracker's deadline. It must
// observe ctx at its suspension points; the tracker cannot preempt a call
// that ignores cancellation.
type WorkFunc func(ctx context.Context) (any, error)

// Config holds the knobs for a tracked operation.
type Config struct {
	// Timeout is the hard budget for the whole operation, retries
	// included. The deadline is fixed at start and never extended.
	Timeout time.Duration

	// ProgressInterval is how often the progress sink is invoked while
	// the operation is running.
	ProgressInterval time.Duration

	// Retry governs backoff between failed attempts.
	Retry RetryPolicy
}

// DefaultConfig returns the configuration used for generation requests:
// the 30-second SLA with progress reported every second.
func DefaultConfig() Config {
	return Config{
		Timeout:          30 * time.Second,
		ProgressInterval: time.Second,
		Retry:            DefaultRetryPolicy(),
	}
}

// Tracker runs a single asynchronous unit of work under a deadline, emitting
// progress updates while it runs and a terminal state exactly once when it
// stops. A tracker handles one invocation at a time; Start from a terminal
// phase implicitly resets it.
type Tracker struct {
	clock  Clock
	config Config
	logger *slog.Logger

	onProgress func(percent int)
	onTerminal func(state State)

	mu         sync.Mutex
	state      State
	cancelOp   context.CancelFunc
	userCancel bool
	done       chan struct{}
}

// attemptOutcome is the single message the attempt loop reports back to the
// run loop. err == nil means success.
type attemptOutcome struct {
	result  any
	err     error
	attempt int
}

// NewTracker creates a tracker with the given clock and configuration.
// A nil clock uses the real clock; invalid config values fall back to
// defaults with a warning.
func NewTracker(clock Clock, config Config, logger *slog.Logger) *Tracker {
	if clock == nil {
		clock = NewRealClock()
	}
	if logger == nil {
		logger = slog.Default()
	}

	defaults := DefaultConfig()
	if config.Timeout <= 0 {
		logger.Warn("invalid tracker timeout, using default",
			"specified", config.Timeout,
			"default", defaults.Timeout)
		config.Timeout = defaults.Timeout
	}
	if config.ProgressInterval <= 0 {
		logger.Warn("invalid progress interval, using default",
			"specified", config.ProgressInterval,
			"default", defaults.ProgressInterval)
		config.ProgressInterval = defaults.ProgressInterval
	}
	if config.Retry.MaxAttempts < 1 {
		logger.Warn("invalid max attempts, using 1",
			"specified", config.Retry.MaxAttempts)
		config.Retry.MaxAttempts = 1
	}

	// done starts closed so Done() never blocks before the first Start.
	done := make(chan struct{})
	close(done)

	return &Tracker{
		clock:  clock,
		config: config,
		logger: logger.With("component", "asyncop_tracker"),
		state:  State{Phase: PhaseIdle},
		done:   done,
	}
}

// SetProgressSink registers the callback invoked with the current progress
// percentage while the operation is running. Must be set before Start.
func (t *Tracker) SetProgressSink(sink func(percent int)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onProgress = sink
}

// SetTerminalSink registers the callback invoked exactly once when the
// operation reaches a terminal state. Must be set before Start.
func (t *Tracker) SetTerminalSink(sink func(state State)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onTerminal = sink
}

// State returns a snapshot of the current operation state.
func (t *Tracker) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Done returns a channel closed when the current invocation reaches a
// terminal state. If no invocation is in flight the channel is already
// closed.
func (t *Tracker) Done() <-chan struct{} {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.done
}

// Start begins tracking the given work under the configured deadline.
// It is legal from Idle or any terminal phase and returns ErrAlreadyRunning
// while an invocation is in flight. Cancelling ctx cancels the operation.
func (t *Tracker) Start(ctx context.Context, work WorkFunc) error {
	if work == nil {
		return errors.New("work function cannot be nil")
	}

	t.mu.Lock()
	if t.state.Phase == PhaseRunning {
		t.mu.Unlock()
		return ErrAlreadyRunning
	}

	opCtx, cancel := context.WithCancel(ctx)
	startedAt := t.clock.Now()
	t.state = State{Phase: PhaseRunning, StartedAt: startedAt, Attempt: 1}
	t.cancelOp = cancel
	t.userCancel = false
	done := make(chan struct{})
	t.done = done
	t.mu.Unlock()

	t.logger.Debug("operation started",
		"timeout", t.config.Timeout,
		"max_attempts", t.config.Retry.MaxAttempts)

	go t.run(opCtx, cancel, work, startedAt, done)
	return nil
}

// Cancel requests cancellation of the in-flight invocation. It is a no-op
// when nothing is running. Cancellation always wins over a concurrently
// firing deadline once it reaches the tracker first.
func (t *Tracker) Cancel() {
	t.mu.Lock()
	if t.state.Phase != PhaseRunning {
		t.mu.Unlock()
		return
	}
	t.userCancel = true
	cancel := t.cancelOp
	t.mu.Unlock()

	if cancel != nil {
		cancel()
	}
}

// Reset returns the tracker to Idle. It fails with ErrNotTerminal while an
// invocation is still running.
func (t *Tracker) Reset() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state.Phase == PhaseRunning {
		return ErrNotTerminal
	}
	t.state = State{Phase: PhaseIdle}
	t.userCancel = false
	return nil
}

// run owns the invocation: it arms the deadline and the progress ticker,
// launches the attempt loop, and reports the terminal state. All sink
// callbacks fire from this goroutine, so a progress update can never be
// delivered after the terminal callback.
func (t *Tracker) run(
	ctx context.Context,
	cancel context.CancelFunc,
	work WorkFunc,
	startedAt time.Time,
	done chan struct{},
) {
	defer cancel()

	deadline := t.clock.NewTimer(t.config.Timeout)
	defer deadline.Stop()

	ticker := t.clock.NewTicker(t.config.ProgressInterval)
	defer ticker.Stop()

	// Buffered so the attempt loop's single send never blocks, even when
	// the outcome arrives after this loop has already returned.
	outcomes := make(chan attemptOutcome, 1)
	go t.attempts(ctx, work, startedAt, outcomes)

	for {
		select {
		case <-ticker.C():
			t.emitProgress(done)

		case <-deadline.C():
			if t.cancelRequested() {
				t.finish(done, State{Phase: PhaseCancelled, Err: ErrCancelled})
			} else {
				t.finish(done, State{Phase: PhaseTimedOut, Err: ErrDeadlineExceeded})
			}
			return

		case <-ctx.Done():
			t.finish(done, State{Phase: PhaseCancelled, Err: ErrCancelled})
			return

		case outcome := <-outcomes:
			if t.cancelRequested() || ctx.Err() != nil {
				// Cancellation reached the tracker before the outcome was
				// observed; the late resolution is discarded.
				t.finish(done, State{
					Phase:   PhaseCancelled,
					Err:     ErrCancelled,
					Attempt: outcome.attempt,
				})
				return
			}
			if outcome.err != nil {
				t.finish(done, State{
					Phase:   PhaseFailed,
					Err:     outcome.err,
					Attempt: outcome.attempt,
				})
			} else {
				t.finish(done, State{
					Phase:   PhaseSucceeded,
					Result:  outcome.result,
					Attempt: outcome.attempt,
				})
			}
			return
		}
	}
}

// attempts invokes the work, consulting the retry policy after each failure.
// It sends at most one outcome. A transient failure with attempt budget left
// but no time budget sends nothing: the deadline timer is authoritative and
// will report TimedOut at exactly the configured timeout.
func (t *Tracker) attempts(
	ctx context.Context,
	work WorkFunc,
	startedAt time.Time,
	out chan<- attemptOutcome,
) {
	deadline := startedAt.Add(t.config.Timeout)

	for attempt := 1; ; attempt++ {
		t.noteAttempt(attempt)

		result, err := work(ctx)
		if ctx.Err() != nil {
			// The operation was cancelled or timed out while this attempt
			// was in flight; whatever it returned is discarded.
			return
		}
		if err == nil {
			out <- attemptOutcome{result: result, attempt: attempt}
			return
		}

		remaining := deadline.Sub(t.clock.Now())
		delay := t.config.Retry.NextDelay(attempt)
		if !t.config.Retry.ShouldRetry(attempt, err, delay, remaining) {
			if IsTransient(err) && attempt < t.config.Retry.MaxAttempts {
				// Out of time, not out of attempts. The next attempt could
				// not complete before the deadline, so skip it and let the
				// deadline timer fire.
				t.logger.Debug("retry delay exceeds remaining budget, waiting for deadline",
					"attempt", attempt,
					"remaining", remaining)
				return
			}
			t.logger.Debug("attempt failed, not retrying",
				"attempt", attempt,
				"error", err)
			out <- attemptOutcome{err: err, attempt: attempt}
			return
		}

		t.logger.Debug("retrying after backoff",
			"attempt", attempt,
			"delay", delay)

		timer := t.clock.NewTimer(delay)
		select {
		case <-timer.C():
		case <-ctx.Done():
			timer.Stop()
			return
		}
	}
}

// emitProgress advances and reports progress for the invocation identified
// by done. Stale invocations and terminal states are ignored.
func (t *Tracker) emitProgress(done chan struct{}) {
	t.mu.Lock()
	if t.done != done || t.state.Phase != PhaseRunning {
		t.mu.Unlock()
		return
	}
	percent := EstimateProgress(t.clock.Now().Sub(t.state.StartedAt), t.config.Timeout)
	if percent < t.state.Progress {
		percent = t.state.Progress
	}
	t.state.Progress = percent
	sink := t.onProgress
	t.mu.Unlock()

	if sink != nil {
		sink(percent)
	}
}

// finish records the terminal state for the invocation identified by done
// and fires the terminal sink. It is a no-op if another terminal transition
// already happened for this invocation.
func (t *Tracker) finish(done chan struct{}, terminal State) {
	t.mu.Lock()
	if t.done != done || t.state.Phase.Terminal() {
		t.mu.Unlock()
		return
	}

	terminal.StartedAt = t.state.StartedAt
	if terminal.Attempt == 0 {
		terminal.Attempt = t.state.Attempt
	}
	switch terminal.Phase {
	case PhaseSucceeded:
		terminal.Elapsed = t.clock.Now().Sub(t.state.StartedAt)
		terminal.Progress = 100
	case PhaseTimedOut:
		// The deadline timer is authoritative.
		terminal.Elapsed = t.config.Timeout
		terminal.Progress = t.state.Progress
	default:
		terminal.Elapsed = t.clock.Now().Sub(t.state.StartedAt)
		terminal.Progress = t.state.Progress
	}

	t.state = terminal
	t.cancelOp = nil
	sink := t.onTerminal
	close(done)
	t.mu.Unlock()

	t.logger.Debug("operation finished",
		"phase", terminal.Phase,
		"attempt", terminal.Attempt,
		"elapsed", terminal.Elapsed,
		"error", terminal.Err)

	if sink != nil {
		sink(terminal)
	}
}

// noteAttempt records the attempt number currently running.
func (t *Tracker) noteAttempt(attempt int) {
	t.mu.Lock()
	if t.state.Phase == PhaseRunning {
		t.state.Attempt = attempt
	}
	t.mu.Unlock()
}

// cancelRequested reports whether the caller explicitly cancelled the
// in-flight invocation. Used to break the tie when cancellation and the
// deadline fire together: cancel wins.
func (t *Tracker) cancelRequested() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.userCancel
}

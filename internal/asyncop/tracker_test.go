package asyncop

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// testLogger discards output; tests assert on state, not logs.
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
}

// trackerHarness wires a tracker to channels so tests can observe progress
// and terminal callbacks without polling.
type trackerHarness struct {
	tracker  *Tracker
	progress chan int
	terminal chan State
}

func newHarness(clock Clock, config Config) *trackerHarness {
	h := &trackerHarness{
		tracker:  NewTracker(clock, config, testLogger()),
		progress: make(chan int, 128),
		terminal: make(chan State, 1),
	}
	h.tracker.SetProgressSink(func(percent int) { h.progress <- percent })
	h.tracker.SetTerminalSink(func(state State) { h.terminal <- state })
	return h
}

// awaitTerminal blocks until the terminal sink fires, failing the test after
// a generous real-time budget.
func (h *trackerHarness) awaitTerminal(t *testing.T) State {
	t.Helper()
	select {
	case state := <-h.terminal:
		return state
	case <-time.After(5 * time.Second):
		t.Fatal("terminal callback never fired")
		return State{}
	}
}

// awaitWaiters blocks until the fake clock has n armed timers/tickers, so
// the test knows the tracker's goroutines are ready before advancing time.
func awaitWaiters(t *testing.T, clk *FakeClock, n int) {
	t.Helper()
	require.Eventually(t, func() bool {
		return clk.WaiterCount() >= n
	}, 5*time.Second, time.Millisecond)
}

// hangingWork blocks until the operation context is cancelled.
func hangingWork(ctx context.Context) (any, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestTracker_SucceedsOnFirstAttempt(t *testing.T) {
	t.Parallel()

	clk := NewFakeClock(time.Unix(0, 0))
	h := newHarness(clk, Config{
		Timeout:          30 * time.Second,
		ProgressInterval: time.Second,
		Retry:            RetryPolicy{MaxAttempts: 3, BaseDelay: time.Second},
	})

	err := h.tracker.Start(context.Background(), func(ctx context.Context) (any, error) {
		return "generated campaign", nil
	})
	require.NoError(t, err)

	state := h.awaitTerminal(t)
	assert.Equal(t, PhaseSucceeded, state.Phase)
	assert.Equal(t, "generated campaign", state.Result)
	assert.Equal(t, 1, state.Attempt)
	assert.Equal(t, 100, state.Progress, "progress snaps to 100 only on success")
	assert.NoError(t, state.Err)

	// The snapshot matches the terminal callback.
	assert.Equal(t, state, h.tracker.State())
}

func TestTracker_TimesOutWhenWorkHangs(t *testing.T) {
	t.Parallel()

	clk := NewFakeClock(time.Unix(0, 0))
	h := newHarness(clk, Config{
		Timeout:          30 * time.Second,
		ProgressInterval: time.Second,
		Retry:            RetryPolicy{MaxAttempts: 3, BaseDelay: time.Second},
	})

	require.NoError(t, h.tracker.Start(context.Background(), hangingWork))

	// Deadline timer and progress ticker must be armed before advancing.
	awaitWaiters(t, clk, 2)
	clk.Advance(30 * time.Second)

	state := h.awaitTerminal(t)
	assert.Equal(t, PhaseTimedOut, state.Phase)
	assert.ErrorIs(t, state.Err, ErrDeadlineExceeded)
	assert.Equal(t, 30*time.Second, state.Elapsed, "the deadline timer is authoritative")
	assert.Less(t, state.Progress, 100)
}

func TestTracker_RetriesTransientThenSucceeds(t *testing.T) {
	t.Parallel()

	clk := NewFakeClock(time.Unix(0, 0))
	h := newHarness(clk, Config{
		Timeout:          30 * time.Second,
		ProgressInterval: time.Second,
		Retry:            RetryPolicy{MaxAttempts: 3, BaseDelay: time.Second},
	})

	attemptStarted := make(chan int, 3)
	var mu sync.Mutex
	calls := 0

	work := func(ctx context.Context) (any, error) {
		mu.Lock()
		calls++
		n := calls
		mu.Unlock()
		attemptStarted <- n
		if n < 3 {
			return nil, fmt.Errorf("%w: upstream 503", ErrTransient)
		}
		return "third time lucky", nil
	}

	require.NoError(t, h.tracker.Start(context.Background(), work))

	// Attempt 1 fails; the backoff timer (1s) joins the deadline timer and
	// the progress ticker.
	require.Equal(t, 1, <-attemptStarted)
	awaitWaiters(t, clk, 3)
	clk.Advance(time.Second)

	// Attempt 2 fails; backoff doubles to 2s.
	require.Equal(t, 2, <-attemptStarted)
	awaitWaiters(t, clk, 3)
	clk.Advance(2 * time.Second)

	require.Equal(t, 3, <-attemptStarted)
	state := h.awaitTerminal(t)
	assert.Equal(t, PhaseSucceeded, state.Phase)
	assert.Equal(t, 3, state.Attempt)
	assert.Equal(t, "third time lucky", state.Result)
	assert.Equal(t, 3*time.Second, state.Elapsed, "two backoff waits, instant attempts")
}

func TestTracker_FailsWhenAttemptsExhausted(t *testing.T) {
	t.Parallel()

	clk := NewFakeClock(time.Unix(0, 0))
	h := newHarness(clk, Config{
		Timeout:          30 * time.Second,
		ProgressInterval: time.Second,
		Retry:            RetryPolicy{MaxAttempts: 2, BaseDelay: time.Second},
	})

	attemptStarted := make(chan int, 2)
	var mu sync.Mutex
	calls := 0

	require.NoError(t, h.tracker.Start(context.Background(), func(ctx context.Context) (any, error) {
		mu.Lock()
		calls++
		n := calls
		mu.Unlock()
		attemptStarted <- n
		return nil, fmt.Errorf("%w: attempt %d", ErrTransient, n)
	}))

	require.Equal(t, 1, <-attemptStarted)
	awaitWaiters(t, clk, 3)
	clk.Advance(time.Second)

	require.Equal(t, 2, <-attemptStarted)
	state := h.awaitTerminal(t)
	assert.Equal(t, PhaseFailed, state.Phase)
	assert.Equal(t, 2, state.Attempt)
	assert.ErrorIs(t, state.Err, ErrTransient)
	assert.ErrorContains(t, state.Err, "attempt 2", "the last error is surfaced")
}

func TestTracker_ValidationErrorFailsImmediately(t *testing.T) {
	t.Parallel()

	clk := NewFakeClock(time.Unix(0, 0))
	h := newHarness(clk, Config{
		Timeout:          30 * time.Second,
		ProgressInterval: time.Second,
		Retry:            RetryPolicy{MaxAttempts: 3, BaseDelay: time.Second},
	})

	var mu sync.Mutex
	calls := 0

	require.NoError(t, h.tracker.Start(context.Background(), func(ctx context.Context) (any, error) {
		mu.Lock()
		calls++
		mu.Unlock()
		return nil, fmt.Errorf("%w: campaign name is required", ErrValidation)
	}))

	state := h.awaitTerminal(t)
	assert.Equal(t, PhaseFailed, state.Phase)
	assert.Equal(t, 1, state.Attempt)
	assert.ErrorIs(t, state.Err, ErrValidation)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1, calls, "validation errors are never retried")
}

func TestTracker_SkipsRetryThatCannotFinishBeforeDeadline(t *testing.T) {
	t.Parallel()

	clk := NewFakeClock(time.Unix(0, 0))
	h := newHarness(clk, Config{
		Timeout:          5 * time.Second,
		ProgressInterval: time.Second,
		Retry:            RetryPolicy{MaxAttempts: 5, BaseDelay: 2 * time.Second},
	})

	attemptDone := make(chan struct{}, 1)
	var mu sync.Mutex
	calls := 0

	// The attempt consumes 4s of the 5s budget, then fails. The 2s backoff
	// cannot fit in the remaining 1s, so no second attempt starts and the
	// deadline fires at exactly 5s.
	require.NoError(t, h.tracker.Start(context.Background(), func(ctx context.Context) (any, error) {
		mu.Lock()
		calls++
		mu.Unlock()
		clk.Advance(4 * time.Second)
		attemptDone <- struct{}{}
		return nil, fmt.Errorf("%w: slow upstream", ErrTransient)
	}))

	<-attemptDone
	awaitWaiters(t, clk, 1)
	clk.Advance(time.Second)

	state := h.awaitTerminal(t)
	assert.Equal(t, PhaseTimedOut, state.Phase)
	assert.Equal(t, 5*time.Second, state.Elapsed)
	assert.Equal(t, 1, state.Attempt)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1, calls, "no attempt starts after the budget is spent")
}

func TestTracker_CancelWhileRunning(t *testing.T) {
	t.Parallel()

	clk := NewFakeClock(time.Unix(0, 0))
	h := newHarness(clk, Config{
		Timeout:          30 * time.Second,
		ProgressInterval: time.Second,
		Retry:            RetryPolicy{MaxAttempts: 3, BaseDelay: time.Second},
	})

	require.NoError(t, h.tracker.Start(context.Background(), hangingWork))
	awaitWaiters(t, clk, 2)
	clk.Advance(200 * time.Millisecond)

	h.tracker.Cancel()

	state := h.awaitTerminal(t)
	assert.Equal(t, PhaseCancelled, state.Phase)
	assert.ErrorIs(t, state.Err, ErrCancelled)
	assert.Equal(t, 200*time.Millisecond, state.Elapsed)

	// No progress tick elapsed before the cancel.
	assert.Empty(t, h.progress)

	// Exactly one terminal callback: a second cancel changes nothing.
	h.tracker.Cancel()
	select {
	case <-h.terminal:
		t.Fatal("terminal callback fired twice")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestTracker_LateResolutionIsDiscarded(t *testing.T) {
	t.Parallel()

	clk := NewFakeClock(time.Unix(0, 0))
	h := newHarness(clk, Config{
		Timeout:          30 * time.Second,
		ProgressInterval: time.Second,
		Retry:            RetryPolicy{MaxAttempts: 3, BaseDelay: time.Second},
	})

	release := make(chan struct{})
	require.NoError(t, h.tracker.Start(context.Background(), func(ctx context.Context) (any, error) {
		select {
		case <-release:
			return "too late", nil
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}))

	h.tracker.Cancel()
	state := h.awaitTerminal(t)
	require.Equal(t, PhaseCancelled, state.Phase)

	// The work resolves after cancellation; the result must be dropped.
	close(release)
	time.Sleep(20 * time.Millisecond)

	final := h.tracker.State()
	assert.Equal(t, PhaseCancelled, final.Phase)
	assert.Nil(t, final.Result)
	assert.Empty(t, h.terminal, "no second terminal callback")
}

func TestTracker_ProgressIsMonotonicAndBelowHundred(t *testing.T) {
	t.Parallel()

	clk := NewFakeClock(time.Unix(0, 0))
	h := newHarness(clk, Config{
		Timeout:          10 * time.Second,
		ProgressInterval: time.Second,
		Retry:            RetryPolicy{MaxAttempts: 1, BaseDelay: time.Second},
	})

	require.NoError(t, h.tracker.Start(context.Background(), hangingWork))
	awaitWaiters(t, clk, 2)

	last := -1
	for i := 0; i < 9; i++ {
		clk.Advance(time.Second)
		select {
		case percent := <-h.progress:
			assert.GreaterOrEqual(t, percent, last)
			assert.Less(t, percent, 100)
			last = percent
		case <-time.After(5 * time.Second):
			t.Fatalf("progress callback %d never fired", i)
		}
	}
	assert.Equal(t, 90, last)

	clk.Advance(time.Second)
	state := h.awaitTerminal(t)
	assert.Equal(t, PhaseTimedOut, state.Phase)
}

func TestTracker_NoProgressAfterTerminal(t *testing.T) {
	t.Parallel()

	clk := NewFakeClock(time.Unix(0, 0))
	tracker := NewTracker(clk, Config{
		Timeout:          2 * time.Second,
		ProgressInterval: time.Second,
		Retry:            RetryPolicy{MaxAttempts: 1, BaseDelay: time.Second},
	}, testLogger())

	var mu sync.Mutex
	var sequence []string
	tracker.SetProgressSink(func(percent int) {
		mu.Lock()
		sequence = append(sequence, "progress")
		mu.Unlock()
	})
	done := make(chan struct{})
	tracker.SetTerminalSink(func(state State) {
		mu.Lock()
		sequence = append(sequence, "terminal")
		mu.Unlock()
		close(done)
	})

	require.NoError(t, tracker.Start(context.Background(), hangingWork))
	require.Eventually(t, func() bool { return clk.WaiterCount() >= 2 }, 5*time.Second, time.Millisecond)
	clk.Advance(2 * time.Second)

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("terminal callback never fired")
	}
	// Give a stray callback every chance to appear.
	time.Sleep(20 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	require.NotEmpty(t, sequence)
	assert.Equal(t, "terminal", sequence[len(sequence)-1],
		"the terminal callback is the last callback delivered")
	terminalCount := 0
	for _, event := range sequence {
		if event == "terminal" {
			terminalCount++
		}
	}
	assert.Equal(t, 1, terminalCount)
}

func TestTracker_StartWhileRunningIsRejected(t *testing.T) {
	t.Parallel()

	clk := NewFakeClock(time.Unix(0, 0))
	h := newHarness(clk, Config{
		Timeout:          30 * time.Second,
		ProgressInterval: time.Second,
		Retry:            RetryPolicy{MaxAttempts: 1, BaseDelay: time.Second},
	})

	require.NoError(t, h.tracker.Start(context.Background(), hangingWork))

	err := h.tracker.Start(context.Background(), hangingWork)
	assert.ErrorIs(t, err, ErrAlreadyRunning)

	h.tracker.Cancel()
	h.awaitTerminal(t)
}

func TestTracker_ResetAndRestart(t *testing.T) {
	t.Parallel()

	clk := NewFakeClock(time.Unix(0, 0))
	h := newHarness(clk, Config{
		Timeout:          30 * time.Second,
		ProgressInterval: time.Second,
		Retry:            RetryPolicy{MaxAttempts: 1, BaseDelay: time.Second},
	})

	require.NoError(t, h.tracker.Start(context.Background(), hangingWork))
	assert.ErrorIs(t, h.tracker.Reset(), ErrNotTerminal)

	h.tracker.Cancel()
	h.awaitTerminal(t)

	require.NoError(t, h.tracker.Reset())
	assert.Equal(t, PhaseIdle, h.tracker.State().Phase)

	// Starting again from a terminal state (without an explicit reset)
	// also works.
	require.NoError(t, h.tracker.Start(context.Background(), func(ctx context.Context) (any, error) {
		return 42, nil
	}))
	state := h.awaitTerminal(t)
	assert.Equal(t, PhaseSucceeded, state.Phase)
	assert.Equal(t, 42, state.Result)
}

func TestTracker_ParentContextCancellation(t *testing.T) {
	t.Parallel()

	clk := NewFakeClock(time.Unix(0, 0))
	h := newHarness(clk, Config{
		Timeout:          30 * time.Second,
		ProgressInterval: time.Second,
		Retry:            RetryPolicy{MaxAttempts: 1, BaseDelay: time.Second},
	})

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, h.tracker.Start(ctx, hangingWork))

	cancel()
	state := h.awaitTerminal(t)
	assert.Equal(t, PhaseCancelled, state.Phase)
}

func TestTracker_IndependentInstances(t *testing.T) {
	t.Parallel()

	clk := NewFakeClock(time.Unix(0, 0))
	config := Config{
		Timeout:          30 * time.Second,
		ProgressInterval: time.Second,
		Retry:            RetryPolicy{MaxAttempts: 1, BaseDelay: time.Second},
	}
	first := newHarness(clk, config)
	second := newHarness(clk, config)

	require.NoError(t, first.tracker.Start(context.Background(), hangingWork))
	require.NoError(t, second.tracker.Start(context.Background(), func(ctx context.Context) (any, error) {
		return "done", nil
	}))

	state := second.awaitTerminal(t)
	assert.Equal(t, PhaseSucceeded, state.Phase)

	// The first tracker is unaffected by the second finishing.
	assert.Equal(t, PhaseRunning, first.tracker.State().Phase)

	first.tracker.Cancel()
	assert.Equal(t, PhaseCancelled, first.awaitTerminal(t).Phase)
}

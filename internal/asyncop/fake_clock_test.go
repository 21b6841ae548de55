package asyncop

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFakeClock_TimerFiresOnAdvance(t *testing.T) {
	t.Parallel()

	clk := NewFakeClock(time.Unix(0, 0))
	timer := clk.NewTimer(5 * time.Second)

	// Not due yet.
	clk.Advance(4 * time.Second)
	select {
	case <-timer.C():
		t.Fatal("timer fired before its deadline")
	default:
	}

	clk.Advance(time.Second)
	select {
	case at := <-timer.C():
		assert.Equal(t, time.Unix(5, 0), at)
	default:
		t.Fatal("timer did not fire at its deadline")
	}
}

func TestFakeClock_StoppedTimerDoesNotFire(t *testing.T) {
	t.Parallel()

	clk := NewFakeClock(time.Unix(0, 0))
	timer := clk.NewTimer(time.Second)

	assert.True(t, timer.Stop())
	assert.False(t, timer.Stop(), "second stop reports already stopped")

	clk.Advance(2 * time.Second)
	select {
	case <-timer.C():
		t.Fatal("stopped timer fired")
	default:
	}
}

func TestFakeClock_TickerFiresRepeatedly(t *testing.T) {
	t.Parallel()

	clk := NewFakeClock(time.Unix(0, 0))
	ticker := clk.NewTicker(time.Second)
	defer ticker.Stop()

	for i := 1; i <= 3; i++ {
		clk.Advance(time.Second)
		select {
		case at := <-ticker.C():
			assert.Equal(t, time.Unix(int64(i), 0), at)
		default:
			t.Fatalf("ticker did not fire on advance %d", i)
		}
	}
}

func TestFakeClock_AdvanceFiresInChronologicalOrder(t *testing.T) {
	t.Parallel()

	clk := NewFakeClock(time.Unix(0, 0))
	late := clk.NewTimer(3 * time.Second)
	early := clk.NewTimer(time.Second)

	clk.Advance(5 * time.Second)

	var earlyAt, lateAt time.Time
	select {
	case earlyAt = <-early.C():
	default:
		t.Fatal("early timer did not fire")
	}
	select {
	case lateAt = <-late.C():
	default:
		t.Fatal("late timer did not fire")
	}

	require.True(t, earlyAt.Before(lateAt))
	assert.Equal(t, time.Unix(5, 0), clk.Now())
}

func TestFakeClock_WaiterCount(t *testing.T) {
	t.Parallel()

	clk := NewFakeClock(time.Unix(0, 0))
	assert.Equal(t, 0, clk.WaiterCount())

	timer := clk.NewTimer(time.Second)
	ticker := clk.NewTicker(time.Second)
	assert.Equal(t, 2, clk.WaiterCount())

	timer.Stop()
	assert.Equal(t, 1, clk.WaiterCount())

	ticker.Stop()
	assert.Equal(t, 0, clk.WaiterCount())
}

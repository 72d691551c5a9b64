package timing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/duet/errors"
)

func counter() (*int, func()) {
	n := new(int)
	return n, func() { *n++ }
}

func TestDebounceTrailing(t *testing.T) {
	sched := NewManualScheduler()
	calls, fn := counter()
	d := NewDebouncer(fn, Config{Delay: 300 * time.Millisecond, Trailing: true}, sched)

	require.NoError(t, d.Execute())
	require.NoError(t, d.Execute())
	require.NoError(t, d.Execute())
	assert.Equal(t, 0, *calls)
	assert.True(t, d.IsPending())

	sched.Advance(299 * time.Millisecond)
	assert.Equal(t, 0, *calls)

	sched.Advance(time.Millisecond)
	assert.Equal(t, 1, *calls)
	assert.False(t, d.IsPending())
}

func TestDebounceTimerRestartsPerCall(t *testing.T) {
	sched := NewManualScheduler()
	calls, fn := counter()
	d := NewDebouncer(fn, Config{Delay: 300 * time.Millisecond, Trailing: true}, sched)

	require.NoError(t, d.Execute())
	sched.Advance(200 * time.Millisecond)
	require.NoError(t, d.Execute())
	sched.Advance(200 * time.Millisecond)
	// 400ms elapsed but never 300ms of quiet
	assert.Equal(t, 0, *calls)

	sched.Advance(100 * time.Millisecond)
	assert.Equal(t, 1, *calls)
}

func TestDebounceLeading(t *testing.T) {
	sched := NewManualScheduler()
	calls, fn := counter()
	d := NewDebouncer(fn, Config{Delay: 300 * time.Millisecond, Leading: true}, sched)

	require.NoError(t, d.Execute())
	assert.Equal(t, 1, *calls)

	// Further calls inside the window do not fire
	require.NoError(t, d.Execute())
	assert.Equal(t, 1, *calls)

	sched.Advance(300 * time.Millisecond)
	assert.Equal(t, 1, *calls)

	// A fresh burst fires the leading edge again
	require.NoError(t, d.Execute())
	assert.Equal(t, 2, *calls)
}

func TestDebounceLeadingAndTrailing(t *testing.T) {
	sched := NewManualScheduler()
	calls, fn := counter()
	d := NewDebouncer(fn, Config{Delay: 300 * time.Millisecond, Leading: true, Trailing: true}, sched)

	// A single isolated call fires once, not twice
	require.NoError(t, d.Execute())
	assert.Equal(t, 1, *calls)
	sched.Advance(300 * time.Millisecond)
	assert.Equal(t, 1, *calls)

	// A burst fires leading and trailing
	require.NoError(t, d.Execute())
	require.NoError(t, d.Execute())
	assert.Equal(t, 2, *calls)
	sched.Advance(300 * time.Millisecond)
	assert.Equal(t, 3, *calls)
}

func TestDebounceCancel(t *testing.T) {
	sched := NewManualScheduler()
	calls, fn := counter()
	d := NewDebouncer(fn, DefaultConfig(), sched)

	require.NoError(t, d.Execute())
	d.Cancel()
	sched.Advance(time.Second)
	assert.Equal(t, 0, *calls)
}

func TestDebounceFlush(t *testing.T) {
	sched := NewManualScheduler()
	calls, fn := counter()
	d := NewDebouncer(fn, DefaultConfig(), sched)

	require.NoError(t, d.Execute())
	d.Flush()
	assert.Equal(t, 1, *calls)

	// The flushed window is closed; the timer firing later is a no-op
	sched.Advance(time.Second)
	assert.Equal(t, 1, *calls)

	// Flush without a pending call does nothing
	d.Flush()
	assert.Equal(t, 1, *calls)
}

func TestDebounceDestroy(t *testing.T) {
	sched := NewManualScheduler()
	calls, fn := counter()
	d := NewDebouncer(fn, DefaultConfig(), sched)

	require.NoError(t, d.Execute())
	d.Destroy()
	sched.Advance(time.Second)
	assert.Equal(t, 0, *calls)

	err := d.Execute()
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrDestroyed))
}

func TestThrottleLeading(t *testing.T) {
	sched := NewManualScheduler()
	calls, fn := counter()
	th := NewThrottler(fn, Config{Delay: time.Second, Leading: true}, sched)

	require.NoError(t, th.Execute())
	assert.Equal(t, 1, *calls)

	// Suppressed within the interval
	require.NoError(t, th.Execute())
	require.NoError(t, th.Execute())
	assert.Equal(t, 1, *calls)

	// The limiter refills after the interval
	sched.Advance(time.Second)
	require.NoError(t, th.Execute())
	assert.Equal(t, 2, *calls)
}

func TestThrottleTrailing(t *testing.T) {
	sched := NewManualScheduler()
	calls, fn := counter()
	th := NewThrottler(fn, Config{Delay: time.Second, Leading: true, Trailing: true}, sched)

	require.NoError(t, th.Execute()) // leading
	require.NoError(t, th.Execute()) // suppressed, arms trailing
	require.NoError(t, th.Execute()) // coalesced into the same trailing slot
	assert.Equal(t, 1, *calls)
	assert.True(t, th.IsPending())

	sched.Advance(time.Second)
	assert.Equal(t, 2, *calls)
	assert.False(t, th.IsPending())
}

func TestThrottleCancelAndFlush(t *testing.T) {
	sched := NewManualScheduler()
	calls, fn := counter()
	th := NewThrottler(fn, Config{Delay: time.Second, Leading: true, Trailing: true}, sched)

	require.NoError(t, th.Execute())
	require.NoError(t, th.Execute())
	th.Cancel()
	sched.Advance(time.Second)
	assert.Equal(t, 1, *calls)

	sched.Advance(time.Second)
	require.NoError(t, th.Execute())
	require.NoError(t, th.Execute())
	th.Flush()
	assert.Equal(t, 3, *calls)
}

func TestThrottleDestroy(t *testing.T) {
	sched := NewManualScheduler()
	_, fn := counter()
	th := NewThrottler(fn, Config{Delay: time.Second, Leading: true}, sched)
	th.Destroy()

	err := th.Execute()
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrDestroyed))
}

func TestManualSchedulerFiresInDeadlineOrder(t *testing.T) {
	sched := NewManualScheduler()
	var order []string

	sched.Schedule(200*time.Millisecond, func() { order = append(order, "b") })
	sched.Schedule(100*time.Millisecond, func() { order = append(order, "a") })
	sched.Schedule(300*time.Millisecond, func() { order = append(order, "c") })

	sched.Advance(250 * time.Millisecond)
	assert.Equal(t, []string{"a", "b"}, order)
	assert.Equal(t, 1, sched.PendingTimers())

	sched.Advance(50 * time.Millisecond)
	assert.Equal(t, []string{"a", "b", "c"}, order)
}

func TestManualSchedulerStop(t *testing.T) {
	sched := NewManualScheduler()
	fired := false
	timer := sched.Schedule(100*time.Millisecond, func() { fired = true })

	assert.True(t, timer.Stop())
	sched.Advance(time.Second)
	assert.False(t, fired)

	// Stopping again reports false
	assert.False(t, timer.Stop())
}

func TestManualSchedulerCallbackMaySchedule(t *testing.T) {
	sched := NewManualScheduler()
	fired := false
	sched.Schedule(100*time.Millisecond, func() {
		sched.Schedule(100*time.Millisecond, func() { fired = true })
	})

	// The chained timer falls inside the advanced window and fires too
	sched.Advance(200 * time.Millisecond)
	assert.True(t, fired)
}

func TestWallSchedulerNow(t *testing.T) {
	sched := NewScheduler()
	before := time.Now()
	now := sched.Now()
	assert.False(t, now.Before(before))
}

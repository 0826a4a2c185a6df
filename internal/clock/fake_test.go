package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestFakeAfterFuncFiresOnce(t *testing.T) {
	t.Parallel()

	f := NewFake()
	calls := 0
	f.AfterFunc(100*time.Millisecond, func() { calls++ })

	f.Advance(99 * time.Millisecond)
	require.Equal(t, 0, calls)
	f.Advance(time.Millisecond)
	require.Equal(t, 1, calls)
	f.Advance(time.Second)
	require.Equal(t, 1, calls)
	require.Zero(t, f.Pending())
}

func TestFakeEveryRepeatsUntilStopped(t *testing.T) {
	t.Parallel()

	f := NewFake()
	calls := 0
	tm := f.Every(50*time.Millisecond, func() { calls++ })

	f.Advance(200 * time.Millisecond)
	require.Equal(t, 4, calls)

	require.True(t, tm.Stop())
	require.False(t, tm.Stop())
	f.Advance(time.Second)
	require.Equal(t, 4, calls)
}

func TestFakeStoppedTimerNeverFires(t *testing.T) {
	t.Parallel()

	f := NewFake()
	fired := false
	tm := f.AfterFunc(time.Second, func() { fired = true })
	require.True(t, tm.Stop())
	f.Advance(2 * time.Second)
	require.False(t, fired)
}

func TestFakeFiresInDueOrder(t *testing.T) {
	t.Parallel()

	f := NewFake()
	var order []string
	f.AfterFunc(30*time.Millisecond, func() { order = append(order, "c") })
	f.AfterFunc(10*time.Millisecond, func() { order = append(order, "a") })
	f.AfterFunc(20*time.Millisecond, func() { order = append(order, "b") })

	f.Advance(time.Second)
	require.Equal(t, []string{"a", "b", "c"}, order)
	require.Equal(t, time.Second, f.Elapsed())
}

func TestFakeCallbackMayScheduleMore(t *testing.T) {
	t.Parallel()

	f := NewFake()
	fired := 0
	f.AfterFunc(10*time.Millisecond, func() {
		fired++
		f.AfterFunc(10*time.Millisecond, func() { fired++ })
	})
	f.Advance(15 * time.Millisecond)
	require.Equal(t, 1, fired)
	f.Advance(5 * time.Millisecond)
	require.Equal(t, 2, fired)
}

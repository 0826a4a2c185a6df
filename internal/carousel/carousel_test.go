package carousel

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"macollections.com/storefront/internal/clock"
)

func TestGoToSlideIgnoredWhileTransitioning(t *testing.T) {
	t.Parallel()

	fake := clock.NewFake()
	c := New(3, fake, Options{})
	defer c.Close()

	require.True(t, c.GoToSlide(1))
	fake.Advance(300 * time.Millisecond)
	require.False(t, c.GoToSlide(2))

	snap := c.Snapshot()
	require.Equal(t, 1, snap.Index)
	require.Equal(t, Transitioning, snap.State)

	fake.Advance(400 * time.Millisecond)
	snap = c.Snapshot()
	require.Equal(t, Idle, snap.State)
	require.Equal(t, 1, snap.Index)

	require.True(t, c.GoToSlide(2))
	require.Equal(t, 2, c.Snapshot().Index)
}

func TestNextAndPreviousWrap(t *testing.T) {
	t.Parallel()

	fake := clock.NewFake()
	c := New(3, fake, Options{})
	defer c.Close()

	require.True(t, c.Previous())
	require.Equal(t, 2, c.Snapshot().Index)
	fake.Advance(DefaultTransition)

	require.True(t, c.Next())
	require.Equal(t, 0, c.Snapshot().Index)
	fake.Advance(DefaultTransition)

	require.True(t, c.GoToSlide(-4))
	require.Equal(t, 2, c.Snapshot().Index)
}

func TestAutoAdvanceAfterDuration(t *testing.T) {
	t.Parallel()

	fake := clock.NewFake()
	c := New(3, fake, Options{})
	defer c.Close()
	c.Start()

	fake.Advance(3 * time.Second)
	snap := c.Snapshot()
	require.Equal(t, 0, snap.Index)
	require.InDelta(t, 50.0, snap.Progress, 0.001)

	fake.Advance(3*time.Second - DefaultInterval)
	require.Equal(t, 0, c.Snapshot().Index)

	fake.Advance(DefaultInterval)
	snap = c.Snapshot()
	require.Equal(t, 1, snap.Index)
	require.Equal(t, Transitioning, snap.State)
	require.Zero(t, snap.Progress)

	fake.Advance(DefaultTransition)
	require.Equal(t, Idle, c.Snapshot().State)

	fake.Advance(2 * DefaultDuration)
	require.Equal(t, 0, c.Snapshot().Index)
}

func TestManualNavigationResetsProgress(t *testing.T) {
	t.Parallel()

	fake := clock.NewFake()
	c := New(2, fake, Options{})
	defer c.Close()
	c.Start()

	fake.Advance(5 * time.Second)
	require.True(t, c.Next())
	require.Zero(t, c.Snapshot().Progress)

	fake.Advance(5 * time.Second)
	require.Equal(t, 1, c.Snapshot().Index)
}

func TestCloseStopsAllTimers(t *testing.T) {
	t.Parallel()

	fake := clock.NewFake()
	c := New(3, fake, Options{})
	c.Start()
	require.True(t, c.GoToSlide(1))
	require.Equal(t, 2, fake.Pending())

	c.Close()
	c.Close()
	require.Zero(t, fake.Pending())

	fake.Advance(time.Minute)
	snap := c.Snapshot()
	require.Equal(t, 1, snap.Index)
	require.Equal(t, Transitioning, snap.State)
	require.False(t, c.GoToSlide(2))
}

func TestStartIsIdempotentAndEmptyCarouselIsInert(t *testing.T) {
	t.Parallel()

	fake := clock.NewFake()
	c := New(3, fake, Options{})
	c.Start()
	c.Start()
	require.Equal(t, 1, fake.Pending())
	c.Close()

	empty := New(0, fake, Options{})
	empty.Start()
	require.False(t, empty.Next())
	require.Zero(t, fake.Pending())
}

func TestSnapshotCarriesOptions(t *testing.T) {
	t.Parallel()

	c := New(1, clock.NewFake(), Options{Duration: 3 * time.Second})
	snap := c.Snapshot()
	require.Equal(t, 3*time.Second, snap.Options.Duration)
	require.Equal(t, DefaultInterval, snap.Options.Interval)
	require.Equal(t, DefaultTransition, snap.Options.Transition)
	require.Equal(t, "idle", snap.State.String())
}

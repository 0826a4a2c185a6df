// Package carousel drives the home page hero rotation: a timed slide
// advance with progress, manual navigation, and a transition lock.
package carousel

import (
	"sync"
	"time"

	"macollections.com/storefront/internal/clock"
)

// Timing defaults.
const (
	DefaultInterval   = 50 * time.Millisecond
	DefaultDuration   = 6000 * time.Millisecond
	DefaultTransition = 700 * time.Millisecond
)

// State is the carousel's transition state.
type State int

const (
	Idle State = iota
	Transitioning
)

func (s State) String() string {
	if s == Transitioning {
		return "transitioning"
	}
	return "idle"
}

// Options tunes the timing. Zero values take the defaults.
type Options struct {
	// Interval between progress ticks.
	Interval time.Duration
	// Duration a slide stays up before auto-advancing.
	Duration time.Duration
	// Transition is how long navigation stays locked after a slide change.
	Transition time.Duration
}

func (o Options) withDefaults() Options {
	if o.Interval <= 0 {
		o.Interval = DefaultInterval
	}
	if o.Duration <= 0 {
		o.Duration = DefaultDuration
	}
	if o.Transition <= 0 {
		o.Transition = DefaultTransition
	}
	return o
}

// Snapshot is a point-in-time view of the carousel.
type Snapshot struct {
	Index    int
	Count    int
	State    State
	Progress float64
	Options  Options
}

// Carousel is safe for concurrent use. Timer callbacks are no-ops after Close.
type Carousel struct {
	mu         sync.Mutex
	sched      clock.Scheduler
	opts       Options
	count      int
	index      int
	state      State
	elapsed    time.Duration
	ticker     clock.Timer
	transition clock.Timer
	closed     bool
}

// New builds a carousel over count slides positioned on the first one.
func New(count int, sched clock.Scheduler, opts Options) *Carousel {
	if sched == nil {
		sched = clock.Real()
	}
	return &Carousel{sched: sched, opts: opts.withDefaults(), count: max(count, 0)}
}

// Start arms the progress ticker. Calling it again is a no-op.
func (c *Carousel) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || c.ticker != nil || c.count == 0 {
		return
	}
	c.ticker = c.sched.Every(c.opts.Interval, c.tick)
}

// GoToSlide moves to slide i (wrapped into range). It reports false when a
// transition is still running or the carousel is closed.
func (c *Carousel) GoToSlide(i int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.goToLocked(i)
}

// Next advances one slide.
func (c *Carousel) Next() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.goToLocked(c.index + 1)
}

// Previous steps back one slide.
func (c *Carousel) Previous() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.goToLocked(c.index - 1)
}

// Close stops every timer the carousel owns. It is idempotent.
func (c *Carousel) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	if c.ticker != nil {
		c.ticker.Stop()
		c.ticker = nil
	}
	if c.transition != nil {
		c.transition.Stop()
		c.transition = nil
	}
}

// Snapshot returns the current state.
func (c *Carousel) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Snapshot{
		Index:    c.index,
		Count:    c.count,
		State:    c.state,
		Progress: c.progressLocked(),
		Options:  c.opts,
	}
}

func (c *Carousel) goToLocked(i int) bool {
	if c.closed || c.count == 0 || c.state == Transitioning {
		return false
	}
	c.index = wrap(i, c.count)
	c.state = Transitioning
	c.elapsed = 0
	c.transition = c.sched.AfterFunc(c.opts.Transition, c.settle)
	return true
}

func (c *Carousel) settle() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.state = Idle
	c.transition = nil
}

func (c *Carousel) tick() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.elapsed += c.opts.Interval
	if c.elapsed >= c.opts.Duration {
		c.goToLocked(c.index + 1)
		c.elapsed = 0
	}
}

func (c *Carousel) progressLocked() float64 {
	if c.opts.Duration <= 0 {
		return 0
	}
	p := float64(c.elapsed) / float64(c.opts.Duration) * 100
	if p > 100 {
		return 100
	}
	return p
}

func wrap(i, n int) int {
	i %= n
	if i < 0 {
		i += n
	}
	return i
}

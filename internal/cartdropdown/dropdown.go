// Package cartdropdown keeps the header cart panel in step with the server
// cart: it opens when the item count changes outside the cart page and closes
// itself after a delay unless the shopper is hovering it.
package cartdropdown

import (
	"strings"
	"sync"
	"time"

	"macollections.com/storefront/internal/clock"
)

// DefaultCloseDelay is how long an automatically opened panel stays open.
const DefaultCloseDelay = 5000 * time.Millisecond

// cartSegment marks the dedicated cart page, where the panel never auto-opens.
const cartSegment = "/cart"

// Dropdown is safe for concurrent use. Its close timer never fires after Close.
type Dropdown struct {
	mu        sync.Mutex
	sched     clock.Scheduler
	delay     time.Duration
	prevTotal int
	open      bool
	timer     clock.Timer
	closed    bool
}

// New builds a dropdown that last observed prevTotal items.
func New(prevTotal int, sched clock.Scheduler, delay time.Duration) *Dropdown {
	if sched == nil {
		sched = clock.Real()
	}
	if delay <= 0 {
		delay = DefaultCloseDelay
	}
	return &Dropdown{sched: sched, delay: delay, prevTotal: prevTotal}
}

// Sync records the current item count seen on path. When the count changed
// and path is not the cart page, the panel opens and a fresh close timer
// replaces any pending one. It reports whether the panel was opened.
func (d *Dropdown) Sync(total int, path string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return false
	}
	changed := total != d.prevTotal
	d.prevTotal = total
	if !changed || strings.Contains(path, cartSegment) {
		return false
	}
	d.stopTimerLocked()
	d.open = true
	d.timer = d.sched.AfterFunc(d.delay, d.expire)
	return true
}

// HoverIn cancels a pending close and opens the panel.
func (d *Dropdown) HoverIn() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}
	d.stopTimerLocked()
	d.open = true
}

// HoverOut closes the panel immediately.
func (d *Dropdown) HoverOut() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopTimerLocked()
	d.open = false
}

// Close tears the dropdown down and cancels its timer. It is idempotent.
func (d *Dropdown) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopTimerLocked()
	d.closed = true
}

// IsOpen reports whether the panel is showing.
func (d *Dropdown) IsOpen() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.open
}

// PrevTotal returns the last observed item count.
func (d *Dropdown) PrevTotal() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.prevTotal
}

// TimerArmed reports whether a close is pending.
func (d *Dropdown) TimerArmed() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.timer != nil
}

// CloseDelay returns the auto-close delay.
func (d *Dropdown) CloseDelay() time.Duration { return d.delay }

func (d *Dropdown) expire() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}
	d.open = false
	d.timer = nil
}

func (d *Dropdown) stopTimerLocked() {
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

package selection

import (
	"slices"
	"sync"
	"time"
)

// ManualClock is a Scheduler driven by Advance. Callbacks run synchronously
// inside Advance, in due order.
type ManualClock struct {
	mu     sync.Mutex
	now    time.Duration
	nextID int
	timers []*manualTimer
}

type manualTimer struct {
	clock *ManualClock
	id    int
	due   time.Duration
	fn    func()
}

// NewManualClock returns a clock at time zero.
func NewManualClock() *ManualClock { return &ManualClock{} }

// AfterFunc implements Scheduler.
func (c *ManualClock) AfterFunc(d time.Duration, fn func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nextID++
	t := &manualTimer{clock: c, id: c.nextID, due: c.now + d, fn: fn}
	c.timers = append(c.timers, t)
	return t
}

// Stop implements Timer.
func (t *manualTimer) Stop() bool {
	c := t.clock
	c.mu.Lock()
	defer c.mu.Unlock()
	i := slices.Index(c.timers, t)
	if i < 0 {
		return false
	}
	c.timers = slices.Delete(c.timers, i, i+1)
	return true
}

// Advance moves the clock forward by d and runs every timer that falls due.
func (c *ManualClock) Advance(d time.Duration) {
	c.mu.Lock()
	target := c.now + d
	c.mu.Unlock()
	for {
		c.mu.Lock()
		next := -1
		for i, t := range c.timers {
			if t.due <= target && (next < 0 || t.due < c.timers[next].due ||
				(t.due == c.timers[next].due && t.id < c.timers[next].id)) {
				next = i
			}
		}
		if next < 0 {
			c.now = target
			c.mu.Unlock()
			return
		}
		t := c.timers[next]
		c.timers = slices.Delete(c.timers, next, next+1)
		c.now = t.due
		c.mu.Unlock()
		t.fn()
	}
}

// Now returns the elapsed clock time.
func (c *ManualClock) Now() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Scheduled returns the number of timers not yet fired or stopped.
func (c *ManualClock) Scheduled() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.timers)
}

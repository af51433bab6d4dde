package selection

import (
	"sync"
	"time"
)

// DefaultDwell is the hover time before a detail request is issued.
const DefaultDwell = 1000 * time.Millisecond

// Timer is a scheduled callback.
type Timer interface {
	Stop() bool
}

// Scheduler runs fn once after d.
type Scheduler interface {
	AfterFunc(d time.Duration, fn func()) Timer
}

// LoopScheduler fires callbacks through Post, which must run them on the
// owning event loop. A nil Post runs them on the timer goroutine.
type LoopScheduler struct {
	Post func(func())
}

// AfterFunc implements Scheduler.
func (s LoopScheduler) AfterFunc(d time.Duration, fn func()) Timer {
	return time.AfterFunc(d, func() {
		if s.Post == nil {
			fn()
			return
		}
		s.Post(fn)
	})
}

// Deferred holds at most one pending task. Arming replaces the pending
// task; a cancelled or replaced task never runs, even if its timer has
// already fired and its callback is queued on the loop.
type Deferred struct {
	sched Scheduler

	mu      sync.Mutex
	seq     uint64
	timer   Timer
	pending bool
}

// NewDeferred returns an empty register on s.
func NewDeferred(s Scheduler) *Deferred {
	return &Deferred{sched: s}
}

// Arm schedules fn after d, cancelling any pending task.
func (d *Deferred) Arm(delay time.Duration, fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.seq++
	seq := d.seq
	if d.timer != nil {
		d.timer.Stop()
	}
	d.pending = true
	d.timer = d.sched.AfterFunc(delay, func() {
		shouldRun := func() bool {
			d.mu.Lock()
			defer d.mu.Unlock()
			if seq != d.seq || !d.pending {
				return false
			}
			d.pending = false
			d.timer = nil
			return true
		}()
		if shouldRun {
			fn()
		}
	})
}

// Cancel drops the pending task and reports whether there was one.
func (d *Deferred) Cancel() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.seq++
	had := d.pending
	d.pending = false
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	return had
}

// Pending reports whether a task is armed and has not run.
func (d *Deferred) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending
}

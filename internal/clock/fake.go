package clock

import (
	"sync"
	"time"
)

// Fake is a manually advanced clock for tests. Scheduled callbacks only run
// inside Advance, on the caller's goroutine, in deadline order.
type Fake struct {
	mu      sync.Mutex
	now     time.Time
	seq     uint64
	pending []*fakeTask
}

// NewFake creates a fake clock frozen at start.
func NewFake(start time.Time) *Fake {
	return &Fake{now: start}
}

// Now returns the current fake time.
func (c *Fake) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// AfterFunc schedules f to run once d after the current fake time.
func (c *Fake) AfterFunc(d time.Duration, f func()) Task {
	if d < 0 {
		d = 0
	}
	return c.schedule(d, 0, f)
}

// Every schedules f to run each time d elapses. A non-positive interval is
// treated as one nanosecond so Advance always terminates.
func (c *Fake) Every(d time.Duration, f func()) Task {
	if d <= 0 {
		d = time.Nanosecond
	}
	return c.schedule(d, d, f)
}

func (c *Fake) schedule(delay, every time.Duration, f func()) Task {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq++
	task := &fakeTask{
		clock: c,
		at:    c.now.Add(delay),
		every: every,
		seq:   c.seq,
		fn:    f,
	}
	c.pending = append(c.pending, task)
	return task
}

// Advance moves time forward by d, firing everything that falls due. Tasks
// scheduled by a callback fire in the same call if their deadline is within
// the window.
func (c *Fake) Advance(d time.Duration) {
	c.mu.Lock()
	target := c.now.Add(d)
	c.mu.Unlock()
	for {
		c.mu.Lock()
		next := c.nextDueLocked(target)
		if next == nil {
			c.now = target
			c.mu.Unlock()
			return
		}
		c.now = next.at
		if next.every > 0 {
			c.seq++
			next.at = next.at.Add(next.every)
			next.seq = c.seq
		} else {
			next.fired = true
			c.removeLocked(next)
		}
		fn := next.fn
		c.mu.Unlock()
		fn()
	}
}

// Pending reports how many callbacks are still scheduled.
func (c *Fake) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pending)
}

func (c *Fake) nextDueLocked(target time.Time) *fakeTask {
	var best *fakeTask
	for _, task := range c.pending {
		if task.at.After(target) {
			continue
		}
		if best == nil || task.at.Before(best.at) || (task.at.Equal(best.at) && task.seq < best.seq) {
			best = task
		}
	}
	return best
}

func (c *Fake) removeLocked(target *fakeTask) {
	for i, task := range c.pending {
		if task == target {
			c.pending = append(c.pending[:i], c.pending[i+1:]...)
			return
		}
	}
}

type fakeTask struct {
	clock    *Fake
	at       time.Time
	every    time.Duration
	seq      uint64
	fn       func()
	fired    bool
	canceled bool
}

func (t *fakeTask) Cancel() bool {
	c := t.clock
	c.mu.Lock()
	defer c.mu.Unlock()
	if t.canceled || t.fired {
		return false
	}
	t.canceled = true
	c.removeLocked(t)
	return true
}

// internal/clock/clock.go
//
// Time source used by anything that schedules work. Production code runs on
// Real(); tests drive a Fake by hand so timed sequences are deterministic.

package clock

import (
	"sync"
	"time"
)

// Task is a scheduled callback that can be canceled. Timeouts and intervals
// share this one shape so owners can keep them in a single set.
type Task interface {
	// Cancel prevents any future firing. It reports whether the call stopped
	// something that was still pending.
	Cancel() bool
}

// Clock schedules callbacks and reports the current time.
type Clock interface {
	Now() time.Time
	// AfterFunc runs f once after d.
	AfterFunc(d time.Duration, f func()) Task
	// Every runs f each time d elapses until the task is canceled.
	Every(d time.Duration, f func()) Task
}

// Real returns the wall clock.
func Real() Clock {
	return realClock{}
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now()
}

func (realClock) AfterFunc(d time.Duration, f func()) Task {
	return &realTimeout{timer: time.AfterFunc(d, f)}
}

func (realClock) Every(d time.Duration, f func()) Task {
	iv := &realInterval{
		ticker: time.NewTicker(d),
		stop:   make(chan struct{}),
	}
	go iv.loop(f)
	return iv
}

type realTimeout struct {
	timer *time.Timer
}

func (t *realTimeout) Cancel() bool {
	return t.timer.Stop()
}

// realInterval owns one goroutine which exits as soon as the task is
// canceled. A tick that is already running when Cancel is called still
// completes, so callers that cancel from another goroutine must guard their
// own state.
type realInterval struct {
	ticker *time.Ticker
	stop   chan struct{}
	once   sync.Once
}

func (iv *realInterval) loop(f func()) {
	for {
		select {
		case <-iv.stop:
			return
		case <-iv.ticker.C:
			select {
			case <-iv.stop:
				return
			default:
			}
			f()
		}
	}
}

func (iv *realInterval) Cancel() bool {
	stopped := false
	iv.once.Do(func() {
		stopped = true
		iv.ticker.Stop()
		close(iv.stop)
	})
	return stopped
}

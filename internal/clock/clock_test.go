package clock

import (
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/goleak"
)

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func TestFakeFiresInDeadlineOrder(t *testing.T) {
	c := NewFake(epoch)
	var got []string
	c.AfterFunc(30*time.Millisecond, func() { got = append(got, "c") })
	c.AfterFunc(10*time.Millisecond, func() { got = append(got, "a") })
	c.AfterFunc(10*time.Millisecond, func() { got = append(got, "b") })

	c.Advance(20 * time.Millisecond)
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Fatalf("expected [a b] after 20ms, got %v", got)
	}
	c.Advance(10 * time.Millisecond)
	if len(got) != 3 || got[2] != "c" {
		t.Fatalf("expected c to fire at 30ms, got %v", got)
	}
	if c.Pending() != 0 {
		t.Fatalf("expected no pending tasks, got %d", c.Pending())
	}
	if want := epoch.Add(30 * time.Millisecond); !c.Now().Equal(want) {
		t.Fatalf("expected now %v, got %v", want, c.Now())
	}
}

func TestFakeEveryRepeatsUntilCanceled(t *testing.T) {
	c := NewFake(epoch)
	ticks := 0
	var task Task
	task = c.Every(5*time.Millisecond, func() {
		ticks++
		if ticks == 3 {
			task.Cancel()
		}
	})
	c.Advance(time.Second)
	if ticks != 3 {
		t.Fatalf("expected 3 ticks, got %d", ticks)
	}
	if task.Cancel() {
		t.Fatalf("second cancel should report nothing pending")
	}
}

func TestFakeCallbackCanScheduleWithinWindow(t *testing.T) {
	c := NewFake(epoch)
	fired := false
	c.AfterFunc(10*time.Millisecond, func() {
		c.AfterFunc(10*time.Millisecond, func() { fired = true })
	})
	c.Advance(20 * time.Millisecond)
	if !fired {
		t.Fatalf("nested timeout due inside the window should fire")
	}
}

func TestFakeCancelBeforeDeadline(t *testing.T) {
	c := NewFake(epoch)
	fired := false
	task := c.AfterFunc(10*time.Millisecond, func() { fired = true })
	if !task.Cancel() {
		t.Fatalf("expected cancel to report a pending task")
	}
	c.Advance(time.Second)
	if fired {
		t.Fatalf("canceled task fired")
	}
}

func TestRealIntervalStopsWithoutLeaking(t *testing.T) {
	defer goleak.VerifyNone(t)

	var ticks atomic.Int32
	task := Real().Every(time.Millisecond, func() { ticks.Add(1) })
	deadline := time.Now().Add(2 * time.Second)
	for ticks.Load() < 2 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if !task.Cancel() {
		t.Fatalf("expected first cancel to stop the interval")
	}
	if task.Cancel() {
		t.Fatalf("cancel must be idempotent")
	}
}

func TestRealTimeoutCancel(t *testing.T) {
	defer goleak.VerifyNone(t)

	var fired atomic.Bool
	task := Real().AfterFunc(time.Hour, func() { fired.Store(true) })
	if !task.Cancel() {
		t.Fatalf("expected cancel to stop the pending timer")
	}
	if fired.Load() {
		t.Fatalf("timer fired after cancel")
	}
}

package dictation

import (
	"sort"
	"sync"
	"time"
)

// Timer is a pending callback that can be cancelled.
type Timer interface {
	// Stop cancels the timer. It reports whether the call prevented the
	// callback from running.
	Stop() bool
}

// Clock schedules callbacks. Callbacks run on their own goroutine.
type Clock interface {
	AfterFunc(d time.Duration, f func()) Timer
}

// RealClock schedules with the time package.
type RealClock struct{}

func (RealClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// ManualClock only moves when Advance is called.
type ManualClock struct {
	mu     sync.Mutex
	now    time.Duration
	seq    int
	timers []*manualTimer
}

var _ Clock = (*ManualClock)(nil)

type manualTimer struct {
	clock *ManualClock
	at    time.Duration
	seq   int
	f     func()
}

func (t *manualTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()

	for i, pending := range t.clock.timers {
		if pending == t {
			t.clock.timers = append(t.clock.timers[:i], t.clock.timers[i+1:]...)
			return true
		}
	}

	return false
}

func NewManualClock() *ManualClock {
	return &ManualClock{}
}

func (c *ManualClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.seq++
	t := &manualTimer{clock: c, at: c.now + d, seq: c.seq, f: f}
	c.timers = append(c.timers, t)

	return t
}

// Advance moves time forward by d and runs every timer that falls due, in
// deadline order, on the calling goroutine.
func (c *ManualClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now += d

	var due []*manualTimer
	kept := c.timers[:0]
	for _, t := range c.timers {
		if t.at <= c.now {
			due = append(due, t)
		} else {
			kept = append(kept, t)
		}
	}
	c.timers = kept
	c.mu.Unlock()

	sort.Slice(due, func(i, j int) bool {
		if due[i].at != due[j].at {
			return due[i].at < due[j].at
		}
		return due[i].seq < due[j].seq
	})

	for _, t := range due {
		t.f()
	}
}

// Pending returns the number of scheduled timers.
func (c *ManualClock) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.timers)
}

// Package timer provides the millisecond tick service used by the protocol
// engine for its inter-octet and per-command deadlines.
//
// Timers are cooperative: nothing fires on its own. A periodic task asks a
// Timer how long it has been running and decides what to do about it.
package timer

import (
	"sync"
	"time"
)

//go:generate go tool mockgen -destination=mock_clock.go -package=timer . Clock

// Clock is a source of monotonically increasing milliseconds.
type Clock interface {
	Milliseconds() uint64
}

// SystemClock reports milliseconds elapsed since it was created.
type SystemClock struct {
	epoch time.Time
}

// NewSystemClock returns a Clock backed by the monotonic wall clock.
func NewSystemClock() *SystemClock {
	return &SystemClock{epoch: time.Now()}
}

func (c *SystemClock) Milliseconds() uint64 {
	return uint64(time.Since(c.epoch).Milliseconds())
}

// ManualClock is a Clock that only moves when told to. It is safe for
// concurrent use.
type ManualClock struct {
	mu  sync.Mutex
	now uint64
}

func (c *ManualClock) Milliseconds() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d, truncated to whole milliseconds.
func (c *ManualClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now += uint64(d.Milliseconds())
	c.mu.Unlock()
}

// Set moves the clock to an absolute tick.
func (c *ManualClock) Set(ms uint64) {
	c.mu.Lock()
	c.now = ms
	c.mu.Unlock()
}

// Timer records the tick at which it was started. The zero value is a
// stopped timer.
type Timer struct {
	start   uint64
	started bool
}

// Start (re)starts the timer at the current tick of c.
func (t *Timer) Start(c Clock) {
	t.start = c.Milliseconds()
	t.started = true
}

// Clear stops the timer.
func (t *Timer) Clear() {
	t.start = 0
	t.started = false
}

// Elapsed returns the milliseconds since Start, or 0 for a stopped timer.
func (t *Timer) Elapsed(c Clock) uint64 {
	if !t.started {
		return 0
	}
	now := c.Milliseconds()
	if now < t.start {
		return 0
	}
	return now - t.start
}

// IsStarted reports whether the timer is running.
func (t *Timer) IsStarted() bool {
	return t.started
}

// Package testutil provides deterministic test doubles shared across
// packages.
package testutil

import (
	"sync"
	"time"
)

// Clock is a deterministic time source for tests.
//
// Every Now() call advances the clock by a fixed step, so a single-threaded
// test or scenario produces the same timestamp sequence on every run. That
// keeps version tokens, history ordering and golden traces stable.
//
// Thread-safety: all methods are safe for concurrent use via internal
// mutex, though concurrent callers forfeit determinism.
type Clock struct {
	mu   sync.Mutex
	now  time.Time
	step time.Duration

	start time.Time
}

// NewClock creates a clock that returns start+step on the first Now() call
// and advances by step on each subsequent call.
func NewClock(start time.Time, step time.Duration) *Clock {
	return &Clock{now: start, step: step, start: start}
}

// Now advances the clock and returns the new time.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(c.step)
	return c.now
}

// Current returns the clock's position without advancing it.
func (c *Clock) Current() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Reset rewinds the clock to its start time for test reuse.
func (c *Clock) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.start
}

package sim

import "time"

// Clock is a deterministic clock advanced in lockstep with the tick
// driver, so simulated sessions replay identically.
type Clock struct {
	now time.Time
}

// NewClock starts a clock at the given instant.
func NewClock(start time.Time) *Clock {
	return &Clock{now: start}
}

// Now returns the current simulated time.
func (c *Clock) Now() time.Time { return c.now }

// Advance moves the clock forward one tick.
func (c *Clock) Advance(dt time.Duration) { c.now = c.now.Add(dt) }

package timer

import "time"

// ManualClock is a Clock whose time only moves when told to.
// It is intended for tests that need deterministic elapsed times.
type ManualClock struct {
	now time.Time
}

// NewManualClock creates a manual clock positioned at start.
func NewManualClock(start time.Time) *ManualClock {
	return &ManualClock{now: start}
}

func (c *ManualClock) Now() time.Time {
	return c.now
}

// Advance moves the clock forward by d.
func (c *ManualClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}

// Set positions the clock at the given time.
func (c *ManualClock) Set(now time.Time) {
	c.now = now
}

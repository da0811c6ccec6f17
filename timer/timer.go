// Package timer provides elapsed-time tracking against an injectable
// monotonic clock. A Timer is a plain value owned by whoever created it;
// it carries no identity beyond its baseline and is reset deterministically
// by its owner.
package timer

import "time"

// Clock supplies the current time. Implementations must be monotonic:
// successive readings never go backwards.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the process clock. Go's time.Time carries a monotonic
// component, so subtracting two in-process readings is monotonic.
type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now()
}

// Timer measures the time elapsed since the last Reset.
type Timer struct {
	clock Clock
	start time.Time
}

// New creates a timer against the given clock and starts it immediately.
// A nil clock defaults to SystemClock.
func New(clock Clock) *Timer {
	if clock == nil {
		clock = SystemClock{}
	}

	t := &Timer{clock: clock}
	t.Reset()

	return t
}

// Reset captures the current time as the new baseline, discarding any
// previously elapsed time.
func (t *Timer) Reset() {
	t.start = t.clock.Now()
}

// Elapsed returns the time since the last Reset. Never negative.
func (t *Timer) Elapsed() time.Duration {
	elapsed := t.clock.Now().Sub(t.start)
	if elapsed < 0 {
		return 0
	}

	return elapsed
}

// ElapsedMoreThan reports whether strictly more than d has elapsed since
// the last Reset.
func (t *Timer) ElapsedMoreThan(d time.Duration) bool {
	return t.Elapsed() > d
}

// ElapsedLessThan reports whether strictly less than d has elapsed since
// the last Reset.
func (t *Timer) ElapsedLessThan(d time.Duration) bool {
	return t.Elapsed() < d
}

// ElapsedAtLeast reports whether at least d has elapsed since the last Reset.
func (t *Timer) ElapsedAtLeast(d time.Duration) bool {
	return t.Elapsed() >= d
}

// ElapsedAtMost reports whether at most d has elapsed since the last Reset.
func (t *Timer) ElapsedAtMost(d time.Duration) bool {
	return t.Elapsed() <= d
}

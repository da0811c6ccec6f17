package timer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestElapsedAfterReset(t *testing.T) {
	t.Parallel()

	clock := NewManualClock(time.Unix(1000, 0))
	tm := New(clock)

	assert.Equal(t, time.Duration(0), tm.Elapsed())

	clock.Advance(250 * time.Millisecond)
	assert.Equal(t, 250*time.Millisecond, tm.Elapsed())

	tm.Reset()
	assert.Equal(t, time.Duration(0), tm.Elapsed())

	clock.Advance(time.Second)
	assert.Equal(t, time.Second, tm.Elapsed())
}

func TestElapsedNeverNegative(t *testing.T) {
	t.Parallel()

	clock := NewManualClock(time.Unix(1000, 0))
	tm := New(clock)

	// A clock stepping backwards is a host bug; the timer still clamps.
	clock.Set(time.Unix(999, 0))
	assert.Equal(t, time.Duration(0), tm.Elapsed())
}

func TestComparisons(t *testing.T) {
	t.Parallel()

	clock := NewManualClock(time.Unix(0, 0))
	tm := New(clock)
	clock.Advance(100 * time.Millisecond)

	assert.True(t, tm.ElapsedMoreThan(50*time.Millisecond))
	assert.False(t, tm.ElapsedMoreThan(100*time.Millisecond))
	assert.True(t, tm.ElapsedAtLeast(100*time.Millisecond))
	assert.False(t, tm.ElapsedAtLeast(101*time.Millisecond))
	assert.True(t, tm.ElapsedLessThan(200*time.Millisecond))
	assert.False(t, tm.ElapsedLessThan(100*time.Millisecond))
	assert.True(t, tm.ElapsedAtMost(100*time.Millisecond))
	assert.False(t, tm.ElapsedAtMost(99*time.Millisecond))
}

func TestNilClockDefaultsToSystem(t *testing.T) {
	t.Parallel()

	tm := New(nil)
	require.NotNil(t, tm)

	// System clock only moves forward.
	assert.GreaterOrEqual(t, tm.Elapsed(), time.Duration(0))
}

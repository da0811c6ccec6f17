package statemachine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amp-labs/hfsm/timer"
)

func TestCondTransitionNilConditionAlwaysFires(t *testing.T) {
	t.Parallel()

	transition := NewTransition("a", "b", nil)

	assert.Equal(t, "a", transition.From())
	assert.Equal(t, "b", transition.To())
	assert.True(t, transition.ShouldTransition())
	assert.False(t, transition.ForceInstantly())
}

func TestCondTransitionForced(t *testing.T) {
	t.Parallel()

	transition := NewTransition("a", "b", nil).Forced()

	assert.True(t, transition.ForceInstantly())
}

func TestCondTransitionFollowsCondition(t *testing.T) {
	t.Parallel()

	ready := false
	transition := NewTransition("a", "b", func() bool { return ready })

	assert.False(t, transition.ShouldTransition())

	ready = true
	assert.True(t, transition.ShouldTransition())
}

func TestTransitionAfterWaitsForDuration(t *testing.T) {
	t.Parallel()

	clock := timer.NewManualClock(time.Unix(0, 0))
	transition := NewTransitionAfter("a", "b", 5*time.Second, nil).WithClock(clock)

	transition.OnSourceEntered()
	assert.False(t, transition.ShouldTransition())

	clock.Advance(4 * time.Second)
	assert.False(t, transition.ShouldTransition())

	clock.Advance(time.Second)
	assert.True(t, transition.ShouldTransition())
}

func TestTransitionAfterResetsOnSourceEntry(t *testing.T) {
	t.Parallel()

	clock := timer.NewManualClock(time.Unix(0, 0))
	transition := NewTransitionAfter("a", "b", 5*time.Second, nil).WithClock(clock)

	transition.OnSourceEntered()
	clock.Advance(10 * time.Second)
	require.True(t, transition.ShouldTransition())

	// Re-entering the source restarts the countdown.
	transition.OnSourceEntered()
	assert.False(t, transition.ShouldTransition())

	clock.Advance(5 * time.Second)
	assert.True(t, transition.ShouldTransition())
}

func TestTransitionAfterCombinesWithCondition(t *testing.T) {
	t.Parallel()

	ready := false
	clock := timer.NewManualClock(time.Unix(0, 0))
	transition := NewTransitionAfter("a", "b", time.Second, func() bool { return ready }).WithClock(clock)

	transition.OnSourceEntered()
	clock.Advance(2 * time.Second)
	assert.False(t, transition.ShouldTransition())

	ready = true
	assert.True(t, transition.ShouldTransition())
}

func TestTransitionAfterDrivesMachine(t *testing.T) {
	t.Parallel()

	clock := timer.NewManualClock(time.Unix(0, 0))

	machine := NewMachine("timed")
	require.NoError(t, machine.AddState("warmup", NewFuncState[string]()))
	require.NoError(t, machine.AddState("run", NewFuncState[string]()))
	require.NoError(t, machine.AddTransition(
		NewTransitionAfter("warmup", "run", 3*time.Second, nil).WithClock(clock),
	))

	require.NoError(t, machine.Init())

	require.NoError(t, machine.OnLogic(16*time.Millisecond))
	assert.Equal(t, "warmup", machine.ActiveStateID())

	clock.Advance(3 * time.Second)
	require.NoError(t, machine.OnLogic(16*time.Millisecond))
	assert.Equal(t, "run", machine.ActiveStateID())
}

package statemachine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amp-labs/hfsm/timer"
)

func TestStateBaseDefaults(t *testing.T) {
	t.Parallel()

	base := NewStateBase[string](false, false)

	require.NoError(t, base.OnEnter())
	require.NoError(t, base.OnLogic(time.Millisecond))
	require.NoError(t, base.OnExit())
	require.NoError(t, base.OnAction("ping"))
	require.NoError(t, base.OnActionWithData("ping", 1))
	assert.False(t, base.NeedsExitTime())
	assert.False(t, base.IsGhostState())

	flagged := NewStateBase[string](true, true)
	assert.True(t, flagged.NeedsExitTime())
	assert.True(t, flagged.IsGhostState())
}

func TestFuncStateCallbacks(t *testing.T) {
	t.Parallel()

	var calls []string

	state := NewFuncState(
		WithOnEnter[string](func(*FuncState[string]) error {
			calls = append(calls, "enter")

			return nil
		}),
		WithOnLogic[string](func(_ *FuncState[string], delta time.Duration) error {
			calls = append(calls, "logic")
			assert.Equal(t, 16*time.Millisecond, delta)

			return nil
		}),
		WithOnExit[string](func(*FuncState[string]) error {
			calls = append(calls, "exit")

			return nil
		}),
	)

	require.NoError(t, state.OnEnter())
	require.NoError(t, state.OnLogic(16*time.Millisecond))
	require.NoError(t, state.OnExit())
	assert.Equal(t, []string{"enter", "logic", "exit"}, calls)
}

func TestFuncStateFlags(t *testing.T) {
	t.Parallel()

	state := NewFuncState(WithNeedsExitTime[string](), WithGhost[string]())
	assert.True(t, state.NeedsExitTime())
	assert.True(t, state.IsGhostState())

	plain := NewFuncState[string]()
	assert.False(t, plain.NeedsExitTime())
	assert.False(t, plain.IsGhostState())
}

func TestWithCanExitImpliesNeedsExitTime(t *testing.T) {
	t.Parallel()

	state := NewFuncState(WithCanExit[string](func(*FuncState[string]) bool { return true }))
	assert.True(t, state.NeedsExitTime())
}

func TestFuncStateTimerTracksActivation(t *testing.T) {
	t.Parallel()

	clock := timer.NewManualClock(time.Unix(0, 0))
	state := NewFuncState(WithStateClock[string](clock))

	clock.Advance(time.Hour)
	require.NoError(t, state.OnEnter())
	assert.Zero(t, state.Timer().Elapsed())

	clock.Advance(time.Minute)
	assert.Equal(t, time.Minute, state.Timer().Elapsed())
	assert.True(t, state.Timer().ElapsedAtLeast(time.Minute))
	assert.True(t, state.Timer().ElapsedLessThan(2*time.Minute))
}

func TestFuncStateCanExitPolling(t *testing.T) {
	t.Parallel()

	done := false

	state := NewFuncState(WithCanExit[string](func(*FuncState[string]) bool { return done }))

	machine := NewMachine("polled")
	require.NoError(t, machine.AddState("a", state))
	require.NoError(t, machine.AddState("b", NewFuncState[string]()))
	require.NoError(t, machine.AddTransition(NewTransition("a", "b", nil)))

	require.NoError(t, machine.Init())

	require.NoError(t, machine.OnLogic(16*time.Millisecond))
	assert.Equal(t, "a", machine.ActiveStateID())
	assert.True(t, machine.HasPendingTransition())

	// The predicate is re-polled on the next tick's re-signal.
	done = true
	require.NoError(t, machine.OnLogic(16*time.Millisecond))
	assert.Equal(t, "b", machine.ActiveStateID())
}

func TestFuncStateActionRegistry(t *testing.T) {
	t.Parallel()

	calls := 0

	state := NewFuncState[string]().
		AddAction("ping", func() error {
			calls++

			return nil
		})
	AddActionWithArg(state.Actions(), "set", func(int) error {
		calls++

		return nil
	})

	require.NoError(t, state.OnAction("ping"))
	require.NoError(t, state.OnActionWithData("set", 3))
	assert.Equal(t, 2, calls)

	// Unregistered triggers stay a no-op even with a registry allocated.
	require.NoError(t, state.OnAction("unknown"))
}

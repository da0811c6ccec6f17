package statemachine_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amp-labs/hfsm/statemachine"
	smtest "github.com/amp-labs/hfsm/statemachine/testing"
)

func TestBuilderBuildsWorkingMachine(t *testing.T) {
	t.Parallel()

	machine, err := statemachine.NewBuilder[string, string]("built").
		AddState("a", smtest.NewTrackedState[string]()).
		AddState("b", smtest.NewTrackedState[string]()).
		AddState("idle", smtest.NewTrackedState[string]()).
		AddTransition(statemachine.NewTransition("a", "b", nil)).
		AddAnyTransition(statemachine.NewTransition("", "idle", func() bool { return false })).
		WithStartState("a").
		WithGhostLimit(10).
		Build()
	require.NoError(t, err)

	require.NoError(t, machine.Init())
	smtest.RequireActive(t, machine, "a")

	smtest.Tick(t, machine, 1)
	smtest.RequireActive(t, machine, "b")
}

func TestBuilderAccumulatesErrors(t *testing.T) {
	t.Parallel()

	_, err := statemachine.NewBuilder[string, string]("broken").
		AddState("a", smtest.NewTrackedState[string]()).
		AddState("a", smtest.NewTrackedState[string]()).
		WithGhostLimit(0).
		WithStartState("a").
		Build()
	require.Error(t, err)

	// Every collected registration error surfaces from the one Build call.
	assert.ErrorIs(t, err, statemachine.ErrDuplicateState)
	assert.ErrorIs(t, err, statemachine.ErrInvalidGhostLimit)
}

func TestBuilderValidatesEndpoints(t *testing.T) {
	t.Parallel()

	_, err := statemachine.NewBuilder[string, string]("dangling").
		AddState("a", smtest.NewTrackedState[string]()).
		AddTransition(statemachine.NewTransition("a", "missing", nil)).
		Build()
	require.Error(t, err)
	assert.ErrorIs(t, err, statemachine.ErrTransitionTargetUnknown)
}

func TestBuilderRequiresStates(t *testing.T) {
	t.Parallel()

	_, err := statemachine.NewBuilder[string, string]("empty").Build()
	require.Error(t, err)
	assert.ErrorIs(t, err, statemachine.ErrStartStateRequired)
}

func TestBuilderNestedMachine(t *testing.T) {
	t.Parallel()

	child, err := statemachine.NewBuilder[string, string]("child").
		AddState("c1", smtest.NewTrackedState[string]()).
		WithNeedsExitTime().
		Build()
	require.NoError(t, err)

	parent, err := statemachine.NewBuilder[string, string]("parent").
		AddState("child", child).
		AddState("idle", smtest.NewTrackedState[string]()).
		Build()
	require.NoError(t, err)

	require.NoError(t, parent.Init())
	smtest.RequireActive(t, parent, "child")
	smtest.RequireActive(t, child, "c1")
	assert.True(t, child.NeedsExitTime())
}

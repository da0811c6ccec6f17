package statemachine

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStateErrorWrapping(t *testing.T) {
	t.Parallel()

	err := WrapStateError("open", ErrDuplicateState)
	require.Error(t, err)

	assert.ErrorIs(t, err, ErrDuplicateState)
	assert.Equal(t, "state open: duplicate state id", err.Error())

	var stateErr *StateError
	require.ErrorAs(t, err, &stateErr)
	assert.Equal(t, "open", stateErr.State)
}

func TestTransitionErrorWrapping(t *testing.T) {
	t.Parallel()

	err := WrapTransitionError("closed", "open", ErrTransitionTargetUnknown)
	require.Error(t, err)

	assert.ErrorIs(t, err, ErrTransitionTargetUnknown)
	assert.Equal(t, "transition closed -> open: transition references unknown target state", err.Error())

	var transErr *TransitionError
	require.ErrorAs(t, err, &transErr)
	assert.Equal(t, "closed", transErr.From)
	assert.Equal(t, "open", transErr.To)
}

func TestTransitionErrorWithoutTarget(t *testing.T) {
	t.Parallel()

	err := WrapTransitionError("closed", "", errors.New("boom"))
	assert.Equal(t, "transition from closed: boom", err.Error())
}

func TestWrappingNilIsNil(t *testing.T) {
	t.Parallel()

	require.NoError(t, WrapStateError("open", nil))
	require.NoError(t, WrapTransitionError("closed", "open", nil))
}

func TestStateErrorPropagatesFromLifecycle(t *testing.T) {
	t.Parallel()

	boom := errors.New("enter failed")

	machine := NewMachine("failing")
	require.NoError(t, machine.AddState("a", NewFuncState(
		WithOnEnter[string](func(*FuncState[string]) error { return boom }),
	)))

	err := machine.Init()
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)

	var stateErr *StateError
	require.ErrorAs(t, err, &stateErr)
	assert.Equal(t, "a", stateErr.State)
}

package statemachine

import (
	"errors"
	"fmt"
)

// Predefined error types. All of them signal programmer or configuration
// errors, not recoverable runtime conditions; callers should treat them as
// fatal rather than retry.
var (
	// ErrStateNotFound indicates that a state id is not registered.
	ErrStateNotFound = errors.New("state not found")
	// ErrDuplicateState indicates that a state id was registered twice.
	ErrDuplicateState = errors.New("duplicate state id")
	// ErrStartStateRequired indicates that a machine has no states or no
	// start state.
	ErrStartStateRequired = errors.New("start state is required")
	// ErrTransitionSourceUnknown indicates a transition from an
	// unregistered state.
	ErrTransitionSourceUnknown = errors.New("transition references unknown source state")
	// ErrTransitionTargetUnknown indicates a transition to an
	// unregistered state.
	ErrTransitionTargetUnknown = errors.New("transition references unknown target state")
	// ErrNotInitialized indicates a lifecycle or action call on a machine
	// that has not been entered yet, or has already exited.
	ErrNotInitialized = errors.New("state machine is not active; call Init or OnEnter first")
	// ErrMachineLocked indicates a registration attempt while a lifecycle
	// call on the same machine is in progress.
	ErrMachineLocked = errors.New("state machine modified during a lifecycle call")
	// ErrNoPendingExit indicates an exit grant with no pending exit request.
	ErrNoPendingExit = errors.New("no pending exit request")
	// ErrGhostChainExceeded indicates a cycle of ghost states with no
	// terminating real transition.
	ErrGhostChainExceeded = errors.New("ghost state chain exceeded limit")
	// ErrActionTypeMismatch indicates an action dispatched with an
	// argument type no registered handler for that trigger accepts.
	ErrActionTypeMismatch = errors.New("action handler type mismatch")

	// ErrConfigNameRequired indicates that a configuration name is required.
	ErrConfigNameRequired = errors.New("config name is required")
	// ErrConfigStartStateRequired indicates that a configuration start state is required.
	ErrConfigStartStateRequired = errors.New("config start state is required")
	// ErrConfigStateRequired indicates that at least one state is required.
	ErrConfigStateRequired = errors.New("at least one state is required")
	// ErrStateNameRequired indicates that a state name is required.
	ErrStateNameRequired = errors.New("state name is required")
	// ErrTransitionToRequired indicates that a transition target is required.
	ErrTransitionToRequired = errors.New("transition 'to' state is required")
	// ErrTransitionFromRequired indicates that a transition source is required.
	ErrTransitionFromRequired = errors.New("transition 'from' state is required")
	// ErrAnyTransitionHasFrom indicates that a wildcard transition names a source.
	ErrAnyTransitionHasFrom = errors.New("wildcard transition must not name a 'from' state")
	// ErrInvalidAfterDuration indicates an unparsable transition dwell duration.
	ErrInvalidAfterDuration = errors.New("invalid 'after' duration")
	// ErrInvalidGhostLimit indicates a non-positive ghost limit.
	ErrInvalidGhostLimit = errors.New("ghost limit must be positive")
	// ErrConditionNotRegistered indicates a config condition with no
	// registered implementation.
	ErrConditionNotRegistered = errors.New("condition not registered")
)

// StateError wraps an error with state context.
type StateError struct {
	State string
	Err   error
}

func (e *StateError) Error() string {
	return fmt.Sprintf("state %s: %v", e.State, e.Err)
}

func (e *StateError) Unwrap() error {
	return e.Err
}

// TransitionError wraps an error with transition context.
type TransitionError struct {
	From string
	To   string
	Err  error
}

func (e *TransitionError) Error() string {
	if e.To == "" {
		return fmt.Sprintf("transition from %s: %v", e.From, e.Err)
	}

	return fmt.Sprintf("transition %s -> %s: %v", e.From, e.To, e.Err)
}

func (e *TransitionError) Unwrap() error {
	return e.Err
}

// WrapStateError wraps an error with state context.
func WrapStateError(state string, err error) error {
	if err == nil {
		return nil
	}

	return &StateError{
		State: state,
		Err:   err,
	}
}

// WrapTransitionError wraps an error with transition context.
func WrapTransitionError(from, to string, err error) error {
	if err == nil {
		return nil
	}

	return &TransitionError{
		From: from,
		To:   to,
		Err:  err,
	}
}

// label renders a generic identifier for error messages and observability
// labels.
func label(id any) string {
	return fmt.Sprint(id)
}

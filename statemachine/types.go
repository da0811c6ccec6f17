package statemachine

import "time"

// State is the base unit of behavior. It responds to the built-in
// lifecycle events and to user-defined action dispatch, and declares its
// exit and ghost semantics. A state is owned by exactly one machine.
type State[TEvent comparable] interface {
	// OnEnter is called exactly once each time the state becomes active.
	OnEnter() error

	// OnLogic is called once per tick while the state is active.
	OnLogic(delta time.Duration) error

	// OnExit is called exactly once each time the state is deactivated.
	OnExit() error

	// OnAction runs the zero-argument handlers registered for trigger.
	// An unregistered trigger is a no-op.
	OnAction(trigger TEvent) error

	// OnActionWithData runs the handlers registered for trigger that
	// expect an argument of data's type.
	OnActionWithData(trigger TEvent, data any) error

	// NeedsExitTime reports whether the state must grant an exit request
	// before a transition away from it may complete.
	NeedsExitTime() bool

	// IsGhostState reports whether the state is a pass-through node whose
	// outgoing transitions are re-evaluated immediately upon entry.
	IsGhostState() bool
}

// Transition describes a directed edge between two states of one machine.
type Transition[TStateID comparable] interface {
	From() TStateID
	To() TStateID

	// ShouldTransition is evaluated once per logic tick while the source
	// state is active. The first transition reporting true fires.
	ShouldTransition() bool

	// ForceInstantly bypasses the active state's exit-time gating.
	ForceInstantly() bool
}

// ExitGranter is the view of a machine that a state uses to grant a
// pending exit request.
type ExitGranter interface {
	StateCanExit() error
}

// ExitRequester is implemented by states that negotiate exit time. The
// owning machine calls OnExitRequest when a transition away from the state
// is pending; the state grants by calling StateCanExit on its parent,
// either synchronously from OnExitRequest or later from its own logic.
type ExitRequester interface {
	OnExitRequest() error
}

// ParentAware is implemented by states that keep a reference to their
// owning machine. The machine attaches itself when the state is added.
type ParentAware interface {
	SetParent(parent ExitGranter)
}

// EnterListener is implemented by transitions that want to know when their
// source state becomes active. Timer-gated transitions reset here.
type EnterListener interface {
	OnSourceEntered()
}

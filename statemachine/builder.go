package statemachine

import "errors"

// Builder provides a fluent API for constructing state machines. Every
// registration error is accumulated and reported together at Build time,
// so call sites can chain without per-call error handling.
type Builder[TStateID comparable, TEvent comparable] struct {
	machine *StateMachine[TStateID, TEvent]
	errs    []error
}

// NewBuilder creates a builder for a machine with the given name.
func NewBuilder[TStateID comparable, TEvent comparable](name string) *Builder[TStateID, TEvent] {
	return &Builder[TStateID, TEvent]{
		machine: New[TStateID, TEvent](name),
	}
}

// WithStartState sets the start state.
func (b *Builder[TStateID, TEvent]) WithStartState(id TStateID) *Builder[TStateID, TEvent] {
	b.collect(b.machine.SetStartState(id))

	return b
}

// WithLogger sets the machine's logger.
func (b *Builder[TStateID, TEvent]) WithLogger(logger Logger) *Builder[TStateID, TEvent] {
	b.machine.SetLogger(logger)

	return b
}

// WithGhostLimit bounds consecutive ghost traversals per tick.
func (b *Builder[TStateID, TEvent]) WithGhostLimit(limit int) *Builder[TStateID, TEvent] {
	b.collect(b.machine.SetGhostLimit(limit))

	return b
}

// WithNeedsExitTime marks the built machine as requiring an exit grant
// when nested in a parent machine.
func (b *Builder[TStateID, TEvent]) WithNeedsExitTime() *Builder[TStateID, TEvent] {
	b.machine.SetNeedsExitTime(true)

	return b
}

// AddState registers a state.
func (b *Builder[TStateID, TEvent]) AddState(id TStateID, state State[TEvent]) *Builder[TStateID, TEvent] {
	b.collect(b.machine.AddState(id, state))

	return b
}

// AddTransition registers a transition.
func (b *Builder[TStateID, TEvent]) AddTransition(t Transition[TStateID]) *Builder[TStateID, TEvent] {
	b.collect(b.machine.AddTransition(t))

	return b
}

// AddAnyTransition registers a wildcard transition.
func (b *Builder[TStateID, TEvent]) AddAnyTransition(t Transition[TStateID]) *Builder[TStateID, TEvent] {
	b.collect(b.machine.AddAnyTransition(t))

	return b
}

// Build validates the transition graph and returns the machine. The
// machine is not yet active; the host calls Init (or a parent machine
// enters it). All accumulated configuration errors are returned joined.
func (b *Builder[TStateID, TEvent]) Build() (*StateMachine[TStateID, TEvent], error) {
	if len(b.errs) > 0 {
		return nil, errors.Join(b.errs...)
	}

	err := b.machine.Validate()
	if err != nil {
		return nil, err
	}

	return b.machine, nil
}

func (b *Builder[TStateID, TEvent]) collect(err error) {
	if err != nil {
		b.errs = append(b.errs, err)
	}
}

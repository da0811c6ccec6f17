package statemachine

import (
	"time"

	"github.com/amp-labs/hfsm/timer"
)

// HybridStateMachine is a StateMachine that behaves like a plain state
// from the outside: caller-supplied hooks bracket the base lifecycle, the
// hybrid owns a Timer reset on every activation, and it runs its own
// action handlers before delegating to the active child. Hooks never
// interleave with base behavior; they strictly surround it.
type HybridStateMachine[TStateID comparable, TEvent comparable] struct {
	*StateMachine[TStateID, TEvent]

	beforeOnEnter func(h *HybridStateMachine[TStateID, TEvent]) error
	afterOnEnter  func(h *HybridStateMachine[TStateID, TEvent]) error
	beforeOnLogic func(h *HybridStateMachine[TStateID, TEvent], delta time.Duration) error
	afterOnLogic  func(h *HybridStateMachine[TStateID, TEvent], delta time.Duration) error
	beforeOnExit  func(h *HybridStateMachine[TStateID, TEvent]) error
	afterOnExit   func(h *HybridStateMachine[TStateID, TEvent]) error

	clock   timer.Clock
	timer   *timer.Timer
	actions *ActionStorage[TEvent]
}

// HybridOption configures a HybridStateMachine. Absent hooks are no-ops.
type HybridOption[TStateID comparable, TEvent comparable] func(*HybridStateMachine[TStateID, TEvent])

// WithBeforeOnEnter sets the hook run before the base enter logic.
func WithBeforeOnEnter[TStateID comparable, TEvent comparable](
	fn func(h *HybridStateMachine[TStateID, TEvent]) error,
) HybridOption[TStateID, TEvent] {
	return func(h *HybridStateMachine[TStateID, TEvent]) { h.beforeOnEnter = fn }
}

// WithAfterOnEnter sets the hook run after the base enter logic and the
// timer reset.
func WithAfterOnEnter[TStateID comparable, TEvent comparable](
	fn func(h *HybridStateMachine[TStateID, TEvent]) error,
) HybridOption[TStateID, TEvent] {
	return func(h *HybridStateMachine[TStateID, TEvent]) { h.afterOnEnter = fn }
}

// WithBeforeOnLogic sets the hook run before the base tick.
func WithBeforeOnLogic[TStateID comparable, TEvent comparable](
	fn func(h *HybridStateMachine[TStateID, TEvent], delta time.Duration) error,
) HybridOption[TStateID, TEvent] {
	return func(h *HybridStateMachine[TStateID, TEvent]) { h.beforeOnLogic = fn }
}

// WithAfterOnLogic sets the hook run after the base tick.
func WithAfterOnLogic[TStateID comparable, TEvent comparable](
	fn func(h *HybridStateMachine[TStateID, TEvent], delta time.Duration) error,
) HybridOption[TStateID, TEvent] {
	return func(h *HybridStateMachine[TStateID, TEvent]) { h.afterOnLogic = fn }
}

// WithBeforeOnExit sets the hook run before the base exit logic.
func WithBeforeOnExit[TStateID comparable, TEvent comparable](
	fn func(h *HybridStateMachine[TStateID, TEvent]) error,
) HybridOption[TStateID, TEvent] {
	return func(h *HybridStateMachine[TStateID, TEvent]) { h.beforeOnExit = fn }
}

// WithAfterOnExit sets the hook run after the base exit logic.
func WithAfterOnExit[TStateID comparable, TEvent comparable](
	fn func(h *HybridStateMachine[TStateID, TEvent]) error,
) HybridOption[TStateID, TEvent] {
	return func(h *HybridStateMachine[TStateID, TEvent]) { h.afterOnExit = fn }
}

// WithHybridClock sets the clock backing the hybrid's timer. Defaults to
// the system clock.
func WithHybridClock[TStateID comparable, TEvent comparable](clock timer.Clock) HybridOption[TStateID, TEvent] {
	return func(h *HybridStateMachine[TStateID, TEvent]) { h.clock = clock }
}

// NewHybrid creates a hybrid state machine.
func NewHybrid[TStateID comparable, TEvent comparable](
	name string, opts ...HybridOption[TStateID, TEvent],
) *HybridStateMachine[TStateID, TEvent] {
	h := &HybridStateMachine[TStateID, TEvent]{
		StateMachine: New[TStateID, TEvent](name),
	}

	for _, opt := range opts {
		opt(h)
	}

	h.timer = timer.New(h.clock)

	return h
}

// HybridMachine is the common string-identifier arity.
type HybridMachine = HybridStateMachine[string, string]

// NewHybridMachine creates a string-identifier hybrid machine.
func NewHybridMachine(name string, opts ...HybridOption[string, string]) *HybridMachine {
	return NewHybrid[string, string](name, opts...)
}

// Timer returns the hybrid's own timer. It is reset on every OnEnter, so
// it always reflects time since the current activation.
func (h *HybridStateMachine[TStateID, TEvent]) Timer() *timer.Timer {
	return h.timer
}

// Actions returns the hybrid's own action registry, allocating it on first
// use. Typed handlers are registered with AddActionWithArg against it.
func (h *HybridStateMachine[TStateID, TEvent]) Actions() *ActionStorage[TEvent] {
	if h.actions == nil {
		h.actions = NewActionStorage[TEvent]()
	}

	return h.actions
}

// AddAction registers a zero-argument handler on this hierarchy level and
// returns the hybrid for chained configuration.
func (h *HybridStateMachine[TStateID, TEvent]) AddAction(
	trigger TEvent, handler func() error,
) *HybridStateMachine[TStateID, TEvent] {
	h.Actions().AddAction(trigger, handler)

	return h
}

// Init validates the graph and activates the hybrid, hooks included.
func (h *HybridStateMachine[TStateID, TEvent]) Init() error {
	return h.OnEnter()
}

func (h *HybridStateMachine[TStateID, TEvent]) OnEnter() error {
	if h.beforeOnEnter != nil {
		err := h.beforeOnEnter(h)
		if err != nil {
			return err
		}
	}

	err := h.StateMachine.OnEnter()
	if err != nil {
		return err
	}

	h.timer.Reset()

	if h.afterOnEnter != nil {
		return h.afterOnEnter(h)
	}

	return nil
}

func (h *HybridStateMachine[TStateID, TEvent]) OnLogic(delta time.Duration) error {
	if h.beforeOnLogic != nil {
		err := h.beforeOnLogic(h, delta)
		if err != nil {
			return err
		}
	}

	err := h.StateMachine.OnLogic(delta)
	if err != nil {
		return err
	}

	if h.afterOnLogic != nil {
		return h.afterOnLogic(h, delta)
	}

	return nil
}

func (h *HybridStateMachine[TStateID, TEvent]) OnExit() error {
	if h.beforeOnExit != nil {
		err := h.beforeOnExit(h)
		if err != nil {
			return err
		}
	}

	err := h.StateMachine.OnExit()
	if err != nil {
		return err
	}

	if h.afterOnExit != nil {
		return h.afterOnExit(h)
	}

	return nil
}

// OnAction runs this level's own handlers for trigger first, then
// delegates to the active child. An ancestor can pre-process an action,
// never suppress it.
func (h *HybridStateMachine[TStateID, TEvent]) OnAction(trigger TEvent) error {
	if h.actions != nil {
		err := h.actions.RunAction(trigger)
		if err != nil {
			return err
		}
	}

	return h.StateMachine.OnAction(trigger)
}

// OnActionWithData runs this level's own typed handlers first, then
// delegates to the active child.
func (h *HybridStateMachine[TStateID, TEvent]) OnActionWithData(trigger TEvent, data any) error {
	if h.actions != nil {
		err := h.actions.RunActionWithData(trigger, data)
		if err != nil {
			return err
		}
	}

	return h.StateMachine.OnActionWithData(trigger, data)
}

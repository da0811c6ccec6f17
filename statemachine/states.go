package statemachine

import (
	"time"

	"github.com/amp-labs/hfsm/timer"
)

// StateBase is an embeddable default implementation of State. Lifecycle
// calls do nothing and actions are ignored; concrete states override what
// they need.
type StateBase[TEvent comparable] struct {
	needsExitTime bool
	ghost         bool
}

// NewStateBase creates a base with the given exit and ghost flags.
func NewStateBase[TEvent comparable](needsExitTime, ghost bool) StateBase[TEvent] {
	return StateBase[TEvent]{needsExitTime: needsExitTime, ghost: ghost}
}

func (StateBase[TEvent]) OnEnter() error { return nil }

func (StateBase[TEvent]) OnLogic(time.Duration) error { return nil }

func (StateBase[TEvent]) OnExit() error { return nil }

func (StateBase[TEvent]) OnAction(TEvent) error { return nil }

func (StateBase[TEvent]) OnActionWithData(TEvent, any) error { return nil }

func (s StateBase[TEvent]) NeedsExitTime() bool { return s.needsExitTime }

func (s StateBase[TEvent]) IsGhostState() bool { return s.ghost }

// FuncState is a State assembled from optional callbacks. Absent callbacks
// are no-ops. The state owns a Timer that is reset on every OnEnter and a
// lazily allocated action registry.
type FuncState[TEvent comparable] struct {
	enter   func(s *FuncState[TEvent]) error
	logic   func(s *FuncState[TEvent], delta time.Duration) error
	exit    func(s *FuncState[TEvent]) error
	canExit func(s *FuncState[TEvent]) bool

	needsExitTime bool
	ghost         bool

	clock   timer.Clock
	timer   *timer.Timer
	actions *ActionStorage[TEvent]
	parent  ExitGranter
}

// FuncStateOption configures a FuncState.
type FuncStateOption[TEvent comparable] func(*FuncState[TEvent])

// WithOnEnter sets the enter callback.
func WithOnEnter[TEvent comparable](fn func(s *FuncState[TEvent]) error) FuncStateOption[TEvent] {
	return func(s *FuncState[TEvent]) { s.enter = fn }
}

// WithOnLogic sets the per-tick logic callback.
func WithOnLogic[TEvent comparable](fn func(s *FuncState[TEvent], delta time.Duration) error) FuncStateOption[TEvent] {
	return func(s *FuncState[TEvent]) { s.logic = fn }
}

// WithOnExit sets the exit callback.
func WithOnExit[TEvent comparable](fn func(s *FuncState[TEvent]) error) FuncStateOption[TEvent] {
	return func(s *FuncState[TEvent]) { s.exit = fn }
}

// WithCanExit sets the exit-negotiation predicate and implies that the
// state needs exit time. The predicate is polled on every exit request; a
// true result grants the pending exit.
func WithCanExit[TEvent comparable](fn func(s *FuncState[TEvent]) bool) FuncStateOption[TEvent] {
	return func(s *FuncState[TEvent]) {
		s.canExit = fn
		s.needsExitTime = true
	}
}

// WithNeedsExitTime marks the state as requiring an explicit exit grant.
// Without a canExit predicate, the state must grant manually by calling
// StateCanExit on its parent.
func WithNeedsExitTime[TEvent comparable]() FuncStateOption[TEvent] {
	return func(s *FuncState[TEvent]) { s.needsExitTime = true }
}

// WithGhost marks the state as a pass-through decision node.
func WithGhost[TEvent comparable]() FuncStateOption[TEvent] {
	return func(s *FuncState[TEvent]) { s.ghost = true }
}

// WithStateClock sets the clock backing the state's timer. Defaults to the
// system clock.
func WithStateClock[TEvent comparable](clock timer.Clock) FuncStateOption[TEvent] {
	return func(s *FuncState[TEvent]) { s.clock = clock }
}

// NewFuncState creates a callback-backed state.
func NewFuncState[TEvent comparable](opts ...FuncStateOption[TEvent]) *FuncState[TEvent] {
	s := &FuncState[TEvent]{}

	for _, opt := range opts {
		opt(s)
	}

	s.timer = timer.New(s.clock)

	return s
}

// Timer returns the state's timer. It is reset on every OnEnter, so it
// always reflects time since the current activation.
func (s *FuncState[TEvent]) Timer() *timer.Timer {
	return s.timer
}

// Parent returns the owning machine's exit-granting handle. Nil until the
// state has been added to a machine.
func (s *FuncState[TEvent]) Parent() ExitGranter {
	return s.parent
}

// Actions returns the state's action registry, allocating it on first use.
func (s *FuncState[TEvent]) Actions() *ActionStorage[TEvent] {
	if s.actions == nil {
		s.actions = NewActionStorage[TEvent]()
	}

	return s.actions
}

// AddAction registers a zero-argument handler for trigger and returns the
// state for chained configuration. Typed handlers are registered with
// AddActionWithArg against Actions().
func (s *FuncState[TEvent]) AddAction(trigger TEvent, handler func() error) *FuncState[TEvent] {
	s.Actions().AddAction(trigger, handler)

	return s
}

func (s *FuncState[TEvent]) SetParent(parent ExitGranter) {
	s.parent = parent
}

func (s *FuncState[TEvent]) OnEnter() error {
	s.timer.Reset()

	if s.enter != nil {
		return s.enter(s)
	}

	return nil
}

func (s *FuncState[TEvent]) OnLogic(delta time.Duration) error {
	if s.logic != nil {
		return s.logic(s, delta)
	}

	return nil
}

func (s *FuncState[TEvent]) OnExit() error {
	if s.exit != nil {
		return s.exit(s)
	}

	return nil
}

// OnExitRequest polls the canExit predicate and grants the pending exit
// when it reports true. Without a predicate the request stays pending
// until the state grants manually.
func (s *FuncState[TEvent]) OnExitRequest() error {
	if s.canExit != nil && s.canExit(s) && s.parent != nil {
		return s.parent.StateCanExit()
	}

	return nil
}

func (s *FuncState[TEvent]) OnAction(trigger TEvent) error {
	if s.actions == nil {
		return nil
	}

	return s.actions.RunAction(trigger)
}

func (s *FuncState[TEvent]) OnActionWithData(trigger TEvent, data any) error {
	if s.actions == nil {
		return nil
	}

	return s.actions.RunActionWithData(trigger, data)
}

func (s *FuncState[TEvent]) NeedsExitTime() bool { return s.needsExitTime }

func (s *FuncState[TEvent]) IsGhostState() bool { return s.ghost }

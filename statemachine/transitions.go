package statemachine

import (
	"time"

	"github.com/amp-labs/hfsm/timer"
)

// transitionBase carries the endpoints and the instant flag shared by the
// concrete transition types.
type transitionBase[TStateID comparable] struct {
	from           TStateID
	to             TStateID
	forceInstantly bool
}

func (t *transitionBase[TStateID]) From() TStateID {
	return t.from
}

func (t *transitionBase[TStateID]) To() TStateID {
	return t.to
}

func (t *transitionBase[TStateID]) ForceInstantly() bool {
	return t.forceInstantly
}

// CondTransition fires when its predicate reports true. The predicate is
// an opaque boolean signal supplied by the host; a nil predicate always
// fires.
type CondTransition[TStateID comparable] struct {
	transitionBase[TStateID]

	condition func() bool
}

// NewTransition creates a predicate transition from one state to another.
func NewTransition[TStateID comparable](from, to TStateID, condition func() bool) *CondTransition[TStateID] {
	return &CondTransition[TStateID]{
		transitionBase: transitionBase[TStateID]{from: from, to: to},
		condition:      condition,
	}
}

// Forced marks the transition as bypassing exit-time gating and returns it
// for chained configuration.
func (t *CondTransition[TStateID]) Forced() *CondTransition[TStateID] {
	t.forceInstantly = true

	return t
}

func (t *CondTransition[TStateID]) ShouldTransition() bool {
	return t.condition == nil || t.condition()
}

// TransitionAfter fires once its source state has been active for at least
// the configured duration, optionally gated by an extra predicate. The
// dwell timer resets every time the source state is entered.
type TransitionAfter[TStateID comparable] struct {
	transitionBase[TStateID]

	after     time.Duration
	condition func() bool
	timer     *timer.Timer
}

// NewTransitionAfter creates a dwell-gated transition. A nil condition
// means the dwell time alone decides.
func NewTransitionAfter[TStateID comparable](
	from, to TStateID, after time.Duration, condition func() bool,
) *TransitionAfter[TStateID] {
	return &TransitionAfter[TStateID]{
		transitionBase: transitionBase[TStateID]{from: from, to: to},
		after:          after,
		condition:      condition,
		timer:          timer.New(nil),
	}
}

// WithClock replaces the clock backing the dwell timer and returns the
// transition for chained configuration.
func (t *TransitionAfter[TStateID]) WithClock(clock timer.Clock) *TransitionAfter[TStateID] {
	t.timer = timer.New(clock)

	return t
}

// Forced marks the transition as bypassing exit-time gating and returns it
// for chained configuration.
func (t *TransitionAfter[TStateID]) Forced() *TransitionAfter[TStateID] {
	t.forceInstantly = true

	return t
}

func (t *TransitionAfter[TStateID]) OnSourceEntered() {
	t.timer.Reset()
}

func (t *TransitionAfter[TStateID]) ShouldTransition() bool {
	if !t.timer.ElapsedAtLeast(t.after) {
		return false
	}

	return t.condition == nil || t.condition()
}

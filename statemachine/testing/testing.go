// Package testing provides fixtures and assertions for exercising state
// machines in tests.
package testing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/amp-labs/hfsm/statemachine"
)

// TickDelta is the fixed per-tick delta used by the Tick helper.
const TickDelta = 16 * time.Millisecond

// TrackedState records every lifecycle call for assertions.
type TrackedState[TEvent comparable] struct {
	needsExitTime bool
	ghost         bool
	canExit       bool
	parent        statemachine.ExitGranter

	Enters       int
	Logics       int
	Exits        int
	ExitRequests int
	Actions      []TEvent
	Sequence     []string
}

// NewTrackedState creates a tracked state with default flags.
func NewTrackedState[TEvent comparable]() *TrackedState[TEvent] {
	return &TrackedState[TEvent]{}
}

// WithNeedsExitTime marks the state as requiring an exit grant and returns
// it for chained configuration.
func (s *TrackedState[TEvent]) WithNeedsExitTime() *TrackedState[TEvent] {
	s.needsExitTime = true

	return s
}

// WithGhost marks the state as a pass-through node and returns it for
// chained configuration.
func (s *TrackedState[TEvent]) WithGhost() *TrackedState[TEvent] {
	s.ghost = true

	return s
}

// AllowExit makes the state grant the next exit request it receives.
// Pending requests are re-signaled every tick, so the grant lands on the
// following tick.
func (s *TrackedState[TEvent]) AllowExit() {
	s.canExit = true
}

// GrantExit grants a pending exit immediately, completing the deferred
// switch before it returns.
func (s *TrackedState[TEvent]) GrantExit() error {
	return s.parent.StateCanExit()
}

func (s *TrackedState[TEvent]) SetParent(parent statemachine.ExitGranter) {
	s.parent = parent
}

func (s *TrackedState[TEvent]) OnEnter() error {
	s.Enters++
	s.Sequence = append(s.Sequence, "enter")

	return nil
}

func (s *TrackedState[TEvent]) OnLogic(time.Duration) error {
	s.Logics++
	s.Sequence = append(s.Sequence, "logic")

	return nil
}

func (s *TrackedState[TEvent]) OnExit() error {
	s.Exits++
	s.Sequence = append(s.Sequence, "exit")

	return nil
}

func (s *TrackedState[TEvent]) OnExitRequest() error {
	s.ExitRequests++
	s.Sequence = append(s.Sequence, "exitRequest")

	if s.canExit {
		return s.parent.StateCanExit()
	}

	return nil
}

func (s *TrackedState[TEvent]) OnAction(trigger TEvent) error {
	s.Actions = append(s.Actions, trigger)

	return nil
}

func (s *TrackedState[TEvent]) OnActionWithData(trigger TEvent, _ any) error {
	s.Actions = append(s.Actions, trigger)

	return nil
}

func (s *TrackedState[TEvent]) NeedsExitTime() bool { return s.needsExitTime }

func (s *TrackedState[TEvent]) IsGhostState() bool { return s.ghost }

// ManualCondition is a transition predicate toggled by the test.
type ManualCondition struct {
	value bool
}

// Set flips the predicate.
func (c *ManualCondition) Set(value bool) {
	c.value = value
}

// Get reads the predicate; pass c.Get to NewTransition.
func (c *ManualCondition) Get() bool {
	return c.value
}

// Tick runs n logic ticks with a fixed delta, failing the test on error.
func Tick[TStateID comparable, TEvent comparable](
	t *testing.T, m *statemachine.StateMachine[TStateID, TEvent], n int,
) {
	t.Helper()

	for i := 0; i < n; i++ {
		require.NoError(t, m.OnLogic(TickDelta))
	}
}

// RequireActive asserts the machine's active state.
func RequireActive[TStateID comparable, TEvent comparable](
	t *testing.T, m *statemachine.StateMachine[TStateID, TEvent], want TStateID,
) {
	t.Helper()

	require.Equal(t, want, m.ActiveStateID())
}

// Package statemachine provides a hierarchical finite-state-machine engine:
// states with an enter/logic/exit lifecycle, predicate transitions with
// instant and negotiated exit semantics, ghost pass-through states, and
// typed action dispatch, composed recursively because a machine is itself
// a state.
package statemachine

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// DefaultGhostLimit bounds consecutive ghost traversals within one tick.
// Exceeding it signals a transition-graph misconfiguration.
const DefaultGhostLimit = 100

// stateNode bundles a registered state with the transitions leaving it.
type stateNode[TStateID comparable, TEvent comparable] struct {
	state       State[TEvent]
	transitions []Transition[TStateID]
}

// pendingTransition records a transition that fired while the active state
// still needed exit time.
type pendingTransition[TStateID comparable] struct {
	to TStateID
}

// StateMachine owns a set of states keyed by identifier and the
// transitions between them, runs the active state's lifecycle once per
// tick, and evaluates transitions. It implements State, so machines nest
// to arbitrary depth; the host drives only the root.
//
// All methods must be called from a single goroutine: execution is
// cooperative and tick-driven, and every lifecycle call runs to completion
// before returning.
type StateMachine[TStateID comparable, TEvent comparable] struct {
	name string
	id   string

	nodes          map[TStateID]*stateNode[TStateID, TEvent]
	transitions    []Transition[TStateID] // parked until the graph is built
	anyTransitions []Transition[TStateID]

	startID  TStateID
	startSet bool

	activeID TStateID
	active   State[TEvent]

	pending       *pendingTransition[TStateID]
	exitRequested bool
	parent        ExitGranter

	needsExitTime bool
	ghost         bool
	ghostLimit    int
	ghostDepth    int // ghost traversals since the current external call

	built  bool
	locked bool

	logger Logger
}

// New creates a state machine. The name is used for logging, metric, and
// span labels only.
func New[TStateID comparable, TEvent comparable](name string) *StateMachine[TStateID, TEvent] {
	if name == "" {
		name = "statemachine"
	}

	return &StateMachine[TStateID, TEvent]{
		name:       name,
		id:         uuid.NewString(),
		nodes:      make(map[TStateID]*stateNode[TStateID, TEvent]),
		ghostLimit: DefaultGhostLimit,
		logger:     NopLogger{},
	}
}

// Machine is the common string-identifier arity.
type Machine = StateMachine[string, string]

// NewMachine creates a string-identifier machine.
func NewMachine(name string) *Machine {
	return New[string, string](name)
}

// Name returns the machine's observability name.
func (m *StateMachine[TStateID, TEvent]) Name() string {
	return m.name
}

// ID returns the machine's unique instance id.
func (m *StateMachine[TStateID, TEvent]) ID() string {
	return m.id
}

// SetLogger sets the logger receiving lifecycle events. A nil logger
// silences the machine.
func (m *StateMachine[TStateID, TEvent]) SetLogger(logger Logger) {
	if logger == nil {
		logger = NopLogger{}
	}

	m.logger = logger
}

// SetGhostLimit bounds consecutive ghost traversals per tick. The limit
// must be positive.
func (m *StateMachine[TStateID, TEvent]) SetGhostLimit(limit int) error {
	if limit <= 0 {
		return ErrInvalidGhostLimit
	}

	m.ghostLimit = limit

	return nil
}

// SetNeedsExitTime controls whether this machine, used as a state of a
// parent machine, requires an explicit exit grant.
func (m *StateMachine[TStateID, TEvent]) SetNeedsExitTime(v bool) {
	m.needsExitTime = v
}

// SetIsGhost controls whether this machine, used as a state of a parent
// machine, behaves as a pass-through node.
func (m *StateMachine[TStateID, TEvent]) SetIsGhost(v bool) {
	m.ghost = v
}

// SetParent attaches the owning machine. Called by the parent when this
// machine is added as one of its states.
func (m *StateMachine[TStateID, TEvent]) SetParent(parent ExitGranter) {
	m.parent = parent
}

// AddState registers a state under the given identifier. The first state
// added becomes the default start state. Duplicate identifiers are a
// configuration error.
func (m *StateMachine[TStateID, TEvent]) AddState(id TStateID, state State[TEvent]) error {
	if m.locked {
		return ErrMachineLocked
	}

	if _, exists := m.nodes[id]; exists {
		return WrapStateError(label(id), ErrDuplicateState)
	}

	if aware, ok := state.(ParentAware); ok {
		aware.SetParent(m)
	}

	m.nodes[id] = &stateNode[TStateID, TEvent]{state: state}

	if !m.startSet {
		m.startID = id
		m.startSet = true
	}

	return nil
}

// SetStartState overrides the default start state.
func (m *StateMachine[TStateID, TEvent]) SetStartState(id TStateID) error {
	if m.locked {
		return ErrMachineLocked
	}

	m.startID = id
	m.startSet = true

	return nil
}

// AddTransition registers a transition. Endpoints are checked when the
// graph is built (Validate, Init, or first OnEnter), so states and
// transitions may be registered in any order; after the graph is built the
// check happens immediately.
func (m *StateMachine[TStateID, TEvent]) AddTransition(t Transition[TStateID]) error {
	if m.locked {
		return ErrMachineLocked
	}

	if !m.built {
		m.transitions = append(m.transitions, t)

		return nil
	}

	err := m.checkTransition(t)
	if err != nil {
		return err
	}

	m.nodes[t.From()].transitions = append(m.nodes[t.From()].transitions, t)

	return nil
}

// AddAnyTransition registers a wildcard transition evaluated for every
// active state, after the state's own transitions.
func (m *StateMachine[TStateID, TEvent]) AddAnyTransition(t Transition[TStateID]) error {
	if m.locked {
		return ErrMachineLocked
	}

	if m.built {
		if _, ok := m.nodes[t.To()]; !ok {
			return WrapTransitionError("any", label(t.To()), ErrTransitionTargetUnknown)
		}
	}

	m.anyTransitions = append(m.anyTransitions, t)

	return nil
}

// Validate checks that a start state is set and that every transition
// endpoint references a registered state. Init runs it automatically; a
// builder can run it eagerly.
func (m *StateMachine[TStateID, TEvent]) Validate() error {
	if m.built {
		return nil
	}

	if len(m.nodes) == 0 || !m.startSet {
		return ErrStartStateRequired
	}

	if _, ok := m.nodes[m.startID]; !ok {
		return WrapStateError(label(m.startID), ErrStateNotFound)
	}

	for _, t := range m.transitions {
		err := m.checkTransition(t)
		if err != nil {
			return err
		}

		m.nodes[t.From()].transitions = append(m.nodes[t.From()].transitions, t)
	}

	for _, t := range m.anyTransitions {
		if _, ok := m.nodes[t.To()]; !ok {
			return WrapTransitionError("any", label(t.To()), ErrTransitionTargetUnknown)
		}
	}

	m.transitions = nil
	m.built = true

	return nil
}

func (m *StateMachine[TStateID, TEvent]) checkTransition(t Transition[TStateID]) error {
	if _, ok := m.nodes[t.From()]; !ok {
		return WrapTransitionError(label(t.From()), label(t.To()), ErrTransitionSourceUnknown)
	}

	if _, ok := m.nodes[t.To()]; !ok {
		return WrapTransitionError(label(t.From()), label(t.To()), ErrTransitionTargetUnknown)
	}

	return nil
}

// Init validates the transition graph and enters the start state. The host
// calls it once on the root machine before the first tick; nested machines
// are entered by their parent instead.
func (m *StateMachine[TStateID, TEvent]) Init() error {
	return m.OnEnter()
}

// OnEnter activates the machine: the graph is validated on first use, any
// stale exit bookkeeping is discarded, and the start state is entered.
// Re-entering a nested machine always restarts it at its start state.
func (m *StateMachine[TStateID, TEvent]) OnEnter() error {
	if m.locked {
		return ErrMachineLocked
	}

	err := m.Validate()
	if err != nil {
		return err
	}

	m.pending = nil
	m.exitRequested = false
	m.ghostDepth = 0

	for _, t := range m.anyTransitions {
		if listener, ok := t.(EnterListener); ok {
			listener.OnSourceEntered()
		}
	}

	return m.withLock(func() error {
		err := m.enterState(m.startID)
		if err != nil {
			return err
		}

		return m.chaseGhosts()
	})
}

// OnLogic runs one tick: the active state's logic first, then transition
// evaluation. At most one transition fires per tick, except for ghost
// chaining.
func (m *StateMachine[TStateID, TEvent]) OnLogic(delta time.Duration) error {
	if m.active == nil {
		return ErrNotInitialized
	}

	if m.locked {
		return ErrMachineLocked
	}

	m.ghostDepth = 0

	start := time.Now()
	defer func() {
		tickDuration.WithLabelValues(sanitizeMachine(m.name)).Observe(time.Since(start).Seconds())
	}()

	return m.withLock(func() error {
		err := m.active.OnLogic(delta)
		if err != nil {
			return WrapStateError(label(m.activeID), err)
		}

		// The state may have switched or exited the machine mid-logic;
		// evaluate against whatever is active now.
		if m.active == nil {
			return nil
		}

		if t := m.firingTransition(); t != nil {
			return m.requestTransition(t.To(), t.ForceInstantly())
		}

		if m.pending != nil {
			// Re-signal so polled canExit predicates get re-checked.
			return m.signalExitRequest()
		}

		return nil
	})
}

// OnExit deactivates the machine, propagating the exit to the active
// child. Pending exit bookkeeping is discarded; the next OnEnter restarts
// at the start state.
func (m *StateMachine[TStateID, TEvent]) OnExit() error {
	if m.active == nil {
		return ErrNotInitialized
	}

	return m.withLock(func() error {
		err := m.exitActive()

		m.active = nil
		m.pending = nil
		m.exitRequested = false

		return err
	})
}

// OnExitRequest handles the parent requesting this machine's exit. The
// request is forwarded to the active child when that child needs exit
// time; otherwise it is granted immediately. The machine's own OnExit is
// never run while the child still holds an un-granted request.
func (m *StateMachine[TStateID, TEvent]) OnExitRequest() error {
	if m.active == nil {
		return ErrNotInitialized
	}

	if m.active.NeedsExitTime() {
		m.exitRequested = true

		return m.signalExitRequest()
	}

	m.exitRequested = false

	if m.parent != nil {
		return m.parent.StateCanExit()
	}

	return nil
}

// StateCanExit grants a pending exit request. The active state calls it
// when ready to be switched away from; a nested machine calls it upward
// when its own exit request resolves. The deferred switch completes
// synchronously inside this call.
func (m *StateMachine[TStateID, TEvent]) StateCanExit() error {
	if m.active == nil {
		return ErrNotInitialized
	}

	if m.pending == nil && !m.exitRequested {
		return ErrNoPendingExit
	}

	// A grant arriving mid-call (from OnExitRequest or the active state's
	// logic) continues the current ghost accounting; only a fresh host
	// call starts over.
	if !m.locked {
		m.ghostDepth = 0
	}

	return m.withLock(func() error {
		if m.pending != nil {
			to := m.pending.to
			exitRequestsTotal.WithLabelValues(
				sanitizeMachine(m.name), sanitizeID(label(m.activeID)), outcomeGranted,
			).Inc()

			return m.transitionTo(to, false)
		}

		m.exitRequested = false

		if m.parent != nil {
			return m.parent.StateCanExit()
		}

		return nil
	})
}

// RequestStateChange asks the machine to switch to the given state outside
// the declared transition graph, honoring the same exit-time semantics as
// a declared transition. Active states may call it from their own logic.
func (m *StateMachine[TStateID, TEvent]) RequestStateChange(to TStateID, force bool) error {
	if m.active == nil {
		return ErrNotInitialized
	}

	if !m.locked {
		m.ghostDepth = 0
	}

	return m.requestTransition(to, force)
}

// OnAction forwards a zero-argument action to the active state.
func (m *StateMachine[TStateID, TEvent]) OnAction(trigger TEvent) error {
	if m.active == nil {
		return ErrNotInitialized
	}

	return m.dispatchAction(trigger, func() error {
		return m.active.OnAction(trigger)
	})
}

// OnActionWithData forwards a single-argument action to the active state.
func (m *StateMachine[TStateID, TEvent]) OnActionWithData(trigger TEvent, data any) error {
	if m.active == nil {
		return ErrNotInitialized
	}

	return m.dispatchAction(trigger, func() error {
		return m.active.OnActionWithData(trigger, data)
	})
}

// ActiveStateID returns the identifier of the active state, or the zero
// identifier when the machine is not active.
func (m *StateMachine[TStateID, TEvent]) ActiveStateID() TStateID {
	if m.active == nil {
		var zero TStateID

		return zero
	}

	return m.activeID
}

// ActiveState returns the active state, or nil when the machine is not
// active.
func (m *StateMachine[TStateID, TEvent]) ActiveState() State[TEvent] {
	return m.active
}

// HasPendingTransition reports whether a fired transition is waiting for
// the active state to grant its exit.
func (m *StateMachine[TStateID, TEvent]) HasPendingTransition() bool {
	return m.pending != nil
}

func (m *StateMachine[TStateID, TEvent]) NeedsExitTime() bool { return m.needsExitTime }

func (m *StateMachine[TStateID, TEvent]) IsGhostState() bool { return m.ghost }

// withLock runs fn with the mutation guard held. Re-entrant lifecycle
// calls (a state granting its exit mid-tick) keep the guard.
func (m *StateMachine[TStateID, TEvent]) withLock(fn func() error) error {
	prev := m.locked
	m.locked = true

	err := fn()

	m.locked = prev

	return err
}

// firingTransition returns the first transition of the active state whose
// predicate reports true: the state's own transitions in registration
// order, then the wildcard transitions.
func (m *StateMachine[TStateID, TEvent]) firingTransition() Transition[TStateID] {
	for _, t := range m.nodes[m.activeID].transitions {
		if t.ShouldTransition() {
			return t
		}
	}

	for _, t := range m.anyTransitions {
		if t.ShouldTransition() {
			return t
		}
	}

	return nil
}

// requestTransition either completes the switch immediately or parks it as
// pending and signals the active state that an exit has been requested.
func (m *StateMachine[TStateID, TEvent]) requestTransition(to TStateID, force bool) error {
	if _, ok := m.nodes[to]; !ok {
		return WrapStateError(label(to), ErrStateNotFound)
	}

	if force || !m.active.NeedsExitTime() {
		return m.transitionTo(to, force)
	}

	m.pending = &pendingTransition[TStateID]{to: to}
	m.logger.ExitRequested(m.name, label(m.activeID))
	exitRequestsTotal.WithLabelValues(
		sanitizeMachine(m.name), sanitizeID(label(m.activeID)), outcomeDeferred,
	).Inc()

	return m.signalExitRequest()
}

// signalExitRequest forwards the pending exit request to the active state,
// which may grant it synchronously via StateCanExit.
func (m *StateMachine[TStateID, TEvent]) signalExitRequest() error {
	if requester, ok := m.active.(ExitRequester); ok {
		return requester.OnExitRequest()
	}

	return nil
}

// transitionTo performs a switch and then chases ghost states.
func (m *StateMachine[TStateID, TEvent]) transitionTo(to TStateID, forced bool) error {
	err := m.performSwitch(to, forced)
	if err != nil {
		return err
	}

	return m.chaseGhosts()
}

// performSwitch completes one exit/enter sequence.
func (m *StateMachine[TStateID, TEvent]) performSwitch(to TStateID, forced bool) error {
	from := m.activeID
	m.pending = nil

	_, span := startTransitionSpan(context.Background(), m.name, m.id, label(from), label(to), forced)

	err := m.exitActive()
	if err == nil {
		err = m.enterState(to)
	}

	endSpan(span, err)

	if err != nil {
		return err
	}

	m.logger.TransitionFired(m.name, label(from), label(to), forced)
	transitionsTotal.WithLabelValues(
		sanitizeMachine(m.name),
		sanitizeID(label(from)),
		sanitizeID(label(to)),
		strconv.FormatBool(forced),
	).Inc()

	return nil
}

func (m *StateMachine[TStateID, TEvent]) exitActive() error {
	err := m.active.OnExit()
	m.logger.StateExited(m.name, label(m.activeID), err)

	if err != nil {
		return WrapStateError(label(m.activeID), err)
	}

	return nil
}

func (m *StateMachine[TStateID, TEvent]) enterState(id TStateID) error {
	node := m.nodes[id]
	m.activeID = id
	m.active = node.state

	for _, t := range node.transitions {
		if listener, ok := t.(EnterListener); ok {
			listener.OnSourceEntered()
		}
	}

	m.logger.StateEntered(m.name, label(id))
	stateVisitsTotal.WithLabelValues(sanitizeMachine(m.name), sanitizeID(label(id))).Inc()

	err := node.state.OnEnter()
	if err != nil {
		return WrapStateError(label(id), err)
	}

	return nil
}

// chaseGhosts re-evaluates transitions while the active state is a ghost,
// so no tick is spent dwelling in a decision node. The chain is bounded by
// the ghost limit; a ghost whose transitions all report false stays active
// until the next tick.
func (m *StateMachine[TStateID, TEvent]) chaseGhosts() error {
	hops := 0

	for m.active.IsGhostState() {
		t := m.firingTransition()
		if t == nil {
			break
		}

		// The counter lives on the machine so that a chain continued
		// through a synchronous exit grant (StateCanExit re-entering
		// transitionTo) still counts against the same limit.
		m.ghostDepth++
		if m.ghostDepth > m.ghostLimit {
			return WrapStateError(label(m.activeID),
				fmt.Errorf("%w (limit %d)", ErrGhostChainExceeded, m.ghostLimit))
		}

		hops++

		if !t.ForceInstantly() && m.active.NeedsExitTime() {
			m.pending = &pendingTransition[TStateID]{to: t.To()}
			m.logger.ExitRequested(m.name, label(m.activeID))
			exitRequestsTotal.WithLabelValues(
				sanitizeMachine(m.name), sanitizeID(label(m.activeID)), outcomeDeferred,
			).Inc()

			return m.signalExitRequest()
		}

		err := m.performSwitch(t.To(), t.ForceInstantly())
		if err != nil {
			return err
		}
	}

	if hops > 0 {
		ghostChainDepth.Observe(float64(hops))
	}

	return nil
}

// dispatchAction wraps action forwarding with logging, metrics, and a span.
func (m *StateMachine[TStateID, TEvent]) dispatchAction(trigger TEvent, forward func() error) error {
	_, span := startActionSpan(context.Background(), m.name, m.id, label(trigger))

	err := forward()

	endSpan(span, err)
	m.logger.ActionDispatched(m.name, label(trigger), err)

	outcome := outcomeSuccess
	if err != nil {
		outcome = outcomeError
	}

	actionDispatchTotal.WithLabelValues(
		sanitizeMachine(m.name), sanitizeID(label(trigger)), outcome,
	).Inc()

	return err
}

package statemachine

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metric definitions with appropriate labels.
var (
	// transitionsTotal tracks completed switches by machine, endpoints,
	// and whether the switch was forced through exit-time gating.
	transitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hfsm_transitions_total",
		Help: "Total number of completed state transitions by machine, from_state, to_state, and forced flag",
	}, []string{"machine", "from_state", "to_state", "forced"})

	// stateVisitsTotal tracks state activations.
	stateVisitsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hfsm_state_visits_total",
		Help: "Total number of state activations by machine and state",
	}, []string{"machine", "state"})

	// exitRequestsTotal tracks exit-time negotiation by outcome
	// (deferred when the request is parked, granted when it resolves).
	exitRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hfsm_exit_requests_total",
		Help: "Total number of exit requests by machine, state, and outcome (deferred or granted)",
	}, []string{"machine", "state", "outcome"})

	// actionDispatchTotal tracks user-defined action dispatch.
	actionDispatchTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hfsm_action_dispatch_total",
		Help: "Total number of action dispatches by machine, trigger, and outcome (success or error)",
	}, []string{"machine", "trigger", "outcome"})

	// ghostChainDepth tracks how many consecutive ghost states were
	// traversed inside a single tick.
	ghostChainDepth = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "hfsm_ghost_chain_depth",
		Help:    "Number of consecutive ghost states traversed in one tick",
		Buckets: []float64{1, 2, 3, 5, 8, 13, 21, 34, 55, 89},
	})

	// tickDuration tracks the cost of one logic tick on a root machine.
	tickDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "hfsm_tick_duration_seconds",
		Help:    "Duration of one logic tick by machine",
		Buckets: []float64{0.00001, 0.0001, 0.001, 0.01, 0.1, 1},
	}, []string{"machine"})
)

// Metric outcome constants.
const (
	outcomeSuccess  = "success"
	outcomeError    = "error"
	outcomeDeferred = "deferred"
	outcomeGranted  = "granted"
)

// Helper functions for label sanitization.
func sanitizeMachine(name string) string {
	if name == "" {
		return "unknown"
	}

	return name
}

func sanitizeID(id string) string {
	if id == "" {
		return "none"
	}

	return id
}

package statemachine

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestTransitionMetrics verifies that completed switches are recorded.
// Note: Cannot use t.Parallel() because this test modifies global Prometheus metrics.
//
//nolint:paralleltest // Test modifies global Prometheus metric state
func TestTransitionMetrics(t *testing.T) {
	transitionsTotal.Reset()
	stateVisitsTotal.Reset()

	machine := NewMachine("metered")
	require.NoError(t, machine.AddState("a", NewFuncState[string]()))
	require.NoError(t, machine.AddState("b", NewFuncState[string]()))
	require.NoError(t, machine.AddTransition(NewTransition("a", "b", nil)))

	require.NoError(t, machine.Init())
	require.NoError(t, machine.OnLogic(16*time.Millisecond))

	value := testutil.ToFloat64(transitionsTotal.WithLabelValues("metered", "a", "b", "false"))
	assert.InDelta(t, 1, value, 0)

	visits := testutil.CollectAndCount(stateVisitsTotal)
	assert.Equal(t, 2, visits)
}

// TestExitRequestMetrics verifies deferred and granted outcomes.
//
//nolint:paralleltest // Test modifies global Prometheus metric state
func TestExitRequestMetrics(t *testing.T) {
	exitRequestsTotal.Reset()

	machine := NewMachine("negotiated")
	require.NoError(t, machine.AddState("a", NewFuncState(WithNeedsExitTime[string]())))
	require.NoError(t, machine.AddState("b", NewFuncState[string]()))
	require.NoError(t, machine.AddTransition(NewTransition("a", "b", nil)))

	require.NoError(t, machine.Init())
	require.NoError(t, machine.OnLogic(16*time.Millisecond))

	deferred := testutil.ToFloat64(exitRequestsTotal.WithLabelValues("negotiated", "a", outcomeDeferred))
	assert.InDelta(t, 1, deferred, 0)

	require.NoError(t, machine.StateCanExit())

	granted := testutil.ToFloat64(exitRequestsTotal.WithLabelValues("negotiated", "a", outcomeGranted))
	assert.InDelta(t, 1, granted, 0)
}

func TestSanitization(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		expected string
		fn       func(string) string
	}{
		{"empty machine", "", "unknown", sanitizeMachine},
		{"named machine", "door", "door", sanitizeMachine},
		{"empty id", "", "none", sanitizeID},
		{"named id", "open", "open", sanitizeID},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.expected, tt.fn(tt.input))
		})
	}
}

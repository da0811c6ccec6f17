package statemachine

import (
	"fmt"
	"time"

	"github.com/amp-labs/hfsm/timer"
)

// Registry binds the names used in declarative configs to Go
// implementations. Conditions are resolved by name when transitions are
// built; states with no registered implementation become plain FuncStates
// carrying the configured flags.
type Registry struct {
	conditions map[string]func() bool
	states     map[string]State[string]
	clock      timer.Clock
}

// NewRegistry creates an empty binding registry.
func NewRegistry() *Registry {
	return &Registry{
		conditions: make(map[string]func() bool),
		states:     make(map[string]State[string]),
	}
}

// RegisterCondition binds a predicate name and returns the registry for
// chained configuration.
func (r *Registry) RegisterCondition(name string, condition func() bool) *Registry {
	r.conditions[name] = condition

	return r
}

// RegisterState binds a state implementation to a config state name and
// returns the registry for chained configuration.
func (r *Registry) RegisterState(name string, state State[string]) *Registry {
	r.states[name] = state

	return r
}

// WithClock sets the clock backing dwell-gated transitions built from the
// config. Defaults to the system clock.
func (r *Registry) WithClock(clock timer.Clock) *Registry {
	r.clock = clock

	return r
}

// BuildMachine constructs a string-identifier machine from a declarative
// config. The config is validated first; unknown condition names are a
// configuration error. The returned machine is not yet initialized.
func BuildMachine(config *Config, registry *Registry) (*Machine, error) {
	err := config.Validate()
	if err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	if registry == nil {
		registry = NewRegistry()
	}

	machine := NewMachine(config.Name)

	if config.GhostLimit > 0 {
		err = machine.SetGhostLimit(config.GhostLimit)
		if err != nil {
			return nil, err
		}
	}

	for _, stateConfig := range config.States {
		state := registry.states[stateConfig.Name]
		if state == nil {
			state = buildStateFromConfig(stateConfig)
		}

		err = machine.AddState(stateConfig.Name, state)
		if err != nil {
			return nil, err
		}
	}

	err = machine.SetStartState(config.StartState)
	if err != nil {
		return nil, err
	}

	for _, transConfig := range config.Transitions {
		transition, err := buildTransitionFromConfig(transConfig, registry)
		if err != nil {
			return nil, err
		}

		err = machine.AddTransition(transition)
		if err != nil {
			return nil, err
		}
	}

	for _, transConfig := range config.AnyTransitions {
		transition, err := buildTransitionFromConfig(transConfig, registry)
		if err != nil {
			return nil, err
		}

		err = machine.AddAnyTransition(transition)
		if err != nil {
			return nil, err
		}
	}

	return machine, nil
}

// buildStateFromConfig creates a FuncState carrying the configured flags.
func buildStateFromConfig(config StateConfig) State[string] {
	opts := make([]FuncStateOption[string], 0, 2)

	if config.NeedsExitTime {
		opts = append(opts, WithNeedsExitTime[string]())
	}

	if config.Ghost {
		opts = append(opts, WithGhost[string]())
	}

	return NewFuncState(opts...)
}

// buildTransitionFromConfig creates a Transition from configuration.
func buildTransitionFromConfig(config TransitionConfig, registry *Registry) (Transition[string], error) {
	var condition func() bool

	if config.Condition != "" {
		condition = registry.conditions[config.Condition]
		if condition == nil {
			return nil, fmt.Errorf("%w: %s", ErrConditionNotRegistered, config.Condition)
		}
	}

	if config.After != "" {
		// Validated by Config.Validate.
		after, err := time.ParseDuration(config.After)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidAfterDuration, config.After)
		}

		transition := NewTransitionAfter(config.From, config.To, after, condition)
		if registry.clock != nil {
			transition = transition.WithClock(registry.clock)
		}

		if config.ForceInstantly {
			transition = transition.Forced()
		}

		return transition, nil
	}

	transition := NewTransition(config.From, config.To, condition)
	if config.ForceInstantly {
		transition = transition.Forced()
	}

	return transition, nil
}

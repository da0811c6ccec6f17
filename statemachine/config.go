package statemachine

import (
	"fmt"
	"io/fs"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the declarative YAML definition of a string-identifier
// machine: the state set, the transition graph, and the machine-level
// knobs. Lifecycle callbacks and transition predicates cannot be expressed
// in YAML; they are bound by name through a Registry at build time.
type Config struct {
	Name           string             `json:"name"           yaml:"name"`
	StartState     string             `json:"startState"     yaml:"startState"`
	GhostLimit     int                `json:"ghostLimit"     yaml:"ghostLimit"`
	States         []StateConfig      `json:"states"         yaml:"states"`
	Transitions    []TransitionConfig `json:"transitions"    yaml:"transitions"`
	AnyTransitions []TransitionConfig `json:"anyTransitions" yaml:"anyTransitions"`
}

// StateConfig defines one state.
type StateConfig struct {
	Name          string `json:"name"          yaml:"name"`
	NeedsExitTime bool   `json:"needsExitTime" yaml:"needsExitTime"`
	Ghost         bool   `json:"ghost"         yaml:"ghost"`
}

// TransitionConfig defines one transition. Condition names a predicate in
// the Registry ("" means always). After is an optional dwell duration
// ("250ms") the source state must have been active for. Entries under
// anyTransitions leave From empty.
type TransitionConfig struct {
	From           string `json:"from"           yaml:"from"`
	To             string `json:"to"             yaml:"to"`
	Condition      string `json:"condition"      yaml:"condition"`
	After          string `json:"after"          yaml:"after"`
	ForceInstantly bool   `json:"forceInstantly" yaml:"forceInstantly"`
}

// LoadConfig loads a machine configuration from a YAML file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // Intentional path-based loading
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %q: %w", path, err)
	}

	return LoadConfigFromBytes(data)
}

// LoadConfigFromBytes loads a machine configuration from YAML bytes.
func LoadConfigFromBytes(data []byte) (*Config, error) {
	var config Config

	err := yaml.Unmarshal(data, &config)
	if err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	err = config.Validate()
	if err != nil {
		return nil, err
	}

	return &config, nil
}

// LoadConfigFromFS loads a configuration from an embedded filesystem.
// This is a convenience function for loading from embed.FS.
func LoadConfigFromFS(fsys fs.FS, path string) (*Config, error) {
	data, err := fs.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config from FS: %w", err)
	}

	return LoadConfigFromBytes(data)
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Name == "" {
		return ErrConfigNameRequired
	}

	if c.StartState == "" {
		return ErrConfigStartStateRequired
	}

	if len(c.States) == 0 {
		return ErrConfigStateRequired
	}

	if c.GhostLimit < 0 {
		return ErrInvalidGhostLimit
	}

	stateNames := make(map[string]bool)

	for _, state := range c.States {
		if state.Name == "" {
			return ErrStateNameRequired
		}

		if stateNames[state.Name] {
			return fmt.Errorf("%w: %s", ErrDuplicateState, state.Name)
		}

		stateNames[state.Name] = true
	}

	if !stateNames[c.StartState] {
		return fmt.Errorf("%w: start state %s", ErrStateNotFound, c.StartState)
	}

	for i, transition := range c.Transitions {
		if transition.From == "" {
			return fmt.Errorf("transition %d: %w", i, ErrTransitionFromRequired)
		}

		if transition.To == "" {
			return fmt.Errorf("transition %d: %w", i, ErrTransitionToRequired)
		}

		if !stateNames[transition.From] {
			return fmt.Errorf("transition %d: %w: %s", i, ErrTransitionSourceUnknown, transition.From)
		}

		if !stateNames[transition.To] {
			return fmt.Errorf("transition %d: %w: %s", i, ErrTransitionTargetUnknown, transition.To)
		}

		err := transition.validateAfter(i)
		if err != nil {
			return err
		}
	}

	for i, transition := range c.AnyTransitions {
		if transition.From != "" {
			return fmt.Errorf("anyTransition %d: %w", i, ErrAnyTransitionHasFrom)
		}

		if transition.To == "" {
			return fmt.Errorf("anyTransition %d: %w", i, ErrTransitionToRequired)
		}

		if !stateNames[transition.To] {
			return fmt.Errorf("anyTransition %d: %w: %s", i, ErrTransitionTargetUnknown, transition.To)
		}

		err := transition.validateAfter(i)
		if err != nil {
			return err
		}
	}

	return nil
}

func (t *TransitionConfig) validateAfter(index int) error {
	if t.After == "" {
		return nil
	}

	_, err := time.ParseDuration(t.After)
	if err != nil {
		return fmt.Errorf("transition %d: %w: %q", index, ErrInvalidAfterDuration, t.After)
	}

	return nil
}

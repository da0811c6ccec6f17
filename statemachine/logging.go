package statemachine

import "log/slog"

// Logger provides logging hooks for machine execution. Identifiers are
// rendered to strings before the hooks are called, so one Logger serves
// machines of any identifier type.
type Logger interface {
	StateEntered(machine, state string)
	StateExited(machine, state string, err error)
	TransitionFired(machine, from, to string, forced bool)
	ExitRequested(machine, state string)
	ActionDispatched(machine, trigger string, err error)
}

// DefaultLogger implements Logger using slog.
type DefaultLogger struct {
	logger *slog.Logger
}

// NewDefaultLogger creates a logger backed by the given slog.Logger, or
// slog.Default() when nil.
func NewDefaultLogger(logger *slog.Logger) *DefaultLogger {
	if logger == nil {
		logger = slog.Default()
	}

	return &DefaultLogger{logger: logger}
}

func (l *DefaultLogger) StateEntered(machine, state string) {
	l.logger.Debug("State entered",
		"machine", machine,
		"state", state,
	)
}

func (l *DefaultLogger) StateExited(machine, state string, err error) {
	if err != nil {
		l.logger.Error("State exited with error",
			"machine", machine,
			"state", state,
			"error", err,
		)

		return
	}

	l.logger.Debug("State exited",
		"machine", machine,
		"state", state,
	)
}

func (l *DefaultLogger) TransitionFired(machine, from, to string, forced bool) {
	l.logger.Info("Transition fired",
		"machine", machine,
		"from", from,
		"to", to,
		"forced", forced,
	)
}

func (l *DefaultLogger) ExitRequested(machine, state string) {
	l.logger.Debug("Exit requested",
		"machine", machine,
		"state", state,
	)
}

func (l *DefaultLogger) ActionDispatched(machine, trigger string, err error) {
	if err != nil {
		l.logger.Error("Action dispatched with error",
			"machine", machine,
			"trigger", trigger,
			"error", err,
		)

		return
	}

	l.logger.Debug("Action dispatched",
		"machine", machine,
		"trigger", trigger,
	)
}

// NopLogger discards all log events.
type NopLogger struct{}

func (NopLogger) StateEntered(machine, state string) {}

func (NopLogger) StateExited(machine, state string, err error) {}

func (NopLogger) TransitionFired(machine, from, to string, forced bool) {}

func (NopLogger) ExitRequested(machine, state string) {}

func (NopLogger) ActionDispatched(machine, trigger string, err error) {}

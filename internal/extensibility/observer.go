// Package extensibility provides pluggable pieces around tasks: observers,
// external input sources and configurable preconditions.
package extensibility

import (
	"go.uber.org/zap"

	"github.com/comalice/superloop"
)

// LoggingObserver logs every transition it is told about.
type LoggingObserver struct {
	logger *zap.SugaredLogger
	names  map[string]func(superloop.StateID) string
}

// NewLoggingObserver creates an observer writing to logger at info level.
func NewLoggingObserver(logger *zap.SugaredLogger) *LoggingObserver {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &LoggingObserver{logger: logger, names: map[string]func(superloop.StateID) string{}}
}

// Watch attaches the observer to t and resolves t's state names in log lines.
func (o *LoggingObserver) Watch(t *superloop.Task) {
	o.names[t.Name()] = t.StateName
	t.Observe(o)
}

func (o *LoggingObserver) TaskTransition(task string, from, to superloop.StateID, tick uint64) {
	name := func(id superloop.StateID) any { return int(id) }
	if fn, ok := o.names[task]; ok {
		name = func(id superloop.StateID) any { return fn(id) }
	}
	if to == superloop.StateError {
		o.logger.Warnw("task disabled", "task", task, "tick", tick)
		return
	}
	o.logger.Infow("transition", "task", task, "from", name(from), "to", name(to), "tick", tick)
}

// MultiObserver fans one notification out to several observers, in order.
type MultiObserver []superloop.Observer

func (m MultiObserver) TaskTransition(task string, from, to superloop.StateID, tick uint64) {
	for _, o := range m {
		o.TaskTransition(task, from, to, tick)
	}
}

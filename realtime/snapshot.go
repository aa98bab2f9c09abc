package realtime

import (
	"time"

	"github.com/comalice/superloop"
)

// TaskSnapshot is the observable state of one task
type TaskSnapshot struct {
	Name        string            `json:"name" yaml:"name"`
	Priority    int               `json:"priority" yaml:"priority"`
	State       string            `json:"state" yaml:"state"`
	StateID     superloop.StateID `json:"stateID" yaml:"stateID"`
	Initialized bool              `json:"initialized" yaml:"initialized"`
}

// Snapshot is a point-in-time view of a loop, taken between passes
type Snapshot struct {
	RunID            string         `json:"runID" yaml:"runID"`
	Lifecycle        string         `json:"lifecycle" yaml:"lifecycle"`
	Tick             uint64         `json:"tick" yaml:"tick"`
	Seconds          uint64         `json:"seconds" yaml:"seconds"`
	SystemFlags      uint32         `json:"systemFlags" yaml:"systemFlags"`
	ApplicationFlags uint32         `json:"applicationFlags" yaml:"applicationFlags"`
	TimingViolations uint64         `json:"timingViolations" yaml:"timingViolations"`
	LastPass         time.Duration  `json:"lastPass" yaml:"lastPass"`
	Tasks            []TaskSnapshot `json:"tasks" yaml:"tasks"`
	Timestamp        time.Time      `json:"timestamp" yaml:"timestamp"`
}

// Snapshot captures the loop between passes
func (l *Loop) Snapshot() Snapshot {
	l.mu.Lock()
	defer l.mu.Unlock()

	snap := Snapshot{
		RunID:            l.runID,
		Lifecycle:        l.lifecycle.Current(),
		Tick:             l.ctx.Tick(),
		Seconds:          l.ctx.Seconds(),
		SystemFlags:      uint32(l.ctx.SystemFlags()),
		ApplicationFlags: uint32(l.ctx.ApplicationFlags()),
		TimingViolations: l.violations.Load(),
		LastPass:         l.lastPass,
		Tasks:            make([]TaskSnapshot, 0, len(l.tasks)),
		Timestamp:        time.Now(),
	}
	for _, t := range l.tasks {
		snap.Tasks = append(snap.Tasks, TaskSnapshot{
			Name:        t.Task.Name(),
			Priority:    t.Priority,
			State:       t.Task.StateName(t.Task.Current()),
			StateID:     t.Task.Current(),
			Initialized: t.Task.Initialized(),
		})
	}
	return snap
}

// Task returns the named task's snapshot
func (s Snapshot) Task(name string) (TaskSnapshot, bool) {
	for _, t := range s.Tasks {
		if t.Name == name {
			return t, true
		}
	}
	return TaskSnapshot{}, false
}

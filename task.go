package superloop

import (
	"errors"
	"fmt"
	"sort"

	"go.uber.org/zap"
)

type StateID int

const (
	// StateNone is reported as the source state of the transition made by Initialize.
	StateNone StateID = -1
	// StateIdle is the normal operating state entered after a successful Initialize.
	StateIdle StateID = 0
	// StateError is absorbing and only reachable from Initialize.
	StateError StateID = 1
	// StateUser is the first id available for task specific states.
	StateUser StateID = 2
)

// StateFunc runs one tick of a state and returns the state to run on the next tick.
type StateFunc func(ctx *Context) StateID

// SetupFunc performs one-time setup. A non-nil error routes the task to StateError.
type SetupFunc func(ctx *Context) error

// Observer is notified of accepted state changes.
type Observer interface {
	TaskTransition(task string, from, to StateID, tick uint64)
}

var (
	ErrNoStates        = errors.New("no states provided")
	ErrNilState        = errors.New("nil state")
	ErrDuplicateState  = errors.New("duplicate state ID")
	ErrInvalidStateID  = errors.New("invalid state ID")
	ErrMissingRun      = errors.New("state has no run function")
	ErrMultipleInitial = errors.New("more than one initial state")
)

type State struct {
	ID      StateID
	Name    string
	Run     StateFunc // nil only allowed for StateError
	Initial bool
}

// Task is one unit of cooperative execution: a dispatch table keyed by StateID
// and the id of the state that runs on the next tick.
type Task struct {
	name      string
	states    map[StateID]*State
	initial   StateID
	setup     SetupFunc
	current   StateID
	ready     bool
	observers []Observer
	logger    *zap.SugaredLogger
}

//
// Public API
//

func NewTask(name string, states ...*State) (*Task, error) {
	if len(states) == 0 {
		return nil, ErrNoStates
	}
	t := &Task{
		name:    name,
		states:  map[StateID]*State{},
		initial: StateNone,
		current: StateNone,
		logger:  zap.NewNop().Sugar(),
	}

	var first *State
	for _, s := range states {
		if s == nil {
			return nil, ErrNilState
		}
		if s.ID < 0 {
			return nil, fmt.Errorf("state %q: %w", s.Name, ErrInvalidStateID)
		}
		if _, exists := t.states[s.ID]; exists {
			return nil, fmt.Errorf("state %d: %w", s.ID, ErrDuplicateState)
		}
		if s.Run == nil && s.ID != StateError {
			return nil, fmt.Errorf("state %d: %w", s.ID, ErrMissingRun)
		}
		t.states[s.ID] = s
		if s.Initial {
			if t.initial != StateNone {
				return nil, ErrMultipleInitial
			}
			t.initial = s.ID
		}
		if first == nil && s.ID != StateError {
			first = s
		}
	}

	// Error is always present so Initialize always has a fallback.
	if _, ok := t.states[StateError]; !ok {
		t.states[StateError] = &State{ID: StateError, Name: "error"}
	}

	if t.initial == StateNone {
		switch {
		case t.states[StateIdle] != nil:
			t.initial = StateIdle
		case first != nil:
			t.initial = first.ID
		default:
			// Only an error state was supplied.
			t.initial = StateError
		}
	}

	return t, nil
}

// OnInitialize sets the setup and precondition check run by Initialize.
func (t *Task) OnInitialize(fn SetupFunc) {
	t.setup = fn
}

// Observe registers an observer for state changes.
func (t *Task) Observe(o Observer) {
	if o != nil {
		t.observers = append(t.observers, o)
	}
}

// SetLogger replaces the task logger. A nil logger restores the no-op default.
func (t *Task) SetLogger(l *zap.SugaredLogger) {
	if l == nil {
		l = zap.NewNop().Sugar()
	}
	t.logger = l.With("task", t.name)
}

// Initialize runs setup once and selects the initial state, or StateError when
// setup fails. Further calls are no-ops.
func (t *Task) Initialize(ctx *Context) {
	if t.ready {
		return
	}

	next := t.initial
	if t.setup != nil {
		if err := t.setup(ctx); err != nil {
			t.logger.Warnf("initialization failed, task disabled: %v", err)
			next = StateError
		}
	}

	t.ready = true
	t.enter(ctx, StateNone, next)
}

// RunActiveState runs the current state exactly once. It does nothing before Initialize.
func (t *Task) RunActiveState(ctx *Context) {
	if !t.ready {
		return
	}

	s := t.states[t.current]
	if s.Run == nil {
		return
	}
	next := s.Run(ctx)

	if t.current == StateError || next == t.current {
		return
	}
	if next == StateError {
		t.logger.Errorf("state %s requested error state outside of initialization, ignored", t.StateName(t.current))
		return
	}
	if _, ok := t.states[next]; !ok {
		t.logger.Errorf("state %s returned unknown state %d, ignored", t.StateName(t.current), next)
		return
	}
	t.enter(ctx, t.current, next)
}

func (t *Task) Name() string {
	return t.name
}

// Current returns the state that runs on the next tick, or StateNone before Initialize.
func (t *Task) Current() StateID {
	return t.current
}

func (t *Task) Initialized() bool {
	return t.ready
}

// StateName returns the name of a state, falling back to its numeric id.
func (t *Task) StateName(id StateID) string {
	if s, ok := t.states[id]; ok && s.Name != "" {
		return s.Name
	}
	switch id {
	case StateNone:
		return "none"
	case StateIdle:
		return "idle"
	case StateError:
		return "error"
	}
	return fmt.Sprintf("state-%d", id)
}

// States returns the dispatch table entries ordered by id.
func (t *Task) States() []*State {
	out := make([]*State, 0, len(t.states))
	for _, s := range t.states {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

//
// Helper Functions (internal API)
//

func (t *Task) enter(ctx *Context, from, to StateID) {
	t.current = to
	var tick uint64
	if ctx != nil {
		tick = ctx.Tick()
	}
	t.logger.Debugf("%s -> %s at tick %d", t.StateName(from), t.StateName(to), tick)
	for _, o := range t.observers {
		o.TaskTransition(t.name, from, to, tick)
	}
}

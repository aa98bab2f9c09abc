package superloop

import (
	"fmt"
	"sort"
)

// TaskBuilder provides a fluent API for constructing tasks using string-based state names
// instead of manual integer-based State struct creation.
type TaskBuilder struct {
	name     string
	nextID   StateID
	nameToID map[string]StateID
	idToName map[StateID]string // For debugging/reverse lookup
	states   map[StateID]*State
	setup    SetupFunc
}

// StateBuilder provides fluent methods for configuring individual states.
type StateBuilder struct {
	b     *TaskBuilder
	state *State
	name  string
}

// NewTaskBuilder creates a new builder for a task. The names "idle" and "error"
// are bound to StateIdle and StateError.
func NewTaskBuilder(name string) *TaskBuilder {
	b := &TaskBuilder{
		name:     name,
		nextID:   StateUser,
		nameToID: map[string]StateID{"idle": StateIdle, "error": StateError},
		idToName: map[StateID]string{StateIdle: "idle", StateError: "error"},
		states:   make(map[StateID]*State),
	}
	return b
}

// State creates or retrieves a state by name.
func (b *TaskBuilder) State(name string) *StateBuilder {
	id := b.assignID(name)
	state := b.states[id]
	if state == nil {
		state = &State{ID: id, Name: name}
		b.states[id] = state
	}
	return &StateBuilder{b: b, state: state, name: name}
}

// Idle sets the run function of the idle state.
func (b *TaskBuilder) Idle(fn StateFunc) *TaskBuilder {
	b.State("idle").Run(fn)
	return b
}

// Error sets the run function of the error state. Its return value is ignored.
func (b *TaskBuilder) Error(fn StateFunc) *TaskBuilder {
	b.State("error").Run(fn)
	return b
}

// OnInitialize sets the setup and precondition check of the task.
func (b *TaskBuilder) OnInitialize(fn SetupFunc) *TaskBuilder {
	b.setup = fn
	return b
}

// ID returns the StateID for a state name, assigning one if the name is new.
// State functions use it to reference states declared later.
func (b *TaskBuilder) ID(name string) StateID {
	return b.assignID(name)
}

// GetID returns the assigned StateID for a given state name.
// Returns StateNone if the name hasn't been registered.
func (b *TaskBuilder) GetID(name string) StateID {
	if id, ok := b.nameToID[name]; ok {
		return id
	}
	return StateNone
}

// GetName returns the name for a given StateID.
// Returns empty string if the ID doesn't exist.
func (b *TaskBuilder) GetName(id StateID) string {
	return b.idToName[id]
}

// Build validates the task configuration and constructs the Task.
// Returns an error if the configuration is invalid.
func (b *TaskBuilder) Build() (*Task, error) {
	if err := b.validate(); err != nil {
		return nil, err
	}

	ids := make([]StateID, 0, len(b.states))
	for id := range b.states {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	states := make([]*State, 0, len(ids))
	for _, id := range ids {
		states = append(states, b.states[id])
	}

	// Use existing NewTask (tested)
	t, err := NewTask(b.name, states...)
	if err != nil {
		return nil, err
	}
	t.OnInitialize(b.setup)
	return t, nil
}

// assignID returns the existing ID for a name, or creates a new sequential ID.
// This ensures deterministic ID assignment.
func (b *TaskBuilder) assignID(name string) StateID {
	if id, exists := b.nameToID[name]; exists {
		return id
	}

	id := b.nextID
	b.nextID++
	b.nameToID[name] = id
	b.idToName[id] = name
	return id
}

// validate checks that every referenced name was declared as a state.
func (b *TaskBuilder) validate() error {
	if len(b.states) == 0 {
		return ErrNoStates
	}
	for name, id := range b.nameToID {
		if id == StateIdle || id == StateError {
			continue
		}
		if _, ok := b.states[id]; !ok {
			return fmt.Errorf("task %s references undeclared state %q", b.name, name)
		}
	}
	for id, s := range b.states {
		if s.Run == nil && id != StateError {
			return fmt.Errorf("task %s state %q: %w", b.name, b.idToName[id], ErrMissingRun)
		}
	}
	return nil
}

// StateBuilder fluent methods

// Run sets the function executed each tick while this state is active.
func (sb *StateBuilder) Run(fn StateFunc) *StateBuilder {
	sb.state.Run = fn
	return sb
}

// Initial marks this state as the one selected by a successful Initialize.
func (sb *StateBuilder) Initial() *StateBuilder {
	for _, s := range sb.b.states {
		s.Initial = false
	}
	sb.state.Initial = true
	return sb
}

// ID returns the id assigned to this state.
func (sb *StateBuilder) ID() StateID {
	return sb.state.ID
}

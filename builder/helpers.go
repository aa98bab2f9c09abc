package builder

import (
	"github.com/comalice/superloop" // the core package
)

// ID shortcut
type ID = superloop.StateID

// Option pattern for configuring tasks
type Option func(*taskOpts)

type taskOpts struct {
	states []*superloop.State
	setup  superloop.SetupFunc
	obs    []superloop.Observer
}

// New creates a task from options. Without an Idle or State option the task
// cannot be built.
func New(name string, opts ...Option) (*superloop.Task, error) {
	s := &taskOpts{}
	for _, opt := range opts {
		opt(s)
	}
	t, err := superloop.NewTask(name, s.states...)
	if err != nil {
		return nil, err
	}
	t.OnInitialize(s.setup)
	for _, o := range s.obs {
		t.Observe(o)
	}
	return t, nil
}

// MustNew is New for package-level task tables; it panics on error.
func MustNew(name string, opts ...Option) *superloop.Task {
	t, err := New(name, opts...)
	if err != nil {
		panic(err)
	}
	return t
}

// Idle adds the idle state.
func Idle(fn superloop.StateFunc) Option {
	return State(superloop.StateIdle, "idle", fn)
}

// Error adds a custom error state. Its return value is ignored.
func Error(fn superloop.StateFunc) Option {
	return State(superloop.StateError, "error", fn)
}

// State adds a task specific state.
func State(id ID, name string, fn superloop.StateFunc) Option {
	return func(s *taskOpts) {
		s.states = append(s.states, &superloop.State{ID: id, Name: name, Run: fn})
	}
}

// Initial adds a state and marks it as the state selected by Initialize.
func Initial(id ID, name string, fn superloop.StateFunc) Option {
	return func(s *taskOpts) {
		s.states = append(s.states, &superloop.State{ID: id, Name: name, Run: fn, Initial: true})
	}
}

// Setup sets the setup and precondition check.
func Setup(fn superloop.SetupFunc) Option {
	return func(s *taskOpts) { s.setup = fn }
}

// Observe attaches an observer to the task.
func Observe(o superloop.Observer) Option {
	return func(s *taskOpts) { s.obs = append(s.obs, o) }
}

// Every adds an idle state that calls fn once every period ticks and stays idle.
func Every(period uint32, fn func(ctx *superloop.Context)) Option {
	d := &superloop.Divider{Period: period}
	return Idle(func(ctx *superloop.Context) superloop.StateID {
		if d.Step() {
			fn(ctx)
		}
		return superloop.StateIdle
	})
}

package input

import (
	"errors"

	"github.com/comalice/superloop"
	"github.com/comalice/superloop/hal"
)

var ErrNoButtons = errors.New("scanner needs at least one button")

// NewScanner returns a task that samples every button once per tick. Register
// it ahead of the tasks that read the buttons so they see this tick's edges.
func NewScanner(in hal.Inputs, buttons ...*Button) (*superloop.Task, error) {
	if in == nil || len(buttons) == 0 {
		return nil, ErrNoButtons
	}
	for _, b := range buttons {
		if b == nil {
			return nil, ErrNoButtons
		}
	}

	idle := func(ctx *superloop.Context) superloop.StateID {
		now := ctx.Tick()
		for _, b := range buttons {
			b.Update(in.Level(b.Pin), now)
		}
		return superloop.StateIdle
	}

	t, err := superloop.NewTask("buttons", &superloop.State{ID: superloop.StateIdle, Name: "idle", Run: idle})
	if err != nil {
		return nil, err
	}
	t.OnInitialize(func(ctx *superloop.Context) error {
		for _, b := range buttons {
			*b = Button{Pin: b.Pin, Debounce: b.Debounce}
		}
		return nil
	})
	return t, nil
}

// Package holdled lights an LED while a button has been held past a threshold.
package holdled

import (
	"errors"

	"github.com/comalice/superloop"
	"github.com/comalice/superloop/hal"
	"github.com/comalice/superloop/input"
)

const DefaultThreshold = 2000

var ErrNoButton = errors.New("holdled needs a button")

type Config struct {
	LED       hal.LED
	Button    *input.Button // sampled by an input scanner registered earlier
	Threshold uint64        // ticks the button must be held (default: 2000)

	Precondition func() error
}

// New returns a task with two states: idle waits for the hold threshold and
// lit waits for the release.
func New(leds hal.LEDs, cfg Config) (*superloop.Task, error) {
	if cfg.Button == nil {
		return nil, ErrNoButton
	}
	if cfg.Threshold == 0 {
		cfg.Threshold = DefaultThreshold
	}

	b := superloop.NewTaskBuilder("holdled")
	lit := b.ID("lit")

	b.OnInitialize(func(ctx *superloop.Context) error {
		if cfg.Precondition != nil {
			if err := cfg.Precondition(); err != nil {
				return err
			}
		}
		leds.Off(cfg.LED)
		return nil
	})

	b.Idle(func(ctx *superloop.Context) superloop.StateID {
		if cfg.Button.IsHeld(ctx.Tick(), cfg.Threshold) {
			leds.On(cfg.LED)
			return lit
		}
		return superloop.StateIdle
	})

	b.State("lit").Run(func(ctx *superloop.Context) superloop.StateID {
		if !cfg.Button.IsPressed() {
			leds.Off(cfg.LED)
			return superloop.StateIdle
		}
		return lit
	})

	return b.Build()
}

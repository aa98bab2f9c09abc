// Package heartbeat blinks one LED at a fixed period so a running loop is
// visible on the board.
package heartbeat

import (
	"github.com/comalice/superloop"
	"github.com/comalice/superloop/builder"
	"github.com/comalice/superloop/hal"
)

const DefaultPeriod = 250

type Config struct {
	LED    hal.LED
	Period uint32 // ticks between toggles (default: 250)

	// Precondition is checked by Initialize. An error leaves the task in
	// StateError without touching the LED.
	Precondition func() error
}

// New returns the heartbeat task. The LED is switched off by Initialize and
// toggled on every Period-th tick after that.
func New(leds hal.LEDs, cfg Config) (*superloop.Task, error) {
	if cfg.Period == 0 {
		cfg.Period = DefaultPeriod
	}

	return builder.New("heartbeat",
		builder.Setup(func(ctx *superloop.Context) error {
			if cfg.Precondition != nil {
				if err := cfg.Precondition(); err != nil {
					return err
				}
			}
			leds.Off(cfg.LED)
			return nil
		}),
		builder.Every(cfg.Period, func(ctx *superloop.Context) {
			leds.Toggle(cfg.LED)
		}),
	)
}

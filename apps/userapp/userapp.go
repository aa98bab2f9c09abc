// Package userapp shows a 4-bit counter on the four RGB positions of the
// dot-matrix board, changing colour every time the counter wraps.
package userapp

import (
	"github.com/comalice/superloop"
	"github.com/comalice/superloop/builder"
	"github.com/comalice/superloop/hal"
)

const (
	DefaultPeriod          = 250
	DefaultCountsPerColour = 16
)

// Colour is a mix of the red, green and blue LEDs at one position.
type Colour struct {
	Name             string
	Red, Green, Blue bool
}

// Colours is the order the counter cycles through.
var Colours = []Colour{
	{Name: "red", Red: true},
	{Name: "yellow", Red: true, Green: true},
	{Name: "green", Green: true},
	{Name: "cyan", Green: true, Blue: true},
	{Name: "blue", Blue: true},
	{Name: "purple", Red: true, Blue: true},
	{Name: "white", Red: true, Green: true, Blue: true},
}

type Config struct {
	Period          uint32 // ticks per count (default: 250)
	CountsPerColour uint8  // counts before the colour changes (default: 16)

	Precondition func() error
}

// App is the counter state shared by the task's states.
type App struct {
	leds    hal.LEDs
	cfg     Config
	div     superloop.Divider
	counter uint8
	colour  int
}

// New returns the app and its task.
func New(leds hal.LEDs, cfg Config) (*App, *superloop.Task, error) {
	if cfg.Period == 0 {
		cfg.Period = DefaultPeriod
	}
	if cfg.CountsPerColour == 0 {
		cfg.CountsPerColour = DefaultCountsPerColour
	}

	a := &App{leds: leds, cfg: cfg, div: superloop.Divider{Period: cfg.Period}}
	t, err := builder.New("userapp",
		builder.Setup(a.initialize),
		builder.Idle(a.idle),
	)
	if err != nil {
		return nil, nil, err
	}
	return a, t, nil
}

// Counter returns the value being displayed.
func (a *App) Counter() uint8 {
	return a.counter
}

// Colour returns the colour the counter is displayed in.
func (a *App) Colour() Colour {
	return Colours[a.colour]
}

func (a *App) initialize(ctx *superloop.Context) error {
	if a.cfg.Precondition != nil {
		if err := a.cfg.Precondition(); err != nil {
			return err
		}
	}
	for _, led := range hal.DotMatrixLEDs {
		a.leds.Off(led)
	}
	a.div.Reset()
	a.counter = 0
	a.colour = 0
	return nil
}

func (a *App) idle(ctx *superloop.Context) superloop.StateID {
	if !a.div.Step() {
		return superloop.StateIdle
	}

	a.counter++
	if a.counter >= a.cfg.CountsPerColour {
		a.counter = 0
		a.colour = (a.colour + 1) % len(Colours)
	}
	a.render()
	return superloop.StateIdle
}

// render shows the counter with bit 0 on position 3 and bit 3 on position 0.
func (a *App) render() {
	c := Colours[a.colour]
	for pos := 0; pos < 4; pos++ {
		bit := a.counter&(1<<(3-pos)) != 0
		a.set(hal.Red0+hal.LED(pos), bit && c.Red)
		a.set(hal.Green0+hal.LED(pos), bit && c.Green)
		a.set(hal.Blue0+hal.LED(pos), bit && c.Blue)
	}
}

func (a *App) set(led hal.LED, on bool) {
	if on {
		a.leds.On(led)
		return
	}
	a.leds.Off(led)
}

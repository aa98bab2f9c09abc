// Package board assembles a simulated board, its input scanner and the apps
// enabled in a config into one realtime.Loop.
package board

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/comalice/superloop"
	"github.com/comalice/superloop/apps/boardtest"
	"github.com/comalice/superloop/apps/heartbeat"
	"github.com/comalice/superloop/apps/holdled"
	"github.com/comalice/superloop/apps/userapp"
	"github.com/comalice/superloop/hal"
	"github.com/comalice/superloop/hal/console"
	"github.com/comalice/superloop/hal/lcd"
	"github.com/comalice/superloop/hal/sim"
	"github.com/comalice/superloop/input"
	"github.com/comalice/superloop/internal/config"
	"github.com/comalice/superloop/internal/extensibility"
	"github.com/comalice/superloop/internal/metrics"
	"github.com/comalice/superloop/internal/production"
	"github.com/comalice/superloop/realtime"
)

// NumButtons is the number of buttons on both boards.
const NumButtons = 4

// scannerPriority keeps the button scanner ahead of every app.
const scannerPriority = 100

type Options struct {
	// Inputs replaces the simulated pins, e.g. with extensibility.ChannelInputs.
	Inputs hal.Inputs
	Logger *zap.SugaredLogger
	// Metrics attaches the prometheus observer and loop instruments.
	Metrics bool
	// Observers are attached to every task after the built-in ones.
	Observers []superloop.Observer
}

// Board is an assembled, not yet initialized, loop.
type Board struct {
	Sim     *sim.Board
	UART    *sim.UART
	Loop    *realtime.Loop
	Buttons [NumButtons]*input.Button
	Edges   *production.EdgeRecorder

	UserApp   *userapp.App
	BoardTest *boardtest.Test
}

// Build creates the board described by cfg.
func Build(cfg config.Config, opts Options) (*Board, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	loopCfg := realtime.Config{
		TickRate:       cfg.Loop.TickRate,
		Budget:         cfg.Loop.Budget,
		MaxTasks:       cfg.Loop.MaxTasks,
		TicksPerSecond: cfg.Loop.TicksPerSecond,
		TimeWarnings:   cfg.Loop.TimeWarnings,
		Logger:         logger,
	}
	if opts.Metrics {
		loopCfg.Instruments = metrics.Instruments{}
	}

	b := &Board{
		Sim:   sim.NewBoard(),
		UART:  &sim.UART{},
		Loop:  realtime.NewLoop(loopCfg),
		Edges: production.NewEdgeRecorder(),
	}

	in := opts.Inputs
	if in == nil {
		in = b.Sim.Inputs
	}
	for i := range b.Buttons {
		b.Buttons[i] = &input.Button{Pin: i, Debounce: cfg.Buttons.Debounce}
	}
	scanner, err := input.NewScanner(in, b.Buttons[:]...)
	if err != nil {
		return nil, err
	}

	observers := extensibility.MultiObserver{b.Edges}
	if opts.Metrics {
		observers = append(observers, metrics.Observer{})
	}
	observers = append(observers, opts.Observers...)
	logging := extensibility.NewLoggingObserver(logger)

	register := func(t *superloop.Task, priority int) error {
		t.Observe(observers)
		logging.Watch(t)
		if err := b.Loop.RegisterWithPriority(t, priority); err != nil {
			return fmt.Errorf("register %s: %w", t.Name(), err)
		}
		return nil
	}

	if err := register(scanner, scannerPriority); err != nil {
		return nil, err
	}

	apps, err := b.apps(cfg, logger)
	if err != nil {
		return nil, err
	}
	for _, t := range apps {
		if err := register(t, 0); err != nil {
			return nil, err
		}
	}
	return b, nil
}

func (b *Board) apps(cfg config.Config, logger *zap.SugaredLogger) ([]*superloop.Task, error) {
	var tasks []*superloop.Task
	leds := b.Sim.LEDs

	if c := cfg.Apps.Heartbeat; c.Enabled {
		led, _ := hal.ParseLED(c.LED)
		t, err := heartbeat.New(leds, heartbeat.Config{
			LED:          led,
			Period:       c.Period,
			Precondition: precondition(c.Require, cfg.Facts),
		})
		if err != nil {
			return nil, fmt.Errorf("heartbeat: %w", err)
		}
		tasks = append(tasks, t)
	}

	if c := cfg.Apps.HoldLED; c.Enabled {
		led, _ := hal.ParseLED(c.LED)
		t, err := holdled.New(leds, holdled.Config{
			LED:          led,
			Button:       b.Buttons[c.Button],
			Threshold:    c.Threshold,
			Precondition: precondition(c.Require, cfg.Facts),
		})
		if err != nil {
			return nil, fmt.Errorf("holdled: %w", err)
		}
		tasks = append(tasks, t)
	}

	if c := cfg.Apps.UserApp; c.Enabled {
		app, t, err := userapp.New(leds, userapp.Config{
			Period:          c.Period,
			CountsPerColour: c.CountsPerColour,
			Precondition:    precondition(c.Require, cfg.Facts),
		})
		if err != nil {
			return nil, fmt.Errorf("userapp: %w", err)
		}
		b.UserApp = app
		tasks = append(tasks, t)
	}

	if c := cfg.Apps.BoardTest; c.Enabled {
		display := lcd.New(b.Sim.Bus)
		if err := display.Initialize(); err != nil {
			return nil, err
		}
		bt, t, err := boardtest.New(boardtest.Devices{
			LEDs:    leds,
			Console: console.New(b.UART),
			Buzzer1: b.Sim.Buzzer1,
			Buzzer2: b.Sim.Buzzer2,
			Radio:   b.Sim.Radio,
			Display: display,
			Buttons: b.Buttons,
		}, boardtest.Config{
			SetupTimeout: c.SetupTimeout,
			BannerPeriod: c.BannerPeriod,
			Logger:       logger,
			Precondition: precondition(c.Require, cfg.Facts),
		})
		if err != nil {
			return nil, fmt.Errorf("boardtest: %w", err)
		}
		b.BoardTest = bt
		tasks = append(tasks, t)
	}

	return tasks, nil
}

// Graphs returns the state graph of every registered task, in run order.
func (b *Board) Graphs() []production.TaskGraph {
	tasks := b.Loop.Tasks()
	graphs := make([]production.TaskGraph, 0, len(tasks))
	for _, t := range tasks {
		graphs = append(graphs, production.GraphOf(t, b.Edges))
	}
	return graphs
}

func precondition(expr string, facts map[string]any) func() error {
	if expr == "" {
		return nil
	}
	return extensibility.ExpressionPrecondition(expr, facts)
}

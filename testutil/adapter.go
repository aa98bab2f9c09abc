package testutil

import (
	"context"
	"fmt"
	"time"

	"github.com/comalice/superloop/realtime"
)

// LoopAdapter provides a common interface for the simulated and wall-clock
// clocks of a realtime.Loop.
// This allows running the same test suite on both
type LoopAdapter interface {
	Start(ctx context.Context) error
	Stop() error
	// AdvanceTo returns once the loop has completed the pass for tick.
	AdvanceTo(tick uint64, timeout time.Duration) error
	Tick() uint64
	Loop() *realtime.Loop
}

// SteppedAdapter drives a loop with Step
type SteppedAdapter struct {
	loop *realtime.Loop
}

// NewSteppedAdapter creates a new adapter for the simulated clock
func NewSteppedAdapter(loop *realtime.Loop) *SteppedAdapter {
	return &SteppedAdapter{loop: loop}
}

func (a *SteppedAdapter) Start(ctx context.Context) error {
	return a.loop.Initialize()
}

func (a *SteppedAdapter) Stop() error {
	return a.loop.Stop()
}

func (a *SteppedAdapter) AdvanceTo(tick uint64, timeout time.Duration) error {
	for a.loop.GetTickNumber() < tick {
		if err := a.loop.Step(); err != nil {
			return err
		}
	}
	return nil
}

func (a *SteppedAdapter) Tick() uint64 {
	return a.loop.GetTickNumber()
}

func (a *SteppedAdapter) Loop() *realtime.Loop {
	return a.loop
}

// TickerAdapter runs a loop on its wall-clock ticker
type TickerAdapter struct {
	loop *realtime.Loop
}

// NewTickerAdapter creates a new adapter for the wall-clock ticker
func NewTickerAdapter(loop *realtime.Loop) *TickerAdapter {
	return &TickerAdapter{loop: loop}
}

func (a *TickerAdapter) Start(ctx context.Context) error {
	return a.loop.Start(ctx)
}

func (a *TickerAdapter) Stop() error {
	return a.loop.Stop()
}

func (a *TickerAdapter) AdvanceTo(tick uint64, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for a.loop.GetTickNumber() < tick {
		if time.Now().After(deadline) {
			return fmt.Errorf("tick %d not reached within %v, at %d", tick, timeout, a.loop.GetTickNumber())
		}
		time.Sleep(time.Millisecond)
	}
	// Snapshot waits for the in-flight pass to finish
	_ = a.loop.Snapshot()
	return nil
}

func (a *TickerAdapter) Tick() uint64 {
	return a.loop.GetTickNumber()
}

func (a *TickerAdapter) Loop() *realtime.Loop {
	return a.loop
}

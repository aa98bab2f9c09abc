// Package realtime provides the super-loop that drives superloop tasks.
//
// A Loop owns the shared superloop.Context and a fixed, ordered list of tasks.
// Every tick it advances the clock and calls RunActiveState on each task
// exactly once, in order, on a single goroutine. Nothing preempts a task and no
// task runs concurrently with another.
//
// # Example Usage
//
//	loop := realtime.NewLoop(realtime.Config{TickRate: time.Millisecond})
//	loop.Register(buttons)  // scanners first
//	loop.Register(heartbeat)
//	loop.Initialize()
//	loop.Start(ctx)
//	defer loop.Stop()
//
// # Clocks
//
// Step and Run advance a simulated clock by exactly one tick per call, which
// makes tests deterministic. Start runs the loop from a time.Ticker; the tick
// count then follows elapsed wall time, so a slow pass that spans several
// ticks shows up as a jump in the clock.
//
// Stop, or cancelling the context given to Start, ends the ticker goroutine
// and moves the loop to stopped.
//
// # Task Ordering
//
// Tasks run in a fixed order:
//  1. Priority (higher priority first)
//  2. Registration sequence (FIFO for same priority)
//  3. Stable sorting (preserves relative order)
//
// The order is frozen by Initialize; registering later is an error.
//
// # Timing Budget
//
// All tasks together share one tick. A pass that takes longer than
// Config.Budget, or a clock that advanced by more than one tick since the
// previous pass, counts as a timing violation and sets
// superloop.FlagTimeWarning. Violations are logged when Config.TimeWarnings is
// set.
//
// # Lifecycle
//
//	created -> initialized -> running -> stopped
//
// Step and Run are only valid in the initialized state; the ticker owns the
// clock while running.
package realtime

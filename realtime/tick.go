package realtime

import (
	"time"

	"github.com/comalice/superloop"
)

// pass runs one complete tick. Callers hold l.mu.
func (l *Loop) pass(tick uint64) {
	// Phase 1: Wake and advance the clock
	prev := l.ctx.Tick()
	l.ctx.ClearSystemFlags(superloop.FlagSleeping)
	l.ctx.SetTick(tick)

	// Phase 2: Run every task once, in order
	start := time.Now()
	l.runTasks()
	elapsed := time.Since(start)
	l.lastPass = elapsed

	// Phase 3: Check the pass against the tick budget
	l.inst.ObserveTick(elapsed)
	l.checkTiming(prev, tick, elapsed)
}

// runTasks calls RunActiveState on every task
func (l *Loop) runTasks() {
	for _, t := range l.tasks {
		t.Task.RunActiveState(l.ctx)
	}
}

// checkTiming flags a pass that skipped ticks or overran its budget
func (l *Loop) checkTiming(prev, tick uint64, elapsed time.Duration) {
	skipped := tick-prev > 1
	overran := elapsed > l.cfg.Budget
	if !skipped && !overran {
		return
	}

	l.violations.Add(1)
	l.ctx.SetSystemFlags(superloop.FlagTimeWarning)
	l.inst.TimingViolation()

	if l.cfg.TimeWarnings {
		l.logger.Warnw("timing violation",
			"tick", tick,
			"skipped", tick-prev-1,
			"elapsed", elapsed,
			"budget", l.cfg.Budget)
	}
}

package superloop_test

import (
	"sync"
	"testing"

	. "github.com/comalice/superloop"
)

func TestContextClock(t *testing.T) {
	ctx := NewContext()

	if ctx.Tick() != 0 || ctx.Seconds() != 0 {
		t.Fatalf("expected zero clock, got tick=%d seconds=%d", ctx.Tick(), ctx.Seconds())
	}

	for i := 0; i < 999; i++ {
		ctx.Advance()
	}
	if ctx.Seconds() != 0 {
		t.Errorf("expected 0 seconds at tick 999, got %d", ctx.Seconds())
	}
	if got := ctx.Advance(); got != 1000 {
		t.Errorf("expected tick 1000, got %d", got)
	}
	if ctx.Seconds() != 1 {
		t.Errorf("expected 1 second at tick 1000, got %d", ctx.Seconds())
	}
}

func TestContextSetTickNeverMovesBack(t *testing.T) {
	ctx := NewContext()
	ctx.SetTick(50)
	if got := ctx.SetTick(10); got != 50 {
		t.Errorf("expected clock to stay at 50, got %d", got)
	}
	if ctx.Tick() != 50 {
		t.Errorf("expected tick 50, got %d", ctx.Tick())
	}
}

func TestContextCustomRate(t *testing.T) {
	ctx := NewContextWithRate(100)
	ctx.SetTick(250)
	if ctx.Seconds() != 2 {
		t.Errorf("expected 2 seconds, got %d", ctx.Seconds())
	}

	// zero falls back to the default
	ctx = NewContextWithRate(0)
	ctx.SetTick(DefaultTicksPerSecond)
	if ctx.Seconds() != 1 {
		t.Errorf("expected 1 second, got %d", ctx.Seconds())
	}
}

func TestContextIsTimeUp(t *testing.T) {
	ctx := NewContext()
	ctx.SetTick(100)

	tests := []struct {
		name   string
		since  uint64
		period uint64
		want   bool
	}{
		{"exactly elapsed", 50, 50, true},
		{"one short", 51, 50, false},
		{"zero period", 100, 0, true},
		{"start in the future", 150, 10, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ctx.IsTimeUp(tt.since, tt.period); got != tt.want {
				t.Errorf("IsTimeUp(%d, %d) = %v, expected %v", tt.since, tt.period, got, tt.want)
			}
		})
	}
}

func TestContextFlags(t *testing.T) {
	ctx := NewContext()

	ctx.SetSystemFlags(FlagInitializing | FlagSleeping)
	if !ctx.SystemFlags().Has(FlagInitializing | FlagSleeping) {
		t.Errorf("expected both flags, got %b", ctx.SystemFlags())
	}
	ctx.ClearSystemFlags(FlagInitializing)
	if ctx.SystemFlags().Has(FlagInitializing) {
		t.Error("initializing flag not cleared")
	}
	if !ctx.SystemFlags().Has(FlagSleeping) {
		t.Error("clearing one flag cleared another")
	}

	ctx.SetApplicationFlags(1 << 5)
	if ctx.ApplicationFlags() != 1<<5 {
		t.Errorf("expected application flag 5, got %b", ctx.ApplicationFlags())
	}
	if ctx.SystemFlags().Has(1 << 5) {
		t.Error("application flags leaked into system flags")
	}
	ctx.ClearApplicationFlags(1 << 5)
	if ctx.ApplicationFlags() != 0 {
		t.Errorf("expected no application flags, got %b", ctx.ApplicationFlags())
	}
}

func TestContextConcurrentReaders(t *testing.T) {
	ctx := NewContext()
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			ctx.Advance()
			ctx.SetSystemFlags(FlagSleeping)
			ctx.ClearSystemFlags(FlagSleeping)
		}
	}()

	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			var last uint64
			for j := 0; j < 1000; j++ {
				now := ctx.Tick()
				if now < last {
					t.Errorf("clock went backwards: %d after %d", now, last)
					return
				}
				last = now
				_ = ctx.SystemFlags()
			}
		}()
	}
	wg.Wait()

	if ctx.Tick() != 1000 {
		t.Errorf("expected tick 1000, got %d", ctx.Tick())
	}
}

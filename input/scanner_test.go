package input

import (
	"errors"
	"testing"

	"github.com/comalice/superloop"
	"github.com/comalice/superloop/hal/sim"
)

func TestNewScannerValidation(t *testing.T) {
	pins := sim.NewBoard().Inputs
	if _, err := NewScanner(nil, New(0)); !errors.Is(err, ErrNoButtons) {
		t.Errorf("expected ErrNoButtons for nil inputs, got %v", err)
	}
	if _, err := NewScanner(pins); !errors.Is(err, ErrNoButtons) {
		t.Errorf("expected ErrNoButtons without buttons, got %v", err)
	}
	if _, err := NewScanner(pins, New(0), nil); !errors.Is(err, ErrNoButtons) {
		t.Errorf("expected ErrNoButtons for nil button, got %v", err)
	}
}

func TestScannerSamplesEveryTick(t *testing.T) {
	board := sim.NewBoard()
	b0, b1 := New(0), New(1)
	scanner, err := NewScanner(board.Inputs, b0, b1)
	if err != nil {
		t.Fatal(err)
	}

	ctx := superloop.NewContext()
	scanner.Initialize(ctx)

	board.Inputs.Set(1, true)
	for i := 0; i < DefaultDebounce; i++ {
		ctx.Advance()
		scanner.RunActiveState(ctx)
	}

	if b0.IsPressed() {
		t.Error("button 0 pressed without input")
	}
	if !b1.ConsumePress() {
		t.Error("button 1 press not detected")
	}
	if board.Len() != 0 {
		t.Errorf("scanning recorded side effects: %v", board.Effects())
	}
}

func TestScannerInitializeResetsButtons(t *testing.T) {
	board := sim.NewBoard()
	b := &Button{Pin: 2, Debounce: 5}
	b.Update(true, 0)
	feed(b, true, 1, 10)
	if !b.WasPressed() {
		t.Fatal("setup press not latched")
	}

	scanner, err := NewScanner(board.Inputs, b)
	if err != nil {
		t.Fatal(err)
	}
	scanner.Initialize(superloop.NewContext())

	if b.WasPressed() || b.IsPressed() {
		t.Error("Initialize did not clear button state")
	}
	if b.Pin != 2 || b.Debounce != 5 {
		t.Errorf("Initialize lost configuration: pin=%d debounce=%d", b.Pin, b.Debounce)
	}
}

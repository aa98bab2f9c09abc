package hal

import "testing"

func TestLEDNames(t *testing.T) {
	all := append(append([]LED{}, DotMatrixLEDs...), ASCIILEDs...)
	all = append(all, LCDRed, LCDGreen, LCDBlue)

	seen := map[string]bool{}
	for _, led := range all {
		name := led.String()
		if seen[name] {
			t.Errorf("duplicate LED name %q", name)
		}
		seen[name] = true

		got, err := ParseLED(name)
		if err != nil {
			t.Errorf("ParseLED(%q): %v", name, err)
			continue
		}
		if got != led {
			t.Errorf("ParseLED(%q) = %d, expected %d", name, got, led)
		}
	}
}

func TestLEDUnknown(t *testing.T) {
	if got := LED(200).String(); got != "led200" {
		t.Errorf("expected led200, got %q", got)
	}
	if _, err := ParseLED("magenta"); err == nil {
		t.Error("expected error for unknown LED")
	}
}

func TestDotMatrixColourOffsets(t *testing.T) {
	if Red3-Red0 != 3 || Green3-Green0 != 3 || Blue3-Blue0 != 3 {
		t.Error("positions of one colour must be consecutive")
	}
}

func TestRadioStatusString(t *testing.T) {
	tests := map[RadioStatus]string{
		RadioUnconfigured: "unconfigured",
		RadioConfigured:   "configured",
		RadioOpening:      "opening",
		RadioOpen:         "open",
		RadioClosing:      "closing",
		RadioClosed:       "closed",
		RadioStatus(42):   "unknown",
	}
	for s, want := range tests {
		if got := s.String(); got != want {
			t.Errorf("expected %q, got %q", want, got)
		}
	}
}

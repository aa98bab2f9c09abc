// Package hal defines the hardware capabilities tasks call into. Register level
// setup lives behind these interfaces; hal/sim provides a recording simulation
// and hal/lcd, hal/console implement drivers on top of tinygo driver buses.
package hal

import "fmt"

// LED identifies one discrete output on a board.
type LED uint8

// Dot-matrix board LEDs. Colours are grouped so that the same colour on
// neighbouring positions differs by one (Red3 - Red0 == 3).
const (
	Red0 LED = iota
	Red1
	Red2
	Red3
	Green0
	Green1
	Green2
	Green3
	Blue0
	Blue1
	Blue2
	Blue3
	LCDBacklight
)

// ASCII board LEDs.
const (
	White LED = iota + 16
	Purple
	Blue
	Cyan
	Green
	Yellow
	Orange
	Red
	LCDRed
	LCDGreen
	LCDBlue
)

// DotMatrixLEDs lists every LED of the dot-matrix board in LedNameType order.
var DotMatrixLEDs = []LED{Red0, Red1, Red2, Red3, Green0, Green1, Green2, Green3, Blue0, Blue1, Blue2, Blue3, LCDBacklight}

// ASCIILEDs lists the discrete LEDs of the ASCII board, brightest first.
var ASCIILEDs = []LED{White, Purple, Blue, Cyan, Green, Yellow, Orange, Red}

var ledNames = map[LED]string{
	Red0: "red0", Red1: "red1", Red2: "red2", Red3: "red3",
	Green0: "green0", Green1: "green1", Green2: "green2", Green3: "green3",
	Blue0: "blue0", Blue1: "blue1", Blue2: "blue2", Blue3: "blue3",
	LCDBacklight: "lcd_bl",
	White: "white", Purple: "purple", Blue: "blue", Cyan: "cyan",
	Green: "green", Yellow: "yellow", Orange: "orange", Red: "red",
	LCDRed: "lcd_red", LCDGreen: "lcd_green", LCDBlue: "lcd_blue",
}

func (l LED) String() string {
	if n, ok := ledNames[l]; ok {
		return n
	}
	return fmt.Sprintf("led%d", uint8(l))
}

// ParseLED returns the LED with the given name, as printed by String.
func ParseLED(name string) (LED, error) {
	for l, n := range ledNames {
		if n == name {
			return l, nil
		}
	}
	return 0, fmt.Errorf("unknown LED %q", name)
}

// LEDs drives digital outputs.
type LEDs interface {
	On(led LED)
	Off(led LED)
	Toggle(led LED)
}

// Inputs reads the raw, undebounced level of a digital input. true means asserted.
type Inputs interface {
	Level(pin int) bool
}

// Console writes debug text.
type Console interface {
	Printf(format string, args ...any)
}

// Buzzer is a PWM audio channel.
type Buzzer interface {
	SetFrequency(hz uint32)
	On()
	Off()
}

// RadioStatus is the state of a radio channel.
type RadioStatus int

const (
	RadioUnconfigured RadioStatus = iota
	RadioConfigured
	RadioOpening
	RadioOpen
	RadioClosing
	RadioClosed
)

func (s RadioStatus) String() string {
	switch s {
	case RadioUnconfigured:
		return "unconfigured"
	case RadioConfigured:
		return "configured"
	case RadioOpening:
		return "opening"
	case RadioOpen:
		return "open"
	case RadioClosing:
		return "closing"
	case RadioClosed:
		return "closed"
	}
	return "unknown"
}

// Radio is a single wireless channel. Open and Close only queue a request;
// Status is polled on later ticks.
type Radio interface {
	Status() RadioStatus
	Open()
	Close()
}

// Display writes text to a character display at a DDRAM address.
type Display interface {
	Message(addr uint8, text string) error
	ClearChars(addr uint8, n int) error
}

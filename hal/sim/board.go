// Package sim is a simulated board. Every hardware side effect is recorded so
// tests can assert on what a task did, and on what it did not do.
package sim

import (
	"fmt"
	"sync"

	"github.com/comalice/superloop/hal"
)

// Effect is one recorded hardware side effect.
type Effect struct {
	Device string
	Op     string
	Arg    string
}

func (e Effect) String() string {
	if e.Arg == "" {
		return e.Device + "." + e.Op
	}
	return e.Device + "." + e.Op + "(" + e.Arg + ")"
}

// Recorder is the effect log shared by every simulated device of a board.
type Recorder struct {
	mu      sync.Mutex
	effects []Effect
}

func (r *Recorder) record(device, op, arg string) {
	r.mu.Lock()
	r.effects = append(r.effects, Effect{Device: device, Op: op, Arg: arg})
	r.mu.Unlock()
}

// Effects returns a copy of the log.
func (r *Recorder) Effects() []Effect {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Effect, len(r.effects))
	copy(out, r.effects)
	return out
}

// Len returns the number of recorded effects.
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.effects)
}

// Reset clears the log.
func (r *Recorder) Reset() {
	r.mu.Lock()
	r.effects = nil
	r.mu.Unlock()
}

// Board bundles the simulated devices. All devices write to one Recorder.
type Board struct {
	*Recorder
	LEDs    *LEDBank
	Inputs  *Pins
	Console *Terminal
	Buzzer1 *Buzzer
	Buzzer2 *Buzzer
	Radio   *Radio
	Bus     *I2CBus
}

// NewBoard creates a board with every LED off and every input released.
func NewBoard() *Board {
	r := &Recorder{}
	return &Board{
		Recorder: r,
		LEDs:     &LEDBank{rec: r, on: map[hal.LED]bool{}},
		Inputs:   &Pins{levels: map[int]bool{}},
		Console:  &Terminal{rec: r},
		Buzzer1:  &Buzzer{rec: r, name: "buzzer1"},
		Buzzer2:  &Buzzer{rec: r, name: "buzzer2"},
		Radio:    &Radio{rec: r},
		Bus:      NewI2CBus(r),
	}
}

// LEDBank implements hal.LEDs.
type LEDBank struct {
	rec *Recorder
	mu  sync.Mutex
	on  map[hal.LED]bool
}

func (b *LEDBank) On(led hal.LED) {
	b.set(led, true)
	b.rec.record("led", "on", led.String())
}

func (b *LEDBank) Off(led hal.LED) {
	b.set(led, false)
	b.rec.record("led", "off", led.String())
}

func (b *LEDBank) Toggle(led hal.LED) {
	b.mu.Lock()
	b.on[led] = !b.on[led]
	b.mu.Unlock()
	b.rec.record("led", "toggle", led.String())
}

// IsOn reports the current output level of led.
func (b *LEDBank) IsOn(led hal.LED) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.on[led]
}

// Lit returns the LEDs currently on, in the order of leds.
func (b *LEDBank) Lit(leds []hal.LED) []hal.LED {
	var out []hal.LED
	for _, l := range leds {
		if b.IsOn(l) {
			out = append(out, l)
		}
	}
	return out
}

func (b *LEDBank) set(led hal.LED, on bool) {
	b.mu.Lock()
	b.on[led] = on
	b.mu.Unlock()
}

// Pins implements hal.Inputs. Reads are not side effects and are not recorded.
type Pins struct {
	mu     sync.Mutex
	levels map[int]bool
}

func (p *Pins) Level(pin int) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.levels[pin]
}

// Set drives the raw level of pin.
func (p *Pins) Set(pin int, asserted bool) {
	p.mu.Lock()
	p.levels[pin] = asserted
	p.mu.Unlock()
}

// Terminal implements hal.Console by capturing text.
type Terminal struct {
	rec *Recorder
	mu  sync.Mutex
	out []string
}

func (t *Terminal) Printf(format string, args ...any) {
	s := fmt.Sprintf(format, args...)
	t.mu.Lock()
	t.out = append(t.out, s)
	t.mu.Unlock()
	t.rec.record("console", "print", s)
}

// Lines returns everything printed so far, one entry per Printf.
func (t *Terminal) Lines() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]string, len(t.out))
	copy(out, t.out)
	return out
}

// Buzzer implements hal.Buzzer.
type Buzzer struct {
	rec  *Recorder
	name string
	mu   sync.Mutex
	hz   uint32
	on   bool
}

func (b *Buzzer) SetFrequency(hz uint32) {
	b.mu.Lock()
	b.hz = hz
	b.mu.Unlock()
	b.rec.record(b.name, "frequency", fmt.Sprint(hz))
}

func (b *Buzzer) On() {
	b.mu.Lock()
	b.on = true
	b.mu.Unlock()
	b.rec.record(b.name, "on", "")
}

func (b *Buzzer) Off() {
	b.mu.Lock()
	b.on = false
	b.mu.Unlock()
	b.rec.record(b.name, "off", "")
}

// State returns whether the buzzer is sounding and at what frequency.
func (b *Buzzer) State() (on bool, hz uint32) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.on, b.hz
}

// Radio implements hal.Radio. Open and Close requests complete on the next
// Status poll, mimicking a radio that acknowledges one message later.
type Radio struct {
	rec    *Recorder
	mu     sync.Mutex
	status hal.RadioStatus
}

// SetStatus forces the channel status, e.g. to finish configuration.
func (r *Radio) SetStatus(s hal.RadioStatus) {
	r.mu.Lock()
	r.status = s
	r.mu.Unlock()
}

func (r *Radio) Status() hal.RadioStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := r.status
	switch s {
	case hal.RadioOpening:
		r.status = hal.RadioOpen
	case hal.RadioClosing:
		r.status = hal.RadioClosed
	}
	return s
}

func (r *Radio) Open() {
	r.mu.Lock()
	r.status = hal.RadioOpening
	r.mu.Unlock()
	r.rec.record("radio", "open", "")
}

func (r *Radio) Close() {
	r.mu.Lock()
	r.status = hal.RadioClosing
	r.mu.Unlock()
	r.rec.record("radio", "close", "")
}

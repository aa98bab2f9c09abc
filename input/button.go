// Package input turns raw digital inputs into debounced buttons with latched
// press events.
package input

// DefaultDebounce is the number of ticks a raw level must stay stable before
// it is accepted.
const DefaultDebounce = 25

// Button is an edge detector for one input. A press is latched when the
// debounced level goes from released to pressed and stays latched until
// Acknowledge, so a consumer polling once per tick never misses or repeats one.
type Button struct {
	Pin      int
	Debounce uint64

	raw       bool
	rawSince  uint64
	pressed   bool
	latched   bool
	heldSince uint64
	sampled   bool
}

// New returns a button on pin with the default debounce.
func New(pin int) *Button {
	return &Button{Pin: pin, Debounce: DefaultDebounce}
}

// Update samples the raw level at tick. Call once per tick.
func (b *Button) Update(raw bool, tick uint64) {
	if !b.sampled || raw != b.raw {
		b.raw = raw
		b.rawSince = tick
		b.sampled = true
	}
	if b.raw == b.pressed {
		return
	}
	if tick-b.rawSince+1 < b.Debounce {
		return
	}

	b.pressed = b.raw
	if b.pressed {
		b.latched = true
		b.heldSince = b.rawSince
	}
}

// IsPressed reports the debounced level.
func (b *Button) IsPressed() bool {
	return b.pressed
}

// WasPressed reports an unacknowledged press.
func (b *Button) WasPressed() bool {
	return b.latched
}

// Acknowledge clears the latched press.
func (b *Button) Acknowledge() {
	b.latched = false
}

// ConsumePress reports and clears the latched press in one call.
func (b *Button) ConsumePress() bool {
	if !b.latched {
		return false
	}
	b.latched = false
	return true
}

// IsHeld reports whether the button is pressed and the press has been observed
// on at least ticks ticks up to and including tick. The tick of the raw edge
// counts as the first.
func (b *Button) IsHeld(tick, ticks uint64) bool {
	if !b.pressed || tick < b.heldSince {
		return false
	}
	return tick-b.heldSince+1 >= ticks
}

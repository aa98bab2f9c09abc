package superloop

import "sync/atomic"

// Flags is a bit set of system or application status flags.
type Flags uint32

const (
	// FlagInitializing is set while the loop runs Initialize on its tasks.
	FlagInitializing Flags = 1 << iota
	// FlagTimeWarning is set when a tick overran its budget or ticks were skipped.
	FlagTimeWarning
	// FlagSleeping is set while the loop waits for the next tick.
	FlagSleeping
)

// DefaultTicksPerSecond matches a 1ms system tick.
const DefaultTicksPerSecond = 1000

// Context is the state shared by every task in a loop: the tick clock and the
// system and application flag words. The loop is the only writer of the clock;
// tasks treat it as read-only input. Fields are atomic so readers on other
// goroutines (metrics, snapshots) never race the loop.
type Context struct {
	tick             atomic.Uint64
	seconds          atomic.Uint64
	ticksPerSecond   uint64
	systemFlags      atomic.Uint32
	applicationFlags atomic.Uint32
}

// NewContext creates a context for a 1ms tick.
func NewContext() *Context {
	return NewContextWithRate(DefaultTicksPerSecond)
}

// NewContextWithRate creates a context whose Seconds counter advances every
// ticksPerSecond ticks.
func NewContextWithRate(ticksPerSecond uint64) *Context {
	if ticksPerSecond == 0 {
		ticksPerSecond = DefaultTicksPerSecond
	}
	return &Context{ticksPerSecond: ticksPerSecond}
}

// Tick returns the number of ticks since the loop started.
func (c *Context) Tick() uint64 {
	return c.tick.Load()
}

// Seconds returns the number of whole seconds since the loop started.
func (c *Context) Seconds() uint64 {
	return c.seconds.Load()
}

// Advance moves the clock forward one tick and returns the new tick.
func (c *Context) Advance() uint64 {
	return c.SetTick(c.tick.Load() + 1)
}

// SetTick moves the clock to t. The clock never moves backwards.
func (c *Context) SetTick(t uint64) uint64 {
	if t < c.tick.Load() {
		return c.tick.Load()
	}
	c.tick.Store(t)
	c.seconds.Store(t / c.ticksPerSecond)
	return t
}

// IsTimeUp reports whether at least period ticks have passed since the tick since.
func (c *Context) IsTimeUp(since, period uint64) bool {
	now := c.Tick()
	if now < since {
		return false
	}
	return now-since >= period
}

func (c *Context) SystemFlags() Flags {
	return Flags(c.systemFlags.Load())
}

func (c *Context) SetSystemFlags(f Flags) {
	c.systemFlags.Or(uint32(f))
}

func (c *Context) ClearSystemFlags(f Flags) {
	c.systemFlags.And(^uint32(f))
}

func (c *Context) ApplicationFlags() Flags {
	return Flags(c.applicationFlags.Load())
}

func (c *Context) SetApplicationFlags(f Flags) {
	c.applicationFlags.Or(uint32(f))
}

func (c *Context) ClearApplicationFlags(f Flags) {
	c.applicationFlags.And(^uint32(f))
}

// Has reports whether every bit of bits is set in f.
func (f Flags) Has(bits Flags) bool {
	return f&bits == bits
}

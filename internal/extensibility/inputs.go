package extensibility

import "sync"

// PinChange sets the raw level of one input.
type PinChange struct {
	Pin      int
	Asserted bool
}

// ChannelInputs implements hal.Inputs for levels driven from outside the loop,
// such as a terminal or a test harness. Each Level call applies at most one
// queued change for its pin, so a press followed by a release is seen as two
// levels on consecutive scans.
type ChannelInputs struct {
	ch      chan PinChange
	mu      sync.Mutex
	levels  map[int]bool
	pending map[int][]bool
}

// NewChannelInputs creates a source buffering up to size pending changes.
func NewChannelInputs(size int) *ChannelInputs {
	return &ChannelInputs{
		ch:      make(chan PinChange, size),
		levels:  map[int]bool{},
		pending: map[int][]bool{},
	}
}

// Send queues a change. It reports false when the buffer is full and the change
// was dropped.
func (c *ChannelInputs) Send(change PinChange) bool {
	select {
	case c.ch <- change:
		return true
	default:
		return false
	}
}

func (c *ChannelInputs) Level(pin int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.drain()
	if q := c.pending[pin]; len(q) > 0 {
		c.levels[pin] = q[0]
		if len(q) == 1 {
			delete(c.pending, pin)
		} else {
			c.pending[pin] = q[1:]
		}
	}
	return c.levels[pin]
}

// drain moves sent changes into the per-pin queues.
func (c *ChannelInputs) drain() {
	for {
		select {
		case change := <-c.ch:
			c.pending[change.Pin] = append(c.pending[change.Pin], change.Asserted)
		default:
			return
		}
	}
}

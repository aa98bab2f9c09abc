package production

import (
	"context"
	"sync/atomic"

	"github.com/comalice/superloop"
)

// Transition is one accepted state change of a task.
type Transition struct {
	Task string            `json:"task"`
	From superloop.StateID `json:"from"`
	To   superloop.StateID `json:"to"`
	Tick uint64            `json:"tick"`
}

// ChannelPublisher forwards transitions to a Go channel.
// Non-blocking publish with drop on backpressure.
type ChannelPublisher struct {
	ch      chan<- Transition
	dropped atomic.Uint64
}

// NewChannelPublisher creates a ChannelPublisher with the given output channel.
func NewChannelPublisher(ch chan<- Transition) *ChannelPublisher {
	return &ChannelPublisher{ch: ch}
}

func (p *ChannelPublisher) Publish(ctx context.Context, t Transition) error {
	select {
	case p.ch <- t:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		p.dropped.Add(1)
		return nil // Non-blocking drop
	}
}

// TaskTransition implements superloop.Observer.
func (p *ChannelPublisher) TaskTransition(task string, from, to superloop.StateID, tick uint64) {
	_ = p.Publish(context.Background(), Transition{Task: task, From: from, To: to, Tick: tick})
}

// Dropped returns how many transitions were discarded because the channel was full.
func (p *ChannelPublisher) Dropped() uint64 {
	return p.dropped.Load()
}

func (p *ChannelPublisher) Close() error {
	close(p.ch)
	return nil
}

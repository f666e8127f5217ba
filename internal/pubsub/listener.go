package pubsub

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
)

// ContinuousListener adapts a broker subscription into bubbletea commands.
// Each Listen call waits for one event and delivers it as a tea.Msg; the
// model's Update must call Listen again after handling an event to keep
// the stream flowing.
type ContinuousListener[T any] struct {
	ctx context.Context
	ch  <-chan Event[T]
}

// NewContinuousListener subscribes to the broker for the lifetime of ctx.
func NewContinuousListener[T any](ctx context.Context, b *Broker[T]) *ContinuousListener[T] {
	return &ContinuousListener[T]{
		ctx: ctx,
		ch:  b.Subscribe(ctx),
	}
}

// Listen returns a command that blocks until the next event arrives.
// It yields nil once the subscription ends, which stops the re-arm cycle.
func (l *ContinuousListener[T]) Listen() tea.Cmd {
	return func() tea.Msg {
		select {
		case <-l.ctx.Done():
			return nil
		case ev, ok := <-l.ch:
			if !ok {
				return nil
			}
			return ev
		}
	}
}

// Package pubsub provides a small generic broker used to hand events from
// the guidance engine to the TUI without sharing mutable state across
// scheduling domains. The renderer only reads what it receives here.
package pubsub

import (
	"context"
	"sync"
)

// EventType names the kind of payload an Event carries.
type EventType string

// Event is a published message with its payload.
type Event[T any] struct {
	Type    EventType
	Payload T
}

// subscriberBuffer is the per-subscriber channel capacity. Publishing never
// blocks: if a subscriber falls this far behind, new events for it are
// dropped.
const subscriberBuffer = 256

// Broker fans published events out to all active subscribers.
type Broker[T any] struct {
	mu       sync.Mutex
	nextID   int
	subs     map[int]chan Event[T]
	shutdown bool
}

// NewBroker creates an empty broker.
func NewBroker[T any]() *Broker[T] {
	return &Broker[T]{
		subs: make(map[int]chan Event[T]),
	}
}

// Subscribe registers a new subscriber. The returned channel is closed when
// ctx is cancelled or the broker shuts down.
func (b *Broker[T]) Subscribe(ctx context.Context) <-chan Event[T] {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan Event[T], subscriberBuffer)
	if b.shutdown {
		close(ch)
		return ch
	}

	id := b.nextID
	b.nextID++
	b.subs[id] = ch

	go func() {
		<-ctx.Done()
		b.mu.Lock()
		defer b.mu.Unlock()
		if sub, ok := b.subs[id]; ok {
			delete(b.subs, id)
			close(sub)
		}
	}()

	return ch
}

// Publish delivers an event to every subscriber without blocking.
func (b *Broker[T]) Publish(t EventType, payload T) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, ch := range b.subs {
		select {
		case ch <- Event[T]{Type: t, Payload: payload}:
		default:
		}
	}
}

// Shutdown closes all subscriber channels. Publish becomes a no-op.
func (b *Broker[T]) Shutdown() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.shutdown {
		return
	}
	b.shutdown = true
	for id, ch := range b.subs {
		delete(b.subs, id)
		close(ch)
	}
}

package events

import (
	"context"
	"sync"

	"github.com/flagquest/flagnode/internal/adapter"
)

// Handler consumes one committed event. Handlers run synchronously in
// commit order; a handler must not block for long.
type Handler func(ctx context.Context, event Event)

// Bus fans committed core events out to subscribers. The contract delivers
// events only after a transaction commits, so subscribers never observe
// events from reverted transactions.
type Bus struct {
	mu       sync.RWMutex
	handlers []Handler
	clock    adapter.Clock
}

// NewBus creates a new event bus
func NewBus() *Bus {
	return &Bus{clock: adapter.NewClock()}
}

// Subscribe registers a handler for all committed events
func (b *Bus) Subscribe(h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers = append(b.handlers, h)
}

// Publish delivers a batch of committed events to every subscriber in order
func (b *Bus) Publish(ctx context.Context, batch []Event) {
	b.mu.RLock()
	handlers := b.handlers
	b.mu.RUnlock()

	now := b.clock.Now().UTC()
	for i := range batch {
		if batch[i].Timestamp.IsZero() {
			batch[i].Timestamp = now
		}
		for _, h := range handlers {
			h(ctx, batch[i])
		}
	}
}

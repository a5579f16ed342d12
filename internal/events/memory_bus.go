package events

import (
	"context"
	"sync"
)

// MemoryBus is a process-local Publisher+Subscriber used when redis is
// not configured, and in tests. Delivery is synchronous; subscriptions
// do not survive a restart.
type MemoryBus struct {
	mu       sync.RWMutex
	handlers map[string][]func(Event)
}

func NewMemoryBus() *MemoryBus {
	return &MemoryBus{handlers: make(map[string][]func(Event))}
}

func (b *MemoryBus) Publish(ctx context.Context, stream string, event Event) error {
	b.mu.RLock()
	hs := append(([]func(Event))(nil), b.handlers[stream]...)
	b.mu.RUnlock()

	for _, h := range hs {
		h(event)
	}
	return nil
}

func (b *MemoryBus) Subscribe(ctx context.Context, stream string, handler func(Event)) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[stream] = append(b.handlers[stream], handler)
	return nil
}

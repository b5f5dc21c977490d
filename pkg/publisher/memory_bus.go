package publisher

import (
	"context"
	"slices"
	"sync"
)

// MemoryBus is an in-process Bus for development and tests. Slow subscribers
// drop messages rather than blocking publishers.
type MemoryBus struct {
	mu     sync.RWMutex
	subs   map[*memorySubscription]struct{}
	closed bool
}

// NewMemoryBus creates an empty in-memory bus.
func NewMemoryBus() *MemoryBus {
	return &MemoryBus{
		subs: make(map[*memorySubscription]struct{}),
	}
}

func (b *MemoryBus) Publish(ctx context.Context, topic string, payload []byte) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return ErrClosed
	}
	for sub := range b.subs {
		if slices.Contains(sub.topics, topic) {
			sub.send(BusMessage{Topic: topic, Payload: payload})
		}
	}
	return nil
}

func (b *MemoryBus) Subscribe(ctx context.Context, topics ...string) (Subscription, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil, ErrClosed
	}
	sub := &memorySubscription{
		bus:    b,
		topics: slices.Clone(topics),
		ch:     make(chan BusMessage, 64),
	}
	b.subs[sub] = struct{}{}
	return sub, nil
}

func (b *MemoryBus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true
	for sub := range b.subs {
		sub.close()
	}
	clear(b.subs)
	return nil
}

func (b *MemoryBus) unsubscribe(sub *memorySubscription) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.subs, sub)
	sub.close()
}

type memorySubscription struct {
	bus    *MemoryBus
	topics []string
	ch     chan BusMessage

	mu     sync.Mutex
	closed bool
}

func (s *memorySubscription) Messages() <-chan BusMessage {
	return s.ch
}

func (s *memorySubscription) Close() error {
	s.bus.unsubscribe(s)
	return nil
}

func (s *memorySubscription) send(msg BusMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	select {
	case s.ch <- msg:
	default:
	}
}

func (s *memorySubscription) close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.closed {
		s.closed = true
		close(s.ch)
	}
}

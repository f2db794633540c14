package stream

import (
	"sync"
	"sync/atomic"
)

// DefaultBuffer is the per-subscriber queue depth used by Subscribe.
const DefaultBuffer = 1024

// Bus fans events out to subscribers. Publish never blocks: each subscriber
// has a bounded FIFO queue, and a subscriber that falls behind loses events
// (counted on the subscription) rather than stalling the publisher. Events a
// subscriber does receive arrive in emission order.
type Bus struct {
	mu     sync.Mutex
	subs   map[*Subscription]struct{}
	closed bool
}

// Subscription is one listener's view of the bus.
type Subscription struct {
	bus     *Bus
	ch      chan Event
	dropped atomic.Uint64
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{subs: make(map[*Subscription]struct{})}
}

// Subscribe attaches a listener with the given queue depth (DefaultBuffer if
// buffer <= 0). The caller drains Events() until it is closed.
func (b *Bus) Subscribe(buffer int) *Subscription {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	s := &Subscription{bus: b, ch: make(chan Event, buffer)}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		close(s.ch)
		return s
	}
	b.subs[s] = struct{}{}
	return s
}

// Events returns the subscription's delivery channel. It is closed when the
// subscription is cancelled or the bus shuts down.
func (s *Subscription) Events() <-chan Event { return s.ch }

// Dropped reports how many events were discarded because the subscriber's
// queue was full.
func (s *Subscription) Dropped() uint64 { return s.dropped.Load() }

// Cancel detaches the subscription and closes its channel.
func (s *Subscription) Cancel() {
	s.bus.mu.Lock()
	defer s.bus.mu.Unlock()
	if _, ok := s.bus.subs[s]; ok {
		delete(s.bus.subs, s)
		close(s.ch)
	}
}

// Publish delivers the event to every subscriber without blocking.
func (b *Bus) Publish(e Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	for s := range b.subs {
		select {
		case s.ch <- e:
		default:
			s.dropped.Add(1)
		}
	}
}

// Close shuts the bus down and closes every subscriber channel. Further
// publishes are no-ops.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for s := range b.subs {
		close(s.ch)
	}
	b.subs = make(map[*Subscription]struct{})
}

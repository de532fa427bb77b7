package events

import (
	"sync"

	"github.com/fredcamaral/slishow/internal/domain/entities"
	"github.com/fredcamaral/slishow/internal/domain/ports"
)

// Bus is the in-process interaction event bus. Publish dispatches
// synchronously in subscription order and stops at a consumed event.
// A subscription canceled while a publish is in flight can still
// receive that publish; handlers guard on their own liveness.
type Bus struct {
	mu   sync.RWMutex
	subs []*subscription
}

type subscription struct {
	bus       *Bus
	eventType entities.EventType
	handler   ports.EventHandler
	canceled  bool
}

// NewBus creates an empty event bus
func NewBus() *Bus {
	return &Bus{}
}

// Subscribe registers a handler for one event type
func (b *Bus) Subscribe(t entities.EventType, h ports.EventHandler) ports.Subscription {
	sub := &subscription{bus: b, eventType: t, handler: h}

	b.mu.Lock()
	b.subs = append(b.subs, sub)
	b.mu.Unlock()

	return sub
}

// Publish dispatches an event to matching handlers. Handlers run on
// the publishing goroutine, outside any bus lock, so they are free to
// subscribe or cancel.
func (b *Bus) Publish(event *entities.Event) {
	if event == nil {
		return
	}

	b.mu.RLock()
	snapshot := make([]*subscription, len(b.subs))
	copy(snapshot, b.subs)
	b.mu.RUnlock()

	for _, sub := range snapshot {
		if sub.eventType != event.Type {
			continue
		}
		if event.Consumed() {
			return
		}

		b.mu.RLock()
		canceled := sub.canceled
		b.mu.RUnlock()
		if canceled {
			continue
		}

		sub.handler(event)
	}
}

// Cancel removes the subscription. Canceling twice is a no-op.
func (s *subscription) Cancel() {
	s.bus.mu.Lock()
	defer s.bus.mu.Unlock()

	s.canceled = true
	for i, sub := range s.bus.subs {
		if sub == s {
			s.bus.subs = append(s.bus.subs[:i], s.bus.subs[i+1:]...)
			return
		}
	}
}

var (
	_ ports.EventRegistrar = (*Bus)(nil)
	_ ports.Subscription   = (*subscription)(nil)
)

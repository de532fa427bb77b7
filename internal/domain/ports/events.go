package ports

import "github.com/fredcamaral/slishow/internal/domain/entities"

// EventHandler processes one interaction event. Handlers that act on
// the event call Consume to stop further dispatch.
type EventHandler func(event *entities.Event)

// Subscription is the handle to one registered handler
type Subscription interface {
	// Cancel removes the handler. Cancelling twice is a no-op.
	Cancel()
}

// EventRegistrar routes interaction events to subscribed handlers.
// Subscriptions are keyed by event type; handlers receive every event
// of that type and decide relevance themselves (containment checks,
// target resolution).
type EventRegistrar interface {
	// Subscribe registers a handler for an event type and returns its
	// subscription handle
	Subscribe(t entities.EventType, h EventHandler) Subscription

	// Publish dispatches an event to subscribed handlers in
	// subscription order, stopping once the event is consumed
	Publish(event *entities.Event)
}

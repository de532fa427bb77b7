package entities

// EventType identifies a class of interaction events relayed from
// connected clients or raised internally.
type EventType string

const (
	EventClick     EventType = "click"
	EventKeyDown   EventType = "keydown"
	EventMouseOver EventType = "mouseover"
	EventMouseOut  EventType = "mouseout"
	EventResize    EventType = "resize"
)

// Key names follow the browser KeyboardEvent.key convention.
const (
	KeyArrowLeft  = "ArrowLeft"
	KeyArrowRight = "ArrowRight"
)

// Event is a single interaction event. TargetID names the element the
// event was dispatched on; it is empty for window-level events such as
// resize.
type Event struct {
	Type     EventType `json:"type"`
	TargetID string    `json:"target_id,omitempty"`
	Key      string    `json:"key,omitempty"`
	Viewport *Viewport `json:"viewport,omitempty"`

	consumed bool
}

// Consume marks the event as handled. Dispatch stops at a consumed
// event, and the relaying client suppresses the browser default.
func (e *Event) Consume() {
	e.consumed = true
}

// Consumed reports whether a handler has consumed the event
func (e *Event) Consumed() bool {
	return e.consumed
}

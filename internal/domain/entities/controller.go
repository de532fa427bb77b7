package entities

// AutoplayState is the autoplay timer state
type AutoplayState string

const (
	// AutoplayStopped means no advance is pending
	AutoplayStopped AutoplayState = "stopped"

	// AutoplayScheduled means exactly one advance timer is pending
	AutoplayScheduled AutoplayState = "scheduled"
)

// ControllerState is a snapshot of the slide controller, served to
// clients and broadcast after every accepted transition
type ControllerState struct {
	Index       int           `json:"index"`
	Count       int           `json:"count"`
	Locked      bool          `json:"locked"`
	Autoplay    AutoplayState `json:"autoplay"`
	Interacting bool          `json:"interacting"`
}

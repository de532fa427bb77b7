package ports

import "github.com/fredcamaral/slishow/internal/domain/entities"

// ViewportQuery exposes the latest known viewport geometry. The zero
// Viewport fails the in-view check, which keeps keyboard navigation
// inert until a client has reported where the container sits.
type ViewportQuery interface {
	Geometry() entities.Viewport
}

// Capabilities describes the active client's input capabilities
type Capabilities interface {
	// Touch reports whether the client is touch-capable. Touch clients
	// skip hover-based autoplay suspension.
	Touch() bool
}

// ViewportSink records viewport reports arriving from clients. The
// WebSocket adapter writes here; ViewportQuery and Capabilities read
// the latest values back.
type ViewportSink interface {
	SetGeometry(v entities.Viewport)
	SetTouch(touch bool)
}

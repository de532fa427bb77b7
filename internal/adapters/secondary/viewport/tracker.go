package viewport

import (
	"sync"

	"github.com/fredcamaral/slishow/internal/domain/entities"
	"github.com/fredcamaral/slishow/internal/domain/ports"
)

// Tracker records viewport reports from connected clients and serves
// the latest one back to the controller. With several clients the last
// reporter wins: the presentation is treated as a single surface.
type Tracker struct {
	mu    sync.RWMutex
	geo   entities.Viewport
	touch bool
}

// NewTracker creates a tracker with no geometry. The zero geometry
// fails the in-view check, which keeps keyboard navigation inert until
// a client has reported where the container sits.
func NewTracker() *Tracker {
	return &Tracker{}
}

// SetGeometry records a viewport report
func (t *Tracker) SetGeometry(v entities.Viewport) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.geo = v
}

// SetTouch records the client's touch capability
func (t *Tracker) SetTouch(touch bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.touch = touch
}

// Geometry returns the latest viewport report
func (t *Tracker) Geometry() entities.Viewport {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.geo
}

// Touch reports whether the active client is touch-capable
func (t *Tracker) Touch() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.touch
}

var (
	_ ports.ViewportQuery = (*Tracker)(nil)
	_ ports.Capabilities  = (*Tracker)(nil)
	_ ports.ViewportSink  = (*Tracker)(nil)
)

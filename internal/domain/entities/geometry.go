package entities

// Rect is an axis-aligned rectangle in viewport coordinates, following
// the DOMRect convention: Top/Left are the upper-left corner relative to
// the viewport origin, so Top is negative when the element is scrolled
// partly above the viewport.
type Rect struct {
	Top    float64 `json:"top"`
	Left   float64 `json:"left"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Bottom returns the bottom edge of the rectangle
func (r Rect) Bottom() float64 {
	return r.Top + r.Height
}

// Right returns the right edge of the rectangle
func (r Rect) Right() float64 {
	return r.Left + r.Width
}

// InViewport reports whether any part of the rectangle overlaps a
// viewport of the given height: the top edge is above the viewport
// bottom and the bottom edge is below the viewport top.
func (r Rect) InViewport(viewportHeight float64) bool {
	return r.Top < viewportHeight && r.Bottom() > 0
}

// Viewport captures the client-reported geometry the keyboard in-view
// check depends on. The zero value fails the in-view check, so keyboard
// navigation stays off until a client has reported its geometry.
type Viewport struct {
	Height    float64 `json:"height"`
	Container Rect    `json:"container"`
}

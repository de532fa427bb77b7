package ports

import (
	"context"

	"github.com/fredcamaral/slishow/internal/domain/entities"
)

// Engine is the assembled presentation runtime: the loaded slideshow,
// its container document, and the live controller driving the active
// slide. The HTTP adapter reads from it; the relayout service rebuilds
// it when the source file changes.
type Engine interface {
	// Build loads the slideshow source, renders the container document,
	// and brings up a live controller over it
	Build(ctx context.Context) error

	// Rebuild replaces the document and controller after a source
	// change. The previous controller is destroyed first.
	Rebuild(ctx context.Context) error

	// Slideshow returns the currently loaded slideshow, or nil before
	// the first successful Build
	Slideshow() *entities.Slideshow

	// ContainerHTML serializes the current container document,
	// including the active markers as they stand
	ContainerHTML() (string, error)

	// Navigator returns the live controller's navigation surface, or
	// nil before the first successful Build
	Navigator() SlideNavigator

	// Options returns the effective slideshow options
	Options() entities.SlideshowConfig

	// Publish delivers a client interaction event to the engine's
	// event bus
	Publish(event *entities.Event)

	// Destroy tears down the live controller and its timers
	Destroy()
}

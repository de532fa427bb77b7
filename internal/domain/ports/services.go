package ports

import (
	"context"

	"github.com/fredcamaral/slishow/internal/domain/entities"
)

// RenderedSlide represents a slide after rendering
type RenderedSlide struct {
	Slide *entities.Slide
	HTML  string
}

// SlideshowParser defines the interface for parsing markdown slideshows
type SlideshowParser interface {
	// Parse converts markdown content into a slideshow
	Parse(content []byte) (*entities.Slideshow, error)
}

// SlideRenderer defines the interface for rendering slides to HTML
type SlideRenderer interface {
	// RenderSlide converts a slide's markdown content to HTML
	RenderSlide(slide *entities.Slide) (*RenderedSlide, error)
}

// SlideshowService defines the main service interface for slideshows
type SlideshowService interface {
	// LoadSlideshow loads a slideshow from a file path
	LoadSlideshow(ctx context.Context, path string) (*entities.Slideshow, error)

	// ParseSlideshow parses markdown content into a slideshow
	ParseSlideshow(ctx context.Context, content []byte) (*entities.Slideshow, error)

	// RenderSlides renders all slides in a slideshow
	RenderSlides(ctx context.Context, slideshow *entities.Slideshow) ([]RenderedSlide, error)

	// WatchSlideshow watches a slideshow file for changes
	WatchSlideshow(ctx context.Context, path string) (<-chan FileChangeEvent, error)
}

// SlideNavigator is the navigation surface of the slide controller,
// used by the HTTP adapter for the state and navigate endpoints
type SlideNavigator interface {
	// Index returns the current slide index
	Index() int

	// Count returns the number of discovered slides
	Count() int

	// Next requests an advance to index+1 and reports acceptance
	Next() bool

	// Previous requests a retreat to index-1 and reports acceptance
	Previous() bool

	// RequestIndex requests a specific index and reports acceptance
	RequestIndex(n int) bool

	// State returns a snapshot of the controller state
	State() entities.ControllerState
}

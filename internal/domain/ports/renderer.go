package ports

import (
	"context"

	"github.com/fredcamaral/slishow/internal/domain/entities"
)

// Renderer defines the interface for rendering the container document
// and individual slides
type Renderer interface {
	// RenderContainer produces the slideshow container document: the
	// root element wrapping the slide set, controls, and indicators
	RenderContainer(ctx context.Context, slideshow *entities.Slideshow) ([]byte, error)

	// RenderSlide produces the markup for a single slide
	RenderSlide(ctx context.Context, slide *entities.Slide) ([]byte, error)

	// RenderPage produces the full page shell delivered to browsers,
	// embedding the container document and the client bootstrap script
	RenderPage(ctx context.Context, page PageData) ([]byte, error)
}

// PageData carries everything the page shell template needs
type PageData struct {
	Title         string
	ContainerHTML string
	StylesCSS     string
	WebSocketPath string
}

package renderer

import (
	"context"
	"errors"
	"fmt"

	"github.com/microcosm-cc/bluemonday"

	"github.com/fredcamaral/slishow/internal/domain/entities"
	"github.com/fredcamaral/slishow/internal/domain/ports"
)

// SlideRendererAdapter turns slide markdown into sanitized HTML. It
// leans on the markdown parser for the conversion itself so both
// render paths share one Goldmark configuration.
type SlideRendererAdapter struct {
	md        ports.MarkdownParser
	sanitizer *bluemonday.Policy
}

// NewSlideRendererAdapter creates a slide renderer on top of md.
func NewSlideRendererAdapter(md ports.MarkdownParser) *SlideRendererAdapter {
	return &SlideRendererAdapter{
		md:        md,
		sanitizer: newRenderPolicy(),
	}
}

// RenderSlide converts a slide's markdown content to sanitized HTML.
// Slides that already carry HTML pass through untouched.
func (r *SlideRendererAdapter) RenderSlide(slide *entities.Slide) (*ports.RenderedSlide, error) {
	if slide == nil {
		return nil, errors.New("slide cannot be nil")
	}

	if slide.HTML != "" {
		return &ports.RenderedSlide{Slide: slide, HTML: slide.HTML}, nil
	}

	// The image declaration is layout data, not slide text.
	raw, err := r.md.Render(context.Background(), []byte(slide.ContentWithoutImage()))
	if err != nil {
		return nil, fmt.Errorf("rendering markdown: %w", err)
	}

	return &ports.RenderedSlide{
		Slide: slide,
		HTML:  r.sanitizer.Sanitize(string(raw)),
	}, nil
}

// newRenderPolicy builds the sanitization policy for rendered slide
// markup. It allows the structural and inline elements Goldmark emits
// and nothing that can run script or restyle the page.
func newRenderPolicy() *bluemonday.Policy {
	p := bluemonday.NewPolicy()

	p.AllowElements(
		"h1", "h2", "h3", "h4", "h5", "h6",
		"p", "br", "hr",
		"strong", "b", "em", "i", "u", "s", "mark", "del",
		"ul", "ol", "li",
		"blockquote", "pre", "code",
		"a", "img",
		"table", "thead", "tbody", "tr", "th", "td",
		"div", "span",
	)
	p.AllowAttrs("href").OnElements("a")
	p.AllowAttrs("src", "alt", "title").OnElements("img")
	p.AllowAttrs("class").OnElements("div", "span")
	p.AllowAttrs("type", "checked", "disabled").OnElements("input")
	p.AllowAttrs("class", "id").OnElements("h1", "h2", "h3", "h4", "h5", "h6", "p", "div", "span")

	return p
}

var _ ports.SlideRenderer = (*SlideRendererAdapter)(nil)

package parser

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"

	"github.com/fredcamaral/slishow/internal/domain/entities"
	"github.com/fredcamaral/slishow/internal/domain/ports"
)

// SlideshowParserAdapter adapts the MarkdownParser to the
// SlideshowParser interface, building slideshow entities with
// sanitized per-slide HTML
type SlideshowParserAdapter struct {
	markdownParser ports.MarkdownParser
}

// NewSlideshowParserAdapter creates a new slideshow parser adapter
func NewSlideshowParserAdapter(markdownParser ports.MarkdownParser) *SlideshowParserAdapter {
	return &SlideshowParserAdapter{markdownParser: markdownParser}
}

// Parse implements the SlideshowParser interface
func (p *SlideshowParserAdapter) Parse(content []byte) (*entities.Slideshow, error) {
	ctx := context.Background()

	// Parse markdown content
	parsed, err := p.markdownParser.Parse(ctx, content)
	if err != nil {
		return nil, fmt.Errorf("parsing markdown: %w", err)
	}

	// Create slideshow from parsed content
	slideshow := &entities.Slideshow{
		ID:       uuid.New().String(),
		Metadata: parsed.Frontmatter,
		Slides:   make([]entities.Slide, 0, len(parsed.Slides)),
	}

	// Extract metadata
	if title, ok := getStringFromMap(parsed.Frontmatter, "title"); ok {
		slideshow.Title = title
	}
	if author, ok := getStringFromMap(parsed.Frontmatter, "author"); ok {
		slideshow.Author = author
	}
	if date, ok := getDateFromMap(parsed.Frontmatter, "date"); ok {
		slideshow.Date = date
	}

	// If no date is set, use current date
	if slideshow.Date.IsZero() {
		slideshow.Date = time.Now()
	}

	// Convert raw slides to domain entities
	for _, rawSlide := range parsed.Slides {
		slide := entities.Slide{
			ID:      uuid.New().String(),
			Index:   rawSlide.Index,
			Content: rawSlide.Content,
			Image:   rawSlide.Image,
		}

		// Extract title from content
		slide.Title = slide.ExtractTitle()

		// Render and sanitize HTML content
		htmlContent, err := p.renderMarkdown(ctx, rawSlide.Content)
		if err != nil {
			return nil, fmt.Errorf("rendering slide %d: %w", rawSlide.Index, err)
		}
		slide.HTML = htmlContent

		slideshow.Slides = append(slideshow.Slides, slide)
	}

	// A frontmatterless file still makes a valid slideshow
	if slideshow.Title == "" {
		slideshow.Title = "Untitled Slideshow"
	}

	// Validate the slideshow
	if err := slideshow.Validate(); err != nil {
		return nil, fmt.Errorf("invalid slideshow: %w", err)
	}

	return slideshow, nil
}

// renderMarkdown renders markdown content to sanitized HTML
func (p *SlideshowParserAdapter) renderMarkdown(ctx context.Context, content string) (string, error) {
	raw, err := p.markdownParser.Render(ctx, []byte(content))
	if err != nil {
		return "", fmt.Errorf("rendering markdown: %w", err)
	}
	return slideSanitizer.Sanitize(string(raw)), nil
}

// getStringFromMap safely extracts a string value from a map
func getStringFromMap(m map[string]interface{}, key string) (string, bool) {
	if m == nil {
		return "", false
	}

	val, exists := m[key]
	if !exists {
		return "", false
	}

	str, ok := val.(string)
	return str, ok
}

// getDateFromMap extracts a date that YAML may have decoded either as
// a timestamp or as a plain string
func getDateFromMap(m map[string]interface{}, key string) (time.Time, bool) {
	if m == nil {
		return time.Time{}, false
	}

	switch val := m[key].(type) {
	case time.Time:
		return val, true
	case string:
		if date, err := time.Parse("2006-01-02", val); err == nil {
			return date, true
		}
	}
	return time.Time{}, false
}

// newSlidePolicy builds the sanitization policy applied to rendered
// slide markup. It allows the structural and inline elements Goldmark
// emits and nothing that can run script or restyle the page.
func newSlidePolicy() *bluemonday.Policy {
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

var slideSanitizer = newSlidePolicy()

var _ ports.SlideshowParser = (*SlideshowParserAdapter)(nil)

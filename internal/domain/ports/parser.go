package ports

import (
	"context"
)

// MarkdownParser understands the slideshow source dialect. Parse
// splits a source file into frontmatter and slide chunks; Render turns
// one slide's markdown into HTML. Render output is not sanitized.
type MarkdownParser interface {
	Parse(ctx context.Context, content []byte) (*ParsedContent, error)
	Render(ctx context.Context, markdown []byte) ([]byte, error)
}

// ParsedContent is the parse result for one slideshow source file
type ParsedContent struct {
	Frontmatter map[string]interface{}
	Slides      []RawSlide
}

// RawSlide is one slide's markdown before rendering
type RawSlide struct {
	Content string
	Image   string
	Index   int
}

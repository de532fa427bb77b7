package entities

import (
	"errors"
	"strconv"
	"strings"
)

// imagePrefix marks an image declaration line in slide source.
const imagePrefix = "image:"

// Slide is a single slide in a slideshow.
type Slide struct {
	// ID uniquely identifies the slide
	ID string `json:"id,omitempty"`

	// Index is the zero-based slide position
	Index int `json:"index"`

	// Title comes from the first H1 heading, or is generated
	Title string `json:"title"`

	// Content is the slide's raw markdown
	Content string `json:"content"`

	// HTML is the rendered markup, filled in by the render step
	HTML string `json:"html,omitempty"`

	// Image is the slide image URL declared with the image shorthand
	Image string `json:"image,omitempty"`

	// Metadata carries slide-level frontmatter when present
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

// Validate checks that the slide is renderable.
func (s *Slide) Validate() error {
	if s.Index < 0 {
		return errors.New("slide index must be non-negative")
	}
	if strings.TrimSpace(s.Content) == "" && s.Image == "" {
		return errors.New("slide must have content or an image")
	}
	return nil
}

// ExtractTitle pulls the title from the first H1 heading, falling back
// to a positional name.
func (s *Slide) ExtractTitle() string {
	for _, line := range strings.Split(s.Content, "\n") {
		if title, ok := strings.CutPrefix(strings.TrimSpace(line), "# "); ok {
			return title
		}
	}
	return "Slide " + strconv.Itoa(s.Index+1)
}

// HasImage reports whether the slide declares an image.
func (s *Slide) HasImage() bool {
	return strings.TrimSpace(s.Image) != ""
}

// ContentWithoutImage strips image declaration lines from the content,
// leaving what should actually render as text.
func (s *Slide) ContentWithoutImage() string {
	lines := strings.Split(s.Content, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if !strings.HasPrefix(strings.TrimSpace(line), imagePrefix) {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}

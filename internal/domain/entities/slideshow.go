package entities

import (
	"errors"
	"fmt"
	"time"
)

// Class names of the rendered container document, shared between the
// renderer that emits them and the engine that queries for them. The
// configurable selectors in SlideshowConfig default to these.
const (
	ContainerClass = "slideshow"
	SlideClass     = "slide"
	IndicatorClass = "indicator"
	PreviousClass  = "previous"
	NextClass      = "next"
)

// SyntheticIDAttr is the attribute carrying stamped element
// identifiers. It is part of the client protocol: browsers report
// event targets by this attribute's value.
const SyntheticIDAttr = "data-ss-id"

// Slideshow represents a complete slideshow with metadata and slides
type Slideshow struct {
	// ID is a unique identifier for the slideshow
	ID string `yaml:"-" json:"id,omitempty"`

	// Title is the slideshow title
	Title string `yaml:"title" json:"title"`

	// Author is the slideshow creator
	Author string `yaml:"author" json:"author"`

	// Date is when the slideshow was created/updated
	Date time.Time `yaml:"date" json:"date"`

	// Metadata contains any additional frontmatter fields
	Metadata map[string]interface{} `yaml:",inline" json:"metadata,omitempty"`

	// Slides contains all slides in display order
	Slides []Slide `yaml:"-" json:"slides"`
}

// Validate ensures the slideshow has valid required fields
func (s *Slideshow) Validate() error {
	if s.Title == "" {
		return errors.New("slideshow title is required")
	}

	if len(s.Slides) == 0 {
		return errors.New("slideshow must have at least one slide")
	}

	// Validate each slide
	for i, slide := range s.Slides {
		if err := slide.Validate(); err != nil {
			return fmt.Errorf("slide %d validation failed: %w", i+1, err)
		}
	}

	return nil
}

// GetSlideByIndex returns a slide by its index (0-based)
func (s *Slideshow) GetSlideByIndex(index int) (*Slide, error) {
	if index < 0 || index >= len(s.Slides) {
		return nil, fmt.Errorf("slide index %d out of range (0-%d)", index, len(s.Slides)-1)
	}
	return &s.Slides[index], nil
}

// SlideCount returns the total number of slides
func (s *Slideshow) SlideCount() int {
	return len(s.Slides)
}

package builders

import (
	"strconv"
	"time"

	"github.com/fredcamaral/slishow/internal/domain/entities"
)

// SlideshowBuilder helps build Slideshow entities for testing
type SlideshowBuilder struct {
	slideshow *entities.Slideshow
}

// NewSlideshowBuilder creates a new slideshow builder with sensible defaults
func NewSlideshowBuilder() *SlideshowBuilder {
	return &SlideshowBuilder{
		slideshow: &entities.Slideshow{
			ID:       "test-slideshow",
			Title:    "Test Slideshow",
			Author:   "Test Author",
			Date:     time.Now(),
			Slides:   []entities.Slide{},
			Metadata: make(map[string]interface{}),
		},
	}
}

// WithTitle sets the slideshow title
func (b *SlideshowBuilder) WithTitle(title string) *SlideshowBuilder {
	b.slideshow.Title = title
	return b
}

// WithAuthor sets the slideshow author
func (b *SlideshowBuilder) WithAuthor(author string) *SlideshowBuilder {
	b.slideshow.Author = author
	return b
}

// WithDate sets the slideshow date
func (b *SlideshowBuilder) WithDate(date time.Time) *SlideshowBuilder {
	b.slideshow.Date = date
	return b
}

// WithSlides sets the slideshow slides
func (b *SlideshowBuilder) WithSlides(slides []entities.Slide) *SlideshowBuilder {
	b.slideshow.Slides = slides
	return b
}

// WithSlide adds a single slide to the slideshow
func (b *SlideshowBuilder) WithSlide(slide entities.Slide) *SlideshowBuilder {
	b.slideshow.Slides = append(b.slideshow.Slides, slide)
	return b
}

// WithSlideCount adds the specified number of default slides
func (b *SlideshowBuilder) WithSlideCount(count int) *SlideshowBuilder {
	for i := 0; i < count; i++ {
		slide := NewSlideBuilder().
			WithID(i + 1).
			WithTitle("Slide " + strconv.Itoa(i+1)).
			Build()
		b.slideshow.Slides = append(b.slideshow.Slides, slide)
	}
	return b
}

// WithMetadata sets custom metadata
func (b *SlideshowBuilder) WithMetadata(key string, value interface{}) *SlideshowBuilder {
	if b.slideshow.Metadata == nil {
		b.slideshow.Metadata = make(map[string]interface{})
	}
	b.slideshow.Metadata[key] = value
	return b
}

// Build creates the final Slideshow entity
func (b *SlideshowBuilder) Build() *entities.Slideshow {
	// Deep copy to prevent mutation
	return &entities.Slideshow{
		ID:       b.slideshow.ID,
		Title:    b.slideshow.Title,
		Author:   b.slideshow.Author,
		Date:     b.slideshow.Date,
		Slides:   append([]entities.Slide{}, b.slideshow.Slides...),
		Metadata: copyMetadata(b.slideshow.Metadata),
	}
}

// SlideBuilder helps build Slide entities for testing
type SlideBuilder struct {
	slide *entities.Slide
}

// NewSlideBuilder creates a new slide builder with sensible defaults
func NewSlideBuilder() *SlideBuilder {
	return &SlideBuilder{
		slide: &entities.Slide{
			ID:       "slide-1",
			Index:    0,
			Title:    "Test Slide",
			Content:  "# Test Slide\n\nTest content",
			HTML:     "<h1>Test Slide</h1>",
			Metadata: make(map[string]interface{}),
		},
	}
}

// WithID sets the slide ID
func (b *SlideBuilder) WithID(id int) *SlideBuilder {
	b.slide.ID = "slide-" + strconv.Itoa(id)
	b.slide.Index = id - 1 // Convert to 0-based index
	return b
}

// WithIndex sets the slide index directly
func (b *SlideBuilder) WithIndex(index int) *SlideBuilder {
	b.slide.Index = index
	return b
}

// WithTitle sets the slide title and content
func (b *SlideBuilder) WithTitle(title string) *SlideBuilder {
	b.slide.Title = title
	b.slide.Content = "# " + title + "\n\nTest content"
	b.slide.HTML = "<h1>" + title + "</h1>"
	return b
}

// WithContent sets the raw markdown content
func (b *SlideBuilder) WithContent(content string) *SlideBuilder {
	b.slide.Content = content
	return b
}

// WithHTML sets the slide HTML content
func (b *SlideBuilder) WithHTML(html string) *SlideBuilder {
	b.slide.HTML = html
	return b
}

// WithImage sets the slide's primary image URL
func (b *SlideBuilder) WithImage(src string) *SlideBuilder {
	b.slide.Image = src
	return b
}

// WithMetadata sets custom metadata
func (b *SlideBuilder) WithMetadata(key string, value interface{}) *SlideBuilder {
	if b.slide.Metadata == nil {
		b.slide.Metadata = make(map[string]interface{})
	}
	b.slide.Metadata[key] = value
	return b
}

// Build creates the final Slide entity
func (b *SlideBuilder) Build() entities.Slide {
	return entities.Slide{
		ID:       b.slide.ID,
		Index:    b.slide.Index,
		Title:    b.slide.Title,
		Content:  b.slide.Content,
		HTML:     b.slide.HTML,
		Image:    b.slide.Image,
		Metadata: copyMetadata(b.slide.Metadata),
	}
}

// copyMetadata creates a deep copy of metadata map
func copyMetadata(original map[string]interface{}) map[string]interface{} {
	if original == nil {
		return nil
	}
	copy := make(map[string]interface{})
	for k, v := range original {
		copy[k] = v
	}
	return copy
}

// Common slideshow shapes for testing

// MinimalSlideshow creates a minimal slideshow for basic tests
func MinimalSlideshow() *entities.Slideshow {
	return NewSlideshowBuilder().
		WithTitle("Minimal").
		WithSlideCount(1).
		Build()
}

// LargeSlideshow creates a slideshow with many slides for performance tests
func LargeSlideshow() *entities.Slideshow {
	return NewSlideshowBuilder().
		WithTitle("Large Slideshow").
		WithSlideCount(50).
		Build()
}

// SlideshowWithImages creates a slideshow whose slides declare images
func SlideshowWithImages() *entities.Slideshow {
	return NewSlideshowBuilder().
		WithTitle("Gallery").
		WithSlide(NewSlideBuilder().WithID(1).WithTitle("One").WithImage("/assets/one.png").Build()).
		WithSlide(NewSlideBuilder().WithID(2).WithTitle("Two").WithImage("/assets/two.png").Build()).
		Build()
}

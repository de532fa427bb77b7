package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fredcamaral/slishow/internal/domain/entities"
	"github.com/fredcamaral/slishow/internal/domain/ports"
)

// SlideshowService implements the business logic for slideshows
type SlideshowService struct {
	repo     ports.SlideshowRepository
	parser   ports.SlideshowParser
	renderer ports.SlideRenderer
}

// NewSlideshowService creates a new slideshow service instance
func NewSlideshowService(
	repo ports.SlideshowRepository,
	parser ports.SlideshowParser,
	renderer ports.SlideRenderer,
) *SlideshowService {
	return &SlideshowService{
		repo:     repo,
		parser:   parser,
		renderer: renderer,
	}
}

// LoadSlideshow loads a slideshow from a file path
func (s *SlideshowService) LoadSlideshow(ctx context.Context, path string) (*entities.Slideshow, error) {
	if path == "" {
		return nil, errors.New("slideshow path cannot be empty")
	}

	// Check if file exists
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("slideshow file not found: %s", path)
		}
		return nil, fmt.Errorf("checking slideshow file: %w", err)
	}

	// Load slideshow through repository
	slideshow, err := s.repo.Load(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("loading slideshow: %w", err)
	}

	// Validate the loaded slideshow
	if err := slideshow.Validate(); err != nil {
		return nil, fmt.Errorf("invalid slideshow: %w", err)
	}

	// Set slide titles
	for i := range slideshow.Slides {
		slideshow.Slides[i].Title = slideshow.Slides[i].ExtractTitle()
	}

	return slideshow, nil
}

// ParseSlideshow parses markdown content into a slideshow
func (s *SlideshowService) ParseSlideshow(ctx context.Context, content []byte) (*entities.Slideshow, error) {
	if len(content) == 0 {
		return nil, errors.New("slideshow content cannot be empty")
	}

	slideshow, err := s.parser.Parse(content)
	if err != nil {
		return nil, fmt.Errorf("parsing slideshow: %w", err)
	}

	// Validate the parsed slideshow
	if err := slideshow.Validate(); err != nil {
		return nil, fmt.Errorf("invalid slideshow: %w", err)
	}

	// Set slide titles and indices
	for i := range slideshow.Slides {
		slideshow.Slides[i].Index = i
		slideshow.Slides[i].Title = slideshow.Slides[i].ExtractTitle()
	}

	return slideshow, nil
}

// RenderSlides renders all slides in a slideshow
func (s *SlideshowService) RenderSlides(ctx context.Context, slideshow *entities.Slideshow) ([]ports.RenderedSlide, error) {
	if slideshow == nil {
		return nil, errors.New("slideshow cannot be nil")
	}

	rendered := make([]ports.RenderedSlide, 0, len(slideshow.Slides))

	for i := range slideshow.Slides {
		slide := &slideshow.Slides[i]

		renderedSlide, err := s.renderer.RenderSlide(slide)
		if err != nil {
			return nil, fmt.Errorf("rendering slide %d: %w", i+1, err)
		}

		rendered = append(rendered, *renderedSlide)
	}

	return rendered, nil
}

// WatchSlideshow watches a slideshow file for changes
func (s *SlideshowService) WatchSlideshow(ctx context.Context, path string) (<-chan ports.FileChangeEvent, error) {
	if path == "" {
		return nil, errors.New("slideshow path cannot be empty")
	}

	repoEvents, err := s.repo.Watch(ctx, path)
	if err != nil {
		return nil, err
	}

	// Convert repository events to file change events
	fileEvents := make(chan ports.FileChangeEvent)
	go func() {
		defer close(fileEvents)
		for repoEvent := range repoEvents {
			// Map repository event to file change event
			var changeType ports.ChangeType
			switch repoEvent.Operation {
			case "create":
				changeType = ports.Created
			case "update":
				changeType = ports.Modified
			case "delete":
				changeType = ports.Deleted
			default:
				changeType = ports.Modified
			}

			fileEvent := ports.FileChangeEvent{
				Path:      repoEvent.Path,
				Type:      changeType,
				Timestamp: time.Now(),
			}

			select {
			case fileEvents <- fileEvent:
			case <-ctx.Done():
				return
			}
		}
	}()

	return fileEvents, nil
}

// LoadSlideshowFromReader loads a slideshow from an io.Reader
func (s *SlideshowService) LoadSlideshowFromReader(ctx context.Context, reader io.Reader) (*entities.Slideshow, error) {
	if reader == nil {
		return nil, errors.New("reader cannot be nil")
	}

	content, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("reading content: %w", err)
	}

	return s.ParseSlideshow(ctx, content)
}

package repository

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/fredcamaral/slishow/internal/domain/entities"
	"github.com/fredcamaral/slishow/internal/domain/ports"
)

// MarkdownRepository loads slideshows from markdown files on disk and
// watches them for changes
type MarkdownRepository struct {
	parser  ports.SlideshowParser
	watcher ports.FileWatcher
}

// NewMarkdownRepository creates a new file-backed slideshow repository
func NewMarkdownRepository(parser ports.SlideshowParser, watcher ports.FileWatcher) *MarkdownRepository {
	return &MarkdownRepository{
		parser:  parser,
		watcher: watcher,
	}
}

// Load reads and parses a slideshow from the given path
func (r *MarkdownRepository) Load(ctx context.Context, path string) (*entities.Slideshow, error) {
	// Validate the path before reading
	fileInfo, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("accessing slideshow file: %w", err)
	}
	if !fileInfo.Mode().IsRegular() {
		return nil, fmt.Errorf("slideshow path is not a regular file: %s", path)
	}

	content, err := os.ReadFile(path) // #nosec G304 - path validated above
	if err != nil {
		return nil, fmt.Errorf("reading slideshow file: %w", err)
	}

	slideshow, err := r.parser.Parse(content)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", filepath.Base(path), err)
	}

	// Files without a frontmatter title borrow their name from the file
	if _, ok := slideshow.Metadata["title"]; !ok {
		slideshow.Title = titleFromPath(path)
	}

	return slideshow, nil
}

// Watch monitors the slideshow file and reports changes until the
// context is cancelled
func (r *MarkdownRepository) Watch(ctx context.Context, path string) (<-chan ports.RepositoryChangeEvent, error) {
	fileEvents, err := r.watcher.Watch(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("watching slideshow file: %w", err)
	}

	events := make(chan ports.RepositoryChangeEvent)
	go func() {
		defer close(events)
		for fileEvent := range fileEvents {
			event := ports.RepositoryChangeEvent{
				Path:      fileEvent.Path,
				Operation: operationFor(fileEvent.Type),
			}

			select {
			case events <- event:
			case <-ctx.Done():
				return
			}
		}
	}()

	return events, nil
}

// operationFor maps a watcher change type to a repository operation
func operationFor(t ports.ChangeType) string {
	switch t {
	case ports.Created:
		return "create"
	case ports.Deleted:
		return "delete"
	default:
		return "update"
	}
}

// titleFromPath derives a human readable title from a file name, so
// "q3-roadmap.md" is served as "Q3 Roadmap"
func titleFromPath(path string) string {
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	name = strings.NewReplacer("-", " ", "_", " ").Replace(name)

	// Casers are stateful, so build one per call
	c := cases.Title(language.Und)
	return c.String(strings.TrimSpace(name))
}

var _ ports.SlideshowRepository = (*MarkdownRepository)(nil)

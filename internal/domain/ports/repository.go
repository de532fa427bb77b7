package ports

import (
	"context"

	"github.com/fredcamaral/slishow/internal/domain/entities"
)

// RepositoryChangeEvent reports one change to a stored slideshow
type RepositoryChangeEvent struct {
	Path      string
	Operation string // "create", "update", "delete"
}

// SlideshowRepository loads slideshows from their backing store and
// watches them for changes
type SlideshowRepository interface {
	// Load reads and returns the slideshow at path
	Load(ctx context.Context, path string) (*entities.Slideshow, error)

	// Watch reports changes to the slideshow at path until the context
	// is canceled
	Watch(ctx context.Context, path string) (<-chan RepositoryChangeEvent, error)
}

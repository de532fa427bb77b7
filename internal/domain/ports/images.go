package ports

import (
	"context"

	"github.com/fredcamaral/slishow/internal/domain/entities"
)

// ImageLoader resolves deferred slide images. Loading promotes each
// deferred source attribute into a live one and applies the configured
// sizing mode.
type ImageLoader interface {
	// Load processes all deferred images under the slide element
	// according to the options. It is idempotent per element.
	Load(ctx context.Context, slide Element, opts entities.ImageLoadConfig) error
}

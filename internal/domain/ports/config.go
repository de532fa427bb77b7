package ports

import (
	"context"

	"github.com/fredcamaral/slishow/internal/domain/entities"
)

// ConfigLoader reads the file-backed configuration layers
type ConfigLoader interface {
	// LoadGlobal loads the user-wide configuration file
	LoadGlobal(ctx context.Context) (*entities.Config, error)

	// LoadLocal loads the per-deck configuration file from dir, nil
	// when there is none
	LoadLocal(ctx context.Context, dir string) (*entities.Config, error)

	// CreateDefaults writes the default configuration file to path
	CreateDefaults(ctx context.Context, path string) error

	// GetGlobalPath returns the path of the user-wide configuration
	GetGlobalPath() string

	// GetLocalPath returns the path the per-deck configuration would
	// have in dir
	GetLocalPath(dir string) string
}

// ConfigMerger stacks configuration layers
type ConfigMerger interface {
	// Merge combines configs with later ones taking precedence. With
	// no arguments it returns the defaults.
	Merge(configs ...*entities.Config) *entities.Config

	// ApplyFlags overlays explicitly set CLI flags
	ApplyFlags(config *entities.Config, flags map[string]interface{}) *entities.Config

	// ApplyEnvVars overlays environment variable overrides
	ApplyEnvVars(config *entities.Config) *entities.Config
}

// ConfigService resolves the effective configuration for a slideshow
type ConfigService interface {
	// LoadConfig stacks all layers for a slideshow in workingDir and
	// validates the result
	LoadConfig(ctx context.Context, workingDir string, flags map[string]interface{}) (*entities.Config, error)

	// GetDefaultConfig returns the built-in defaults
	GetDefaultConfig() *entities.Config

	// ValidateConfig validates a configuration
	ValidateConfig(config *entities.Config) error

	// CreateGlobalConfig writes the default user-wide configuration
	CreateGlobalConfig(ctx context.Context) error
}

package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/fredcamaral/slishow/internal/domain/entities"
)

type MockConfigLoader struct {
	mock.Mock
}

func (m *MockConfigLoader) LoadGlobal(ctx context.Context) (*entities.Config, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Config), args.Error(1)
}

func (m *MockConfigLoader) LoadLocal(ctx context.Context, dir string) (*entities.Config, error) {
	args := m.Called(ctx, dir)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Config), args.Error(1)
}

func (m *MockConfigLoader) CreateDefaults(ctx context.Context, path string) error {
	args := m.Called(ctx, path)
	return args.Error(0)
}

func (m *MockConfigLoader) GetGlobalPath() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockConfigLoader) GetLocalPath(dir string) string {
	args := m.Called(dir)
	return args.String(0)
}

type MockConfigMerger struct {
	mock.Mock
}

func (m *MockConfigMerger) Merge(configs ...*entities.Config) *entities.Config {
	args := m.Called(configs)
	return args.Get(0).(*entities.Config)
}

func (m *MockConfigMerger) ApplyFlags(config *entities.Config, flags map[string]interface{}) *entities.Config {
	args := m.Called(config, flags)
	return args.Get(0).(*entities.Config)
}

func (m *MockConfigMerger) ApplyEnvVars(config *entities.Config) *entities.Config {
	args := m.Called(config)
	return args.Get(0).(*entities.Config)
}

func newConfigService() (*ConfigService, *MockConfigLoader, *MockConfigMerger) {
	loader := &MockConfigLoader{}
	merger := &MockConfigMerger{}
	return NewConfigService(loader, merger), loader, merger
}

// configOnPort builds a minimal valid config distinguishable by port
func configOnPort(port int) *entities.Config {
	return &entities.Config{
		Server:    entities.ServerConfig{Host: "localhost", Port: port},
		Slideshow: entities.SlideshowConfig{ElementSelector: ".slide", TransitionMs: 700},
		Browser:   entities.BrowserConfig{AutoOpen: true, Browser: "default"},
		Watcher:   entities.WatcherConfig{IntervalMs: 200},
	}
}

func TestNewConfigService(t *testing.T) {
	service, loader, merger := newConfigService()

	require.NotNil(t, service)
	assert.Equal(t, loader, service.loader)
	assert.Equal(t, merger, service.merger)
}

func TestConfigService_LoadConfig(t *testing.T) {
	ctx := context.Background()

	t.Run("stacks defaults, global, and local", func(t *testing.T) {
		service, loader, merger := newConfigService()

		defaults := configOnPort(3000)
		global := configOnPort(4000)
		local := configOnPort(5000)
		merged := configOnPort(5000)
		withEnv := configOnPort(5001)
		final := configOnPort(6000)

		flags := map[string]interface{}{"port": 6000}

		merger.On("Merge", mock.Anything).Return(defaults).Once()
		loader.On("LoadGlobal", mock.Anything).Return(global, nil)
		loader.On("LoadLocal", mock.Anything, "/deck/dir").Return(local, nil)
		merger.On("Merge", mock.MatchedBy(func(configs []*entities.Config) bool {
			return len(configs) == 3
		})).Return(merged)
		merger.On("ApplyEnvVars", merged).Return(withEnv)
		merger.On("ApplyFlags", withEnv, flags).Return(final)

		result, err := service.LoadConfig(ctx, "/deck/dir", flags)

		require.NoError(t, err)
		assert.Equal(t, final, result)
		loader.AssertExpectations(t)
		merger.AssertExpectations(t)
	})

	t.Run("skips a missing local config", func(t *testing.T) {
		service, loader, merger := newConfigService()

		final := configOnPort(4000)

		merger.On("Merge", mock.Anything).Return(configOnPort(3000)).Once()
		loader.On("LoadGlobal", mock.Anything).Return(configOnPort(4000), nil)
		loader.On("LoadLocal", mock.Anything, "/deck/dir").Return(nil, nil)
		merger.On("Merge", mock.MatchedBy(func(configs []*entities.Config) bool {
			return len(configs) == 2
		})).Return(final)
		merger.On("ApplyEnvVars", final).Return(final)
		merger.On("ApplyFlags", final, map[string]interface{}(nil)).Return(final)

		result, err := service.LoadConfig(ctx, "/deck/dir", nil)

		require.NoError(t, err)
		assert.Equal(t, final, result)
	})

	t.Run("fails when the global config fails to load", func(t *testing.T) {
		service, loader, merger := newConfigService()

		merger.On("Merge", mock.Anything).Return(&entities.Config{})
		loader.On("LoadGlobal", mock.Anything).Return(nil, errors.New("disk error"))

		_, err := service.LoadConfig(ctx, "/deck/dir", nil)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "loading global config")
	})

	t.Run("fails when the local config fails to load", func(t *testing.T) {
		service, loader, merger := newConfigService()

		merger.On("Merge", mock.Anything).Return(&entities.Config{})
		loader.On("LoadGlobal", mock.Anything).Return(&entities.Config{}, nil)
		loader.On("LoadLocal", mock.Anything, "/deck/dir").Return(nil, errors.New("broken toml"))

		_, err := service.LoadConfig(ctx, "/deck/dir", nil)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "loading local config")
	})

	t.Run("fails when the merged result is invalid", func(t *testing.T) {
		service, loader, merger := newConfigService()

		invalid := &entities.Config{Server: entities.ServerConfig{Port: -1}}

		merger.On("Merge", mock.Anything).Return(&entities.Config{})
		loader.On("LoadGlobal", mock.Anything).Return(&entities.Config{}, nil)
		loader.On("LoadLocal", mock.Anything, "/deck/dir").Return(nil, nil)
		merger.On("ApplyEnvVars", mock.Anything).Return(&entities.Config{})
		merger.On("ApplyFlags", mock.Anything, mock.Anything).Return(invalid)

		_, err := service.LoadConfig(ctx, "/deck/dir", nil)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "final config validation")
	})
}

func TestConfigService_GetDefaultConfig(t *testing.T) {
	service, _, merger := newConfigService()

	defaults := configOnPort(3000)
	merger.On("Merge", mock.Anything).Return(defaults)

	assert.Equal(t, defaults, service.GetDefaultConfig())
	merger.AssertExpectations(t)
}

func TestConfigService_ValidateConfig(t *testing.T) {
	service, _, _ := newConfigService()

	t.Run("accepts a valid config", func(t *testing.T) {
		assert.NoError(t, service.ValidateConfig(configOnPort(3000)))
	})

	t.Run("rejects nil", func(t *testing.T) {
		err := service.ValidateConfig(nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "config cannot be nil")
	})

	t.Run("rejects an invalid config", func(t *testing.T) {
		invalid := &entities.Config{Server: entities.ServerConfig{Port: -1}}
		assert.Error(t, service.ValidateConfig(invalid))
	})
}

func TestConfigService_CreateGlobalConfig(t *testing.T) {
	ctx := context.Background()

	t.Run("writes defaults to the global path", func(t *testing.T) {
		service, loader, _ := newConfigService()

		globalPath := "/home/user/.config/slishow/config.toml"
		loader.On("GetGlobalPath").Return(globalPath)
		loader.On("CreateDefaults", mock.Anything, globalPath).Return(nil)

		assert.NoError(t, service.CreateGlobalConfig(ctx))
		loader.AssertExpectations(t)
	})

	t.Run("surfaces creation errors", func(t *testing.T) {
		service, loader, _ := newConfigService()

		creationErr := errors.New("permission denied")
		loader.On("GetGlobalPath").Return("/invalid/path/config.toml")
		loader.On("CreateDefaults", mock.Anything, "/invalid/path/config.toml").Return(creationErr)

		err := service.CreateGlobalConfig(ctx)
		assert.Equal(t, creationErr, err)
	})
}

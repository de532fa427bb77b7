package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/fredcamaral/slishow/internal/domain/entities"
)

// GetDefaultConfig returns the default configuration with environment overrides
func GetDefaultConfig() *entities.Config {
	loop := true
	autoplay := false
	loadImages := true

	config := &entities.Config{
		Server: entities.ServerConfig{
			Host:            getEnvOrDefault("SLISHOW_HOST", "localhost"),
			Port:            getEnvIntOrDefault("SLISHOW_PORT", 1000),
			ReadTimeout:     getEnvIntOrDefault("SLISHOW_READ_TIMEOUT", 30),
			WriteTimeout:    getEnvIntOrDefault("SLISHOW_WRITE_TIMEOUT", 30),
			ShutdownTimeout: getEnvIntOrDefault("SLISHOW_SHUTDOWN_TIMEOUT", 5),
			CORSOrigins: getEnvSliceOrDefault("SLISHOW_CORS_ORIGINS", []string{
				"http://localhost:3000",
				"http://127.0.0.1:3000",
				"http://localhost:8080",
				"http://127.0.0.1:8080",
			}),
		},
		Slideshow: entities.SlideshowConfig{
			ElementSelector: ".slide",
			TransitionMs:    getEnvIntOrDefault("SLISHOW_TRANSITION", 0),
			Loop:            &loop,
			Autoplay: entities.AutoplayConfig{
				Enabled: &autoplay,
				DelayMs: getEnvIntOrDefault("SLISHOW_AUTOPLAY_DELAY", 5000),
			},
			Controls: entities.ControlsConfig{
				Previous:   ".previous",
				Next:       ".next",
				Indicators: ".indicator",
			},
			Images: entities.ImageLoadConfig{
				Load: &loadImages,
				Mode: getEnvOrDefault("SLISHOW_IMAGE_MODE", "fill"),
			},
		},
		Browser: entities.BrowserConfig{
			AutoOpen: true,
			Browser:  "default",
		},
		Watcher: entities.WatcherConfig{
			IntervalMs:   200,
			DebounceMs:   500,
			MaxRetries:   3,
			RetryDelayMs: 100,
		},
		Metadata: entities.Metadata{
			Author:      "",
			Email:       "",
			Company:     "",
			DefaultTags: []string{},
			Custom:      make(map[string]string),
		},
		Logging: entities.LoggingConfig{
			Level:      getEnvOrDefault("SLISHOW_LOG_LEVEL", "info"),
			Verbose:    getEnvBoolOrDefault("SLISHOW_LOG_VERBOSE", false),
			JSONFormat: getEnvBoolOrDefault("SLISHOW_LOG_JSON", false),
			File:       getEnvOrDefault("SLISHOW_LOG_FILE", ""),
			MaxSize:    getEnvIntOrDefault("SLISHOW_LOG_MAX_SIZE", 100),
			MaxAge:     getEnvIntOrDefault("SLISHOW_LOG_MAX_AGE", 7),
			MaxBackups: getEnvIntOrDefault("SLISHOW_LOG_MAX_BACKUPS", 5),
		},
	}

	// Apply additional environment-based overrides
	applyEnvironmentOverrides(config)

	return config
}

// getEnvOrDefault returns environment variable value or default
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvIntOrDefault returns environment variable as int or default
func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvBoolOrDefault returns environment variable as bool or default
func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// getEnvSliceOrDefault returns environment variable as slice or default
func getEnvSliceOrDefault(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		// Split by comma and trim whitespace
		parts := strings.Split(value, ",")
		result := make([]string, 0, len(parts))
		for _, part := range parts {
			if trimmed := strings.TrimSpace(part); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		if len(result) > 0 {
			return result
		}
	}
	return defaultValue
}

// applyEnvironmentOverrides applies additional environment-based configuration
func applyEnvironmentOverrides(config *entities.Config) {
	// Override slideshow settings
	if loopStr := os.Getenv("SLISHOW_LOOP"); loopStr != "" {
		if boolValue, err := strconv.ParseBool(loopStr); err == nil {
			config.Slideshow.Loop = &boolValue
		}
	}

	if autoplayStr := os.Getenv("SLISHOW_AUTOPLAY"); autoplayStr != "" {
		if boolValue, err := strconv.ParseBool(autoplayStr); err == nil {
			config.Slideshow.Autoplay.Enabled = &boolValue
		}
	}

	if loadStr := os.Getenv("SLISHOW_LOAD_IMAGES"); loadStr != "" {
		if boolValue, err := strconv.ParseBool(loadStr); err == nil {
			config.Slideshow.Images.Load = &boolValue
		}
	}

	// Override browser settings
	if autoOpen := os.Getenv("SLISHOW_BROWSER_AUTO_OPEN"); autoOpen != "" {
		if boolValue, err := strconv.ParseBool(autoOpen); err == nil {
			config.Browser.AutoOpen = boolValue
		}
	}

	if browser := os.Getenv("SLISHOW_BROWSER"); browser != "" {
		config.Browser.Browser = browser
	}
}

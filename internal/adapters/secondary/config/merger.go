package config

import (
	"os"
	"strconv"

	"github.com/fredcamaral/slishow/internal/domain/entities"
	"github.com/fredcamaral/slishow/internal/domain/ports"
)

// ConfigMerger implements the ConfigMerger interface
type ConfigMerger struct{}

// NewConfigMerger creates a new configuration merger
func NewConfigMerger() *ConfigMerger {
	return &ConfigMerger{}
}

// Merge merges multiple configurations with later configs taking precedence
func (m *ConfigMerger) Merge(configs ...*entities.Config) *entities.Config {
	if len(configs) == 0 {
		return GetDefaultConfig()
	}

	// Start with first config as base
	result := deepCopy(configs[0])

	// Merge subsequent configs
	for i := 1; i < len(configs); i++ {
		if configs[i] != nil {
			m.mergeInto(result, configs[i])
		}
	}

	return result
}

// ApplyFlags applies CLI flag overrides to a configuration
func (m *ConfigMerger) ApplyFlags(config *entities.Config, flags map[string]interface{}) *entities.Config {
	result := deepCopy(config)

	// Apply CLI flag overrides
	if port, ok := flags["port"].(int); ok && port > 0 {
		result.Server.Port = port
	}

	if host, ok := flags["host"].(string); ok && host != "" {
		result.Server.Host = host
	}

	if noBrowser, ok := flags["no-browser"].(bool); ok {
		result.Browser.AutoOpen = !noBrowser
	}

	if autoplay, ok := flags["autoplay"].(bool); ok && autoplay {
		result.Slideshow.Autoplay.Enabled = &autoplay
	}

	if transition, ok := flags["transition"].(int); ok && transition > 0 {
		result.Slideshow.TransitionMs = transition
	}

	return result
}

// ApplyEnvVars applies environment variable overrides to a configuration
func (m *ConfigMerger) ApplyEnvVars(config *entities.Config) *entities.Config {
	result := deepCopy(config)

	// Server configuration from environment
	if host := os.Getenv("SLISHOW_HOST"); host != "" {
		result.Server.Host = host
	}

	if portStr := os.Getenv("SLISHOW_PORT"); portStr != "" {
		if port, err := strconv.Atoi(portStr); err == nil && port > 0 {
			result.Server.Port = port
		}
	}

	// Slideshow configuration from environment
	if loopStr := os.Getenv("SLISHOW_LOOP"); loopStr != "" {
		if loop, err := strconv.ParseBool(loopStr); err == nil {
			result.Slideshow.Loop = &loop
		}
	}

	if autoplayStr := os.Getenv("SLISHOW_AUTOPLAY"); autoplayStr != "" {
		if autoplay, err := strconv.ParseBool(autoplayStr); err == nil {
			result.Slideshow.Autoplay.Enabled = &autoplay
		}
	}

	if delayStr := os.Getenv("SLISHOW_AUTOPLAY_DELAY"); delayStr != "" {
		if delay, err := strconv.Atoi(delayStr); err == nil && delay > 0 {
			result.Slideshow.Autoplay.DelayMs = delay
		}
	}

	if transitionStr := os.Getenv("SLISHOW_TRANSITION"); transitionStr != "" {
		if transition, err := strconv.Atoi(transitionStr); err == nil && transition >= 0 {
			result.Slideshow.TransitionMs = transition
		}
	}

	if mode := os.Getenv("SLISHOW_IMAGE_MODE"); mode != "" {
		result.Slideshow.Images.Mode = mode
	}

	// Browser configuration from environment
	if noBrowserStr := os.Getenv("SLISHOW_NO_BROWSER"); noBrowserStr != "" {
		if noBrowser, err := strconv.ParseBool(noBrowserStr); err == nil {
			result.Browser.AutoOpen = !noBrowser
		}
	}

	if browser := os.Getenv("SLISHOW_BROWSER"); browser != "" {
		result.Browser.Browser = browser
	}

	// Watcher configuration from environment
	if intervalStr := os.Getenv("SLISHOW_WATCH_INTERVAL"); intervalStr != "" {
		if interval, err := strconv.Atoi(intervalStr); err == nil && interval > 0 {
			result.Watcher.IntervalMs = interval
		}
	}

	if debounceStr := os.Getenv("SLISHOW_WATCH_DEBOUNCE"); debounceStr != "" {
		if debounce, err := strconv.Atoi(debounceStr); err == nil && debounce >= 0 {
			result.Watcher.DebounceMs = debounce
		}
	}

	// Metadata from environment
	if author := os.Getenv("SLISHOW_AUTHOR"); author != "" {
		result.Metadata.Author = author
	}

	if email := os.Getenv("SLISHOW_EMAIL"); email != "" {
		result.Metadata.Email = email
	}

	if company := os.Getenv("SLISHOW_COMPANY"); company != "" {
		result.Metadata.Company = company
	}

	return result
}

// mergeInto merges source configuration into target configuration
func (m *ConfigMerger) mergeInto(target, source *entities.Config) {
	// Server config
	if source.Server.Port != 0 {
		target.Server.Port = source.Server.Port
	}
	if source.Server.Host != "" {
		target.Server.Host = source.Server.Host
	}
	if source.Server.ReadTimeout != 0 {
		target.Server.ReadTimeout = source.Server.ReadTimeout
	}
	if source.Server.WriteTimeout != 0 {
		target.Server.WriteTimeout = source.Server.WriteTimeout
	}
	if source.Server.ShutdownTimeout != 0 {
		target.Server.ShutdownTimeout = source.Server.ShutdownTimeout
	}
	if source.Server.Environment != "" {
		target.Server.Environment = source.Server.Environment
	}
	if len(source.Server.CORSOrigins) > 0 {
		target.Server.CORSOrigins = make([]string, len(source.Server.CORSOrigins))
		copy(target.Server.CORSOrigins, source.Server.CORSOrigins)
	}

	// Slideshow config merges field by field; pointer fields distinguish
	// unset from explicitly false
	target.Slideshow = target.Slideshow.Merged(&source.Slideshow)

	// Browser config
	if source.Browser.Browser != "" {
		target.Browser.Browser = source.Browser.Browser
	}
	// For boolean fields, we need to check if they were explicitly set
	// This is a limitation of TOML - we can't distinguish between false and unset
	// We'll always merge boolean fields for now (this is a known TOML limitation)
	target.Browser.AutoOpen = source.Browser.AutoOpen

	// Watcher config
	if source.Watcher.IntervalMs != 0 {
		target.Watcher.IntervalMs = source.Watcher.IntervalMs
	}
	if source.Watcher.DebounceMs != 0 {
		target.Watcher.DebounceMs = source.Watcher.DebounceMs
	}
	if source.Watcher.MaxRetries != 0 {
		target.Watcher.MaxRetries = source.Watcher.MaxRetries
	}
	if source.Watcher.RetryDelayMs != 0 {
		target.Watcher.RetryDelayMs = source.Watcher.RetryDelayMs
	}

	// Metadata config
	if source.Metadata.Author != "" {
		target.Metadata.Author = source.Metadata.Author
	}
	if source.Metadata.Email != "" {
		target.Metadata.Email = source.Metadata.Email
	}
	if source.Metadata.Company != "" {
		target.Metadata.Company = source.Metadata.Company
	}
	if len(source.Metadata.DefaultTags) > 0 {
		target.Metadata.DefaultTags = make([]string, len(source.Metadata.DefaultTags))
		copy(target.Metadata.DefaultTags, source.Metadata.DefaultTags)
	}
	if len(source.Metadata.Custom) > 0 {
		if target.Metadata.Custom == nil {
			target.Metadata.Custom = make(map[string]string)
		}
		for k, v := range source.Metadata.Custom {
			target.Metadata.Custom[k] = v
		}
	}

	// Logging config
	if source.Logging.Level != "" {
		target.Logging.Level = source.Logging.Level
	}
	if source.Logging.File != "" {
		target.Logging.File = source.Logging.File
	}
	if source.Logging.MaxSize != 0 {
		target.Logging.MaxSize = source.Logging.MaxSize
	}
	if source.Logging.MaxAge != 0 {
		target.Logging.MaxAge = source.Logging.MaxAge
	}
	if source.Logging.MaxBackups != 0 {
		target.Logging.MaxBackups = source.Logging.MaxBackups
	}
}

// deepCopy creates a deep copy of a configuration
func deepCopy(src *entities.Config) *entities.Config {
	if src == nil {
		return nil
	}

	// Manual copy to avoid reflection for performance
	dst := &entities.Config{
		Server: entities.ServerConfig{
			Host:            src.Server.Host,
			Port:            src.Server.Port,
			ReadTimeout:     src.Server.ReadTimeout,
			WriteTimeout:    src.Server.WriteTimeout,
			ShutdownTimeout: src.Server.ShutdownTimeout,
			Environment:     src.Server.Environment,
		},
		Slideshow: entities.SlideshowConfig{
			ElementSelector: src.Slideshow.ElementSelector,
			TransitionMs:    src.Slideshow.TransitionMs,
			Loop:            copyBoolPtr(src.Slideshow.Loop),
			Autoplay: entities.AutoplayConfig{
				Enabled: copyBoolPtr(src.Slideshow.Autoplay.Enabled),
				DelayMs: src.Slideshow.Autoplay.DelayMs,
			},
			Controls: src.Slideshow.Controls,
			Images: entities.ImageLoadConfig{
				Load: copyBoolPtr(src.Slideshow.Images.Load),
				Mode: src.Slideshow.Images.Mode,
			},
		},
		Browser: entities.BrowserConfig{
			AutoOpen: src.Browser.AutoOpen,
			Browser:  src.Browser.Browser,
		},
		Watcher: entities.WatcherConfig{
			IntervalMs:   src.Watcher.IntervalMs,
			DebounceMs:   src.Watcher.DebounceMs,
			MaxRetries:   src.Watcher.MaxRetries,
			RetryDelayMs: src.Watcher.RetryDelayMs,
		},
		Metadata: entities.Metadata{
			Author:  src.Metadata.Author,
			Email:   src.Metadata.Email,
			Company: src.Metadata.Company,
		},
		Logging: src.Logging,
	}

	// Copy slices
	if src.Server.CORSOrigins != nil {
		dst.Server.CORSOrigins = make([]string, len(src.Server.CORSOrigins))
		copy(dst.Server.CORSOrigins, src.Server.CORSOrigins)
	}

	if src.Metadata.DefaultTags != nil {
		dst.Metadata.DefaultTags = make([]string, len(src.Metadata.DefaultTags))
		copy(dst.Metadata.DefaultTags, src.Metadata.DefaultTags)
	}

	// Copy map
	if src.Metadata.Custom != nil {
		dst.Metadata.Custom = make(map[string]string)
		for k, v := range src.Metadata.Custom {
			dst.Metadata.Custom[k] = v
		}
	}

	return dst
}

// copyBoolPtr copies a bool pointer so the copy does not alias the source
func copyBoolPtr(p *bool) *bool {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// Ensure ConfigMerger implements ports.ConfigMerger
var _ ports.ConfigMerger = (*ConfigMerger)(nil)

package entities

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Config represents the complete application configuration
type Config struct {
	Server    ServerConfig    `toml:"server"`
	Slideshow SlideshowConfig `toml:"slideshow"`
	Browser   BrowserConfig   `toml:"browser"`
	Watcher   WatcherConfig   `toml:"watcher"`
	Metadata  Metadata        `toml:"metadata"`
	Logging   LoggingConfig   `toml:"logging"`
}

// Validate validates the entire configuration
func (c *Config) Validate() error {
	if err := c.Server.Validate(); err != nil {
		return fmt.Errorf("server config: %w", err)
	}

	if err := c.Slideshow.Validate(); err != nil {
		return fmt.Errorf("slideshow config: %w", err)
	}

	if err := c.Browser.Validate(); err != nil {
		return fmt.Errorf("browser config: %w", err)
	}

	if err := c.Watcher.Validate(); err != nil {
		return fmt.Errorf("watcher config: %w", err)
	}

	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging config: %w", err)
	}

	return nil
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Host            string   `toml:"host"`
	Port            int      `toml:"port"`
	ReadTimeout     int      `toml:"read_timeout"`
	WriteTimeout    int      `toml:"write_timeout"`
	ShutdownTimeout int      `toml:"shutdown_timeout"`
	Environment     string   `toml:"environment"`
	CORSOrigins     []string `toml:"cors_origins"`
}

// Validate validates server configuration
func (s ServerConfig) Validate() error {
	if s.Port < 0 || s.Port > 65535 {
		return errors.New("port must be between 0 and 65535")
	}

	if s.Host != "" {
		if ip := net.ParseIP(s.Host); ip == nil {
			if _, err := net.LookupHost(s.Host); err != nil {
				return fmt.Errorf("invalid host: %w", err)
			}
		}
	}

	if s.ReadTimeout < 0 {
		return errors.New("read timeout must be non-negative")
	}

	if s.WriteTimeout < 0 {
		return errors.New("write timeout must be non-negative")
	}

	if s.ShutdownTimeout < 0 {
		return errors.New("shutdown timeout must be non-negative")
	}

	// Validate CORS origins
	for _, origin := range s.CORSOrigins {
		if origin == "" {
			return errors.New("CORS origin cannot be empty")
		}
		// Allow wildcard origin for development
		if origin == "*" {
			continue
		}
		// Basic URL validation
		if len(origin) < 7 || (!strings.HasPrefix(origin, "http://") && !strings.HasPrefix(origin, "https://")) {
			return fmt.Errorf("invalid CORS origin format: %s (must start with http:// or https://)", origin)
		}
	}

	return nil
}

// GetReadTimeout returns the read timeout as a duration
func (s ServerConfig) GetReadTimeout() time.Duration {
	if s.ReadTimeout <= 0 {
		return 30 * time.Second
	}
	return time.Duration(s.ReadTimeout) * time.Second
}

// GetWriteTimeout returns the write timeout as a duration
func (s ServerConfig) GetWriteTimeout() time.Duration {
	if s.WriteTimeout <= 0 {
		return 30 * time.Second
	}
	return time.Duration(s.WriteTimeout) * time.Second
}

// GetShutdownTimeout returns the shutdown timeout as a duration
func (s ServerConfig) GetShutdownTimeout() time.Duration {
	if s.ShutdownTimeout <= 0 {
		return 5 * time.Second
	}
	return time.Duration(s.ShutdownTimeout) * time.Second
}

// GetCORSOrigins returns CORS origins with defaults if empty
func (s ServerConfig) GetCORSOrigins() []string {
	if len(s.CORSOrigins) == 0 {
		// Default to secure localhost origins for development
		return []string{
			"http://localhost:3000",
			"http://127.0.0.1:3000",
			"http://localhost:8080",
			"http://127.0.0.1:8080",
		}
	}
	return s.CORSOrigins
}

// IsDevelopment returns true if the server is running in development mode
func (s ServerConfig) IsDevelopment() bool {
	return s.Environment == "development" || s.Environment == ""
}

// ImageMode controls how a loaded slide image is sized inside its slide
type ImageMode string

const (
	ImageModeFill ImageMode = "fill"
	ImageModeFit  ImageMode = "fit"
	ImageModeNone ImageMode = "none"
)

// SlideshowConfig contains the slideshow layout options. Boolean options
// use pointers so an unset value can fall back to its default instead of
// being clobbered by TOML's zero value.
type SlideshowConfig struct {
	ElementSelector string          `toml:"element_selector"`
	TransitionMs    int             `toml:"transition_ms"`
	Loop            *bool           `toml:"loop"`
	Autoplay        AutoplayConfig  `toml:"autoplay"`
	Controls        ControlsConfig  `toml:"controls"`
	Images          ImageLoadConfig `toml:"images"`
}

// AutoplayConfig contains automatic slide advancement options
type AutoplayConfig struct {
	Enabled *bool `toml:"enabled"`
	DelayMs int   `toml:"delay_ms"`
}

// ControlsConfig contains the selectors used to resolve navigation
// controls. An empty selector disables that control entirely.
type ControlsConfig struct {
	Previous   string `toml:"previous"`
	Next       string `toml:"next"`
	Indicators string `toml:"indicators"`
}

// ImageLoadConfig contains slide image loading options
type ImageLoadConfig struct {
	Load *bool  `toml:"load"`
	Mode string `toml:"mode"`
}

// Validate validates slideshow configuration
func (s SlideshowConfig) Validate() error {
	if s.TransitionMs < 0 {
		return errors.New("transition duration must be non-negative")
	}

	if s.Autoplay.DelayMs < 0 {
		return errors.New("autoplay delay must be non-negative")
	}

	switch ImageMode(s.Images.Mode) {
	case ImageModeFill, ImageModeFit, ImageModeNone:
		// Valid modes
	case "":
		// Empty is okay, will use default
	default:
		return fmt.Errorf("invalid image mode: %s (must be fill, fit, or none)", s.Images.Mode)
	}

	return nil
}

// GetElementSelector returns the slide selector with default
func (s SlideshowConfig) GetElementSelector() string {
	if s.ElementSelector == "" {
		return ".slide"
	}
	return s.ElementSelector
}

// GetTransition returns the transition lock duration. Zero disables the
// transition lock.
func (s SlideshowConfig) GetTransition() time.Duration {
	if s.TransitionMs <= 0 {
		return 0
	}
	return time.Duration(s.TransitionMs) * time.Millisecond
}

// GetLoop returns whether index requests wrap at the edges (default true)
func (s SlideshowConfig) GetLoop() bool {
	if s.Loop == nil {
		return true
	}
	return *s.Loop
}

// GetEnabled returns whether autoplay is on (default false)
func (a AutoplayConfig) GetEnabled() bool {
	if a.Enabled == nil {
		return false
	}
	return *a.Enabled
}

// GetDelay returns the autoplay delay with default (5s)
func (a AutoplayConfig) GetDelay() time.Duration {
	if a.DelayMs <= 0 {
		return 5 * time.Second
	}
	return time.Duration(a.DelayMs) * time.Millisecond
}

// GetLoad returns whether slide images are loaded during layout (default true)
func (i ImageLoadConfig) GetLoad() bool {
	if i.Load == nil {
		return true
	}
	return *i.Load
}

// GetMode returns the image sizing mode with default (fill)
func (i ImageLoadConfig) GetMode() ImageMode {
	if i.Mode == "" {
		return ImageModeFill
	}
	return ImageMode(i.Mode)
}

// Merged returns a copy of the configuration with any set fields of the
// override applied on top. Nil pointers and zero values in the override
// leave the base value in place.
func (s SlideshowConfig) Merged(override *SlideshowConfig) SlideshowConfig {
	result := s
	if override == nil {
		return result
	}

	if override.ElementSelector != "" {
		result.ElementSelector = override.ElementSelector
	}
	if override.TransitionMs != 0 {
		result.TransitionMs = override.TransitionMs
	}
	if override.Loop != nil {
		result.Loop = override.Loop
	}
	if override.Autoplay.Enabled != nil {
		result.Autoplay.Enabled = override.Autoplay.Enabled
	}
	if override.Autoplay.DelayMs != 0 {
		result.Autoplay.DelayMs = override.Autoplay.DelayMs
	}
	if override.Controls.Previous != "" {
		result.Controls.Previous = override.Controls.Previous
	}
	if override.Controls.Next != "" {
		result.Controls.Next = override.Controls.Next
	}
	if override.Controls.Indicators != "" {
		result.Controls.Indicators = override.Controls.Indicators
	}
	if override.Images.Load != nil {
		result.Images.Load = override.Images.Load
	}
	if override.Images.Mode != "" {
		result.Images.Mode = override.Images.Mode
	}

	return result
}

// BrowserConfig contains browser launch configuration
type BrowserConfig struct {
	AutoOpen bool   `toml:"auto_open"`
	Browser  string `toml:"browser"`
}

// Validate validates browser configuration
func (b BrowserConfig) Validate() error {
	// Browser name validation is minimal since it's platform-dependent
	return nil
}

// WatcherConfig contains file watcher configuration
type WatcherConfig struct {
	IntervalMs   int `toml:"interval_ms"`
	DebounceMs   int `toml:"debounce_ms"`
	MaxRetries   int `toml:"max_retries"`
	RetryDelayMs int `toml:"retry_delay_ms"`
}

// Validate validates watcher configuration
func (w WatcherConfig) Validate() error {
	if w.IntervalMs < 50 {
		return errors.New("watcher interval must be at least 50ms")
	}

	if w.DebounceMs < 0 {
		return errors.New("debounce time must be non-negative")
	}

	if w.MaxRetries < 0 {
		return errors.New("max retries must be non-negative")
	}

	if w.RetryDelayMs < 0 {
		return errors.New("retry delay must be non-negative")
	}

	return nil
}

// GetInterval returns the watcher interval as a duration
func (w WatcherConfig) GetInterval() time.Duration {
	if w.IntervalMs <= 0 {
		return 200 * time.Millisecond
	}
	return time.Duration(w.IntervalMs) * time.Millisecond
}

// GetDebounce returns the debounce time as a duration
func (w WatcherConfig) GetDebounce() time.Duration {
	if w.DebounceMs <= 0 {
		return 500 * time.Millisecond
	}
	return time.Duration(w.DebounceMs) * time.Millisecond
}

// GetRetryDelay returns the retry delay as a duration
func (w WatcherConfig) GetRetryDelay() time.Duration {
	if w.RetryDelayMs <= 0 {
		return 100 * time.Millisecond
	}
	return time.Duration(w.RetryDelayMs) * time.Millisecond
}

// Metadata contains slideshow metadata defaults
type Metadata struct {
	Author      string            `toml:"author"`
	Email       string            `toml:"email"`
	Company     string            `toml:"company"`
	DefaultTags []string          `toml:"default_tags"`
	Custom      map[string]string `toml:"custom"`
}

// LogLevel represents logging level
type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level      string `toml:"level"`       // debug, info, warn, error
	Verbose    bool   `toml:"verbose"`     // Enable verbose logging
	JSONFormat bool   `toml:"json_format"` // Output logs in JSON format
	File       string `toml:"file"`        // Log to file (optional)
	MaxSize    int    `toml:"max_size"`    // Maximum log file size in MB
	MaxAge     int    `toml:"max_age"`     // Maximum age in days
	MaxBackups int    `toml:"max_backups"` // Maximum number of backup files
}

// Validate validates logging configuration
func (l LoggingConfig) Validate() error {
	// Validate log level
	switch LogLevel(l.Level) {
	case LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError:
		// Valid levels
	case "":
		// Empty is okay, will use default
	default:
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", l.Level)
	}

	// Validate file settings if file logging is enabled
	if l.File != "" {
		if !filepath.IsAbs(l.File) {
			return errors.New("log file path must be absolute")
		}

		// Check if parent directory exists
		dir := filepath.Dir(l.File)
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			return fmt.Errorf("log file directory does not exist: %s", dir)
		}

		if l.MaxSize < 0 {
			return errors.New("max log file size must be non-negative")
		}

		if l.MaxAge < 0 {
			return errors.New("max log file age must be non-negative")
		}

		if l.MaxBackups < 0 {
			return errors.New("max log backups must be non-negative")
		}
	}

	return nil
}

// GetLevel returns the log level with default
func (l LoggingConfig) GetLevel() LogLevel {
	if l.Level == "" {
		return LogLevelInfo // Default level
	}
	return LogLevel(l.Level)
}

// GetMaxSize returns the max file size with default (100MB)
func (l LoggingConfig) GetMaxSize() int {
	if l.MaxSize <= 0 {
		return 100
	}
	return l.MaxSize
}

// GetMaxAge returns the max age with default (7 days)
func (l LoggingConfig) GetMaxAge() int {
	if l.MaxAge <= 0 {
		return 7
	}
	return l.MaxAge
}

// GetMaxBackups returns the max backups with default (5)
func (l LoggingConfig) GetMaxBackups() int {
	if l.MaxBackups <= 0 {
		return 5
	}
	return l.MaxBackups
}

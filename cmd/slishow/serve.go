package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	httpadapter "github.com/fredcamaral/slishow/internal/adapters/primary/http"
	"github.com/fredcamaral/slishow/internal/adapters/secondary/browser"
	"github.com/fredcamaral/slishow/internal/adapters/secondary/config"
	"github.com/fredcamaral/slishow/internal/adapters/secondary/dom"
	"github.com/fredcamaral/slishow/internal/adapters/secondary/events"
	"github.com/fredcamaral/slishow/internal/adapters/secondary/imageloader"
	"github.com/fredcamaral/slishow/internal/adapters/secondary/parser"
	"github.com/fredcamaral/slishow/internal/adapters/secondary/renderer"
	"github.com/fredcamaral/slishow/internal/adapters/secondary/repository"
	"github.com/fredcamaral/slishow/internal/adapters/secondary/styles"
	"github.com/fredcamaral/slishow/internal/adapters/secondary/viewport"
	"github.com/fredcamaral/slishow/internal/adapters/secondary/watcher"
	"github.com/fredcamaral/slishow/internal/domain/entities"
	"github.com/fredcamaral/slishow/internal/domain/ports"
	"github.com/fredcamaral/slishow/internal/domain/services"
)

var (
	// Serve command flags
	port         int
	host         string
	noBrowser    bool
	watchFiles   bool
	autoplayFlag bool
	transitionMs int
)

// Logger provides structured logging for the serve command
type Logger struct {
	verbose bool
	level   entities.LogLevel
}

// shouldLog checks if the message should be logged based on level
func (l *Logger) shouldLog(msgLevel entities.LogLevel) bool {
	levelMap := map[entities.LogLevel]int{
		entities.LogLevelDebug: 0,
		entities.LogLevelInfo:  1,
		entities.LogLevelWarn:  2,
		entities.LogLevelError: 3,
	}

	currentLevel := levelMap[l.level]
	messageLevel := levelMap[msgLevel]

	return messageLevel >= currentLevel
}

// Info logs informational messages
func (l *Logger) Info(msg string, args ...interface{}) {
	if l.shouldLog(entities.LogLevelInfo) && l.verbose {
		log.Printf("[INFO] "+msg, args...)
	}
}

// Warn logs warning messages
func (l *Logger) Warn(msg string, args ...interface{}) {
	if l.shouldLog(entities.LogLevelWarn) {
		log.Printf("[WARN] "+msg, args...)
	}
}

// Error logs error messages (always shown if error level)
func (l *Logger) Error(msg string, args ...interface{}) {
	if l.shouldLog(entities.LogLevelError) {
		log.Printf("[ERROR] "+msg, args...)
	}
}

// Success logs success messages
func (l *Logger) Success(msg string, args ...interface{}) {
	if l.shouldLog(entities.LogLevelInfo) && l.verbose {
		log.Printf("[SUCCESS] "+msg, args...)
	}
}

// newLoggerWithLevel creates a new logger instance with specific level
func newLoggerWithLevel(verbose bool, level entities.LogLevel) *Logger {
	return &Logger{
		verbose: verbose,
		level:   level,
	}
}

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve [file]",
	Short: "Serve a slideshow from a markdown file",
	Long: `Start a local HTTP server to display your markdown slideshow.
The server rebuilds the presentation when the source file changes and
pushes the active slide to connected clients over WebSocket.

Example:
  slishow serve deck.md
  slishow serve deck.md --port 8080 --no-browser
  slishow serve deck.md --autoplay --transition 500`,
	Args: cobra.ExactArgs(1),
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	// Add command flags - defaults will be overridden by config loading
	serveCmd.Flags().IntVarP(&port, "port", "p", 0, "Port to serve on (overrides config)")
	serveCmd.Flags().StringVar(&host, "host", "", "Host to bind to (overrides config)")
	serveCmd.Flags().BoolVar(&noBrowser, "no-browser", false, "Don't open browser automatically (overrides config)")
	serveCmd.Flags().BoolVarP(&watchFiles, "watch", "w", true, "Watch the source file for changes")
	serveCmd.Flags().BoolVar(&autoplayFlag, "autoplay", false, "Start with autoplay enabled (overrides config)")
	serveCmd.Flags().IntVar(&transitionMs, "transition", 0, "Transition lock duration in milliseconds (overrides config)")
}

// validateServeArgs validates serve command arguments without starting server
func validateServeArgs(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("accepts 1 arg(s), received %d", len(args))
	}
	return nil
}

// validateServeConfig validates configuration after it's loaded
func validateServeConfig(config *entities.Config) error {
	// Port validation
	if config.Server.Port <= 0 || config.Server.Port > 65535 {
		return fmt.Errorf("invalid port number: %d", config.Server.Port)
	}

	// Host validation
	if strings.Contains(config.Server.Host, " ") || strings.Contains(config.Server.Host, "!") {
		return fmt.Errorf("invalid host: %s", config.Server.Host)
	}

	return nil
}

func runServe(cmd *cobra.Command, args []string) error {
	sourcePath := args[0]

	// Load and validate configuration
	finalConfig, err := loadAndValidateConfig(cmd, sourcePath)
	if err != nil {
		return err
	}

	// Get verbose flag and create logger with logging configuration
	verbose, _ := cmd.Flags().GetBool("verbose")

	// Override verbose setting from config if flag wasn't explicitly set
	if !cmd.Flags().Changed("verbose") {
		verbose = finalConfig.Logging.Verbose
	}

	logger := newLoggerWithLevel(verbose, finalConfig.Logging.GetLevel())
	printStartupInfo(logger, sourcePath, finalConfig)

	if err := validateSourceFile(sourcePath); err != nil {
		return err
	}

	// Wire the engine, server, and relayout service
	app, err := buildApplication(sourcePath, finalConfig)
	if err != nil {
		return err
	}

	// Start everything and handle lifecycle
	return runApplication(cmd.Context(), app, finalConfig, logger)
}

// loadAndValidateConfig loads configuration and validates it
func loadAndValidateConfig(cmd *cobra.Command, sourcePath string) (*entities.Config, error) {
	// Load configuration with proper precedence: CLI flags > env vars > local config > global config > defaults
	finalConfig, err := loadAndMergeConfig(cmd, sourcePath)
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}

	// Validate configuration
	if err := finalConfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	// Additional serve-specific validation
	if err := validateServeConfig(finalConfig); err != nil {
		return nil, err
	}

	return finalConfig, nil
}

// loadAndMergeConfig loads and merges configuration from multiple sources
func loadAndMergeConfig(cmd *cobra.Command, sourcePath string) (*entities.Config, error) {
	configService := services.NewConfigService(config.NewTOMLLoader(), config.NewConfigMerger())

	// The local config is looked up next to the slideshow source
	return configService.LoadConfig(context.Background(), filepath.Dir(sourcePath), collectFlagOverrides(cmd))
}

// collectFlagOverrides gathers explicitly set CLI flags for the config
// merger. Only changed flags are included so config file values survive.
func collectFlagOverrides(cmd *cobra.Command) map[string]interface{} {
	flags := make(map[string]interface{})

	if cmd.Flags().Changed("port") {
		flags["port"] = port
	}
	if cmd.Flags().Changed("host") {
		flags["host"] = host
	}
	if cmd.Flags().Changed("no-browser") {
		flags["no-browser"] = noBrowser
	}
	if cmd.Flags().Changed("autoplay") {
		flags["autoplay"] = autoplayFlag
	}
	if cmd.Flags().Changed("transition") {
		flags["transition"] = transitionMs
	}

	return flags
}

// printStartupInfo prints startup information if verbose mode is enabled
func printStartupInfo(logger *Logger, sourcePath string, config *entities.Config) {
	logger.Info("Starting server for slideshow: %s", sourcePath)
	logger.Info("Attempting to start server at: http://%s:%d", config.Server.Host, config.Server.Port)
	if config.Browser.AutoOpen {
		logger.Info("Browser will open automatically if server starts successfully")
	}
	if config.Slideshow.Autoplay.GetEnabled() {
		logger.Info("Autoplay enabled with %s delay", config.Slideshow.Autoplay.GetDelay())
	}
}

// validateSourceFile checks the slideshow source exists and is a regular file
func validateSourceFile(path string) error {
	fileInfo, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("accessing slideshow file: %w", err)
	}
	if !fileInfo.Mode().IsRegular() {
		return fmt.Errorf("slideshow path is not a regular file: %s", path)
	}
	return nil
}

// application bundles the wired pieces of the serve command
type application struct {
	engine   *services.Engine
	server   *httpadapter.Server
	relayout *services.RelayoutService
	source   string
}

// buildApplication wires the adapters and services behind the serve command
func buildApplication(sourcePath string, config *entities.Config) (*application, error) {
	slogger := newSlogLogger(config.Logging)

	markdown := parser.NewGoldmarkParser()
	slides := parser.NewSlideshowParserAdapter(markdown)
	repoWatcher := watcher.NewPollingWatcher(config.Watcher.GetInterval(), config.Watcher.GetDebounce(), slogger)
	repo := repository.NewMarkdownRepository(slides, repoWatcher)
	slideshows := services.NewSlideshowService(repo, slides, renderer.NewSlideRendererAdapter(markdown))

	pages, err := renderer.NewTemplateRenderer()
	if err != nil {
		return nil, fmt.Errorf("creating renderer: %w", err)
	}

	injector := styles.NewInjector()
	tracker := viewport.NewTracker()
	bus := events.NewBus()

	httpClient := ports.NewRealHTTPClient(ports.HTTPClientConfig{
		Timeout:    10 * time.Second,
		MaxRetries: 1,
		RetryDelay: 500 * time.Millisecond,
		UserAgent:  "slishow/" + Version,
	})
	images := imageloader.NewLoader(httpClient, slogger)

	engine := services.NewEngine(
		sourcePath,
		slideshows,
		pages,
		dom.NewFactory(),
		injector,
		images,
		bus,
		tracker,
		tracker,
		ports.NewRealScheduler(),
		config.Slideshow,
		slogger,
	)

	server := httpadapter.NewServerWithLogging(engine, pages, injector, tracker, &config.Server, &config.Logging)

	// Slide assets resolve relative to the markdown file
	server.SetAssetsDir(filepath.Dir(sourcePath))

	// Push every accepted transition to connected clients, with the
	// container markup as the controller left it
	engine.SetHooks(services.Hooks{
		OnStateChange: func(state entities.ControllerState) {
			html, err := engine.ContainerHTML()
			if err != nil {
				slogger.Warn("serializing container for broadcast", slog.String("error", err.Error()))
			}
			server.BroadcastState(state, html)
		},
	})

	// The relayout service gets its own watcher; the repository watcher
	// serves on-demand watches through the slideshow service
	relayoutWatcher := watcher.NewPollingWatcher(config.Watcher.GetInterval(), config.Watcher.GetDebounce(), slogger)
	relayout := services.NewRelayoutService(relayoutWatcher, server, engine, slogger)

	return &application{
		engine:   engine,
		server:   server,
		relayout: relayout,
		source:   sourcePath,
	}, nil
}

// newSlogLogger builds the structured logger the domain services share
func newSlogLogger(config entities.LoggingConfig) *slog.Logger {
	var level slog.Level
	switch config.GetLevel() {
	case entities.LogLevelDebug:
		level = slog.LevelDebug
	case entities.LogLevelWarn:
		level = slog.LevelWarn
	case entities.LogLevelError:
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	if config.JSONFormat {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

// runApplication builds the presentation, starts the server, and blocks
// until the command context is cancelled
func runApplication(ctx context.Context, app *application, config *entities.Config, logger *Logger) error {
	if err := checkPortAvailable(config.Server.Host, config.Server.Port); err != nil {
		return err
	}

	if err := app.engine.Build(ctx); err != nil {
		return fmt.Errorf("building slideshow: %w", err)
	}
	defer app.engine.Destroy()

	if err := app.server.Start(ctx, config.Server.Port, config.Server.Host); err != nil {
		return fmt.Errorf("starting server: %w", err)
	}
	logger.Success("Server running at: http://%s:%d", config.Server.Host, config.Server.Port)

	if watchFiles {
		if err := app.relayout.Start(ctx, app.source); err != nil {
			logger.Warn("File watching unavailable: %v", err)
		} else {
			logger.Info("Watching %s for changes", app.source)
			defer func() { _ = app.relayout.Stop() }()
		}
	}

	// Open browser if configured
	if config.Browser.AutoOpen {
		openBrowserIfConfigured(config, logger)
	}

	// Block until the root context is cancelled by an interrupt
	<-ctx.Done()
	logger.Info("\nShutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), config.Server.GetShutdownTimeout())
	defer shutdownCancel()

	if err := app.server.Stop(shutdownCtx); err != nil {
		logger.Error("Error during shutdown: %v", err)
	}

	return nil
}

// checkPortAvailable verifies the address can be bound. The server
// listens asynchronously, so a taken port is surfaced here instead of
// only being logged.
func checkPortAvailable(host string, port int) error {
	addr := fmt.Sprintf("%s:%d", host, port)

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("port %d is already in use or cannot be bound: %w", port, err)
	}

	if err := listener.Close(); err != nil {
		return fmt.Errorf("failed to release port after testing: %w", err)
	}

	return nil
}

// openBrowserIfConfigured opens the browser if auto-open is enabled
func openBrowserIfConfigured(config *entities.Config, logger *Logger) {
	browserLauncher := browser.NewLauncher()
	url := fmt.Sprintf("http://%s:%d", config.Server.Host, config.Server.Port)

	if err := browserLauncher.Launch(url, false); err != nil {
		logger.Warn("Failed to open browser: %v", err)
	}
}

// getServerURL constructs the server URL from host and port
func getServerURL() string {
	return fmt.Sprintf("http://%s:%d", host, port)
}

package http

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/cors"

	"github.com/fredcamaral/slishow/internal/domain/entities"
	"github.com/fredcamaral/slishow/internal/domain/ports"
)

var logLevelRank = map[entities.LogLevel]int{
	entities.LogLevelDebug: 0,
	entities.LogLevelInfo:  1,
	entities.LogLevelWarn:  2,
	entities.LogLevelError: 3,
}

// HTTPLogger is the leveled logger shared by the server, its
// middleware, and the navigation handler.
type HTTPLogger struct {
	component string
	level     entities.LogLevel
}

// NewHTTPLogger creates a logger for the given component. Verbose
// drops the threshold to debug.
func NewHTTPLogger(component string, verbose bool) *HTTPLogger {
	level := entities.LogLevelInfo
	if verbose {
		level = entities.LogLevelDebug
	}
	return &HTTPLogger{component: component, level: level}
}

// NewHTTPLoggerWithLevel creates a logger with an explicit threshold.
func NewHTTPLoggerWithLevel(component string, level entities.LogLevel) *HTTPLogger {
	return &HTTPLogger{component: component, level: level}
}

func (l *HTTPLogger) printf(level entities.LogLevel, tag, format string, args ...interface{}) {
	if logLevelRank[level] < logLevelRank[l.level] {
		return
	}
	log.Printf("["+tag+"] ["+l.component+"] "+format, args...)
}

// Debug logs at debug level.
func (l *HTTPLogger) Debug(format string, args ...interface{}) {
	l.printf(entities.LogLevelDebug, "DEBUG", format, args...)
}

// Info logs at info level.
func (l *HTTPLogger) Info(format string, args ...interface{}) {
	l.printf(entities.LogLevelInfo, "INFO", format, args...)
}

// Warn logs at warn level.
func (l *HTTPLogger) Warn(format string, args ...interface{}) {
	l.printf(entities.LogLevelWarn, "WARN", format, args...)
}

// Error logs at error level.
func (l *HTTPLogger) Error(format string, args ...interface{}) {
	l.printf(entities.LogLevelError, "ERROR", format, args...)
}

// Success logs a completed operation at info level.
func (l *HTTPLogger) Success(format string, args ...interface{}) {
	l.printf(entities.LogLevelInfo, "SUCCESS", format, args...)
}

// Server implements the HTTPServer interface. It serves the rendered
// page, the container fragment, the slideshow API, and the WebSocket
// relay that carries client events up and state updates down.
type Server struct {
	server    *http.Server
	connMgr   *ConnectionManager
	engine    ports.Engine
	renderer  ports.Renderer
	styles    ports.StyleInjector
	viewport  ports.ViewportSink
	navigator *NavigatorHandler
	config    *entities.ServerConfig
	logger    *HTTPLogger
	upgrader  websocket.Upgrader
	assetsDir string
	mu        sync.RWMutex
	running   bool
}

// NewServer creates a server around the given domain ports. config
// must not be nil; use config.GetDefaultConfig().Server if needed.
func NewServer(engine ports.Engine, renderer ports.Renderer, styles ports.StyleInjector, viewport ports.ViewportSink, config *entities.ServerConfig) *Server {
	if config == nil {
		panic("server config cannot be nil - provide a valid ServerConfig")
	}

	s := &Server{
		engine:    engine,
		renderer:  renderer,
		styles:    styles,
		viewport:  viewport,
		connMgr:   NewConnectionManager(),
		navigator: NewNavigatorHandler(engine),
		config:    config,
		logger:    NewHTTPLogger("server", false),
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     s.isValidOrigin,
	}
	return s
}

// NewServerWithLogging creates a server whose log threshold comes from
// the logging configuration. Verbose overrides the configured level.
func NewServerWithLogging(engine ports.Engine, renderer ports.Renderer, styles ports.StyleInjector, viewport ports.ViewportSink, config *entities.ServerConfig, loggingConfig *entities.LoggingConfig) *Server {
	s := NewServer(engine, renderer, styles, viewport, config)

	level := entities.LogLevelInfo
	if loggingConfig != nil {
		level = loggingConfig.GetLevel()
		if loggingConfig.Verbose {
			level = entities.LogLevelDebug
		}
	}

	s.logger = NewHTTPLoggerWithLevel("server", level)
	s.navigator = NewNavigatorHandlerWithLogging(s.engine, loggingConfig)
	return s
}

// SetAssetsDir sets the directory slide assets are served from. Usually
// the directory holding the slideshow source, so relative image URLs
// resolve next to the markdown file. Must be set before Start.
func (s *Server) SetAssetsDir(dir string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.assetsDir = dir
}

// Start brings the server up on host:port and returns once it is
// listening in the background.
func (s *Server) Start(ctx context.Context, port int, host string) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return errors.New("server already running")
	}

	go s.connMgr.Run(ctx)

	c := cors.New(cors.Options{
		AllowedOrigins:   s.config.GetCORSOrigins(),
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Accept"},
		AllowCredentials: false,
		MaxAge:           300,
	})

	s.server = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", host, port),
		Handler:      c.Handler(s.setupRoutes()),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	s.running = true
	s.mu.Unlock()

	go func() {
		s.logger.Info("HTTP server starting on %s:%d", host, port)
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error("HTTP server error: %v", err)
		}
	}()

	return nil
}

// Stop drains WebSocket connections and shuts the listener down
// gracefully.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return errors.New("server not running")
	}

	s.connMgr.CloseAll()

	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := s.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	s.running = false
	return nil
}

// NotifyClients sends an update event to all connected clients.
func (s *Server) NotifyClients(event ports.UpdateEvent) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.running {
		return errors.New("server not running")
	}

	s.connMgr.Broadcast(event)
	return nil
}

// IsRunning reports whether Start has succeeded and Stop has not.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// ClientCount returns the number of connected WebSocket clients.
func (s *Server) ClientCount() int {
	return s.connMgr.Count()
}

func (s *Server) setupRoutes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/ws", s.handleWebSocket)

	mux.HandleFunc("/api/slideshow", s.handleSlideshow)
	mux.HandleFunc("/api/config", s.handleConfig)

	// Navigation API rides on a gorilla router for method-aware routing.
	mux.Handle("/api/", s.navigator.Routes())

	// Container fragment, refetched by clients after a state update.
	mux.HandleFunc("/container", s.handleContainer)

	mux.HandleFunc("/", s.handlePage)

	if s.assetsDir != "" {
		mux.Handle("/assets/", http.StripPrefix("/assets/", s.secureFileServer(s.assetsDir)))
	}

	// Innermost first: security headers, rate limiting, request logging,
	// panic recovery.
	handler := securityHeadersMiddleware(mux)
	handler = rateLimitMiddleware(handler)
	handler = createLoggingMiddleware(handler, s.logger)
	handler = createRecoveryMiddleware(handler, s.logger)

	return handler
}

// secureFileServer serves files under root while refusing anything
// that would resolve outside it.
func (s *Server) secureFileServer(root string) http.Handler {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		s.logger.Error("Assets directory %q is unusable: %v", root, err)
		return http.NotFoundHandler()
	}
	files := http.FileServer(http.Dir(absRoot))

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clean := filepath.Clean(r.URL.Path)
		if strings.Contains(clean, "..") {
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}

		target := filepath.Join(absRoot, clean)
		if target != absRoot && !strings.HasPrefix(target, absRoot+string(filepath.Separator)) {
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}

		if _, err := os.Stat(target); os.IsNotExist(err) {
			http.NotFound(w, r)
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("Cache-Control", "public, max-age=3600")
		files.ServeHTTP(w, r)
	})
}

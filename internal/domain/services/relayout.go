package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/fredcamaral/slishow/internal/domain/ports"
)

// RelayoutService coordinates file watching with engine rebuilds and
// WebSocket notifications: when the slideshow source changes, the
// container document and its controller are rebuilt and connected
// clients are told to refetch.
type RelayoutService struct {
	watcher     ports.FileWatcher
	server      ports.HTTPServer
	engine      ports.Engine
	logger      *slog.Logger
	mu          sync.Mutex
	watching    bool
	watchCancel context.CancelFunc
	sourcePath  string
}

// NewRelayoutService creates a new relayout service
func NewRelayoutService(
	watcher ports.FileWatcher,
	server ports.HTTPServer,
	engine ports.Engine,
	logger *slog.Logger,
) *RelayoutService {
	if logger == nil {
		logger = slog.Default()
	}

	return &RelayoutService{
		watcher: watcher,
		server:  server,
		engine:  engine,
		logger:  logger.With("service", "relayout"),
	}
}

// Start starts watching the slideshow source
func (s *RelayoutService) Start(ctx context.Context, filePath string) error {
	s.mu.Lock()
	if s.watching {
		s.mu.Unlock()
		return errors.New("already watching")
	}
	s.watching = true
	s.sourcePath = filePath
	s.mu.Unlock()

	// Create a cancellable context for the watcher
	watchCtx, cancel := context.WithCancel(ctx)
	s.mu.Lock()
	s.watchCancel = cancel
	s.mu.Unlock()

	events, err := s.watcher.Watch(watchCtx, filePath)
	if err != nil {
		s.mu.Lock()
		s.watching = false
		s.watchCancel = nil
		s.mu.Unlock()
		cancel()
		return fmt.Errorf("starting watcher: %w", err)
	}

	go s.handleEvents(watchCtx, events)

	return nil
}

// Stop stops watching the slideshow source
func (s *RelayoutService) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.watching {
		return nil
	}

	if s.watchCancel != nil {
		s.watchCancel()
		s.watchCancel = nil
	}

	s.watching = false
	return nil
}

// IsWatching returns whether the service is currently watching
func (s *RelayoutService) IsWatching() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.watching
}

// handleEvents handles file change events
func (s *RelayoutService) handleEvents(ctx context.Context, events <-chan ports.FileChangeEvent) {
	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-events:
			if !ok {
				return
			}

			s.logger.Info("file change detected",
				slog.String("path", event.Path),
				slog.String("type", event.Type.String()),
				slog.Time("timestamp", event.Timestamp),
			)

			// Rebuild the container document and controller
			if err := s.engine.Rebuild(ctx); err != nil {
				s.logger.Error("failed to rebuild presentation",
					slog.String("error", err.Error()),
					slog.String("path", event.Path),
					slog.String("change_type", event.Type.String()),
				)

				errEvent := ports.UpdateEvent{
					Type:      ports.EventTypeError,
					Timestamp: event.Timestamp,
					Data: map[string]interface{}{
						"file":  event.Path,
						"error": err.Error(),
					},
				}
				if notifyErr := s.server.NotifyClients(errEvent); notifyErr != nil {
					s.logger.Warn("failed to notify clients of rebuild error",
						slog.String("error", notifyErr.Error()),
					)
				}
				continue
			}

			// Tell connected clients to refetch the container
			updateEvent := ports.UpdateEvent{
				Type:      ports.EventTypeReload,
				Timestamp: event.Timestamp,
				Data: map[string]interface{}{
					"file": event.Path,
					"type": event.Type.String(),
				},
			}

			if err := s.server.NotifyClients(updateEvent); err != nil {
				s.logger.Warn("failed to notify clients",
					slog.String("error", err.Error()),
					slog.String("event_type", ports.EventTypeReload),
					slog.String("file", event.Path),
				)
			} else {
				s.logger.Debug("clients notified",
					slog.String("event_type", ports.EventTypeReload),
					slog.String("file", event.Path),
				)
			}
		}
	}
}

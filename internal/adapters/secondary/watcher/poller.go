package watcher

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fredcamaral/slishow/internal/domain/ports"
)

// PollingWatcher detects slideshow source changes by re-reading the file
// on a fixed interval. Polling keeps working when editors replace the
// file on save, which inotify-style watchers lose track of.
type PollingWatcher struct {
	interval time.Duration
	debounce time.Duration
	logger   *slog.Logger
	events   chan ports.FileChangeEvent
	quit     chan struct{}
	wg       sync.WaitGroup
	mu       sync.Mutex
	stopped  bool
}

// fingerprint is one observed state of a watched file. The zero value
// means the file was absent.
type fingerprint struct {
	present bool
	size    int64
	modTime time.Time
	sum     [sha256.Size]byte
}

// NewPollingWatcher creates a watcher that polls at interval and holds
// back follow-up events for the debounce window.
func NewPollingWatcher(interval, debounce time.Duration, logger *slog.Logger) *PollingWatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &PollingWatcher{
		interval: interval,
		debounce: debounce,
		logger:   logger,
		events:   make(chan ports.FileChangeEvent, 10),
		quit:     make(chan struct{}),
	}
}

// Watch starts polling path. Every watched path reports into the same
// returned channel, which closes when the watcher is stopped.
func (w *PollingWatcher) Watch(ctx context.Context, path string) (<-chan ports.FileChangeEvent, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}

	first, err := readFingerprint(abs)
	if err != nil {
		return nil, fmt.Errorf("fingerprinting %s: %w", abs, err)
	}

	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return nil, errors.New("watcher already stopped")
	}
	w.wg.Add(1)
	w.mu.Unlock()

	go w.poll(ctx, abs, first)

	return w.events, nil
}

// Stop ends all polling loops and closes the events channel. Safe to
// call more than once.
func (w *PollingWatcher) Stop() error {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return nil
	}
	w.stopped = true
	close(w.quit)
	w.mu.Unlock()

	w.wg.Wait()
	close(w.events)
	return nil
}

// poll owns the fingerprint for one path, so no state is shared between
// watched files.
func (w *PollingWatcher) poll(ctx context.Context, path string, last fingerprint) {
	defer w.wg.Done()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	var quietUntil time.Time

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.quit:
			return
		case <-ticker.C:
		}

		current, err := observe(path, last)
		if err != nil {
			w.logger.Warn("polling slideshow source",
				slog.String("path", path),
				slog.String("error", err.Error()))
			continue
		}

		change, changed := transition(last, current)
		last = current
		if !changed || time.Now().Before(quietUntil) {
			continue
		}

		event := ports.FileChangeEvent{
			Path:      path,
			Type:      change,
			Timestamp: time.Now(),
		}

		select {
		case w.events <- event:
			quietUntil = time.Now().Add(w.debounce)
		case <-ctx.Done():
			return
		case <-w.quit:
			return
		}
	}
}

// transition classifies the change between two observed states.
func transition(prev, next fingerprint) (ports.ChangeType, bool) {
	switch {
	case prev.present && !next.present:
		return ports.Deleted, true
	case !prev.present && next.present:
		return ports.Created, true
	case next.present && next.sum != prev.sum:
		return ports.Modified, true
	default:
		return ports.Modified, false
	}
}

// observe re-fingerprints path for one poll tick. A missing file is an
// observed state, and an unchanged stat result short-circuits the
// content read.
func observe(path string, prev fingerprint) (fingerprint, error) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return fingerprint{}, nil
	}
	if err != nil {
		return fingerprint{}, err
	}

	if prev.present && prev.size == info.Size() && prev.modTime.Equal(info.ModTime()) {
		return prev, nil
	}

	current, err := readFingerprint(path)
	if os.IsNotExist(err) {
		// Deleted between the stat and the read
		return fingerprint{}, nil
	}
	return current, err
}

// readFingerprint captures the state comparisons run on. Content is
// hashed so touch without edits stays quiet.
func readFingerprint(path string) (fingerprint, error) {
	info, err := os.Stat(path)
	if err != nil {
		return fingerprint{}, err
	}

	content, err := os.ReadFile(path) // #nosec G304 - watched paths come from the operator
	if err != nil {
		return fingerprint{}, err
	}

	return fingerprint{
		present: true,
		size:    info.Size(),
		modTime: info.ModTime(),
		sum:     sha256.Sum256(content),
	}, nil
}

var _ ports.FileWatcher = (*PollingWatcher)(nil)

package ports

import (
	"context"
	"time"
)

// FileWatcher watches slideshow source files for changes.
type FileWatcher interface {
	// Watch starts watching path and emits an event per observed
	// change until the context is canceled
	Watch(ctx context.Context, path string) (<-chan FileChangeEvent, error)
	// Stop shuts the watcher down and closes its event channel
	Stop() error
}

// FileChangeEvent is one observed change to a watched file.
type FileChangeEvent struct {
	Path      string
	Type      ChangeType
	Timestamp time.Time
}

// ChangeType classifies a file change.
type ChangeType int

const (
	// Modified means the file content changed in place
	Modified ChangeType = iota
	// Created means the file appeared
	Created
	// Deleted means the file went away
	Deleted
)

var changeTypeNames = [...]string{"modified", "created", "deleted"}

func (c ChangeType) String() string {
	if c < 0 || int(c) >= len(changeTypeNames) {
		return "unknown"
	}
	return changeTypeNames[c]
}

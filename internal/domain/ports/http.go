package ports

import (
	"context"
	"time"
)

// HTTPServer is the serving surface the relayout service pushes
// updates through
type HTTPServer interface {
	Start(ctx context.Context, port int, host string) error
	Stop(ctx context.Context) error
	NotifyClients(event UpdateEvent) error
	IsRunning() bool
}

// UpdateEvent is one message pushed to connected WebSocket clients
type UpdateEvent struct {
	Type      string      `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
}

// Update event types pushed over the WebSocket
const (
	EventTypeReload     = "reload"
	EventTypeFileChange = "file_change"
	EventTypeError      = "error"
	EventTypeState      = "state"
)

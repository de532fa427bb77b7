package http

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/fredcamaral/slishow/internal/domain/ports"
)

// Connection is one live WebSocket subscriber as the manager sees it.
// Send is owned by the manager once registered: the manager closes it
// when the connection is dropped.
type Connection struct {
	ID   string
	Send chan ports.UpdateEvent
}

// ConnectionManager fans slideshow events out to every connected
// client. The connection map is confined to the Run goroutine; all
// mutation flows through channels, so there is no lock to hold across
// a broadcast.
type ConnectionManager struct {
	connections map[string]*Connection

	register   chan *Connection
	unregister chan string
	broadcast  chan ports.UpdateEvent

	count atomic.Int64

	stop     chan struct{}
	stopOnce sync.Once
	done     chan struct{}
}

// NewConnectionManager creates a manager. Nothing happens until Run is
// started; Run is single-use.
func NewConnectionManager() *ConnectionManager {
	return &ConnectionManager{
		connections: make(map[string]*Connection),
		register:    make(chan *Connection),
		unregister:  make(chan string),
		broadcast:   make(chan ports.UpdateEvent, 256),
		stop:        make(chan struct{}),
		done:        make(chan struct{}),
	}
}

// Run owns the connection map until the context is cancelled or
// CloseAll is called. On exit every remaining connection is dropped and
// done is closed, which unblocks any caller stuck in a channel send.
func (cm *ConnectionManager) Run(ctx context.Context) {
	defer func() {
		for id := range cm.connections {
			cm.drop(id)
		}
		close(cm.done)
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case <-cm.stop:
			return
		case conn := <-cm.register:
			cm.connections[conn.ID] = conn
			cm.count.Store(int64(len(cm.connections)))
		case id := <-cm.unregister:
			cm.drop(id)
		case event := <-cm.broadcast:
			for id, conn := range cm.connections {
				select {
				case conn.Send <- event:
				default:
					// A full send buffer means the client stopped
					// reading; cut it loose rather than stall the rest.
					cm.drop(id)
				}
			}
		}
	}
}

// drop removes a connection and closes its send channel. Only the Run
// goroutine may call it.
func (cm *ConnectionManager) drop(id string) {
	conn, ok := cm.connections[id]
	if !ok {
		return
	}
	delete(cm.connections, id)
	close(conn.Send)
	cm.count.Store(int64(len(cm.connections)))
}

// RegisterConnection hands a connection to the manager. The connection
// may not yet be visible in Count when this returns.
func (cm *ConnectionManager) RegisterConnection(conn *Connection) {
	select {
	case cm.register <- conn:
	case <-cm.done:
	}
}

// Unregister drops the connection with the given ID. Unknown IDs are
// ignored.
func (cm *ConnectionManager) Unregister(id string) {
	select {
	case cm.unregister <- id:
	case <-cm.done:
	}
}

// Broadcast queues an event for delivery to all connections. Events
// sent after shutdown are discarded.
func (cm *ConnectionManager) Broadcast(event ports.UpdateEvent) {
	select {
	case cm.broadcast <- event:
	case <-cm.done:
	}
}

// Count reports how many connections the manager currently holds.
func (cm *ConnectionManager) Count() int {
	return int(cm.count.Load())
}

// CloseAll stops the manager and drops every connection. It returns
// once Run has exited, and is safe to call more than once.
func (cm *ConnectionManager) CloseAll() {
	cm.stopOnce.Do(func() {
		close(cm.stop)
	})
	<-cm.done
}

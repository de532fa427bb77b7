package http

import (
	"encoding/json"
	"net/http"
	"net/netip"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/fredcamaral/slishow/internal/domain/entities"
	"github.com/fredcamaral/slishow/internal/domain/ports"
)

const (
	// writeWait bounds a single write to the peer
	writeWait = 10 * time.Second

	// pongWait is how long a silent peer stays acceptable
	pongWait = 60 * time.Second

	// pingPeriod must fire comfortably inside pongWait
	pingPeriod = (pongWait * 9) / 10

	// maxMessageSize caps inbound client messages
	maxMessageSize = 1024
)

// WebSocketClient is one upgraded browser connection with its outbound
// queue and the ports its messages feed into.
type WebSocketClient struct {
	id       string
	conn     *websocket.Conn
	send     chan ports.UpdateEvent
	manager  *ConnectionManager
	engine   ports.Engine
	viewport ports.ViewportSink
	logger   *HTTPLogger
}

// ClientMessage represents a message received from the client. A hello
// message announces capabilities and initial geometry; an event message
// relays one browser interaction.
type ClientMessage struct {
	Type     string             `json:"type"`
	Touch    bool               `json:"touch,omitempty"`
	Viewport *entities.Viewport `json:"viewport,omitempty"`
	Event    *entities.Event    `json:"event,omitempty"`
}

// handleWebSocket upgrades the request and hands the socket to a pair
// of pump goroutines.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("WebSocket upgrade failed: %v", err)
		return
	}

	client := &WebSocketClient{
		id:       uuid.New().String(),
		conn:     conn,
		send:     make(chan ports.UpdateEvent, 256),
		manager:  s.connMgr,
		engine:   s.engine,
		viewport: s.viewport,
		logger:   s.logger,
	}
	s.connMgr.RegisterConnection(&Connection{ID: client.id, Send: client.send})

	go client.writeLoop()
	go client.readLoop()

	client.greet()
}

// greet queues the handshake event a fresh client waits for before
// opening its own dialogue.
func (c *WebSocketClient) greet() {
	event := ports.UpdateEvent{
		Type:      "connected",
		Timestamp: time.Now(),
		Data: map[string]string{
			"message": "Connected to slishow server",
			"version": "1.0.0",
		},
	}
	select {
	case c.send <- event:
	default:
	}
}

// readLoop consumes client messages until the connection drops, then
// unregisters the client.
func (c *WebSocketClient) readLoop() {
	defer func() {
		c.manager.Unregister(c.id)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, payload, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Error("WebSocket connection error: %v", err)
			}
			return
		}

		var msg ClientMessage
		if err := json.Unmarshal(payload, &msg); err != nil {
			c.logger.Error("Failed to parse client message: %v", err)
			continue
		}
		c.dispatch(msg)
	}
}

// writeLoop owns all writes on the socket: queued events plus the
// keepalive pings.
func (c *WebSocketClient) writeLoop() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case event, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The manager dropped us; close the socket politely.
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(event); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// dispatch routes one parsed client message.
func (c *WebSocketClient) dispatch(msg ClientMessage) {
	switch msg.Type {
	case "hello":
		if msg.Viewport != nil {
			c.viewport.SetGeometry(*msg.Viewport)
		}
		c.viewport.SetTouch(msg.Touch)
		c.logger.Debug("Client %s hello: touch=%v", c.id, msg.Touch)

	case "event":
		if msg.Event == nil {
			c.logger.Warn("Event message without event payload from client %s", c.id)
			return
		}

		// Record the reported geometry before the event is dispatched,
		// so in-view checks see the client's current layout.
		if msg.Event.Viewport != nil {
			c.viewport.SetGeometry(*msg.Event.Viewport)
		}

		c.engine.Publish(msg.Event)

	default:
		c.logger.Debug("Unknown message type %q from client %s", msg.Type, c.id)
	}
}

// BroadcastReload tells every client to refetch the slideshow.
func (s *Server) BroadcastReload() {
	event := ports.UpdateEvent{
		Type:      ports.EventTypeReload,
		Timestamp: time.Now(),
		Data: map[string]interface{}{
			"message": "Slideshow updated",
		},
	}
	_ = s.NotifyClients(event)
}

// BroadcastFileChange tells every client which source file changed.
func (s *Server) BroadcastFileChange(filename string) {
	event := ports.UpdateEvent{
		Type:      ports.EventTypeFileChange,
		Timestamp: time.Now(),
		Data: map[string]interface{}{
			"file":    filename,
			"message": "File changed",
		},
	}
	_ = s.NotifyClients(event)
}

// BroadcastState sends the controller state and refreshed container
// markup to all connected clients. Called after every accepted
// transition so browsers can swap in the new active markers.
func (s *Server) BroadcastState(state entities.ControllerState, html string) {
	event := ports.UpdateEvent{
		Type:      ports.EventTypeState,
		Timestamp: time.Now(),
		Data: map[string]interface{}{
			"state": state,
			"html":  html,
		},
	}
	_ = s.NotifyClients(event)
}

// isValidOrigin is the upgrade gate. Browsers send an Origin header on
// cross-origin WebSocket dials; same-origin dials may omit it, which is
// accepted.
func (s *Server) isValidOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}

	originURL, err := url.Parse(origin)
	if err != nil {
		s.logger.Warn("WebSocket connection rejected: invalid origin URL %q: %v", origin, err)
		return false
	}

	if s.config.IsDevelopment() {
		return isLocalOrigin(originURL)
	}
	return s.isAllowedOrigin(originURL)
}

// isLocalOrigin accepts loopback and private-network hosts, which is
// everywhere a development slideshow is reachable from. Hostnames that
// merely start with a private prefix do not parse as addresses and so
// do not slip through.
func isLocalOrigin(originURL *url.URL) bool {
	hostname := originURL.Hostname()
	if hostname == "localhost" {
		return true
	}

	addr, err := netip.ParseAddr(hostname)
	if err != nil {
		return false
	}
	return addr.IsLoopback() || addr.IsUnspecified() || addr.IsPrivate()
}

// isAllowedOrigin holds non-development upgrades to the configured
// origin whitelist, with *.example.com wildcard support.
func (s *Server) isAllowedOrigin(originURL *url.URL) bool {
	for _, allowed := range s.config.GetCORSOrigins() {
		if originURL.String() == allowed {
			return true
		}
		if domain, ok := strings.CutPrefix(allowed, "*."); ok && strings.HasSuffix(originURL.Hostname(), domain) {
			return true
		}
	}

	s.logger.Warn("WebSocket connection rejected: origin %s not in whitelist %v",
		originURL.String(), s.config.GetCORSOrigins())
	return false
}

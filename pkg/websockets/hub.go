package websockets

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	defaultWriteTimeout = 10 * time.Second
	sendBufferSize      = 256
)

// client is one registered connection. All writes to the underlying conn go
// through the send channel and its single writePump goroutine; gorilla
// permits only one concurrent writer per connection.
type client struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub is the in-process fan-out for realtime pushes. Connected clients get
// every published message; which ones they act on is decided client-side by
// channel.
type Hub struct {
	mu    sync.Mutex
	conns map[*client]bool

	upgrader     websocket.Upgrader
	writeTimeout time.Duration
	logger       *slog.Logger
}

// NewHub creates a Hub.
func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		conns: make(map[*client]bool),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				// The frontend is served from another origin.
				return true
			},
		},
		writeTimeout: defaultWriteTimeout,
		logger:       logger,
	}
}

// Make sure we conform to the interface
var _ Publisher = (*Hub)(nil)

// ServeWS upgrades an HTTP request and registers the connection. The read
// side is drained until the client goes away; inbound frames (the subscribe
// announcement included) carry no server-side meaning.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("failed to upgrade websocket connection", "error", err)
		return
	}

	c := &client{conn: conn, send: make(chan []byte, sendBufferSize)}
	h.mu.Lock()
	h.conns[c] = true
	h.mu.Unlock()

	go h.writePump(c)
	go h.readPump(c)
}

// Publish queues a message for every connected client. Clients whose send
// buffer is full are treated as stale and dropped.
func (h *Hub) Publish(ctx context.Context, message Message) error {
	payload, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	// Sends and channel closes both happen under the lock, so a concurrent
	// drop can never close a channel mid-send.
	h.mu.Lock()
	var stale []*client
	for c := range h.conns {
		select {
		case c.send <- payload:
		default:
			stale = append(stale, c)
		}
	}
	for _, c := range stale {
		h.logger.Info("stale connection found, dropping")
		h.dropLocked(c)
	}
	h.mu.Unlock()

	return nil
}

// Close drops every connection. Used on shutdown.
func (h *Hub) Close() {
	h.mu.Lock()
	for c := range h.conns {
		h.dropLocked(c)
	}
	h.mu.Unlock()
}

// writePump is the connection's only writer. It drains the send channel
// until the client is dropped or a write fails.
func (h *Hub) writePump(c *client) {
	defer h.remove(c)
	for payload := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(h.writeTimeout))
		if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			return
		}
	}
	// Channel closed by a drop; tell the client we are going away.
	c.conn.SetWriteDeadline(time.Now().Add(h.writeTimeout))
	c.conn.WriteMessage(websocket.CloseMessage, []byte{})
}

func (h *Hub) readPump(c *client) {
	defer h.remove(c)
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	h.dropLocked(c)
	h.mu.Unlock()
}

// dropLocked unregisters the client and closes its send channel, ending its
// writePump. Safe to call for an already-dropped client.
func (h *Hub) dropLocked(c *client) {
	if !h.conns[c] {
		return
	}
	delete(h.conns, c)
	close(c.send)
	c.conn.Close()
}

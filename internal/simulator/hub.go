package simulator

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/gorilla/websocket"
)

// client owns one websocket connection. Every outbound frame goes through
// the send channel and a single writer goroutine; the connection allows at
// most one concurrent writer.
type client struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub fans live state snapshots out to connected websocket clients. Slow
// or dead clients are dropped rather than allowed to stall the broadcast.
type Hub struct {
	logger *slog.Logger

	mu      sync.Mutex
	clients map[*client]bool
}

// NewHub constructs an empty hub.
func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		logger:  logger,
		clients: make(map[*client]bool),
	}
}

// Register adds a client, queues it the initial snapshot, and blocks reading
// until the peer disconnects. Intended to be called from the HTTP handler
// goroutine that owns the connection. The initial snapshot is queued before
// the client joins the broadcast set, so it is always the first frame the
// peer receives.
func (h *Hub) Register(ctx context.Context, conn *websocket.Conn, initial map[string]ServiceState) {
	c := &client{conn: conn, send: make(chan []byte, 8)}
	if data, err := json.Marshal(initial); err == nil {
		c.send <- data
	}

	h.mu.Lock()
	h.clients[c] = true
	count := len(h.clients)
	h.mu.Unlock()
	h.logger.Debug("websocket client connected", slog.Int("clients", count))

	go h.writeLoop(c)

	// Drain the read side to detect disconnects and honour close frames.
	for {
		if ctx.Err() != nil {
			break
		}
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
	h.remove(c)
}

// writeLoop is the sole writer for one connection. It exits when remove
// closes the send channel.
func (h *Hub) writeLoop(c *client) {
	for data := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			h.remove(c)
		}
	}
}

// Broadcast queues a snapshot to every connected client. A client whose
// send buffer is full is disconnected instead of blocking the caller.
func (h *Hub) Broadcast(snapshot map[string]ServiceState) {
	data, err := json.Marshal(snapshot)
	if err != nil {
		h.logger.Error("marshal snapshot", slog.Any("error", err))
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			h.removeLocked(c)
		}
	}
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		h.removeLocked(c)
	}
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(c)
}

// removeLocked tears a client down exactly once; membership in the client
// set is the idempotence guard. Closing the send channel stops writeLoop.
func (h *Hub) removeLocked(c *client) {
	if !h.clients[c] {
		return
	}
	delete(h.clients, c)
	close(c.send)
	c.conn.Close()
}

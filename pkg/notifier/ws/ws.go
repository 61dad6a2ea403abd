package ws

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Connection wraps websocket.Conn with metadata
type Connection struct {
	Conn     *websocket.Conn
	UserID   string
	LastSeen time.Time
}

// Hub tracks live connections per user so in-app notifications can be
// pushed as they are written.
type Hub struct {
	mu          sync.RWMutex
	connections map[string]map[*Connection]struct{} // userID -> set of connections
	stop        chan struct{}
	logger      *zap.Logger
}

func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		connections: make(map[string]map[*Connection]struct{}),
		stop:        make(chan struct{}),
		logger:      logger,
	}
}

// Add registers a connection for a user
func (h *Hub) Add(userID string, conn *websocket.Conn) *Connection {
	c := &Connection{Conn: conn, UserID: userID, LastSeen: time.Now()}

	h.mu.Lock()
	if _, ok := h.connections[userID]; !ok {
		h.connections[userID] = make(map[*Connection]struct{})
	}
	h.connections[userID][c] = struct{}{}
	total := len(h.connections[userID])
	h.mu.Unlock()

	h.logger.Debug("WS connected", zap.String("user_id", userID), zap.Int("total", total))
	return c
}

// Remove disconnects and removes a connection
func (h *Hub) Remove(c *Connection) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if conns, ok := h.connections[c.UserID]; ok {
		delete(conns, c)
		if len(conns) == 0 {
			delete(h.connections, c.UserID)
		}
	}
	_ = c.Conn.Close()
	h.logger.Debug("WS disconnected", zap.String("user_id", c.UserID))
}

// Send sends a JSON message to all connections of a user
func (h *Hub) Send(userID string, msg interface{}) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if conns, ok := h.connections[userID]; ok {
		for c := range conns {
			if err := c.Conn.WriteJSON(msg); err != nil {
				h.logger.Warn("failed WS send", zap.String("user_id", userID), zap.Error(err))
				go h.Remove(c)
			}
		}
	}
}

// Broadcast sends to all connected users
func (h *Hub) Broadcast(msg interface{}) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, conns := range h.connections {
		for c := range conns {
			if err := c.Conn.WriteJSON(msg); err != nil {
				h.logger.Warn("failed WS broadcast", zap.Error(err))
				go h.Remove(c)
			}
		}
	}
}

// Heartbeat pings all connections periodically to keep them alive.
// Returns when Close is called.
func (h *Hub) Heartbeat(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-h.stop:
			return
		case <-ticker.C:
			h.mu.RLock()
			for _, conns := range h.connections {
				for c := range conns {
					if time.Since(c.LastSeen) > 2*interval {
						go h.Remove(c)
						continue
					}
					_ = c.Conn.WriteControl(websocket.PingMessage, []byte{}, time.Now().Add(time.Second))
				}
			}
			h.mu.RUnlock()
		}
	}
}

// Close stops the heartbeat and drops every live connection.
func (h *Hub) Close() {
	close(h.stop)

	h.mu.Lock()
	defer h.mu.Unlock()
	for _, conns := range h.connections {
		for c := range conns {
			_ = c.Conn.Close()
		}
	}
	h.connections = make(map[string]map[*Connection]struct{})
}

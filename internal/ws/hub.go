// Package ws pushes freshly added notifications to connected clients.
// Each connection is registered under the user's role; a notification is
// delivered only to connections whose role is in its audience.
package ws

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/Nok1969/regent-work-order-system/internal/models"
)

const (
	writeWait  = 10 * time.Second
	sendBuffer = 16
)

type client struct {
	role models.Role
	send chan models.Notification
}

type Hub struct {
	log zerolog.Logger

	mu      sync.RWMutex
	clients map[*client]struct{}
}

func NewHub(log zerolog.Logger) *Hub {
	return &Hub{
		log:     log,
		clients: make(map[*client]struct{}),
	}
}

// Broadcast fans a notification out to every connection whose role is in
// the audience. Slow consumers are dropped rather than blocking the caller.
func (h *Hub) Broadcast(n models.Notification) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		if !n.Targets(c.role) {
			continue
		}
		select {
		case c.send <- n:
		default:
			h.log.Warn().Str("role", string(c.role)).Msg("ws client send buffer full, dropping")
		}
	}
}

// Serve pumps notifications to one connection until it closes.
func (h *Hub) Serve(conn *websocket.Conn, role models.Role) {
	c := &client{role: role, send: make(chan models.Notification, sendBuffer)}

	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		delete(h.clients, c)
		h.mu.Unlock()
		_ = conn.Close()
	}()

	// Reader goroutine only drains control frames and detects close.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case n := <-c.send:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(n); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}

// ClientCount reports active connections (used by tests and health detail).
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

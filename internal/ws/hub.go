package ws

import (
	"log/slog"
	"sync"
	"time"
)

// Hub tracks all connected clients and fans events out to them. Sends go
// through the hub so a client's send channel is never written after
// Unregister closed it; both happen under the hub's lock.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]bool
	logger  *slog.Logger
}

// NewHub creates a new Hub
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		clients: make(map[*Client]bool),
		logger:  logger.With(slog.String("component", "ws")),
	}
}

// Register adds a client to the hub
func (h *Hub) Register(client *Client) {
	h.mu.Lock()
	h.clients[client] = true
	clientCount := len(h.clients)
	h.mu.Unlock()
	h.logger.Info("client registered",
		slog.String("profile_id", string(client.profileID)),
		slog.Int("total_clients", clientCount))
}

// Unregister removes a client and closes its send channel
func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	if _, ok := h.clients[client]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.clients, client)
	close(client.send)
	clientCount := len(h.clients)
	h.mu.Unlock()
	h.logger.Info("client unregistered",
		slog.String("profile_id", string(client.profileID)),
		slog.Duration("connection_duration", time.Since(client.connectedAt)),
		slog.Int("total_clients", clientCount))
}

// Broadcast sends an event to every connected client
func (h *Hub) Broadcast(event string, data any) {
	h.broadcast(nil, event, data)
}

// BroadcastExcept sends an event to every connected client except one
func (h *Hub) BroadcastExcept(except *Client, event string, data any) {
	h.broadcast(except, event, data)
}

func (h *Hub) broadcast(except *Client, event string, data any) {
	msg, err := encodeEvent(event, data)
	if err != nil {
		h.logger.Error("broadcast encode failed",
			slog.String("event", event),
			slog.Any("error", err))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.clients {
		if client == except {
			continue
		}
		h.push(client, event, msg)
	}
}

// SendTo sends an event to a single client, if it is still registered
func (h *Hub) SendTo(client *Client, event string, data any) {
	msg, err := encodeEvent(event, data)
	if err != nil {
		h.logger.Error("send encode failed",
			slog.String("event", event),
			slog.Any("error", err))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	if !h.clients[client] {
		return
	}
	h.push(client, event, msg)
}

// push delivers a frame without blocking; a client that cannot keep up
// drops frames rather than stalling the hub.
func (h *Hub) push(client *Client, event string, msg []byte) {
	select {
	case client.send <- msg:
	default:
		h.logger.Warn("message dropped - client buffer full",
			slog.String("event", event),
			slog.String("profile_id", string(client.profileID)))
	}
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close disconnects all clients
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.clients {
		close(client.send)
		delete(h.clients, client)
	}
}

package notifications

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/gofiber/websocket/v2"
)

const (
	// Max connections per user
	maxConnsPerUser = 12
	// Max total connections
	maxTotalConns = 10000
)

// Hub is a websocket hub that maps userID -> list of Clients.
type Hub struct {
	mu         sync.RWMutex
	conns      map[uint]map[*Client]struct{}
	totalConns int
	shutdown   chan struct{}
	done       chan struct{}
}

// NewHub creates a new Hub instance for managing notification connections.
func NewHub() *Hub {
	return &Hub{
		conns:    make(map[uint]map[*Client]struct{}),
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Name returns a human-readable identifier for this hub.
func (h *Hub) Name() string { return "notification hub" }

// Register a connection for a given userID. Returns the Client or error if
// limits are exceeded.
func (h *Hub) Register(userID uint, conn *websocket.Conn) (*Client, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.totalConns >= maxTotalConns {
		return nil, errors.New("server connection limit reached")
	}

	m, ok := h.conns[userID]
	if !ok {
		m = make(map[*Client]struct{})
		h.conns[userID] = m
	}

	if len(m) >= maxConnsPerUser {
		return nil, errors.New("user connection limit reached")
	}

	client := NewClient(h, conn, userID)
	m[client] = struct{}{}
	h.totalConns++

	return client, nil
}

// UnregisterClient removes a client from the hub. Safe to call more than once.
func (h *Hub) UnregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if m, ok := h.conns[client.UserID]; ok {
		if _, exists := m[client]; exists {
			delete(m, client)
			h.totalConns--
		}
		if len(m) == 0 {
			delete(h.conns, client.UserID)
		}
	}
}

// Broadcast sends message to all connections for userID.
func (h *Hub) Broadcast(userID uint, message string) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if clients, ok := h.conns[userID]; ok {
		data := []byte(message)
		for c := range clients {
			c.TrySend(data)
		}
	}
}

// BroadcastAll sends message to every connected websocket client.
func (h *Hub) BroadcastAll(message string) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	data := []byte(message)
	for _, clients := range h.conns {
		for c := range clients {
			c.TrySend(data)
		}
	}
}

// IsOnline reports whether a user currently has at least one active websocket
// connection on this instance.
func (h *Hub) IsOnline(userID uint) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	clients, ok := h.conns[userID]
	return ok && len(clients) > 0
}

// StartWiring connects the Notifier to this hub: it subscribes to the Redis
// channels and forwards each message to the matching user's connections.
func (h *Hub) StartWiring(ctx context.Context, n *Notifier) error {
	return n.StartPatternSubscriber(ctx, func(channel, payload string) {
		if channel == "notifications:broadcast" {
			h.BroadcastAll(payload)
			return
		}
		if !strings.HasPrefix(channel, "notifications:user:") {
			slog.Warn("invalid notification channel", "channel", channel)
			return
		}
		var userID uint
		if _, err := fmt.Sscanf(channel, "notifications:user:%d", &userID); err != nil {
			slog.Warn("invalid notification channel", "channel", channel)
			return
		}
		h.Broadcast(userID, payload)
	})
}

// Shutdown gracefully closes all websocket connections.
func (h *Hub) Shutdown(_ context.Context) error {
	close(h.shutdown)

	h.mu.Lock()
	for userID, userConns := range h.conns {
		for client := range userConns {
			if client.Conn == nil {
				continue
			}
			if err := client.Conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "Server shutting down")); err != nil {
				slog.Warn("failed to write close message", "user_id", userID, "error", err)
			}
			if err := client.Conn.Close(); err != nil {
				slog.Warn("failed to close websocket", "user_id", userID, "error", err)
			}
		}
	}
	h.conns = make(map[uint]map[*Client]struct{})
	h.mu.Unlock()

	close(h.done)
	return nil
}

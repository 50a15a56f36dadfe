package notifications

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"adminhub/internal/middleware"
	"adminhub/internal/observability"

	"github.com/gofiber/websocket/v2"
)

const (
	maxConnsPerAdmin = 8
	maxTotalConns    = 500
)

var (
	ErrHubClosed         = errors.New("admin feed is shutting down")
	ErrTotalConnLimit    = errors.New("server connection limit reached")
	ErrPerAdminConnLimit = errors.New("admin connection limit reached")
)

// Hub holds every live admin feed connection and broadcasts admin events to all of them.
type Hub struct {
	mu       sync.RWMutex
	conns    map[uint]map[*Client]struct{}
	total    int
	closed   bool
	presence *Presence
	notifier *Notifier
}

// NewHub creates a hub. presence and notifier may be nil; when set the hub
// tracks online admins and announces them on the feed.
func NewHub(presence *Presence, notifier *Notifier) *Hub {
	return &Hub{
		conns:    make(map[uint]map[*Client]struct{}),
		presence: presence,
		notifier: notifier,
	}
}

// Register adds a connection for userID. It fails once the hub is closed or
// a connection limit is reached.
func (h *Hub) Register(userID uint, conn *websocket.Conn) (*Client, error) {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return nil, ErrHubClosed
	}
	if h.total >= maxTotalConns {
		h.mu.Unlock()
		return nil, ErrTotalConnLimit
	}
	m, ok := h.conns[userID]
	if !ok {
		m = make(map[*Client]struct{})
		h.conns[userID] = m
	}
	if len(m) >= maxConnsPerAdmin {
		h.mu.Unlock()
		return nil, ErrPerAdminConnLimit
	}

	client := newClient(h, conn, userID)
	m[client] = struct{}{}
	h.total++
	h.mu.Unlock()

	observability.AdminFeedConnections.Inc()
	if h.presence != nil && h.presence.Register(context.Background(), userID) {
		h.announce(EventAdminOnline, userID)
	}
	return client, nil
}

// UnregisterClient removes client. Unknown clients are ignored.
func (h *Hub) UnregisterClient(client *Client) {
	h.mu.Lock()
	removed := false
	if m, ok := h.conns[client.UserID]; ok {
		if _, exists := m[client]; exists {
			delete(m, client)
			h.total--
			removed = true
			close(client.Send)
		}
		if len(m) == 0 {
			delete(h.conns, client.UserID)
		}
	}
	h.mu.Unlock()

	if !removed {
		return
	}
	observability.AdminFeedConnections.Dec()
	if h.presence != nil && h.presence.Unregister(context.Background(), client.UserID) {
		h.announce(EventAdminOffline, client.UserID)
	}
}

// Count returns the number of open connections.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.total
}

// BroadcastAll sends message to every connected client.
func (h *Hub) BroadcastAll(message []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, clients := range h.conns {
		for c := range clients {
			c.TrySend(message)
		}
	}
}

// StartWiring forwards every admin event published through n to the hub.
func (h *Hub) StartWiring(ctx context.Context, n *Notifier) error {
	return n.Subscribe(ctx, func(payload string) {
		h.BroadcastAll([]byte(payload))
	})
}

// Shutdown closes every connection with a going-away frame and refuses new ones.
func (h *Hub) Shutdown(_ context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil
	}
	h.closed = true

	// WritePump sends the close frame once it sees the closed channel.
	for _, clients := range h.conns {
		for client := range clients {
			close(client.Send)
		}
	}
	observability.AdminFeedConnections.Sub(float64(h.total))
	h.conns = make(map[uint]map[*Client]struct{})
	h.total = 0
	return nil
}

func (h *Hub) touch(userID uint) {
	if h.presence != nil {
		h.presence.Touch(context.Background(), userID)
	}
}

func (h *Hub) announce(eventType string, userID uint) {
	if h.notifier == nil {
		return
	}
	if err := h.notifier.PublishAdmin(context.Background(), NewAdminEvent(eventType, userID, userID, nil)); err != nil {
		middleware.Logger.Warn("failed to announce admin presence", slog.String("type", eventType), slog.String("error", err.Error()))
	}
}

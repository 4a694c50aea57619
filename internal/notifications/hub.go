// Package notifications fans forum events out to connected websocket viewers.
package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"

	"navega/internal/middleware"
	"navega/internal/observability"

	"github.com/gofiber/websocket/v2"
)

const (
	// Max connections per registered user. Anonymous viewers are only bound
	// by the total.
	maxConnsPerUser = 12
	// Max total connections
	maxTotalConns = 10000
)

var (
	ErrServerFull = errors.New("server connection limit reached")
	ErrUserFull   = errors.New("user connection limit reached")
	ErrHubClosed  = errors.New("hub is shutting down")
)

// Envelope is the wire shape of every event pushed to clients.
type Envelope struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// Hub is a registry of live viewers keyed by user id (0 for anonymous).
type Hub struct {
	mu         sync.RWMutex
	conns      map[uint]map[*Client]struct{}
	totalConns int
	closed     bool
	log        *observability.WSLogger
}

// NewHub creates an empty hub. A nil logger falls back to slog.Default.
func NewHub(logger *slog.Logger) *Hub {
	h := &Hub{conns: make(map[uint]map[*Client]struct{})}
	h.log = observability.NewWSLogger(h.Name(), logger)
	return h
}

// Name returns a human-readable identifier for this hub.
func (h *Hub) Name() string { return "forum" }

// Register adds a connection for userID, enforcing the connection limits.
func (h *Hub) Register(ctx context.Context, userID uint, conn *websocket.Conn) (*Client, error) {
	h.mu.Lock()
	client, err := h.registerLocked(userID, conn)
	active := h.totalConns
	h.mu.Unlock()

	if err != nil {
		h.log.LogRejected(ctx, userID, err)
		return nil, err
	}
	middleware.ActiveWebSockets.Inc()
	h.log.LogConnect(ctx, userID, active)
	return client, nil
}

func (h *Hub) registerLocked(userID uint, conn *websocket.Conn) (*Client, error) {
	if h.closed {
		return nil, ErrHubClosed
	}
	if h.totalConns >= maxTotalConns {
		return nil, ErrServerFull
	}
	m, ok := h.conns[userID]
	if !ok {
		m = make(map[*Client]struct{})
		h.conns[userID] = m
	}
	if userID != 0 && len(m) >= maxConnsPerUser {
		return nil, ErrUserFull
	}

	client := newClient(h, conn, userID)
	m[client] = struct{}{}
	h.totalConns++
	return client, nil
}

// UnregisterClient removes client; calling it twice is harmless.
func (h *Hub) UnregisterClient(ctx context.Context, client *Client, reason string) {
	h.mu.Lock()
	removed := false
	if m, ok := h.conns[client.UserID]; ok {
		if _, exists := m[client]; exists {
			delete(m, client)
			h.totalConns--
			removed = true
		}
		if len(m) == 0 {
			delete(h.conns, client.UserID)
		}
	}
	if h.closed {
		reason = "server shutdown"
	}
	h.mu.Unlock()

	client.close()
	if removed {
		middleware.ActiveWebSockets.Dec()
		h.log.LogDisconnect(ctx, client.UserID, reason)
	}
}

// Broadcast wraps payload in an Envelope and queues it for every viewer.
// Slow viewers miss the event; nothing is retried or persisted.
func (h *Hub) Broadcast(event string, payload any) {
	data, err := json.Marshal(Envelope{Type: event, Payload: payload})
	if err != nil {
		h.log.LogError(context.Background(), 0, err)
		return
	}
	observability.BroadcastEvents.WithLabelValues(event).Inc()
	h.BroadcastRaw(data)
}

// BroadcastRaw queues an already encoded message for every viewer.
func (h *Hub) BroadcastRaw(data []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, clients := range h.conns {
		for c := range clients {
			c.TrySend(data)
		}
	}
}

// ActiveConnections returns the number of registered viewers.
func (h *Hub) ActiveConnections() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.totalConns
}

// Shutdown refuses new viewers and sends every open socket a close frame,
// waiting for the writers until ctx is done.
func (h *Hub) Shutdown(ctx context.Context) error {
	h.mu.Lock()
	h.closed = true
	clients := make([]*Client, 0, h.totalConns)
	for _, m := range h.conns {
		for c := range m {
			clients = append(clients, c)
		}
	}
	h.mu.Unlock()

	for _, c := range clients {
		c.close()
	}
	for _, c := range clients {
		if !c.pumping.Load() {
			continue
		}
		select {
		case <-c.stopped:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

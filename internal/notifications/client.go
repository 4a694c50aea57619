package notifications

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"navega/internal/observability"

	"github.com/gofiber/websocket/v2"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 4096

	sendBufferSize = 256
)

// Client is one websocket viewer. UserID is 0 for anonymous viewers.
type Client struct {
	hub *Hub

	// The websocket connection. Nil in tests that only exercise the hub.
	Conn *websocket.Conn

	// Buffered channel of outbound messages.
	Send chan []byte

	UserID uint

	done      chan struct{}
	closeOnce sync.Once
	pumping   atomic.Bool
	stopped   chan struct{}
}

func newClient(hub *Hub, conn *websocket.Conn, userID uint) *Client {
	return &Client{
		hub:     hub,
		Conn:    conn,
		UserID:  userID,
		Send:    make(chan []byte, sendBufferSize),
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
}

// close stops the writer, which then sends a close frame.
func (c *Client) close() {
	c.closeOnce.Do(func() { close(c.done) })
}

// ReadPump drains the connection until it fails. Application messages from
// the client are discarded; only control frames matter.
func (c *Client) ReadPump(ctx context.Context) {
	reason := "client closed"
	defer func() {
		c.hub.UnregisterClient(ctx, c, reason)
		_ = c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	_ = c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error { return c.Conn.SetReadDeadline(time.Now().Add(pongWait)) })

	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseNoStatusReceived) {
				c.hub.log.LogError(ctx, c.UserID, err)
				reason = "read error"
			}
			return
		}
	}
}

// WritePump delivers queued messages and keepalive pings. When the client is
// closed it writes a going-away close frame and returns.
func (c *Client) WritePump() {
	c.pumping.Store(true)
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.Conn.Close()
		close(c.stopped)
	}()

	for {
		select {
		case message := <-c.Send:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.done:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.Conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "Server shutting down"))
			return
		}
	}
}

// TrySend queues message without blocking. A full buffer or a closed client
// drops the message and reports false.
func (c *Client) TrySend(message []byte) bool {
	select {
	case <-c.done:
		observability.WebSocketBackpressureDrops.WithLabelValues(c.hub.Name(), "closed").Inc()
		return false
	default:
	}

	select {
	case c.Send <- message:
		return true
	default:
		observability.WebSocketBackpressureDrops.WithLabelValues(c.hub.Name(), "full").Inc()
		return false
	}
}

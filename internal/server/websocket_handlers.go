package server

import (
	"context"
	"errors"

	"navega/internal/featureflags"
	"navega/internal/middleware"
	"navega/internal/models"
	"navega/internal/notifications"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// WebSocketUpgrade rejects plain HTTP requests and, when anonymous viewers
// are switched off, requests without a principal.
func (s *Server) WebSocketUpgrade(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}
	if middleware.PrincipalFrom(c) == nil && !s.featureFlags.Enabled(featureflags.AnonymousRealtime, 0) {
		return models.RespondWithError(c, fiber.StatusForbidden,
			models.NewForbiddenError("Se requiere un token para la autenticación."))
	}
	return c.Next()
}

// WebSocketHandler handles GET /api/ws. The socket only carries server
// events; anything the client sends is discarded.
func (s *Server) WebSocketHandler() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		// The request context ends with the upgrade, so the socket gets its own.
		ctx := context.Background()
		if rid, ok := conn.Locals("requestid").(string); ok {
			ctx = context.WithValue(ctx, middleware.RequestIDKey, rid)
		}
		userID, _ := conn.Locals("userID").(uint)
		if userID != 0 {
			ctx = context.WithValue(ctx, middleware.UserIDKey, userID)
		}

		client, err := s.hub.Register(ctx, userID, conn)
		if err != nil {
			code := websocket.CloseTryAgainLater
			if errors.Is(err, notifications.ErrHubClosed) {
				code = websocket.CloseGoingAway
			}
			_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(code, err.Error()))
			_ = conn.Close()
			return
		}

		go client.WritePump()
		client.ReadPump(ctx)
	})
}

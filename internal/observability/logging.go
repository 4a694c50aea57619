package observability

import (
	"context"
	"log/slog"
)

// WSLogger writes websocket lifecycle events for one hub.
type WSLogger struct {
	hubName string
	logger  *slog.Logger
}

// NewWSLogger creates a WSLogger for hubName. A nil logger uses slog.Default.
func NewWSLogger(hubName string, logger *slog.Logger) *WSLogger {
	if logger == nil {
		logger = slog.Default()
	}
	return &WSLogger{hubName: hubName, logger: logger}
}

func viewer(userID uint) slog.Attr {
	if userID == 0 {
		return slog.String("viewer", "anonymous")
	}
	return slog.Uint64("user_id", uint64(userID))
}

// LogConnect logs an accepted connection.
func (l *WSLogger) LogConnect(ctx context.Context, userID uint, active int) {
	l.logger.InfoContext(ctx, "websocket connected",
		slog.String("hub", l.hubName),
		viewer(userID),
		slog.Int("active", active),
	)
}

// LogDisconnect logs a closed connection and why it closed.
func (l *WSLogger) LogDisconnect(ctx context.Context, userID uint, reason string) {
	l.logger.InfoContext(ctx, "websocket disconnected",
		slog.String("hub", l.hubName),
		viewer(userID),
		slog.String("reason", reason),
	)
}

// LogRejected logs a connection refused by a hub limit.
func (l *WSLogger) LogRejected(ctx context.Context, userID uint, err error) {
	l.logger.WarnContext(ctx, "websocket rejected",
		slog.String("hub", l.hubName),
		viewer(userID),
		slog.String("error", err.Error()),
	)
}

// LogError logs a transport error on an open connection.
func (l *WSLogger) LogError(ctx context.Context, userID uint, err error) {
	l.logger.ErrorContext(ctx, "websocket error",
		slog.String("hub", l.hubName),
		viewer(userID),
		slog.String("error", err.Error()),
	)
}

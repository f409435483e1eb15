package notify

import (
	"context"

	"github.com/google/uuid"

	"github.com/flatground/skateline/internal/event"
	"github.com/flatground/skateline/internal/logger"
)

// Port delivers a notification to one player. Implementations are expected
// to be best-effort; the engine never blocks or rolls back on delivery
// failure.
type Port interface {
	Notify(ctx context.Context, playerID uuid.UUID, eventType event.Type, payload interface{}) error
}

// LogNotifier is the default Port: it writes deliveries to the structured
// log. Useful on its own in development and as the fallback sink in tests.
type LogNotifier struct{}

// NewLogNotifier creates a LogNotifier
func NewLogNotifier() *LogNotifier {
	return &LogNotifier{}
}

// Notify logs the delivery
func (n *LogNotifier) Notify(ctx context.Context, playerID uuid.UUID, eventType event.Type, payload interface{}) error {
	logger.FromContext(ctx).Info(LogMsgNotificationDelivered,
		"playerID", playerID, "eventType", eventType)
	return nil
}

package notify

import (
	"context"

	"github.com/google/uuid"

	"github.com/flatground/skateline/internal/event"
	"github.com/flatground/skateline/internal/logger"
	"github.com/flatground/skateline/internal/metrics"
)

// Subscriber bridges the event bus to a notification Port, fanning each
// event out to the recipients named in its payload. Delivery failures are
// logged and counted, never propagated; a dead notifier cannot stall the
// engine.
type Subscriber struct {
	port Port
}

// NewSubscriber creates a Subscriber delivering through port
func NewSubscriber(port Port) *Subscriber {
	return &Subscriber{port: port}
}

// Register subscribes the notifier to every player-facing event type.
func (s *Subscriber) Register(bus event.Bus) {
	for _, t := range notifiableEvents {
		bus.Subscribe(t, s.handle)
	}
}

var notifiableEvents = []event.Type{
	event.MatchChallengeCreated,
	event.MatchAccepted,
	event.MatchDeclined,
	event.MatchTrickSet,
	event.MatchResponseSubmitted,
	event.MatchVoteRecorded,
	event.MatchRoundResolved,
	event.MatchCompleted,
	event.MatchForfeited,
	event.MatchDeadlineWarning,
	event.DisputeFiled,
	event.DisputeResolved,
}

func (s *Subscriber) handle(ctx context.Context, ev event.Event) error {
	for _, playerID := range recipients(ev) {
		if err := s.port.Notify(ctx, playerID, ev.Type, ev.Payload); err != nil {
			metrics.NotificationFailures.Inc()
			logger.FromContext(ctx).Warn(LogMsgNotificationFailed,
				"playerID", playerID, "eventType", ev.Type, "error", err)
		}
	}
	return nil
}

// recipients extracts the target players from a typed payload.
func recipients(ev event.Event) []uuid.UUID {
	switch p := ev.Payload.(type) {
	case event.MatchEventPayloadV1:
		return p.Recipients
	case event.DisputeEventPayloadV1:
		return p.Recipients
	}
	return nil
}

package event

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/flatground/skateline/internal/domain"
)

// Type represents the type of an event
type Type string

// Common event types
const (
	MatchChallengeCreated Type = "match.challenge_created"
	MatchAccepted         Type = "match.accepted"
	MatchDeclined         Type = "match.declined"
	MatchTrickSet         Type = "match.trick_set"
	MatchResponseSubmitted Type = "match.response_submitted"
	MatchVoteRecorded     Type = "match.vote_recorded"
	MatchRoundResolved    Type = "match.round_resolved"
	MatchCompleted        Type = "match.completed"
	MatchForfeited        Type = "match.forfeited"
	MatchDeadlineWarning  Type = "match.deadline_warning"

	DisputeFiled    Type = "dispute.filed"
	DisputeResolved Type = "dispute.resolved"
)

// Event represents a generic event in the system
type Event struct {
	Version string      `json:"version"` // Event schema version (e.g., "1.0")
	Type    Type        `json:"type"`
	Payload interface{} `json:"payload"`
}

// Handler is a function that handles an event
type Handler func(ctx context.Context, event Event) error

// Bus defines the interface for an event bus
type Bus interface {
	Publish(ctx context.Context, event Event) error
	Subscribe(eventType Type, handler Handler)
}

// Typed event payloads for type safety

// MatchEventPayloadV1 is the shared payload for match lifecycle events.
// Recipients lists the players the notifier should fan the event out to.
type MatchEventPayloadV1 struct {
	MatchID    uuid.UUID   `json:"match_id"`
	ActorID    uuid.UUID   `json:"actor_id,omitempty"`
	Recipients []uuid.UUID `json:"recipients"`
	Phase      string      `json:"phase,omitempty"`
	Round      int         `json:"round,omitempty"`
	TrickName  string      `json:"trick_name,omitempty"`
	WinnerID   *uuid.UUID  `json:"winner_id,omitempty"`
	Cause      string      `json:"cause,omitempty"`
	Letter     string      `json:"letter,omitempty"`
	DeadlineAt time.Time   `json:"deadline_at,omitempty"`
	Timestamp  int64       `json:"timestamp"`
}

// DisputeEventPayloadV1 is the typed payload for dispute events
type DisputeEventPayloadV1 struct {
	DisputeID  uuid.UUID   `json:"dispute_id"`
	MatchID    uuid.UUID   `json:"match_id"`
	MoveID     uuid.UUID   `json:"move_id"`
	FilerID    uuid.UUID   `json:"filer_id"`
	AgainstID  uuid.UUID   `json:"against_id"`
	Recipients []uuid.UUID `json:"recipients"`
	Verdict    string      `json:"verdict,omitempty"`
	Timestamp  int64       `json:"timestamp"`
}

// Type-safe event constructors

// NewMatchEvent creates a match lifecycle event addressed to recipients.
func NewMatchEvent(t Type, m *domain.Match, actorID uuid.UUID, recipients ...uuid.UUID) Event {
	payload := MatchEventPayloadV1{
		MatchID:    m.ID,
		ActorID:    actorID,
		Recipients: recipients,
		Phase:      string(m.Phase),
		Round:      m.Round,
		TrickName:  m.CurrentTrickName,
		WinnerID:   m.WinnerID,
		Cause:      string(m.ForfeitCause),
		DeadlineAt: m.DeadlineAt,
		Timestamp:  time.Now().Unix(),
	}
	return Event{Version: EventSchemaVersion, Type: t, Payload: payload}
}

// NewRoundResolvedEvent creates a round resolution event carrying the
// assigned letter, if any.
func NewRoundResolvedEvent(m *domain.Match, move *domain.Move, recipients ...uuid.UUID) Event {
	payload := MatchEventPayloadV1{
		MatchID:    m.ID,
		Recipients: recipients,
		Phase:      string(m.Phase),
		Round:      move.Round,
		TrickName:  move.TrickName,
		WinnerID:   m.WinnerID,
		Letter:     move.LetterAssigned,
		DeadlineAt: m.DeadlineAt,
		Timestamp:  time.Now().Unix(),
	}
	return Event{Version: EventSchemaVersion, Type: MatchRoundResolved, Payload: payload}
}

// NewDeadlineWarningEvent creates a warning addressed to the expected actor only.
func NewDeadlineWarningEvent(m *domain.Match) Event {
	payload := MatchEventPayloadV1{
		MatchID:    m.ID,
		Recipients: []uuid.UUID{m.CurrentActorID},
		Phase:      string(m.Phase),
		Round:      m.Round,
		DeadlineAt: m.DeadlineAt,
		Timestamp:  time.Now().Unix(),
	}
	return Event{Version: EventSchemaVersion, Type: MatchDeadlineWarning, Payload: payload}
}

// NewDisputeEvent creates a dispute lifecycle event.
func NewDisputeEvent(t Type, d *domain.Dispute, verdict string, recipients ...uuid.UUID) Event {
	payload := DisputeEventPayloadV1{
		DisputeID:  d.ID,
		MatchID:    d.MatchID,
		MoveID:     d.MoveID,
		FilerID:    d.FilerID,
		AgainstID:  d.AgainstID,
		Recipients: recipients,
		Verdict:    verdict,
		Timestamp:  time.Now().Unix(),
	}
	return Event{Version: EventSchemaVersion, Type: t, Payload: payload}
}

// MemoryBus is an in-memory implementation of the Event Bus
type MemoryBus struct {
	handlers map[Type][]Handler
	mu       sync.RWMutex
}

// NewMemoryBus creates a new MemoryBus
func NewMemoryBus() *MemoryBus {
	return &MemoryBus{
		handlers: make(map[Type][]Handler),
	}
}

// Publish publishes an event to all subscribers
func (b *MemoryBus) Publish(ctx context.Context, event Event) error {
	b.mu.RLock()
	handlers, ok := b.handlers[event.Type]
	b.mu.RUnlock()

	if !ok {
		return nil
	}

	var errs []error
	for _, handler := range handlers {
		if err := handler(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf(LogMsgHandlerErrorFormat, len(errs), event.Type, errs)
	}

	return nil
}

// Subscribe subscribes a handler to an event type
func (b *MemoryBus) Subscribe(eventType Type, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers[eventType] = append(b.handlers[eventType], handler)
}

package match

import (
	"github.com/google/uuid"

	"github.com/flatground/skateline/internal/domain"
	"github.com/flatground/skateline/internal/event"
	"github.com/flatground/skateline/internal/game"
)

// deriveEvents maps a committed transition to the events the notifier fans
// out. In-round events go to the non-acting player; terminal and
// round-resolution events go to both.
func deriveEvents(actorID uuid.UUID, act game.Action, delta *game.Delta) []event.Event {
	m := delta.Next
	var events []event.Event

	switch act.Type {
	case game.ActionAccept:
		events = append(events, event.NewMatchEvent(event.MatchAccepted, m, actorID, m.Opponent(actorID)))
	case game.ActionDecline:
		events = append(events, event.NewMatchEvent(event.MatchDeclined, m, actorID, m.Opponent(actorID)))
	case game.ActionSetTrick:
		events = append(events, event.NewMatchEvent(event.MatchTrickSet, m, actorID, m.DefenderID))
	case game.ActionAttemptResponse:
		events = append(events, event.NewMatchEvent(event.MatchResponseSubmitted, m, actorID, m.AttackerID))
	case game.ActionJudge:
		if delta.ResolvedMove == nil {
			// First of two votes: the other side owes theirs
			events = append(events, event.NewMatchEvent(event.MatchVoteRecorded, m, actorID, m.CurrentActorID))
		} else {
			events = append(events, event.NewRoundResolvedEvent(m, delta.ResolvedMove, m.PlayerA, m.PlayerB))
		}
	case game.ActionSetterMissed:
		events = append(events, event.NewRoundResolvedEvent(m, delta.ResolvedMove, m.PlayerA, m.PlayerB))
	case game.ActionForfeit, game.ActionTimeout, game.ActionStalledExpire:
		if m.Status == domain.MatchStatusDeclined {
			// A lapsed challenge; tell the challenger it went unanswered
			events = append(events, event.NewMatchEvent(event.MatchDeclined, m, actorID, m.PlayerA))
		} else {
			events = append(events, event.NewMatchEvent(event.MatchForfeited, m, actorID, m.PlayerA, m.PlayerB))
		}
	case game.ActionOverturnMove:
		if delta.ResolvedMove != nil {
			events = append(events, event.NewRoundResolvedEvent(m, delta.ResolvedMove, m.PlayerA, m.PlayerB))
		}
	}

	if m.Status == domain.MatchStatusCompleted {
		events = append(events, event.NewMatchEvent(event.MatchCompleted, m, actorID, m.PlayerA, m.PlayerB))
	}

	return events
}

package game

import (
	"github.com/google/uuid"

	"github.com/flatground/skateline/internal/domain"
)

// ActionType identifies a proposed match action
type ActionType string

const (
	ActionAccept          ActionType = "accept"
	ActionDecline         ActionType = "decline"
	ActionSetTrick        ActionType = "set_trick"
	ActionAttemptResponse ActionType = "attempt_response"
	ActionJudge           ActionType = "judge"
	ActionSetterMissed    ActionType = "setter_missed"
	ActionForfeit         ActionType = "forfeit"

	// Synthetic actions submitted by the reconciler or dispute resolver,
	// never by a client. They flow through the same validate/apply path.
	ActionTimeout       ActionType = "timeout"
	ActionStalledExpire ActionType = "stalled_expire"
	ActionFileDispute   ActionType = "file_dispute"
	ActionOverturnMove  ActionType = "overturn_move"
)

// SystemActorID is the synthetic actor used for reconciler-submitted actions.
var SystemActorID = uuid.Nil

// Action is a proposed transition. Only the fields relevant to the type are
// read; the validator ignores the rest.
type Action struct {
	Type        ActionType
	TrickName   string
	EvidenceRef string
	Verdict     domain.Verdict
	// MoveID targets a resolved move (file_dispute / overturn_move)
	MoveID uuid.UUID
}

// ParseActionType validates a wire action type string.
func ParseActionType(s string) (ActionType, error) {
	switch ActionType(s) {
	case ActionAccept, ActionDecline, ActionSetTrick, ActionAttemptResponse,
		ActionJudge, ActionSetterMissed, ActionForfeit:
		return ActionType(s), nil
	}
	// Synthetic types are not accepted from the wire
	return "", domain.ErrUnknownAction
}

// Delta is the validated result of an action: the complete next match state
// plus the move resolved by this transition, if any. The next state is a
// fresh copy; the input match is never mutated.
type Delta struct {
	Next         *domain.Match
	ResolvedMove *domain.Move
}

package game

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/flatground/skateline/internal/domain"
)

// JudgingMode selects how trick attempts are judged
type JudgingMode string

const (
	// JudgingDualVote - both players vote; a split resolves to landed
	// (benefit of the doubt goes to the defender).
	JudgingDualVote JudgingMode = "dual_vote"
	// JudgingSelfReport - the defender alone reports the outcome.
	JudgingSelfReport JudgingMode = "self_report"
)

// Valid reports whether the mode is a known judging variant.
func (m JudgingMode) Valid() bool {
	return m == JudgingDualVote || m == JudgingSelfReport
}

// Validator is the pure decision function for match actions. It performs no
// I/O and returns only typed rejections; infrastructure errors never
// originate here.
type Validator struct {
	mode          JudgingMode
	turnWindow    time.Duration
	stalledAfter  time.Duration
	disputeWindow time.Duration
}

// NewValidator creates a validator for the given judging variant and timing
// rules.
func NewValidator(mode JudgingMode, turnWindow, stalledAfter, disputeWindow time.Duration) *Validator {
	return &Validator{
		mode:          mode,
		turnWindow:    turnWindow,
		stalledAfter:  stalledAfter,
		disputeWindow: disputeWindow,
	}
}

// Mode returns the configured judging variant.
func (v *Validator) Mode() JudgingMode { return v.mode }

// Decide validates act against m for actorID and returns the resulting
// delta, or a typed rejection. The input match is never mutated.
func (v *Validator) Decide(m *domain.Match, actorID uuid.UUID, act Action, now time.Time) (*Delta, error) {
	switch act.Type {
	case ActionAccept, ActionDecline:
		return v.decideChallenge(m, actorID, act, now)
	case ActionSetTrick:
		return v.decideSetTrick(m, actorID, act, now)
	case ActionAttemptResponse:
		return v.decideAttempt(m, actorID, act, now)
	case ActionJudge:
		return v.decideJudge(m, actorID, act, now)
	case ActionSetterMissed:
		return v.decideSetterMissed(m, actorID, now)
	case ActionForfeit:
		return v.decideForfeit(m, actorID, now)
	case ActionTimeout:
		return v.decideTimeout(m, actorID, now)
	case ActionStalledExpire:
		return v.decideStalledExpire(m, actorID, now)
	case ActionFileDispute:
		return v.decideFileDispute(m, actorID, act, now)
	case ActionOverturnMove:
		return v.decideOverturnMove(m, actorID, act, now)
	}
	return nil, fmt.Errorf("%w: %q", domain.ErrUnknownAction, act.Type)
}

func (v *Validator) decideChallenge(m *domain.Match, actorID uuid.UUID, act Action, now time.Time) (*Delta, error) {
	if m.Status != domain.MatchStatusPending {
		return nil, domain.ErrMatchNotActive
	}
	// Only the challenged player answers a challenge
	if actorID != m.PlayerB {
		return nil, domain.ErrWrongActor
	}

	next := m.Clone()
	next.UpdatedAt = now
	if act.Type == ActionDecline {
		next.Status = domain.MatchStatusDeclined
		next.Phase = ""
		return &Delta{Next: next}, nil
	}

	next.Status = domain.MatchStatusActive
	next.Phase = domain.PhaseAwaitingSet
	next.Round = 1
	next.CurrentActorID = next.AttackerID
	next.DeadlineAt = now.Add(v.turnWindow)
	return &Delta{Next: next}, nil
}

func (v *Validator) decideSetTrick(m *domain.Match, actorID uuid.UUID, act Action, now time.Time) (*Delta, error) {
	if err := requireActive(m); err != nil {
		return nil, err
	}
	if m.Phase != domain.PhaseAwaitingSet {
		return nil, domain.ErrWrongPhase
	}
	if actorID != m.AttackerID {
		return nil, rejectActor(m, actorID)
	}
	if act.TrickName == "" {
		return nil, fmt.Errorf("%w: trick name required", domain.ErrInvalidInput)
	}
	if act.EvidenceRef == "" {
		return nil, domain.ErrEvidenceMissing
	}

	next := m.Clone()
	next.Phase = domain.PhaseAwaitingResponse
	next.CurrentTrickName = act.TrickName
	next.CurrentEvidenceRef = act.EvidenceRef
	next.CurrentActorID = next.DefenderID
	next.DeadlineAt = now.Add(v.turnWindow)
	next.UpdatedAt = now
	return &Delta{Next: next}, nil
}

func (v *Validator) decideAttempt(m *domain.Match, actorID uuid.UUID, act Action, now time.Time) (*Delta, error) {
	if err := requireActive(m); err != nil {
		return nil, err
	}
	if m.Phase != domain.PhaseAwaitingResponse {
		return nil, domain.ErrWrongPhase
	}
	if actorID != m.DefenderID {
		return nil, rejectActor(m, actorID)
	}
	if act.EvidenceRef == "" {
		return nil, domain.ErrEvidenceMissing
	}

	next := m.Clone()
	next.Phase = domain.PhaseAwaitingJudgment
	next.ResponseEvidenceRef = act.EvidenceRef
	// The defender nominally owes the first judgment; in dual-vote mode
	// either participant's vote is accepted.
	next.CurrentActorID = next.DefenderID
	next.DeadlineAt = now.Add(v.turnWindow)
	next.UpdatedAt = now
	return &Delta{Next: next}, nil
}

func (v *Validator) decideSetterMissed(m *domain.Match, actorID uuid.UUID, now time.Time) (*Delta, error) {
	if err := requireActive(m); err != nil {
		return nil, err
	}
	// The attacker may concede their own set only while the defender has
	// not yet responded.
	if m.Phase != domain.PhaseAwaitingResponse {
		return nil, domain.ErrWrongPhase
	}
	if actorID != m.AttackerID {
		return nil, rejectActor(m, actorID)
	}

	next := m.Clone()
	move := domain.Move{
		ID:                uuid.New(),
		Round:             m.Round,
		SetterID:          m.AttackerID,
		ResponderID:       m.DefenderID,
		TrickName:         m.CurrentTrickName,
		SetterEvidenceRef: m.CurrentEvidenceRef,
		Result:            domain.MoveResultSetterMiss,
		ResolvedAt:        now,
	}
	next.Moves = append(next.Moves, move)
	// Roles swap, same round, no letter
	next.AttackerID, next.DefenderID = m.DefenderID, m.AttackerID
	beginRound(next, m.Round, now, v.turnWindow)
	return &Delta{Next: next, ResolvedMove: &move}, nil
}

func (v *Validator) decideForfeit(m *domain.Match, actorID uuid.UUID, now time.Time) (*Delta, error) {
	if err := requireActive(m); err != nil {
		return nil, err
	}
	if !m.IsParticipant(actorID) {
		return nil, domain.ErrNotParticipant
	}

	next := m.Clone()
	forfeit(next, m.Opponent(actorID), domain.ForfeitCausePlayer, now)
	return &Delta{Next: next}, nil
}

func (v *Validator) decideTimeout(m *domain.Match, actorID uuid.UUID, now time.Time) (*Delta, error) {
	if actorID != SystemActorID {
		return nil, domain.ErrWrongActor
	}
	// The stored deadline is authoritative at transaction time; a value
	// cached earlier in a request is never consulted.
	if !now.After(m.DeadlineAt) {
		return nil, domain.ErrDeadlineNotElapsed
	}

	// An unanswered challenge simply lapses into declined.
	if m.Status == domain.MatchStatusPending {
		next := m.Clone()
		next.Status = domain.MatchStatusDeclined
		next.Phase = ""
		next.UpdatedAt = now
		return &Delta{Next: next}, nil
	}

	if err := requireActive(m); err != nil {
		return nil, err
	}

	next := m.Clone()
	forfeit(next, m.Opponent(m.CurrentActorID), domain.ForfeitCauseTimeout, now)
	return &Delta{Next: next}, nil
}

func (v *Validator) decideStalledExpire(m *domain.Match, actorID uuid.UUID, now time.Time) (*Delta, error) {
	if actorID != SystemActorID {
		return nil, domain.ErrWrongActor
	}
	if err := requireActive(m); err != nil {
		return nil, err
	}
	if now.Sub(m.CreatedAt) < v.stalledAfter {
		return nil, domain.ErrDeadlineNotElapsed
	}

	// More letters loses. On an exact tie the player currently sitting on
	// the turn loses - the anti-stalling rule.
	loser := m.CurrentActorID
	switch {
	case m.LetterCount(m.PlayerA) > m.LetterCount(m.PlayerB):
		loser = m.PlayerA
	case m.LetterCount(m.PlayerB) > m.LetterCount(m.PlayerA):
		loser = m.PlayerB
	}

	next := m.Clone()
	forfeit(next, m.Opponent(loser), domain.ForfeitCauseStalled, now)
	return &Delta{Next: next}, nil
}

func (v *Validator) decideFileDispute(m *domain.Match, actorID uuid.UUID, act Action, now time.Time) (*Delta, error) {
	// Disputes survive match completion: the fifth letter is exactly the
	// judgment most worth contesting. Forfeited/declined matches have no
	// judged moves in flight.
	if m.Status != domain.MatchStatusActive && m.Status != domain.MatchStatusCompleted {
		return nil, domain.ErrMatchNotActive
	}
	if !m.IsParticipant(actorID) {
		return nil, domain.ErrNotParticipant
	}
	if m.DisputeUsed[actorID] {
		return nil, domain.ErrDisputeBudgetExhausted
	}

	// Only the most recent judged move is disputable, and only until the
	// next move resolves or the grace window closes.
	last := m.LastMove()
	if last == nil || last.ID != act.MoveID {
		return nil, domain.ErrDisputeWindowClosed
	}
	if last.Result != domain.MoveResultMissed || last.ResponderID != actorID {
		return nil, domain.ErrWrongActor
	}
	if now.Sub(last.ResolvedAt) > v.disputeWindow {
		return nil, domain.ErrDisputeWindowClosed
	}

	next := m.Clone()
	next.DisputeUsed[actorID] = true
	next.UpdatedAt = now
	return &Delta{Next: next}, nil
}

func (v *Validator) decideOverturnMove(m *domain.Match, actorID uuid.UUID, act Action, now time.Time) (*Delta, error) {
	if actorID != SystemActorID {
		return nil, domain.ErrWrongActor
	}
	target := findMove(m, act.MoveID)
	if target == nil || target.Result != domain.MoveResultMissed || target.LetterAssigned == "" {
		return nil, domain.ErrDisputeWindowClosed
	}

	next := m.Clone()
	// Compensate with a new appended move; history is never rewritten.
	moveID := target.ID
	comp := domain.Move{
		ID:             uuid.New(),
		Round:          m.Round,
		SetterID:       target.SetterID,
		ResponderID:    target.ResponderID,
		TrickName:      target.TrickName,
		Result:         domain.MoveResultOverturned,
		ReversesMoveID: &moveID,
		ResolvedAt:     now,
	}
	next.Moves = append(next.Moves, comp)

	letters := next.Letters[target.ResponderID]
	if len(letters) > 0 {
		next.Letters[target.ResponderID] = letters[:len(letters)-1]
	}

	if m.Status == domain.MatchStatusCompleted {
		// The reversed letter was the fifth: the match reopens with the
		// original setter back on the attack.
		next.Status = domain.MatchStatusActive
		next.WinnerID = nil
		next.CompletedAt = nil
		next.AttackerID = target.SetterID
		next.DefenderID = target.ResponderID
		beginRound(next, m.Round+1, now, v.turnWindow)
		return &Delta{Next: next, ResolvedMove: &comp}, nil
	}

	next.UpdatedAt = now
	return &Delta{Next: next, ResolvedMove: &comp}, nil
}

// requireActive gates every in-match action. An action arriving after the
// reconciler has already forfeited the match lands here and is rejected with
// match_not_active, never silently accepted.
func requireActive(m *domain.Match) error {
	if m.Status != domain.MatchStatusActive {
		return domain.ErrMatchNotActive
	}
	return nil
}

// rejectActor distinguishes outsiders from participants acting out of turn.
func rejectActor(m *domain.Match, actorID uuid.UUID) error {
	if !m.IsParticipant(actorID) {
		return domain.ErrNotParticipant
	}
	return domain.ErrWrongActor
}

// forfeit moves a match to the forfeited terminal state.
func forfeit(next *domain.Match, winnerID uuid.UUID, cause domain.ForfeitCause, now time.Time) {
	next.Status = domain.MatchStatusForfeited
	next.Phase = ""
	next.WinnerID = &winnerID
	next.ForfeitCause = cause
	completed := now
	next.CompletedAt = &completed
	next.UpdatedAt = now
	clearRoundState(next)
}

// beginRound resets per-round state and hands the turn to the attacker.
func beginRound(next *domain.Match, round int, now time.Time, turnWindow time.Duration) {
	next.Round = round
	next.Phase = domain.PhaseAwaitingSet
	next.CurrentActorID = next.AttackerID
	next.DeadlineAt = now.Add(turnWindow)
	next.UpdatedAt = now
	clearRoundState(next)
}

func clearRoundState(next *domain.Match) {
	next.CurrentTrickName = ""
	next.CurrentEvidenceRef = ""
	next.ResponseEvidenceRef = ""
	next.Votes = map[uuid.UUID]domain.Verdict{}
}

func findMove(m *domain.Match, id uuid.UUID) *domain.Move {
	for i := range m.Moves {
		if m.Moves[i].ID == id {
			return &m.Moves[i]
		}
	}
	return nil
}

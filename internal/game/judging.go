package game

import (
	"time"

	"github.com/google/uuid"

	"github.com/flatground/skateline/internal/domain"
)

// decideJudge dispatches to the configured judging variant. The two variants
// are one strategy switch, not parallel state machines: both funnel into
// resolveJudgment.
func (v *Validator) decideJudge(m *domain.Match, actorID uuid.UUID, act Action, now time.Time) (*Delta, error) {
	if err := requireActive(m); err != nil {
		return nil, err
	}
	if act.Verdict != domain.VerdictLanded && act.Verdict != domain.VerdictMissed {
		return nil, domain.ErrInvalidVerdict
	}

	switch v.mode {
	case JudgingSelfReport:
		return v.judgeSelfReport(m, actorID, act, now)
	default:
		return v.judgeDualVote(m, actorID, act, now)
	}
}

// judgeSelfReport - the defender alone reports the outcome of their attempt.
func (v *Validator) judgeSelfReport(m *domain.Match, actorID uuid.UUID, act Action, now time.Time) (*Delta, error) {
	if m.Phase != domain.PhaseAwaitingJudgment {
		return nil, domain.ErrWrongPhase
	}
	if actorID != m.DefenderID {
		return nil, rejectActor(m, actorID)
	}
	return v.resolveJudgment(m, act.Verdict, now)
}

// judgeDualVote - each side votes once. The first vote moves the match into
// verification and hands the turn to the other voter. Agreeing votes stand;
// a split resolves to landed. The defender-favoring tie-break is deliberate:
// it keeps attackers from judging harshly.
func (v *Validator) judgeDualVote(m *domain.Match, actorID uuid.UUID, act Action, now time.Time) (*Delta, error) {
	switch m.Phase {
	case domain.PhaseAwaitingJudgment:
		if !m.IsParticipant(actorID) {
			return nil, domain.ErrNotParticipant
		}
		next := m.Clone()
		next.Votes[actorID] = act.Verdict
		next.Phase = domain.PhaseVerification
		next.CurrentActorID = m.Opponent(actorID)
		next.DeadlineAt = now.Add(v.turnWindow)
		next.UpdatedAt = now
		return &Delta{Next: next}, nil

	case domain.PhaseVerification:
		if !m.IsParticipant(actorID) {
			return nil, domain.ErrNotParticipant
		}
		if _, voted := m.Votes[actorID]; voted {
			return nil, domain.ErrWrongActor
		}
		first, ok := m.Votes[m.Opponent(actorID)]
		if !ok {
			// Verification with no recorded vote cannot happen through
			// committed transitions
			return nil, domain.ErrWrongPhase
		}
		verdict := act.Verdict
		if first != act.Verdict {
			verdict = domain.VerdictLanded
		}
		return v.resolveJudgment(m, verdict, now)

	default:
		return nil, domain.ErrWrongPhase
	}
}

// resolveJudgment applies the letter/turn-transfer rule once a judgment is
// final:
//   - missed: the defender takes the next symbol; a fifth letter completes
//     the match with the attacker as winner, otherwise the same attacker
//     sets again.
//   - landed: no letter; roles swap for the next round.
func (v *Validator) resolveJudgment(m *domain.Match, verdict domain.Verdict, now time.Time) (*Delta, error) {
	next := m.Clone()
	move := domain.Move{
		ID:                  uuid.New(),
		Round:               m.Round,
		SetterID:            m.AttackerID,
		ResponderID:         m.DefenderID,
		TrickName:           m.CurrentTrickName,
		SetterEvidenceRef:   m.CurrentEvidenceRef,
		ResponseEvidenceRef: m.ResponseEvidenceRef,
		Result:              domain.MoveResult(verdict),
		ResolvedAt:          now,
	}

	if verdict == domain.VerdictMissed {
		letters := m.Letters[m.DefenderID]
		symbol := string(domain.LetterAlphabet[len(letters)])
		move.LetterAssigned = symbol
		next.Letters[m.DefenderID] = letters + symbol
		next.Moves = append(next.Moves, move)

		if len(next.Letters[m.DefenderID]) >= domain.MaxLetters {
			winner := m.AttackerID
			next.Status = domain.MatchStatusCompleted
			next.Phase = ""
			next.WinnerID = &winner
			completed := now
			next.CompletedAt = &completed
			next.UpdatedAt = now
			clearRoundState(next)
			return &Delta{Next: next, ResolvedMove: &move}, nil
		}

		// Same attacker keeps setting
		beginRound(next, m.Round+1, now, v.turnWindow)
		return &Delta{Next: next, ResolvedMove: &move}, nil
	}

	// Landed: no letter, roles swap
	next.Moves = append(next.Moves, move)
	next.AttackerID, next.DefenderID = m.DefenderID, m.AttackerID
	beginRound(next, m.Round+1, now, v.turnWindow)
	return &Delta{Next: next, ResolvedMove: &move}, nil
}

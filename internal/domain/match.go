package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// LetterAlphabet is the fixed penalty alphabet. A player that collects all
// five symbols loses the match.
const LetterAlphabet = "SKATE"

// MaxLetters is the terminal letter count for a player.
const MaxLetters = len(LetterAlphabet)

// MatchStatus represents the lifecycle state of a match
type MatchStatus string

const (
	MatchStatusPending   MatchStatus = "pending"
	MatchStatusActive    MatchStatus = "active"
	MatchStatusCompleted MatchStatus = "completed"
	MatchStatusForfeited MatchStatus = "forfeited"
	MatchStatusDeclined  MatchStatus = "declined"
)

// Terminal reports whether the status admits no further transitions.
func (s MatchStatus) Terminal() bool {
	return s == MatchStatusCompleted || s == MatchStatusForfeited || s == MatchStatusDeclined
}

// MatchPhase represents the turn phase within an active match
type MatchPhase string

const (
	// PhaseAwaitingSet - the attacker owes a trick
	PhaseAwaitingSet MatchPhase = "awaiting_set"
	// PhaseAwaitingResponse - the defender owes an attempt
	PhaseAwaitingResponse MatchPhase = "awaiting_response"
	// PhaseAwaitingJudgment - no vote recorded yet for the current attempt
	PhaseAwaitingJudgment MatchPhase = "awaiting_judgment"
	// PhaseVerification - one vote recorded, waiting on the other side (dual-vote mode)
	PhaseVerification MatchPhase = "verification"
)

// Verdict is a judgment of a trick attempt
type Verdict string

const (
	VerdictLanded Verdict = "landed"
	VerdictMissed Verdict = "missed"
)

// MoveResult is the final outcome of a resolved round
type MoveResult string

const (
	MoveResultLanded      MoveResult = "landed"
	MoveResultMissed      MoveResult = "missed"
	MoveResultSetterMiss  MoveResult = "setter_missed"
	MoveResultOverturned  MoveResult = "overturned"
)

// ForfeitCause records why a match was forfeited
type ForfeitCause string

const (
	ForfeitCausePlayer  ForfeitCause = "player"
	ForfeitCauseTimeout ForfeitCause = "timeout"
	ForfeitCauseStalled ForfeitCause = "stalled"
)

// Move is one resolved entry in the append-only match log.
// Moves are never mutated after being appended.
type Move struct {
	ID                  uuid.UUID  `json:"id"`
	Round               int        `json:"round"`
	SetterID            uuid.UUID  `json:"setter_id"`
	ResponderID         uuid.UUID  `json:"responder_id"`
	TrickName           string     `json:"trick_name"`
	SetterEvidenceRef   string     `json:"setter_evidence_ref,omitempty"`
	ResponseEvidenceRef string     `json:"response_evidence_ref,omitempty"`
	Result              MoveResult `json:"result"`
	LetterAssigned      string     `json:"letter_assigned,omitempty"`
	// ReversesMoveID points at the disputed move when Result is overturned
	ReversesMoveID *uuid.UUID `json:"reverses_move_id,omitempty"`
	ResolvedAt     time.Time  `json:"resolved_at"`
}

// Match is the aggregate root for one S.K.A.T.E. duel.
// The record is always read and written as a whole under the optimistic
// Version check; Moves is append-only.
type Match struct {
	ID             uuid.UUID   `json:"id"`
	PlayerA        uuid.UUID   `json:"player_a"`
	PlayerB        uuid.UUID   `json:"player_b"`
	Status         MatchStatus `json:"status"`
	Phase          MatchPhase  `json:"phase,omitempty"`
	CurrentActorID uuid.UUID   `json:"current_actor_id"`
	AttackerID     uuid.UUID   `json:"attacker_id"`
	DefenderID     uuid.UUID   `json:"defender_id"`
	Round          int         `json:"round"`

	// Letters holds each player's penalty sequence, e.g. "SKAT".
	Letters map[uuid.UUID]string `json:"letters"`

	CurrentTrickName    string `json:"current_trick_name,omitempty"`
	CurrentEvidenceRef  string `json:"current_evidence_ref,omitempty"`
	ResponseEvidenceRef string `json:"response_evidence_ref,omitempty"`

	// Votes holds per-player judgments for the attempt in flight.
	// Cleared when the round resolves.
	Votes map[uuid.UUID]Verdict `json:"votes,omitempty"`

	// DisputeUsed flips false->true at most once per player per match.
	DisputeUsed map[uuid.UUID]bool `json:"dispute_used"`

	DeadlineAt   time.Time    `json:"deadline_at"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
	CompletedAt  *time.Time   `json:"completed_at,omitempty"`
	WinnerID     *uuid.UUID   `json:"winner_id,omitempty"`
	ForfeitCause ForfeitCause `json:"forfeit_cause,omitempty"`

	Moves []Move `json:"moves"`

	// Version is the optimistic-lock token. Every committed transition
	// increments it by exactly one.
	Version int64 `json:"version"`
}

// IsParticipant reports whether playerID is one of the two players.
func (m *Match) IsParticipant(playerID uuid.UUID) bool {
	return playerID == m.PlayerA || playerID == m.PlayerB
}

// Opponent returns the other participant. Callers must pass a participant.
func (m *Match) Opponent(playerID uuid.UUID) uuid.UUID {
	if playerID == m.PlayerA {
		return m.PlayerB
	}
	return m.PlayerA
}

// LetterCount returns the number of penalty letters held by playerID.
func (m *Match) LetterCount(playerID uuid.UUID) int {
	return len(m.Letters[playerID])
}

// LastMove returns the most recently appended move, or nil.
func (m *Match) LastMove() *Move {
	if len(m.Moves) == 0 {
		return nil
	}
	return &m.Moves[len(m.Moves)-1]
}

// Clone returns a deep copy. The validator works on a copy so a rejected
// action can never leave partial edits on the caller's record.
func (m *Match) Clone() *Match {
	next := *m
	next.Letters = make(map[uuid.UUID]string, len(m.Letters))
	for k, v := range m.Letters {
		next.Letters[k] = v
	}
	next.Votes = make(map[uuid.UUID]Verdict, len(m.Votes))
	for k, v := range m.Votes {
		next.Votes[k] = v
	}
	next.DisputeUsed = make(map[uuid.UUID]bool, len(m.DisputeUsed))
	for k, v := range m.DisputeUsed {
		next.DisputeUsed[k] = v
	}
	next.Moves = make([]Move, len(m.Moves))
	copy(next.Moves, m.Moves)
	if m.WinnerID != nil {
		w := *m.WinnerID
		next.WinnerID = &w
	}
	if m.CompletedAt != nil {
		c := *m.CompletedAt
		next.CompletedAt = &c
	}
	return &next
}

// NewMatch creates a pending match between two players. playerA is the
// challenger and becomes the first attacker on acceptance.
func NewMatch(playerA, playerB uuid.UUID, now time.Time, challengeWindow time.Duration) *Match {
	return &Match{
		ID:             uuid.New(),
		PlayerA:        playerA,
		PlayerB:        playerB,
		Status:         MatchStatusPending,
		CurrentActorID: playerB,
		AttackerID:     playerA,
		DefenderID:     playerB,
		Round:          0,
		Letters:        map[uuid.UUID]string{playerA: "", playerB: ""},
		Votes:          map[uuid.UUID]Verdict{},
		DisputeUsed:    map[uuid.UUID]bool{playerA: false, playerB: false},
		DeadlineAt:     now.Add(challengeWindow),
		CreatedAt:      now,
		UpdatedAt:      now,
		Moves:          []Move{},
		Version:        1,
	}
}

// MarshalMoves converts the move log to JSONB
func MarshalMoves(moves []Move) ([]byte, error) {
	if moves == nil {
		moves = []Move{}
	}
	return json.Marshal(moves)
}

// UnmarshalMoves converts JSONB to a move log
func UnmarshalMoves(data []byte) ([]Move, error) {
	var moves []Move
	if len(data) == 0 {
		return []Move{}, nil
	}
	if err := json.Unmarshal(data, &moves); err != nil {
		return nil, err
	}
	return moves, nil
}

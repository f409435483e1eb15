package domain

import (
	"time"

	"github.com/google/uuid"
)

// DisputeVerdict is the terminal outcome of a filed dispute
type DisputeVerdict string

const (
	DisputeVerdictUpheld     DisputeVerdict = "upheld"
	DisputeVerdictOverturned DisputeVerdict = "overturned"
)

// Dispute is a secondary aggregate: one row per filed dispute.
// The verdict and resolution timestamp are written exactly once.
type Dispute struct {
	ID             uuid.UUID       `json:"id"`
	MatchID        uuid.UUID       `json:"match_id"`
	MoveID         uuid.UUID       `json:"move_id"`
	FilerID        uuid.UUID       `json:"filer_id"`
	AgainstID      uuid.UUID       `json:"against_id"`
	Verdict        *DisputeVerdict `json:"verdict,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	ResolvedAt     *time.Time      `json:"resolved_at,omitempty"`
}

// Resolved reports whether the dispute has a final verdict.
func (d *Dispute) Resolved() bool {
	return d.Verdict != nil
}

// Profile carries the per-player reputation state consumed by external
// trust scoring. ReputationPenalties is a one-way debit counter.
type Profile struct {
	PlayerID            uuid.UUID `json:"player_id"`
	ReputationPenalties int       `json:"reputation_penalties"`
	UpdatedAt           time.Time `json:"updated_at"`
}

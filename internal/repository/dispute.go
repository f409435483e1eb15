package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/flatground/skateline/internal/domain"
)

// Dispute defines the interface for dispute data access
type Dispute interface {
	// CreateDisputeWithBudget inserts the dispute row and commits the
	// budget-consuming match delta in one transaction, so a lost race on
	// the match version leaves no orphan dispute. The match write is CAS
	// against expectedVersion.
	CreateDisputeWithBudget(ctx context.Context, d *domain.Dispute, m *domain.Match, expectedVersion int64) error

	// GetDispute returns domain.ErrDisputeNotFound when the id is unknown.
	GetDispute(ctx context.Context, id uuid.UUID) (*domain.Dispute, error)

	// SetVerdict writes the verdict and resolution timestamp exactly once.
	// A second write returns domain.ErrDisputeAlreadyResolved.
	SetVerdict(ctx context.Context, id uuid.UUID, verdict domain.DisputeVerdict, resolvedAt time.Time) error

	GetDisputesForMatch(ctx context.Context, matchID uuid.UUID) ([]domain.Dispute, error)
}

// Profile defines the interface for player reputation data
type Profile interface {
	// AddReputationPenalty debits one permanent penalty. Never reversed.
	AddReputationPenalty(ctx context.Context, playerID uuid.UUID) error

	// GetProfile returns a zero-penalty profile for unknown players.
	GetProfile(ctx context.Context, playerID uuid.UUID) (*domain.Profile, error)
}

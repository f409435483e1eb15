package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/flatground/skateline/internal/domain"
)

// Match defines the interface for match data access.
//
// The storage contract: the match record is read and written as a whole,
// and every write is conditioned on the optimistic version token. Partial
// field updates are not part of this interface.
type Match interface {
	CreateMatch(ctx context.Context, m *domain.Match) error

	// GetMatch returns domain.ErrMatchNotFound when the id is unknown.
	GetMatch(ctx context.Context, id uuid.UUID) (*domain.Match, error)

	// UpdateMatchCAS writes the full record conditioned on the stored
	// version still equalling expectedVersion, incrementing the version by
	// one in the same write. Returns domain.ErrConcurrencyConflict when
	// the record moved underneath the caller.
	UpdateMatchCAS(ctx context.Context, m *domain.Match, expectedVersion int64) error

	// GetMatchesForPlayer returns the player's matches, newest first.
	GetMatchesForPlayer(ctx context.Context, playerID uuid.UUID, limit int) ([]domain.Match, error)

	// Reconciler scans. All are index-backed range queries over
	// (status, deadline_at) or (status, created_at).
	ListExpiredActive(ctx context.Context, now time.Time, limit int) ([]domain.Match, error)
	ListDeadlineApproaching(ctx context.Context, now time.Time, within time.Duration, limit int) ([]domain.Match, error)
	ListStalledActive(ctx context.Context, createdBefore time.Time, limit int) ([]domain.Match, error)
	ListExpiredPending(ctx context.Context, now time.Time, limit int) ([]domain.Match, error)
}

package match

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/flatground/skateline/internal/domain"
	"github.com/flatground/skateline/internal/game"
	"github.com/flatground/skateline/internal/logger"
	"github.com/flatground/skateline/internal/metrics"
)

// applyAttempts bounds the read-validate-write loop: the initial attempt
// plus exactly one retry on a version conflict.
const applyAttempts = 2

// Mutator applies validated actions to the persisted match record under the
// optimistic-version discipline. It is the only component that surfaces
// ErrConcurrencyConflict or storage errors.
type Mutator struct {
	repo      Repository
	validator *game.Validator
	now       func() time.Time
}

// NewMutator creates a Mutator. now is injectable for tests.
func NewMutator(repo Repository, validator *game.Validator, now func() time.Time) *Mutator {
	if now == nil {
		now = time.Now
	}
	return &Mutator{repo: repo, validator: validator, now: now}
}

// Apply runs the read-validate-write cycle for one logical action.
//
// The delta's preconditions are recomputed against the just-read state on
// every attempt - client-submitted state is never trusted - and the write is
// conditioned on the version being unchanged since the read. At most one
// committed transition can result from one logical action, even when a
// client retry races the reconciler.
func (mu *Mutator) Apply(ctx context.Context, matchID, actorID uuid.UUID, act game.Action) (*game.Delta, error) {
	var lastErr error
	for attempt := 0; attempt < applyAttempts; attempt++ {
		current, err := mu.repo.GetMatch(ctx, matchID)
		if err != nil {
			return nil, err
		}

		delta, err := mu.validator.Decide(current, actorID, act, mu.now())
		if err != nil {
			metrics.ActionRejections.WithLabelValues(rejectionLabel(err)).Inc()
			return nil, err
		}

		err = mu.repo.UpdateMatchCAS(ctx, delta.Next, current.Version)
		if err == nil {
			// Mirror the version bump the store applied so callers see the
			// committed token.
			delta.Next.Version = current.Version + 1
			metrics.ActionsCommitted.WithLabelValues(string(act.Type)).Inc()
			return delta, nil
		}
		if !errors.Is(err, domain.ErrConcurrencyConflict) {
			return nil, err
		}

		lastErr = err
		logger.FromContext(ctx).Debug("Version conflict on apply, re-reading",
			"matchID", matchID, "action", act.Type, "attempt", attempt+1)
	}

	metrics.VersionConflicts.Inc()
	return nil, fmt.Errorf("apply %s: %w", act.Type, lastErr)
}

func rejectionLabel(err error) string {
	if reason := domain.RejectionReason(err); reason != "" {
		return reason
	}
	return "other"
}

package dispute

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/flatground/skateline/internal/domain"
	"github.com/flatground/skateline/internal/event"
	"github.com/flatground/skateline/internal/game"
	"github.com/flatground/skateline/internal/logger"
	"github.com/flatground/skateline/internal/match"
	"github.com/flatground/skateline/internal/metrics"
	"github.com/flatground/skateline/internal/repository"
)

// Repository is a local interface for dispute repository operations.
// It embeds repository.Dispute to enable mock generation in this package.
type Repository interface {
	repository.Dispute
}

// Service defines the interface for dispute operations
type Service interface {
	// File opens a dispute against the most recent judged move. Consumes
	// the filer's once-per-match dispute budget.
	File(ctx context.Context, matchID, filerID, moveID uuid.UUID) (*domain.Dispute, error)

	// Resolve writes the terminal verdict. Only the against-party may
	// resolve. An overturned verdict triggers the compensating transition;
	// the losing side of the dispute takes a permanent reputation penalty.
	Resolve(ctx context.Context, disputeID, resolverID uuid.UUID, verdict domain.DisputeVerdict) (*domain.Dispute, error)

	GetDispute(ctx context.Context, disputeID uuid.UUID) (*domain.Dispute, error)
	GetProfile(ctx context.Context, playerID uuid.UUID) (*domain.Profile, error)

	Shutdown(ctx context.Context) error
}

type service struct {
	repo      Repository
	matches   repository.Match
	profiles  repository.Profile
	matchSvc  match.Service
	validator *game.Validator
	eventBus  event.Bus
	now       func() time.Time
}

// NewService creates a new dispute service
func NewService(repo Repository, matches repository.Match, profiles repository.Profile, matchSvc match.Service, validator *game.Validator, eventBus event.Bus, now func() time.Time) Service {
	if now == nil {
		now = time.Now
	}
	return &service{
		repo:      repo,
		matches:   matches,
		profiles:  profiles,
		matchSvc:  matchSvc,
		validator: validator,
		eventBus:  eventBus,
		now:       now,
	}
}

// fileAttempts mirrors the mutator's bound: one retry on a version conflict.
const fileAttempts = 2

func (s *service) File(ctx context.Context, matchID, filerID, moveID uuid.UUID) (*domain.Dispute, error) {
	act := game.Action{Type: game.ActionFileDispute, MoveID: moveID}

	var lastErr error
	for attempt := 0; attempt < fileAttempts; attempt++ {
		current, err := s.matches.GetMatch(ctx, matchID)
		if err != nil {
			return nil, err
		}

		delta, err := s.validator.Decide(current, filerID, act, s.now())
		if err != nil {
			return nil, err
		}

		d := &domain.Dispute{
			ID:        uuid.New(),
			MatchID:   matchID,
			MoveID:    moveID,
			FilerID:   filerID,
			AgainstID: current.Opponent(filerID),
			CreatedAt: s.now(),
		}

		// One transaction: the budget-consuming match write and the
		// dispute row commit or fail together.
		err = s.repo.CreateDisputeWithBudget(ctx, d, delta.Next, current.Version)
		if err == nil {
			metrics.DisputesFiled.Inc()
			s.publish(ctx, event.NewDisputeEvent(event.DisputeFiled, d, "", d.AgainstID))
			return d, nil
		}
		if !errors.Is(err, domain.ErrConcurrencyConflict) {
			return nil, err
		}
		lastErr = err
	}

	return nil, fmt.Errorf("file dispute: %w", lastErr)
}

func (s *service) Resolve(ctx context.Context, disputeID, resolverID uuid.UUID, verdict domain.DisputeVerdict) (*domain.Dispute, error) {
	if verdict != domain.DisputeVerdictUpheld && verdict != domain.DisputeVerdictOverturned {
		return nil, domain.ErrInvalidVerdict
	}

	d, err := s.repo.GetDispute(ctx, disputeID)
	if err != nil {
		return nil, err
	}
	if d.Resolved() {
		return nil, domain.ErrDisputeAlreadyResolved
	}
	if resolverID != d.AgainstID {
		return nil, domain.ErrDisputeWrongResolver
	}

	resolvedAt := s.now()
	if err := s.repo.SetVerdict(ctx, disputeID, verdict, resolvedAt); err != nil {
		return nil, err
	}
	d.Verdict = &verdict
	d.ResolvedAt = &resolvedAt

	// The loser of the dispute takes the permanent debit: the filer when
	// the judgment stands, the judged side when it is overturned.
	loserID := d.FilerID
	if verdict == domain.DisputeVerdictOverturned {
		loserID = d.AgainstID
		s.compensate(ctx, d)
	}
	if err := s.profiles.AddReputationPenalty(ctx, loserID); err != nil {
		logger.FromContext(ctx).Error("Failed to record reputation penalty",
			"disputeID", disputeID, "playerID", loserID, "error", err)
	}

	metrics.DisputesResolved.WithLabelValues(string(verdict)).Inc()
	s.publish(ctx, event.NewDisputeEvent(event.DisputeResolved, d, string(verdict), d.FilerID, d.AgainstID))
	return d, nil
}

// compensate reverses the disputed letter through the normal mutation path.
// History is never rewritten: a compensating move is appended and the letter
// sequence shrinks by one.
func (s *service) compensate(ctx context.Context, d *domain.Dispute) {
	act := game.Action{Type: game.ActionOverturnMove, MoveID: d.MoveID}
	if _, err := s.matchSvc.Submit(ctx, d.MatchID, game.SystemActorID, act); err != nil {
		// The verdict is already terminal; the audit log carries enough
		// to reconcile a failed compensation by hand.
		logger.FromContext(ctx).Error("Compensating transition failed",
			"disputeID", d.ID, "matchID", d.MatchID, "moveID", d.MoveID, "error", err)
	}
}

func (s *service) GetDispute(ctx context.Context, disputeID uuid.UUID) (*domain.Dispute, error) {
	return s.repo.GetDispute(ctx, disputeID)
}

func (s *service) GetProfile(ctx context.Context, playerID uuid.UUID) (*domain.Profile, error) {
	return s.profiles.GetProfile(ctx, playerID)
}

func (s *service) Shutdown(ctx context.Context) error {
	return nil
}

func (s *service) publish(ctx context.Context, ev event.Event) {
	metrics.EventsPublished.WithLabelValues(string(ev.Type)).Inc()
	_ = s.eventBus.Publish(ctx, ev)
}

package match

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/flatground/skateline/internal/domain"
	"github.com/flatground/skateline/internal/event"
	"github.com/flatground/skateline/internal/game"
	"github.com/flatground/skateline/internal/metrics"
)

// Service defines the interface for match operations
type Service interface {
	// Challenge creates a pending match; the challenger becomes the first
	// attacker on acceptance.
	Challenge(ctx context.Context, challengerID, opponentID uuid.UUID) (*domain.Match, error)

	// Submit validates and commits one action through the transactional
	// mutator, then publishes the resulting events.
	Submit(ctx context.Context, matchID, actorID uuid.UUID, act game.Action) (*domain.Match, error)

	GetMatch(ctx context.Context, matchID uuid.UUID) (*domain.Match, error)
	GetMatchesForPlayer(ctx context.Context, playerID uuid.UUID) ([]domain.Match, error)

	Shutdown(ctx context.Context) error
}

type service struct {
	repo      Repository
	mutator   *Mutator
	eventBus  event.Bus
	readCache *expirable.LRU[uuid.UUID, *domain.Match]
	now       func() time.Time

	challengeWindow time.Duration
	listLimit       int
}

// Options tunes service behaviour
type Options struct {
	ChallengeWindow time.Duration
	ListLimit       int
	CacheSize       int
	CacheTTL        time.Duration
	Now             func() time.Time
}

// NewService creates a new match service
func NewService(repo Repository, validator *game.Validator, eventBus event.Bus, opts Options) Service {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.ListLimit <= 0 {
		opts.ListLimit = DefaultListLimit
	}
	if opts.CacheSize <= 0 {
		opts.CacheSize = DefaultCacheSize
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = DefaultCacheTTL
	}
	return &service{
		repo:            repo,
		mutator:         NewMutator(repo, validator, opts.Now),
		eventBus:        eventBus,
		readCache:       expirable.NewLRU[uuid.UUID, *domain.Match](opts.CacheSize, nil, opts.CacheTTL),
		now:             opts.Now,
		challengeWindow: opts.ChallengeWindow,
		listLimit:       opts.ListLimit,
	}
}

func (s *service) Challenge(ctx context.Context, challengerID, opponentID uuid.UUID) (*domain.Match, error) {
	if challengerID == opponentID {
		return nil, fmt.Errorf("%w: cannot challenge yourself", domain.ErrInvalidInput)
	}
	if challengerID == uuid.Nil || opponentID == uuid.Nil {
		return nil, fmt.Errorf("%w: player ids required", domain.ErrInvalidInput)
	}

	m := domain.NewMatch(challengerID, opponentID, s.now(), s.challengeWindow)
	if err := s.repo.CreateMatch(ctx, m); err != nil {
		return nil, fmt.Errorf("failed to create match: %w", err)
	}

	s.publish(ctx, event.NewMatchEvent(event.MatchChallengeCreated, m, challengerID, opponentID))
	return m, nil
}

func (s *service) Submit(ctx context.Context, matchID, actorID uuid.UUID, act game.Action) (*domain.Match, error) {
	delta, err := s.mutator.Apply(ctx, matchID, actorID, act)
	if err != nil {
		return nil, err
	}

	s.readCache.Remove(matchID)
	s.recordOutcome(delta)

	for _, ev := range deriveEvents(actorID, act, delta) {
		s.publish(ctx, ev)
	}
	return delta.Next, nil
}

func (s *service) GetMatch(ctx context.Context, matchID uuid.UUID) (*domain.Match, error) {
	if m, ok := s.readCache.Get(matchID); ok {
		return m, nil
	}
	m, err := s.repo.GetMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}
	s.readCache.Add(matchID, m)
	return m, nil
}

func (s *service) GetMatchesForPlayer(ctx context.Context, playerID uuid.UUID) ([]domain.Match, error) {
	return s.repo.GetMatchesForPlayer(ctx, playerID, s.listLimit)
}

func (s *service) Shutdown(ctx context.Context) error {
	s.readCache.Purge()
	return nil
}

// publish is fire-and-forget: notification delivery never fails an action.
func (s *service) publish(ctx context.Context, ev event.Event) {
	metrics.EventsPublished.WithLabelValues(string(ev.Type)).Inc()
	_ = s.eventBus.Publish(ctx, ev)
}

func (s *service) recordOutcome(delta *game.Delta) {
	if delta.ResolvedMove != nil && delta.ResolvedMove.LetterAssigned != "" {
		metrics.LettersAssigned.Inc()
	}
	switch delta.Next.Status {
	case domain.MatchStatusCompleted:
		metrics.MatchesCompleted.WithLabelValues(string(domain.MatchStatusCompleted)).Inc()
	case domain.MatchStatusForfeited:
		metrics.MatchesCompleted.WithLabelValues(string(domain.MatchStatusForfeited)).Inc()
	}
}

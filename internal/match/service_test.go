package match

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/flatground/skateline/internal/domain"
	"github.com/flatground/skateline/internal/event"
	"github.com/flatground/skateline/internal/game"
)

type capturingBus struct {
	events []event.Event
}

func (b *capturingBus) Publish(ctx context.Context, ev event.Event) error {
	b.events = append(b.events, ev)
	return nil
}

func (b *capturingBus) Subscribe(eventType event.Type, handler event.Handler) {}

func (b *capturingBus) types() []event.Type {
	out := make([]event.Type, 0, len(b.events))
	for _, ev := range b.events {
		out = append(out, ev.Type)
	}
	return out
}

func newTestService(repo Repository, bus event.Bus) Service {
	return NewService(repo, testValidator(), bus, Options{
		ChallengeWindow: 72 * time.Hour,
		Now:             fixedNow,
	})
}

func TestServiceChallenge(t *testing.T) {
	t.Run("creates a pending match and notifies both players", func(t *testing.T) {
		repo := new(MockRepository)
		bus := &capturingBus{}
		repo.On("CreateMatch", mock.Anything, mock.AnythingOfType("*domain.Match")).Return(nil).Once()

		svc := newTestService(repo, bus)
		m, err := svc.Challenge(context.Background(), testPlayerA, testPlayerB)

		require.NoError(t, err)
		assert.Equal(t, domain.MatchStatusPending, m.Status)
		assert.Equal(t, testPlayerA, m.PlayerA)
		assert.Equal(t, testNow.Add(72*time.Hour), m.DeadlineAt)
		assert.Equal(t, []event.Type{event.MatchChallengeCreated}, bus.types())
		repo.AssertExpectations(t)
	})

	t.Run("self challenge is rejected", func(t *testing.T) {
		svc := newTestService(new(MockRepository), &capturingBus{})
		_, err := svc.Challenge(context.Background(), testPlayerA, testPlayerA)
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("nil player ids are rejected", func(t *testing.T) {
		svc := newTestService(new(MockRepository), &capturingBus{})
		_, err := svc.Challenge(context.Background(), testPlayerA, uuid.Nil)
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})
}

func TestServiceSubmit(t *testing.T) {
	setAction := game.Action{Type: game.ActionSetTrick, TrickName: "kickflip", EvidenceRef: "clip://set"}

	t.Run("commits and publishes the derived event", func(t *testing.T) {
		repo := new(MockRepository)
		bus := &capturingBus{}
		m := activeMatch()
		repo.On("GetMatch", mock.Anything, m.ID).Return(m, nil).Once()
		repo.On("UpdateMatchCAS", mock.Anything, mock.Anything, m.Version).Return(nil).Once()

		svc := newTestService(repo, bus)
		next, err := svc.Submit(context.Background(), m.ID, testPlayerA, setAction)

		require.NoError(t, err)
		assert.Equal(t, domain.PhaseAwaitingResponse, next.Phase)
		assert.Equal(t, []event.Type{event.MatchTrickSet}, bus.types())
	})

	t.Run("rejection publishes nothing", func(t *testing.T) {
		repo := new(MockRepository)
		bus := &capturingBus{}
		m := activeMatch()
		repo.On("GetMatch", mock.Anything, m.ID).Return(m, nil).Once()

		svc := newTestService(repo, bus)
		_, err := svc.Submit(context.Background(), m.ID, testPlayerB, setAction)

		assert.ErrorIs(t, err, domain.ErrWrongActor)
		assert.Empty(t, bus.events)
	})

	t.Run("lapsed challenge notifies the challenger it was declined", func(t *testing.T) {
		repo := new(MockRepository)
		bus := &capturingBus{}
		m := domain.NewMatch(testPlayerA, testPlayerB, testNow.Add(-100*time.Hour), 72*time.Hour)
		repo.On("GetMatch", mock.Anything, m.ID).Return(m, nil).Once()
		repo.On("UpdateMatchCAS", mock.Anything, mock.Anything, m.Version).Return(nil).Once()

		svc := newTestService(repo, bus)
		next, err := svc.Submit(context.Background(), m.ID, game.SystemActorID, game.Action{Type: game.ActionTimeout})

		require.NoError(t, err)
		assert.Equal(t, domain.MatchStatusDeclined, next.Status)
		assert.Equal(t, []event.Type{event.MatchDeclined}, bus.types())
	})

	t.Run("completion publishes both the round and the terminal event", func(t *testing.T) {
		repo := new(MockRepository)
		bus := &capturingBus{}

		m := activeMatch()
		m.Phase = domain.PhaseAwaitingJudgment
		m.CurrentTrickName = "kickflip"
		m.CurrentEvidenceRef = "clip://set"
		m.ResponseEvidenceRef = "clip://response"
		m.CurrentActorID = m.DefenderID
		m.Letters[testPlayerB] = "SKAT"

		repo.On("GetMatch", mock.Anything, m.ID).Return(m, nil).Once()
		repo.On("UpdateMatchCAS", mock.Anything, mock.Anything, m.Version).Return(nil).Once()

		svc := newTestService(repo, bus)
		next, err := svc.Submit(context.Background(), m.ID, testPlayerB, game.Action{Type: game.ActionJudge, Verdict: domain.VerdictMissed})

		require.NoError(t, err)
		assert.Equal(t, domain.MatchStatusCompleted, next.Status)
		assert.Equal(t, []event.Type{event.MatchRoundResolved, event.MatchCompleted}, bus.types())
	})
}

func TestServiceGetMatchCaching(t *testing.T) {
	t.Run("second read hits the cache", func(t *testing.T) {
		repo := new(MockRepository)
		m := activeMatch()
		repo.On("GetMatch", mock.Anything, m.ID).Return(m, nil).Once()

		svc := newTestService(repo, &capturingBus{})

		first, err := svc.GetMatch(context.Background(), m.ID)
		require.NoError(t, err)
		second, err := svc.GetMatch(context.Background(), m.ID)
		require.NoError(t, err)

		assert.Equal(t, first, second)
		repo.AssertNumberOfCalls(t, "GetMatch", 1)
	})

	t.Run("a committed action invalidates the cached read", func(t *testing.T) {
		repo := new(MockRepository)
		m := activeMatch()
		repo.On("GetMatch", mock.Anything, m.ID).Return(m, nil)
		repo.On("UpdateMatchCAS", mock.Anything, mock.Anything, mock.Anything).Return(nil).Once()

		svc := newTestService(repo, &capturingBus{})

		_, err := svc.GetMatch(context.Background(), m.ID)
		require.NoError(t, err)

		_, err = svc.Submit(context.Background(), m.ID, testPlayerA,
			game.Action{Type: game.ActionSetTrick, TrickName: "kickflip", EvidenceRef: "clip://set"})
		require.NoError(t, err)

		_, err = svc.GetMatch(context.Background(), m.ID)
		require.NoError(t, err)

		// Initial read, the mutator's read, and the post-invalidation read
		repo.AssertNumberOfCalls(t, "GetMatch", 3)
	})

	t.Run("not found passes through", func(t *testing.T) {
		repo := new(MockRepository)
		id := uuid.New()
		repo.On("GetMatch", mock.Anything, id).Return(nil, domain.ErrMatchNotFound).Once()

		svc := newTestService(repo, &capturingBus{})
		_, err := svc.GetMatch(context.Background(), id)
		assert.ErrorIs(t, err, domain.ErrMatchNotFound)
	})
}

func TestServiceGetMatchesForPlayer(t *testing.T) {
	repo := new(MockRepository)
	matches := []domain.Match{*activeMatch(), *activeMatch()}
	repo.On("GetMatchesForPlayer", mock.Anything, testPlayerA, DefaultListLimit).Return(matches, nil).Once()

	svc := newTestService(repo, &capturingBus{})
	got, err := svc.GetMatchesForPlayer(context.Background(), testPlayerA)

	require.NoError(t, err)
	assert.Len(t, got, 2)
	repo.AssertExpectations(t)
}

func TestServiceShutdown(t *testing.T) {
	svc := newTestService(new(MockRepository), &capturingBus{})
	assert.NoError(t, svc.Shutdown(context.Background()))
}

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
	"github.com/flatground/skateline/internal/game"
)

// MockRepository is a hand-written testify mock for the match repository.
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) CreateMatch(ctx context.Context, mt *domain.Match) error {
	args := m.Called(ctx, mt)
	return args.Error(0)
}

func (m *MockRepository) GetMatch(ctx context.Context, id uuid.UUID) (*domain.Match, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Match), args.Error(1)
}

func (m *MockRepository) UpdateMatchCAS(ctx context.Context, mt *domain.Match, expectedVersion int64) error {
	args := m.Called(ctx, mt, expectedVersion)
	return args.Error(0)
}

func (m *MockRepository) GetMatchesForPlayer(ctx context.Context, playerID uuid.UUID, limit int) ([]domain.Match, error) {
	args := m.Called(ctx, playerID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Match), args.Error(1)
}

func (m *MockRepository) ListExpiredActive(ctx context.Context, now time.Time, limit int) ([]domain.Match, error) {
	args := m.Called(ctx, now, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Match), args.Error(1)
}

func (m *MockRepository) ListDeadlineApproaching(ctx context.Context, now time.Time, within time.Duration, limit int) ([]domain.Match, error) {
	args := m.Called(ctx, now, within, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Match), args.Error(1)
}

func (m *MockRepository) ListStalledActive(ctx context.Context, createdBefore time.Time, limit int) ([]domain.Match, error) {
	args := m.Called(ctx, createdBefore, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Match), args.Error(1)
}

func (m *MockRepository) ListExpiredPending(ctx context.Context, now time.Time, limit int) ([]domain.Match, error) {
	args := m.Called(ctx, now, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Match), args.Error(1)
}

var (
	testPlayerA = uuid.MustParse("aaaaaaaa-aaaa-aaaa-aaaa-aaaaaaaaaaaa")
	testPlayerB = uuid.MustParse("bbbbbbbb-bbbb-bbbb-bbbb-bbbbbbbbbbbb")

	testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
)

func fixedNow() time.Time { return testNow }

func testValidator() *game.Validator {
	return game.NewValidator(game.JudgingSelfReport, 48*time.Hour, 7*24*time.Hour, 24*time.Hour)
}

func activeMatch() *domain.Match {
	m := domain.NewMatch(testPlayerA, testPlayerB, testNow.Add(-time.Hour), 72*time.Hour)
	m.Status = domain.MatchStatusActive
	m.Phase = domain.PhaseAwaitingSet
	m.Round = 1
	m.CurrentActorID = m.AttackerID
	m.DeadlineAt = testNow.Add(47 * time.Hour)
	return m
}

func TestMutatorApply(t *testing.T) {
	setAction := game.Action{Type: game.ActionSetTrick, TrickName: "kickflip", EvidenceRef: "clip://set"}

	t.Run("commits a valid action", func(t *testing.T) {
		repo := new(MockRepository)
		m := activeMatch()
		repo.On("GetMatch", mock.Anything, m.ID).Return(m, nil).Once()
		repo.On("UpdateMatchCAS", mock.Anything, mock.AnythingOfType("*domain.Match"), m.Version).Return(nil).Once()

		mu := NewMutator(repo, testValidator(), fixedNow)
		delta, err := mu.Apply(context.Background(), m.ID, testPlayerA, setAction)

		require.NoError(t, err)
		assert.Equal(t, domain.PhaseAwaitingResponse, delta.Next.Phase)
		repo.AssertExpectations(t)
	})

	t.Run("rejection never reaches storage", func(t *testing.T) {
		repo := new(MockRepository)
		m := activeMatch()
		repo.On("GetMatch", mock.Anything, m.ID).Return(m, nil).Once()

		mu := NewMutator(repo, testValidator(), fixedNow)
		_, err := mu.Apply(context.Background(), m.ID, testPlayerB, setAction)

		assert.ErrorIs(t, err, domain.ErrWrongActor)
		repo.AssertNotCalled(t, "UpdateMatchCAS", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("re-reads and retries once on a version conflict", func(t *testing.T) {
		repo := new(MockRepository)
		stale := activeMatch()
		fresh := stale.Clone()
		fresh.Version = stale.Version + 1

		repo.On("GetMatch", mock.Anything, stale.ID).Return(stale, nil).Once()
		repo.On("UpdateMatchCAS", mock.Anything, mock.Anything, stale.Version).Return(domain.ErrConcurrencyConflict).Once()
		repo.On("GetMatch", mock.Anything, stale.ID).Return(fresh, nil).Once()
		repo.On("UpdateMatchCAS", mock.Anything, mock.Anything, fresh.Version).Return(nil).Once()

		mu := NewMutator(repo, testValidator(), fixedNow)
		delta, err := mu.Apply(context.Background(), stale.ID, testPlayerA, setAction)

		require.NoError(t, err)
		assert.Equal(t, fresh.Version+1, delta.Next.Version)
		repo.AssertExpectations(t)
	})

	t.Run("gives up after the retry", func(t *testing.T) {
		repo := new(MockRepository)
		m := activeMatch()
		repo.On("GetMatch", mock.Anything, m.ID).Return(m, nil).Twice()
		repo.On("UpdateMatchCAS", mock.Anything, mock.Anything, m.Version).Return(domain.ErrConcurrencyConflict).Twice()

		mu := NewMutator(repo, testValidator(), fixedNow)
		_, err := mu.Apply(context.Background(), m.ID, testPlayerA, setAction)

		assert.ErrorIs(t, err, domain.ErrConcurrencyConflict)
		repo.AssertExpectations(t)
	})

	t.Run("propagates read failures", func(t *testing.T) {
		repo := new(MockRepository)
		id := uuid.New()
		repo.On("GetMatch", mock.Anything, id).Return(nil, domain.ErrMatchNotFound).Once()

		mu := NewMutator(repo, testValidator(), fixedNow)
		_, err := mu.Apply(context.Background(), id, testPlayerA, setAction)

		assert.ErrorIs(t, err, domain.ErrMatchNotFound)
	})
}

func TestMutatorRecomputesAgainstFreshState(t *testing.T) {
	// The retry validates against the re-read state: a match forfeited
	// between attempts rejects the action instead of committing it.
	repo := new(MockRepository)
	stale := activeMatch()
	forfeited := stale.Clone()
	forfeited.Status = domain.MatchStatusForfeited
	forfeited.Version = stale.Version + 1

	setAction := game.Action{Type: game.ActionSetTrick, TrickName: "kickflip", EvidenceRef: "clip://set"}

	repo.On("GetMatch", mock.Anything, stale.ID).Return(stale, nil).Once()
	repo.On("UpdateMatchCAS", mock.Anything, mock.Anything, stale.Version).Return(domain.ErrConcurrencyConflict).Once()
	repo.On("GetMatch", mock.Anything, stale.ID).Return(forfeited, nil).Once()

	mu := NewMutator(repo, testValidator(), fixedNow)
	_, err := mu.Apply(context.Background(), stale.ID, testPlayerA, setAction)

	assert.ErrorIs(t, err, domain.ErrMatchNotActive)
	repo.AssertExpectations(t)
}

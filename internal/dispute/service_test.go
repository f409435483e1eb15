package dispute

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

// MockDisputeRepository is a hand-written testify mock for the dispute repository.
type MockDisputeRepository struct {
	mock.Mock
}

func (m *MockDisputeRepository) CreateDisputeWithBudget(ctx context.Context, d *domain.Dispute, mt *domain.Match, expectedVersion int64) error {
	args := m.Called(ctx, d, mt, expectedVersion)
	return args.Error(0)
}

func (m *MockDisputeRepository) GetDispute(ctx context.Context, id uuid.UUID) (*domain.Dispute, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Dispute), args.Error(1)
}

func (m *MockDisputeRepository) SetVerdict(ctx context.Context, id uuid.UUID, verdict domain.DisputeVerdict, resolvedAt time.Time) error {
	args := m.Called(ctx, id, verdict, resolvedAt)
	return args.Error(0)
}

func (m *MockDisputeRepository) GetDisputesForMatch(ctx context.Context, matchID uuid.UUID) ([]domain.Dispute, error) {
	args := m.Called(ctx, matchID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Dispute), args.Error(1)
}

// MockMatchRepository covers the read side the dispute service needs.
type MockMatchRepository struct {
	mock.Mock
}

func (m *MockMatchRepository) CreateMatch(ctx context.Context, mt *domain.Match) error {
	args := m.Called(ctx, mt)
	return args.Error(0)
}

func (m *MockMatchRepository) GetMatch(ctx context.Context, id uuid.UUID) (*domain.Match, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Match), args.Error(1)
}

func (m *MockMatchRepository) UpdateMatchCAS(ctx context.Context, mt *domain.Match, expectedVersion int64) error {
	args := m.Called(ctx, mt, expectedVersion)
	return args.Error(0)
}

func (m *MockMatchRepository) GetMatchesForPlayer(ctx context.Context, playerID uuid.UUID, limit int) ([]domain.Match, error) {
	args := m.Called(ctx, playerID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Match), args.Error(1)
}

func (m *MockMatchRepository) ListExpiredActive(ctx context.Context, now time.Time, limit int) ([]domain.Match, error) {
	args := m.Called(ctx, now, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Match), args.Error(1)
}

func (m *MockMatchRepository) ListDeadlineApproaching(ctx context.Context, now time.Time, within time.Duration, limit int) ([]domain.Match, error) {
	args := m.Called(ctx, now, within, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Match), args.Error(1)
}

func (m *MockMatchRepository) ListStalledActive(ctx context.Context, createdBefore time.Time, limit int) ([]domain.Match, error) {
	args := m.Called(ctx, createdBefore, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Match), args.Error(1)
}

func (m *MockMatchRepository) ListExpiredPending(ctx context.Context, now time.Time, limit int) ([]domain.Match, error) {
	args := m.Called(ctx, now, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Match), args.Error(1)
}

// MockProfileRepository mocks the reputation store.
type MockProfileRepository struct {
	mock.Mock
}

func (m *MockProfileRepository) AddReputationPenalty(ctx context.Context, playerID uuid.UUID) error {
	args := m.Called(ctx, playerID)
	return args.Error(0)
}

func (m *MockProfileRepository) GetProfile(ctx context.Context, playerID uuid.UUID) (*domain.Profile, error) {
	args := m.Called(ctx, playerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Profile), args.Error(1)
}

// MockMatchService mocks the match service used for compensating transitions.
type MockMatchService struct {
	mock.Mock
}

func (m *MockMatchService) Challenge(ctx context.Context, challengerID, opponentID uuid.UUID) (*domain.Match, error) {
	args := m.Called(ctx, challengerID, opponentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Match), args.Error(1)
}

func (m *MockMatchService) Submit(ctx context.Context, matchID, actorID uuid.UUID, act game.Action) (*domain.Match, error) {
	args := m.Called(ctx, matchID, actorID, act)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Match), args.Error(1)
}

func (m *MockMatchService) GetMatch(ctx context.Context, matchID uuid.UUID) (*domain.Match, error) {
	args := m.Called(ctx, matchID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Match), args.Error(1)
}

func (m *MockMatchService) GetMatchesForPlayer(ctx context.Context, playerID uuid.UUID) ([]domain.Match, error) {
	args := m.Called(ctx, playerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Match), args.Error(1)
}

func (m *MockMatchService) Shutdown(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

type capturingBus struct {
	events []event.Event
}

func (b *capturingBus) Publish(ctx context.Context, ev event.Event) error {
	b.events = append(b.events, ev)
	return nil
}

func (b *capturingBus) Subscribe(eventType event.Type, handler event.Handler) {}

var (
	filer   = uuid.MustParse("aaaaaaaa-aaaa-aaaa-aaaa-aaaaaaaaaaaa")
	against = uuid.MustParse("bbbbbbbb-bbbb-bbbb-bbbb-bbbbbbbbbbbb")

	fixedTime = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
)

func fixedNow() time.Time { return fixedTime }

func testValidator() *game.Validator {
	return game.NewValidator(game.JudgingSelfReport, 48*time.Hour, 7*24*time.Hour, 24*time.Hour)
}

// disputableMatch returns an active match where the filer just took a letter
// on a judged miss set by the against-party.
func disputableMatch() *domain.Match {
	m := domain.NewMatch(against, filer, fixedTime.Add(-3*time.Hour), 72*time.Hour)
	m.Status = domain.MatchStatusActive
	m.Phase = domain.PhaseAwaitingSet
	m.Round = 2
	m.AttackerID = against
	m.DefenderID = filer
	m.CurrentActorID = against
	m.Letters[filer] = "S"
	m.DeadlineAt = fixedTime.Add(45 * time.Hour)
	m.Version = 5
	m.Moves = []domain.Move{{
		ID:             uuid.New(),
		Round:          1,
		SetterID:       against,
		ResponderID:    filer,
		TrickName:      "kickflip",
		Result:         domain.MoveResultMissed,
		LetterAssigned: "S",
		ResolvedAt:     fixedTime.Add(-time.Hour),
	}}
	return m
}

type fixture struct {
	repo     *MockDisputeRepository
	matches  *MockMatchRepository
	profiles *MockProfileRepository
	matchSvc *MockMatchService
	bus      *capturingBus
	svc      Service
}

func newFixture() *fixture {
	f := &fixture{
		repo:     new(MockDisputeRepository),
		matches:  new(MockMatchRepository),
		profiles: new(MockProfileRepository),
		matchSvc: new(MockMatchService),
		bus:      &capturingBus{},
	}
	f.svc = NewService(f.repo, f.matches, f.profiles, f.matchSvc, testValidator(), f.bus, fixedNow)
	return f
}

func TestFileDispute(t *testing.T) {
	t.Run("files against the judged move in one transaction", func(t *testing.T) {
		f := newFixture()
		m := disputableMatch()
		moveID := m.Moves[0].ID

		f.matches.On("GetMatch", mock.Anything, m.ID).Return(m, nil).Once()
		f.repo.On("CreateDisputeWithBudget", mock.Anything, mock.AnythingOfType("*domain.Dispute"),
			mock.AnythingOfType("*domain.Match"), m.Version).Return(nil).Once()

		d, err := f.svc.File(context.Background(), m.ID, filer, moveID)
		require.NoError(t, err)

		assert.Equal(t, filer, d.FilerID)
		assert.Equal(t, against, d.AgainstID)
		assert.Equal(t, moveID, d.MoveID)
		assert.Nil(t, d.Verdict)

		require.Len(t, f.bus.events, 1)
		assert.Equal(t, event.DisputeFiled, f.bus.events[0].Type)
		f.repo.AssertExpectations(t)
	})

	t.Run("budget write carries the consumed flag", func(t *testing.T) {
		f := newFixture()
		m := disputableMatch()

		f.matches.On("GetMatch", mock.Anything, m.ID).Return(m, nil).Once()
		f.repo.On("CreateDisputeWithBudget", mock.Anything, mock.Anything,
			mock.MatchedBy(func(next *domain.Match) bool { return next.DisputeUsed[filer] }),
			m.Version).Return(nil).Once()

		_, err := f.svc.File(context.Background(), m.ID, filer, m.Moves[0].ID)
		require.NoError(t, err)
		f.repo.AssertExpectations(t)
	})

	t.Run("spent budget rejects a second filing", func(t *testing.T) {
		f := newFixture()
		m := disputableMatch()
		m.DisputeUsed[filer] = true

		f.matches.On("GetMatch", mock.Anything, m.ID).Return(m, nil).Once()

		_, err := f.svc.File(context.Background(), m.ID, filer, m.Moves[0].ID)
		assert.ErrorIs(t, err, domain.ErrDisputeBudgetExhausted)
		f.repo.AssertNotCalled(t, "CreateDisputeWithBudget", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("retries once on a lost version race", func(t *testing.T) {
		f := newFixture()
		stale := disputableMatch()
		fresh := stale.Clone()
		fresh.Version = stale.Version + 1

		f.matches.On("GetMatch", mock.Anything, stale.ID).Return(stale, nil).Once()
		f.repo.On("CreateDisputeWithBudget", mock.Anything, mock.Anything, mock.Anything, stale.Version).
			Return(domain.ErrConcurrencyConflict).Once()
		f.matches.On("GetMatch", mock.Anything, stale.ID).Return(fresh, nil).Once()
		f.repo.On("CreateDisputeWithBudget", mock.Anything, mock.Anything, mock.Anything, fresh.Version).
			Return(nil).Once()

		_, err := f.svc.File(context.Background(), stale.ID, filer, stale.Moves[0].ID)
		require.NoError(t, err)
		f.repo.AssertExpectations(t)
	})
}

func TestResolveDispute(t *testing.T) {
	openDispute := func() *domain.Dispute {
		return &domain.Dispute{
			ID:        uuid.New(),
			MatchID:   uuid.New(),
			MoveID:    uuid.New(),
			FilerID:   filer,
			AgainstID: against,
			CreatedAt: fixedTime.Add(-time.Hour),
		}
	}

	t.Run("upheld debits the filer and leaves the match alone", func(t *testing.T) {
		f := newFixture()
		d := openDispute()

		f.repo.On("GetDispute", mock.Anything, d.ID).Return(d, nil).Once()
		f.repo.On("SetVerdict", mock.Anything, d.ID, domain.DisputeVerdictUpheld, fixedTime).Return(nil).Once()
		f.profiles.On("AddReputationPenalty", mock.Anything, filer).Return(nil).Once()

		resolved, err := f.svc.Resolve(context.Background(), d.ID, against, domain.DisputeVerdictUpheld)
		require.NoError(t, err)

		require.NotNil(t, resolved.Verdict)
		assert.Equal(t, domain.DisputeVerdictUpheld, *resolved.Verdict)
		f.matchSvc.AssertNotCalled(t, "Submit", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		f.profiles.AssertExpectations(t)
	})

	t.Run("overturned compensates the match and debits the judged side", func(t *testing.T) {
		f := newFixture()
		d := openDispute()

		f.repo.On("GetDispute", mock.Anything, d.ID).Return(d, nil).Once()
		f.repo.On("SetVerdict", mock.Anything, d.ID, domain.DisputeVerdictOverturned, fixedTime).Return(nil).Once()
		f.matchSvc.On("Submit", mock.Anything, d.MatchID, game.SystemActorID,
			game.Action{Type: game.ActionOverturnMove, MoveID: d.MoveID}).Return(&domain.Match{}, nil).Once()
		f.profiles.On("AddReputationPenalty", mock.Anything, against).Return(nil).Once()

		resolved, err := f.svc.Resolve(context.Background(), d.ID, against, domain.DisputeVerdictOverturned)
		require.NoError(t, err)

		assert.Equal(t, domain.DisputeVerdictOverturned, *resolved.Verdict)
		f.matchSvc.AssertExpectations(t)
		f.profiles.AssertExpectations(t)

		require.Len(t, f.bus.events, 1)
		assert.Equal(t, event.DisputeResolved, f.bus.events[0].Type)
	})

	t.Run("failed compensation does not fail the resolution", func(t *testing.T) {
		f := newFixture()
		d := openDispute()

		f.repo.On("GetDispute", mock.Anything, d.ID).Return(d, nil).Once()
		f.repo.On("SetVerdict", mock.Anything, d.ID, domain.DisputeVerdictOverturned, fixedTime).Return(nil).Once()
		f.matchSvc.On("Submit", mock.Anything, d.MatchID, game.SystemActorID, mock.Anything).
			Return(nil, domain.ErrConcurrencyConflict).Once()
		f.profiles.On("AddReputationPenalty", mock.Anything, against).Return(nil).Once()

		_, err := f.svc.Resolve(context.Background(), d.ID, against, domain.DisputeVerdictOverturned)
		assert.NoError(t, err)
	})

	t.Run("only the against party may resolve", func(t *testing.T) {
		f := newFixture()
		d := openDispute()
		f.repo.On("GetDispute", mock.Anything, d.ID).Return(d, nil).Once()

		_, err := f.svc.Resolve(context.Background(), d.ID, filer, domain.DisputeVerdictUpheld)
		assert.ErrorIs(t, err, domain.ErrDisputeWrongResolver)
		f.repo.AssertNotCalled(t, "SetVerdict", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("a resolved dispute stays resolved", func(t *testing.T) {
		f := newFixture()
		d := openDispute()
		verdict := domain.DisputeVerdictUpheld
		d.Verdict = &verdict

		f.repo.On("GetDispute", mock.Anything, d.ID).Return(d, nil).Once()

		_, err := f.svc.Resolve(context.Background(), d.ID, against, domain.DisputeVerdictOverturned)
		assert.ErrorIs(t, err, domain.ErrDisputeAlreadyResolved)
	})

	t.Run("verdict must be a known value", func(t *testing.T) {
		f := newFixture()
		_, err := f.svc.Resolve(context.Background(), uuid.New(), against, domain.DisputeVerdict("shrug"))
		assert.ErrorIs(t, err, domain.ErrInvalidVerdict)
	})

	t.Run("penalty write failure is logged, not returned", func(t *testing.T) {
		f := newFixture()
		d := openDispute()

		f.repo.On("GetDispute", mock.Anything, d.ID).Return(d, nil).Once()
		f.repo.On("SetVerdict", mock.Anything, d.ID, domain.DisputeVerdictUpheld, fixedTime).Return(nil).Once()
		f.profiles.On("AddReputationPenalty", mock.Anything, filer).Return(domain.ErrStorageUnavailable).Once()

		_, err := f.svc.Resolve(context.Background(), d.ID, against, domain.DisputeVerdictUpheld)
		assert.NoError(t, err)
	})
}

func TestGetDispute(t *testing.T) {
	f := newFixture()
	id := uuid.New()
	f.repo.On("GetDispute", mock.Anything, id).Return(nil, domain.ErrDisputeNotFound).Once()

	_, err := f.svc.GetDispute(context.Background(), id)
	assert.ErrorIs(t, err, domain.ErrDisputeNotFound)
}

func TestGetProfile(t *testing.T) {
	f := newFixture()
	p := &domain.Profile{PlayerID: filer, ReputationPenalties: 2}
	f.profiles.On("GetProfile", mock.Anything, filer).Return(p, nil).Once()

	got, err := f.svc.GetProfile(context.Background(), filer)
	require.NoError(t, err)
	assert.Equal(t, 2, got.ReputationPenalties)
}

package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/flatground/skateline/internal/domain"
	"github.com/flatground/skateline/internal/game"
)

// MockMatchService is a hand-written testify mock for the match service.
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

var (
	handlerPlayerA = uuid.MustParse("aaaaaaaa-aaaa-aaaa-aaaa-aaaaaaaaaaaa")
	handlerPlayerB = uuid.MustParse("bbbbbbbb-bbbb-bbbb-bbbb-bbbbbbbbbbbb")
)

func handlerTestMatch() *domain.Match {
	m := domain.NewMatch(handlerPlayerA, handlerPlayerB, time.Now(), 72*time.Hour)
	m.Status = domain.MatchStatusActive
	m.Phase = domain.PhaseAwaitingSet
	m.Round = 1
	return m
}

func postJSON(t *testing.T, handler http.HandlerFunc, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func TestHandleChallenge(t *testing.T) {
	t.Run("creates a match", func(t *testing.T) {
		svc := new(MockMatchService)
		m := handlerTestMatch()
		svc.On("Challenge", mock.Anything, handlerPlayerA, handlerPlayerB).Return(m, nil).Once()

		h := NewMatchHandler(svc)
		rec := postJSON(t, h.HandleChallenge, "/api/v1/match/challenge", ChallengeRequest{
			ChallengerID: handlerPlayerA.String(),
			OpponentID:   handlerPlayerB.String(),
		})

		assert.Equal(t, http.StatusCreated, rec.Code)

		var got domain.Match
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Equal(t, m.ID, got.ID)
		svc.AssertExpectations(t)
	})

	t.Run("rejects a malformed player id", func(t *testing.T) {
		h := NewMatchHandler(new(MockMatchService))
		rec := postJSON(t, h.HandleChallenge, "/api/v1/match/challenge", ChallengeRequest{
			ChallengerID: "not-a-uuid",
			OpponentID:   handlerPlayerB.String(),
		})

		assert.Equal(t, http.StatusBadRequest, rec.Code)

		var resp ValidationErrorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Contains(t, resp.Fields, "challengerid")
	})

	t.Run("rejects a broken body", func(t *testing.T) {
		h := NewMatchHandler(new(MockMatchService))
		req := httptest.NewRequest(http.MethodPost, "/api/v1/match/challenge", bytes.NewReader([]byte("{")))
		rec := httptest.NewRecorder()
		h.HandleChallenge(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestHandleAction(t *testing.T) {
	matchID := uuid.New()

	t.Run("submits a set trick", func(t *testing.T) {
		svc := new(MockMatchService)
		m := handlerTestMatch()
		expected := game.Action{Type: game.ActionSetTrick, TrickName: "kickflip", EvidenceRef: "clip://set"}
		svc.On("Submit", mock.Anything, matchID, handlerPlayerA, expected).Return(m, nil).Once()

		h := NewMatchHandler(svc)
		rec := postJSON(t, h.HandleAction, "/api/v1/match/action", ActionRequest{
			MatchID:     matchID.String(),
			ActorID:     handlerPlayerA.String(),
			Action:      "set_trick",
			TrickName:   "kickflip",
			EvidenceRef: "clip://set",
		})

		assert.Equal(t, http.StatusOK, rec.Code)
		svc.AssertExpectations(t)
	})

	t.Run("synthetic action types never pass the wire", func(t *testing.T) {
		svc := new(MockMatchService)
		h := NewMatchHandler(svc)
		rec := postJSON(t, h.HandleAction, "/api/v1/match/action", ActionRequest{
			MatchID: matchID.String(),
			ActorID: handlerPlayerA.String(),
			Action:  "timeout",
		})

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		svc.AssertNotCalled(t, "Submit", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("out of turn maps to 403 with a reason code", func(t *testing.T) {
		svc := new(MockMatchService)
		svc.On("Submit", mock.Anything, matchID, handlerPlayerB, mock.Anything).
			Return(nil, domain.ErrWrongActor).Once()

		h := NewMatchHandler(svc)
		rec := postJSON(t, h.HandleAction, "/api/v1/match/action", ActionRequest{
			MatchID:     matchID.String(),
			ActorID:     handlerPlayerB.String(),
			Action:      "set_trick",
			TrickName:   "kickflip",
			EvidenceRef: "clip://set",
		})

		assert.Equal(t, http.StatusForbidden, rec.Code)

		var resp ErrorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, domain.ReasonWrongActor, resp.Reason)
	})

	t.Run("version conflict maps to 409", func(t *testing.T) {
		svc := new(MockMatchService)
		svc.On("Submit", mock.Anything, matchID, handlerPlayerA, mock.Anything).
			Return(nil, domain.ErrConcurrencyConflict).Once()

		h := NewMatchHandler(svc)
		rec := postJSON(t, h.HandleAction, "/api/v1/match/action", ActionRequest{
			MatchID:     matchID.String(),
			ActorID:     handlerPlayerA.String(),
			Action:      "set_trick",
			TrickName:   "kickflip",
			EvidenceRef: "clip://set",
		})

		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("judge verdict is whitelisted", func(t *testing.T) {
		h := NewMatchHandler(new(MockMatchService))
		rec := postJSON(t, h.HandleAction, "/api/v1/match/action", ActionRequest{
			MatchID: matchID.String(),
			ActorID: handlerPlayerA.String(),
			Action:  "judge",
			Verdict: "sketchy",
		})

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestHandleGetMatch(t *testing.T) {
	newRouter := func(svc *MockMatchService) *chi.Mux {
		h := NewMatchHandler(svc)
		r := chi.NewRouter()
		r.Get("/match/{id}", h.HandleGetMatch)
		return r
	}

	t.Run("returns the match", func(t *testing.T) {
		svc := new(MockMatchService)
		m := handlerTestMatch()
		svc.On("GetMatch", mock.Anything, m.ID).Return(m, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/match/"+m.ID.String(), nil)
		rec := httptest.NewRecorder()
		newRouter(svc).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("unknown match is 404", func(t *testing.T) {
		svc := new(MockMatchService)
		id := uuid.New()
		svc.On("GetMatch", mock.Anything, id).Return(nil, domain.ErrMatchNotFound).Once()

		req := httptest.NewRequest(http.MethodGet, "/match/"+id.String(), nil)
		rec := httptest.NewRecorder()
		newRouter(svc).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("malformed id is 400", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/match/nope", nil)
		rec := httptest.NewRecorder()
		newRouter(new(MockMatchService)).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestHandleGetMyMatches(t *testing.T) {
	t.Run("lists by player id", func(t *testing.T) {
		svc := new(MockMatchService)
		svc.On("GetMatchesForPlayer", mock.Anything, handlerPlayerA).
			Return([]domain.Match{*handlerTestMatch()}, nil).Once()

		h := NewMatchHandler(svc)
		req := httptest.NewRequest(http.MethodGet, "/match/mine?player_id="+handlerPlayerA.String(), nil)
		rec := httptest.NewRecorder()
		h.HandleGetMyMatches(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)

		var got []domain.Match
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Len(t, got, 1)
	})

	t.Run("player_id is required", func(t *testing.T) {
		h := NewMatchHandler(new(MockMatchService))
		req := httptest.NewRequest(http.MethodGet, "/match/mine", nil)
		rec := httptest.NewRecorder()
		h.HandleGetMyMatches(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

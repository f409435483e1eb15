package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/flatground/skateline/internal/domain"
	"github.com/flatground/skateline/internal/game"
	"github.com/flatground/skateline/internal/match"
)

// MatchHandler serves the match lifecycle endpoints
type MatchHandler struct {
	service match.Service
}

// NewMatchHandler creates a new MatchHandler
func NewMatchHandler(service match.Service) *MatchHandler {
	return &MatchHandler{service: service}
}

// ChallengeRequest opens a new challenge
type ChallengeRequest struct {
	ChallengerID string `json:"challenger_id" validate:"required,uuid"`
	OpponentID   string `json:"opponent_id" validate:"required,uuid"`
}

// HandleChallenge creates a pending match
// @Summary Challenge a player
// @Description Creates a pending match; the challenged player must accept before play begins
// @Tags match
// @Accept json
// @Produce json
// @Success 201 {object} domain.Match
// @Failure 400 {object} ErrorResponse
// @Router /api/v1/match/challenge [post]
func (h *MatchHandler) HandleChallenge(w http.ResponseWriter, r *http.Request) {
	var req ChallengeRequest
	if err := DecodeAndValidateRequest(r, w, &req, "Challenge"); err != nil {
		return
	}

	challengerID, _ := uuid.Parse(req.ChallengerID)
	opponentID, _ := uuid.Parse(req.OpponentID)

	m, err := h.service.Challenge(r.Context(), challengerID, opponentID)
	if err != nil {
		respondServiceError(w, r, "create challenge", err)
		return
	}

	respondJSON(w, http.StatusCreated, m)
}

// ActionRequest submits one action to a match
type ActionRequest struct {
	MatchID     string `json:"match_id" validate:"required,uuid"`
	ActorID     string `json:"actor_id" validate:"required,uuid"`
	Action      string `json:"action" validate:"required,actiontype"`
	TrickName   string `json:"trick_name,omitempty" validate:"max=128"`
	EvidenceRef string `json:"evidence_ref,omitempty" validate:"max=512"`
	Verdict     string `json:"verdict,omitempty" validate:"omitempty,oneof=landed missed"`
	MoveID      string `json:"move_id,omitempty" validate:"omitempty,uuid"`
}

// HandleAction validates and applies one match action
// @Summary Submit a match action
// @Description Applies one action (accept, decline, set_trick, attempt_response, judge, setter_missed, forfeit) under the optimistic version check
// @Tags match
// @Accept json
// @Produce json
// @Success 200 {object} domain.Match
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /api/v1/match/action [post]
func (h *MatchHandler) HandleAction(w http.ResponseWriter, r *http.Request) {
	var req ActionRequest
	if err := DecodeAndValidateRequest(r, w, &req, "Submit action"); err != nil {
		return
	}

	matchID, _ := uuid.Parse(req.MatchID)
	actorID, _ := uuid.Parse(req.ActorID)

	actionType, err := game.ParseActionType(req.Action)
	if err != nil {
		respondServiceError(w, r, "parse action", err)
		return
	}

	act := game.Action{
		Type:        actionType,
		TrickName:   req.TrickName,
		EvidenceRef: req.EvidenceRef,
		Verdict:     domain.Verdict(req.Verdict),
	}
	if req.MoveID != "" {
		act.MoveID, _ = uuid.Parse(req.MoveID)
	}

	m, err := h.service.Submit(r.Context(), matchID, actorID, act)
	if err != nil {
		respondServiceError(w, r, "submit action", err)
		return
	}

	respondJSON(w, http.StatusOK, m)
}

// HandleGetMatch returns one match by id
// @Summary Get a match
// @Tags match
// @Produce json
// @Success 200 {object} domain.Match
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/match/{id} [get]
func (h *MatchHandler) HandleGetMatch(w http.ResponseWriter, r *http.Request) {
	matchID, ok := parseUUIDParam(w, chi.URLParam(r, "id"), ErrMsgInvalidMatchID)
	if !ok {
		return
	}

	m, err := h.service.GetMatch(r.Context(), matchID)
	if err != nil {
		respondServiceError(w, r, "get match", err)
		return
	}

	respondJSON(w, http.StatusOK, m)
}

// HandleGetMyMatches returns the player's matches, newest first
// @Summary List a player's matches
// @Tags match
// @Produce json
// @Success 200 {array} domain.Match
// @Failure 400 {object} ErrorResponse
// @Router /api/v1/match/mine [get]
func (h *MatchHandler) HandleGetMyMatches(w http.ResponseWriter, r *http.Request) {
	playerIDStr, ok := GetQueryParam(r, w, "player_id")
	if !ok {
		return
	}
	playerID, ok := parseUUIDParam(w, playerIDStr, ErrMsgInvalidPlayerID)
	if !ok {
		return
	}

	matches, err := h.service.GetMatchesForPlayer(r.Context(), playerID)
	if err != nil {
		respondServiceError(w, r, "list matches", err)
		return
	}

	respondJSON(w, http.StatusOK, matches)
}

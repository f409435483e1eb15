package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/flatground/skateline/internal/dispute"
	"github.com/flatground/skateline/internal/domain"
)

// DisputeHandler serves the dispute and reputation endpoints
type DisputeHandler struct {
	service dispute.Service
}

// NewDisputeHandler creates a new DisputeHandler
func NewDisputeHandler(service dispute.Service) *DisputeHandler {
	return &DisputeHandler{service: service}
}

// FileDisputeRequest contests the most recent judged move
type FileDisputeRequest struct {
	MatchID string `json:"match_id" validate:"required,uuid"`
	FilerID string `json:"filer_id" validate:"required,uuid"`
	MoveID  string `json:"move_id" validate:"required,uuid"`
}

// HandleFileDispute files a dispute against a judged move
// @Summary File a dispute
// @Description Contests the most recent judged move. Each player may dispute at most once per match.
// @Tags dispute
// @Accept json
// @Produce json
// @Success 201 {object} domain.Dispute
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /api/v1/dispute [post]
func (h *DisputeHandler) HandleFileDispute(w http.ResponseWriter, r *http.Request) {
	var req FileDisputeRequest
	if err := DecodeAndValidateRequest(r, w, &req, "File dispute"); err != nil {
		return
	}

	matchID, _ := uuid.Parse(req.MatchID)
	filerID, _ := uuid.Parse(req.FilerID)
	moveID, _ := uuid.Parse(req.MoveID)

	d, err := h.service.File(r.Context(), matchID, filerID, moveID)
	if err != nil {
		respondServiceError(w, r, "file dispute", err)
		return
	}

	respondJSON(w, http.StatusCreated, d)
}

// ResolveDisputeRequest records the terminal verdict
type ResolveDisputeRequest struct {
	DisputeID  string `json:"dispute_id" validate:"required,uuid"`
	ResolverID string `json:"resolver_id" validate:"required,uuid"`
	Verdict    string `json:"verdict" validate:"required,oneof=upheld overturned"`
}

// HandleResolveDispute resolves a dispute
// @Summary Resolve a dispute
// @Description Records the verdict. Only the player whose judgment is contested may resolve. Overturned verdicts reverse the disputed letter.
// @Tags dispute
// @Accept json
// @Produce json
// @Success 200 {object} domain.Dispute
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Router /api/v1/dispute/resolve [post]
func (h *DisputeHandler) HandleResolveDispute(w http.ResponseWriter, r *http.Request) {
	var req ResolveDisputeRequest
	if err := DecodeAndValidateRequest(r, w, &req, "Resolve dispute"); err != nil {
		return
	}

	disputeID, _ := uuid.Parse(req.DisputeID)
	resolverID, _ := uuid.Parse(req.ResolverID)

	d, err := h.service.Resolve(r.Context(), disputeID, resolverID, domain.DisputeVerdict(req.Verdict))
	if err != nil {
		respondServiceError(w, r, "resolve dispute", err)
		return
	}

	respondJSON(w, http.StatusOK, d)
}

// HandleGetDispute returns one dispute by id
// @Summary Get a dispute
// @Tags dispute
// @Produce json
// @Success 200 {object} domain.Dispute
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/dispute/{id} [get]
func (h *DisputeHandler) HandleGetDispute(w http.ResponseWriter, r *http.Request) {
	disputeID, ok := parseUUIDParam(w, chi.URLParam(r, "id"), ErrMsgInvalidDisputeID)
	if !ok {
		return
	}

	d, err := h.service.GetDispute(r.Context(), disputeID)
	if err != nil {
		respondServiceError(w, r, "get dispute", err)
		return
	}

	respondJSON(w, http.StatusOK, d)
}

// HandleGetProfile returns a player's reputation profile
// @Summary Get a reputation profile
// @Description Returns the player's permanent reputation penalty count for external trust scoring
// @Tags profile
// @Produce json
// @Success 200 {object} domain.Profile
// @Failure 400 {object} ErrorResponse
// @Router /api/v1/profile/{id} [get]
func (h *DisputeHandler) HandleGetProfile(w http.ResponseWriter, r *http.Request) {
	playerID, ok := parseUUIDParam(w, chi.URLParam(r, "id"), ErrMsgInvalidPlayerID)
	if !ok {
		return
	}

	p, err := h.service.GetProfile(r.Context(), playerID)
	if err != nil {
		respondServiceError(w, r, "get profile", err)
		return
	}

	respondJSON(w, http.StatusOK, p)
}

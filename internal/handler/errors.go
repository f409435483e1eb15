package handler

import (
	"errors"
	"net/http"

	"github.com/flatground/skateline/internal/domain"
)

// Generic HTTP error messages for client responses.
// These messages intentionally do not expose internal error details.
// Both handlers and tests should reference these constants to maintain consistency.
const (
	ErrMsgInvalidRequest        = "Invalid request body"
	ErrMsgInvalidRequestSummary = "Invalid request"

	// Query parameter error messages
	ErrMsgMissingQueryParam = "Missing %s query parameter"

	ErrMsgInvalidMatchID   = "Invalid match ID"
	ErrMsgInvalidDisputeID = "Invalid dispute ID"
	ErrMsgInvalidPlayerID  = "Invalid player ID"
	ErrMsgInvalidMoveID    = "Invalid move ID"
)

// User-facing error messages for service errors
const (
	// Generic messages
	ErrMsgGenericServerError  = "Something went wrong"
	ErrMsgUnknownError        = "Unknown error"
	ErrMsgUnavailableError    = "Server is temporarily unavailable. Please try again later."
	ErrMsgConflictError       = "The match changed while your action was in flight. Re-fetch and try again."
	ErrMsgInvalidInputError   = "Invalid request. Please check your inputs."
	ErrMsgUnknownActionError  = "Unknown action type"

	// Match messages
	ErrMsgMatchNotFoundError   = "Match not found"
	ErrMsgWrongPhaseError      = "That action is not valid in the current phase"
	ErrMsgWrongActorError      = "It is not your turn for that action"
	ErrMsgNotParticipantError  = "You are not a participant in this match"
	ErrMsgMatchNotActiveError  = "Match is not active"
	ErrMsgEvidenceMissingError = "An evidence reference is required"

	// Dispute messages
	ErrMsgDisputeNotFoundError   = "Dispute not found"
	ErrMsgBudgetExhaustedError   = "You have already used your dispute for this match"
	ErrMsgWindowClosedError      = "That move can no longer be disputed"
	ErrMsgAlreadyResolvedError   = "Dispute is already resolved"
	ErrMsgWrongResolverError     = "Only the disputed player may resolve this dispute"
	ErrMsgInvalidVerdictError    = "Verdict must be upheld or overturned"
)

// mapServiceErrorToUserMessage maps domain errors to user-friendly HTTP
// responses plus the typed rejection reason code, when one applies.
func mapServiceErrorToUserMessage(err error) (int, string, string) {
	if err == nil {
		return http.StatusInternalServerError, ErrMsgUnknownError, ""
	}

	reason := domain.RejectionReason(err)

	switch {
	// Out-of-turn and outsider actions
	case errors.Is(err, domain.ErrWrongActor):
		return http.StatusForbidden, ErrMsgWrongActorError, reason
	case errors.Is(err, domain.ErrNotParticipant):
		return http.StatusForbidden, ErrMsgNotParticipantError, reason
	case errors.Is(err, domain.ErrDisputeWrongResolver):
		return http.StatusForbidden, ErrMsgWrongResolverError, reason

	// Invalid-state rejections
	case errors.Is(err, domain.ErrWrongPhase):
		return http.StatusBadRequest, ErrMsgWrongPhaseError, reason
	case errors.Is(err, domain.ErrMatchNotActive):
		return http.StatusBadRequest, ErrMsgMatchNotActiveError, reason
	case errors.Is(err, domain.ErrEvidenceMissing):
		return http.StatusBadRequest, ErrMsgEvidenceMissingError, reason
	case errors.Is(err, domain.ErrUnknownAction):
		return http.StatusBadRequest, ErrMsgUnknownActionError, reason
	case errors.Is(err, domain.ErrDisputeBudgetExhausted):
		return http.StatusBadRequest, ErrMsgBudgetExhaustedError, reason
	case errors.Is(err, domain.ErrDisputeWindowClosed):
		return http.StatusBadRequest, ErrMsgWindowClosedError, reason
	case errors.Is(err, domain.ErrDisputeAlreadyResolved):
		return http.StatusBadRequest, ErrMsgAlreadyResolvedError, reason
	case errors.Is(err, domain.ErrInvalidVerdict):
		return http.StatusBadRequest, ErrMsgInvalidVerdictError, reason
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest, ErrMsgInvalidInputError, reason

	// Concurrency
	case errors.Is(err, domain.ErrConcurrencyConflict):
		return http.StatusConflict, ErrMsgConflictError, reason

	// Not found
	case errors.Is(err, domain.ErrMatchNotFound):
		return http.StatusNotFound, ErrMsgMatchNotFoundError, reason
	case errors.Is(err, domain.ErrDisputeNotFound):
		return http.StatusNotFound, ErrMsgDisputeNotFoundError, reason

	// Infrastructure
	case errors.Is(err, domain.ErrStorageUnavailable):
		return http.StatusServiceUnavailable, ErrMsgUnavailableError, ""
	}

	return http.StatusInternalServerError, ErrMsgGenericServerError, ""
}

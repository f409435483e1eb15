package domain

import "errors"

// Error message string constants - single source of truth for error messages
// Use these in assert.Contains() checks when testing error messages
const (
	// Action rejections (validator, no I/O behind these)
	ErrMsgWrongPhase             = "wrong phase for action"
	ErrMsgWrongActor             = "actor may not act now"
	ErrMsgMatchNotActive         = "match is not active"
	ErrMsgDisputeBudgetExhausted = "dispute budget exhausted"
	ErrMsgEvidenceMissing        = "evidence reference missing"
	ErrMsgUnknownAction          = "unknown action type"
	ErrMsgNotParticipant         = "player is not a match participant"
	ErrMsgDeadlineNotElapsed     = "deadline has not elapsed"

	// Dispute errors
	ErrMsgDisputeNotFound        = "dispute not found"
	ErrMsgDisputeAlreadyResolved = "dispute already resolved"
	ErrMsgDisputeWindowClosed    = "dispute window closed"
	ErrMsgDisputeWrongResolver   = "only the against-party may resolve"
	ErrMsgInvalidVerdict         = "invalid verdict"

	// Infrastructure errors
	ErrMsgMatchNotFound       = "match not found"
	ErrMsgConcurrencyConflict = "concurrent modification detected"
	ErrMsgStorageUnavailable  = "storage unavailable"

	// Input errors
	ErrMsgInvalidInput = "invalid input"
)

// Common domain errors
// These errors should be used consistently across all layers of the application.
// Wrap these errors with fmt.Errorf("%w: %s", domain.ErrXxx, details) for additional context.
var (
	// Action rejections - not retryable, the client must change the request
	ErrWrongPhase             = errors.New(ErrMsgWrongPhase)
	ErrWrongActor             = errors.New(ErrMsgWrongActor)
	ErrMatchNotActive         = errors.New(ErrMsgMatchNotActive)
	ErrDisputeBudgetExhausted = errors.New(ErrMsgDisputeBudgetExhausted)
	ErrEvidenceMissing        = errors.New(ErrMsgEvidenceMissing)
	ErrUnknownAction          = errors.New(ErrMsgUnknownAction)
	ErrNotParticipant         = errors.New(ErrMsgNotParticipant)
	ErrDeadlineNotElapsed     = errors.New(ErrMsgDeadlineNotElapsed)

	// Dispute errors
	ErrDisputeNotFound        = errors.New(ErrMsgDisputeNotFound)
	ErrDisputeAlreadyResolved = errors.New(ErrMsgDisputeAlreadyResolved)
	ErrDisputeWindowClosed    = errors.New(ErrMsgDisputeWindowClosed)
	ErrDisputeWrongResolver   = errors.New(ErrMsgDisputeWrongResolver)
	ErrInvalidVerdict         = errors.New(ErrMsgInvalidVerdict)

	// Infrastructure errors
	ErrMatchNotFound = errors.New(ErrMsgMatchNotFound)
	// ErrConcurrencyConflict is retryable exactly once by the caller
	ErrConcurrencyConflict = errors.New(ErrMsgConcurrencyConflict)
	// ErrStorageUnavailable aborts scans/actions cleanly, no partial writes
	ErrStorageUnavailable = errors.New(ErrMsgStorageUnavailable)

	// Validation errors
	ErrInvalidInput = errors.New(ErrMsgInvalidInput)
)

// Wire rejection reason codes surfaced in API responses. Rejections are
// typed, never free text.
const (
	ReasonWrongPhase             = "wrong_phase"
	ReasonWrongActor             = "wrong_actor"
	ReasonMatchNotActive         = "match_not_active"
	ReasonDisputeBudgetExhausted = "dispute_budget_exhausted"
	ReasonEvidenceMissing        = "evidence_missing"
	ReasonUnknownAction          = "unknown_action"
	ReasonConflict               = "conflict"
	ReasonNotFound               = "not_found"
)

// RejectionReason maps a domain error to its wire reason code.
// Returns "" for errors that are not typed rejections.
func RejectionReason(err error) string {
	switch {
	case errors.Is(err, ErrWrongPhase):
		return ReasonWrongPhase
	case errors.Is(err, ErrWrongActor), errors.Is(err, ErrNotParticipant):
		return ReasonWrongActor
	case errors.Is(err, ErrMatchNotActive):
		return ReasonMatchNotActive
	case errors.Is(err, ErrDisputeBudgetExhausted):
		return ReasonDisputeBudgetExhausted
	case errors.Is(err, ErrEvidenceMissing):
		return ReasonEvidenceMissing
	case errors.Is(err, ErrUnknownAction):
		return ReasonUnknownAction
	case errors.Is(err, ErrConcurrencyConflict):
		return ReasonConflict
	case errors.Is(err, ErrMatchNotFound), errors.Is(err, ErrDisputeNotFound):
		return ReasonNotFound
	}
	return ""
}

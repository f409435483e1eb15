package reconciler

import "time"

// Scan names used as the metric label
const (
	ScanExpiredTurns      = "expired_turns"
	ScanDeadlineWarnings  = "deadline_warnings"
	ScanStalledMatches    = "stalled_matches"
	ScanExpiredChallenges = "expired_challenges"
)

// Log messages
const (
	LogMsgReconcileSkipped = "Reconcile skipped match"
	LogMsgReconcileFailed  = "Reconcile failed for match"
)

// Defaults
const (
	DefaultScanLimit        = 100
	DefaultWarningLead      = time.Hour
	DefaultStalledAfter     = 7 * 24 * time.Hour
	DefaultWarningCacheSize = 4096
)

package config

import "time"

// Defaults for unset environment variables
const (
	DefaultPort = 8080

	DefaultTurnWindow      = 48 * time.Hour
	DefaultChallengeWindow = 72 * time.Hour
	DefaultStalledAfter    = 7 * 24 * time.Hour
	DefaultDisputeWindow   = 24 * time.Hour

	DefaultReconcilerInterval = time.Minute
	DefaultWarningLead        = 6 * time.Hour
	DefaultWarningCooldown    = 12 * time.Hour
	DefaultScanLimit          = 100

	DefaultWorkerCount = 2
	DefaultQueueSize   = 32
)

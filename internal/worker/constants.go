package worker

// ============================================================================
// Log Messages - Worker Pool
// ============================================================================

// LogMsgWorkerJobFailed is logged when a worker fails to process a job
const LogMsgWorkerJobFailed = "Worker job failed"

// ============================================================================
// Defaults
// ============================================================================

// Default pool sizing used when config leaves the values unset
const (
	DefaultWorkerCount = 2
	DefaultQueueSize   = 32
)

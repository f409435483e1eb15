package bootstrap

// Log messages for startup and shutdown
const (
	LogMsgShuttingDownServer         = "Shutting down server"
	LogMsgServerForcedShutdown       = "Server forced shutdown"
	LogMsgServerStopped              = "Server stopped"
	LogMsgServiceShutdownFailed      = " service shutdown failed"
	LogMsgShuttingDownEventPublisher = "Shutting down event publisher"
	LogMsgLoggingInitialized         = "Logging initialized"
	LogMsgStartingService            = "Starting skateline"
	LogMsgConfigurationLoaded        = "Configuration loaded"
)

// Service names used in shutdown logging
const (
	ServiceNameMatch   = "match"
	ServiceNameDispute = "dispute"
)

// Log file retention
const (
	MaxLogFiles = 10
	KeepLogs    = 9
)

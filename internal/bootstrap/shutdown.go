package bootstrap

import (
	"context"
	"log/slog"

	"github.com/flatground/skateline/internal/dispute"
	"github.com/flatground/skateline/internal/event"
	"github.com/flatground/skateline/internal/match"
	"github.com/flatground/skateline/internal/scheduler"
	"github.com/flatground/skateline/internal/server"
	"github.com/flatground/skateline/internal/worker"
)

// ShutdownComponents holds all components that need graceful shutdown.
type ShutdownComponents struct {
	Server             *server.Server
	Scheduler          *scheduler.Scheduler
	WorkerPool         *worker.Pool
	MatchService       match.Service
	DisputeService     dispute.Service
	ResilientPublisher *event.ResilientPublisher
}

// GracefulShutdown performs graceful shutdown of all application components.
// It shuts down in the correct order:
// 1. HTTP server (stop accepting new requests)
// 2. Scheduler and worker pool (drain queued reconciliation jobs)
// 3. Application services (complete in-flight operations)
// 4. Event publisher (flush pending events to ensure consistency)
//
// Errors during shutdown are logged but do not stop the shutdown sequence.
func GracefulShutdown(ctx context.Context, components ShutdownComponents) {
	slog.Info(LogMsgShuttingDownServer)

	if err := components.Server.Stop(ctx); err != nil {
		slog.Error(LogMsgServerForcedShutdown, "error", err)
	}

	// Stop scheduling before draining so no new jobs arrive mid-drain
	if components.Scheduler != nil {
		components.Scheduler.Stop()
	}
	if components.WorkerPool != nil {
		components.WorkerPool.Stop()
	}

	shutdownService(ctx, ServiceNameMatch, components.MatchService)
	shutdownService(ctx, ServiceNameDispute, components.DisputeService)

	// Shutdown resilient publisher last to flush pending events
	slog.Info(LogMsgShuttingDownEventPublisher)
	if err := components.ResilientPublisher.Shutdown(ctx); err != nil {
		slog.Error("Resilient publisher shutdown failed", "error", err)
	}

	slog.Info(LogMsgServerStopped)
}

type shutdownableService interface {
	Shutdown(context.Context) error
}

func shutdownService(ctx context.Context, name string, service shutdownableService) {
	if err := service.Shutdown(ctx); err != nil {
		slog.Error(name+LogMsgServiceShutdownFailed, "error", err)
	}
}

package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/flatground/skateline/internal/bootstrap"
	"github.com/flatground/skateline/internal/config"
	"github.com/flatground/skateline/internal/database"
	"github.com/flatground/skateline/internal/dispute"
	"github.com/flatground/skateline/internal/event"
	"github.com/flatground/skateline/internal/game"
	"github.com/flatground/skateline/internal/match"
	"github.com/flatground/skateline/internal/notify"
	"github.com/flatground/skateline/internal/reconciler"
	"github.com/flatground/skateline/internal/scheduler"
	"github.com/flatground/skateline/internal/server"
	"github.com/flatground/skateline/internal/worker"
)

const shutdownTimeout = 30 * time.Second

// @title Skateline API
// @version 1.0
// @description Asynchronous game-of-skate match service. Players trade trick
// @description challenges over hours or days; the service enforces turn order,
// @description judging, letters, disputes, and deadline forfeits.
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-API-Key
func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Configuration failed", "error", err)
		os.Exit(1)
	}

	logFile, err := bootstrap.SetupLogger(cfg)
	if err != nil {
		slog.Error("Logger setup failed", "error", err)
		os.Exit(1)
	}
	defer logFile.Close()

	dbPool, err := database.NewPool(cfg.GetDBConnString(), database.DefaultMaxConnections, 5*time.Minute, time.Hour)
	if err != nil {
		slog.Error("Database connection failed", "error", err)
		os.Exit(1)
	}
	defer dbPool.Close()

	repos := bootstrap.InitializeRepositories(dbPool)

	memoryBus := event.NewMemoryBus()
	eventBus := event.NewResilientPublisher(memoryBus, event.ResilientConfig{
		MaxRetries:     3,
		RetryDelay:     time.Second,
		DeadLetterPath: "dead_letter_events.jsonl",
	})

	validator := game.NewValidator(cfg.JudgingMode, cfg.TurnWindow, cfg.StalledAfter, cfg.DisputeWindow)

	matchService := match.NewService(repos.Match, validator, eventBus, match.Options{
		ChallengeWindow: cfg.ChallengeWindow,
	})
	disputeService := dispute.NewService(repos.Dispute, repos.Match, repos.Profile, matchService, validator, eventBus, time.Now)

	// Notifications ride the in-process bus; the log notifier is the default
	// port until a push transport is configured.
	notify.NewSubscriber(notify.NewLogNotifier()).Register(eventBus)

	workerPool := worker.NewPool(cfg.WorkerCount, cfg.QueueSize)
	workerPool.Start()

	rec := reconciler.New(repos.Match, matchService, eventBus,
		reconciler.NewLRUWarningCache(reconciler.DefaultWarningCacheSize, cfg.WarningCooldown),
		reconciler.Options{
			WarningLead:  cfg.WarningLead,
			StalledAfter: cfg.StalledAfter,
			ScanLimit:    cfg.ScanLimit,
		})

	sched := scheduler.New(workerPool)
	sched.Schedule(cfg.ReconcilerInterval, reconciler.NewJob(rec))

	srv := server.NewServer(server.Options{
		Port:   strconv.Itoa(cfg.Port),
		APIKey: cfg.APIKey,
	}, dbPool, matchService, disputeService)

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- srv.Start()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		if err != nil {
			slog.Error("Server failed", "error", err)
		}
	case sig := <-stop:
		slog.Info("Received shutdown signal", "signal", sig)
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	bootstrap.GracefulShutdown(ctx, bootstrap.ShutdownComponents{
		Server:             srv,
		Scheduler:          sched,
		WorkerPool:         workerPool,
		MatchService:       matchService,
		DisputeService:     disputeService,
		ResilientPublisher: eventBus,
	})
}

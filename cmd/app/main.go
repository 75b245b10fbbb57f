package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/tillgreens/microfarm/internal/bootstrap"
	"github.com/tillgreens/microfarm/internal/config"
	"github.com/tillgreens/microfarm/internal/database"
	"github.com/tillgreens/microfarm/internal/scheduler"
	"github.com/tillgreens/microfarm/internal/server"
	"github.com/tillgreens/microfarm/internal/worker"
)

const (
	dbMaxConnIdleTime = 30 * time.Minute
	dbMaxConnLifetime = time.Hour

	workerPoolSize      = 4
	workerPoolQueueSize = 64

	shutdownTimeout = 15 * time.Second
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logFile, err := bootstrap.SetupLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to set up logging: %v", err)
	}
	defer logFile.Close()

	dbPool, err := database.NewPool(cfg.GetDBConnString(), database.DefaultMaxConnections, dbMaxConnIdleTime, dbMaxConnLifetime)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer dbPool.Close()

	eventBus := bootstrap.InitializeEventSystem()
	repos := bootstrap.InitializeRepositories(dbPool)

	services, err := bootstrap.InitializeServices(cfg, repos, eventBus)
	if err != nil {
		slog.Error("Failed to initialize services", "error", err)
		os.Exit(1)
	}

	// Recover transition schedules dropped during downtime before the
	// worker arms its timers.
	ctx := context.Background()
	slog.Info("Recovering transition schedules for unharvested batches")
	if err := services.Schedule.Recover(ctx); err != nil {
		slog.Error("Failed to recover transition schedules", "error", err)
		os.Exit(1)
	}

	transitionWorker := worker.NewTransitionWorker(services.Schedule, repos.Transition)
	bootstrap.RegisterEventHandlers(bootstrap.EventHandlerDependencies{
		EventBus:         eventBus,
		TransitionWorker: transitionWorker,
	})
	transitionWorker.Start()

	// Periodic sweep backstops the one-shot timers
	pool := worker.NewPool(workerPoolSize, workerPoolQueueSize)
	pool.Start()

	sched := scheduler.New(pool)
	sched.Schedule(cfg.TransitionPollInterval, &worker.TransitionSweepJob{Service: services.Schedule})
	slog.Info("Transition sweep scheduled", "interval", cfg.TransitionPollInterval)

	// Daily stock health sweep on a cron spec
	cronRunner := cron.New()
	if _, err := cronRunner.AddFunc(cfg.DepletionSweepSpec, func() {
		pool.Enqueue(&worker.DepletionSweepJob{Service: services.Depletion})
	}); err != nil {
		slog.Error("Invalid depletion sweep spec", "error", err, "spec", cfg.DepletionSweepSpec)
		os.Exit(1)
	}
	cronRunner.Start()
	slog.Info("Depletion sweep scheduled", "spec", cfg.DepletionSweepSpec)

	srv := server.NewServer(cfg.Port, cfg.APIKey, cfg.TrustedProxies, dbPool, services)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		slog.Error("Server failed", "error", err)
	case sig := <-stop:
		slog.Info("Shutdown signal received", "signal", sig)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	cronRunner.Stop()
	bootstrap.GracefulShutdown(shutdownCtx, bootstrap.ShutdownComponents{
		Server:           srv,
		TransitionWorker: transitionWorker,
		Scheduler:        sched,
		WorkerPool:       pool,
	})
}

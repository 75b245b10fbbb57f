package bootstrap

import (
	"context"
	"log/slog"

	"github.com/tillgreens/microfarm/internal/scheduler"
	"github.com/tillgreens/microfarm/internal/server"
	"github.com/tillgreens/microfarm/internal/worker"
)

// ShutdownComponents holds all components that need graceful shutdown.
type ShutdownComponents struct {
	Server           *server.Server
	TransitionWorker *worker.TransitionWorker
	Scheduler        *scheduler.Scheduler
	WorkerPool       *worker.Pool
}

// GracefulShutdown performs graceful shutdown of all application components.
// It shuts down in dependency order:
// 1. HTTP server (stop accepting new requests)
// 2. Transition worker (cancel pending timers)
// 3. Scheduler, then the worker pool it feeds
//
// Errors during shutdown are logged but do not stop the shutdown sequence.
func GracefulShutdown(ctx context.Context, components ShutdownComponents) {
	slog.Info(LogMsgShuttingDownServer)

	// Shutdown server first (stop accepting new requests)
	if err := components.Server.Stop(ctx); err != nil {
		slog.Error(LogMsgServerForcedShutdown, "error", err)
	}

	// Cancel pending timers before stopping the pool they enqueue into
	if components.TransitionWorker != nil {
		if err := components.TransitionWorker.Shutdown(ctx); err != nil {
			slog.Error(LogMsgWorkerShutdownFailed, "error", err)
		}
	}

	if components.Scheduler != nil {
		components.Scheduler.Stop()
	}

	if components.WorkerPool != nil {
		components.WorkerPool.Stop()
	}

	slog.Info(LogMsgServerStopped)
}

package bootstrap

import (
	"log/slog"

	"github.com/tillgreens/microfarm/internal/event"
	"github.com/tillgreens/microfarm/internal/worker"
)

// EventHandlerDependencies holds the dependencies needed for event handler registration.
type EventHandlerDependencies struct {
	EventBus         event.Bus
	TransitionWorker *worker.TransitionWorker
}

// RegisterEventHandlers sets up all event subscribers:
// - Transition worker (rearms timers when batches are planted or advance)
func RegisterEventHandlers(deps EventHandlerDependencies) {
	deps.TransitionWorker.Subscribe(deps.EventBus)
	slog.Info(LogMsgTransitionWorkerSubscribed)
}

// InitializeEventSystem creates the in-process event bus
func InitializeEventSystem() event.Bus {
	bus := event.NewMemoryBus()
	slog.Info(LogMsgEventSystemInitialized)
	return bus
}

package worker

import (
	"context"
	"time"

	"github.com/tillgreens/microfarm/internal/domain"
	"github.com/tillgreens/microfarm/internal/event"
	"github.com/tillgreens/microfarm/internal/logger"
	"github.com/tillgreens/microfarm/internal/repository"
	"github.com/tillgreens/microfarm/internal/schedule"
)

// TransitionWorker arms one-shot timers for scheduled stage transitions.
// Each timer fires a due-transition sweep at the transition's due time;
// the periodic sweep in the scheduler is the safety net for anything a
// timer misses across restarts.
type TransitionWorker struct {
	service     schedule.Service
	transitions repository.Transition
	BaseWorker
}

// NewTransitionWorker creates a new TransitionWorker
func NewTransitionWorker(service schedule.Service, transitions repository.Transition) *TransitionWorker {
	w := &TransitionWorker{
		service:     service,
		transitions: transitions,
	}
	w.init()
	return w
}

// Start arms timers for every active transition on startup
func (w *TransitionWorker) Start() {
	ctx := context.Background()
	log := logger.FromContext(ctx)

	active, err := w.transitions.ListActive(ctx)
	if err != nil {
		log.Error(LogMsgFailedToLoadTransitionsOnStartup, "error", err)
		return
	}
	for _, t := range active {
		w.arm(t)
	}
}

// Subscribe rearms timers whenever a batch is planted or advances, since
// both can produce fresh transitions.
func (w *TransitionWorker) Subscribe(bus event.Bus) {
	bus.Subscribe(event.BatchPlanted, w.handleBatchEvent)
	bus.Subscribe(event.BatchStageAdvanced, w.handleBatchEvent)
}

func (w *TransitionWorker) handleBatchEvent(ctx context.Context, e event.Event) error {
	payload, ok := e.Payload.(domain.BatchStageAdvancedPayloadV1)
	if !ok {
		return nil
	}

	active, err := w.transitions.ListActiveByBatch(ctx, payload.BatchID)
	if err != nil {
		return err
	}
	for _, t := range active {
		w.arm(t)
	}
	return nil
}

// arm schedules a sweep at the transition's due time. Past-due
// transitions sweep immediately.
func (w *TransitionWorker) arm(t *domain.ScheduledTransition) {
	log := logger.FromContext(context.Background())

	duration := time.Until(t.DueAt)
	log.Info(LogMsgSchedulingTransitionExecution,
		"transitionID", t.ID, "batchID", t.BatchID, "duration", duration)

	if duration <= 0 {
		w.sweep()
		return
	}

	w.stopTimer(t.ID)

	id := t.ID
	timer := time.AfterFunc(duration, func() {
		select {
		case <-w.shutdown:
			return
		default:
		}

		w.sweep()
		w.removeTimer(id)
	})
	w.registerTimer(id, timer)
}

func (w *TransitionWorker) sweep() {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()

		ctx := context.Background()
		log := logger.FromContext(ctx)
		log.Info(LogMsgExecutingDueTransitions)

		if _, err := w.service.ExecuteDue(ctx, time.Now()); err != nil {
			log.Error(LogMsgFailedToExecuteTransitions, "error", err)
		}
	}()
}

// Shutdown gracefully shuts down the transition worker
func (w *TransitionWorker) Shutdown(ctx context.Context) error {
	return w.shutdownInternal(ctx, "transition worker")
}

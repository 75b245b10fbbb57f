package worker

import (
	"context"
	"time"

	"github.com/tillgreens/microfarm/internal/depletion"
	"github.com/tillgreens/microfarm/internal/schedule"
)

// TransitionSweepJob runs the due-transition sweep. Enqueued on a fixed
// interval as the catch-all behind the one-shot timers.
type TransitionSweepJob struct {
	Service schedule.Service
}

// Process executes every transition due right now
func (j *TransitionSweepJob) Process(ctx context.Context) error {
	_, err := j.Service.ExecuteDue(ctx, time.Now())
	return err
}

// DepletionSweepJob runs the stock health sweep
type DepletionSweepJob struct {
	Service depletion.Service
}

// Process classifies every lot and raises alerts
func (j *DepletionSweepJob) Process(ctx context.Context) error {
	_, err := j.Service.Sweep(ctx)
	return err
}

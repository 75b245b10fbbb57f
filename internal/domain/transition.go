package domain

import (
	"time"

	"github.com/google/uuid"
)

// TransitionTarget is what a scheduled task does when it fires: advance
// the batch toward a stage, or suspend watering ahead of harvest.
type TransitionTarget string

const (
	TargetStageAdvance    TransitionTarget = "stage_advance"
	TargetSuspendWatering TransitionTarget = "suspend_watering"
)

// ScheduledTransition is a one-shot timer entry driving a batch's next
// lifecycle step. It is deactivated when executed or superseded, never
// deleted.
type ScheduledTransition struct {
	ID        uuid.UUID        `json:"id"`
	BatchID   uuid.UUID        `json:"batch_id"`
	Target    TransitionTarget `json:"target"`
	Stage     Stage            `json:"stage,omitempty"`
	DueAt     time.Time        `json:"due_at"`
	Active    bool             `json:"active"`
	LastRunAt *time.Time       `json:"last_run_at,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
}

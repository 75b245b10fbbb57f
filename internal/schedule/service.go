package schedule

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tillgreens/microfarm/internal/domain"
	"github.com/tillgreens/microfarm/internal/lifecycle"
	"github.com/tillgreens/microfarm/internal/logger"
	"github.com/tillgreens/microfarm/internal/metrics"
	"github.com/tillgreens/microfarm/internal/repository"
)

// Planned is one computed transition before persistence
type Planned struct {
	Target domain.TransitionTarget `json:"target"`
	Stage  domain.Stage            `json:"stage,omitempty"`
	DueAt  time.Time               `json:"due_at"`
}

// Plan is the full computed schedule for a batch, including warnings
// for entries that were dropped rather than clamped.
type Plan struct {
	Transitions []Planned `json:"transitions"`
	Warnings    []string  `json:"warnings,omitempty"`
}

// Service defines the interface for transition scheduling
type Service interface {
	// Compute derives the absolute due times a protocol implies for a
	// batch planted at plantedAt. Pure; persistence is ScheduleForBatch.
	Compute(p *domain.GrowingProtocol, plantedAt time.Time) Plan

	// ScheduleForBatch replaces the batch's active transitions with a
	// freshly computed schedule. Only future due times produce tasks.
	ScheduleForBatch(ctx context.Context, batchID uuid.UUID) ([]*domain.ScheduledTransition, error)

	// ExecuteDue runs every transition due at or before asOf
	ExecuteDue(ctx context.Context, asOf time.Time) (executed int, err error)

	// Recover schedules transitions for unharvested batches that have
	// none, run once at startup after downtime.
	Recover(ctx context.Context) error
}

type service struct {
	transitions repository.Transition
	batches     repository.Batch
	protocols   repository.Protocol
	lifecycle   lifecycle.Service
	now         func() time.Time
}

// NewService creates a new transition scheduler
func NewService(
	transitions repository.Transition,
	batches repository.Batch,
	protocols repository.Protocol,
	lc lifecycle.Service,
) Service {
	return &service{
		transitions: transitions,
		batches:     batches,
		protocols:   protocols,
		lifecycle:   lc,
		now:         time.Now,
	}
}

func (s *service) Compute(p *domain.GrowingProtocol, plantedAt time.Time) Plan {
	var plan Plan

	germinationEnd := plantedAt.Add(days(p.GerminationDays))

	var harvestBase time.Time
	if p.SkipsBlackout() {
		plan.Transitions = append(plan.Transitions, Planned{
			Target: domain.TargetStageAdvance,
			Stage:  domain.StageLight,
			DueAt:  germinationEnd,
		})
		harvestBase = germinationEnd
	} else {
		blackoutEnd := germinationEnd.Add(days(p.BlackoutDays))
		plan.Transitions = append(plan.Transitions,
			Planned{
				Target: domain.TargetStageAdvance,
				Stage:  domain.StageBlackout,
				DueAt:  germinationEnd,
			},
			Planned{
				Target: domain.TargetStageAdvance,
				Stage:  domain.StageLight,
				DueAt:  blackoutEnd,
			},
		)
		harvestBase = blackoutEnd
	}

	harvestDue := harvestBase.Add(days(p.LightDays))
	plan.Transitions = append(plan.Transitions, Planned{
		Target: domain.TargetStageAdvance,
		Stage:  domain.StageHarvested,
		DueAt:  harvestDue,
	})

	if p.SuspendWateringHours > 0 {
		suspendAt := harvestDue.Add(-time.Duration(p.SuspendWateringHours * float64(time.Hour)))
		if suspendAt.After(plantedAt) {
			plan.Transitions = append(plan.Transitions, Planned{
				Target: domain.TargetSuspendWatering,
				DueAt:  suspendAt,
			})
		} else {
			plan.Warnings = append(plan.Warnings, fmt.Sprintf(
				"suspend-watering lead of %.0fh lands at or before planting, dropped",
				p.SuspendWateringHours))
		}
	}
	return plan
}

func days(d float64) time.Duration {
	return time.Duration(d * 24 * float64(time.Hour))
}

func (s *service) ScheduleForBatch(ctx context.Context, batchID uuid.UUID) ([]*domain.ScheduledTransition, error) {
	log := logger.FromContext(ctx)

	batch, err := s.batches.GetBatch(ctx, batchID)
	if err != nil {
		return nil, err
	}
	protocol, err := s.protocols.GetProtocol(ctx, batch.ProtocolID)
	if err != nil {
		return nil, err
	}

	if err := s.transitions.DeactivateForBatch(ctx, batchID); err != nil {
		return nil, fmt.Errorf("failed to supersede transitions: %w", err)
	}

	plan := s.Compute(protocol, batch.PlantedAt())
	for _, w := range plan.Warnings {
		log.Warn("Schedule warning", "batch_id", batchID, "warning", w)
	}

	now := s.now()
	var created []*domain.ScheduledTransition
	for _, planned := range plan.Transitions {
		if !planned.DueAt.After(now) {
			continue
		}
		t := &domain.ScheduledTransition{
			ID:        uuid.New(),
			BatchID:   batchID,
			Target:    planned.Target,
			Stage:     planned.Stage,
			DueAt:     planned.DueAt,
			Active:    true,
			CreatedAt: now,
		}
		if err := s.transitions.CreateTransition(ctx, t); err != nil {
			return nil, fmt.Errorf("failed to create transition: %w", err)
		}
		metrics.TransitionsScheduled.WithLabelValues(string(planned.Stage)).Inc()
		created = append(created, t)
	}

	log.Info("Batch scheduled", "batch_id", batchID, "transitions", len(created))
	return created, nil
}

func (s *service) ExecuteDue(ctx context.Context, asOf time.Time) (int, error) {
	log := logger.FromContext(ctx)

	due, err := s.transitions.ListDue(ctx, asOf)
	if err != nil {
		return 0, fmt.Errorf("failed to list due transitions: %w", err)
	}

	executed := 0
	for _, t := range due {
		if err := s.execute(ctx, t); err != nil {
			log.Error("Transition failed", "transition_id", t.ID, "batch_id", t.BatchID, "error", err)
			metrics.TransitionsExecuted.WithLabelValues(string(t.Stage), metrics.OutcomeFailed).Inc()
			continue
		}
		executed++
	}
	return executed, nil
}

// execute runs one due transition. Stage advancement moves the batch at
// most one stage: a batch behind by several stages gets a fresh task for
// the immediate next stage instead of a jump, and targets already passed
// deactivate as no-ops.
func (s *service) execute(ctx context.Context, t *domain.ScheduledTransition) error {
	log := logger.FromContext(ctx)
	now := s.now()

	if t.Target == domain.TargetSuspendWatering {
		if err := s.lifecycle.SuspendWatering(ctx, t.BatchID); err != nil {
			return err
		}
		metrics.TransitionsExecuted.WithLabelValues("", metrics.OutcomeAdvanced).Inc()
		return s.transitions.Deactivate(ctx, t.ID, &now)
	}

	batch, err := s.lifecycle.Get(ctx, t.BatchID)
	if err != nil {
		return err
	}
	protocol, err := s.protocols.GetProtocol(ctx, batch.ProtocolID)
	if err != nil {
		return err
	}

	current := batch.Times.Infer()
	currentIdx := current.Index()
	targetIdx := t.Stage.Index()
	if targetIdx < 0 {
		return fmt.Errorf("%w: %q", domain.ErrUnknownStage, t.Stage)
	}

	next, _ := current.Next(protocol.SkipsBlackout())

	switch {
	case currentIdx >= targetIdx:
		// already there or past it
		log.Info("Transition already satisfied", "transition_id", t.ID, "stage", t.Stage, "current", current)
		metrics.TransitionsExecuted.WithLabelValues(string(t.Stage), metrics.OutcomeSkipped).Inc()
		return s.transitions.Deactivate(ctx, t.ID, &now)

	case next == t.Stage:
		if _, _, err := s.lifecycle.Advance(ctx, t.BatchID); err != nil {
			return err
		}
		metrics.TransitionsExecuted.WithLabelValues(string(t.Stage), metrics.OutcomeAdvanced).Inc()
		return s.transitions.Deactivate(ctx, t.ID, &now)

	default:
		// behind by more than one stage: step via the immediate next
		// stage, leaving the original target armed for a later pass
		log.Warn("Batch behind schedule, stepping one stage",
			"batch_id", t.BatchID, "current", current, "target", t.Stage)

		active, err := s.transitions.ListActiveByBatch(ctx, t.BatchID)
		if err != nil {
			return err
		}
		for _, a := range active {
			if a.Target == domain.TargetStageAdvance && a.Stage == next {
				return nil
			}
		}

		corrective := &domain.ScheduledTransition{
			ID:        uuid.New(),
			BatchID:   t.BatchID,
			Target:    domain.TargetStageAdvance,
			Stage:     next,
			DueAt:     t.DueAt,
			Active:    true,
			CreatedAt: now,
		}
		if err := s.transitions.CreateTransition(ctx, corrective); err != nil {
			return fmt.Errorf("failed to create corrective transition: %w", err)
		}
		metrics.TransitionsExecuted.WithLabelValues(string(t.Stage), metrics.OutcomeCorrected).Inc()
		return nil
	}
}

func (s *service) Recover(ctx context.Context) error {
	log := logger.FromContext(ctx)

	batches, err := s.batches.ListUnharvested(ctx)
	if err != nil {
		return fmt.Errorf("failed to list unharvested batches: %w", err)
	}

	recovered := 0
	for _, batch := range batches {
		active, err := s.transitions.ListActiveByBatch(ctx, batch.ID)
		if err != nil {
			return err
		}
		if len(active) > 0 {
			continue
		}
		if _, err := s.ScheduleForBatch(ctx, batch.ID); err != nil {
			log.Error("Failed to recover schedule", "batch_id", batch.ID, "error", err)
			continue
		}
		recovered++
	}

	log.Info("Schedule recovery completed", "batches", len(batches), "recovered", recovered)
	return nil
}

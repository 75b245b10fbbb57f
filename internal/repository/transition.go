package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/tillgreens/microfarm/internal/domain"
)

// Transition handles scheduled transition persistence
type Transition interface {
	// GetTransition retrieves a transition by id
	GetTransition(ctx context.Context, id uuid.UUID) (*domain.ScheduledTransition, error)

	// ListDue returns active transitions whose due time is at or before asOf
	ListDue(ctx context.Context, asOf time.Time) ([]*domain.ScheduledTransition, error)

	// ListActive returns all active transitions, soonest first
	ListActive(ctx context.Context) ([]*domain.ScheduledTransition, error)

	// ListActiveByBatch returns a batch's active transitions, soonest first
	ListActiveByBatch(ctx context.Context, batchID uuid.UUID) ([]*domain.ScheduledTransition, error)

	// CreateTransition persists a new one-shot transition
	CreateTransition(ctx context.Context, t *domain.ScheduledTransition) error

	// Deactivate consumes a transition, recording when it ran.
	// ranAt may be nil for superseded tasks that never executed.
	Deactivate(ctx context.Context, id uuid.UUID, ranAt *time.Time) error

	// DeactivateForBatch consumes all of a batch's active transitions,
	// used when a reschedule supersedes the existing plan.
	DeactivateForBatch(ctx context.Context, batchID uuid.UUID) error
}

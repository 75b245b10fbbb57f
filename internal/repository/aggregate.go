package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/tillgreens/microfarm/internal/domain"
)

// Aggregate handles batch aggregate persistence
type Aggregate interface {
	// GetAggregate retrieves an aggregate by id
	GetAggregate(ctx context.Context, id uuid.UUID) (*domain.BatchAggregate, error)

	// FindDraftByKey finds the draft aggregate for a grouping key.
	// Returns domain.ErrAggregateNotFound when none exists.
	FindDraftByKey(ctx context.Context, protocolID uuid.UUID, plantDate, harvestDate time.Time) (*domain.BatchAggregate, error)

	// CreateAggregate persists a new aggregate. The storage layer
	// enforces at most one draft aggregate per grouping key.
	CreateAggregate(ctx context.Context, agg *domain.BatchAggregate) error

	// UpdateAggregate persists totals, status and history changes
	UpdateAggregate(ctx context.Context, agg *domain.BatchAggregate) error
}

package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/tillgreens/microfarm/internal/domain"
)

// Requirement handles requirement record persistence
type Requirement interface {
	// GetRequirement retrieves a record by id
	GetRequirement(ctx context.Context, id uuid.UUID) (*domain.RequirementRecord, error)

	// ListByOrder returns all records created for an order
	ListByOrder(ctx context.Context, orderID string) ([]*domain.RequirementRecord, error)

	// ListByAggregate returns all records linked to an aggregate
	ListByAggregate(ctx context.Context, aggregateID uuid.UUID) ([]*domain.RequirementRecord, error)

	// FindDraftSibling finds another draft record sharing the given
	// record's grouping key (same protocol, plant date, harvest date),
	// excluding the record itself. Returns domain.ErrRequirementNotFound
	// when none exists.
	FindDraftSibling(ctx context.Context, rec *domain.RequirementRecord) (*domain.RequirementRecord, error)

	// CreateRequirement persists a new record
	CreateRequirement(ctx context.Context, rec *domain.RequirementRecord) error

	// UpdateRequirement persists status, note and aggregate link changes
	UpdateRequirement(ctx context.Context, rec *domain.RequirementRecord) error
}

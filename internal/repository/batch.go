package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/tillgreens/microfarm/internal/domain"
)

// Batch handles growth batch persistence
type Batch interface {
	// GetBatch retrieves a batch by id
	GetBatch(ctx context.Context, id uuid.UUID) (*domain.GrowthBatch, error)

	// ListUnharvested returns all batches that have not reached the
	// terminal stage, used for startup timer recovery.
	ListUnharvested(ctx context.Context) ([]*domain.GrowthBatch, error)

	// CreateBatch persists a newly planted batch
	CreateBatch(ctx context.Context, b *domain.GrowthBatch) error

	// UpdateBatch persists stage timestamps, the cached current stage and
	// the watering suspension flag.
	UpdateBatch(ctx context.Context, b *domain.GrowthBatch) error
}

package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tillgreens/microfarm/internal/domain"
)

// BatchRepository provides in-memory growth batch storage
type BatchRepository struct {
	mu      sync.RWMutex
	batches map[uuid.UUID]*domain.GrowthBatch
}

// NewBatchRepository creates a new in-memory batch repository
func NewBatchRepository() *BatchRepository {
	return &BatchRepository{batches: make(map[uuid.UUID]*domain.GrowthBatch)}
}

func cloneBatch(b *domain.GrowthBatch) *domain.GrowthBatch {
	clone := *b
	clone.TrayIDs = append([]string(nil), b.TrayIDs...)
	return &clone
}

// GetBatch retrieves a batch by id
func (r *BatchRepository) GetBatch(_ context.Context, id uuid.UUID) (*domain.GrowthBatch, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.batches[id]
	if !ok {
		return nil, domain.ErrBatchNotFound
	}
	return cloneBatch(b), nil
}

// ListUnharvested returns all batches that have not reached harvest
func (r *BatchRepository) ListUnharvested(_ context.Context) ([]*domain.GrowthBatch, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*domain.GrowthBatch
	for _, b := range r.batches {
		if b.Times.HarvestedAt == nil {
			out = append(out, cloneBatch(b))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

// CreateBatch persists a newly planted batch
func (r *BatchRepository) CreateBatch(_ context.Context, b *domain.GrowthBatch) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	if b.CurrentStage == "" {
		b.CurrentStage = b.Times.Infer()
	}
	now := time.Now()
	if b.CreatedAt.IsZero() {
		b.CreatedAt = now
	}
	b.UpdatedAt = now
	r.batches[b.ID] = cloneBatch(b)
	return nil
}

// UpdateBatch persists stage timestamps and flags
func (r *BatchRepository) UpdateBatch(_ context.Context, b *domain.GrowthBatch) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.batches[b.ID]; !ok {
		return domain.ErrBatchNotFound
	}
	b.UpdatedAt = time.Now()
	r.batches[b.ID] = cloneBatch(b)
	return nil
}

package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tillgreens/microfarm/internal/domain"
)

// AggregateRepository provides in-memory batch aggregate storage
type AggregateRepository struct {
	mu         sync.RWMutex
	aggregates map[uuid.UUID]*domain.BatchAggregate
}

// NewAggregateRepository creates a new in-memory aggregate repository
func NewAggregateRepository() *AggregateRepository {
	return &AggregateRepository{aggregates: make(map[uuid.UUID]*domain.BatchAggregate)}
}

func cloneAggregate(agg *domain.BatchAggregate) *domain.BatchAggregate {
	clone := *agg
	clone.History = append([]domain.AggregationEntry(nil), agg.History...)
	return &clone
}

// GetAggregate retrieves an aggregate by id
func (r *AggregateRepository) GetAggregate(_ context.Context, id uuid.UUID) (*domain.BatchAggregate, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	agg, ok := r.aggregates[id]
	if !ok {
		return nil, domain.ErrAggregateNotFound
	}
	return cloneAggregate(agg), nil
}

// FindDraftByKey finds the draft aggregate for a grouping key
func (r *AggregateRepository) FindDraftByKey(_ context.Context, protocolID uuid.UUID, plantDate, harvestDate time.Time) (*domain.BatchAggregate, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	key := domain.GroupKey(protocolID, plantDate, harvestDate)
	for _, agg := range r.aggregates {
		if agg.Status == domain.AggregateDraft && agg.GroupKey() == key {
			return cloneAggregate(agg), nil
		}
	}
	return nil, domain.ErrAggregateNotFound
}

// CreateAggregate persists a new aggregate, enforcing the one-draft-per-key rule
func (r *AggregateRepository) CreateAggregate(_ context.Context, agg *domain.BatchAggregate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if agg.ID == uuid.Nil {
		agg.ID = uuid.New()
	}
	if agg.Status == "" {
		agg.Status = domain.AggregateDraft
	}
	if agg.Status == domain.AggregateDraft {
		for _, existing := range r.aggregates {
			if existing.Status == domain.AggregateDraft && existing.GroupKey() == agg.GroupKey() {
				return fmt.Errorf("draft aggregate already exists for key %s", agg.GroupKey())
			}
		}
	}
	now := time.Now()
	if agg.CreatedAt.IsZero() {
		agg.CreatedAt = now
	}
	agg.UpdatedAt = now
	r.aggregates[agg.ID] = cloneAggregate(agg)
	return nil
}

// UpdateAggregate persists totals, status and history changes
func (r *AggregateRepository) UpdateAggregate(_ context.Context, agg *domain.BatchAggregate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.aggregates[agg.ID]; !ok {
		return domain.ErrAggregateNotFound
	}
	agg.UpdatedAt = time.Now()
	r.aggregates[agg.ID] = cloneAggregate(agg)
	return nil
}

package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tillgreens/microfarm/internal/domain"
)

// RequirementRepository provides in-memory requirement record storage
type RequirementRepository struct {
	mu      sync.RWMutex
	records map[uuid.UUID]*domain.RequirementRecord
}

// NewRequirementRepository creates a new in-memory requirement repository
func NewRequirementRepository() *RequirementRepository {
	return &RequirementRepository{records: make(map[uuid.UUID]*domain.RequirementRecord)}
}

// GetRequirement retrieves a record by id
func (r *RequirementRepository) GetRequirement(_ context.Context, id uuid.UUID) (*domain.RequirementRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.records[id]
	if !ok {
		return nil, domain.ErrRequirementNotFound
	}
	clone := *rec
	return &clone, nil
}

// ListByOrder returns all records created for an order, oldest first
func (r *RequirementRepository) ListByOrder(_ context.Context, orderID string) ([]*domain.RequirementRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*domain.RequirementRecord
	for _, rec := range r.records {
		if rec.OrderID == orderID {
			clone := *rec
			out = append(out, &clone)
		}
	}
	sortByCreation(out)
	return out, nil
}

// ListByAggregate returns all records linked to an aggregate, oldest first
func (r *RequirementRepository) ListByAggregate(_ context.Context, aggregateID uuid.UUID) ([]*domain.RequirementRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*domain.RequirementRecord
	for _, rec := range r.records {
		if rec.AggregateID != nil && *rec.AggregateID == aggregateID {
			clone := *rec
			out = append(out, &clone)
		}
	}
	sortByCreation(out)
	return out, nil
}

// FindDraftSibling finds another draft record sharing the record's grouping key
func (r *RequirementRepository) FindDraftSibling(_ context.Context, rec *domain.RequirementRecord) (*domain.RequirementRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var candidates []*domain.RequirementRecord
	for _, other := range r.records {
		if other.ID == rec.ID || other.Status != domain.RequirementDraft {
			continue
		}
		if other.GroupKey() == rec.GroupKey() {
			clone := *other
			candidates = append(candidates, &clone)
		}
	}
	if len(candidates) == 0 {
		return nil, domain.ErrRequirementNotFound
	}
	sortByCreation(candidates)
	return candidates[0], nil
}

// CreateRequirement persists a new record
func (r *RequirementRepository) CreateRequirement(_ context.Context, rec *domain.RequirementRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	if rec.Status == "" {
		rec.Status = domain.RequirementDraft
	}
	now := time.Now()
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now
	}
	rec.UpdatedAt = now
	clone := *rec
	r.records[rec.ID] = &clone
	return nil
}

// UpdateRequirement persists status, note and aggregate link changes
func (r *RequirementRepository) UpdateRequirement(_ context.Context, rec *domain.RequirementRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.records[rec.ID]; !ok {
		return domain.ErrRequirementNotFound
	}
	rec.UpdatedAt = time.Now()
	clone := *rec
	r.records[rec.ID] = &clone
	return nil
}

func sortByCreation(records []*domain.RequirementRecord) {
	sort.Slice(records, func(i, j int) bool {
		return records[i].CreatedAt.Before(records[j].CreatedAt)
	})
}

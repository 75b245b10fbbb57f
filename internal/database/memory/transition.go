package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tillgreens/microfarm/internal/domain"
)

// TransitionRepository provides in-memory scheduled transition storage
type TransitionRepository struct {
	mu          sync.RWMutex
	transitions map[uuid.UUID]*domain.ScheduledTransition
}

// NewTransitionRepository creates a new in-memory transition repository
func NewTransitionRepository() *TransitionRepository {
	return &TransitionRepository{transitions: make(map[uuid.UUID]*domain.ScheduledTransition)}
}

// GetTransition retrieves a transition by id
func (r *TransitionRepository) GetTransition(_ context.Context, id uuid.UUID) (*domain.ScheduledTransition, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.transitions[id]
	if !ok {
		return nil, domain.ErrTransitionNotFound
	}
	clone := *t
	return &clone, nil
}

func (r *TransitionRepository) filterSorted(keep func(*domain.ScheduledTransition) bool) []*domain.ScheduledTransition {
	var out []*domain.ScheduledTransition
	for _, t := range r.transitions {
		if keep(t) {
			clone := *t
			out = append(out, &clone)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].DueAt.Before(out[j].DueAt)
	})
	return out
}

// ListDue returns active transitions due at or before asOf
func (r *TransitionRepository) ListDue(_ context.Context, asOf time.Time) ([]*domain.ScheduledTransition, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.filterSorted(func(t *domain.ScheduledTransition) bool {
		return t.Active && !t.DueAt.After(asOf)
	}), nil
}

// ListActive returns all active transitions, soonest first
func (r *TransitionRepository) ListActive(_ context.Context) ([]*domain.ScheduledTransition, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.filterSorted(func(t *domain.ScheduledTransition) bool {
		return t.Active
	}), nil
}

// ListActiveByBatch returns a batch's active transitions, soonest first
func (r *TransitionRepository) ListActiveByBatch(_ context.Context, batchID uuid.UUID) ([]*domain.ScheduledTransition, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.filterSorted(func(t *domain.ScheduledTransition) bool {
		return t.Active && t.BatchID == batchID
	}), nil
}

// CreateTransition persists a new one-shot transition
func (r *TransitionRepository) CreateTransition(_ context.Context, t *domain.ScheduledTransition) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now()
	}
	clone := *t
	r.transitions[t.ID] = &clone
	return nil
}

// Deactivate consumes a transition
func (r *TransitionRepository) Deactivate(_ context.Context, id uuid.UUID, ranAt *time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.transitions[id]
	if !ok {
		return domain.ErrTransitionNotFound
	}
	t.Active = false
	t.LastRunAt = ranAt
	return nil
}

// DeactivateForBatch consumes all of a batch's active transitions
func (r *TransitionRepository) DeactivateForBatch(_ context.Context, batchID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.transitions {
		if t.Active && t.BatchID == batchID {
			t.Active = false
		}
	}
	return nil
}

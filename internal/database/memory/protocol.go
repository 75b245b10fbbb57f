// Package memory provides in-memory repository implementations used by
// unit tests and local development. They mirror the PostgreSQL
// repositories' contracts, including FIFO ordering and not-found errors.
package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tillgreens/microfarm/internal/domain"
)

// ProtocolRepository provides in-memory protocol storage
type ProtocolRepository struct {
	mu        sync.RWMutex
	protocols map[uuid.UUID]*domain.GrowingProtocol
}

// NewProtocolRepository creates a new in-memory protocol repository
func NewProtocolRepository() *ProtocolRepository {
	return &ProtocolRepository{protocols: make(map[uuid.UUID]*domain.GrowingProtocol)}
}

// GetProtocol retrieves a protocol by id
func (r *ProtocolRepository) GetProtocol(_ context.Context, id uuid.UUID) (*domain.GrowingProtocol, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.protocols[id]
	if !ok {
		return nil, domain.ErrProtocolNotFound
	}
	clone := *p
	return &clone, nil
}

// GetProtocolByVariety resolves the active protocol for a variety/cultivar pair
func (r *ProtocolRepository) GetProtocolByVariety(_ context.Context, variety, cultivar string) (*domain.GrowingProtocol, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.protocols {
		if !p.Active {
			continue
		}
		if !strings.EqualFold(p.Variety, variety) {
			continue
		}
		if cultivar != "" && !strings.EqualFold(p.Cultivar, cultivar) {
			continue
		}
		clone := *p
		return &clone, nil
	}
	return nil, domain.ErrProtocolNotFound
}

// ListActiveProtocols returns all active protocols
func (r *ProtocolRepository) ListActiveProtocols(_ context.Context) ([]*domain.GrowingProtocol, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*domain.GrowingProtocol
	for _, p := range r.protocols {
		if p.Active {
			clone := *p
			out = append(out, &clone)
		}
	}
	return out, nil
}

// CreateProtocol persists a new protocol
func (r *ProtocolRepository) CreateProtocol(_ context.Context, p *domain.GrowingProtocol) error {
	if err := p.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	now := time.Now()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now
	clone := *p
	r.protocols[p.ID] = &clone
	return nil
}

// MarkDepleted flags the protocol's lot as depleted (one-way)
func (r *ProtocolRepository) MarkDepleted(_ context.Context, id uuid.UUID, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.protocols[id]
	if !ok {
		return domain.ErrProtocolNotFound
	}
	if p.DepletedAt == nil {
		p.DepletedAt = &at
		p.UpdatedAt = time.Now()
	}
	return nil
}

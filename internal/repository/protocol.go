package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/tillgreens/microfarm/internal/domain"
)

// Protocol handles growing protocol persistence
type Protocol interface {
	// GetProtocol retrieves a protocol by id
	GetProtocol(ctx context.Context, id uuid.UUID) (*domain.GrowingProtocol, error)

	// GetProtocolByVariety resolves the protocol for a variety (and
	// cultivar when non-empty). Returns domain.ErrProtocolNotFound when
	// no active protocol matches.
	GetProtocolByVariety(ctx context.Context, variety, cultivar string) (*domain.GrowingProtocol, error)

	// ListActiveProtocols returns all active protocols
	ListActiveProtocols(ctx context.Context) ([]*domain.GrowingProtocol, error)

	// CreateProtocol persists a new protocol
	CreateProtocol(ctx context.Context, p *domain.GrowingProtocol) error

	// MarkDepleted flags the protocol's seed lot as depleted. The flag is
	// one-way: calling it on an already flagged protocol is a no-op.
	MarkDepleted(ctx context.Context, id uuid.UUID, at time.Time) error
}

package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tillgreens/microfarm/internal/domain"
)

// ProtocolRepository implements the protocol repository for PostgreSQL
type ProtocolRepository struct {
	db *pgxpool.Pool
}

// NewProtocolRepository creates a new protocol repository
func NewProtocolRepository(db *pgxpool.Pool) *ProtocolRepository {
	return &ProtocolRepository{db: db}
}

const protocolColumns = `protocol_id, variety, cultivar, lot_number, soak_hours,
	germination_days, blackout_days, light_days, seed_density_grams,
	expected_yield_grams, buffer_percent, suspend_watering_hours,
	active, depleted_at, created_at, updated_at`

func scanProtocol(row pgx.Row) (*domain.GrowingProtocol, error) {
	var p domain.GrowingProtocol
	err := row.Scan(
		&p.ID, &p.Variety, &p.Cultivar, &p.LotNumber, &p.SoakHours,
		&p.GerminationDays, &p.BlackoutDays, &p.LightDays, &p.SeedDensityGrams,
		&p.ExpectedYieldGrams, &p.BufferPercent, &p.SuspendWateringHours,
		&p.Active, &p.DepletedAt, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GetProtocol retrieves a protocol by id
func (r *ProtocolRepository) GetProtocol(ctx context.Context, id uuid.UUID) (*domain.GrowingProtocol, error) {
	query := `SELECT ` + protocolColumns + ` FROM growing_protocols WHERE protocol_id = $1`
	p, err := scanProtocol(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrProtocolNotFound
		}
		return nil, fmt.Errorf("failed to get protocol: %w", err)
	}
	return p, nil
}

// GetProtocolByVariety resolves the active protocol for a variety/cultivar pair
func (r *ProtocolRepository) GetProtocolByVariety(ctx context.Context, variety, cultivar string) (*domain.GrowingProtocol, error) {
	query := `SELECT ` + protocolColumns + ` FROM growing_protocols
		WHERE active AND LOWER(variety) = LOWER($1)
		  AND ($2 = '' OR LOWER(cultivar) = LOWER($2))
		ORDER BY created_at DESC
		LIMIT 1`
	p, err := scanProtocol(r.db.QueryRow(ctx, query, variety, cultivar))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrProtocolNotFound
		}
		return nil, fmt.Errorf("failed to get protocol by variety: %w", err)
	}
	return p, nil
}

// ListActiveProtocols returns all active protocols
func (r *ProtocolRepository) ListActiveProtocols(ctx context.Context) ([]*domain.GrowingProtocol, error) {
	query := `SELECT ` + protocolColumns + ` FROM growing_protocols WHERE active ORDER BY variety, cultivar`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list protocols: %w", err)
	}
	defer rows.Close()

	var protocols []*domain.GrowingProtocol
	for rows.Next() {
		p, err := scanProtocol(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan protocol: %w", err)
		}
		protocols = append(protocols, p)
	}
	return protocols, rows.Err()
}

// CreateProtocol persists a new protocol
func (r *ProtocolRepository) CreateProtocol(ctx context.Context, p *domain.GrowingProtocol) error {
	if err := p.Validate(); err != nil {
		return err
	}
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	query := `INSERT INTO growing_protocols (
			protocol_id, variety, cultivar, lot_number, soak_hours,
			germination_days, blackout_days, light_days, seed_density_grams,
			expected_yield_grams, buffer_percent, suspend_watering_hours, active
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
		RETURNING created_at, updated_at`
	err := r.db.QueryRow(ctx, query,
		p.ID, p.Variety, p.Cultivar, p.LotNumber, p.SoakHours,
		p.GerminationDays, p.BlackoutDays, p.LightDays, p.SeedDensityGrams,
		p.ExpectedYieldGrams, p.BufferPercent, p.SuspendWateringHours, p.Active,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create protocol: %w", err)
	}
	return nil
}

// MarkDepleted flags the protocol's lot as depleted; already-flagged rows are untouched
func (r *ProtocolRepository) MarkDepleted(ctx context.Context, id uuid.UUID, at time.Time) error {
	query := `UPDATE growing_protocols
		SET depleted_at = $2, updated_at = NOW()
		WHERE protocol_id = $1 AND depleted_at IS NULL`
	tag, err := r.db.Exec(ctx, query, id, at)
	if err != nil {
		return fmt.Errorf("failed to mark protocol depleted: %w", err)
	}
	_ = tag // zero rows affected means already flagged, which is fine
	return nil
}

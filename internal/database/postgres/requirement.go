package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tillgreens/microfarm/internal/domain"
)

// RequirementRepository implements requirement record persistence for PostgreSQL
type RequirementRepository struct {
	db *pgxpool.Pool
}

// NewRequirementRepository creates a new requirement repository
func NewRequirementRepository(db *pgxpool.Pool) *RequirementRepository {
	return &RequirementRepository{db: db}
}

const requirementColumns = `requirement_id, order_id, protocol_id, trays, grams,
	plant_by, harvest_on, status, aggregate_id, note, created_at, updated_at`

func scanRequirement(row pgx.Row) (*domain.RequirementRecord, error) {
	var rec domain.RequirementRecord
	err := row.Scan(
		&rec.ID, &rec.OrderID, &rec.ProtocolID, &rec.Trays, &rec.Grams,
		&rec.PlantBy, &rec.HarvestOn, &rec.Status, &rec.AggregateID,
		&rec.Note, &rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// GetRequirement retrieves a record by id
func (r *RequirementRepository) GetRequirement(ctx context.Context, id uuid.UUID) (*domain.RequirementRecord, error) {
	query := `SELECT ` + requirementColumns + ` FROM requirement_records WHERE requirement_id = $1`
	rec, err := scanRequirement(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRequirementNotFound
		}
		return nil, fmt.Errorf("failed to get requirement: %w", err)
	}
	return rec, nil
}

// ListByOrder returns all records created for an order
func (r *RequirementRepository) ListByOrder(ctx context.Context, orderID string) ([]*domain.RequirementRecord, error) {
	query := `SELECT ` + requirementColumns + ` FROM requirement_records
		WHERE order_id = $1 ORDER BY created_at`
	return r.queryRequirements(ctx, query, orderID)
}

// ListByAggregate returns all records linked to an aggregate
func (r *RequirementRepository) ListByAggregate(ctx context.Context, aggregateID uuid.UUID) ([]*domain.RequirementRecord, error) {
	query := `SELECT ` + requirementColumns + ` FROM requirement_records
		WHERE aggregate_id = $1 ORDER BY created_at`
	return r.queryRequirements(ctx, query, aggregateID)
}

// FindDraftSibling finds another draft record sharing the record's grouping key
func (r *RequirementRepository) FindDraftSibling(ctx context.Context, rec *domain.RequirementRecord) (*domain.RequirementRecord, error) {
	query := `SELECT ` + requirementColumns + ` FROM requirement_records
		WHERE status = 'draft'
		  AND requirement_id <> $1
		  AND protocol_id = $2
		  AND plant_by::date = $3::date
		  AND harvest_on::date = $4::date
		ORDER BY created_at
		LIMIT 1`
	sibling, err := scanRequirement(r.db.QueryRow(ctx, query, rec.ID, rec.ProtocolID, rec.PlantBy, rec.HarvestOn))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRequirementNotFound
		}
		return nil, fmt.Errorf("failed to find draft sibling: %w", err)
	}
	return sibling, nil
}

// CreateRequirement persists a new record
func (r *RequirementRepository) CreateRequirement(ctx context.Context, rec *domain.RequirementRecord) error {
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	if rec.Status == "" {
		rec.Status = domain.RequirementDraft
	}
	query := `INSERT INTO requirement_records
		(requirement_id, order_id, protocol_id, trays, grams, plant_by, harvest_on, status, aggregate_id, note)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		RETURNING created_at, updated_at`
	err := r.db.QueryRow(ctx, query,
		rec.ID, rec.OrderID, rec.ProtocolID, rec.Trays, rec.Grams,
		rec.PlantBy, rec.HarvestOn, rec.Status, rec.AggregateID, rec.Note,
	).Scan(&rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create requirement: %w", err)
	}
	return nil
}

// UpdateRequirement persists status, note and aggregate link changes
func (r *RequirementRepository) UpdateRequirement(ctx context.Context, rec *domain.RequirementRecord) error {
	query := `UPDATE requirement_records
		SET trays = $2, grams = $3, status = $4, aggregate_id = $5, note = $6, updated_at = NOW()
		WHERE requirement_id = $1`
	tag, err := r.db.Exec(ctx, query, rec.ID, rec.Trays, rec.Grams, rec.Status, rec.AggregateID, rec.Note)
	if err != nil {
		return fmt.Errorf("failed to update requirement: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrRequirementNotFound
	}
	return nil
}

func (r *RequirementRepository) queryRequirements(ctx context.Context, query string, args ...any) ([]*domain.RequirementRecord, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list requirements: %w", err)
	}
	defer rows.Close()

	var records []*domain.RequirementRecord
	for rows.Next() {
		rec, err := scanRequirement(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan requirement: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

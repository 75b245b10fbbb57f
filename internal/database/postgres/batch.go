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

// BatchRepository implements growth batch persistence for PostgreSQL
type BatchRepository struct {
	db *pgxpool.Pool
}

// NewBatchRepository creates a new batch repository
func NewBatchRepository(db *pgxpool.Pool) *BatchRepository {
	return &BatchRepository{db: db}
}

const batchColumns = `batch_id, protocol_id, tray_ids, soaked_at, germination_at,
	blackout_at, light_at, harvested_at, current_stage, watering_suspended,
	watering_suspended_at, created_at, updated_at`

func scanBatch(row pgx.Row) (*domain.GrowthBatch, error) {
	var b domain.GrowthBatch
	err := row.Scan(
		&b.ID, &b.ProtocolID, &b.TrayIDs, &b.Times.SoakedAt, &b.Times.GerminationAt,
		&b.Times.BlackoutAt, &b.Times.LightAt, &b.Times.HarvestedAt, &b.CurrentStage,
		&b.WateringSuspended, &b.WateringSuspendedAt, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// GetBatch retrieves a batch by id
func (r *BatchRepository) GetBatch(ctx context.Context, id uuid.UUID) (*domain.GrowthBatch, error) {
	query := `SELECT ` + batchColumns + ` FROM growth_batches WHERE batch_id = $1`
	b, err := scanBatch(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrBatchNotFound
		}
		return nil, fmt.Errorf("failed to get batch: %w", err)
	}
	return b, nil
}

// ListUnharvested returns all batches that have not reached harvest
func (r *BatchRepository) ListUnharvested(ctx context.Context) ([]*domain.GrowthBatch, error) {
	query := `SELECT ` + batchColumns + ` FROM growth_batches WHERE harvested_at IS NULL ORDER BY created_at`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list unharvested batches: %w", err)
	}
	defer rows.Close()

	var batches []*domain.GrowthBatch
	for rows.Next() {
		b, err := scanBatch(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan batch: %w", err)
		}
		batches = append(batches, b)
	}
	return batches, rows.Err()
}

// CreateBatch persists a newly planted batch
func (r *BatchRepository) CreateBatch(ctx context.Context, b *domain.GrowthBatch) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	if b.CurrentStage == "" {
		b.CurrentStage = b.Times.Infer()
	}
	query := `INSERT INTO growth_batches
		(batch_id, protocol_id, tray_ids, soaked_at, germination_at, blackout_at,
		 light_at, harvested_at, current_stage, watering_suspended, watering_suspended_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
		RETURNING created_at, updated_at`
	err := r.db.QueryRow(ctx, query,
		b.ID, b.ProtocolID, b.TrayIDs, b.Times.SoakedAt, b.Times.GerminationAt,
		b.Times.BlackoutAt, b.Times.LightAt, b.Times.HarvestedAt, b.CurrentStage,
		b.WateringSuspended, b.WateringSuspendedAt,
	).Scan(&b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create batch: %w", err)
	}
	return nil
}

// UpdateBatch persists stage timestamps and flags
func (r *BatchRepository) UpdateBatch(ctx context.Context, b *domain.GrowthBatch) error {
	query := `UPDATE growth_batches
		SET soaked_at = $2, germination_at = $3, blackout_at = $4, light_at = $5,
		    harvested_at = $6, current_stage = $7, watering_suspended = $8,
		    watering_suspended_at = $9, updated_at = NOW()
		WHERE batch_id = $1`
	tag, err := r.db.Exec(ctx, query,
		b.ID, b.Times.SoakedAt, b.Times.GerminationAt, b.Times.BlackoutAt,
		b.Times.LightAt, b.Times.HarvestedAt, b.CurrentStage,
		b.WateringSuspended, b.WateringSuspendedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update batch: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrBatchNotFound
	}
	return nil
}

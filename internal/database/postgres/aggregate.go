package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tillgreens/microfarm/internal/domain"
)

// AggregateRepository implements batch aggregate persistence for PostgreSQL
type AggregateRepository struct {
	db *pgxpool.Pool
}

// NewAggregateRepository creates a new aggregate repository
func NewAggregateRepository(db *pgxpool.Pool) *AggregateRepository {
	return &AggregateRepository{db: db}
}

const aggregateColumns = `aggregate_id, protocol_id, plant_date, harvest_date,
	total_trays, total_grams, status, history, created_at, updated_at`

func scanAggregate(row pgx.Row) (*domain.BatchAggregate, error) {
	var agg domain.BatchAggregate
	var history []byte
	err := row.Scan(
		&agg.ID, &agg.ProtocolID, &agg.PlantDate, &agg.HarvestDate,
		&agg.TotalTrays, &agg.TotalGrams, &agg.Status, &history,
		&agg.CreatedAt, &agg.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(history) > 0 {
		if err := json.Unmarshal(history, &agg.History); err != nil {
			return nil, fmt.Errorf("bad aggregation history: %w", err)
		}
	}
	return &agg, nil
}

// GetAggregate retrieves an aggregate by id
func (r *AggregateRepository) GetAggregate(ctx context.Context, id uuid.UUID) (*domain.BatchAggregate, error) {
	query := `SELECT ` + aggregateColumns + ` FROM batch_aggregates WHERE aggregate_id = $1`
	agg, err := scanAggregate(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAggregateNotFound
		}
		return nil, fmt.Errorf("failed to get aggregate: %w", err)
	}
	return agg, nil
}

// FindDraftByKey finds the draft aggregate for a grouping key
func (r *AggregateRepository) FindDraftByKey(ctx context.Context, protocolID uuid.UUID, plantDate, harvestDate time.Time) (*domain.BatchAggregate, error) {
	query := `SELECT ` + aggregateColumns + ` FROM batch_aggregates
		WHERE status = 'draft'
		  AND protocol_id = $1
		  AND plant_date = $2::date
		  AND harvest_date = $3::date`
	agg, err := scanAggregate(r.db.QueryRow(ctx, query, protocolID, plantDate, harvestDate))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAggregateNotFound
		}
		return nil, fmt.Errorf("failed to find draft aggregate: %w", err)
	}
	return agg, nil
}

// CreateAggregate persists a new aggregate. The partial unique index on
// the draft grouping key turns a concurrent twin into an insert error.
func (r *AggregateRepository) CreateAggregate(ctx context.Context, agg *domain.BatchAggregate) error {
	if agg.ID == uuid.Nil {
		agg.ID = uuid.New()
	}
	if agg.Status == "" {
		agg.Status = domain.AggregateDraft
	}
	history, err := json.Marshal(agg.History)
	if err != nil {
		return fmt.Errorf("failed to encode aggregation history: %w", err)
	}
	query := `INSERT INTO batch_aggregates
		(aggregate_id, protocol_id, plant_date, harvest_date, total_trays, total_grams, status, history)
		VALUES ($1, $2, $3::date, $4::date, $5, $6, $7, $8)
		RETURNING created_at, updated_at`
	err = r.db.QueryRow(ctx, query,
		agg.ID, agg.ProtocolID, agg.PlantDate, agg.HarvestDate,
		agg.TotalTrays, agg.TotalGrams, agg.Status, history,
	).Scan(&agg.CreatedAt, &agg.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create aggregate: %w", err)
	}
	return nil
}

// UpdateAggregate persists totals, status and history changes
func (r *AggregateRepository) UpdateAggregate(ctx context.Context, agg *domain.BatchAggregate) error {
	history, err := json.Marshal(agg.History)
	if err != nil {
		return fmt.Errorf("failed to encode aggregation history: %w", err)
	}
	query := `UPDATE batch_aggregates
		SET total_trays = $2, total_grams = $3, status = $4, history = $5, updated_at = NOW()
		WHERE aggregate_id = $1`
	tag, err := r.db.Exec(ctx, query, agg.ID, agg.TotalTrays, agg.TotalGrams, agg.Status, history)
	if err != nil {
		return fmt.Errorf("failed to update aggregate: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrAggregateNotFound
	}
	return nil
}

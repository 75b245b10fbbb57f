package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tillgreens/microfarm/internal/domain"
)

// HarvestHistoryRepository implements harvest record persistence for PostgreSQL
type HarvestHistoryRepository struct {
	db *pgxpool.Pool
}

// NewHarvestHistoryRepository creates a new harvest history repository
func NewHarvestHistoryRepository(db *pgxpool.Pool) *HarvestHistoryRepository {
	return &HarvestHistoryRepository{db: db}
}

// ListRecords returns harvest records for a variety within the trailing window
func (r *HarvestHistoryRepository) ListRecords(ctx context.Context, variety, cultivar string, since time.Time) ([]*domain.HarvestRecord, error) {
	query := `SELECT record_id, variety, cultivar, harvested_at, avg_weight_per_tray_g
		FROM harvest_records
		WHERE LOWER(variety) = LOWER($1)
		  AND ($2 = '' OR LOWER(cultivar) = LOWER($2))
		  AND harvested_at >= $3
		ORDER BY harvested_at DESC`
	rows, err := r.db.Query(ctx, query, variety, cultivar, since)
	if err != nil {
		return nil, fmt.Errorf("failed to list harvest records: %w", err)
	}
	defer rows.Close()

	var records []*domain.HarvestRecord
	for rows.Next() {
		var rec domain.HarvestRecord
		if err := rows.Scan(&rec.ID, &rec.Variety, &rec.Cultivar, &rec.HarvestedAt, &rec.AvgWeightPerTrayG); err != nil {
			return nil, fmt.Errorf("failed to scan harvest record: %w", err)
		}
		records = append(records, &rec)
	}
	return records, rows.Err()
}

// AddRecord appends a harvest observation
func (r *HarvestHistoryRepository) AddRecord(ctx context.Context, rec *domain.HarvestRecord) error {
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	query := `INSERT INTO harvest_records (record_id, variety, cultivar, harvested_at, avg_weight_per_tray_g)
		VALUES ($1, $2, $3, $4, $5)`
	_, err := r.db.Exec(ctx, query, rec.ID, rec.Variety, rec.Cultivar, rec.HarvestedAt, rec.AvgWeightPerTrayG)
	if err != nil {
		return fmt.Errorf("failed to add harvest record: %w", err)
	}
	return nil
}

package repository

import (
	"context"
	"time"

	"github.com/tillgreens/microfarm/internal/domain"
)

// HarvestHistory handles harvest record persistence. Records are
// append-only; there is deliberately no update or delete.
type HarvestHistory interface {
	// ListRecords returns records for a variety (and cultivar when
	// non-empty) harvested at or after since, newest first.
	ListRecords(ctx context.Context, variety, cultivar string, since time.Time) ([]*domain.HarvestRecord, error)

	// AddRecord appends a harvest observation
	AddRecord(ctx context.Context, rec *domain.HarvestRecord) error
}

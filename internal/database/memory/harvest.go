package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tillgreens/microfarm/internal/domain"
)

// HarvestHistoryRepository provides in-memory harvest record storage
type HarvestHistoryRepository struct {
	mu      sync.RWMutex
	records []*domain.HarvestRecord
}

// NewHarvestHistoryRepository creates a new in-memory harvest history repository
func NewHarvestHistoryRepository() *HarvestHistoryRepository {
	return &HarvestHistoryRepository{}
}

// ListRecords returns records for a variety within the trailing window, newest first
func (r *HarvestHistoryRepository) ListRecords(_ context.Context, variety, cultivar string, since time.Time) ([]*domain.HarvestRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*domain.HarvestRecord
	for _, rec := range r.records {
		if !strings.EqualFold(rec.Variety, variety) {
			continue
		}
		if cultivar != "" && !strings.EqualFold(rec.Cultivar, cultivar) {
			continue
		}
		if rec.HarvestedAt.Before(since) {
			continue
		}
		clone := *rec
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].HarvestedAt.After(out[j].HarvestedAt)
	})
	return out, nil
}

// AddRecord appends a harvest observation
func (r *HarvestHistoryRepository) AddRecord(_ context.Context, rec *domain.HarvestRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	clone := *rec
	r.records = append(r.records, &clone)
	return nil
}

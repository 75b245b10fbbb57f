package memory

import (
	"bytes"
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tillgreens/microfarm/internal/domain"
	"github.com/tillgreens/microfarm/internal/repository"
)

// InventoryRepository provides in-memory lot entry storage
type InventoryRepository struct {
	mu      sync.Mutex
	entries map[uuid.UUID]*domain.InventoryLotEntry
}

// NewInventoryRepository creates a new in-memory inventory repository
func NewInventoryRepository() *InventoryRepository {
	return &InventoryRepository{entries: make(map[uuid.UUID]*domain.InventoryLotEntry)}
}

// sortFIFO orders entries by creation time ascending, ties by id bytes ascending
func sortFIFO(entries []*domain.InventoryLotEntry) {
	sort.Slice(entries, func(i, j int) bool {
		if !entries[i].CreatedAt.Equal(entries[j].CreatedAt) {
			return entries[i].CreatedAt.Before(entries[j].CreatedAt)
		}
		return bytes.Compare(entries[i].ID[:], entries[j].ID[:]) < 0
	})
}

func (r *InventoryRepository) activeByLot(lotNumber string) []*domain.InventoryLotEntry {
	var out []*domain.InventoryLotEntry
	for _, e := range r.entries {
		if e.Active && e.LotNumber == lotNumber {
			clone := *e
			out = append(out, &clone)
		}
	}
	sortFIFO(out)
	return out
}

// ListEntriesByLot returns the lot's active entries in FIFO order
func (r *InventoryRepository) ListEntriesByLot(_ context.Context, lotNumber string) ([]*domain.InventoryLotEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.activeByLot(lotNumber), nil
}

// GetEntry retrieves one entry by id
func (r *InventoryRepository) GetEntry(_ context.Context, id uuid.UUID) (*domain.InventoryLotEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[id]
	if !ok {
		return nil, domain.ErrLotEntryNotFound
	}
	clone := *e
	return &clone, nil
}

// CreateEntry persists a new lot entry
func (r *InventoryRepository) CreateEntry(_ context.Context, entry *domain.InventoryLotEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	clone := *entry
	r.entries[entry.ID] = &clone
	return nil
}

// DeactivateEntry marks an entry inactive
func (r *InventoryRepository) DeactivateEntry(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[id]
	if !ok {
		return domain.ErrLotEntryNotFound
	}
	e.Active = false
	return nil
}

// ListLotNumbers returns every lot number with at least one active entry
func (r *InventoryRepository) ListLotNumbers(_ context.Context) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	seen := make(map[string]bool)
	var lots []string
	for _, e := range r.entries {
		if e.Active && !seen[e.LotNumber] {
			seen[e.LotNumber] = true
			lots = append(lots, e.LotNumber)
		}
	}
	sort.Strings(lots)
	return lots, nil
}

// BeginTx starts a staged transaction: consumed-quantity writes are
// buffered and only applied on Commit, giving the same all-or-nothing
// behavior as the row-locked PostgreSQL path.
func (r *InventoryRepository) BeginTx(_ context.Context) (repository.InventoryTx, error) {
	r.mu.Lock()
	return &inventoryTx{repo: r, staged: make(map[uuid.UUID]decimal.Decimal)}, nil
}

type inventoryTx struct {
	repo   *InventoryRepository
	staged map[uuid.UUID]decimal.Decimal
	closed bool
}

// Commit applies staged writes and releases the repository lock
func (t *inventoryTx) Commit(_ context.Context) error {
	if t.closed {
		return domainTxClosedErr()
	}
	for id, consumed := range t.staged {
		if e, ok := t.repo.entries[id]; ok {
			e.ConsumedGrams = consumed
		}
	}
	t.closed = true
	t.repo.mu.Unlock()
	return nil
}

// Rollback discards staged writes and releases the repository lock
func (t *inventoryTx) Rollback(_ context.Context) error {
	if t.closed {
		return domainTxClosedErr()
	}
	t.closed = true
	t.repo.mu.Unlock()
	return nil
}

// GetEntryForUpdate retrieves an entry; the whole repo is locked for the tx
func (t *inventoryTx) GetEntryForUpdate(_ context.Context, id uuid.UUID) (*domain.InventoryLotEntry, error) {
	e, ok := t.repo.entries[id]
	if !ok {
		return nil, domain.ErrLotEntryNotFound
	}
	clone := *e
	if staged, ok := t.staged[id]; ok {
		clone.ConsumedGrams = staged
	}
	return &clone, nil
}

// ListEntriesByLotForUpdate returns the lot's active entries in FIFO order
func (t *inventoryTx) ListEntriesByLotForUpdate(_ context.Context, lotNumber string) ([]*domain.InventoryLotEntry, error) {
	entries := t.repo.activeByLot(lotNumber)
	for _, e := range entries {
		if staged, ok := t.staged[e.ID]; ok {
			e.ConsumedGrams = staged
		}
	}
	return entries, nil
}

// SetConsumed stages an entry's consumed quantity
func (t *inventoryTx) SetConsumed(_ context.Context, id uuid.UUID, consumedGrams decimal.Decimal) error {
	if _, ok := t.repo.entries[id]; !ok {
		return domain.ErrLotEntryNotFound
	}
	t.staged[id] = consumedGrams
	return nil
}

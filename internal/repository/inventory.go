package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tillgreens/microfarm/internal/domain"
)

// Inventory handles seed lot entry persistence
type Inventory interface {
	// ListEntriesByLot returns all active entries for a lot number in
	// FIFO order: creation time ascending, ties by id ascending.
	ListEntriesByLot(ctx context.Context, lotNumber string) ([]*domain.InventoryLotEntry, error)

	// GetEntry retrieves one entry by id
	GetEntry(ctx context.Context, id uuid.UUID) (*domain.InventoryLotEntry, error)

	// CreateEntry persists a new lot entry (a received shipment)
	CreateEntry(ctx context.Context, entry *domain.InventoryLotEntry) error

	// DeactivateEntry marks an entry inactive. Entries are never deleted.
	DeactivateEntry(ctx context.Context, id uuid.UUID) error

	// ListLotNumbers returns every lot number with at least one active entry
	ListLotNumbers(ctx context.Context) ([]string, error)

	// BeginTx starts a transaction for deduction
	BeginTx(ctx context.Context) (InventoryTx, error)
}

// InventoryTx is the transactional surface for lot mutation. Deduction
// reads and writes consumed quantities inside one critical section.
type InventoryTx interface {
	Tx

	// GetEntryForUpdate retrieves an entry with a row lock
	GetEntryForUpdate(ctx context.Context, id uuid.UUID) (*domain.InventoryLotEntry, error)

	// ListEntriesByLotForUpdate returns the lot's active entries in FIFO
	// order, row-locked for the duration of the transaction.
	ListEntriesByLotForUpdate(ctx context.Context, lotNumber string) ([]*domain.InventoryLotEntry, error)

	// SetConsumed writes an entry's consumed quantity
	SetConsumed(ctx context.Context, id uuid.UUID, consumedGrams decimal.Decimal) error
}

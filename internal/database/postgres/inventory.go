package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/tillgreens/microfarm/internal/domain"
	"github.com/tillgreens/microfarm/internal/repository"
)

// InventoryRepository implements lot entry persistence for PostgreSQL
type InventoryRepository struct {
	db *pgxpool.Pool
}

// NewInventoryRepository creates a new inventory repository
func NewInventoryRepository(db *pgxpool.Pool) *InventoryRepository {
	return &InventoryRepository{db: db}
}

// entryScanner abstracts pgx row scanning for lot entries. NUMERIC
// columns travel as text and are parsed into decimals.
func scanEntry(row pgx.Row) (*domain.InventoryLotEntry, error) {
	var e domain.InventoryLotEntry
	var total, consumed string
	err := row.Scan(&e.ID, &e.LotNumber, &total, &consumed, &e.Active, &e.CreatedAt)
	if err != nil {
		return nil, err
	}
	if e.TotalGrams, err = decimal.NewFromString(total); err != nil {
		return nil, fmt.Errorf("bad total_grams value %q: %w", total, err)
	}
	if e.ConsumedGrams, err = decimal.NewFromString(consumed); err != nil {
		return nil, fmt.Errorf("bad consumed_grams value %q: %w", consumed, err)
	}
	return &e, nil
}

const entryColumns = `entry_id, lot_number, total_grams::text, consumed_grams::text, active, created_at`

const fifoOrder = ` ORDER BY created_at ASC, entry_id ASC`

// ListEntriesByLot returns the lot's active entries in FIFO order
func (r *InventoryRepository) ListEntriesByLot(ctx context.Context, lotNumber string) ([]*domain.InventoryLotEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM inventory_lot_entries
		WHERE lot_number = $1 AND active` + fifoOrder
	return r.queryEntries(ctx, query, lotNumber)
}

func (r *InventoryRepository) queryEntries(ctx context.Context, query string, args ...any) ([]*domain.InventoryLotEntry, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list lot entries: %w", err)
	}
	defer rows.Close()

	var entries []*domain.InventoryLotEntry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan lot entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// GetEntry retrieves one entry by id
func (r *InventoryRepository) GetEntry(ctx context.Context, id uuid.UUID) (*domain.InventoryLotEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM inventory_lot_entries WHERE entry_id = $1`
	e, err := scanEntry(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrLotEntryNotFound
		}
		return nil, fmt.Errorf("failed to get lot entry: %w", err)
	}
	return e, nil
}

// CreateEntry persists a new lot entry
func (r *InventoryRepository) CreateEntry(ctx context.Context, entry *domain.InventoryLotEntry) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	query := `INSERT INTO inventory_lot_entries (entry_id, lot_number, total_grams, consumed_grams, active)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at`
	err := r.db.QueryRow(ctx, query,
		entry.ID, entry.LotNumber, entry.TotalGrams.String(), entry.ConsumedGrams.String(), entry.Active,
	).Scan(&entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create lot entry: %w", err)
	}
	return nil
}

// DeactivateEntry marks an entry inactive
func (r *InventoryRepository) DeactivateEntry(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `UPDATE inventory_lot_entries SET active = FALSE WHERE entry_id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to deactivate lot entry: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrLotEntryNotFound
	}
	return nil
}

// ListLotNumbers returns every lot number with at least one active entry
func (r *InventoryRepository) ListLotNumbers(ctx context.Context) ([]string, error) {
	rows, err := r.db.Query(ctx, `SELECT DISTINCT lot_number FROM inventory_lot_entries WHERE active ORDER BY lot_number`)
	if err != nil {
		return nil, fmt.Errorf("failed to list lot numbers: %w", err)
	}
	defer rows.Close()

	var lots []string
	for rows.Next() {
		var lot string
		if err := rows.Scan(&lot); err != nil {
			return nil, fmt.Errorf("failed to scan lot number: %w", err)
		}
		lots = append(lots, lot)
	}
	return lots, rows.Err()
}

// BeginTx starts an inventory transaction
func (r *InventoryRepository) BeginTx(ctx context.Context) (repository.InventoryTx, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin inventory transaction: %w", err)
	}
	return &inventoryTx{tx: tx}, nil
}

// inventoryTx implements repository.InventoryTx
type inventoryTx struct {
	tx pgx.Tx
}

// Commit commits the transaction
func (t *inventoryTx) Commit(ctx context.Context) error {
	return t.tx.Commit(ctx)
}

// Rollback rolls back the transaction
func (t *inventoryTx) Rollback(ctx context.Context) error {
	return t.tx.Rollback(ctx)
}

// GetEntryForUpdate retrieves an entry with a FOR UPDATE row lock
func (t *inventoryTx) GetEntryForUpdate(ctx context.Context, id uuid.UUID) (*domain.InventoryLotEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM inventory_lot_entries WHERE entry_id = $1 FOR UPDATE`
	e, err := scanEntry(t.tx.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrLotEntryNotFound
		}
		return nil, fmt.Errorf("failed to get lot entry for update: %w", err)
	}
	return e, nil
}

// ListEntriesByLotForUpdate row-locks and returns the lot's active entries in FIFO order
func (t *inventoryTx) ListEntriesByLotForUpdate(ctx context.Context, lotNumber string) ([]*domain.InventoryLotEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM inventory_lot_entries
		WHERE lot_number = $1 AND active` + fifoOrder + ` FOR UPDATE`
	rows, err := t.tx.Query(ctx, query, lotNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to lock lot entries: %w", err)
	}
	defer rows.Close()

	var entries []*domain.InventoryLotEntry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan locked lot entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// SetConsumed writes an entry's consumed quantity
func (t *inventoryTx) SetConsumed(ctx context.Context, id uuid.UUID, consumedGrams decimal.Decimal) error {
	tag, err := t.tx.Exec(ctx,
		`UPDATE inventory_lot_entries SET consumed_grams = $2 WHERE entry_id = $1`,
		id, consumedGrams.String(),
	)
	if err != nil {
		return fmt.Errorf("failed to update consumed quantity: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrLotEntryNotFound
	}
	return nil
}

package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tillgreens/microfarm/internal/concurrency"
	"github.com/tillgreens/microfarm/internal/domain"
	"github.com/tillgreens/microfarm/internal/logger"
	"github.com/tillgreens/microfarm/internal/metrics"
	"github.com/tillgreens/microfarm/internal/repository"
)

// Service defines the interface for seed lot ledger operations
type Service interface {
	// Available returns the total deductible grams across a lot's active entries
	Available(ctx context.Context, lotNumber string) (decimal.Decimal, error)

	// OldestEntryWithStock returns the entry the next deduction will draw
	// from first, or domain.ErrLotEntryNotFound when the lot is exhausted.
	OldestEntryWithStock(ctx context.Context, lotNumber string) (*domain.InventoryLotEntry, error)

	// Deduct atomically consumes the given quantity from the lot in FIFO
	// order. Returns domain.ErrInsufficientStock, leaving every entry
	// untouched, when the lot cannot cover the full amount.
	Deduct(ctx context.Context, lotNumber string, qty domain.Quantity) error

	// Replenish appends a new entry to the lot
	Replenish(ctx context.Context, lotNumber string, qty domain.Quantity) (*domain.InventoryLotEntry, error)

	// IsDepleted reports whether the lot has no deductible stock left
	IsDepleted(ctx context.Context, lotNumber string) (bool, error)

	// Summary returns the rolled-up view of a lot
	Summary(ctx context.Context, lotNumber string) (*domain.LotSummary, error)

	// ListLots returns every lot number with at least one active entry
	ListLots(ctx context.Context) ([]string, error)
}

type service struct {
	repo  repository.Inventory
	locks *concurrency.LockManager
	now   func() time.Time
}

// NewService creates a new inventory ledger service
func NewService(repo repository.Inventory, locks *concurrency.LockManager) Service {
	return &service{
		repo:  repo,
		locks: locks,
		now:   time.Now,
	}
}

func (s *service) Available(ctx context.Context, lotNumber string) (decimal.Decimal, error) {
	entries, err := s.repo.ListEntriesByLot(ctx, lotNumber)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to list lot entries: %w", err)
	}
	total := decimal.Zero
	for _, e := range entries {
		total = total.Add(e.Available())
	}
	return total, nil
}

func (s *service) OldestEntryWithStock(ctx context.Context, lotNumber string) (*domain.InventoryLotEntry, error) {
	entries, err := s.repo.ListEntriesByLot(ctx, lotNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to list lot entries: %w", err)
	}
	for _, e := range entries {
		if e.Available().IsPositive() {
			return e, nil
		}
	}
	return nil, fmt.Errorf("%w: no stock in lot %s", domain.ErrLotEntryNotFound, lotNumber)
}

func (s *service) Deduct(ctx context.Context, lotNumber string, qty domain.Quantity) error {
	log := logger.FromContext(ctx)

	grams, err := qty.Grams()
	if err != nil {
		return err
	}
	if !grams.IsPositive() {
		return fmt.Errorf("%w: deduction must be positive, got %s", domain.ErrInvalidInput, grams)
	}

	// One in-flight deduction per lot; the row locks below order
	// concurrent processes, this orders concurrent goroutines.
	lock := s.locks.GetLock(concurrency.LotKey(lotNumber))
	lock.Lock()
	defer lock.Unlock()

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer repository.SafeRollback(ctx, tx)

	entries, err := tx.ListEntriesByLotForUpdate(ctx, lotNumber)
	if err != nil {
		return fmt.Errorf("failed to list lot entries: %w", err)
	}

	available := decimal.Zero
	for _, e := range entries {
		available = available.Add(e.Available())
	}
	if available.LessThan(grams) {
		metrics.SeedDeductions.WithLabelValues(metrics.OutcomeInsufficient).Inc()
		log.Warn("Deduction rejected",
			"lot_number", lotNumber,
			"requested_g", grams.String(),
			"available_g", available.String())
		return fmt.Errorf("%w: lot %s has %sg, need %sg",
			domain.ErrInsufficientStock, lotNumber, available, grams)
	}

	remaining := grams
	for _, e := range entries {
		if !remaining.IsPositive() {
			break
		}
		avail := e.Available()
		if !avail.IsPositive() {
			continue
		}
		take := decimal.Min(avail, remaining)
		if err := tx.SetConsumed(ctx, e.ID, e.ConsumedGrams.Add(take)); err != nil {
			return fmt.Errorf("failed to update entry %s: %w", e.ID, err)
		}
		remaining = remaining.Sub(take)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit deduction: %w", err)
	}

	metrics.SeedDeductions.WithLabelValues(metrics.OutcomeOK).Inc()
	gramsF, _ := grams.Float64()
	metrics.SeedGramsDeducted.Add(gramsF)
	log.Info("Seed deducted", "lot_number", lotNumber, "grams", grams.String())
	return nil
}

func (s *service) Replenish(ctx context.Context, lotNumber string, qty domain.Quantity) (*domain.InventoryLotEntry, error) {
	log := logger.FromContext(ctx)

	grams, err := qty.Grams()
	if err != nil {
		return nil, err
	}
	if !grams.IsPositive() {
		return nil, fmt.Errorf("%w: replenishment must be positive, got %s", domain.ErrInvalidInput, grams)
	}
	if lotNumber == "" {
		return nil, fmt.Errorf("%w: lot number is required", domain.ErrInvalidInput)
	}

	entry := &domain.InventoryLotEntry{
		LotNumber:     lotNumber,
		TotalGrams:    grams,
		ConsumedGrams: decimal.Zero,
		Active:        true,
		CreatedAt:     s.now(),
	}
	if err := s.repo.CreateEntry(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to create lot entry: %w", err)
	}

	log.Info("Lot replenished", "lot_number", lotNumber, "grams", grams.String())
	return entry, nil
}

func (s *service) IsDepleted(ctx context.Context, lotNumber string) (bool, error) {
	available, err := s.Available(ctx, lotNumber)
	if err != nil {
		return false, err
	}
	return !available.IsPositive(), nil
}

func (s *service) Summary(ctx context.Context, lotNumber string) (*domain.LotSummary, error) {
	entries, err := s.repo.ListEntriesByLot(ctx, lotNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to list lot entries: %w", err)
	}

	sum := &domain.LotSummary{
		LotNumber:      lotNumber,
		TotalGrams:     decimal.Zero,
		ConsumedGrams:  decimal.Zero,
		AvailableGrams: decimal.Zero,
	}
	for _, e := range entries {
		sum.TotalGrams = sum.TotalGrams.Add(e.TotalGrams)
		sum.ConsumedGrams = sum.ConsumedGrams.Add(e.ConsumedGrams)
		sum.AvailableGrams = sum.AvailableGrams.Add(e.Available())
		sum.EntryCount++
		created := e.CreatedAt
		if sum.OldestEntryAt == nil || created.Before(*sum.OldestEntryAt) {
			sum.OldestEntryAt = &created
		}
		if sum.NewestEntryAt == nil || created.After(*sum.NewestEntryAt) {
			sum.NewestEntryAt = &created
		}
	}
	return sum, nil
}

func (s *service) ListLots(ctx context.Context) ([]string, error) {
	return s.repo.ListLotNumbers(ctx)
}

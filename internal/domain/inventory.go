package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InventoryLotEntry is one received shipment of a seed lot. Several
// entries may share a lot number (replenishments); FIFO order over a lot
// is by CreatedAt ascending, ties broken by ID ascending. Entries are
// deactivated, never deleted.
type InventoryLotEntry struct {
	ID            uuid.UUID       `json:"id"`
	LotNumber     string          `json:"lot_number"`
	TotalGrams    decimal.Decimal `json:"total_grams"`
	ConsumedGrams decimal.Decimal `json:"consumed_grams"`
	Active        bool            `json:"active"`
	CreatedAt     time.Time       `json:"created_at"`
}

// Available returns total minus consumed, floored at zero
func (e *InventoryLotEntry) Available() decimal.Decimal {
	avail := e.TotalGrams.Sub(e.ConsumedGrams)
	if avail.IsNegative() {
		return decimal.Zero
	}
	return avail
}

// LotSummary is the rolled-up view of all entries for one lot number
type LotSummary struct {
	LotNumber      string          `json:"lot_number"`
	TotalGrams     decimal.Decimal `json:"total_grams"`
	ConsumedGrams  decimal.Decimal `json:"consumed_grams"`
	AvailableGrams decimal.Decimal `json:"available_grams"`
	EntryCount     int             `json:"entry_count"`
	OldestEntryAt  *time.Time      `json:"oldest_entry_at,omitempty"`
	NewestEntryAt  *time.Time      `json:"newest_entry_at,omitempty"`
}

// StockLevel classifies the health of a lot's remaining stock
type StockLevel string

const (
	StockDepleted StockLevel = "depleted"
	StockLow      StockLevel = "low_stock"
	StockHealthy  StockLevel = "healthy"
)

// LotHealth is the Depletion Monitor's verdict for one lot
type LotHealth struct {
	LotNumber        string     `json:"lot_number"`
	Level            StockLevel `json:"level"`
	AvailablePercent float64    `json:"available_percent"`
	Summary          LotSummary `json:"summary"`
}

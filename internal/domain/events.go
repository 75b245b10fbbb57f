package domain

import (
	"time"

	"github.com/google/uuid"
)

// Event names published on the in-process bus
const (
	EventBatchStageAdvanced    = "batch.stage.advanced"
	EventBatchPlanted          = "batch.planted"
	EventWateringSuspended     = "batch.watering.suspended"
	EventRequirementAggregated = "requirement.aggregated"
	EventAggregateCancelled    = "aggregate.cancelled"
	EventLotDepleted           = "inventory.lot.depleted"
	EventLotLowStock           = "inventory.lot.low_stock"
)

// BatchStageAdvancedPayloadV1 is emitted when a batch moves to its next stage
type BatchStageAdvancedPayloadV1 struct {
	BatchID   uuid.UUID `json:"batch_id"`
	FromStage Stage     `json:"from_stage"`
	ToStage   Stage     `json:"to_stage"`
	At        time.Time `json:"at"`
}

// WateringSuspendedPayloadV1 is emitted when pre-harvest watering suspension kicks in
type WateringSuspendedPayloadV1 struct {
	BatchID uuid.UUID `json:"batch_id"`
	At      time.Time `json:"at"`
}

// RequirementAggregatedPayloadV1 is emitted when a requirement merges into an aggregate
type RequirementAggregatedPayloadV1 struct {
	RequirementID uuid.UUID `json:"requirement_id"`
	AggregateID   uuid.UUID `json:"aggregate_id"`
	OrderID       string    `json:"order_id"`
	Trays         int       `json:"trays"`
	Grams         float64   `json:"grams"`
}

// LotStockPayloadV1 is emitted for depletion and low-stock alerts
type LotStockPayloadV1 struct {
	LotNumber        string     `json:"lot_number"`
	Level            StockLevel `json:"level"`
	AvailableGrams   string     `json:"available_grams"`
	AvailablePercent float64    `json:"available_percent"`
}

package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// AggregateStatus is the lifecycle status of a batch aggregate
type AggregateStatus string

const (
	AggregateDraft     AggregateStatus = "draft"
	AggregateConfirmed AggregateStatus = "confirmed"
	AggregateCancelled AggregateStatus = "cancelled"
)

// AggregationEntry is one audit-trail row recording a merge into an aggregate
type AggregationEntry struct {
	RequirementID uuid.UUID `json:"requirement_id"`
	OrderID       string    `json:"order_id"`
	Trays         int       `json:"trays"`
	Grams         float64   `json:"grams"`
	MergedAt      time.Time `json:"merged_at"`
}

// BatchAggregate is a consolidated production unit: the shared batch that
// several requirement records with the same protocol, plant date and
// harvest date are merged into. Totals are only ever mutated through
// merge and recalculate; the audit trail records every contribution.
type BatchAggregate struct {
	ID          uuid.UUID          `json:"id"`
	ProtocolID  uuid.UUID          `json:"protocol_id"`
	PlantDate   time.Time          `json:"plant_date"`
	HarvestDate time.Time          `json:"harvest_date"`
	TotalTrays  int                `json:"total_trays"`
	TotalGrams  float64            `json:"total_grams"`
	Status      AggregateStatus    `json:"status"`
	History     []AggregationEntry `json:"history,omitempty"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
}

// GroupKey identifies the consolidation group an aggregate (or a
// requirement record) belongs to: protocol plus calendar plant and
// harvest dates, time-of-day ignored.
func GroupKey(protocolID uuid.UUID, plantDate, harvestDate time.Time) string {
	return fmt.Sprintf("%s|%s|%s",
		protocolID,
		plantDate.Format("2006-01-02"),
		harvestDate.Format("2006-01-02"),
	)
}

// GroupKey returns the aggregate's consolidation key
func (a *BatchAggregate) GroupKey() string {
	return GroupKey(a.ProtocolID, a.PlantDate, a.HarvestDate)
}

// GroupKey returns the consolidation key the record would aggregate under
func (r *RequirementRecord) GroupKey() string {
	return GroupKey(r.ProtocolID, r.PlantBy, r.HarvestOn)
}

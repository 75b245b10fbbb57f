package domain

import (
	"time"

	"github.com/google/uuid"
)

// RequirementStatus is the lifecycle status of a requirement record
type RequirementStatus string

const (
	RequirementDraft     RequirementStatus = "draft"
	RequirementActive    RequirementStatus = "active"
	RequirementCancelled RequirementStatus = "cancelled"
	RequirementCompleted RequirementStatus = "completed"
)

// Terminal reports whether the status is immutable
func (s RequirementStatus) Terminal() bool {
	return s == RequirementCancelled || s == RequirementCompleted
}

// RequirementRecord is a computed production need for one order and one
// growing protocol. Records in a terminal status are never mutated; the
// Batch Aggregator cancels a draft record when it merges into a sibling,
// leaving a note pointing at the survivor.
type RequirementRecord struct {
	ID          uuid.UUID         `json:"id"`
	OrderID     string            `json:"order_id"`
	ProtocolID  uuid.UUID         `json:"protocol_id"`
	Trays       int               `json:"trays"`
	Grams       float64           `json:"grams"`
	PlantBy     time.Time         `json:"plant_by"`
	HarvestOn   time.Time         `json:"harvest_on"`
	Status      RequirementStatus `json:"status"`
	AggregateID *uuid.UUID        `json:"aggregate_id,omitempty"`
	Note        string            `json:"note,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// Aggregatable reports whether the record may participate in aggregation.
// Only draft records are eligible; everything else is immutable with
// respect to merging.
func (r *RequirementRecord) Aggregatable() bool {
	return r.Status == RequirementDraft
}

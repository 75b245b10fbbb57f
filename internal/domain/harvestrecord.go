package domain

import (
	"time"

	"github.com/google/uuid"
)

// HarvestRecord is one historical yield observation, appended at harvest
// time and never mutated afterwards.
type HarvestRecord struct {
	ID                uuid.UUID `json:"id"`
	Variety           string    `json:"variety"`
	Cultivar          string    `json:"cultivar,omitempty"`
	HarvestedAt       time.Time `json:"harvested_at"`
	AvgWeightPerTrayG float64   `json:"avg_weight_per_tray_g"`
}

package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// GrowingProtocol is a named recipe for producing one crop: per-stage
// durations, seeding density and yield expectations. Protocols are
// referenced by many batches and requirement records and change rarely.
type GrowingProtocol struct {
	ID                   uuid.UUID  `json:"id"`
	Variety              string     `json:"variety"`
	Cultivar             string     `json:"cultivar,omitempty"`
	LotNumber            string     `json:"lot_number,omitempty"`
	SoakHours            float64    `json:"soak_hours"`
	GerminationDays      float64    `json:"germination_days"`
	BlackoutDays         float64    `json:"blackout_days"`
	LightDays            float64    `json:"light_days"`
	SeedDensityGrams     float64    `json:"seed_density_grams"`
	ExpectedYieldGrams   float64    `json:"expected_yield_grams"`
	BufferPercent        float64    `json:"buffer_percent"`
	SuspendWateringHours float64    `json:"suspend_watering_hours"`
	Active               bool       `json:"active"`
	DepletedAt           *time.Time `json:"depleted_at,omitempty"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`
}

// Validate checks the protocol invariants: all durations non-negative,
// buffer percentage within [0,100].
func (p *GrowingProtocol) Validate() error {
	if p.Variety == "" {
		return fmt.Errorf("%w: variety is required", ErrInvalidProtocol)
	}
	durations := map[string]float64{
		"soak_hours":             p.SoakHours,
		"germination_days":       p.GerminationDays,
		"blackout_days":          p.BlackoutDays,
		"light_days":             p.LightDays,
		"suspend_watering_hours": p.SuspendWateringHours,
	}
	for name, d := range durations {
		if d < 0 {
			return fmt.Errorf("%w: %s must be >= 0, got %v", ErrInvalidProtocol, name, d)
		}
	}
	if p.SeedDensityGrams < 0 || p.ExpectedYieldGrams < 0 {
		return fmt.Errorf("%w: density and yield must be >= 0", ErrInvalidProtocol)
	}
	if p.BufferPercent < 0 || p.BufferPercent > 100 {
		return fmt.Errorf("%w: buffer_percent must be within [0,100], got %v", ErrInvalidProtocol, p.BufferPercent)
	}
	return nil
}

// SkipsBlackout reports whether batches on this protocol route
// germination directly to light.
func (p *GrowingProtocol) SkipsBlackout() bool {
	return p.BlackoutDays <= 0
}

// IsDepleted reports whether the protocol's seed lot has been flagged depleted
func (p *GrowingProtocol) IsDepleted() bool {
	return p.DepletedAt != nil
}

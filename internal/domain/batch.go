package domain

import (
	"time"

	"github.com/google/uuid"
)

// StageTimes holds the per-stage timestamps of a growth batch. Each is
// nil until the batch reaches that stage. The current stage is a pure
// function of these timestamps (see Infer), not an authoritative field.
type StageTimes struct {
	SoakedAt      *time.Time `json:"soaked_at,omitempty"`
	GerminationAt *time.Time `json:"germination_at,omitempty"`
	BlackoutAt    *time.Time `json:"blackout_at,omitempty"`
	LightAt       *time.Time `json:"light_at,omitempty"`
	HarvestedAt   *time.Time `json:"harvested_at,omitempty"`
}

// Get returns the timestamp recorded for the given stage
func (t *StageTimes) Get(stage Stage) *time.Time {
	switch stage {
	case StageSoaking:
		return t.SoakedAt
	case StageGermination:
		return t.GerminationAt
	case StageBlackout:
		return t.BlackoutAt
	case StageLight:
		return t.LightAt
	case StageHarvested:
		return t.HarvestedAt
	}
	return nil
}

// Set records the timestamp for the given stage
func (t *StageTimes) Set(stage Stage, at *time.Time) {
	switch stage {
	case StageSoaking:
		t.SoakedAt = at
	case StageGermination:
		t.GerminationAt = at
	case StageBlackout:
		t.BlackoutAt = at
	case StageLight:
		t.LightAt = at
	case StageHarvested:
		t.HarvestedAt = at
	}
}

// Infer derives the current stage: the latest stage whose timestamp is
// set, scanned from harvested backward. A batch with no timestamps at
// all is in the first stage.
func (t *StageTimes) Infer() Stage {
	for i := len(StageOrder) - 1; i >= 0; i-- {
		if t.Get(StageOrder[i]) != nil {
			return StageOrder[i]
		}
	}
	return StageOrder[0]
}

// GrowthBatch is a physically planted unit moving through the growth
// stages. Batches are historical records and are never deleted.
type GrowthBatch struct {
	ID                   uuid.UUID  `json:"id"`
	ProtocolID           uuid.UUID  `json:"protocol_id"`
	TrayIDs              []string   `json:"tray_ids,omitempty"`
	Times                StageTimes `json:"times"`
	CurrentStage         Stage      `json:"current_stage"`
	WateringSuspended    bool       `json:"watering_suspended"`
	WateringSuspendedAt  *time.Time `json:"watering_suspended_at,omitempty"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`
}

// PlantedAt returns the planting timestamp (the soak time), or the
// creation time when no soak was recorded.
func (b *GrowthBatch) PlantedAt() time.Time {
	if b.Times.SoakedAt != nil {
		return *b.Times.SoakedAt
	}
	return b.CreatedAt
}

package domain

// Stage represents a growth stage in a batch's lifecycle
type Stage string

const (
	StageSoaking     Stage = "soaking"
	StageGermination Stage = "germination"
	StageBlackout    Stage = "blackout"
	StageLight       Stage = "light"
	StageHarvested   Stage = "harvested"
)

// StageOrder is the fixed progression of growth stages.
// Blackout is skippable for protocols with a zero blackout duration;
// every other stage is mandatory.
var StageOrder = []Stage{
	StageSoaking,
	StageGermination,
	StageBlackout,
	StageLight,
	StageHarvested,
}

// Index returns the position of the stage in StageOrder, or -1 if unknown
func (s Stage) Index() int {
	for i, stage := range StageOrder {
		if stage == s {
			return i
		}
	}
	return -1
}

// Valid reports whether the stage is one of the known growth stages
func (s Stage) Valid() bool {
	return s.Index() >= 0
}

// IsTerminal reports whether the stage is the final stage
func (s Stage) IsTerminal() bool {
	return s == StageHarvested
}

// Next returns the stage after s, skipping blackout when skipBlackout is set.
// ok is false when s is terminal or unknown.
func (s Stage) Next(skipBlackout bool) (next Stage, ok bool) {
	idx := s.Index()
	if idx < 0 || idx == len(StageOrder)-1 {
		return "", false
	}
	next = StageOrder[idx+1]
	if next == StageBlackout && skipBlackout {
		next = StageLight
	}
	return next, true
}

package yield

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/tillgreens/microfarm/internal/domain"
	"github.com/tillgreens/microfarm/internal/logger"
	"github.com/tillgreens/microfarm/internal/repository"
)

// Service defines the interface for yield estimation
type Service interface {
	// Estimate returns the recency-weighted per-tray yield for a variety.
	// ok is false when no harvest history falls inside the lookback window.
	Estimate(ctx context.Context, variety, cultivar string, asOf time.Time) (estimate float64, ok bool, err error)

	// PlanningYield returns the per-tray yield to plan against: the
	// historical estimate when available, the protocol's expected yield
	// otherwise, discounted by the protocol's buffer percentage.
	PlanningYield(ctx context.Context, p *domain.GrowingProtocol, asOf time.Time) (float64, error)

	// RecordHarvest appends a yield observation to the history
	RecordHarvest(ctx context.Context, rec *domain.HarvestRecord) error
}

type service struct {
	repo         repository.HarvestHistory
	windowMonths int
	decayDays    float64
}

// NewService creates a new yield estimator. windowMonths bounds how far
// back history is read; decayDays is the e-folding time of the recency
// weighting.
func NewService(repo repository.HarvestHistory, windowMonths int, decayDays float64) Service {
	return &service{
		repo:         repo,
		windowMonths: windowMonths,
		decayDays:    decayDays,
	}
}

func (s *service) Estimate(ctx context.Context, variety, cultivar string, asOf time.Time) (float64, bool, error) {
	since := asOf.AddDate(0, -s.windowMonths, 0)
	records, err := s.repo.ListRecords(ctx, variety, cultivar, since)
	if err != nil {
		return 0, false, fmt.Errorf("failed to list harvest records: %w", err)
	}

	var weightedSum, weightTotal float64
	for _, rec := range records {
		if rec.HarvestedAt.After(asOf) {
			continue
		}
		ageDays := asOf.Sub(rec.HarvestedAt).Hours() / 24
		weight := math.Exp(-ageDays / s.decayDays)
		weightedSum += rec.AvgWeightPerTrayG * weight
		weightTotal += weight
	}
	if weightTotal == 0 {
		return 0, false, nil
	}
	return weightedSum / weightTotal, true, nil
}

func (s *service) PlanningYield(ctx context.Context, p *domain.GrowingProtocol, asOf time.Time) (float64, error) {
	log := logger.FromContext(ctx)

	estimate, ok, err := s.Estimate(ctx, p.Variety, p.Cultivar, asOf)
	if err != nil {
		return 0, err
	}
	if !ok {
		estimate = p.ExpectedYieldGrams
		log.Debug("No harvest history, using protocol expected yield",
			"variety", p.Variety, "expected_g", estimate)
	}
	if estimate <= 0 {
		return 0, fmt.Errorf("%w: protocol %s has no usable yield", domain.ErrInvalidProtocol, p.ID)
	}
	return estimate / (1 + p.BufferPercent/100), nil
}

func (s *service) RecordHarvest(ctx context.Context, rec *domain.HarvestRecord) error {
	if rec.Variety == "" {
		return fmt.Errorf("%w: variety is required", domain.ErrInvalidInput)
	}
	if rec.AvgWeightPerTrayG <= 0 {
		return fmt.Errorf("%w: avg weight must be positive", domain.ErrInvalidInput)
	}
	if rec.HarvestedAt.IsZero() {
		rec.HarvestedAt = time.Now()
	}
	if err := s.repo.AddRecord(ctx, rec); err != nil {
		return fmt.Errorf("failed to add harvest record: %w", err)
	}
	return nil
}

package depletion

import (
	"context"
	"fmt"
	"time"

	"github.com/tillgreens/microfarm/internal/domain"
	"github.com/tillgreens/microfarm/internal/event"
	"github.com/tillgreens/microfarm/internal/inventory"
	"github.com/tillgreens/microfarm/internal/logger"
	"github.com/tillgreens/microfarm/internal/metrics"
	"github.com/tillgreens/microfarm/internal/notification"
	"github.com/tillgreens/microfarm/internal/repository"
)

// Service defines the interface for stock health monitoring
type Service interface {
	// CheckLot classifies one lot's stock level
	CheckLot(ctx context.Context, lotNumber string) (*domain.LotHealth, error)

	// Sweep classifies every known lot, auto-flags active protocols whose
	// lot is exhausted and raises alerts for anything not healthy.
	Sweep(ctx context.Context) ([]*domain.LotHealth, error)
}

type service struct {
	inv             inventory.Service
	protocols       repository.Protocol
	dispatcher      notification.Dispatcher
	bus             event.Bus
	lowStockPercent float64
	now             func() time.Time
}

// NewService creates a new depletion monitor. lowStockPercent is the
// inclusive threshold below which a lot is reported low.
func NewService(
	inv inventory.Service,
	protocols repository.Protocol,
	dispatcher notification.Dispatcher,
	bus event.Bus,
	lowStockPercent float64,
) Service {
	return &service{
		inv:             inv,
		protocols:       protocols,
		dispatcher:      dispatcher,
		bus:             bus,
		lowStockPercent: lowStockPercent,
		now:             time.Now,
	}
}

func (s *service) CheckLot(ctx context.Context, lotNumber string) (*domain.LotHealth, error) {
	summary, err := s.inv.Summary(ctx, lotNumber)
	if err != nil {
		return nil, err
	}

	flagged, err := s.lotFlaggedDepleted(ctx, lotNumber)
	if err != nil {
		return nil, err
	}
	return classify(summary, flagged, s.lowStockPercent), nil
}

// lotFlaggedDepleted reports whether any active protocol on the lot
// carries a manual depletion flag
func (s *service) lotFlaggedDepleted(ctx context.Context, lotNumber string) (bool, error) {
	protocols, err := s.protocols.ListActiveProtocols(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to list protocols: %w", err)
	}
	for _, p := range protocols {
		if p.LotNumber == lotNumber && p.IsDepleted() {
			return true, nil
		}
	}
	return false, nil
}

// classify grades a lot summary against the low-stock threshold
func classify(summary *domain.LotSummary, flagged bool, lowStockPercent float64) *domain.LotHealth {
	health := &domain.LotHealth{
		LotNumber: summary.LotNumber,
		Summary:   *summary,
	}

	if summary.TotalGrams.IsPositive() {
		ratio, _ := summary.AvailableGrams.Div(summary.TotalGrams).Float64()
		health.AvailablePercent = ratio * 100
	}

	switch {
	case flagged || !summary.AvailableGrams.IsPositive():
		health.Level = domain.StockDepleted
	case health.AvailablePercent <= lowStockPercent:
		health.Level = domain.StockLow
	default:
		health.Level = domain.StockHealthy
	}
	return health
}

func (s *service) Sweep(ctx context.Context) ([]*domain.LotHealth, error) {
	log := logger.FromContext(ctx)

	lots, err := s.inv.ListLots(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list lots: %w", err)
	}
	protocols, err := s.protocols.ListActiveProtocols(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list protocols: %w", err)
	}

	flaggedLots := make(map[string]bool)
	for _, p := range protocols {
		if p.IsDepleted() {
			flaggedLots[p.LotNumber] = true
		}
	}

	var out []*domain.LotHealth
	for _, lot := range lots {
		summary, err := s.inv.Summary(ctx, lot)
		if err != nil {
			log.Error("Failed to summarize lot", "lot_number", lot, "error", err)
			continue
		}
		health := classify(summary, flaggedLots[lot], s.lowStockPercent)
		out = append(out, health)

		if health.Level == domain.StockDepleted {
			s.autoFlag(ctx, protocols, lot)
		}
		if health.Level != domain.StockHealthy {
			s.alert(ctx, health)
		}
	}

	log.Info("Depletion sweep completed", "lots", len(out))
	return out, nil
}

// autoFlag marks every active unflagged protocol on an exhausted lot.
// The flag is one-way and repeating the sweep changes nothing.
func (s *service) autoFlag(ctx context.Context, protocols []*domain.GrowingProtocol, lotNumber string) {
	log := logger.FromContext(ctx)
	for _, p := range protocols {
		if p.LotNumber != lotNumber || p.IsDepleted() {
			continue
		}
		if err := s.protocols.MarkDepleted(ctx, p.ID, s.now()); err != nil {
			log.Error("Failed to flag protocol depleted",
				"protocol_id", p.ID, "lot_number", lotNumber, "error", err)
			continue
		}
		log.Warn("Protocol flagged depleted", "protocol_id", p.ID, "variety", p.Variety, "lot_number", lotNumber)
	}
}

// alert raises the stock event and hands a notification to the dispatcher
func (s *service) alert(ctx context.Context, health *domain.LotHealth) {
	log := logger.FromContext(ctx)

	metrics.DepletionAlerts.WithLabelValues(string(health.Level)).Inc()

	if err := s.bus.Publish(ctx, event.NewLotStockEvent(*health)); err != nil {
		log.Error("Failed to publish stock event", "lot_number", health.LotNumber, "error", err)
	}

	severity := domain.SeverityWarning
	if health.Level == domain.StockDepleted {
		severity = domain.SeverityCritical
	}
	n := domain.Notification{
		Severity: severity,
		Subject:  fmt.Sprintf("Seed lot %s is %s", health.LotNumber, health.Level),
		Body: fmt.Sprintf("Lot %s has %sg available of %sg total (%.1f%%)",
			health.LotNumber,
			health.Summary.AvailableGrams,
			health.Summary.TotalGrams,
			health.AvailablePercent),
		Targets: []string{health.LotNumber},
	}
	if err := s.dispatcher.Dispatch(ctx, n); err != nil {
		log.Error("Failed to dispatch notification", "lot_number", health.LotNumber, "error", err)
	}
}

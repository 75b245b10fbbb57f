package planner

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tillgreens/microfarm/internal/catalog"
	"github.com/tillgreens/microfarm/internal/domain"
	"github.com/tillgreens/microfarm/internal/inventory"
	"github.com/tillgreens/microfarm/internal/logger"
	"github.com/tillgreens/microfarm/internal/metrics"
	"github.com/tillgreens/microfarm/internal/repository"
	"github.com/tillgreens/microfarm/internal/yield"
)

// Service defines the interface for requirement planning
type Service interface {
	// PlanOrder computes requirement records for one order. Items that
	// cannot be resolved are reported as issues, not failed outright.
	PlanOrder(ctx context.Context, order *domain.Order) (*domain.PlanReport, error)

	// PlanOrders computes requirements for a collection of orders in one
	// pass. Per-order records are still produced; consolidation into
	// shared batches is the aggregator's separate step.
	PlanOrders(ctx context.Context, orders []*domain.Order) (*domain.PlanReport, error)
}

type service struct {
	catalog   catalog.Service
	yield     yield.Service
	protocols repository.Protocol
	reqs      repository.Requirement
	inv       inventory.Service
	now       func() time.Time
}

// NewService creates a new planning service
func NewService(
	cat catalog.Service,
	yld yield.Service,
	protocols repository.Protocol,
	reqs repository.Requirement,
	inv inventory.Service,
) Service {
	return &service{
		catalog:   cat,
		yield:     yld,
		protocols: protocols,
		reqs:      reqs,
		inv:       inv,
		now:       time.Now,
	}
}

// varietyDemand accumulates gram demand for one variety within an order
type varietyDemand struct {
	variety domain.Variety
	grams   float64
}

func (s *service) PlanOrder(ctx context.Context, order *domain.Order) (*domain.PlanReport, error) {
	return s.PlanOrders(ctx, []*domain.Order{order})
}

func (s *service) PlanOrders(ctx context.Context, orders []*domain.Order) (*domain.PlanReport, error) {
	log := logger.FromContext(ctx)
	report := &domain.PlanReport{Feasible: true}

	for _, order := range orders {
		if order.DeliveryDate.IsZero() {
			report.Issues = append(report.Issues, domain.PlanIssue{
				OrderID: order.ID,
				Message: "order has no delivery date",
			})
			continue
		}

		demand := s.collectDemand(ctx, order, report)

		for _, d := range demand {
			rec, err := s.buildRequirement(ctx, order, d)
			if err != nil {
				report.Issues = append(report.Issues, domain.PlanIssue{
					OrderID: order.ID,
					Item:    d.variety.Name,
					Message: err.Error(),
				})
				continue
			}
			if err := s.reqs.CreateRequirement(ctx, rec); err != nil {
				return nil, fmt.Errorf("failed to create requirement: %w", err)
			}
			metrics.RequirementsPlanned.WithLabelValues(d.variety.Name).Inc()
			report.Requirements = append(report.Requirements, rec)
		}
	}

	s.checkSeedStock(ctx, report)

	if len(report.Issues) > 0 {
		report.Feasible = false
		metrics.PlanIssues.Add(float64(len(report.Issues)))
	}
	log.Info("Planning completed",
		"orders", len(orders),
		"requirements", len(report.Requirements),
		"issues", len(report.Issues))
	return report, nil
}

// collectDemand resolves an order's items into per-variety gram demand.
// Items sharing a variety (directly or through blends) are summed so one
// requirement covers them all.
func (s *service) collectDemand(ctx context.Context, order *domain.Order, report *domain.PlanReport) []*varietyDemand {
	log := logger.FromContext(ctx)

	byName := make(map[string]*varietyDemand)
	var ordered []*varietyDemand

	add := func(v domain.Variety, grams float64) {
		if d, ok := byName[v.Name]; ok {
			d.grams += grams
			return
		}
		d := &varietyDemand{variety: v, grams: grams}
		byName[v.Name] = d
		ordered = append(ordered, d)
	}

	for _, item := range order.Items {
		if item.Quantity <= 0 {
			report.Issues = append(report.Issues, domain.PlanIssue{
				OrderID: order.ID,
				Item:    item.ProductName,
				Message: "quantity must be positive",
			})
			continue
		}

		product, err := s.catalog.ResolveProduct(ctx, item.ProductName)
		if err != nil {
			log.Warn("Unresolved product skipped", "order_id", order.ID, "product", item.ProductName)
			report.Issues = append(report.Issues, domain.PlanIssue{
				OrderID: order.ID,
				Item:    item.ProductName,
				Message: err.Error(),
			})
			continue
		}

		itemGrams := product.FillWeightGrams * float64(item.Quantity)

		if len(product.Blend) == 0 {
			v, err := s.catalog.ResolveVariety(ctx, product.Name)
			if err != nil {
				log.Warn("Unresolved variety skipped", "order_id", order.ID, "product", product.Name)
				report.Issues = append(report.Issues, domain.PlanIssue{
					OrderID: order.ID,
					Item:    item.ProductName,
					Message: err.Error(),
				})
				continue
			}
			add(v, itemGrams)
			continue
		}

		for _, comp := range product.Blend {
			v, err := s.catalog.ResolveVariety(ctx, comp.Variety)
			if err != nil {
				report.Issues = append(report.Issues, domain.PlanIssue{
					OrderID: order.ID,
					Item:    item.ProductName,
					Message: fmt.Sprintf("blend component %s: %v", comp.Variety, err),
				})
				continue
			}
			add(v, itemGrams*comp.Percent/100)
		}
	}
	return ordered
}

// buildRequirement turns one variety's demand into a draft requirement record
func (s *service) buildRequirement(ctx context.Context, order *domain.Order, d *varietyDemand) (*domain.RequirementRecord, error) {
	protocol, err := s.protocols.GetProtocolByVariety(ctx, d.variety.Name, d.variety.Cultivar)
	if err != nil {
		if errors.Is(err, domain.ErrProtocolNotFound) {
			return nil, fmt.Errorf("no active protocol for variety %s", d.variety.Name)
		}
		return nil, err
	}
	if protocol.IsDepleted() {
		return nil, fmt.Errorf("seed lot %s for %s is depleted", protocol.LotNumber, d.variety.Name)
	}

	harvestOn := order.DeliveryDate
	planningYield, err := s.yield.PlanningYield(ctx, protocol, harvestOn)
	if err != nil {
		return nil, err
	}

	trays := int(math.Ceil(d.grams / planningYield))
	if trays < 1 {
		trays = 1
	}

	now := s.now()
	return &domain.RequirementRecord{
		ID:         uuid.New(),
		OrderID:    order.ID,
		ProtocolID: protocol.ID,
		Trays:      trays,
		Grams:      d.grams,
		PlantBy:    plantBy(protocol, harvestOn),
		HarvestOn:  harvestOn,
		Status:     domain.RequirementDraft,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

// plantBy backs the planting deadline off the harvest date by the
// protocol's full grow duration.
func plantBy(p *domain.GrowingProtocol, harvestOn time.Time) time.Time {
	growHours := p.SoakHours + 24*(p.GerminationDays+p.BlackoutDays+p.LightDays)
	return harvestOn.Add(-time.Duration(growHours * float64(time.Hour)))
}

// checkSeedStock verifies the planned requirements can be seeded from
// current inventory, accumulating demand per lot across the whole plan.
func (s *service) checkSeedStock(ctx context.Context, report *domain.PlanReport) {
	type lotDemand struct {
		lot   string
		grams float64
	}
	byLot := make(map[string]*lotDemand)
	var ordered []*lotDemand

	for _, rec := range report.Requirements {
		protocol, err := s.protocols.GetProtocol(ctx, rec.ProtocolID)
		if err != nil || protocol.LotNumber == "" || protocol.SeedDensityGrams <= 0 {
			continue
		}
		d, ok := byLot[protocol.LotNumber]
		if !ok {
			d = &lotDemand{lot: protocol.LotNumber}
			byLot[protocol.LotNumber] = d
			ordered = append(ordered, d)
		}
		d.grams += float64(rec.Trays) * protocol.SeedDensityGrams
	}

	for _, d := range ordered {
		available, err := s.inv.Available(ctx, d.lot)
		if err != nil {
			report.Issues = append(report.Issues, domain.PlanIssue{
				Item:    d.lot,
				Message: fmt.Sprintf("failed to check lot stock: %v", err),
			})
			continue
		}
		need := decimal.NewFromFloat(d.grams)
		if available.LessThan(need) {
			report.Issues = append(report.Issues, domain.PlanIssue{
				Item: d.lot,
				Message: fmt.Sprintf("lot %s has %sg seed, plan needs %.1fg",
					d.lot, available, d.grams),
			})
		}
	}
}

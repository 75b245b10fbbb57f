package planner

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tillgreens/microfarm/internal/catalog"
	"github.com/tillgreens/microfarm/internal/concurrency"
	"github.com/tillgreens/microfarm/internal/database/memory"
	"github.com/tillgreens/microfarm/internal/domain"
	"github.com/tillgreens/microfarm/internal/inventory"
	"github.com/tillgreens/microfarm/internal/yield"
)

const plannerCatalogJSON = `{
  "version": "1.0",
  "products": [
    {"name": "Pea Shoots 50g", "fill_weight_grams": 50},
    {"name": "Sunflower 100g", "fill_weight_grams": 100},
    {"name": "Spicy Mix 40g", "fill_weight_grams": 40, "blend": [
      {"variety": "radish", "percent": 60},
      {"variety": "mustard", "percent": 40}
    ]},
    {"name": "Mystery Box", "fill_weight_grams": 30}
  ],
  "varieties": [
    {"name": "pea"},
    {"name": "sunflower"},
    {"name": "radish"},
    {"name": "mustard"}
  ]
}`

type fixture struct {
	svc       Service
	protocols *memory.ProtocolRepository
	reqs      *memory.RequirementRepository
	invRepo   *memory.InventoryRepository
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	path := filepath.Join(t.TempDir(), "catalog.json")
	require.NoError(t, os.WriteFile(path, []byte(plannerCatalogJSON), 0o644))
	cat, err := catalog.NewService(catalog.NewLoader(), path)
	require.NoError(t, err)

	protocols := memory.NewProtocolRepository()
	reqs := memory.NewRequirementRepository()
	invRepo := memory.NewInventoryRepository()
	invSvc := inventory.NewService(invRepo, concurrency.NewLockManager())
	yldSvc := yield.NewService(memory.NewHarvestHistoryRepository(), 6, 30)

	return &fixture{
		svc:       NewService(cat, yldSvc, protocols, reqs, invSvc),
		protocols: protocols,
		reqs:      reqs,
		invRepo:   invRepo,
	}
}

func (f *fixture) addProtocol(t *testing.T, variety, lot string, expectedYield, buffer float64) *domain.GrowingProtocol {
	t.Helper()
	p := &domain.GrowingProtocol{
		Variety:            variety,
		LotNumber:          lot,
		GerminationDays:    3,
		LightDays:          7,
		SeedDensityGrams:   25,
		ExpectedYieldGrams: expectedYield,
		BufferPercent:      buffer,
		Active:             true,
	}
	require.NoError(t, f.protocols.CreateProtocol(context.Background(), p))
	return p
}

func (f *fixture) stockLot(t *testing.T, lot string, grams float64) {
	t.Helper()
	require.NoError(t, f.invRepo.CreateEntry(context.Background(), &domain.InventoryLotEntry{
		LotNumber:  lot,
		TotalGrams: decimal.NewFromFloat(grams),
		Active:     true,
		CreatedAt:  time.Now(),
	}))
}

func TestPlanOrder_SingleVariety(t *testing.T) {
	f := newFixture(t)
	f.addProtocol(t, "pea", "LOT-PEA", 200, 0)
	f.stockLot(t, "LOT-PEA", 10000)

	delivery := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	report, err := f.svc.PlanOrder(context.Background(), &domain.Order{
		ID:           "ORD-1",
		Items:        []domain.OrderItem{{ProductName: "Pea Shoots 50g", Quantity: 10}},
		DeliveryDate: delivery,
	})
	require.NoError(t, err)
	assert.True(t, report.Feasible)
	require.Len(t, report.Requirements, 1)

	rec := report.Requirements[0]
	assert.Equal(t, "ORD-1", rec.OrderID)
	assert.Equal(t, 500.0, rec.Grams)
	// 500g / 200g-per-tray = 2.5, rounds up
	assert.Equal(t, 3, rec.Trays)
	assert.Equal(t, domain.RequirementDraft, rec.Status)
	assert.Equal(t, delivery, rec.HarvestOn)
	// 3 germination days + 7 light days back from harvest
	assert.Equal(t, delivery.AddDate(0, 0, -10), rec.PlantBy)
}

func TestPlanOrder_BufferRaisesTrayCount(t *testing.T) {
	f := newFixture(t)
	f.addProtocol(t, "sunflower", "LOT-SUN", 200, 10)
	f.stockLot(t, "LOT-SUN", 10000)

	report, err := f.svc.PlanOrder(context.Background(), &domain.Order{
		ID:           "ORD-1",
		Items:        []domain.OrderItem{{ProductName: "Sunflower 100g", Quantity: 8}},
		DeliveryDate: time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	require.Len(t, report.Requirements, 1)
	// 800g at planning yield 200/1.1 = 181.82 needs 4.4 trays, rounds
	// up to 5; the raw yield would have needed only 4
	assert.Equal(t, 5, report.Requirements[0].Trays)
}

func TestPlanOrder_BlendSplitsByPercent(t *testing.T) {
	f := newFixture(t)
	f.addProtocol(t, "radish", "LOT-RAD", 150, 0)
	f.addProtocol(t, "mustard", "LOT-MUS", 100, 0)
	f.stockLot(t, "LOT-RAD", 10000)
	f.stockLot(t, "LOT-MUS", 10000)

	report, err := f.svc.PlanOrder(context.Background(), &domain.Order{
		ID:           "ORD-1",
		Items:        []domain.OrderItem{{ProductName: "Spicy Mix 40g", Quantity: 25}},
		DeliveryDate: time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.True(t, report.Feasible)
	require.Len(t, report.Requirements, 2)

	byGrams := map[float64]bool{}
	for _, rec := range report.Requirements {
		byGrams[rec.Grams] = true
	}
	// 1000g total: 60% radish, 40% mustard
	assert.True(t, byGrams[600.0])
	assert.True(t, byGrams[400.0])
}

func TestPlanOrder_SharedVarietyAccumulates(t *testing.T) {
	f := newFixture(t)
	f.addProtocol(t, "pea", "LOT-PEA", 200, 0)
	f.stockLot(t, "LOT-PEA", 10000)

	report, err := f.svc.PlanOrder(context.Background(), &domain.Order{
		ID: "ORD-1",
		Items: []domain.OrderItem{
			{ProductName: "Pea Shoots 50g", Quantity: 4},
			{ProductName: "Pea Shoots 50g", Quantity: 6},
		},
		DeliveryDate: time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	require.Len(t, report.Requirements, 1, "same variety demand folds into one record")
	assert.Equal(t, 500.0, report.Requirements[0].Grams)
}

func TestPlanOrder_UnresolvedItemSkippedWithIssue(t *testing.T) {
	f := newFixture(t)
	f.addProtocol(t, "pea", "LOT-PEA", 200, 0)
	f.stockLot(t, "LOT-PEA", 10000)

	report, err := f.svc.PlanOrder(context.Background(), &domain.Order{
		ID: "ORD-1",
		Items: []domain.OrderItem{
			{ProductName: "Pea Shoots 50g", Quantity: 2},
			{ProductName: "Dragon Fruit Tray", Quantity: 1},
		},
		DeliveryDate: time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.False(t, report.Feasible)
	assert.Len(t, report.Requirements, 1, "resolvable items still plan")
	require.Len(t, report.Issues, 1)
	assert.Equal(t, "Dragon Fruit Tray", report.Issues[0].Item)
}

func TestPlanOrder_UnresolvedVarietyInProductName(t *testing.T) {
	f := newFixture(t)

	report, err := f.svc.PlanOrder(context.Background(), &domain.Order{
		ID:           "ORD-1",
		Items:        []domain.OrderItem{{ProductName: "Mystery Box", Quantity: 1}},
		DeliveryDate: time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.Empty(t, report.Requirements, "no zero-value record is created")
	assert.NotEmpty(t, report.Issues)
}

func TestPlanOrder_DepletedProtocolReported(t *testing.T) {
	f := newFixture(t)
	p := f.addProtocol(t, "pea", "LOT-PEA", 200, 0)
	now := time.Now()
	require.NoError(t, f.protocols.MarkDepleted(context.Background(), p.ID, now))

	report, err := f.svc.PlanOrder(context.Background(), &domain.Order{
		ID:           "ORD-1",
		Items:        []domain.OrderItem{{ProductName: "Pea Shoots 50g", Quantity: 1}},
		DeliveryDate: time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.False(t, report.Feasible)
	assert.Empty(t, report.Requirements)
	require.Len(t, report.Issues, 1)
	assert.Contains(t, report.Issues[0].Message, "depleted")
}

func TestPlanOrder_MinimumOneTray(t *testing.T) {
	f := newFixture(t)
	f.addProtocol(t, "pea", "LOT-PEA", 5000, 0)
	f.stockLot(t, "LOT-PEA", 10000)

	report, err := f.svc.PlanOrder(context.Background(), &domain.Order{
		ID:           "ORD-1",
		Items:        []domain.OrderItem{{ProductName: "Pea Shoots 50g", Quantity: 1}},
		DeliveryDate: time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	require.Len(t, report.Requirements, 1)
	assert.Equal(t, 1, report.Requirements[0].Trays)
}

func TestPlanOrders_SeedStockShortfallFlagged(t *testing.T) {
	f := newFixture(t)
	f.addProtocol(t, "pea", "LOT-PEA", 200, 0)
	// 3 trays at 25g density needs 75g, stock only 50g
	f.stockLot(t, "LOT-PEA", 50)

	report, err := f.svc.PlanOrders(context.Background(), []*domain.Order{{
		ID:           "ORD-1",
		Items:        []domain.OrderItem{{ProductName: "Pea Shoots 50g", Quantity: 10}},
		DeliveryDate: time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC),
	}})
	require.NoError(t, err)
	assert.False(t, report.Feasible)
	assert.Len(t, report.Requirements, 1, "records are still produced")
	require.Len(t, report.Issues, 1)
	assert.Contains(t, report.Issues[0].Message, "LOT-PEA")
}

func TestPlanOrders_MultipleOrders(t *testing.T) {
	f := newFixture(t)
	f.addProtocol(t, "pea", "LOT-PEA", 200, 0)
	f.addProtocol(t, "sunflower", "LOT-SUN", 250, 0)
	f.stockLot(t, "LOT-PEA", 10000)
	f.stockLot(t, "LOT-SUN", 10000)

	delivery := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	report, err := f.svc.PlanOrders(context.Background(), []*domain.Order{
		{
			ID:           "ORD-1",
			Items:        []domain.OrderItem{{ProductName: "Pea Shoots 50g", Quantity: 4}},
			DeliveryDate: delivery,
		},
		{
			ID:           "ORD-2",
			Items:        []domain.OrderItem{{ProductName: "Sunflower 100g", Quantity: 2}},
			DeliveryDate: delivery,
		},
	})
	require.NoError(t, err)
	assert.True(t, report.Feasible)
	assert.Len(t, report.Requirements, 2)

	// records land in the repository, one per order
	recs, err := f.reqs.ListByOrder(context.Background(), "ORD-1")
	require.NoError(t, err)
	assert.Len(t, recs, 1)
}

func TestPlanOrder_MissingDeliveryDate(t *testing.T) {
	f := newFixture(t)

	report, err := f.svc.PlanOrder(context.Background(), &domain.Order{ID: "ORD-1"})
	require.NoError(t, err)
	assert.False(t, report.Feasible)
	require.Len(t, report.Issues, 1)
	assert.Contains(t, report.Issues[0].Message, "delivery date")
}

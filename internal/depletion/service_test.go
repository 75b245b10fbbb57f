package depletion

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tillgreens/microfarm/internal/concurrency"
	"github.com/tillgreens/microfarm/internal/database/memory"
	"github.com/tillgreens/microfarm/internal/domain"
	"github.com/tillgreens/microfarm/internal/event"
	"github.com/tillgreens/microfarm/internal/inventory"
	"github.com/tillgreens/microfarm/internal/notification"
)

type fixture struct {
	svc        Service
	invSvc     inventory.Service
	invRepo    *memory.InventoryRepository
	protocols  *memory.ProtocolRepository
	dispatcher *notification.MemoryDispatcher
	bus        *event.MemoryBus
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	invRepo := memory.NewInventoryRepository()
	invSvc := inventory.NewService(invRepo, concurrency.NewLockManager())
	protocols := memory.NewProtocolRepository()
	dispatcher := notification.NewMemoryDispatcher()
	bus := event.NewMemoryBus()
	return &fixture{
		svc:        NewService(invSvc, protocols, dispatcher, bus, 15),
		invSvc:     invSvc,
		invRepo:    invRepo,
		protocols:  protocols,
		dispatcher: dispatcher,
		bus:        bus,
	}
}

func (f *fixture) stockLot(t *testing.T, lot string, totalG, consumedG float64) {
	t.Helper()
	require.NoError(t, f.invRepo.CreateEntry(context.Background(), &domain.InventoryLotEntry{
		LotNumber:     lot,
		TotalGrams:    decimal.NewFromFloat(totalG),
		ConsumedGrams: decimal.NewFromFloat(consumedG),
		Active:        true,
		CreatedAt:     time.Now(),
	}))
}

func (f *fixture) addProtocol(t *testing.T, variety, lot string) *domain.GrowingProtocol {
	t.Helper()
	p := &domain.GrowingProtocol{
		Variety:            variety,
		LotNumber:          lot,
		GerminationDays:    3,
		LightDays:          7,
		ExpectedYieldGrams: 200,
		Active:             true,
	}
	require.NoError(t, f.protocols.CreateProtocol(context.Background(), p))
	return p
}

func TestCheckLot_Classification(t *testing.T) {
	tests := []struct {
		name     string
		totalG   float64
		consumed float64
		want     domain.StockLevel
	}{
		{name: "healthy", totalG: 1000, consumed: 100, want: domain.StockHealthy},
		{name: "low at threshold", totalG: 1000, consumed: 850, want: domain.StockLow},
		{name: "low under threshold", totalG: 1000, consumed: 950, want: domain.StockLow},
		{name: "just above threshold", totalG: 1000, consumed: 840, want: domain.StockHealthy},
		{name: "depleted", totalG: 1000, consumed: 1000, want: domain.StockDepleted},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.stockLot(t, "LOT-A", tt.totalG, tt.consumed)

			health, err := f.svc.CheckLot(context.Background(), "LOT-A")
			require.NoError(t, err)
			assert.Equal(t, tt.want, health.Level)
		})
	}
}

func TestCheckLot_ManualFlagForcesDepleted(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.stockLot(t, "LOT-A", 1000, 0)
	p := f.addProtocol(t, "pea", "LOT-A")
	require.NoError(t, f.protocols.MarkDepleted(ctx, p.ID, time.Now()))

	health, err := f.svc.CheckLot(ctx, "LOT-A")
	require.NoError(t, err)
	assert.Equal(t, domain.StockDepleted, health.Level, "flag wins over remaining stock")
}

func TestSweep_AutoFlagsExhaustedProtocols(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.stockLot(t, "LOT-A", 500, 500)
	p := f.addProtocol(t, "pea", "LOT-A")

	_, err := f.svc.Sweep(ctx)
	require.NoError(t, err)

	got, err := f.protocols.GetProtocol(ctx, p.ID)
	require.NoError(t, err)
	require.NotNil(t, got.DepletedAt)

	flaggedAt := *got.DepletedAt

	// re-running the sweep must not move the timestamp
	_, err = f.svc.Sweep(ctx)
	require.NoError(t, err)
	got, err = f.protocols.GetProtocol(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, flaggedAt, *got.DepletedAt, "flagging is one-way and idempotent")
}

func TestSweep_HealthyLotsUntouched(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.stockLot(t, "LOT-A", 1000, 0)
	p := f.addProtocol(t, "pea", "LOT-A")

	healths, err := f.svc.Sweep(ctx)
	require.NoError(t, err)
	require.Len(t, healths, 1)
	assert.Equal(t, domain.StockHealthy, healths[0].Level)

	got, err := f.protocols.GetProtocol(ctx, p.ID)
	require.NoError(t, err)
	assert.Nil(t, got.DepletedAt)
	assert.Empty(t, f.dispatcher.Sent())
}

func TestSweep_AlertsForUnhealthyLots(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.stockLot(t, "LOT-LOW", 1000, 900)
	f.stockLot(t, "LOT-GONE", 500, 500)
	f.stockLot(t, "LOT-OK", 1000, 0)

	var depleted, low int
	f.bus.Subscribe(event.LotDepleted, func(_ context.Context, _ event.Event) error {
		depleted++
		return nil
	})
	f.bus.Subscribe(event.LotLowStock, func(_ context.Context, _ event.Event) error {
		low++
		return nil
	})

	_, err := f.svc.Sweep(ctx)
	require.NoError(t, err)

	assert.Equal(t, 1, depleted)
	assert.Equal(t, 1, low)

	sent := f.dispatcher.Sent()
	require.Len(t, sent, 2)
	severities := map[domain.Severity]int{}
	for _, n := range sent {
		severities[n.Severity]++
	}
	assert.Equal(t, 1, severities[domain.SeverityCritical])
	assert.Equal(t, 1, severities[domain.SeverityWarning])
}

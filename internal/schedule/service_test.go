package schedule

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
	"github.com/tillgreens/microfarm/internal/lifecycle"
)

type fixture struct {
	svc         *service
	lifecycle   lifecycle.Service
	batches     *memory.BatchRepository
	protocols   *memory.ProtocolRepository
	transitions *memory.TransitionRepository
	clock       time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	batches := memory.NewBatchRepository()
	protocols := memory.NewProtocolRepository()
	transitions := memory.NewTransitionRepository()
	invRepo := memory.NewInventoryRepository()
	locks := concurrency.NewLockManager()
	invSvc := inventory.NewService(invRepo, locks)
	lc := lifecycle.NewService(batches, protocols, invSvc, locks, event.NewMemoryBus())

	require.NoError(t, invRepo.CreateEntry(context.Background(), &domain.InventoryLotEntry{
		LotNumber:  "LOT-PEA",
		TotalGrams: decimal.NewFromInt(100000),
		Active:     true,
		CreatedAt:  time.Now(),
	}))

	f := &fixture{
		lifecycle:   lc,
		batches:     batches,
		protocols:   protocols,
		transitions: transitions,
		clock:       time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	f.svc = NewService(transitions, batches, protocols, lc).(*service)
	f.svc.now = func() time.Time { return f.clock }
	return f
}

func (f *fixture) addProtocol(t *testing.T, germ, blackout, light, suspendHours float64) *domain.GrowingProtocol {
	t.Helper()
	p := &domain.GrowingProtocol{
		Variety:              "pea",
		LotNumber:            "LOT-PEA",
		GerminationDays:      germ,
		BlackoutDays:         blackout,
		LightDays:            light,
		SeedDensityGrams:     25,
		ExpectedYieldGrams:   200,
		SuspendWateringHours: suspendHours,
		Active:               true,
	}
	require.NoError(t, f.protocols.CreateProtocol(context.Background(), p))
	return p
}

func (f *fixture) plant(t *testing.T, p *domain.GrowingProtocol) *domain.GrowthBatch {
	t.Helper()
	batch, err := f.lifecycle.Plant(context.Background(), lifecycle.PlantRequest{
		ProtocolID: p.ID,
		Trays:      1,
		At:         f.clock,
	})
	require.NoError(t, err)
	return batch
}

func TestCompute_NoBlackout(t *testing.T) {
	f := newFixture(t)
	p := f.addProtocol(t, 3, 0, 7, 0)
	plantedAt := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	plan := f.svc.Compute(p, plantedAt)
	require.Len(t, plan.Transitions, 2, "no blackout task for a zero-duration blackout")

	assert.Equal(t, domain.StageLight, plan.Transitions[0].Stage)
	assert.Equal(t, time.Date(2024, 1, 4, 0, 0, 0, 0, time.UTC), plan.Transitions[0].DueAt)

	assert.Equal(t, domain.StageHarvested, plan.Transitions[1].Stage)
	assert.Equal(t, time.Date(2024, 1, 11, 0, 0, 0, 0, time.UTC), plan.Transitions[1].DueAt)
}

func TestCompute_WithBlackout(t *testing.T) {
	f := newFixture(t)
	p := f.addProtocol(t, 3, 2, 7, 0)
	plantedAt := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	plan := f.svc.Compute(p, plantedAt)
	require.Len(t, plan.Transitions, 3)

	assert.Equal(t, domain.StageBlackout, plan.Transitions[0].Stage)
	assert.Equal(t, time.Date(2024, 1, 4, 0, 0, 0, 0, time.UTC), plan.Transitions[0].DueAt)
	assert.Equal(t, domain.StageLight, plan.Transitions[1].Stage)
	assert.Equal(t, time.Date(2024, 1, 6, 0, 0, 0, 0, time.UTC), plan.Transitions[1].DueAt)
	assert.Equal(t, domain.StageHarvested, plan.Transitions[2].Stage)
	assert.Equal(t, time.Date(2024, 1, 13, 0, 0, 0, 0, time.UTC), plan.Transitions[2].DueAt)
}

func TestCompute_SuspendWatering(t *testing.T) {
	f := newFixture(t)
	p := f.addProtocol(t, 3, 0, 7, 12)
	plantedAt := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	plan := f.svc.Compute(p, plantedAt)
	require.Len(t, plan.Transitions, 3)

	suspend := plan.Transitions[2]
	assert.Equal(t, domain.TargetSuspendWatering, suspend.Target)
	assert.Equal(t, time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC), suspend.DueAt)
	assert.Empty(t, plan.Warnings)
}

func TestCompute_SuspendLeadBeforePlantingDropped(t *testing.T) {
	f := newFixture(t)
	// whole grow is 24h, suspend lead is 48h: lands before planting
	p := f.addProtocol(t, 1, 0, 0, 48)
	plantedAt := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	plan := f.svc.Compute(p, plantedAt)
	for _, tr := range plan.Transitions {
		assert.NotEqual(t, domain.TargetSuspendWatering, tr.Target, "dropped, not clamped")
	}
	require.Len(t, plan.Warnings, 1)
	assert.Contains(t, plan.Warnings[0], "dropped")
}

func TestScheduleForBatch_OnlyFutureTasks(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.addProtocol(t, 3, 0, 7, 0)
	batch := f.plant(t, p)

	// two days into germination already
	f.clock = f.clock.Add(48 * time.Hour)

	created, err := f.svc.ScheduleForBatch(ctx, batch.ID)
	require.NoError(t, err)
	require.Len(t, created, 2)

	// five days in: the light transition is in the past and is skipped
	f.clock = f.clock.Add(72 * time.Hour)
	_, err = f.svc.ScheduleForBatch(ctx, batch.ID)
	require.NoError(t, err)

	active, err := f.transitions.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, active, 1, "past due times produce no tasks")
	assert.Equal(t, domain.StageHarvested, active[0].Stage)
}

func TestScheduleForBatch_SupersedesExisting(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.addProtocol(t, 3, 0, 7, 0)
	batch := f.plant(t, p)

	first, err := f.svc.ScheduleForBatch(ctx, batch.ID)
	require.NoError(t, err)
	second, err := f.svc.ScheduleForBatch(ctx, batch.ID)
	require.NoError(t, err)

	for _, old := range first {
		got, err := f.transitions.GetTransition(ctx, old.ID)
		require.NoError(t, err)
		assert.False(t, got.Active, "superseded tasks are deactivated")
	}
	active, err := f.transitions.ListActiveByBatch(ctx, batch.ID)
	require.NoError(t, err)
	assert.Len(t, active, len(second))
}

func TestExecuteDue_AdvancesOneStage(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.addProtocol(t, 3, 0, 7, 0)
	batch := f.plant(t, p)

	// manual advance into germination, then schedule
	_, _, err := f.lifecycle.Advance(ctx, batch.ID)
	require.NoError(t, err)
	_, err = f.svc.ScheduleForBatch(ctx, batch.ID)
	require.NoError(t, err)

	f.clock = f.clock.Add(3 * 24 * time.Hour)
	executed, err := f.svc.ExecuteDue(ctx, f.clock)
	require.NoError(t, err)
	assert.Equal(t, 1, executed)

	got, err := f.lifecycle.Get(ctx, batch.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StageLight, got.Times.Infer())
}

func TestExecuteDue_AlreadyPassedTargetIsNoOp(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.addProtocol(t, 3, 0, 7, 0)
	batch := f.plant(t, p)

	_, err := f.svc.ScheduleForBatch(ctx, batch.ID)
	require.NoError(t, err)

	// batch advanced manually all the way to light before the task fires
	_, _, err = f.lifecycle.Advance(ctx, batch.ID)
	require.NoError(t, err)
	_, _, err = f.lifecycle.Advance(ctx, batch.ID)
	require.NoError(t, err)

	f.clock = f.clock.Add(3 * 24 * time.Hour)
	executed, err := f.svc.ExecuteDue(ctx, f.clock)
	require.NoError(t, err)
	assert.Equal(t, 1, executed)

	got, err := f.lifecycle.Get(ctx, batch.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StageLight, got.Times.Infer(), "no double advance")

	active, err := f.transitions.ListActiveByBatch(ctx, batch.ID)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, domain.StageHarvested, active[0].Stage)
}

func TestExecuteDue_BehindByManyStepsOne(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.addProtocol(t, 3, 0, 7, 0)
	batch := f.plant(t, p)

	_, err := f.svc.ScheduleForBatch(ctx, batch.ID)
	require.NoError(t, err)

	// clock jumps straight past harvest: batch is still soaking
	f.clock = f.clock.Add(11 * 24 * time.Hour)

	// the due targets are behind by several stages; each pass steps the
	// batch forward without ever skipping an intermediate stage
	prevIdx := domain.StageSoaking.Index()
	for i := 0; i < 5; i++ {
		_, err = f.svc.ExecuteDue(ctx, f.clock)
		require.NoError(t, err)

		got, err := f.lifecycle.Get(ctx, batch.ID)
		require.NoError(t, err)
		idx := got.Times.Infer().Index()
		assert.GreaterOrEqual(t, idx, prevIdx, "stages only move forward")
		prevIdx = idx
	}

	got, err := f.lifecycle.Get(ctx, batch.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StageHarvested, got.Times.Infer())
	require.NotNil(t, got.Times.GerminationAt, "intermediate stages were stepped through")
	require.NotNil(t, got.Times.LightAt)

	active, err := f.transitions.ListActiveByBatch(ctx, batch.ID)
	require.NoError(t, err)
	assert.Empty(t, active, "everything consumed once caught up")
}

func TestExecuteDue_SuspendWatering(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.addProtocol(t, 3, 0, 7, 12)
	batch := f.plant(t, p)

	_, err := f.svc.ScheduleForBatch(ctx, batch.ID)
	require.NoError(t, err)

	f.clock = f.clock.Add(10 * 24 * time.Hour)
	_, err = f.svc.ExecuteDue(ctx, f.clock)
	require.NoError(t, err)

	got, err := f.lifecycle.Get(ctx, batch.ID)
	require.NoError(t, err)
	assert.True(t, got.WateringSuspended)
	require.NotNil(t, got.WateringSuspendedAt)
}

func TestRecover_SchedulesOnlyBareBatches(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.addProtocol(t, 3, 0, 7, 0)

	scheduled := f.plant(t, p)
	_, err := f.svc.ScheduleForBatch(ctx, scheduled.ID)
	require.NoError(t, err)
	before, err := f.transitions.ListActiveByBatch(ctx, scheduled.ID)
	require.NoError(t, err)

	bare := f.plant(t, p)

	require.NoError(t, f.svc.Recover(ctx))

	after, err := f.transitions.ListActiveByBatch(ctx, scheduled.ID)
	require.NoError(t, err)
	require.Len(t, after, len(before))
	for i := range after {
		assert.Equal(t, before[i].ID, after[i].ID, "existing schedules are untouched")
	}

	bareActive, err := f.transitions.ListActiveByBatch(ctx, bare.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, bareActive)
}

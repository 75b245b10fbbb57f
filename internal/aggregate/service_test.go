package aggregate

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tillgreens/microfarm/internal/concurrency"
	"github.com/tillgreens/microfarm/internal/database/memory"
	"github.com/tillgreens/microfarm/internal/domain"
	"github.com/tillgreens/microfarm/internal/event"
)

type fixture struct {
	svc  Service
	reqs *memory.RequirementRepository
	aggs *memory.AggregateRepository
	bus  *event.MemoryBus
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	reqs := memory.NewRequirementRepository()
	aggs := memory.NewAggregateRepository()
	bus := event.NewMemoryBus()
	return &fixture{
		svc:  NewService(reqs, aggs, concurrency.NewLockManager(), bus),
		reqs: reqs,
		aggs: aggs,
		bus:  bus,
	}
}

var (
	testProtocolID = uuid.New()
	testPlantDate  = time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC)
	testHarvest    = time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
)

func (f *fixture) addRecord(t *testing.T, orderID string, trays int, grams float64, status domain.RequirementStatus) *domain.RequirementRecord {
	t.Helper()
	rec := &domain.RequirementRecord{
		OrderID:    orderID,
		ProtocolID: testProtocolID,
		Trays:      trays,
		Grams:      grams,
		PlantBy:    testPlantDate,
		HarvestOn:  testHarvest,
		Status:     status,
	}
	require.NoError(t, f.reqs.CreateRequirement(context.Background(), rec))
	return rec
}

func TestConsolidate_CreatesAggregateLazily(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	r1 := f.addRecord(t, "ORD-1", 3, 500, domain.RequirementDraft)
	r2 := f.addRecord(t, "ORD-2", 2, 300, domain.RequirementDraft)

	aggs, err := f.svc.Consolidate(ctx, []uuid.UUID{r1.ID, r2.ID})
	require.NoError(t, err)
	require.Len(t, aggs, 1)

	agg := aggs[0]
	assert.Equal(t, 5, agg.TotalTrays)
	assert.Equal(t, 800.0, agg.TotalGrams)
	assert.Equal(t, domain.AggregateDraft, agg.Status)
	assert.Len(t, agg.History, 2)

	got1, err := f.reqs.GetRequirement(ctx, r1.ID)
	require.NoError(t, err)
	require.NotNil(t, got1.AggregateID)
	assert.Equal(t, agg.ID, *got1.AggregateID)
}

func TestConsolidate_SeparateKeysSeparateAggregates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	r1 := f.addRecord(t, "ORD-1", 3, 500, domain.RequirementDraft)
	r2 := &domain.RequirementRecord{
		OrderID:    "ORD-2",
		ProtocolID: testProtocolID,
		Trays:      2,
		Grams:      300,
		PlantBy:    testPlantDate,
		HarvestOn:  testHarvest.AddDate(0, 0, 1),
		Status:     domain.RequirementDraft,
	}
	require.NoError(t, f.reqs.CreateRequirement(ctx, r2))

	aggs, err := f.svc.Consolidate(ctx, []uuid.UUID{r1.ID, r2.ID})
	require.NoError(t, err)
	assert.Len(t, aggs, 2)
}

func TestConsolidate_TimeOfDayIgnoredInKey(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	r1 := f.addRecord(t, "ORD-1", 1, 100, domain.RequirementDraft)
	r2 := &domain.RequirementRecord{
		OrderID:    "ORD-2",
		ProtocolID: testProtocolID,
		Trays:      1,
		Grams:      100,
		PlantBy:    testPlantDate.Add(7 * time.Hour),
		HarvestOn:  testHarvest.Add(3 * time.Hour),
		Status:     domain.RequirementDraft,
	}
	require.NoError(t, f.reqs.CreateRequirement(ctx, r2))

	aggs, err := f.svc.Consolidate(ctx, []uuid.UUID{r1.ID, r2.ID})
	require.NoError(t, err)
	assert.Len(t, aggs, 1, "same calendar dates share one aggregate")
}

func TestConsolidate_NonDraftRejected(t *testing.T) {
	f := newFixture(t)

	rec := f.addRecord(t, "ORD-1", 1, 100, domain.RequirementCompleted)

	_, err := f.svc.Consolidate(context.Background(), []uuid.UUID{rec.ID})
	assert.ErrorIs(t, err, domain.ErrAggregationIneligible)
}

func TestConsolidate_Idempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	rec := f.addRecord(t, "ORD-1", 3, 500, domain.RequirementDraft)

	first, err := f.svc.Consolidate(ctx, []uuid.UUID{rec.ID})
	require.NoError(t, err)
	second, err := f.svc.Consolidate(ctx, []uuid.UUID{rec.ID})
	require.NoError(t, err)

	assert.Equal(t, first[0].ID, second[0].ID)
	assert.Equal(t, 3, second[0].TotalTrays, "already linked records are not re-added")
	assert.Len(t, second[0].History, 1)
}

func TestAddToExisting_MergesAndCancels(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	sibling := f.addRecord(t, "ORD-1", 3, 500, domain.RequirementDraft)
	newcomer := f.addRecord(t, "ORD-2", 2, 300, domain.RequirementDraft)

	merged, err := f.svc.AddToExisting(ctx, newcomer.ID)
	require.NoError(t, err)
	assert.True(t, merged)

	gotSibling, err := f.reqs.GetRequirement(ctx, sibling.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, gotSibling.Trays)
	assert.Equal(t, 800.0, gotSibling.Grams)
	assert.Equal(t, domain.RequirementDraft, gotSibling.Status)

	gotNew, err := f.reqs.GetRequirement(ctx, newcomer.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RequirementCancelled, gotNew.Status)
	assert.Contains(t, gotNew.Note, sibling.ID.String())
}

func TestAddToExisting_PropagatesToSiblingAggregate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	sibling := f.addRecord(t, "ORD-1", 3, 500, domain.RequirementDraft)
	aggs, err := f.svc.Consolidate(ctx, []uuid.UUID{sibling.ID})
	require.NoError(t, err)

	newcomer := f.addRecord(t, "ORD-2", 2, 300, domain.RequirementDraft)
	merged, err := f.svc.AddToExisting(ctx, newcomer.ID)
	require.NoError(t, err)
	require.True(t, merged)

	agg, err := f.aggs.GetAggregate(ctx, aggs[0].ID)
	require.NoError(t, err)
	assert.Equal(t, 5, agg.TotalTrays)
	assert.Equal(t, 800.0, agg.TotalGrams)
	assert.Len(t, agg.History, 2)
}

func TestAddToExisting_NoSibling(t *testing.T) {
	f := newFixture(t)

	rec := f.addRecord(t, "ORD-1", 3, 500, domain.RequirementDraft)

	merged, err := f.svc.AddToExisting(context.Background(), rec.ID)
	require.NoError(t, err)
	assert.False(t, merged)

	got, err := f.reqs.GetRequirement(context.Background(), rec.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RequirementDraft, got.Status, "record untouched when nothing merges")
}

func TestAddToExisting_IneligibleStatuses(t *testing.T) {
	f := newFixture(t)

	for _, status := range []domain.RequirementStatus{
		domain.RequirementActive,
		domain.RequirementCancelled,
		domain.RequirementCompleted,
	} {
		rec := f.addRecord(t, "ORD-X", 1, 100, status)
		_, err := f.svc.AddToExisting(context.Background(), rec.ID)
		assert.ErrorIs(t, err, domain.ErrAggregationIneligible, "status %s", status)
	}
}

func TestRecalculate_Idempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	r1 := f.addRecord(t, "ORD-1", 3, 500, domain.RequirementDraft)
	r2 := f.addRecord(t, "ORD-2", 2, 300, domain.RequirementDraft)
	aggs, err := f.svc.Consolidate(ctx, []uuid.UUID{r1.ID, r2.ID})
	require.NoError(t, err)
	aggID := aggs[0].ID

	// drift the totals, then reconcile
	drifted, err := f.aggs.GetAggregate(ctx, aggID)
	require.NoError(t, err)
	drifted.TotalTrays = 99
	drifted.TotalGrams = 9999
	require.NoError(t, f.aggs.UpdateAggregate(ctx, drifted))

	for i := 0; i < 3; i++ {
		agg, err := f.svc.Recalculate(ctx, aggID)
		require.NoError(t, err)
		assert.Equal(t, 5, agg.TotalTrays)
		assert.Equal(t, 800.0, agg.TotalGrams)
	}
}

func TestRecalculate_ExcludesCancelledMembers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	r1 := f.addRecord(t, "ORD-1", 3, 500, domain.RequirementDraft)
	r2 := f.addRecord(t, "ORD-2", 2, 300, domain.RequirementDraft)
	aggs, err := f.svc.Consolidate(ctx, []uuid.UUID{r1.ID, r2.ID})
	require.NoError(t, err)

	got2, err := f.reqs.GetRequirement(ctx, r2.ID)
	require.NoError(t, err)
	got2.Status = domain.RequirementCancelled
	require.NoError(t, f.reqs.UpdateRequirement(ctx, got2))

	agg, err := f.svc.Recalculate(ctx, aggs[0].ID)
	require.NoError(t, err)
	assert.Equal(t, 3, agg.TotalTrays)
	assert.Equal(t, 500.0, agg.TotalGrams)
}

func TestRemoveFromAggregate_Recalculates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	r1 := f.addRecord(t, "ORD-1", 3, 500, domain.RequirementDraft)
	r2 := f.addRecord(t, "ORD-2", 2, 300, domain.RequirementDraft)
	aggs, err := f.svc.Consolidate(ctx, []uuid.UUID{r1.ID, r2.ID})
	require.NoError(t, err)

	require.NoError(t, f.svc.RemoveFromAggregate(ctx, r2.ID))

	agg, err := f.aggs.GetAggregate(ctx, aggs[0].ID)
	require.NoError(t, err)
	assert.Equal(t, 3, agg.TotalTrays)
	assert.Equal(t, 500.0, agg.TotalGrams)
	assert.Equal(t, domain.AggregateDraft, agg.Status)

	got2, err := f.reqs.GetRequirement(ctx, r2.ID)
	require.NoError(t, err)
	assert.Nil(t, got2.AggregateID)
}

func TestRemoveFromAggregate_LastMemberCancelsAggregate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	rec := f.addRecord(t, "ORD-1", 3, 500, domain.RequirementDraft)
	aggs, err := f.svc.Consolidate(ctx, []uuid.UUID{rec.ID})
	require.NoError(t, err)

	require.NoError(t, f.svc.RemoveFromAggregate(ctx, rec.ID))

	agg, err := f.aggs.GetAggregate(ctx, aggs[0].ID)
	require.NoError(t, err)
	assert.Equal(t, domain.AggregateCancelled, agg.Status)
	assert.Zero(t, agg.TotalTrays, "no stale totals on a cancelled aggregate")
	assert.Zero(t, agg.TotalGrams)
}

func TestRemoveFromAggregate_NoLinkIsNoOp(t *testing.T) {
	f := newFixture(t)
	rec := f.addRecord(t, "ORD-1", 3, 500, domain.RequirementDraft)
	assert.NoError(t, f.svc.RemoveFromAggregate(context.Background(), rec.ID))
}

func TestConsolidate_PublishesAggregationEvents(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	var seen []event.Event
	f.bus.Subscribe(event.RequirementAggregated, func(_ context.Context, e event.Event) error {
		seen = append(seen, e)
		return nil
	})

	r1 := f.addRecord(t, "ORD-1", 3, 500, domain.RequirementDraft)
	r2 := f.addRecord(t, "ORD-2", 2, 300, domain.RequirementDraft)
	_, err := f.svc.Consolidate(ctx, []uuid.UUID{r1.ID, r2.ID})
	require.NoError(t, err)

	require.Len(t, seen, 2)
	payload, ok := seen[0].Payload.(domain.RequirementAggregatedPayloadV1)
	require.True(t, ok)
	assert.Equal(t, r1.ID, payload.RequirementID)
}

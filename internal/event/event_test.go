package event

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tillgreens/microfarm/internal/domain"
)

func TestMemoryBusPublishesToSubscribers(t *testing.T) {
	bus := NewMemoryBus()

	var received []Event
	bus.Subscribe(BatchStageAdvanced, func(_ context.Context, e Event) error {
		received = append(received, e)
		return nil
	})

	batchID := uuid.New()
	evt := NewBatchStageAdvancedEvent(batchID, domain.StageGermination, domain.StageLight, time.Now())
	require.NoError(t, bus.Publish(context.Background(), evt))

	require.Len(t, received, 1)
	payload, ok := received[0].Payload.(domain.BatchStageAdvancedPayloadV1)
	require.True(t, ok)
	assert.Equal(t, batchID, payload.BatchID)
	assert.Equal(t, domain.StageLight, payload.ToStage)
}

func TestMemoryBusNoSubscribersIsNoop(t *testing.T) {
	bus := NewMemoryBus()
	err := bus.Publish(context.Background(), NewWateringSuspendedEvent(uuid.New(), time.Now()))
	assert.NoError(t, err)
}

func TestMemoryBusAggregatesHandlerErrors(t *testing.T) {
	bus := NewMemoryBus()

	calls := 0
	bus.Subscribe(LotDepleted, func(_ context.Context, _ Event) error {
		calls++
		return errors.New("dispatch down")
	})
	bus.Subscribe(LotDepleted, func(_ context.Context, _ Event) error {
		calls++
		return nil
	})

	health := domain.LotHealth{LotNumber: "LOT-9", Level: domain.StockDepleted}
	err := bus.Publish(context.Background(), NewLotStockEvent(health))
	assert.Error(t, err)
	assert.Equal(t, 2, calls, "a failing handler must not stop later handlers")
}

func TestNewLotStockEventPicksTypeFromLevel(t *testing.T) {
	depleted := NewLotStockEvent(domain.LotHealth{Level: domain.StockDepleted})
	low := NewLotStockEvent(domain.LotHealth{Level: domain.StockLow})

	assert.Equal(t, LotDepleted, depleted.Type)
	assert.Equal(t, LotLowStock, low.Type)
}

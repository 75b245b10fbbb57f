package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tillgreens/microfarm/internal/concurrency"
	"github.com/tillgreens/microfarm/internal/database/memory"
	"github.com/tillgreens/microfarm/internal/domain"
	"github.com/tillgreens/microfarm/internal/event"
	"github.com/tillgreens/microfarm/internal/inventory"
	"github.com/tillgreens/microfarm/internal/lifecycle"
	"github.com/tillgreens/microfarm/internal/schedule"
)

type batchFixture struct {
	handler  *BatchHandler
	protocol *domain.GrowingProtocol
}

func newBatchFixture(t *testing.T) *batchFixture {
	t.Helper()
	InitValidator()

	batches := memory.NewBatchRepository()
	protocols := memory.NewProtocolRepository()
	transitions := memory.NewTransitionRepository()
	invRepo := memory.NewInventoryRepository()
	locks := concurrency.NewLockManager()
	bus := event.NewMemoryBus()

	invSvc := inventory.NewService(invRepo, locks)
	_, err := invSvc.Replenish(context.Background(), "LOT-001", domain.NewQuantity(1000, domain.UnitGram))
	require.NoError(t, err)

	protocol := &domain.GrowingProtocol{
		ID:               uuid.New(),
		Variety:          "Sunflower",
		LotNumber:        "LOT-001",
		SoakHours:        8,
		GerminationDays:  3,
		LightDays:        7,
		SeedDensityGrams: 25,
		Active:           true,
		CreatedAt:        time.Now(),
	}
	require.NoError(t, protocols.CreateProtocol(context.Background(), protocol))

	lifecycleSvc := lifecycle.NewService(batches, protocols, invSvc, locks, bus)
	scheduleSvc := schedule.NewService(transitions, batches, protocols, lifecycleSvc)

	return &batchFixture{
		handler:  NewBatchHandler(lifecycleSvc, scheduleSvc),
		protocol: protocol,
	}
}

func TestHandlePlant(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		f := newBatchFixture(t)

		body, _ := json.Marshal(lifecycle.PlantRequest{
			ProtocolID: f.protocol.ID,
			Trays:      4,
		})
		req := httptest.NewRequest("POST", "/batch/plant", bytes.NewBuffer(body))
		w := httptest.NewRecorder()

		f.handler.HandlePlant(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)

		var resp PlantResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.NotNil(t, resp.Batch)
		assert.Equal(t, domain.StageSoaking, resp.Batch.CurrentStage)
		assert.NotEmpty(t, resp.Transitions)
	})

	t.Run("Unknown Protocol", func(t *testing.T) {
		f := newBatchFixture(t)

		body, _ := json.Marshal(lifecycle.PlantRequest{
			ProtocolID: uuid.New(),
			Trays:      4,
		})
		req := httptest.NewRequest("POST", "/batch/plant", bytes.NewBuffer(body))
		w := httptest.NewRecorder()

		f.handler.HandlePlant(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Contains(t, w.Body.String(), ErrMsgProtocolNotFoundError)
	})

	t.Run("Invalid Request - Zero Trays", func(t *testing.T) {
		f := newBatchFixture(t)

		body, _ := json.Marshal(lifecycle.PlantRequest{
			ProtocolID: f.protocol.ID,
		})
		req := httptest.NewRequest("POST", "/batch/plant", bytes.NewBuffer(body))
		w := httptest.NewRecorder()

		f.handler.HandlePlant(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestHandleAdvance(t *testing.T) {
	f := newBatchFixture(t)

	body, _ := json.Marshal(lifecycle.PlantRequest{ProtocolID: f.protocol.ID, Trays: 2})
	req := httptest.NewRequest("POST", "/batch/plant", bytes.NewBuffer(body))
	w := httptest.NewRecorder()
	f.handler.HandlePlant(w, req)
	require.Equal(t, http.StatusCreated, w.Code)

	var planted PlantResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &planted))

	t.Run("Success", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/batch/advance?id="+planted.Batch.ID.String(), nil)
		w := httptest.NewRecorder()

		f.handler.HandleAdvance(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var resp AdvanceResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.True(t, resp.Advanced)
		assert.Equal(t, domain.StageGermination, resp.Batch.CurrentStage)
	})

	t.Run("Unknown Batch", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/batch/advance?id="+uuid.NewString(), nil)
		w := httptest.NewRecorder()

		f.handler.HandleAdvance(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("Malformed ID", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/batch/advance?id=not-a-uuid", nil)
		w := httptest.NewRecorder()

		f.handler.HandleAdvance(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestHandleValidateSequence(t *testing.T) {
	f := newBatchFixture(t)

	body, _ := json.Marshal(lifecycle.PlantRequest{ProtocolID: f.protocol.ID, Trays: 1})
	req := httptest.NewRequest("POST", "/batch/plant", bytes.NewBuffer(body))
	w := httptest.NewRecorder()
	f.handler.HandlePlant(w, req)
	require.Equal(t, http.StatusCreated, w.Code)

	var planted PlantResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &planted))

	req = httptest.NewRequest("GET", "/batch/validate?id="+planted.Batch.ID.String(), nil)
	w = httptest.NewRecorder()

	f.handler.HandleValidateSequence(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp ValidateSequenceResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Valid)
	assert.Empty(t, resp.Violations)
}

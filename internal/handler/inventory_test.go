package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tillgreens/microfarm/internal/concurrency"
	"github.com/tillgreens/microfarm/internal/database/memory"
	"github.com/tillgreens/microfarm/internal/domain"
	"github.com/tillgreens/microfarm/internal/inventory"
)

func newInventoryService(t *testing.T) inventory.Service {
	t.Helper()
	return inventory.NewService(memory.NewInventoryRepository(), concurrency.NewLockManager())
}

func TestHandleReplenish(t *testing.T) {
	InitValidator()

	tests := []struct {
		name           string
		requestBody    interface{}
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "Success",
			requestBody: ReplenishRequest{
				LotNumber: "LOT-001",
				Value:     500,
				Unit:      "g",
			},
			expectedStatus: http.StatusCreated,
			expectedBody:   MsgLotReplenishedSuccess,
		},
		{
			name: "Invalid Request - Missing Lot",
			requestBody: ReplenishRequest{
				Value: 500,
				Unit:  "g",
			},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   ErrMsgInvalidRequestSummary,
		},
		{
			name: "Invalid Request - Unknown Unit",
			requestBody: ReplenishRequest{
				LotNumber: "LOT-001",
				Value:     500,
				Unit:      "bushel",
			},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   "Invalid measurement unit",
		},
		{
			name: "Invalid Request - Negative Value",
			requestBody: ReplenishRequest{
				LotNumber: "LOT-001",
				Value:     -5,
				Unit:      "g",
			},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   ErrMsgInvalidRequestSummary,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := HandleReplenish(newInventoryService(t))

			body, _ := json.Marshal(tt.requestBody)
			req := httptest.NewRequest("POST", "/inventory/replenish", bytes.NewBuffer(body))
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.expectedBody)
		})
	}
}

func TestHandleDeduct(t *testing.T) {
	InitValidator()

	svc := newInventoryService(t)
	_, err := svc.Replenish(context.Background(), "LOT-001", domain.NewQuantity(100, domain.UnitGram))
	require.NoError(t, err)

	t.Run("Success", func(t *testing.T) {
		body, _ := json.Marshal(DeductRequest{LotNumber: "LOT-001", Value: 40, Unit: "g"})
		req := httptest.NewRequest("POST", "/inventory/deduct", bytes.NewBuffer(body))
		w := httptest.NewRecorder()

		HandleDeduct(svc).ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), MsgLotDeductedSuccess)
	})

	t.Run("Insufficient Stock", func(t *testing.T) {
		body, _ := json.Marshal(DeductRequest{LotNumber: "LOT-001", Value: 10, Unit: "kg"})
		req := httptest.NewRequest("POST", "/inventory/deduct", bytes.NewBuffer(body))
		w := httptest.NewRecorder()

		HandleDeduct(svc).ServeHTTP(w, req)

		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Contains(t, w.Body.String(), ErrMsgInsufficientStockError)
	})
}

func TestHandleGetLotSummary(t *testing.T) {
	svc := newInventoryService(t)
	_, err := svc.Replenish(context.Background(), "LOT-001", domain.NewQuantity(250, domain.UnitGram))
	require.NoError(t, err)

	t.Run("Success", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/inventory/lot?lot=LOT-001", nil)
		w := httptest.NewRecorder()

		HandleGetLotSummary(svc).ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var summary domain.LotSummary
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &summary))
		assert.Equal(t, "LOT-001", summary.LotNumber)
		assert.Equal(t, "250", summary.AvailableGrams.String())
	})

	t.Run("Missing Lot Parameter", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/inventory/lot", nil)
		w := httptest.NewRecorder()

		HandleGetLotSummary(svc).ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

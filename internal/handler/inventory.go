package handler

import (
	"net/http"

	"github.com/tillgreens/microfarm/internal/domain"
	"github.com/tillgreens/microfarm/internal/inventory"
	"github.com/tillgreens/microfarm/internal/logger"
)

type ReplenishRequest struct {
	LotNumber string  `json:"lot_number" validate:"required,max=100"`
	Value     float64 `json:"value" validate:"required,gt=0"`
	Unit      string  `json:"unit" validate:"required,unit"`
}

// HandleReplenish appends a received shipment to a seed lot
func HandleReplenish(svc inventory.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromContext(r.Context())

		var req ReplenishRequest
		if err := DecodeAndValidateRequest(r, w, &req, "Replenish lot"); err != nil {
			return
		}

		entry, err := svc.Replenish(r.Context(), req.LotNumber, domain.NewQuantity(req.Value, domain.Unit(req.Unit)))
		if err != nil {
			log.Error("Failed to replenish lot", "error", err, "lot", req.LotNumber)
			statusCode, userMsg := mapServiceErrorToUserMessage(err)
			respondError(w, statusCode, userMsg)
			return
		}

		log.Info("Lot replenished", "lot", req.LotNumber, "value", req.Value, "unit", req.Unit)

		respondJSON(w, http.StatusCreated, DataResponse{Message: MsgLotReplenishedSuccess, Data: entry})
	}
}

type DeductRequest struct {
	LotNumber string  `json:"lot_number" validate:"required,max=100"`
	Value     float64 `json:"value" validate:"required,gt=0"`
	Unit      string  `json:"unit" validate:"required,unit"`
}

// HandleDeduct consumes stock from a lot in FIFO order
func HandleDeduct(svc inventory.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromContext(r.Context())

		var req DeductRequest
		if err := DecodeAndValidateRequest(r, w, &req, "Deduct from lot"); err != nil {
			return
		}

		if err := svc.Deduct(r.Context(), req.LotNumber, domain.NewQuantity(req.Value, domain.Unit(req.Unit))); err != nil {
			log.Error("Failed to deduct from lot", "error", err, "lot", req.LotNumber)
			statusCode, userMsg := mapServiceErrorToUserMessage(err)
			respondError(w, statusCode, userMsg)
			return
		}

		log.Info("Stock deducted", "lot", req.LotNumber, "value", req.Value, "unit", req.Unit)

		respondJSON(w, http.StatusOK, SuccessResponse{Message: MsgLotDeductedSuccess})
	}
}

// HandleGetLotSummary returns the rolled-up view of one lot
func HandleGetLotSummary(svc inventory.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		lotNumber, ok := GetQueryParam(r, w, "lot")
		if !ok {
			return
		}

		summary, err := svc.Summary(r.Context(), lotNumber)
		if err != nil {
			logger.FromContext(r.Context()).Error("Failed to get lot summary", "error", err, "lot", lotNumber)
			statusCode, userMsg := mapServiceErrorToUserMessage(err)
			respondError(w, statusCode, userMsg)
			return
		}

		respondJSON(w, http.StatusOK, summary)
	}
}

// HandleListLots returns every lot number with active stock
func HandleListLots(svc inventory.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		lots, err := svc.ListLots(r.Context())
		if err != nil {
			logger.FromContext(r.Context()).Error("Failed to list lots", "error", err)
			respondError(w, http.StatusInternalServerError, ErrMsgListLotsFailed)
			return
		}

		respondJSON(w, http.StatusOK, DataResponse{Data: lots})
	}
}

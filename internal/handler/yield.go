package handler

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/tillgreens/microfarm/internal/domain"
	"github.com/tillgreens/microfarm/internal/logger"
	"github.com/tillgreens/microfarm/internal/yield"
)

type RecordHarvestRequest struct {
	Variety           string    `json:"variety" validate:"required,max=100"`
	Cultivar          string    `json:"cultivar,omitempty" validate:"max=100"`
	HarvestedAt       time.Time `json:"harvested_at"`
	AvgWeightPerTrayG float64   `json:"avg_weight_per_tray_g" validate:"required,gt=0"`
}

// HandleRecordHarvest appends a yield observation to the harvest history
func HandleRecordHarvest(svc yield.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromContext(r.Context())

		var req RecordHarvestRequest
		if err := DecodeAndValidateRequest(r, w, &req, "Record harvest"); err != nil {
			return
		}

		rec := &domain.HarvestRecord{
			ID:                uuid.New(),
			Variety:           req.Variety,
			Cultivar:          req.Cultivar,
			HarvestedAt:       req.HarvestedAt,
			AvgWeightPerTrayG: req.AvgWeightPerTrayG,
		}
		if rec.HarvestedAt.IsZero() {
			rec.HarvestedAt = time.Now()
		}

		if err := svc.RecordHarvest(r.Context(), rec); err != nil {
			log.Error("Failed to record harvest", "error", err, "variety", req.Variety)
			statusCode, userMsg := mapServiceErrorToUserMessage(err)
			respondError(w, statusCode, userMsg)
			return
		}

		log.Info("Harvest recorded", "variety", req.Variety, "avg_weight", req.AvgWeightPerTrayG)

		respondJSON(w, http.StatusCreated, DataResponse{Message: MsgHarvestRecordedSuccess, Data: rec})
	}
}

// YieldEstimateResponse is the reply for the yield estimate endpoint
type YieldEstimateResponse struct {
	Variety         string  `json:"variety"`
	Cultivar        string  `json:"cultivar,omitempty"`
	EstimatedGrams  float64 `json:"estimated_grams_per_tray"`
	HistoryInWindow bool    `json:"history_in_window"`
}

// HandleGetYieldEstimate returns the recency-weighted per-tray estimate
// for a variety. history_in_window is false when the estimate could not
// be computed from history and callers should fall back to protocol
// expectations.
func HandleGetYieldEstimate(svc yield.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		variety, ok := GetQueryParam(r, w, "variety")
		if !ok {
			return
		}
		cultivar := GetOptionalQueryParam(r, "cultivar", "")

		estimate, found, err := svc.Estimate(r.Context(), variety, cultivar, time.Now())
		if err != nil {
			logger.FromContext(r.Context()).Error("Failed to estimate yield", "error", err, "variety", variety)
			statusCode, userMsg := mapServiceErrorToUserMessage(err)
			respondError(w, statusCode, userMsg)
			return
		}

		respondJSON(w, http.StatusOK, YieldEstimateResponse{
			Variety:         variety,
			Cultivar:        cultivar,
			EstimatedGrams:  estimate,
			HistoryInWindow: found,
		})
	}
}

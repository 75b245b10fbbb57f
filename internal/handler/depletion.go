package handler

import (
	"net/http"

	"github.com/tillgreens/microfarm/internal/depletion"
	"github.com/tillgreens/microfarm/internal/logger"
)

// HandleGetLotHealth classifies one lot's stock level
func HandleGetLotHealth(svc depletion.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		lotNumber, ok := GetQueryParam(r, w, "lot")
		if !ok {
			return
		}

		health, err := svc.CheckLot(r.Context(), lotNumber)
		if err != nil {
			logger.FromContext(r.Context()).Error("Failed to check lot health", "error", err, "lot", lotNumber)
			statusCode, userMsg := mapServiceErrorToUserMessage(err)
			respondError(w, statusCode, userMsg)
			return
		}

		respondJSON(w, http.StatusOK, health)
	}
}

// HandleSweepLots classifies every known lot, auto-flagging depleted
// protocols and raising alerts. Normally driven by the cron sweep; the
// endpoint exists for on-demand runs.
func HandleSweepLots(svc depletion.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromContext(r.Context())

		results, err := svc.Sweep(r.Context())
		if err != nil {
			log.Error("Failed to sweep lots", "error", err)
			respondError(w, http.StatusInternalServerError, ErrMsgSweepFailed)
			return
		}

		log.Info("Lot sweep completed", "lots", len(results))

		respondJSON(w, http.StatusOK, DataResponse{Data: results})
	}
}

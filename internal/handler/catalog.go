package handler

import (
	"net/http"

	"github.com/tillgreens/microfarm/internal/catalog"
	"github.com/tillgreens/microfarm/internal/logger"
)

// HandleGetProducts returns the full product catalog
func HandleGetProducts(svc catalog.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, DataResponse{Data: svc.Products(r.Context())})
	}
}

// HandleResolveVariety resolves a free-form name against the variety catalog
func HandleResolveVariety(svc catalog.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name, ok := GetQueryParam(r, w, "name")
		if !ok {
			return
		}

		variety, err := svc.ResolveVariety(r.Context(), name)
		if err != nil {
			logger.FromContext(r.Context()).Warn("Variety resolution failed", "name", name, "error", err)
			statusCode, userMsg := mapServiceErrorToUserMessage(err)
			respondError(w, statusCode, userMsg)
			return
		}

		respondJSON(w, http.StatusOK, variety)
	}
}

// HandleReloadCatalog re-reads the catalog file and clears resolution caches
func HandleReloadCatalog(svc catalog.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromContext(r.Context())

		if err := svc.Reload(r.Context()); err != nil {
			log.Error("Failed to reload catalog", "error", err)
			respondError(w, http.StatusInternalServerError, ErrMsgReloadCatalogFailed)
			return
		}

		log.Info("Catalog reloaded")

		respondJSON(w, http.StatusOK, SuccessResponse{Message: MsgCatalogReloadedSuccess})
	}
}

package handler

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/tillgreens/microfarm/internal/aggregate"
	"github.com/tillgreens/microfarm/internal/logger"
)

// AggregateHandler exposes requirement consolidation operations
type AggregateHandler struct {
	service aggregate.Service
}

func NewAggregateHandler(service aggregate.Service) *AggregateHandler {
	return &AggregateHandler{service: service}
}

type ConsolidateRequest struct {
	RequirementIDs []string `json:"requirement_ids" validate:"required,min=1,dive,uuid"`
}

// HandleConsolidate merges draft requirement records into per-group
// draft aggregates, creating aggregates lazily
func (h *AggregateHandler) HandleConsolidate(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	var req ConsolidateRequest
	if err := DecodeAndValidateRequest(r, w, &req, "Consolidate requirements"); err != nil {
		return
	}

	ids := make([]uuid.UUID, 0, len(req.RequirementIDs))
	for _, raw := range req.RequirementIDs {
		ids = append(ids, mustParseUUID(raw))
	}

	aggregates, err := h.service.Consolidate(r.Context(), ids)
	if err != nil {
		log.Error("Failed to consolidate requirements", "error", err, "records", len(ids))
		statusCode, userMsg := mapServiceErrorToUserMessage(err)
		respondError(w, statusCode, userMsg)
		return
	}

	log.Info("Requirements consolidated", "records", len(ids), "aggregates", len(aggregates))

	respondJSON(w, http.StatusOK, DataResponse{Data: aggregates})
}

// MergeResponse is the reply for an add-to-existing merge attempt
type MergeResponse struct {
	Merged bool `json:"merged"`
}

// HandleMerge folds a new draft requirement into a draft sibling
// sharing its grouping key. merged is false when no sibling exists.
func (h *AggregateHandler) HandleMerge(w http.ResponseWriter, r *http.Request) {
	recordID, ok := GetUUIDParam(r, w, "id")
	if !ok {
		return
	}

	merged, err := h.service.AddToExisting(r.Context(), recordID)
	if err != nil {
		logger.FromContext(r.Context()).Error("Failed to merge requirement", "error", err, "record_id", recordID)
		statusCode, userMsg := mapServiceErrorToUserMessage(err)
		respondError(w, statusCode, userMsg)
		return
	}

	respondJSON(w, http.StatusOK, MergeResponse{Merged: merged})
}

// HandleRecalculate recomputes an aggregate's totals from its members
func (h *AggregateHandler) HandleRecalculate(w http.ResponseWriter, r *http.Request) {
	aggregateID, ok := GetUUIDParam(r, w, "id")
	if !ok {
		return
	}

	agg, err := h.service.Recalculate(r.Context(), aggregateID)
	if err != nil {
		logger.FromContext(r.Context()).Error("Failed to recalculate aggregate", "error", err, "aggregate_id", aggregateID)
		statusCode, userMsg := mapServiceErrorToUserMessage(err)
		respondError(w, statusCode, userMsg)
		return
	}

	respondJSON(w, http.StatusOK, agg)
}

// HandleRemove detaches a requirement from its aggregate and recalculates
func (h *AggregateHandler) HandleRemove(w http.ResponseWriter, r *http.Request) {
	recordID, ok := GetUUIDParam(r, w, "id")
	if !ok {
		return
	}

	if err := h.service.RemoveFromAggregate(r.Context(), recordID); err != nil {
		logger.FromContext(r.Context()).Error("Failed to remove requirement from aggregate", "error", err, "record_id", recordID)
		statusCode, userMsg := mapServiceErrorToUserMessage(err)
		respondError(w, statusCode, userMsg)
		return
	}

	respondJSON(w, http.StatusOK, SuccessResponse{Message: MsgRecordRemovedSuccess})
}

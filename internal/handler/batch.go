package handler

import (
	"net/http"

	"github.com/tillgreens/microfarm/internal/domain"
	"github.com/tillgreens/microfarm/internal/lifecycle"
	"github.com/tillgreens/microfarm/internal/logger"
	"github.com/tillgreens/microfarm/internal/schedule"
)

// BatchHandler bundles the lifecycle and scheduling services behind the
// batch endpoints. Planting schedules the batch's transitions in the
// same request.
type BatchHandler struct {
	lifecycle lifecycle.Service
	schedule  schedule.Service
}

func NewBatchHandler(lifecycleSvc lifecycle.Service, scheduleSvc schedule.Service) *BatchHandler {
	return &BatchHandler{
		lifecycle: lifecycleSvc,
		schedule:  scheduleSvc,
	}
}

// PlantResponse is the reply for a successful planting
type PlantResponse struct {
	Batch       *domain.GrowthBatch          `json:"batch"`
	Transitions []*domain.ScheduledTransition `json:"transitions"`
}

// HandlePlant creates a batch in the soaking stage, deducts seed from
// the protocol's lot and schedules the batch's stage transitions.
func (h *BatchHandler) HandlePlant(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	var req lifecycle.PlantRequest
	if err := DecodeAndValidateRequest(r, w, &req, "Plant batch"); err != nil {
		return
	}

	batch, err := h.lifecycle.Plant(r.Context(), req)
	if err != nil {
		log.Error("Failed to plant batch", "error", err, "protocol_id", req.ProtocolID)
		statusCode, userMsg := mapServiceErrorToUserMessage(err)
		respondError(w, statusCode, userMsg)
		return
	}

	transitions, err := h.schedule.ScheduleForBatch(r.Context(), batch.ID)
	if err != nil {
		// The batch exists and the seed is deducted; report the batch and
		// the scheduling failure rather than pretending the plant failed.
		log.Error("Failed to schedule transitions for planted batch", "error", err, "batch_id", batch.ID)
		respondJSON(w, http.StatusCreated, PlantResponse{Batch: batch})
		return
	}

	log.Info("Batch planted", "batch_id", batch.ID, "trays", req.Trays, "transitions", len(transitions))

	respondJSON(w, http.StatusCreated, PlantResponse{Batch: batch, Transitions: transitions})
}

// AdvanceResponse is the reply for a batch advance
type AdvanceResponse struct {
	Batch    *domain.GrowthBatch `json:"batch"`
	Advanced bool                `json:"advanced"`
}

// HandleAdvance moves a batch to its next growth stage
func (h *BatchHandler) HandleAdvance(w http.ResponseWriter, r *http.Request) {
	batchID, ok := GetUUIDParam(r, w, "id")
	if !ok {
		return
	}

	batch, advanced, err := h.lifecycle.Advance(r.Context(), batchID)
	if err != nil {
		logger.FromContext(r.Context()).Error("Failed to advance batch", "error", err, "batch_id", batchID)
		statusCode, userMsg := mapServiceErrorToUserMessage(err)
		respondError(w, statusCode, userMsg)
		return
	}

	respondJSON(w, http.StatusOK, AdvanceResponse{Batch: batch, Advanced: advanced})
}

type ResetStageRequest struct {
	BatchID string `json:"batch_id" validate:"required,uuid"`
	Stage   string `json:"stage" validate:"required"`
}

// HandleResetStage rewinds a batch to an earlier stage
func (h *BatchHandler) HandleResetStage(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	var req ResetStageRequest
	if err := DecodeAndValidateRequest(r, w, &req, "Reset batch stage"); err != nil {
		return
	}

	stage := domain.Stage(req.Stage)
	if !stage.Valid() {
		http.Error(w, ErrMsgInvalidStage, http.StatusBadRequest)
		return
	}

	batchID := mustParseUUID(req.BatchID)
	batch, err := h.lifecycle.ResetTo(r.Context(), batchID, stage)
	if err != nil {
		log.Error("Failed to reset batch stage", "error", err, "batch_id", batchID, "stage", stage)
		statusCode, userMsg := mapServiceErrorToUserMessage(err)
		respondError(w, statusCode, userMsg)
		return
	}

	log.Info("Batch stage reset", "batch_id", batchID, "stage", stage)

	respondJSON(w, http.StatusOK, batch)
}

// HandleGetBatch returns one batch by id
func (h *BatchHandler) HandleGetBatch(w http.ResponseWriter, r *http.Request) {
	batchID, ok := GetUUIDParam(r, w, "id")
	if !ok {
		return
	}

	batch, err := h.lifecycle.Get(r.Context(), batchID)
	if err != nil {
		statusCode, userMsg := mapServiceErrorToUserMessage(err)
		respondError(w, statusCode, userMsg)
		return
	}

	respondJSON(w, http.StatusOK, batch)
}

// ValidateSequenceResponse is the reply for the sequence validation endpoint
type ValidateSequenceResponse struct {
	Valid      bool     `json:"valid"`
	Violations []string `json:"violations,omitempty"`
}

// HandleValidateSequence reports a batch's stage-ordering violations
func (h *BatchHandler) HandleValidateSequence(w http.ResponseWriter, r *http.Request) {
	batchID, ok := GetUUIDParam(r, w, "id")
	if !ok {
		return
	}

	violations, err := h.lifecycle.ValidateSequence(r.Context(), batchID)
	if err != nil {
		statusCode, userMsg := mapServiceErrorToUserMessage(err)
		respondError(w, statusCode, userMsg)
		return
	}

	respondJSON(w, http.StatusOK, ValidateSequenceResponse{
		Valid:      len(violations) == 0,
		Violations: violations,
	})
}

// HandleSuspendWatering sets the pre-harvest watering suspension flag
func (h *BatchHandler) HandleSuspendWatering(w http.ResponseWriter, r *http.Request) {
	batchID, ok := GetUUIDParam(r, w, "id")
	if !ok {
		return
	}

	if err := h.lifecycle.SuspendWatering(r.Context(), batchID); err != nil {
		logger.FromContext(r.Context()).Error("Failed to suspend watering", "error", err, "batch_id", batchID)
		statusCode, userMsg := mapServiceErrorToUserMessage(err)
		respondError(w, statusCode, userMsg)
		return
	}

	respondJSON(w, http.StatusOK, SuccessResponse{Message: MsgWateringSuspendedSuccess})
}

// HandleReschedule replaces a batch's active transitions with a freshly
// computed schedule, used after a stage reset or protocol change.
func (h *BatchHandler) HandleReschedule(w http.ResponseWriter, r *http.Request) {
	batchID, ok := GetUUIDParam(r, w, "id")
	if !ok {
		return
	}

	transitions, err := h.schedule.ScheduleForBatch(r.Context(), batchID)
	if err != nil {
		logger.FromContext(r.Context()).Error("Failed to reschedule batch", "error", err, "batch_id", batchID)
		statusCode, userMsg := mapServiceErrorToUserMessage(err)
		respondError(w, statusCode, userMsg)
		return
	}

	respondJSON(w, http.StatusOK, DataResponse{Data: transitions})
}

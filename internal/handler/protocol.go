package handler

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/tillgreens/microfarm/internal/domain"
	"github.com/tillgreens/microfarm/internal/logger"
	"github.com/tillgreens/microfarm/internal/repository"
)

// ProtocolHandler exposes growing protocol management
type ProtocolHandler struct {
	protocols repository.Protocol
}

func NewProtocolHandler(protocols repository.Protocol) *ProtocolHandler {
	return &ProtocolHandler{protocols: protocols}
}

type CreateProtocolRequest struct {
	Variety              string  `json:"variety" validate:"required,max=100"`
	Cultivar             string  `json:"cultivar,omitempty" validate:"max=100"`
	LotNumber            string  `json:"lot_number,omitempty" validate:"max=100"`
	SoakHours            float64 `json:"soak_hours" validate:"gte=0"`
	GerminationDays      float64 `json:"germination_days" validate:"gte=0"`
	BlackoutDays         float64 `json:"blackout_days" validate:"gte=0"`
	LightDays            float64 `json:"light_days" validate:"gte=0"`
	SeedDensityGrams     float64 `json:"seed_density_grams" validate:"gte=0"`
	ExpectedYieldGrams   float64 `json:"expected_yield_grams" validate:"gte=0"`
	BufferPercent        float64 `json:"buffer_percent" validate:"gte=0,lte=100"`
	SuspendWateringHours float64 `json:"suspend_watering_hours" validate:"gte=0"`
}

// HandleCreateProtocol registers a new growing protocol
func (h *ProtocolHandler) HandleCreateProtocol(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	var req CreateProtocolRequest
	if err := DecodeAndValidateRequest(r, w, &req, "Create protocol"); err != nil {
		return
	}

	now := time.Now()
	p := &domain.GrowingProtocol{
		ID:                   uuid.New(),
		Variety:              req.Variety,
		Cultivar:             req.Cultivar,
		LotNumber:            req.LotNumber,
		SoakHours:            req.SoakHours,
		GerminationDays:      req.GerminationDays,
		BlackoutDays:         req.BlackoutDays,
		LightDays:            req.LightDays,
		SeedDensityGrams:     req.SeedDensityGrams,
		ExpectedYieldGrams:   req.ExpectedYieldGrams,
		BufferPercent:        req.BufferPercent,
		SuspendWateringHours: req.SuspendWateringHours,
		Active:               true,
		CreatedAt:            now,
		UpdatedAt:            now,
	}

	if err := p.Validate(); err != nil {
		log.Warn("Invalid protocol", "error", err, "variety", req.Variety)
		statusCode, userMsg := mapServiceErrorToUserMessage(err)
		respondError(w, statusCode, userMsg)
		return
	}

	if err := h.protocols.CreateProtocol(r.Context(), p); err != nil {
		log.Error("Failed to create protocol", "error", err, "variety", req.Variety)
		statusCode, userMsg := mapServiceErrorToUserMessage(err)
		respondError(w, statusCode, userMsg)
		return
	}

	log.Info("Protocol created", "protocol_id", p.ID, "variety", p.Variety)

	respondJSON(w, http.StatusCreated, p)
}

// HandleGetProtocol returns one protocol by id
func (h *ProtocolHandler) HandleGetProtocol(w http.ResponseWriter, r *http.Request) {
	protocolID, ok := GetUUIDParam(r, w, "id")
	if !ok {
		return
	}

	p, err := h.protocols.GetProtocol(r.Context(), protocolID)
	if err != nil {
		statusCode, userMsg := mapServiceErrorToUserMessage(err)
		respondError(w, statusCode, userMsg)
		return
	}

	respondJSON(w, http.StatusOK, p)
}

// HandleListProtocols returns all active protocols
func (h *ProtocolHandler) HandleListProtocols(w http.ResponseWriter, r *http.Request) {
	protocols, err := h.protocols.ListActiveProtocols(r.Context())
	if err != nil {
		logger.FromContext(r.Context()).Error("Failed to list protocols", "error", err)
		statusCode, userMsg := mapServiceErrorToUserMessage(err)
		respondError(w, statusCode, userMsg)
		return
	}

	respondJSON(w, http.StatusOK, DataResponse{Data: protocols})
}

package lifecycle

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tillgreens/microfarm/internal/concurrency"
	"github.com/tillgreens/microfarm/internal/domain"
	"github.com/tillgreens/microfarm/internal/event"
	"github.com/tillgreens/microfarm/internal/inventory"
	"github.com/tillgreens/microfarm/internal/logger"
	"github.com/tillgreens/microfarm/internal/metrics"
	"github.com/tillgreens/microfarm/internal/repository"
)

// PlantRequest describes a physical planting
type PlantRequest struct {
	ProtocolID uuid.UUID `json:"protocol_id" validate:"required"`
	Trays      int       `json:"trays" validate:"required,gt=0"`
	TrayIDs    []string  `json:"tray_ids,omitempty"`
	At         time.Time `json:"at,omitempty"`
}

// Service defines the interface for batch lifecycle operations
type Service interface {
	// Plant creates a growth batch in the soaking stage, deducting the
	// seed the trays need from the protocol's lot.
	Plant(ctx context.Context, req PlantRequest) (*domain.GrowthBatch, error)

	// Advance moves the batch to its next stage, honoring blackout
	// skipping. Advancing past the terminal stage is a warning no-op:
	// advanced is false and the batch comes back unchanged.
	Advance(ctx context.Context, batchID uuid.UUID) (batch *domain.GrowthBatch, advanced bool, err error)

	// ResetTo rewinds the batch to the given stage: timestamps of later
	// stages are cleared and the target's is backfilled when unset.
	ResetTo(ctx context.Context, batchID uuid.UUID, stage domain.Stage) (*domain.GrowthBatch, error)

	// ValidateSequence returns the batch's stage-ordering violations.
	// An empty list means the timestamps are consistent.
	ValidateSequence(ctx context.Context, batchID uuid.UUID) ([]string, error)

	// SuspendWatering sets the pre-harvest watering suspension flag
	SuspendWatering(ctx context.Context, batchID uuid.UUID) error

	// Get retrieves a batch
	Get(ctx context.Context, batchID uuid.UUID) (*domain.GrowthBatch, error)
}

type service struct {
	batches   repository.Batch
	protocols repository.Protocol
	inv       inventory.Service
	locks     *concurrency.LockManager
	bus       event.Bus
	now       func() time.Time
}

// NewService creates a new lifecycle service
func NewService(
	batches repository.Batch,
	protocols repository.Protocol,
	inv inventory.Service,
	locks *concurrency.LockManager,
	bus event.Bus,
) Service {
	return &service{
		batches:   batches,
		protocols: protocols,
		inv:       inv,
		locks:     locks,
		bus:       bus,
		now:       time.Now,
	}
}

func (s *service) Plant(ctx context.Context, req PlantRequest) (*domain.GrowthBatch, error) {
	log := logger.FromContext(ctx)

	protocol, err := s.protocols.GetProtocol(ctx, req.ProtocolID)
	if err != nil {
		return nil, err
	}
	if protocol.IsDepleted() {
		return nil, fmt.Errorf("%w: seed lot %s is depleted", domain.ErrInsufficientStock, protocol.LotNumber)
	}
	if req.Trays <= 0 {
		return nil, fmt.Errorf("%w: trays must be positive", domain.ErrInvalidInput)
	}

	at := req.At
	if at.IsZero() {
		at = s.now()
	}

	seedGrams := float64(req.Trays) * protocol.SeedDensityGrams
	if seedGrams > 0 && protocol.LotNumber != "" {
		if err := s.inv.Deduct(ctx, protocol.LotNumber, domain.NewQuantity(seedGrams, domain.UnitGram)); err != nil {
			return nil, err
		}
	}

	batch := &domain.GrowthBatch{
		ID:           uuid.New(),
		ProtocolID:   protocol.ID,
		TrayIDs:      req.TrayIDs,
		CurrentStage: domain.StageSoaking,
		CreatedAt:    at,
		UpdatedAt:    at,
	}
	batch.Times.SoakedAt = &at

	if err := s.batches.CreateBatch(ctx, batch); err != nil {
		return nil, fmt.Errorf("failed to create batch: %w", err)
	}

	metrics.BatchesPlanted.Inc()
	if pubErr := s.bus.Publish(ctx, event.Event{
		Version: event.EventSchemaVersion,
		Type:    event.BatchPlanted,
		Payload: domain.BatchStageAdvancedPayloadV1{
			BatchID: batch.ID,
			ToStage: domain.StageSoaking,
			At:      at,
		},
	}); pubErr != nil {
		log.Error("Failed to publish planted event", "error", pubErr)
	}

	log.Info("Batch planted",
		"batch_id", batch.ID,
		"protocol_id", protocol.ID,
		"trays", req.Trays,
		"seed_g", seedGrams)
	return batch, nil
}

func (s *service) Advance(ctx context.Context, batchID uuid.UUID) (*domain.GrowthBatch, bool, error) {
	log := logger.FromContext(ctx)

	lock := s.locks.GetLock(concurrency.BatchKey(batchID.String()))
	lock.Lock()
	defer lock.Unlock()

	batch, err := s.batches.GetBatch(ctx, batchID)
	if err != nil {
		return nil, false, err
	}
	protocol, err := s.protocols.GetProtocol(ctx, batch.ProtocolID)
	if err != nil {
		return nil, false, err
	}

	current := batch.Times.Infer()
	next, ok := current.Next(protocol.SkipsBlackout())
	if !ok {
		log.Warn("Advance past terminal stage ignored", "batch_id", batchID, "stage", current)
		return batch, false, nil
	}

	now := s.now()
	batch.Times.Set(next, &now)
	batch.CurrentStage = next
	batch.UpdatedAt = now

	if err := s.batches.UpdateBatch(ctx, batch); err != nil {
		return nil, false, fmt.Errorf("failed to update batch: %w", err)
	}

	if pubErr := s.bus.Publish(ctx, event.NewBatchStageAdvancedEvent(batchID, current, next, now)); pubErr != nil {
		log.Error("Failed to publish stage event", "error", pubErr)
	}
	log.Info("Batch advanced", "batch_id", batchID, "from", current, "to", next)
	return batch, true, nil
}

func (s *service) ResetTo(ctx context.Context, batchID uuid.UUID, stage domain.Stage) (*domain.GrowthBatch, error) {
	log := logger.FromContext(ctx)

	if !stage.Valid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownStage, stage)
	}

	lock := s.locks.GetLock(concurrency.BatchKey(batchID.String()))
	lock.Lock()
	defer lock.Unlock()

	batch, err := s.batches.GetBatch(ctx, batchID)
	if err != nil {
		return nil, err
	}

	targetIdx := stage.Index()
	for _, st := range domain.StageOrder[targetIdx+1:] {
		batch.Times.Set(st, nil)
	}
	if batch.Times.Get(stage) == nil {
		now := s.now()
		batch.Times.Set(stage, &now)
	}
	batch.CurrentStage = batch.Times.Infer()
	batch.UpdatedAt = s.now()

	if err := s.batches.UpdateBatch(ctx, batch); err != nil {
		return nil, fmt.Errorf("failed to update batch: %w", err)
	}
	log.Info("Batch reset", "batch_id", batchID, "stage", stage)
	return batch, nil
}

func (s *service) ValidateSequence(ctx context.Context, batchID uuid.UUID) ([]string, error) {
	batch, err := s.batches.GetBatch(ctx, batchID)
	if err != nil {
		return nil, err
	}

	var violations []string
	for i, earlier := range domain.StageOrder {
		earlierAt := batch.Times.Get(earlier)
		if earlierAt == nil {
			continue
		}
		for _, later := range domain.StageOrder[i+1:] {
			laterAt := batch.Times.Get(later)
			if laterAt == nil {
				continue
			}
			if earlierAt.After(*laterAt) {
				violations = append(violations, fmt.Sprintf(
					"%s at %s is after %s at %s",
					earlier, earlierAt.Format(time.RFC3339),
					later, laterAt.Format(time.RFC3339)))
			}
		}
	}
	return violations, nil
}

func (s *service) SuspendWatering(ctx context.Context, batchID uuid.UUID) error {
	log := logger.FromContext(ctx)

	lock := s.locks.GetLock(concurrency.BatchKey(batchID.String()))
	lock.Lock()
	defer lock.Unlock()

	batch, err := s.batches.GetBatch(ctx, batchID)
	if err != nil {
		return err
	}
	if batch.WateringSuspended {
		return nil
	}

	now := s.now()
	batch.WateringSuspended = true
	batch.WateringSuspendedAt = &now
	batch.UpdatedAt = now

	if err := s.batches.UpdateBatch(ctx, batch); err != nil {
		return fmt.Errorf("failed to update batch: %w", err)
	}

	if pubErr := s.bus.Publish(ctx, event.NewWateringSuspendedEvent(batchID, now)); pubErr != nil {
		log.Error("Failed to publish watering event", "error", pubErr)
	}
	log.Info("Watering suspended", "batch_id", batchID)
	return nil
}

func (s *service) Get(ctx context.Context, batchID uuid.UUID) (*domain.GrowthBatch, error) {
	return s.batches.GetBatch(ctx, batchID)
}

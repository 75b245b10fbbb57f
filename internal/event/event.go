package event

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tillgreens/microfarm/internal/domain"
)

// EventSchemaVersion is the current version of event payload schemas
const EventSchemaVersion = "1.0"

// Type represents the type of an event
type Type string

// Event represents a generic event in the system
type Event struct {
	Version string      `json:"version"` // Event schema version (e.g., "1.0")
	Type    Type        `json:"type"`
	Payload interface{} `json:"payload"`
}

// Common event types
const (
	BatchPlanted          Type = domain.EventBatchPlanted
	BatchStageAdvanced    Type = domain.EventBatchStageAdvanced
	WateringSuspended     Type = domain.EventWateringSuspended
	RequirementAggregated Type = domain.EventRequirementAggregated
	AggregateCancelled    Type = domain.EventAggregateCancelled
	LotDepleted           Type = domain.EventLotDepleted
	LotLowStock           Type = domain.EventLotLowStock
)

// NewBatchStageAdvancedEvent builds the event emitted when a batch advances
func NewBatchStageAdvancedEvent(batchID uuid.UUID, from, to domain.Stage, at time.Time) Event {
	return Event{
		Version: EventSchemaVersion,
		Type:    BatchStageAdvanced,
		Payload: domain.BatchStageAdvancedPayloadV1{
			BatchID:   batchID,
			FromStage: from,
			ToStage:   to,
			At:        at,
		},
	}
}

// NewWateringSuspendedEvent builds the event emitted when watering suspension fires
func NewWateringSuspendedEvent(batchID uuid.UUID, at time.Time) Event {
	return Event{
		Version: EventSchemaVersion,
		Type:    WateringSuspended,
		Payload: domain.WateringSuspendedPayloadV1{BatchID: batchID, At: at},
	}
}

// NewRequirementAggregatedEvent builds the event emitted on a merge
func NewRequirementAggregatedEvent(rec *domain.RequirementRecord, aggregateID uuid.UUID) Event {
	return Event{
		Version: EventSchemaVersion,
		Type:    RequirementAggregated,
		Payload: domain.RequirementAggregatedPayloadV1{
			RequirementID: rec.ID,
			AggregateID:   aggregateID,
			OrderID:       rec.OrderID,
			Trays:         rec.Trays,
			Grams:         rec.Grams,
		},
	}
}

// NewLotStockEvent builds a depletion or low-stock alert event
func NewLotStockEvent(health domain.LotHealth) Event {
	eventType := LotLowStock
	if health.Level == domain.StockDepleted {
		eventType = LotDepleted
	}
	return Event{
		Version: EventSchemaVersion,
		Type:    eventType,
		Payload: domain.LotStockPayloadV1{
			LotNumber:        health.LotNumber,
			Level:            health.Level,
			AvailableGrams:   health.Summary.AvailableGrams.String(),
			AvailablePercent: health.AvailablePercent,
		},
	}
}

// Handler is a function that handles an event
type Handler func(ctx context.Context, event Event) error

// Bus defines the interface for an event bus
type Bus interface {
	Publish(ctx context.Context, event Event) error
	Subscribe(eventType Type, handler Handler)
}

// MemoryBus is an in-memory implementation of the Event Bus
type MemoryBus struct {
	handlers map[Type][]Handler
	mu       sync.RWMutex
}

// NewMemoryBus creates a new MemoryBus
func NewMemoryBus() *MemoryBus {
	return &MemoryBus{
		handlers: make(map[Type][]Handler),
	}
}

// Publish publishes an event to all subscribers. Handlers run
// synchronously; a failing handler does not stop the others.
func (b *MemoryBus) Publish(ctx context.Context, event Event) error {
	b.mu.RLock()
	handlers, ok := b.handlers[event.Type]
	b.mu.RUnlock()

	if !ok {
		return nil
	}

	var errs []error
	for _, handler := range handlers {
		if err := handler(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("%d handler(s) failed for event %s: %v", len(errs), event.Type, errs)
	}

	return nil
}

// Subscribe subscribes a handler to an event type
func (b *MemoryBus) Subscribe(eventType Type, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers[eventType] = append(b.handlers[eventType], handler)
}

package aggregate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tillgreens/microfarm/internal/concurrency"
	"github.com/tillgreens/microfarm/internal/domain"
	"github.com/tillgreens/microfarm/internal/event"
	"github.com/tillgreens/microfarm/internal/logger"
	"github.com/tillgreens/microfarm/internal/metrics"
	"github.com/tillgreens/microfarm/internal/repository"
)

// Service defines the interface for batch aggregation
type Service interface {
	// Consolidate merges the given draft records into per-group draft
	// aggregates, creating aggregates lazily. Records that are not in
	// draft status fail the whole call with ErrAggregationIneligible.
	Consolidate(ctx context.Context, recordIDs []uuid.UUID) ([]*domain.BatchAggregate, error)

	// AddToExisting merges a new draft record into a draft sibling
	// sharing its grouping key. The sibling absorbs the totals and the
	// new record is cancelled with a note pointing at the survivor.
	// Returns merged=false when no sibling exists.
	AddToExisting(ctx context.Context, recordID uuid.UUID) (merged bool, err error)

	// Recalculate recomputes an aggregate's totals from its non-cancelled
	// members. Idempotent; the reconciliation path after ad-hoc edits.
	Recalculate(ctx context.Context, aggregateID uuid.UUID) (*domain.BatchAggregate, error)

	// RemoveFromAggregate detaches a record from its aggregate and
	// recalculates. An aggregate losing its last member is cancelled.
	RemoveFromAggregate(ctx context.Context, recordID uuid.UUID) error
}

type service struct {
	reqs  repository.Requirement
	aggs  repository.Aggregate
	locks *concurrency.LockManager
	bus   event.Bus
	now   func() time.Time
}

// NewService creates a new aggregation service
func NewService(reqs repository.Requirement, aggs repository.Aggregate, locks *concurrency.LockManager, bus event.Bus) Service {
	return &service{
		reqs:  reqs,
		aggs:  aggs,
		locks: locks,
		bus:   bus,
		now:   time.Now,
	}
}

func (s *service) Consolidate(ctx context.Context, recordIDs []uuid.UUID) ([]*domain.BatchAggregate, error) {
	log := logger.FromContext(ctx)

	groups := make(map[string][]*domain.RequirementRecord)
	var keys []string
	for _, id := range recordIDs {
		rec, err := s.reqs.GetRequirement(ctx, id)
		if err != nil {
			return nil, err
		}
		if !rec.Aggregatable() {
			return nil, fmt.Errorf("%w: record %s is %s", domain.ErrAggregationIneligible, rec.ID, rec.Status)
		}
		key := rec.GroupKey()
		if _, ok := groups[key]; !ok {
			keys = append(keys, key)
		}
		groups[key] = append(groups[key], rec)
	}

	var out []*domain.BatchAggregate
	for _, key := range keys {
		agg, err := s.consolidateGroup(ctx, groups[key])
		if err != nil {
			return nil, err
		}
		out = append(out, agg)
	}
	log.Info("Consolidation completed", "records", len(recordIDs), "aggregates", len(out))
	return out, nil
}

// consolidateGroup merges one grouping key's records under the group lock
func (s *service) consolidateGroup(ctx context.Context, records []*domain.RequirementRecord) (*domain.BatchAggregate, error) {
	first := records[0]
	key := first.GroupKey()

	lock := s.locks.GetLock(concurrency.GroupKey(key))
	lock.Lock()
	defer lock.Unlock()

	agg, err := s.findOrCreateDraft(ctx, first)
	if err != nil {
		return nil, err
	}

	for _, rec := range records {
		if rec.AggregateID != nil && *rec.AggregateID == agg.ID {
			continue
		}
		agg.TotalTrays += rec.Trays
		agg.TotalGrams += rec.Grams
		agg.History = append(agg.History, domain.AggregationEntry{
			RequirementID: rec.ID,
			OrderID:       rec.OrderID,
			Trays:         rec.Trays,
			Grams:         rec.Grams,
			MergedAt:      s.now(),
		})
		rec.AggregateID = &agg.ID
		if err := s.reqs.UpdateRequirement(ctx, rec); err != nil {
			return nil, fmt.Errorf("failed to link record %s: %w", rec.ID, err)
		}
		metrics.RequirementsMerged.Inc()
		if pubErr := s.bus.Publish(ctx, event.NewRequirementAggregatedEvent(rec, agg.ID)); pubErr != nil {
			logger.FromContext(ctx).Error("Failed to publish aggregation event", "error", pubErr)
		}
	}

	if err := s.aggs.UpdateAggregate(ctx, agg); err != nil {
		return nil, fmt.Errorf("failed to update aggregate: %w", err)
	}
	return agg, nil
}

// findOrCreateDraft resolves the draft aggregate for a record's key,
// creating one lazily. A create losing the unique-key race falls back to
// the winner.
func (s *service) findOrCreateDraft(ctx context.Context, rec *domain.RequirementRecord) (*domain.BatchAggregate, error) {
	agg, err := s.aggs.FindDraftByKey(ctx, rec.ProtocolID, rec.PlantBy, rec.HarvestOn)
	if err == nil {
		return agg, nil
	}
	if !errors.Is(err, domain.ErrAggregateNotFound) {
		return nil, err
	}

	now := s.now()
	agg = &domain.BatchAggregate{
		ID:          uuid.New(),
		ProtocolID:  rec.ProtocolID,
		PlantDate:   rec.PlantBy,
		HarvestDate: rec.HarvestOn,
		Status:      domain.AggregateDraft,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if createErr := s.aggs.CreateAggregate(ctx, agg); createErr != nil {
		agg, err = s.aggs.FindDraftByKey(ctx, rec.ProtocolID, rec.PlantBy, rec.HarvestOn)
		if err != nil {
			return nil, fmt.Errorf("failed to create aggregate: %w", createErr)
		}
	}
	return agg, nil
}

func (s *service) AddToExisting(ctx context.Context, recordID uuid.UUID) (bool, error) {
	log := logger.FromContext(ctx)

	rec, err := s.reqs.GetRequirement(ctx, recordID)
	if err != nil {
		return false, err
	}
	if !rec.Aggregatable() {
		return false, fmt.Errorf("%w: record %s is %s", domain.ErrAggregationIneligible, rec.ID, rec.Status)
	}

	lock := s.locks.GetLock(concurrency.GroupKey(rec.GroupKey()))
	lock.Lock()
	defer lock.Unlock()

	sibling, err := s.reqs.FindDraftSibling(ctx, rec)
	if err != nil {
		if errors.Is(err, domain.ErrRequirementNotFound) {
			return false, nil
		}
		return false, err
	}

	sibling.Trays += rec.Trays
	sibling.Grams += rec.Grams
	if err := s.reqs.UpdateRequirement(ctx, sibling); err != nil {
		return false, fmt.Errorf("failed to update sibling: %w", err)
	}

	if sibling.AggregateID != nil {
		agg, err := s.aggs.GetAggregate(ctx, *sibling.AggregateID)
		if err != nil {
			return false, err
		}
		agg.TotalTrays += rec.Trays
		agg.TotalGrams += rec.Grams
		agg.History = append(agg.History, domain.AggregationEntry{
			RequirementID: rec.ID,
			OrderID:       rec.OrderID,
			Trays:         rec.Trays,
			Grams:         rec.Grams,
			MergedAt:      s.now(),
		})
		if err := s.aggs.UpdateAggregate(ctx, agg); err != nil {
			return false, fmt.Errorf("failed to update aggregate: %w", err)
		}
		if pubErr := s.bus.Publish(ctx, event.NewRequirementAggregatedEvent(rec, agg.ID)); pubErr != nil {
			log.Error("Failed to publish aggregation event", "error", pubErr)
		}
	}

	rec.Status = domain.RequirementCancelled
	rec.Note = fmt.Sprintf("merged into requirement %s", sibling.ID)
	if err := s.reqs.UpdateRequirement(ctx, rec); err != nil {
		return false, fmt.Errorf("failed to cancel merged record: %w", err)
	}

	metrics.RequirementsMerged.Inc()
	log.Info("Requirement merged into sibling",
		"record_id", rec.ID,
		"sibling_id", sibling.ID)
	return true, nil
}

func (s *service) Recalculate(ctx context.Context, aggregateID uuid.UUID) (*domain.BatchAggregate, error) {
	agg, err := s.aggs.GetAggregate(ctx, aggregateID)
	if err != nil {
		return nil, err
	}

	lock := s.locks.GetLock(concurrency.GroupKey(agg.GroupKey()))
	lock.Lock()
	defer lock.Unlock()

	if err := s.recalculateLocked(ctx, agg); err != nil {
		return nil, err
	}
	return agg, nil
}

// recalculateLocked recomputes totals from the non-cancelled members.
// Caller holds the group lock.
func (s *service) recalculateLocked(ctx context.Context, agg *domain.BatchAggregate) error {
	members, err := s.reqs.ListByAggregate(ctx, agg.ID)
	if err != nil {
		return fmt.Errorf("failed to list members: %w", err)
	}

	trays, grams, active := 0, 0.0, 0
	for _, m := range members {
		if m.Status == domain.RequirementCancelled {
			continue
		}
		trays += m.Trays
		grams += m.Grams
		active++
	}
	agg.TotalTrays = trays
	agg.TotalGrams = grams

	if active == 0 && agg.Status == domain.AggregateDraft {
		agg.Status = domain.AggregateCancelled
		metrics.AggregatesCancelled.Inc()
		logger.FromContext(ctx).Info("Aggregate cancelled, no members remain", "aggregate_id", agg.ID)
	}

	if err := s.aggs.UpdateAggregate(ctx, agg); err != nil {
		return fmt.Errorf("failed to update aggregate: %w", err)
	}
	return nil
}

func (s *service) RemoveFromAggregate(ctx context.Context, recordID uuid.UUID) error {
	log := logger.FromContext(ctx)

	rec, err := s.reqs.GetRequirement(ctx, recordID)
	if err != nil {
		return err
	}
	if rec.AggregateID == nil {
		return nil
	}
	aggregateID := *rec.AggregateID

	agg, err := s.aggs.GetAggregate(ctx, aggregateID)
	if err != nil {
		return err
	}

	lock := s.locks.GetLock(concurrency.GroupKey(agg.GroupKey()))
	lock.Lock()
	defer lock.Unlock()

	rec.AggregateID = nil
	if err := s.reqs.UpdateRequirement(ctx, rec); err != nil {
		return fmt.Errorf("failed to detach record: %w", err)
	}

	if err := s.recalculateLocked(ctx, agg); err != nil {
		return err
	}

	log.Info("Requirement removed from aggregate",
		"record_id", rec.ID,
		"aggregate_id", aggregateID,
		"aggregate_status", agg.Status)
	return nil
}

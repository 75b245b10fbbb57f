package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tillgreens/microfarm/internal/domain"
)

// TransitionRepository implements scheduled transition persistence for PostgreSQL
type TransitionRepository struct {
	db *pgxpool.Pool
}

// NewTransitionRepository creates a new transition repository
func NewTransitionRepository(db *pgxpool.Pool) *TransitionRepository {
	return &TransitionRepository{db: db}
}

const transitionColumns = `transition_id, batch_id, target, stage, due_at, active, last_run_at, created_at`

func scanTransition(row pgx.Row) (*domain.ScheduledTransition, error) {
	var t domain.ScheduledTransition
	err := row.Scan(&t.ID, &t.BatchID, &t.Target, &t.Stage, &t.DueAt, &t.Active, &t.LastRunAt, &t.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// GetTransition retrieves a transition by id
func (r *TransitionRepository) GetTransition(ctx context.Context, id uuid.UUID) (*domain.ScheduledTransition, error) {
	query := `SELECT ` + transitionColumns + ` FROM scheduled_transitions WHERE transition_id = $1`
	t, err := scanTransition(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTransitionNotFound
		}
		return nil, fmt.Errorf("failed to get transition: %w", err)
	}
	return t, nil
}

// ListDue returns active transitions due at or before asOf
func (r *TransitionRepository) ListDue(ctx context.Context, asOf time.Time) ([]*domain.ScheduledTransition, error) {
	query := `SELECT ` + transitionColumns + ` FROM scheduled_transitions
		WHERE active AND due_at <= $1 ORDER BY due_at`
	return r.queryTransitions(ctx, query, asOf)
}

// ListActive returns all active transitions, soonest first
func (r *TransitionRepository) ListActive(ctx context.Context) ([]*domain.ScheduledTransition, error) {
	query := `SELECT ` + transitionColumns + ` FROM scheduled_transitions
		WHERE active ORDER BY due_at`
	return r.queryTransitions(ctx, query)
}

// ListActiveByBatch returns a batch's active transitions, soonest first
func (r *TransitionRepository) ListActiveByBatch(ctx context.Context, batchID uuid.UUID) ([]*domain.ScheduledTransition, error) {
	query := `SELECT ` + transitionColumns + ` FROM scheduled_transitions
		WHERE active AND batch_id = $1 ORDER BY due_at`
	return r.queryTransitions(ctx, query, batchID)
}

// CreateTransition persists a new one-shot transition
func (r *TransitionRepository) CreateTransition(ctx context.Context, t *domain.ScheduledTransition) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	query := `INSERT INTO scheduled_transitions (transition_id, batch_id, target, stage, due_at, active)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at`
	err := r.db.QueryRow(ctx, query, t.ID, t.BatchID, t.Target, t.Stage, t.DueAt, t.Active).Scan(&t.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create transition: %w", err)
	}
	return nil
}

// Deactivate consumes a transition
func (r *TransitionRepository) Deactivate(ctx context.Context, id uuid.UUID, ranAt *time.Time) error {
	query := `UPDATE scheduled_transitions SET active = FALSE, last_run_at = $2 WHERE transition_id = $1`
	tag, err := r.db.Exec(ctx, query, id, ranAt)
	if err != nil {
		return fmt.Errorf("failed to deactivate transition: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTransitionNotFound
	}
	return nil
}

// DeactivateForBatch consumes all of a batch's active transitions
func (r *TransitionRepository) DeactivateForBatch(ctx context.Context, batchID uuid.UUID) error {
	query := `UPDATE scheduled_transitions SET active = FALSE WHERE batch_id = $1 AND active`
	if _, err := r.db.Exec(ctx, query, batchID); err != nil {
		return fmt.Errorf("failed to deactivate batch transitions: %w", err)
	}
	return nil
}

func (r *TransitionRepository) queryTransitions(ctx context.Context, query string, args ...any) ([]*domain.ScheduledTransition, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list transitions: %w", err)
	}
	defer rows.Close()

	var transitions []*domain.ScheduledTransition
	for rows.Next() {
		t, err := scanTransition(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transition: %w", err)
		}
		transitions = append(transitions, t)
	}
	return transitions, rows.Err()
}

package bootstrap

import (
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tillgreens/microfarm/internal/database/postgres"
	"github.com/tillgreens/microfarm/internal/repository"
)

// Repositories holds all repository implementations used by the application.
// This provides a centralized location for repository initialization and
// makes dependency injection clearer.
type Repositories struct {
	Inventory   repository.Inventory
	Protocol    repository.Protocol
	Harvest     repository.HarvestHistory
	Requirement repository.Requirement
	Aggregate   repository.Aggregate
	Batch       repository.Batch
	Transition  repository.Transition
}

// InitializeRepositories creates all repository implementations over the
// shared connection pool.
func InitializeRepositories(dbPool *pgxpool.Pool) *Repositories {
	return &Repositories{
		Inventory:   postgres.NewInventoryRepository(dbPool),
		Protocol:    postgres.NewProtocolRepository(dbPool),
		Harvest:     postgres.NewHarvestHistoryRepository(dbPool),
		Requirement: postgres.NewRequirementRepository(dbPool),
		Aggregate:   postgres.NewAggregateRepository(dbPool),
		Batch:       postgres.NewBatchRepository(dbPool),
		Transition:  postgres.NewTransitionRepository(dbPool),
	}
}

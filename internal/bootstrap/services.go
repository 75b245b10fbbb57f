package bootstrap

import (
	"fmt"

	"github.com/tillgreens/microfarm/internal/aggregate"
	"github.com/tillgreens/microfarm/internal/catalog"
	"github.com/tillgreens/microfarm/internal/concurrency"
	"github.com/tillgreens/microfarm/internal/config"
	"github.com/tillgreens/microfarm/internal/depletion"
	"github.com/tillgreens/microfarm/internal/event"
	"github.com/tillgreens/microfarm/internal/inventory"
	"github.com/tillgreens/microfarm/internal/lifecycle"
	"github.com/tillgreens/microfarm/internal/notification"
	"github.com/tillgreens/microfarm/internal/planner"
	"github.com/tillgreens/microfarm/internal/schedule"
	"github.com/tillgreens/microfarm/internal/server"
	"github.com/tillgreens/microfarm/internal/yield"
)

// InitializeServices wires every domain service over the repositories.
// The catalog is loaded eagerly: a broken catalog file fails startup.
func InitializeServices(cfg *config.Config, repos *Repositories, bus event.Bus) (server.Services, error) {
	locks := concurrency.NewLockManager()

	catalogSvc, err := catalog.NewService(catalog.NewLoader(), cfg.CatalogPath)
	if err != nil {
		return server.Services{}, fmt.Errorf("failed to load catalog: %w", err)
	}

	inventorySvc := inventory.NewService(repos.Inventory, locks)
	yieldSvc := yield.NewService(repos.Harvest, cfg.YieldWindowMonths, cfg.YieldDecayDays)
	plannerSvc := planner.NewService(catalogSvc, yieldSvc, repos.Protocol, repos.Requirement, inventorySvc)
	aggregateSvc := aggregate.NewService(repos.Requirement, repos.Aggregate, locks, bus)
	depletionSvc := depletion.NewService(inventorySvc, repos.Protocol, notification.NewLogDispatcher(), bus, cfg.LowStockPercent)
	lifecycleSvc := lifecycle.NewService(repos.Batch, repos.Protocol, inventorySvc, locks, bus)
	scheduleSvc := schedule.NewService(repos.Transition, repos.Batch, repos.Protocol, lifecycleSvc)

	return server.Services{
		Inventory: inventorySvc,
		Planner:   plannerSvc,
		Aggregate: aggregateSvc,
		Depletion: depletionSvc,
		Catalog:   catalogSvc,
		Yield:     yieldSvc,
		Lifecycle: lifecycleSvc,
		Schedule:  scheduleSvc,
		Protocols: repos.Protocol,
	}, nil
}

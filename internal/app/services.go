package app

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/yungbote/leadops-backend/internal/data/aggregates"
	"github.com/yungbote/leadops-backend/internal/data/cascade"
	domainagg "github.com/yungbote/leadops-backend/internal/domain/aggregates"
	"github.com/yungbote/leadops-backend/internal/observability"
	"github.com/yungbote/leadops-backend/internal/platform/logger"
	"github.com/yungbote/leadops-backend/internal/services"
)

type Services struct {
	LeadAggregate domainagg.LeadAggregate
	Lead          services.LeadService
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, reposet Repos, clients Clients, metrics *observability.Metrics) (Services, error) {
	log.Info("Wiring services...")

	plan := cascade.LeadPlan(log)
	for _, line := range plan.Describe() {
		log.Debug("lead cascade step", "step", line.Name, "kind", line.Kind, "criticality", line.Criticality, "filter", line.Filter)
	}

	leadAgg, err := aggregates.NewLeadAggregate(aggregates.LeadAggregateDeps{
		Base: aggregates.BaseDeps{
			DB:    db,
			Log:   log,
			Hooks: aggregates.NewObservabilityHooks(metrics),
		},
		Plan:        plan,
		Store:       cascade.NewGormStore(db, log),
		Parallelism: cfg.PurgeParallelism,
	})
	if err != nil {
		return Services{}, fmt.Errorf("init lead aggregate: %w", err)
	}

	lead := services.NewLeadService(
		db,
		log,
		leadAgg,
		reposet.LeadDeletionLog,
		clients.PurgeLock,
		metrics,
		cfg.PurgeRequireExisting,
	)
	return Services{LeadAggregate: leadAgg, Lead: lead}, nil
}

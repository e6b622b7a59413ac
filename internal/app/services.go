package app

import (
	"fmt"

	"github.com/bwmarrin/snowflake"

	"github.com/yungbote/adbroker-backend/internal/data/aggregates"
	"github.com/yungbote/adbroker-backend/internal/data/docstore"
	"github.com/yungbote/adbroker-backend/internal/domain"
	domainagg "github.com/yungbote/adbroker-backend/internal/domain/aggregates"
	"github.com/yungbote/adbroker-backend/internal/inference/engine"
	"github.com/yungbote/adbroker-backend/internal/observability"
	"github.com/yungbote/adbroker-backend/internal/platform/logger"
	"github.com/yungbote/adbroker-backend/internal/services"
)

type Aggregates struct {
	Category   domainagg.CategoryAggregate
	Engagement domainagg.EngagementAggregate
}

type Services struct {
	Classification services.ClassificationService
	Ads            services.AdService
	Auction        services.AuctionService
	Engagement     services.EngagementService
	Reports        services.ReportService
}

func loadCompanyDirectory(log *logger.Logger, path string) (*domain.CompanyDirectory, error) {
	if path == "" {
		return domain.DefaultCompanyDirectory(), nil
	}
	dir, err := domain.LoadCompanyDirectory(path)
	if err != nil {
		return nil, err
	}
	log.Info("Loaded company directory", "path", path, "companies", len(dir.Companies()))
	return dir, nil
}

func wireAggregates(log *logger.Logger, cfg Config, store docstore.Store, companies *domain.CompanyDirectory, metrics *observability.Metrics) (Aggregates, error) {
	log.Info("Wiring aggregates...")
	node, err := snowflake.NewNode(cfg.SnowflakeNode)
	if err != nil {
		return Aggregates{}, fmt.Errorf("snowflake node %d: %w", cfg.SnowflakeNode, err)
	}
	base := aggregates.BaseDeps{
		Store: store,
		Log:   log,
		Hooks: aggregates.NewObservabilityHooks(metrics),
	}
	category, err := aggregates.NewCategoryAggregate(aggregates.CategoryAggregateDeps{
		Base:      base,
		Companies: companies,
		IDs:       node,
	})
	if err != nil {
		return Aggregates{}, err
	}
	return Aggregates{
		Category:   category,
		Engagement: aggregates.NewEngagementAggregate(aggregates.EngagementAggregateDeps{Base: base}),
	}, nil
}

func wireServices(log *logger.Logger, cfg Config, eng engine.Engine, reposet Repos, aggs Aggregates, companies *domain.CompanyDirectory, metrics *observability.Metrics) Services {
	log.Info("Wiring services...")
	classification := services.NewClassificationService(log, eng, aggs.Engagement, metrics, cfg.Classification)
	return Services{
		Classification: classification,
		Ads:            services.NewAdService(log, classification, reposet.State, metrics),
		Auction:        services.NewAuctionService(log, aggs.Category, reposet.State, metrics),
		Engagement:     services.NewEngagementService(log, aggs.Category, aggs.Engagement, metrics),
		Reports:        services.NewReportService(log, reposet.State, companies, domain.Billing{Epoch: cfg.BillingEpoch}, nil),
	}
}

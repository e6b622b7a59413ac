package aggregates

import (
	"context"
	"math"
	"strings"

	"github.com/yungbote/adbroker-backend/internal/data/docstore"
	"github.com/yungbote/adbroker-backend/internal/data/documents"
	"github.com/yungbote/adbroker-backend/internal/domain"
	domainagg "github.com/yungbote/adbroker-backend/internal/domain/aggregates"
	"github.com/yungbote/adbroker-backend/internal/normalization"
)

type EngagementAggregateDeps struct {
	Base BaseDeps
}

type engagementAggregate struct {
	deps EngagementAggregateDeps
}

func NewEngagementAggregate(deps EngagementAggregateDeps) domainagg.EngagementAggregate {
	deps.Base = deps.Base.withDefaults()
	return &engagementAggregate{deps: deps}
}

func (a *engagementAggregate) Contract() domainagg.Contract {
	return domainagg.EngagementAggregateContract
}

func (a *engagementAggregate) RecordClassification(ctx context.Context, in domainagg.ClassificationRecord) error {
	const op = "Broker.Engagement.RecordClassification"
	source := strings.TrimSpace(in.Source)
	if source == "" {
		source = domain.CostSourceClassification
	}
	cost := in.Cost
	if math.IsNaN(cost) || math.IsInf(cost, 0) || cost < 0 {
		cost = 0
	}
	diseases := normalization.Diseases(in.Diseases)

	docs := []string{documents.QueryCosts}
	if len(diseases) > 0 {
		docs = []string{documents.Categories, documents.Clicks, documents.Mentions, documents.Unclaimed, documents.QueryCosts}
	}
	return executeWrite(ctx, a.deps.Base, op, docs, func(tx *docstore.Txn) error {
		ledger, err := documents.ReadCostLedger(tx)
		if err != nil {
			return err
		}
		ledger.Add(source, cost)
		if err := documents.WriteCostLedger(tx, ledger); err != nil {
			return err
		}
		if len(diseases) == 0 {
			return nil
		}

		cats, err := documents.ReadCategories(tx)
		if err != nil {
			return err
		}
		clicks, err := documents.ReadClicks(tx)
		if err != nil {
			return err
		}
		mentions, err := documents.ReadCounts(tx, documents.Mentions)
		if err != nil {
			return err
		}
		unclaimed, err := documents.ReadCounts(tx, documents.Unclaimed)
		if err != nil {
			return err
		}
		clicksTouched := false
		for _, d := range diseases {
			mentions[d]++
			if _, owned := cats[d]; owned {
				stats := clicks[d]
				stats.Mentions++
				clicks[d] = stats
				clicksTouched = true
				continue
			}
			unclaimed[d]++
		}
		if err := documents.WriteCounts(tx, documents.Mentions, mentions); err != nil {
			return err
		}
		if err := documents.WriteCounts(tx, documents.Unclaimed, unclaimed); err != nil {
			return err
		}
		if clicksTouched {
			return documents.WriteClicks(tx, clicks)
		}
		return nil
	})
}

func (a *engagementAggregate) LogQueryTime(ctx context.Context, diseases []string, durationMs int64) error {
	const op = "Broker.Engagement.LogQueryTime"
	if durationMs < 0 {
		return domainagg.ValidationError(op, domainagg.RuleInvalidDuration,
			"duration_ms must not be negative", map[string]any{"duration_ms": durationMs})
	}
	// every entry is credited, so a disease listed twice gets the duration twice
	names := normalization.DiseaseEntries(diseases)
	return executeWrite(ctx, a.deps.Base, op, []string{documents.EngagementTimes, documents.TotalQueries}, func(tx *docstore.Txn) error {
		if len(names) > 0 {
			times, err := documents.ReadCounts(tx, documents.EngagementTimes)
			if err != nil {
				return err
			}
			for _, d := range names {
				times[d] += durationMs
			}
			if err := documents.WriteCounts(tx, documents.EngagementTimes, times); err != nil {
				return err
			}
		}
		total, err := documents.ReadTotalQueries(tx)
		if err != nil {
			return err
		}
		return documents.WriteTotalQueries(tx, total+1)
	})
}

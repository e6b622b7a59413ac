package aggregates

import "context"

var EngagementAggregateContract = Contract{
	Name:             "Broker.EngagementAggregate",
	WriteTxOwnership: WriteTxOwnedByAggregate,
	ReadPolicy:       ReadPolicyInvariantScoped,
	Documents:        []string{"categories_ads", "ad_clicks", "disease_counts", "uncategorized", "query_costs", "disease_times", "total_queries"},
	Notes:            "Owns mention, unclaimed, cost and engagement-time accounting.",
}

// EngagementAggregate owns the counters fed by classification and query timing.
type EngagementAggregate interface {
	Aggregate

	// RecordClassification applies the counters and cost of one classifier call
	// in a single commit.
	RecordClassification(ctx context.Context, in ClassificationRecord) error

	// LogQueryTime adds duration to each disease and counts one query.
	LogQueryTime(ctx context.Context, diseases []string, durationMs int64) error
}

type ClassificationRecord struct {
	// Diseases must already be normalized and deduplicated.
	Diseases []string
	Source   string
	Cost     float64
}

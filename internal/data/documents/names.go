// Package documents is the only place that knows how each named document is
// laid out on disk. Older files wrote some values as bare numbers and others
// as records; every reader here folds both into one typed shape, and every
// writer emits the canonical shape.
package documents

const (
	Categories      = "categories_ads"
	Clicks          = "ad_clicks"
	Mentions        = "disease_counts"
	Unclaimed       = "uncategorized"
	EngagementTimes = "disease_times"
	TotalQueries    = "total_queries"
	QueryCosts      = "query_costs"
	PurchaseHistory = "purchase_history"
)

// All lists every document the broker reads, in a fixed order.
var All = []string{
	Categories,
	Clicks,
	Mentions,
	Unclaimed,
	EngagementTimes,
	TotalQueries,
	QueryCosts,
	PurchaseHistory,
}

// Reader is satisfied by docstore.Snapshot and docstore.Txn.
type Reader interface {
	Decode(name string, v any) (bool, error)
}

// Writer is satisfied by docstore.Txn.
type Writer interface {
	Reader
	Put(name string, v any) error
}

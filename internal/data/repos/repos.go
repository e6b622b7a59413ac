package repos

import (
	"context"
	"fmt"
	"time"

	"github.com/yungbote/adbroker-backend/internal/data/docstore"
	"github.com/yungbote/adbroker-backend/internal/data/documents"
	"github.com/yungbote/adbroker-backend/internal/domain"
	"github.com/yungbote/adbroker-backend/internal/platform/logger"
)

// BrokerState is every document decoded from a single snapshot, so that derived
// ratios never mix counters from different instants.
type BrokerState struct {
	Categories      map[string]domain.Category
	Clicks          map[string]domain.ClickStats
	Mentions        map[string]int64
	Unclaimed       map[string]int64
	EngagementMs    map[string]int64
	TotalQueries    int64
	Costs           domain.CostLedger
	PurchaseHistory []domain.PurchaseReceipt
	ReadAt          time.Time
}

type StateRepo interface {
	// Load reads the requested documents; with no names it reads all of them.
	Load(ctx context.Context, names ...string) (BrokerState, error)
}

type stateRepo struct {
	store docstore.Store
	log   *logger.Logger
}

func NewStateRepo(store docstore.Store, baseLog *logger.Logger) StateRepo {
	if baseLog == nil {
		baseLog = logger.Nop()
	}
	return &stateRepo{store: store, log: baseLog.With("repo", "StateRepo")}
}

func (r *stateRepo) Load(ctx context.Context, names ...string) (BrokerState, error) {
	if len(names) == 0 {
		names = documents.All
	}
	snap, err := r.store.Snapshot(ctx, names...)
	if err != nil {
		return BrokerState{}, fmt.Errorf("snapshot %v: %w", names, err)
	}
	st := BrokerState{
		Categories:   map[string]domain.Category{},
		Clicks:       map[string]domain.ClickStats{},
		Mentions:     map[string]int64{},
		Unclaimed:    map[string]int64{},
		EngagementMs: map[string]int64{},
		Costs:        domain.CostLedger{BySource: map[string]float64{}},
		ReadAt:       time.Now().UTC(),
	}
	for _, n := range names {
		switch n {
		case documents.Categories:
			st.Categories, err = documents.ReadCategories(snap)
		case documents.Clicks:
			st.Clicks, err = documents.ReadClicks(snap)
		case documents.Mentions:
			st.Mentions, err = documents.ReadCounts(snap, documents.Mentions)
		case documents.Unclaimed:
			st.Unclaimed, err = documents.ReadCounts(snap, documents.Unclaimed)
		case documents.EngagementTimes:
			st.EngagementMs, err = documents.ReadCounts(snap, documents.EngagementTimes)
		case documents.TotalQueries:
			st.TotalQueries, err = documents.ReadTotalQueries(snap)
		case documents.QueryCosts:
			st.Costs, err = documents.ReadCostLedger(snap)
		case documents.PurchaseHistory:
			st.PurchaseHistory, err = documents.ReadPurchaseHistory(snap)
		default:
			err = fmt.Errorf("unknown document %q", n)
		}
		if err != nil {
			r.log.Error("decode document failed", "document", n, "error", err)
			return BrokerState{}, err
		}
	}
	return st, nil
}

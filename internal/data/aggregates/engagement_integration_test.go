package aggregates_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/adbroker-backend/internal/data/aggregates"
	"github.com/yungbote/adbroker-backend/internal/data/documents"
	"github.com/yungbote/adbroker-backend/internal/data/repos"
	"github.com/yungbote/adbroker-backend/internal/data/repos/testutil"
	"github.com/yungbote/adbroker-backend/internal/domain"
	domainagg "github.com/yungbote/adbroker-backend/internal/domain/aggregates"
)

func newEngagementFixture(t *testing.T) (domainagg.EngagementAggregate, repos.StateRepo) {
	t.Helper()
	ctx := context.Background()
	store := testutil.Store(t)
	testutil.SeedCategories(t, ctx, store, testutil.Genentech70())
	testutil.SeedClicks(t, ctx, store, map[string]domain.ClickStats{"breast cancer": {Clicks: 3, Mentions: 5}})
	agg := aggregates.NewEngagementAggregate(aggregates.EngagementAggregateDeps{
		Base: aggregates.BaseDeps{Store: store},
	})
	return agg, repos.NewStateRepo(store, nil)
}

func TestRecordClassificationSplitsOwnedAndUnclaimed(t *testing.T) {
	agg, state := newEngagementFixture(t)
	ctx := context.Background()

	err := agg.RecordClassification(ctx, domainagg.ClassificationRecord{
		Diseases: []string{"breast cancer", "arthritis", "Arthritis"},
		Cost:     0.002,
	})
	require.NoError(t, err)

	st, err := state.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"breast cancer": 1, "arthritis": 1}, st.Mentions)
	assert.Equal(t, map[string]int64{"arthritis": 1}, st.Unclaimed)
	assert.Equal(t, domain.ClickStats{Clicks: 3, Mentions: 6}, st.Clicks["breast cancer"])
	assert.InDelta(t, 0.002, st.Costs.BySource[domain.CostSourceClassification], 1e-12)
	assert.Equal(t, int64(1), st.Costs.Calls)
}

func TestRecordClassificationWithoutDiseasesOnlyChargesCost(t *testing.T) {
	agg, state := newEngagementFixture(t)
	ctx := context.Background()

	require.NoError(t, agg.RecordClassification(ctx, domainagg.ClassificationRecord{Cost: 0.001}))

	st, err := state.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, st.Mentions)
	assert.Empty(t, st.Unclaimed)
	assert.InDelta(t, 0.001, st.Costs.Total(), 1e-12)
}

func TestLogQueryTimeCountsOneQueryPerEvent(t *testing.T) {
	agg, state := newEngagementFixture(t)
	ctx := context.Background()

	require.NoError(t, agg.LogQueryTime(ctx, []string{"breast cancer", "Back Pain"}, 1500))
	require.NoError(t, agg.LogQueryTime(ctx, []string{"breast cancer"}, 500))
	require.NoError(t, agg.LogQueryTime(ctx, nil, 100))

	st, err := state.Load(ctx, documents.EngagementTimes, documents.TotalQueries)
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"breast cancer": 2000, "back pain": 1500}, st.EngagementMs)
	assert.Equal(t, int64(3), st.TotalQueries)

	err = agg.LogQueryTime(ctx, []string{"gout"}, -1)
	assert.Equal(t, domainagg.RuleInvalidDuration, domainagg.RuleOf(err))
}

func TestLogQueryTimeCreditsEveryListedEntry(t *testing.T) {
	agg, state := newEngagementFixture(t)
	ctx := context.Background()

	require.NoError(t, agg.LogQueryTime(ctx, []string{"arthritis", "Arthritis", " arthritis ", ""}, 100))

	st, err := state.Load(ctx, documents.EngagementTimes, documents.TotalQueries)
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"arthritis": 300}, st.EngagementMs)
	assert.Equal(t, int64(1), st.TotalQueries)
}

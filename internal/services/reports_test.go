package services

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/adbroker-backend/internal/data/documents"
	"github.com/yungbote/adbroker-backend/internal/data/repos/testutil"
	"github.com/yungbote/adbroker-backend/internal/domain"
	domainagg "github.com/yungbote/adbroker-backend/internal/domain/aggregates"
	"github.com/yungbote/adbroker-backend/internal/platform/logger"
)

func fixedNow(days int) func() time.Time {
	return func() time.Time { return domain.DefaultBillingEpoch.Add(time.Duration(days)*24*time.Hour + time.Hour) }
}

func newReportFixture(t *testing.T, days int) (testStack, ReportService) {
	t.Helper()
	stack := newTestStack(t)
	ctx := context.Background()
	testutil.SeedCategories(t, ctx, stack.store,
		testutil.Genentech70(),
		testutil.Lilly40(),
		domain.Category{Disease: "obesity", Company: "eli lilly", Price: 120, AdPath: "ad_images/lilly_obesity.png", Link: "https://lilly.com"},
	)
	testutil.SeedClicks(t, ctx, stack.store, map[string]domain.ClickStats{
		"breast cancer": {Clicks: 6, Mentions: 12},
		"hypertension":  {Clicks: 2, Mentions: 0},
	})
	testutil.SeedCounts(t, ctx, stack.store, documents.Mentions, map[string]int64{"breast cancer": 12, "hypertension": 4})
	testutil.SeedCounts(t, ctx, stack.store, documents.EngagementTimes, map[string]int64{"breast cancer": 6000})
	testutil.SeedCounts(t, ctx, stack.store, documents.Unclaimed, map[string]int64{"gout": 3, "asthma": 9, "lupus": 3, "obesity": 2})
	testutil.SeedTotals(t, ctx, stack.store, 48, domain.CostLedger{BySource: map[string]float64{"classification": 4.5, "query": 0.5}, Calls: 10})

	svc := NewReportService(logger.Nop(), stack.state, nil, domain.Billing{Epoch: domain.DefaultBillingEpoch}, fixedNow(days))
	return stack, svc
}

func TestListUnclaimedOrdersByMentionsAndSkipsOwned(t *testing.T) {
	_, svc := newReportFixture(t, 30)

	got, err := svc.ListUnclaimed(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []domain.UnclaimedEntry{
		{Disease: "asthma", Mentions: 9},
		{Disease: "gout", Mentions: 3},
		{Disease: "lupus", Mentions: 3},
	}, got)
}

func TestCompanySummaryRatios(t *testing.T) {
	_, svc := newReportFixture(t, 30)

	sum, err := svc.CompanySummary(context.Background(), "Genentech, Inc.")
	require.NoError(t, err)
	assert.Equal(t, "genentech", sum.Company)
	require.Len(t, sum.Summary, 1)

	bc := sum.Summary[0]
	assert.Equal(t, "breast cancer", bc.Disease)
	assert.Equal(t, int64(12), bc.Mentions)
	assert.Equal(t, int64(6), bc.Clicks)
	assert.InDelta(t, 0.25, bc.MentionsPerQuery, 1e-9)
	assert.InDelta(t, 0.5, bc.ClicksPerMention, 1e-9)
	assert.InDelta(t, 500.0, bc.AvgTimePerMentionMs, 1e-9)
	assert.InDelta(t, 6.0, bc.Times, 1e-9)
	assert.InDelta(t, 70.0, bc.TotalPaid, 1e-9)
	require.NotNil(t, bc.ClicksPerDollar)
	assert.InDelta(t, 6.0/70.0, *bc.ClicksPerDollar, 1e-9)
	require.NotNil(t, bc.MentionsPerDay)
	assert.InDelta(t, 0.4, *bc.MentionsPerDay, 1e-9)
	require.NotNil(t, bc.ClicksPerDay)
	assert.InDelta(t, 0.2, *bc.ClicksPerDay, 1e-9)
}

func TestCompanySummaryZeroDenominators(t *testing.T) {
	_, svc := newReportFixture(t, 0)

	sum, err := svc.CompanySummary(context.Background(), "eli-lilly")
	require.NoError(t, err)
	require.Len(t, sum.Summary, 2)

	hyp := sum.Summary[0]
	assert.Equal(t, "hypertension", hyp.Disease)
	assert.Equal(t, int64(4), hyp.Mentions)

	ob := sum.Summary[1]
	assert.Equal(t, "obesity", ob.Disease)
	assert.Equal(t, 0.0, ob.ClicksPerMention)
	assert.Equal(t, 0.0, ob.AvgTimePerMentionMs)
	assert.Equal(t, 0.0, ob.TotalPaid)
	assert.Nil(t, ob.ClicksPerDollar)
	assert.Nil(t, ob.MentionsPerDay)
	assert.Nil(t, ob.ClicksPerDay)
}

func TestCompanySummaryUnknownCompany(t *testing.T) {
	_, svc := newReportFixture(t, 30)
	_, err := svc.CompanySummary(context.Background(), "Acme Pharma")
	assert.True(t, domainagg.IsCode(err, domainagg.CodeNotFound))

	sum, err := svc.CompanySummary(context.Background(), "novartis")
	require.NoError(t, err)
	assert.Empty(t, sum.Summary)
}

func TestRevenueReportIsAdditive(t *testing.T) {
	_, svc := newReportFixture(t, 45)

	rep, err := svc.RevenueReport(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(45), rep.DaysElapsed)
	assert.InDelta(t, 1.5, rep.ElapsedMonths, 1e-9)
	assert.InDelta(t, 105.0, rep.CompanyBreakdown["genentech"], 1e-9)
	assert.InDelta(t, 240.0, rep.CompanyBreakdown["eli lilly"], 1e-9)
	assert.InDelta(t, 180.0, rep.CategoryBreakdown["obesity"], 1e-9)

	sum := 0.0
	for _, v := range rep.CompanyBreakdown {
		sum += v
	}
	assert.InDelta(t, sum, rep.TotalRevenue, 1e-9)
	assert.InDelta(t, 5.0, rep.TotalCost, 1e-9)
	assert.InDelta(t, 340.0, rep.NetProfit, 1e-9)
	require.NotNil(t, rep.ProfitPerDay)
	assert.InDelta(t, 340.0/45.0, *rep.ProfitPerDay, 1e-9)
	assert.Equal(t, int64(10), rep.ClassifierCalls)
}

func TestRevenueReportOnEpochDay(t *testing.T) {
	_, svc := newReportFixture(t, 0)
	rep, err := svc.RevenueReport(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0.0, rep.TotalRevenue)
	assert.InDelta(t, -5.0, rep.NetProfit, 1e-9)
	assert.Nil(t, rep.ProfitPerDay)
	assert.False(t, math.IsNaN(rep.ElapsedMonths))
}

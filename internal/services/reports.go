package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/yungbote/adbroker-backend/internal/data/documents"
	"github.com/yungbote/adbroker-backend/internal/data/repos"
	"github.com/yungbote/adbroker-backend/internal/domain"
	domainagg "github.com/yungbote/adbroker-backend/internal/domain/aggregates"
	"github.com/yungbote/adbroker-backend/internal/normalization"
	"github.com/yungbote/adbroker-backend/internal/platform/logger"
)

// CategorySummary is one owned category in a company report. Ratios whose
// denominator is zero are 0 for the first three and null for the rest.
type CategorySummary struct {
	Disease             string   `json:"disease"`
	Mentions            int64    `json:"mentions"`
	Clicks              int64    `json:"clicks"`
	MentionsPerQuery    float64  `json:"mentions_per_query"`
	ClicksPerMention    float64  `json:"clicks_per_mention"`
	EngagementMs        int64    `json:"engagement_ms"`
	Times               float64  `json:"times"`
	AvgTimePerMentionMs float64  `json:"avg_time_per_mention_ms"`
	MonthlyCategoryCost float64  `json:"monthly_category_cost"`
	TotalPaid           float64  `json:"total_paid"`
	ClicksPerDollar     *float64 `json:"clicks_per_dollar"`
	MentionsPerDay      *float64 `json:"mentions_per_day"`
	ClicksPerDay        *float64 `json:"clicks_per_day"`
}

type CompanySummary struct {
	Company string            `json:"company"`
	Summary []CategorySummary `json:"summary"`
}

type RevenueReport struct {
	DaysElapsed       int64              `json:"days_elapsed"`
	ElapsedMonths     float64            `json:"elapsed_months"`
	TotalCost         float64            `json:"total_api_costs_usd"`
	TotalRevenue      float64            `json:"total_prorated_ad_revenue_usd"`
	NetProfit         float64            `json:"net_profit_usd"`
	ProfitPerDay      *float64           `json:"profit_per_day"`
	CompanyBreakdown  map[string]float64 `json:"revenue_breakdown_by_company"`
	CategoryBreakdown map[string]float64 `json:"revenue_breakdown_by_category"`
	ClassifierCalls   int64              `json:"classifier_calls"`
}

type ReportService interface {
	ListUnclaimed(ctx context.Context) ([]domain.UnclaimedEntry, error)
	CompanySummary(ctx context.Context, company string) (CompanySummary, error)
	RevenueReport(ctx context.Context) (RevenueReport, error)
}

type reportService struct {
	log       *logger.Logger
	state     repos.StateRepo
	companies *domain.CompanyDirectory
	billing   domain.Billing
	now       func() time.Time
}

func NewReportService(log *logger.Logger, state repos.StateRepo, companies *domain.CompanyDirectory, billing domain.Billing, now func() time.Time) ReportService {
	if companies == nil {
		companies = domain.DefaultCompanyDirectory()
	}
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &reportService{
		log:       log.With("service", "ReportService"),
		state:     state,
		companies: companies,
		billing:   billing,
		now:       now,
	}
}

// ListUnclaimed orders by mentions descending, then by name.
func (s *reportService) ListUnclaimed(ctx context.Context) ([]domain.UnclaimedEntry, error) {
	st, err := s.state.Load(ctx, documents.Categories, documents.Unclaimed)
	if err != nil {
		return nil, domainagg.PersistenceError("ReportService.ListUnclaimed", err)
	}
	out := make([]domain.UnclaimedEntry, 0, len(st.Unclaimed))
	for d, n := range st.Unclaimed {
		if _, owned := st.Categories[d]; owned {
			continue
		}
		out = append(out, domain.UnclaimedEntry{Disease: d, Mentions: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Mentions != out[j].Mentions {
			return out[i].Mentions > out[j].Mentions
		}
		return out[i].Disease < out[j].Disease
	})
	return out, nil
}

func (s *reportService) CompanySummary(ctx context.Context, company string) (CompanySummary, error) {
	const op = "ReportService.CompanySummary"
	c, ok := s.companies.Resolve(company)
	if !ok {
		return CompanySummary{}, domainagg.NotFound(op, fmt.Sprintf("company %q is not in the company directory", normalization.Disease(company)))
	}
	st, err := s.state.Load(ctx)
	if err != nil {
		return CompanySummary{}, domainagg.PersistenceError(op, err)
	}
	days := s.billing.DaysElapsed(s.now())

	var owned []domain.Category
	for _, cat := range st.Categories {
		if cat.Company == c.Name {
			owned = append(owned, cat)
		}
	}
	sort.Slice(owned, func(i, j int) bool { return owned[i].Disease < owned[j].Disease })

	out := CompanySummary{Company: c.Name, Summary: make([]CategorySummary, 0, len(owned))}
	for _, cat := range owned {
		out.Summary = append(out.Summary, s.summarize(st, cat, days))
	}
	return out, nil
}

func (s *reportService) summarize(st repos.BrokerState, cat domain.Category, days int64) CategorySummary {
	mentions := st.Mentions[cat.Disease]
	clicks := st.Clicks[cat.Disease].Clicks
	engagement := st.EngagementMs[cat.Disease]
	paid := s.billing.Prorate(cat.Price, days)
	return CategorySummary{
		Disease:             cat.Disease,
		Mentions:            mentions,
		Clicks:              clicks,
		MentionsPerQuery:    ratioOrZero(float64(mentions), float64(st.TotalQueries)),
		ClicksPerMention:    ratioOrZero(float64(clicks), float64(mentions)),
		EngagementMs:        engagement,
		Times:               float64(engagement) / 1000.0,
		AvgTimePerMentionMs: ratioOrZero(float64(engagement), float64(mentions)),
		MonthlyCategoryCost: cat.Price,
		TotalPaid:           paid,
		ClicksPerDollar:     ratioOrNull(float64(clicks), paid),
		MentionsPerDay:      ratioOrNull(float64(mentions), float64(days)),
		ClicksPerDay:        ratioOrNull(float64(clicks), float64(days)),
	}
}

func (s *reportService) RevenueReport(ctx context.Context) (RevenueReport, error) {
	st, err := s.state.Load(ctx, documents.Categories, documents.QueryCosts)
	if err != nil {
		return RevenueReport{}, domainagg.PersistenceError("ReportService.RevenueReport", err)
	}
	days := s.billing.DaysElapsed(s.now())
	rep := RevenueReport{
		DaysElapsed:       days,
		ElapsedMonths:     s.billing.Months(days),
		TotalCost:         st.Costs.Total(),
		CompanyBreakdown:  map[string]float64{},
		CategoryBreakdown: map[string]float64{},
		ClassifierCalls:   st.Costs.Calls,
	}
	for _, cat := range st.Categories {
		rev := s.billing.Prorate(cat.Price, days)
		rep.CategoryBreakdown[cat.Disease] = rev
		rep.CompanyBreakdown[cat.Company] += rev
	}
	// total is the sum of the breakdown so the two always agree
	companies := make([]string, 0, len(rep.CompanyBreakdown))
	for c := range rep.CompanyBreakdown {
		companies = append(companies, c)
	}
	sort.Strings(companies)
	for _, c := range companies {
		rep.TotalRevenue += rep.CompanyBreakdown[c]
	}
	rep.NetProfit = rep.TotalRevenue - rep.TotalCost
	rep.ProfitPerDay = ratioOrNull(rep.NetProfit, float64(days))
	return rep, nil
}

func ratioOrZero(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}

func ratioOrNull(num, den float64) *float64 {
	if den == 0 {
		return nil
	}
	v := num / den
	return &v
}

package services

import (
	"context"
	"strings"
	"time"

	"github.com/yungbote/adbroker-backend/internal/data/documents"
	"github.com/yungbote/adbroker-backend/internal/data/repos"
	"github.com/yungbote/adbroker-backend/internal/domain"
	domainagg "github.com/yungbote/adbroker-backend/internal/domain/aggregates"
	"github.com/yungbote/adbroker-backend/internal/normalization"
	"github.com/yungbote/adbroker-backend/internal/observability"
	"github.com/yungbote/adbroker-backend/internal/platform/logger"
)

type PurchaseRequest struct {
	Disease string
	Company string
	// Bid is kept as text so malformed input surfaces as invalid_bid.
	Bid  string
	Link string

	// ExpectedPrice is the price the bidder saw. When set, a purchase that
	// commits first turns this one stale even if the requests did not overlap.
	ExpectedPrice string
}

type AuctionService interface {
	PurchaseCategory(ctx context.Context, req PurchaseRequest) (domain.PurchaseReceipt, error)
	SeedCategories(ctx context.Context, entries []domainagg.SeedEntry) ([]domain.Category, error)
	ListCategories(ctx context.Context) (map[string]domain.Category, error)
}

type auctionService struct {
	log        *logger.Logger
	categories domainagg.CategoryAggregate
	state      repos.StateRepo
	metrics    *observability.Metrics
	gate       *observationGate
	now        func() time.Time
}

func NewAuctionService(log *logger.Logger, categories domainagg.CategoryAggregate, state repos.StateRepo, metrics *observability.Metrics) AuctionService {
	return &auctionService{
		log:        log.With("service", "AuctionService"),
		categories: categories,
		state:      state,
		metrics:    metrics,
		gate:       newObservationGate(),
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func (s *auctionService) PurchaseCategory(ctx context.Context, req PurchaseRequest) (domain.PurchaseReceipt, error) {
	in := domainagg.PurchaseInput{
		Disease: req.Disease,
		Company: req.Company,
		Bid:     req.Bid,
		Link:    req.Link,
		At:      s.now(),
	}
	observed, release, err := s.observe(ctx, req)
	if err != nil {
		s.metrics.IncPurchase(purchaseOutcome(err))
		return domain.PurchaseReceipt{}, err
	}
	defer release()
	in.Observed = observed

	receipt, err := s.categories.Purchase(ctx, in)
	if err != nil {
		s.metrics.IncPurchase(purchaseOutcome(err))
		return domain.PurchaseReceipt{}, err
	}
	s.metrics.IncPurchase("success")
	return receipt, nil
}

// observe pins the category state the bid is validated against: the
// bidder's own price when given, otherwise the state shared by overlapping
// purchases of the same category.
func (s *auctionService) observe(ctx context.Context, req PurchaseRequest) (*domainagg.PurchaseObservation, func(), error) {
	const op = "AuctionService.PurchaseCategory"
	if strings.TrimSpace(req.ExpectedPrice) != "" {
		price, ok := domain.ParseAmount(req.ExpectedPrice)
		if !ok {
			return nil, nil, domainagg.ValidationError(op, domainagg.RuleInvalidPrice,
				"expected_price must be a non-negative number", map[string]any{"expected_price": req.ExpectedPrice})
		}
		return &domainagg.PurchaseObservation{Price: price}, func() {}, nil
	}
	disease := normalization.Disease(req.Disease)
	return s.gate.acquire(ctx, disease, func() (*domainagg.PurchaseObservation, error) {
		st, err := s.state.Load(ctx, documents.Categories)
		if err != nil {
			return nil, domainagg.PersistenceError(op, err)
		}
		cur, ok := st.Categories[disease]
		if !ok {
			return nil, nil
		}
		return &domainagg.PurchaseObservation{Company: cur.Company, Price: cur.Price}, nil
	})
}

func purchaseOutcome(err error) string {
	if rule := domainagg.RuleOf(err); rule != "" {
		return rule
	}
	return string(domainagg.CodeOf(err))
}

func (s *auctionService) SeedCategories(ctx context.Context, entries []domainagg.SeedEntry) ([]domain.Category, error) {
	return s.categories.Seed(ctx, entries)
}

func (s *auctionService) ListCategories(ctx context.Context) (map[string]domain.Category, error) {
	st, err := s.state.Load(ctx, documents.Categories)
	if err != nil {
		return nil, domainagg.PersistenceError("AuctionService.ListCategories", err)
	}
	return st.Categories, nil
}

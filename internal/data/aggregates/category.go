package aggregates

import (
	"context"
	"fmt"
	"math"

	"github.com/bwmarrin/snowflake"

	"github.com/yungbote/adbroker-backend/internal/data/docstore"
	"github.com/yungbote/adbroker-backend/internal/data/documents"
	"github.com/yungbote/adbroker-backend/internal/domain"
	domainagg "github.com/yungbote/adbroker-backend/internal/domain/aggregates"
	"github.com/yungbote/adbroker-backend/internal/normalization"
)

type CategoryAggregateDeps struct {
	Base      BaseDeps
	Companies *domain.CompanyDirectory
	IDs       *snowflake.Node
}

type categoryAggregate struct {
	deps CategoryAggregateDeps
}

var purchaseDocuments = []string{
	documents.Categories,
	documents.Clicks,
	documents.Unclaimed,
	documents.PurchaseHistory,
}

func NewCategoryAggregate(deps CategoryAggregateDeps) (domainagg.CategoryAggregate, error) {
	deps.Base = deps.Base.withDefaults()
	if deps.Companies == nil {
		deps.Companies = domain.DefaultCompanyDirectory()
	}
	if deps.IDs == nil {
		node, err := snowflake.NewNode(1)
		if err != nil {
			return nil, fmt.Errorf("snowflake node: %w", err)
		}
		deps.IDs = node
	}
	return &categoryAggregate{deps: deps}, nil
}

func (a *categoryAggregate) Contract() domainagg.Contract {
	return domainagg.CategoryAggregateContract
}

type validPurchase struct {
	company domain.Company
	bid     float64
	link    string
}

// validatePurchase applies the purchase rules in order and stops at the first failure.
func (a *categoryAggregate) validatePurchase(op string, cur domain.Category, found bool, in domainagg.PurchaseInput, observed *domainagg.PurchaseObservation) (validPurchase, error) {
	var out validPurchase
	if !found {
		return out, domainagg.NotFound(op, fmt.Sprintf("category %q does not exist", normalization.Disease(in.Disease)))
	}
	bid, ok := domain.ParseAmount(in.Bid)
	if !ok {
		return out, domainagg.ValidationError(op, domainagg.RuleInvalidBid,
			"bid must be a non-negative number", map[string]any{"bid": in.Bid})
	}
	if observed != nil {
		if err := RequireUnchangedSinceObserved(op, *observed, cur); err != nil {
			return out, err
		}
	}
	if err := RequireBidAtLeast(op, bid, cur.Price); err != nil {
		return out, err
	}
	bidderKey := normalization.CompanyKey(in.Company)
	company, known := a.deps.Companies.Resolve(in.Company)
	if bidderKey == normalization.CompanyKey(cur.Company) || (known && company.Name == cur.Company) {
		return out, domainagg.ValidationError(op, domainagg.RuleAlreadyOwned,
			"company already owns this category", map[string]any{"company": cur.Company})
	}
	if !known {
		return out, domainagg.ValidationError(op, domainagg.RuleUnknownCompany,
			"company is not in the company directory", map[string]any{"company": in.Company})
	}
	if !domain.ValidLink(in.Link) {
		return out, domainagg.ValidationError(op, domainagg.RuleInvalidLink,
			"ad link must be an absolute http(s) URL", map[string]any{"link": in.Link})
	}
	return validPurchase{company: company, bid: bid, link: in.Link}, nil
}

func (a *categoryAggregate) Purchase(ctx context.Context, in domainagg.PurchaseInput) (domain.PurchaseReceipt, error) {
	const op = "Broker.Category.Purchase"
	var out domain.PurchaseReceipt
	disease := normalization.Disease(in.Disease)
	if disease == "" {
		return out, domainagg.ValidationError(op, domainagg.RuleInvalidDisease, "disease is required", nil)
	}
	at := in.At
	if at.IsZero() {
		at = a.deps.Base.Now()
	}
	observed := in.Observed
	err := executeWrite(ctx, a.deps.Base, op, purchaseDocuments, func(tx *docstore.Txn) error {
		cats, err := documents.ReadCategories(tx)
		if err != nil {
			return err
		}
		cur, found := cats[disease]
		if observed == nil && found {
			// the first attempt fixes what the bidder priced against
			observed = &domainagg.PurchaseObservation{Company: cur.Company, Price: cur.Price}
		}
		v, err := a.validatePurchase(op, cur, found, in, observed)
		if err != nil {
			return err
		}

		clicks, err := documents.ReadClicks(tx)
		if err != nil {
			return err
		}
		unclaimed, err := documents.ReadCounts(tx, documents.Unclaimed)
		if err != nil {
			return err
		}
		history, err := documents.ReadPurchaseHistory(tx)
		if err != nil {
			return err
		}

		cats[disease] = domain.Category{
			Disease: disease,
			Company: v.company.Name,
			Price:   v.bid,
			AdPath:  v.company.AssetPath(disease),
			Link:    v.link,
		}
		stats := clicks[disease]
		stats.Clicks = 0
		clicks[disease] = stats
		delete(unclaimed, disease)

		receipt := domain.PurchaseReceipt{
			ID:              a.deps.IDs.Generate().String(),
			Disease:         disease,
			PreviousCompany: cur.Company,
			Company:         v.company.Name,
			PreviousPrice:   cur.Price,
			Price:           v.bid,
			Link:            v.link,
			PurchasedAt:     at,
		}
		history = append(history, receipt)

		if err := documents.WriteCategories(tx, cats); err != nil {
			return err
		}
		if err := documents.WriteClicks(tx, clicks); err != nil {
			return err
		}
		if err := documents.WriteCounts(tx, documents.Unclaimed, unclaimed); err != nil {
			return err
		}
		if err := documents.WritePurchaseHistory(tx, history); err != nil {
			return err
		}
		out = receipt
		return nil
	})
	if err != nil {
		return domain.PurchaseReceipt{}, err
	}
	a.deps.Base.Log.Info("category purchased",
		"disease", out.Disease,
		"company", out.Company,
		"previous_company", out.PreviousCompany,
		"price", out.Price,
		"receipt_id", out.ID,
	)
	return out, nil
}

func (a *categoryAggregate) RecordClick(ctx context.Context, disease string) (domain.ClickStats, error) {
	const op = "Broker.Category.RecordClick"
	var out domain.ClickStats
	disease = normalization.Disease(disease)
	if disease == "" {
		return out, domainagg.ValidationError(op, domainagg.RuleInvalidDisease, "disease is required", nil)
	}
	err := executeWrite(ctx, a.deps.Base, op, []string{documents.Categories, documents.Clicks}, func(tx *docstore.Txn) error {
		cats, err := documents.ReadCategories(tx)
		if err != nil {
			return err
		}
		if _, ok := cats[disease]; !ok {
			return domainagg.NotFound(op, fmt.Sprintf("category %q does not exist", disease))
		}
		clicks, err := documents.ReadClicks(tx)
		if err != nil {
			return err
		}
		stats := clicks[disease]
		stats.Clicks++
		clicks[disease] = stats
		out = stats
		return documents.WriteClicks(tx, clicks)
	})
	return out, err
}

func (a *categoryAggregate) Seed(ctx context.Context, entries []domainagg.SeedEntry) ([]domain.Category, error) {
	const op = "Broker.Category.Seed"
	seeded := make([]domain.Category, 0, len(entries))
	for i, e := range entries {
		disease := normalization.Disease(e.Disease)
		if disease == "" {
			return nil, domainagg.ValidationError(op, domainagg.RuleInvalidDisease, "disease is required", map[string]any{"index": i})
		}
		company, ok := a.deps.Companies.Resolve(e.Company)
		if !ok {
			return nil, domainagg.ValidationError(op, domainagg.RuleUnknownCompany,
				"company is not in the company directory", map[string]any{"index": i, "company": e.Company})
		}
		if math.IsNaN(e.Price) || math.IsInf(e.Price, 0) || e.Price < 0 {
			return nil, domainagg.ValidationError(op, domainagg.RuleInvalidPrice,
				"price must be a non-negative number", map[string]any{"index": i})
		}
		if !domain.ValidLink(e.Link) {
			return nil, domainagg.ValidationError(op, domainagg.RuleInvalidLink,
				"ad link must be an absolute http(s) URL", map[string]any{"index": i, "link": e.Link})
		}
		seeded = append(seeded, domain.Category{
			Disease: disease,
			Company: company.Name,
			Price:   e.Price,
			AdPath:  company.AssetPath(disease),
			Link:    e.Link,
		})
	}
	if len(seeded) == 0 {
		return seeded, nil
	}
	docs := []string{documents.Categories, documents.Clicks, documents.Unclaimed}
	err := executeWrite(ctx, a.deps.Base, op, docs, func(tx *docstore.Txn) error {
		cats, err := documents.ReadCategories(tx)
		if err != nil {
			return err
		}
		clicks, err := documents.ReadClicks(tx)
		if err != nil {
			return err
		}
		unclaimed, err := documents.ReadCounts(tx, documents.Unclaimed)
		if err != nil {
			return err
		}
		for _, c := range seeded {
			cats[c.Disease] = c
			stats := clicks[c.Disease]
			stats.Clicks = 0
			clicks[c.Disease] = stats
			delete(unclaimed, c.Disease)
		}
		if err := documents.WriteCategories(tx, cats); err != nil {
			return err
		}
		if err := documents.WriteClicks(tx, clicks); err != nil {
			return err
		}
		return documents.WriteCounts(tx, documents.Unclaimed, unclaimed)
	})
	if err != nil {
		return nil, err
	}
	a.deps.Base.Log.Info("categories seeded", "count", len(seeded))
	return seeded, nil
}

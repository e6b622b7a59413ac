package aggregates

import (
	"math"

	"github.com/yungbote/adbroker-backend/internal/domain"
	domainagg "github.com/yungbote/adbroker-backend/internal/domain/aggregates"
)

const priceEpsilon = 1e-9

// RequireUnchangedSinceObserved rejects a purchase priced against a category
// state that another purchase has since replaced. An empty observed company
// checks the price only.
func RequireUnchangedSinceObserved(op string, observed domainagg.PurchaseObservation, current domain.Category) error {
	sameOwner := observed.Company == "" || observed.Company == current.Company
	if sameOwner && math.Abs(observed.Price-current.Price) <= priceEpsilon {
		return nil
	}
	return domainagg.ValidationError(op, domainagg.RuleStalePrice,
		"category changed hands while the bid was in flight; re-bid against the new price",
		map[string]any{"min_bid": current.Price, "current_owner": current.Company})
}

// RequireBidAtLeast enforces bid >= current price.
func RequireBidAtLeast(op string, bid, price float64) error {
	if bid+priceEpsilon >= price {
		return nil
	}
	return domainagg.ValidationError(op, domainagg.RuleBidTooLow,
		"bid is below the current category price",
		map[string]any{"min_bid": price})
}

package aggregates

import (
	"context"
	"time"

	"github.com/yungbote/adbroker-backend/internal/domain"
)

var CategoryAggregateContract = Contract{
	Name:             "Broker.CategoryAggregate",
	WriteTxOwnership: WriteTxOwnedByAggregate,
	ReadPolicy:       ReadPolicyInvariantScoped,
	Documents:        []string{"categories_ads", "ad_clicks", "uncategorized", "purchase_history"},
	Notes:            "Owns category ownership transfer, click counting and operator seeding.",
}

// CategoryAggregate owns the category registry invariants.
//
// Write method failures return *aggregates.Error with codes:
// CodeValidation, CodeNotFound, CodeConflict, CodePersistence, CodeRetryable.
type CategoryAggregate interface {
	Aggregate

	// Purchase validates a bid and transfers ownership in one commit.
	Purchase(ctx context.Context, in PurchaseInput) (domain.PurchaseReceipt, error)

	// RecordClick increments the click counter of an owned category.
	RecordClick(ctx context.Context, disease string) (domain.ClickStats, error)

	// Seed creates or replaces categories.
	Seed(ctx context.Context, entries []SeedEntry) ([]domain.Category, error)
}

type PurchaseInput struct {
	Disease string
	Company string
	// Bid is the caller's raw amount; parsing is one of the validation steps.
	Bid  string
	Link string
	// Observed is the category state the bidder priced against. When nil the
	// state read by the first attempt is used.
	Observed *PurchaseObservation
	At       time.Time
}

type PurchaseObservation struct {
	// Company is empty when the bidder only reported the price it saw.
	Company string
	Price   float64
}

type SeedEntry struct {
	Disease string  `json:"disease"`
	Company string  `json:"company"`
	Price   float64 `json:"category_cost"`
	Link    string  `json:"link"`
}

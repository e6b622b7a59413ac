package testutil

import (
	"context"
	"testing"

	"github.com/yungbote/adbroker-backend/internal/data/docstore"
	"github.com/yungbote/adbroker-backend/internal/data/documents"
	"github.com/yungbote/adbroker-backend/internal/domain"
)

// SeedCategories writes categories straight into the registry document.
func SeedCategories(tb testing.TB, ctx context.Context, store docstore.Store, cats ...domain.Category) {
	tb.Helper()
	err := store.Update(ctx, []string{documents.Categories}, func(tx *docstore.Txn) error {
		cur, err := documents.ReadCategories(tx)
		if err != nil {
			return err
		}
		for _, c := range cats {
			cur[c.Disease] = c
		}
		return documents.WriteCategories(tx, cur)
	})
	if err != nil {
		tb.Fatalf("seed categories: %v", err)
	}
}

func SeedClicks(tb testing.TB, ctx context.Context, store docstore.Store, clicks map[string]domain.ClickStats) {
	tb.Helper()
	err := store.Update(ctx, []string{documents.Clicks}, func(tx *docstore.Txn) error {
		return documents.WriteClicks(tx, clicks)
	})
	if err != nil {
		tb.Fatalf("seed clicks: %v", err)
	}
}

// SeedCounts replaces a name to integer document (mentions, unclaimed, engagement ms).
func SeedCounts(tb testing.TB, ctx context.Context, store docstore.Store, doc string, counts map[string]int64) {
	tb.Helper()
	err := store.Update(ctx, []string{doc}, func(tx *docstore.Txn) error {
		return documents.WriteCounts(tx, doc, counts)
	})
	if err != nil {
		tb.Fatalf("seed %s: %v", doc, err)
	}
}

func SeedTotals(tb testing.TB, ctx context.Context, store docstore.Store, totalQueries int64, costs domain.CostLedger) {
	tb.Helper()
	err := store.Update(ctx, []string{documents.TotalQueries, documents.QueryCosts}, func(tx *docstore.Txn) error {
		if err := documents.WriteTotalQueries(tx, totalQueries); err != nil {
			return err
		}
		return documents.WriteCostLedger(tx, costs)
	})
	if err != nil {
		tb.Fatalf("seed totals: %v", err)
	}
}

// Genentech70 is the breast cancer category used across tests.
func Genentech70() domain.Category {
	return domain.Category{
		Disease: "breast cancer",
		Company: "genentech",
		Price:   70,
		AdPath:  "ad_images/genentech_breast_cancer.png",
		Link:    "https://www.gene.com/patients/medicines/herceptin",
	}
}

func Lilly40() domain.Category {
	return domain.Category{
		Disease: "hypertension",
		Company: "eli lilly",
		Price:   40,
		AdPath:  "ad_images/lilly_hypertension.png",
		Link:    "https://www.lilly.com",
	}
}

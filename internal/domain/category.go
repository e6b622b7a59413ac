package domain

import "time"

// Category is an owned advertising slot keyed by normalized disease name.
// Unowned diseases never appear in the registry; they live in the unclaimed document.
type Category struct {
	Disease string  `json:"-"`
	Company string  `json:"company"`
	Price   float64 `json:"category_cost"`
	AdPath  string  `json:"ad_path"`
	Link    string  `json:"link"`
}

// ClickStats is one entry of the click document.
type ClickStats struct {
	Clicks   int64 `json:"clicks"`
	Mentions int64 `json:"mentions"`
}

type UnclaimedEntry struct {
	Disease  string `json:"disease"`
	Mentions int64  `json:"mentions"`
}

// AdPlacement is what the ad lookup hands back to the caller.
type AdPlacement struct {
	Category string  `json:"category"`
	AdPath   string  `json:"ad_path"`
	Company  string  `json:"company"`
	Price    float64 `json:"cost"`
	Link     string  `json:"link"`
}

func (c Category) Placement() AdPlacement {
	return AdPlacement{
		Category: c.Disease,
		AdPath:   c.AdPath,
		Company:  c.Company,
		Price:    c.Price,
		Link:     c.Link,
	}
}

// PurchaseReceipt records one ownership transfer.
type PurchaseReceipt struct {
	ID              string    `json:"id"`
	Disease         string    `json:"disease"`
	PreviousCompany string    `json:"previous_company"`
	Company         string    `json:"company"`
	PreviousPrice   float64   `json:"previous_price"`
	Price           float64   `json:"price"`
	Link            string    `json:"link"`
	PurchasedAt     time.Time `json:"purchased_at"`
}

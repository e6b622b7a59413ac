package domain

import (
	"math"
	"time"
)

// DefaultBillingEpoch is the day categories started being billed.
var DefaultBillingEpoch = time.Date(2025, time.May, 1, 0, 0, 0, 0, time.UTC)

// Billing prorates monthly category prices from a fixed epoch. A month is 30 days
// and proration is not capped, so the fraction keeps growing past 1.
type Billing struct {
	Epoch time.Time
}

// DaysElapsed counts whole days from the epoch to now, never negative.
func (b Billing) DaysElapsed(now time.Time) int64 {
	epoch := b.Epoch
	if epoch.IsZero() {
		epoch = DefaultBillingEpoch
	}
	d := now.Sub(epoch)
	if d <= 0 {
		return 0
	}
	return int64(d / (24 * time.Hour))
}

func (b Billing) Months(days int64) float64 {
	return float64(days) / 30.0
}

func (b Billing) Prorate(monthlyPrice float64, days int64) float64 {
	if math.IsNaN(monthlyPrice) || monthlyPrice <= 0 {
		return 0
	}
	return monthlyPrice * b.Months(days)
}

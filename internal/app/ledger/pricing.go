package ledger

import (
	"github.com/shopspring/decimal"
)

const bytesPerEstimatedMinute = 1024 * 1024

var (
	// MinimumCharge is the floor applied to every job.
	MinimumCharge = decimal.New(1, -2)
	sixty         = decimal.NewFromInt(60)
)

// Pricing turns audio length into credits. Every amount it returns is
// rounded half-up to two decimals and is never below MinimumCharge; the
// same rounding applies to estimates and to final charges.
type Pricing struct {
	PerMinute decimal.Decimal
}

// NewPricing returns a Pricing charging perMinute credits per minute.
func NewPricing(perMinute decimal.Decimal) Pricing {
	return Pricing{PerMinute: perMinute}
}

// CostForDuration prices a measured duration.
func (p Pricing) CostForDuration(seconds float64) decimal.Decimal {
	if seconds < 0 {
		seconds = 0
	}
	minutes := decimal.NewFromFloat(seconds).Div(sixty)
	return p.round(minutes.Mul(p.PerMinute))
}

// EstimateFromSize prices a file from its size alone (1 MiB ≈ 1 minute).
func (p Pricing) EstimateFromSize(sizeBytes int64) decimal.Decimal {
	return p.CostForDuration(EstimateSeconds(sizeBytes))
}

// EstimateSeconds is the size-based duration heuristic.
func EstimateSeconds(sizeBytes int64) float64 {
	if sizeBytes <= 0 {
		return 0
	}
	return float64(sizeBytes) / bytesPerEstimatedMinute * 60
}

func (p Pricing) round(amount decimal.Decimal) decimal.Decimal {
	rounded := amount.Round(2)
	if rounded.LessThan(MinimumCharge) {
		return MinimumCharge
	}
	return rounded
}

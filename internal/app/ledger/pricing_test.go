package ledger

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestCostForDuration(t *testing.T) {
	p := NewPricing(decimal.NewFromInt(1))

	testCases := []struct {
		name    string
		seconds float64
		want    string
	}{
		{name: "four and a half minutes", seconds: 270, want: "4.5"},
		{name: "one minute", seconds: 60, want: "1"},
		{name: "sub-minute rounds half-up", seconds: 0.9, want: "0.02"},
		{name: "half cent rounds up", seconds: 0.3, want: "0.01"},
		{name: "zero floors at minimum", seconds: 0, want: "0.01"},
		{name: "tiny floors at minimum", seconds: 0.1, want: "0.01"},
		{name: "rounds to the nearest cent", seconds: 61.7, want: "1.03"},
		{name: "negative treated as zero", seconds: -5, want: "0.01"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := p.CostForDuration(tc.seconds)
			assert.True(t, got.Equal(decimal.RequireFromString(tc.want)), "got %s want %s", got, tc.want)
		})
	}
}

func TestEstimateFromSize(t *testing.T) {
	p := NewPricing(decimal.NewFromInt(1))

	assert.True(t, p.EstimateFromSize(1024*1024).Equal(decimal.NewFromInt(1)))
	assert.True(t, p.EstimateFromSize(3*1024*1024/2).Equal(decimal.RequireFromString("1.5")))
	assert.True(t, p.EstimateFromSize(0).Equal(MinimumCharge))
	assert.Equal(t, 90.0, EstimateSeconds(3*1024*1024/2))
}

func TestPricingRate(t *testing.T) {
	p := NewPricing(decimal.RequireFromString("2.5"))
	assert.True(t, p.CostForDuration(120).Equal(decimal.NewFromInt(5)))
}

package model

import "github.com/shopspring/decimal"

// Credit amounts are persisted as integer hundredths so that every stored
// balance has exactly two decimal places.

// CentsFromDecimal converts a credit amount to hundredths, rounding half-up.
func CentsFromDecimal(d decimal.Decimal) int64 {
	return d.Round(2).Shift(2).IntPart()
}

// DecimalFromCents converts hundredths back to a credit amount.
func DecimalFromCents(cents int64) decimal.Decimal {
	return decimal.New(cents, -2)
}

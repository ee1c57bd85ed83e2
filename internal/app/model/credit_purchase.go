package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// PurchaseStatus of an external payment.
type PurchaseStatus string

const (
	PurchaseSucceeded PurchaseStatus = "succeeded"
	PurchaseFailed    PurchaseStatus = "failed"
)

// CreditPurchase records one external payment settlement. ExternalPaymentID is unique.
type CreditPurchase struct {
	ID                string         `json:"id" db:"id"`
	UserID            string         `json:"user_id" db:"user_id"`
	ExternalPaymentID string         `json:"external_payment_id" db:"external_payment_id"`
	AmountCents       int64          `json:"-" db:"amount_cents"`
	AmountPaidCents   int64          `json:"amount_paid_cents" db:"amount_paid_cents"`
	Currency          string         `json:"currency" db:"currency"`
	Status            PurchaseStatus `json:"status" db:"status"`
	CreatedAt         time.Time      `json:"created_at" db:"created_at"`
}

// AmountCredits returns the credited amount.
func (p CreditPurchase) AmountCredits() decimal.Decimal {
	return DecimalFromCents(p.AmountCents)
}

// TableName returns the table name for CreditPurchase
func (CreditPurchase) TableName() string {
	return "credit_purchases"
}

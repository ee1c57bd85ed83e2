package dto

import (
	"time"

	"podbrief/internal/app/model"
)

// BalanceResponse is returned by GET /credits.
type BalanceResponse struct {
	Balance     string `json:"balance"`
	LowBalance  bool   `json:"low_balance"`
	PurchaseURL string `json:"purchase_url,omitempty"`
}

// EstimateQuery is the query of GET /credits/estimate.
type EstimateQuery struct {
	Size int64 `form:"size" binding:"required,min=1"`
}

// EstimateResponse is a size based cost estimate.
type EstimateResponse struct {
	SizeBytes        int64   `json:"size_bytes"`
	EstimatedMinutes float64 `json:"estimated_minutes"`
	EstimatedCost    string  `json:"estimated_cost"`
	Balance          string  `json:"balance"`
	Sufficient       bool    `json:"sufficient"`
}

// PurchaseResponse is one entry of the purchase history.
type PurchaseResponse struct {
	ExternalPaymentID string    `json:"external_payment_id"`
	Credits           string    `json:"credits"`
	AmountPaidCents   int64     `json:"amount_paid_cents"`
	Currency          string    `json:"currency"`
	Status            string    `json:"status"`
	CreatedAt         time.Time `json:"created_at"`
}

func NewPurchaseResponse(p model.CreditPurchase) PurchaseResponse {
	return PurchaseResponse{
		ExternalPaymentID: p.ExternalPaymentID,
		Credits:           p.AmountCredits().StringFixed(2),
		AmountPaidCents:   p.AmountPaidCents,
		Currency:          p.Currency,
		Status:            string(p.Status),
		CreatedAt:         p.CreatedAt,
	}
}

// VerifySessionRequest is the body of POST /billing/verify.
type VerifySessionRequest struct {
	SessionID string `json:"session_id" binding:"required,max=255"`
}

// VerifySessionResponse reports the outcome of a verification.
type VerifySessionResponse struct {
	Result  string `json:"result"`
	Balance string `json:"balance"`
}

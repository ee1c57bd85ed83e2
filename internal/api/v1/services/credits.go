package services

import (
	"context"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"podbrief/internal/api/v1/dto"
	"podbrief/internal/app/ledger"
	"podbrief/internal/app/model"
)

// Balances reads balances.
type Balances interface {
	Balance(ctx context.Context, userID string) (decimal.Decimal, error)
}

// PurchaseHistory lists payments.
type PurchaseHistory interface {
	ListPurchases(ctx context.Context, userID string, limit uint64) ([]model.CreditPurchase, error)
}

type creditService struct {
	balances    Balances
	purchases   PurchaseHistory
	pricing     ledger.Pricing
	lowBalance  decimal.Decimal
	purchaseURL string
}

func NewCreditService(balances Balances, purchases PurchaseHistory, pricing ledger.Pricing, lowBalance decimal.Decimal, purchaseURL string) CreditService {
	return &creditService{
		balances:    balances,
		purchases:   purchases,
		pricing:     pricing,
		lowBalance:  lowBalance,
		purchaseURL: purchaseURL,
	}
}

func (s *creditService) Balance(ctx context.Context, userID string) (*dto.BalanceResponse, error) {
	balance, err := s.balances.Balance(ctx, userID)
	if err != nil {
		return nil, err
	}
	resp := &dto.BalanceResponse{Balance: balance.StringFixed(2), LowBalance: balance.LessThan(s.lowBalance)}
	if resp.LowBalance {
		resp.PurchaseURL = s.purchaseURL
	}
	return resp, nil
}

func (s *creditService) Estimate(ctx context.Context, userID string, sizeBytes int64) (*dto.EstimateResponse, error) {
	balance, err := s.balances.Balance(ctx, userID)
	if err != nil {
		return nil, err
	}
	cost := s.pricing.EstimateFromSize(sizeBytes)
	minutes, _ := decimal.NewFromFloat(ledger.EstimateSeconds(sizeBytes) / 60).Round(2).Float64()
	return &dto.EstimateResponse{
		SizeBytes:        sizeBytes,
		EstimatedMinutes: minutes,
		EstimatedCost:    cost.StringFixed(2),
		Balance:          balance.StringFixed(2),
		Sufficient:       !balance.LessThan(cost),
	}, nil
}

func (s *creditService) Purchases(ctx context.Context, userID string, limit int) ([]dto.PurchaseResponse, error) {
	purchases, err := s.purchases.ListPurchases(ctx, userID, uint64(limit))
	if err != nil {
		return nil, err
	}
	return lo.Map(purchases, func(p model.CreditPurchase, _ int) dto.PurchaseResponse {
		return dto.NewPurchaseResponse(p)
	}), nil
}

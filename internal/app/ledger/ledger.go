package ledger

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	apperrors "podbrief/internal/app/errors"
	"podbrief/internal/app/model"
)

var (
	ErrInsufficientCredits = apperrors.ErrInsufficientCredits
	ErrInvalidAmount       = apperrors.Newf("amount must be positive with at most two decimals")
)

// Store is the balance persistence the ledger needs. Mutations must be
// single conditional statements so that concurrent callers cannot interleave.
type Store interface {
	BalanceCents(ctx context.Context, userID string) (int64, error)
	DebitCents(ctx context.Context, userID string, amount int64) (int64, error)
	CreditCents(ctx context.Context, userID string, amount int64) (int64, error)
}

// Ledger owns user balances.
type Ledger struct {
	store  Store
	logger *zap.Logger
}

// New creates a Ledger.
func New(store Store, logger *zap.Logger) *Ledger {
	return &Ledger{store: store, logger: logger.Named("ledger")}
}

// Balance returns the user's current balance.
func (l *Ledger) Balance(ctx context.Context, userID string) (decimal.Decimal, error) {
	cents, err := l.store.BalanceCents(ctx, userID)
	if err != nil {
		return decimal.Zero, err
	}
	return model.DecimalFromCents(cents), nil
}

// Debit removes amount from the balance, or fails with ErrInsufficientCredits
// leaving the balance untouched. It returns the new balance.
func (l *Ledger) Debit(ctx context.Context, userID string, amount decimal.Decimal) (decimal.Decimal, error) {
	cents, err := toCents(amount)
	if err != nil {
		return decimal.Zero, err
	}
	balance, err := l.store.DebitCents(ctx, userID, cents)
	if err != nil {
		return decimal.Zero, err
	}
	l.logger.Debug("debited credits",
		zap.String("user_id", userID),
		zap.String("amount", amount.StringFixed(2)),
		zap.Int64("balance_cents", balance))
	return model.DecimalFromCents(balance), nil
}

// Credit adds amount to the balance and returns the new balance.
func (l *Ledger) Credit(ctx context.Context, userID string, amount decimal.Decimal) (decimal.Decimal, error) {
	cents, err := toCents(amount)
	if err != nil {
		return decimal.Zero, err
	}
	balance, err := l.store.CreditCents(ctx, userID, cents)
	if err != nil {
		return decimal.Zero, err
	}
	l.logger.Debug("credited credits",
		zap.String("user_id", userID),
		zap.String("amount", amount.StringFixed(2)),
		zap.Int64("balance_cents", balance))
	return model.DecimalFromCents(balance), nil
}

func toCents(amount decimal.Decimal) (int64, error) {
	if !amount.IsPositive() || !amount.Equal(amount.Round(2)) {
		return 0, fmt.Errorf("%s: %w", amount.String(), ErrInvalidAmount)
	}
	return model.CentsFromDecimal(amount), nil
}

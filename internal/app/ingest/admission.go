package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"podbrief/internal/app/ledger"
	"podbrief/internal/app/ratelimit"
)

// Balances reads a user's credit balance.
type Balances interface {
	Balance(ctx context.Context, userID string) (decimal.Decimal, error)
}

// Admission runs the checks every upload initiation must pass before any
// bytes are accepted.
type Admission struct {
	limiter  ratelimit.Limiter
	balances Balances
	pricing  ledger.Pricing
	now      func() time.Time
	logger   *zap.Logger
}

func NewAdmission(limiter ratelimit.Limiter, balances Balances, pricing ledger.Pricing, logger *zap.Logger) *Admission {
	return &Admission{
		limiter:  limiter,
		balances: balances,
		pricing:  pricing,
		now:      time.Now,
		logger:   logger.Named("admission"),
	}
}

// Admit consumes one rate-limit slot and checks the balance against the size
// estimate. A limiter outage lets the upload through.
func (a *Admission) Admit(ctx context.Context, ownerID string, estimatedBytes int64) error {
	decision, err := a.limiter.Check(ctx, "upload:"+ownerID)
	switch {
	case err != nil:
		a.logger.Warn("rate limiter unavailable, admitting upload", zap.String("owner_id", ownerID), zap.Error(err))
	case !decision.Allowed:
		return &RateLimitedError{RetryAfter: decision.RetryAfter(a.now())}
	}

	return a.CheckCredits(ctx, ownerID, estimatedBytes)
}

// CheckCredits compares the balance with the size-based estimate.
func (a *Admission) CheckCredits(ctx context.Context, ownerID string, estimatedBytes int64) error {
	balance, err := a.balances.Balance(ctx, ownerID)
	if err != nil {
		return fmt.Errorf("read balance: %w", err)
	}
	required := a.pricing.EstimateFromSize(estimatedBytes)
	if balance.LessThan(required) {
		return &InsufficientCreditsError{
			Required:  required,
			Balance:   balance,
			Shortfall: required.Sub(balance),
		}
	}
	return nil
}

package repository

import (
	"context"

	"podbrief/internal/app/model"
)

const purchaseColumns = "id, user_id, external_payment_id, amount_cents, amount_paid_cents, currency, status, created_at"

// InsertPurchase records a payment unless its external id was seen before.
// It reports whether a row was written.
func (s *Store) InsertPurchase(ctx context.Context, p *model.CreditPurchase) (bool, error) {
	if p.CreatedAt.IsZero() {
		p.CreatedAt = s.now()
	}
	res, err := s.q(ctx).ExecContext(ctx, s.rebind(
		`INSERT INTO credit_purchases (id, user_id, external_payment_id, amount_cents, amount_paid_cents, currency, status, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (external_payment_id) DO NOTHING`),
		p.ID, p.UserID, p.ExternalPaymentID, p.AmountCents, p.AmountPaidCents, p.Currency, p.Status, p.CreatedAt)
	if err != nil {
		return false, mapError(err, "credit purchase", p.ExternalPaymentID)
	}
	n, err := rowsAffected(res)
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// PromoteFailedPurchase flips a previously failed payment to succeeded.
// It reports whether the flip happened; a payment can be promoted once.
func (s *Store) PromoteFailedPurchase(ctx context.Context, externalPaymentID string) (bool, error) {
	res, err := s.q(ctx).ExecContext(ctx, s.rebind(
		"UPDATE credit_purchases SET status = ? WHERE external_payment_id = ? AND status = ?"),
		model.PurchaseSucceeded, externalPaymentID, model.PurchaseFailed)
	if err != nil {
		return false, mapError(err, "credit purchase", externalPaymentID)
	}
	n, err := rowsAffected(res)
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// GetPurchaseByExternalID loads a payment record by its idempotency key.
func (s *Store) GetPurchaseByExternalID(ctx context.Context, externalPaymentID string) (*model.CreditPurchase, error) {
	var p model.CreditPurchase
	err := s.q(ctx).GetContext(ctx, &p, s.rebind(
		"SELECT "+purchaseColumns+" FROM credit_purchases WHERE external_payment_id = ?"), externalPaymentID)
	if err != nil {
		return nil, mapError(err, "credit purchase", externalPaymentID)
	}
	return &p, nil
}

// ListPurchases returns the user's payments, newest first.
func (s *Store) ListPurchases(ctx context.Context, userID string, limit uint64) ([]model.CreditPurchase, error) {
	query, args, err := s.builder.Select(purchaseColumns).From("credit_purchases").
		Where("user_id = ?", userID).OrderBy("created_at DESC").Limit(limit).ToSql()
	if err != nil {
		return nil, err
	}
	purchases := []model.CreditPurchase{}
	if err := s.q(ctx).SelectContext(ctx, &purchases, query, args...); err != nil {
		return nil, mapError(err, "credit purchases", userID)
	}
	return purchases, nil
}

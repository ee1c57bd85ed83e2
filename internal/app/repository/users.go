package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	apperrors "podbrief/internal/app/errors"
	"podbrief/internal/app/model"
)

const userColumns = "id, email, credits_cents, created_at, updated_at"

// EnsureUser creates the user on first authentication and returns the stored row.
func (s *Store) EnsureUser(ctx context.Context, id, email string) (*model.User, error) {
	now := s.now()
	_, err := s.q(ctx).ExecContext(ctx, s.rebind(
		`INSERT INTO users (id, email, credits_cents, created_at, updated_at)
		 VALUES (?, ?, 0, ?, ?)
		 ON CONFLICT (id) DO NOTHING`),
		id, email, now, now)
	if err != nil {
		return nil, mapError(err, "user", id)
	}
	return s.GetUser(ctx, id)
}

// GetUser loads a user by id.
func (s *Store) GetUser(ctx context.Context, id string) (*model.User, error) {
	var u model.User
	err := s.q(ctx).GetContext(ctx, &u, s.rebind("SELECT "+userColumns+" FROM users WHERE id = ?"), id)
	if err != nil {
		return nil, mapError(err, "user", id)
	}
	return &u, nil
}

// DeleteUser removes the user; owned rows cascade.
func (s *Store) DeleteUser(ctx context.Context, id string) error {
	res, err := s.q(ctx).ExecContext(ctx, s.rebind("DELETE FROM users WHERE id = ?"), id)
	if err != nil {
		return mapError(err, "user", id)
	}
	n, err := rowsAffected(res)
	if err != nil {
		return err
	}
	if n == 0 {
		return apperrors.NotFound("user", id)
	}
	return nil
}

// BalanceCents returns the user's balance in hundredths.
func (s *Store) BalanceCents(ctx context.Context, userID string) (int64, error) {
	var cents int64
	err := s.q(ctx).GetContext(ctx, &cents, s.rebind("SELECT credits_cents FROM users WHERE id = ?"), userID)
	if err != nil {
		return 0, mapError(err, "user", userID)
	}
	return cents, nil
}

// DebitCents subtracts amount from the balance in a single conditional
// statement and returns the new balance. When the balance is smaller than
// amount nothing is written and ErrInsufficientCredits is returned.
func (s *Store) DebitCents(ctx context.Context, userID string, amount int64) (int64, error) {
	var balance int64
	err := s.q(ctx).GetContext(ctx, &balance, s.rebind(
		`UPDATE users SET credits_cents = credits_cents - ?, updated_at = ?
		 WHERE id = ? AND credits_cents >= ?
		 RETURNING credits_cents`),
		amount, s.now(), userID, amount)
	if errors.Is(err, sql.ErrNoRows) {
		if _, getErr := s.BalanceCents(ctx, userID); getErr != nil {
			return 0, getErr
		}
		return 0, fmt.Errorf("user %s: %w", userID, apperrors.ErrInsufficientCredits)
	}
	if err != nil {
		return 0, mapError(err, "user", userID)
	}
	return balance, nil
}

// CreditCents adds amount to the balance and returns the new balance.
func (s *Store) CreditCents(ctx context.Context, userID string, amount int64) (int64, error) {
	var balance int64
	err := s.q(ctx).GetContext(ctx, &balance, s.rebind(
		`UPDATE users SET credits_cents = credits_cents + ?, updated_at = ?
		 WHERE id = ?
		 RETURNING credits_cents`),
		amount, s.now(), userID)
	if err != nil {
		return 0, mapError(err, "user", userID)
	}
	return balance, nil
}

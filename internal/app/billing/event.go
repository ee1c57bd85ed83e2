package billing

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v76"

	apperrors "podbrief/internal/app/errors"
	"podbrief/internal/app/model"
)

// ErrMalformedEvent is returned for payment events that cannot be attributed
// to a user and amount.
var ErrMalformedEvent = apperrors.Wrap(apperrors.ErrInvalidInput, "malformed payment event")

// Checkout session metadata keys set when the session is created.
const (
	MetadataUserID  = "user_id"
	MetadataCredits = "credits"
)

// ApplyResult is the outcome of applying a payment event.
type ApplyResult string

const (
	Applied        ApplyResult = "applied"
	AlreadyApplied ApplyResult = "already_applied"
	// Pending means the payment has not settled yet and nothing was recorded.
	Pending ApplyResult = "pending"
	// Ignored is returned for webhook event types that carry no payment.
	Ignored ApplyResult = "ignored"
)

// PaymentEvent is a normalized payment notification.
type PaymentEvent struct {
	ExternalPaymentID string
	UserID            string
	AmountCredits     decimal.Decimal
	AmountPaid        int64
	Currency          string
	Status            model.PurchaseStatus
}

func (e PaymentEvent) validate() error {
	switch {
	case strings.TrimSpace(e.ExternalPaymentID) == "":
		return fmt.Errorf("%w: missing payment id", ErrMalformedEvent)
	case strings.TrimSpace(e.UserID) == "":
		return fmt.Errorf("%w: missing %s", ErrMalformedEvent, MetadataUserID)
	case e.Status != model.PurchaseSucceeded && e.Status != model.PurchaseFailed:
		return fmt.Errorf("%w: unknown status %q", ErrMalformedEvent, e.Status)
	case e.Status == model.PurchaseSucceeded && !e.AmountCredits.IsPositive():
		return fmt.Errorf("%w: %s must be positive", ErrMalformedEvent, MetadataCredits)
	case !e.AmountCredits.Equal(e.AmountCredits.Round(2)):
		return fmt.Errorf("%w: %s=%s has sub-cent precision", ErrMalformedEvent, MetadataCredits, e.AmountCredits)
	}
	return nil
}

// eventFromSession reads the purchase out of a checkout session.
func eventFromSession(s *stripe.CheckoutSession, status model.PurchaseStatus) (PaymentEvent, error) {
	if s == nil || s.ID == "" {
		return PaymentEvent{}, fmt.Errorf("%w: missing session", ErrMalformedEvent)
	}
	userID := s.Metadata[MetadataUserID]
	if userID == "" {
		userID = s.ClientReferenceID
	}

	var credits decimal.Decimal
	if raw, ok := s.Metadata[MetadataCredits]; ok {
		d, err := decimal.NewFromString(strings.TrimSpace(raw))
		if err != nil {
			return PaymentEvent{}, fmt.Errorf("%w: %s=%q", ErrMalformedEvent, MetadataCredits, raw)
		}
		credits = d
	}

	ev := PaymentEvent{
		ExternalPaymentID: s.ID,
		UserID:            userID,
		AmountCredits:     credits,
		AmountPaid:        s.AmountTotal,
		Currency:          string(s.Currency),
		Status:            status,
	}
	if err := ev.validate(); err != nil {
		return PaymentEvent{}, err
	}
	return ev, nil
}

// settled reports whether a completed session has been paid.
func settled(s *stripe.CheckoutSession) bool {
	return s.PaymentStatus == stripe.CheckoutSessionPaymentStatusPaid ||
		s.PaymentStatus == stripe.CheckoutSessionPaymentStatusNoPaymentRequired
}

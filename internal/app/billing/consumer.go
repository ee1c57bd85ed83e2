package billing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/webhook"
	"go.uber.org/zap"

	apperrors "podbrief/internal/app/errors"
	"podbrief/internal/app/metrics"
	"podbrief/internal/app/model"
)

// Checkout webhook event types.
const (
	EventCheckoutCompleted     = "checkout.session.completed"
	EventAsyncPaymentSucceeded = "checkout.session.async_payment_succeeded"
	EventAsyncPaymentFailed    = "checkout.session.async_payment_failed"
)

const signatureTolerance = 5 * time.Minute

// ErrInvalidSignature is returned when a webhook payload fails verification.
var ErrInvalidSignature = apperrors.Wrap(apperrors.ErrForbidden, "invalid webhook signature")

// Store records purchases.
type Store interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
	InsertPurchase(ctx context.Context, p *model.CreditPurchase) (bool, error)
	PromoteFailedPurchase(ctx context.Context, externalPaymentID string) (bool, error)
}

// Crediter adds credits to a balance.
type Crediter interface {
	Credit(ctx context.Context, userID string, amount decimal.Decimal) (decimal.Decimal, error)
}

// PaymentGateway retrieves checkout sessions from the payment provider.
type PaymentGateway interface {
	GetCheckoutSession(ctx context.Context, sessionID string) (*stripe.CheckoutSession, error)
}

type Consumer struct {
	store         Store
	credits       Crediter
	gateway       PaymentGateway
	webhookSecret string
	metrics       *metrics.Metrics
	logger        *zap.Logger
}

func NewConsumer(store Store, credits Crediter, gateway PaymentGateway, webhookSecret string, m *metrics.Metrics, logger *zap.Logger) *Consumer {
	return &Consumer{
		store:         store,
		credits:       credits,
		gateway:       gateway,
		webhookSecret: webhookSecret,
		metrics:       m,
		logger:        logger.Named("billing"),
	}
}

// ApplyPaymentEvent records a payment and credits the user at most once per
// external payment id. A payment first recorded as failed is credited when a
// later success arrives for it.
func (c *Consumer) ApplyPaymentEvent(ctx context.Context, ev PaymentEvent) (ApplyResult, error) {
	if err := ev.validate(); err != nil {
		c.malformed(err, ev.ExternalPaymentID)
		return "", err
	}

	var result ApplyResult
	err := c.store.RunInTx(ctx, func(ctx context.Context) error {
		purchase := &model.CreditPurchase{
			ID:                uuid.NewString(),
			UserID:            ev.UserID,
			ExternalPaymentID: ev.ExternalPaymentID,
			AmountCents:       model.CentsFromDecimal(ev.AmountCredits),
			AmountPaidCents:   ev.AmountPaid,
			Currency:          ev.Currency,
			Status:            ev.Status,
		}
		inserted, err := c.store.InsertPurchase(ctx, purchase)
		if err != nil {
			return err
		}

		credit := inserted && ev.Status == model.PurchaseSucceeded
		if !inserted && ev.Status == model.PurchaseSucceeded {
			if credit, err = c.store.PromoteFailedPurchase(ctx, ev.ExternalPaymentID); err != nil {
				return err
			}
		}

		switch {
		case credit:
			if _, err := c.credits.Credit(ctx, ev.UserID, ev.AmountCredits); err != nil {
				return fmt.Errorf("credit user: %w", err)
			}
			result = Applied
		case inserted:
			result = Applied
		default:
			result = AlreadyApplied
		}
		return nil
	})
	if err != nil {
		c.count("error")
		return "", err
	}

	c.count(string(result))
	c.logger.Info("payment event applied",
		zap.String("external_payment_id", ev.ExternalPaymentID),
		zap.String("user_id", ev.UserID),
		zap.String("status", string(ev.Status)),
		zap.String("credits", ev.AmountCredits.StringFixed(2)),
		zap.String("result", string(result)))
	return result, nil
}

// HandleWebhook verifies and applies a signed checkout webhook. Event types
// without a payment are acknowledged and ignored.
func (c *Consumer) HandleWebhook(ctx context.Context, payload []byte, signature string) (ApplyResult, error) {
	event, err := webhook.ConstructEventWithOptions(payload, signature, c.webhookSecret, webhook.ConstructEventOptions{
		Tolerance:                signatureTolerance,
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		c.count("invalid_signature")
		c.logger.Warn("webhook signature rejected", zap.Error(err))
		return "", fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	var status model.PurchaseStatus
	switch string(event.Type) {
	case EventCheckoutCompleted, EventAsyncPaymentSucceeded:
		status = model.PurchaseSucceeded
	case EventAsyncPaymentFailed:
		status = model.PurchaseFailed
	default:
		c.logger.Debug("ignoring webhook event", zap.String("type", string(event.Type)), zap.String("event_id", event.ID))
		return Ignored, nil
	}

	if event.Data == nil {
		err := fmt.Errorf("%w: event %s has no data", ErrMalformedEvent, event.ID)
		c.malformed(err, event.ID)
		return "", err
	}
	var session stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
		err = fmt.Errorf("%w: decode session: %v", ErrMalformedEvent, err)
		c.malformed(err, event.ID)
		return "", err
	}

	// Delayed payment methods complete unpaid and settle with an async event.
	if string(event.Type) == EventCheckoutCompleted && !settled(&session) {
		c.logger.Info("checkout completed awaiting payment", zap.String("session_id", session.ID))
		return Pending, nil
	}

	ev, err := eventFromSession(&session, status)
	if err != nil {
		c.malformed(err, session.ID)
		return "", err
	}
	return c.ApplyPaymentEvent(ctx, ev)
}

// VerifySession pulls a checkout session from the provider and applies it.
// It is the fallback for webhooks that never arrived.
func (c *Consumer) VerifySession(ctx context.Context, userID, sessionID string) (ApplyResult, error) {
	if sessionID == "" {
		return "", apperrors.RequiredField("session_id")
	}
	session, err := c.gateway.GetCheckoutSession(ctx, sessionID)
	if err != nil {
		return "", err
	}

	if owner := session.Metadata[MetadataUserID]; owner != "" && owner != userID {
		c.logger.Warn("checkout session verified by another user",
			zap.String("session_id", sessionID), zap.String("user_id", userID))
		return "", apperrors.Wrap(apperrors.ErrForbidden, "checkout session belongs to another user")
	}
	if !settled(session) {
		return Pending, nil
	}

	ev, err := eventFromSession(session, model.PurchaseSucceeded)
	if err != nil {
		c.malformed(err, sessionID)
		return "", err
	}
	if ev.UserID != userID {
		return "", apperrors.Wrap(apperrors.ErrForbidden, "checkout session belongs to another user")
	}
	return c.ApplyPaymentEvent(ctx, ev)
}

func (c *Consumer) malformed(err error, id string) {
	c.count("malformed")
	c.logger.Error("rejected malformed payment event", zap.String("external_payment_id", id), zap.Error(err))
}

func (c *Consumer) count(result string) {
	if c.metrics != nil {
		c.metrics.Payments.WithLabelValues(result).Inc()
	}
}

// IsRejected reports whether err means the event itself is bad rather than
// a transient failure worth a provider retry.
func IsRejected(err error) bool {
	return errors.Is(err, ErrMalformedEvent) || errors.Is(err, ErrInvalidSignature) || errors.Is(err, apperrors.ErrNotFound)
}

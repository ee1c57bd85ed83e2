package notify

import (
	"context"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Notifier tells users about account events. Delivery channels (email, push)
// live behind this interface.
type Notifier interface {
	LowBalance(ctx context.Context, userID string, balance decimal.Decimal) error
}

// LogNotifier records notifications in the application log.
type LogNotifier struct {
	logger      *zap.Logger
	purchaseURL string
}

func NewLogNotifier(logger *zap.Logger, purchaseURL string) *LogNotifier {
	return &LogNotifier{logger: logger.Named("notify"), purchaseURL: purchaseURL}
}

func (n *LogNotifier) LowBalance(ctx context.Context, userID string, balance decimal.Decimal) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	n.logger.Info("low balance notification",
		zap.String("user_id", userID),
		zap.String("balance", balance.StringFixed(2)),
		zap.String("purchase_url", n.purchaseURL),
	)
	return nil
}

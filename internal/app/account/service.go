package account

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	apperrors "podbrief/internal/app/errors"
	"podbrief/internal/app/model"
	"podbrief/internal/app/storage/blob"
)

// Store is the account data the service touches.
type Store interface {
	GetUser(ctx context.Context, id string) (*model.User, error)
	ListLocationRefs(ctx context.Context, ownerID string) ([]string, error)
	DeleteUser(ctx context.Context, id string) error
}

// Service deletes accounts. Stored audio goes first, then the user row, whose
// removal cascades to jobs, transcripts, summaries and purchases.
type Service struct {
	store  Store
	blobs  blob.Store
	logger *zap.Logger
}

func NewService(store Store, blobs blob.Store, logger *zap.Logger) *Service {
	return &Service{store: store, blobs: blobs, logger: logger.Named("account")}
}

// DeletionReport is returned after an account is removed.
type DeletionReport struct {
	BlobsDeleted int `json:"blobs_deleted"`
	BlobFailures int `json:"blob_failures"`
}

func (s *Service) Delete(ctx context.Context, userID string) (DeletionReport, error) {
	var report DeletionReport
	if _, err := s.store.GetUser(ctx, userID); err != nil {
		return report, err
	}

	refs, err := s.store.ListLocationRefs(ctx, userID)
	if err != nil {
		return report, err
	}
	for _, ref := range refs {
		if err := s.blobs.Delete(ctx, ref); err != nil && !errors.Is(err, apperrors.ErrNotFound) {
			report.BlobFailures++
			s.logger.Warn("failed to delete blob for account", zap.String("user_id", userID), zap.String("ref", ref), zap.Error(err))
			continue
		}
		report.BlobsDeleted++
	}

	if err := s.store.DeleteUser(ctx, userID); err != nil {
		return report, err
	}
	s.logger.Info("account deleted",
		zap.String("user_id", userID),
		zap.Int("blobs_deleted", report.BlobsDeleted),
		zap.Int("blob_failures", report.BlobFailures))
	return report, nil
}

// Profile is the caller's account summary.
type Profile struct {
	ID      string          `json:"id"`
	Email   string          `json:"email"`
	Credits decimal.Decimal `json:"credits"`
}

func (s *Service) Profile(ctx context.Context, userID string) (*Profile, error) {
	u, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &Profile{ID: u.ID, Email: u.Email, Credits: model.DecimalFromCents(u.CreditsCents)}, nil
}

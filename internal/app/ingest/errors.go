package ingest

import (
	"fmt"
	"strings"
	"time"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	apperrors "podbrief/internal/app/errors"
)

var (
	// ErrFileTooLarge is returned when a payload exceeds its ceiling.
	ErrFileTooLarge = apperrors.Wrap(apperrors.ErrInvalidInput, "file too large")
	// ErrUnsupportedType is returned for media outside the allow-list.
	ErrUnsupportedType = apperrors.Wrap(apperrors.ErrInvalidInput, "unsupported media type")
	// ErrInvalidChunk is returned for malformed chunk metadata.
	ErrInvalidChunk = apperrors.Wrap(apperrors.ErrInvalidInput, "invalid chunk")
	// ErrUploadNotFound is returned for unknown upload ids.
	ErrUploadNotFound = apperrors.Wrap(apperrors.ErrNotFound, "upload not found")
)

// RateLimitedError rejects an upload over the per-user quota.
type RateLimitedError struct {
	RetryAfter time.Duration
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("upload rate limit exceeded, retry after %s", e.RetryAfter.Round(time.Second))
}

// InsufficientCreditsError rejects an upload the balance cannot cover.
type InsufficientCreditsError struct {
	Required  decimal.Decimal
	Balance   decimal.Decimal
	Shortfall decimal.Decimal
}

func (e *InsufficientCreditsError) Error() string {
	return fmt.Sprintf("insufficient credits: required %s, balance %s", e.Required.StringFixed(2), e.Balance.StringFixed(2))
}

func (e *InsufficientCreditsError) Unwrap() error {
	return apperrors.ErrInsufficientCredits
}

// MissingChunksError lists chunk indices absent at completion.
type MissingChunksError struct {
	UploadID string
	Missing  []int
}

func (e *MissingChunksError) Error() string {
	parts := lo.Map(e.Missing, func(i int, _ int) string { return fmt.Sprint(i) })
	return fmt.Sprintf("upload %s is missing chunks [%s]", e.UploadID, strings.Join(parts, ", "))
}

func (e *MissingChunksError) Unwrap() error {
	return apperrors.ErrConflict
}

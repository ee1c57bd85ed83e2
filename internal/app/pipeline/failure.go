package pipeline

import (
	"errors"

	"podbrief/internal/app/api/provider"
	apperrors "podbrief/internal/app/errors"
)

// FailureReason is the category recorded on a job that ends in error. Raw
// engine messages are logged, never stored.
type FailureReason string

const (
	ReasonRateLimited         FailureReason = "rate_limited"
	ReasonQuotaExceeded       FailureReason = "quota_exceeded"
	ReasonInvalidCredentials  FailureReason = "invalid_credentials"
	ReasonInsufficientCredits FailureReason = "insufficient_credits"
	ReasonSourceNotFound      FailureReason = "source_not_found"
	ReasonUnsupportedFormat   FailureReason = "unsupported_format"
	ReasonUnknown             FailureReason = "unknown"
)

// NeedsOperator reports whether the failure can only be fixed by an operator
// (billing or credentials of the engine account).
func (r FailureReason) NeedsOperator() bool {
	return r == ReasonQuotaExceeded || r == ReasonInvalidCredentials
}

// Classify maps an error from any pipeline step to a FailureReason.
func Classify(err error) FailureReason {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, apperrors.ErrInsufficientCredits):
		return ReasonInsufficientCredits
	case errors.Is(err, apperrors.ErrNotFound):
		return ReasonSourceNotFound
	}

	switch provider.CodeOf(err) {
	case provider.CodeRateLimited:
		return ReasonRateLimited
	case provider.CodeQuotaExceeded:
		return ReasonQuotaExceeded
	case provider.CodeInvalidCredentials:
		return ReasonInvalidCredentials
	case provider.CodeUnsupportedFormat, provider.CodeInvalidInput:
		return ReasonUnsupportedFormat
	default:
		return ReasonUnknown
	}
}

// jobFailure carries a reason decided by the processor itself.
type jobFailure struct {
	reason FailureReason
	err    error
}

func (f *jobFailure) Error() string {
	if f.err == nil {
		return string(f.reason)
	}
	return string(f.reason) + ": " + f.err.Error()
}

func (f *jobFailure) Unwrap() error { return f.err }

func fail(reason FailureReason, err error) error {
	return &jobFailure{reason: reason, err: err}
}

func reasonOf(err error) FailureReason {
	var f *jobFailure
	if errors.As(err, &f) {
		return f.reason
	}
	return Classify(err)
}

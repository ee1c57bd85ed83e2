package errors

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	apperrors "podbrief/internal/app/errors"
	"podbrief/internal/app/ingest"
	"podbrief/internal/app/pipeline"
)

// ErrorKind represents different types of API errors
type ErrorKind string

const (
	KindValidation         ErrorKind = "validation"
	KindNotFound           ErrorKind = "not_found"
	KindUnauthorized       ErrorKind = "unauthorized"
	KindForbidden          ErrorKind = "forbidden"
	KindConflict           ErrorKind = "conflict"
	KindInternal           ErrorKind = "internal"
	KindServiceUnavailable ErrorKind = "service_unavailable"
	KindBadRequest         ErrorKind = "bad_request"
	KindPaymentRequired    ErrorKind = "insufficient_credits"
	KindRateLimited        ErrorKind = "rate_limited"
	KindPayloadTooLarge    ErrorKind = "file_too_large"
	KindUnsupportedMedia   ErrorKind = "unsupported_media_type"
)

// APIError represents a structured API error response
type APIError struct {
	Kind      ErrorKind      `json:"kind"`
	Message   string         `json:"message"`
	Details   map[string]any `json:"details,omitempty"`
	RequestID string         `json:"request_id,omitempty"`
	Code      string         `json:"code,omitempty"`

	// RetryAfter is sent as a Retry-After header when set.
	RetryAfter time.Duration `json:"-"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	return e.Message
}

// HTTPStatus returns the appropriate HTTP status code for the error kind
func (e *APIError) HTTPStatus() int {
	switch e.Kind {
	case KindValidation:
		return http.StatusUnprocessableEntity
	case KindBadRequest:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindConflict:
		return http.StatusConflict
	case KindServiceUnavailable:
		return http.StatusServiceUnavailable
	case KindPaymentRequired:
		return http.StatusPaymentRequired
	case KindRateLimited:
		return http.StatusTooManyRequests
	case KindPayloadTooLarge:
		return http.StatusRequestEntityTooLarge
	case KindUnsupportedMedia:
		return http.StatusUnsupportedMediaType
	default:
		return http.StatusInternalServerError
	}
}

// NewValidationError creates a validation error with field details
func NewValidationError(message string, fields map[string]string) *APIError {
	details := make(map[string]any, len(fields))
	for k, v := range fields {
		details[k] = v
	}
	return &APIError{Kind: KindValidation, Message: message, Details: details}
}

// NewNotFoundError creates a not found error
func NewNotFoundError(resource string) *APIError {
	return &APIError{Kind: KindNotFound, Message: fmt.Sprintf("%s not found", resource)}
}

func NewUnauthorizedError(message string) *APIError {
	return &APIError{Kind: KindUnauthorized, Message: message}
}

func NewForbiddenError(message string) *APIError {
	return &APIError{Kind: KindForbidden, Message: message}
}

func NewConflictError(message string) *APIError {
	return &APIError{Kind: KindConflict, Message: message}
}

func NewInternalError(message string) *APIError {
	return &APIError{Kind: KindInternal, Message: message}
}

func NewBadRequestError(message string) *APIError {
	return &APIError{Kind: KindBadRequest, Message: message}
}

func NewServiceUnavailableError(message string) *APIError {
	return &APIError{Kind: KindServiceUnavailable, Message: message}
}

// FromDomain maps service errors to API errors. Unknown errors become a
// generic internal error so no internals leak to clients.
func FromDomain(err error) *APIError {
	if err == nil {
		return nil
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}

	var rl *ingest.RateLimitedError
	if errors.As(err, &rl) {
		return &APIError{
			Kind:       KindRateLimited,
			Message:    "upload limit reached, try again later",
			Details:    map[string]any{"retry_after_seconds": int(rl.RetryAfter.Seconds())},
			RetryAfter: rl.RetryAfter,
		}
	}

	var ic *ingest.InsufficientCreditsError
	if errors.As(err, &ic) {
		return &APIError{
			Kind:    KindPaymentRequired,
			Message: "not enough credits for this upload",
			Details: map[string]any{
				"required":  ic.Required.StringFixed(2),
				"balance":   ic.Balance.StringFixed(2),
				"shortfall": ic.Shortfall.StringFixed(2),
			},
		}
	}

	var missing *ingest.MissingChunksError
	if errors.As(err, &missing) {
		return &APIError{
			Kind:    KindConflict,
			Message: "upload is incomplete",
			Code:    "missing_chunks",
			Details: map[string]any{"missing": missing.Missing},
		}
	}

	switch {
	case errors.Is(err, ingest.ErrFileTooLarge):
		return &APIError{Kind: KindPayloadTooLarge, Message: "file too large"}
	case errors.Is(err, ingest.ErrUnsupportedType):
		return &APIError{Kind: KindUnsupportedMedia, Message: "unsupported media type"}
	case errors.Is(err, pipeline.ErrJobCompleted):
		return &APIError{Kind: KindConflict, Code: "job_completed", Message: "job already completed"}
	case errors.Is(err, pipeline.ErrJobInProgress):
		return &APIError{Kind: KindConflict, Code: "job_in_progress", Message: "job is being processed"}
	case errors.Is(err, apperrors.ErrInsufficientCredits):
		return &APIError{Kind: KindPaymentRequired, Message: "insufficient credits"}
	case errors.Is(err, apperrors.ErrNotFound):
		return &APIError{Kind: KindNotFound, Message: "resource not found"}
	case errors.Is(err, apperrors.ErrForbidden):
		return &APIError{Kind: KindForbidden, Message: err.Error()}
	case errors.Is(err, apperrors.ErrInvalidInput):
		return &APIError{Kind: KindBadRequest, Message: err.Error()}
	case errors.Is(err, apperrors.ErrAlreadyExists), errors.Is(err, apperrors.ErrConflict):
		return &APIError{Kind: KindConflict, Message: err.Error()}
	case errors.Is(err, apperrors.ErrUnavailable):
		return &APIError{Kind: KindServiceUnavailable, Message: "upstream service unavailable"}
	}
	return &APIError{Kind: KindInternal, Message: "Internal server error"}
}

package openai

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/sashabaranov/go-openai"

	"podbrief/internal/app/api/provider"
)

const providerName = "openai"

// ClassifyError converts go-openai errors into provider.EngineError.
func ClassifyError(err error) error {
	if err == nil {
		return nil
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return fromStatus(apiErr.HTTPStatusCode, apiErrorCode(apiErr), apiErr.Message, err)
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return fromStatus(reqErr.HTTPStatusCode, "", reqErr.Error(), err)
	}

	return &provider.EngineError{
		Code:      provider.CodeUnknown,
		Message:   "request failed",
		Provider:  providerName,
		Retryable: true,
		Err:       err,
	}
}

func apiErrorCode(apiErr *openai.APIError) string {
	if code, ok := apiErr.Code.(string); ok && code != "" {
		return code
	}
	return apiErr.Type
}

func fromStatus(status int, code, message string, err error) error {
	engineErr := &provider.EngineError{
		Provider: providerName,
		Message:  message,
		Err:      err,
	}

	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden || code == "invalid_api_key":
		engineErr.Code = provider.CodeInvalidCredentials
	case code == "insufficient_quota" || status == http.StatusPaymentRequired:
		engineErr.Code = provider.CodeQuotaExceeded
	case status == http.StatusTooManyRequests:
		engineErr.Code = provider.CodeRateLimited
		engineErr.Retryable = true
	case status == http.StatusUnsupportedMediaType:
		engineErr.Code = provider.CodeUnsupportedFormat
	case status == http.StatusBadRequest && looksLikeFormatError(message):
		engineErr.Code = provider.CodeUnsupportedFormat
	case status == http.StatusBadRequest || status == http.StatusRequestEntityTooLarge:
		engineErr.Code = provider.CodeInvalidInput
	default:
		engineErr.Code = provider.CodeUnknown
		engineErr.Retryable = status == 0 || status >= 500
	}
	if engineErr.Message == "" {
		engineErr.Message = fmt.Sprintf("http status %d", status)
	}
	return engineErr
}

func looksLikeFormatError(message string) bool {
	m := strings.ToLower(message)
	return strings.Contains(m, "file format") || strings.Contains(m, "invalid file") ||
		strings.Contains(m, "could not be decoded") || strings.Contains(m, "unsupported")
}

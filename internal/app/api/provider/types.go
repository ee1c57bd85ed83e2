package provider

import (
	"errors"
	"fmt"
)

// TranscribeRequest describes one transcription call.
type TranscribeRequest struct {
	InputFilePath string
	Filename      string
	ContentType   string
	Language      string
}

// TranscribeResult is what the engine returned. DurationSeconds is zero when
// the engine does not report it.
type TranscribeResult struct {
	Text            string
	Language        string
	DurationSeconds float64
	Model           string
}

// SummaryContent is the structured summary an LLM returns.
type SummaryContent struct {
	ShortSummary string   `json:"short_summary"`
	LongSummary  string   `json:"long_summary"`
	BulletPoints []string `json:"bullet_points"`
	Keywords     []string `json:"keywords"`
	Sentiment    string   `json:"sentiment"`
	Language     string   `json:"language"`
}

// ErrorCode classifies engine failures.
type ErrorCode string

const (
	CodeRateLimited        ErrorCode = "rate_limited"
	CodeQuotaExceeded      ErrorCode = "quota_exceeded"
	CodeInvalidCredentials ErrorCode = "invalid_credentials"
	CodeUnsupportedFormat  ErrorCode = "unsupported_format"
	CodeInvalidInput       ErrorCode = "invalid_input"
	CodeInvalidResponse    ErrorCode = "invalid_response"
	CodeUnknown            ErrorCode = "unknown"
)

// EngineError represents a provider-specific failure.
type EngineError struct {
	Code      ErrorCode
	Message   string
	Provider  string
	Retryable bool
	Err       error
}

func (e *EngineError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Provider, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Provider, e.Message)
}

func (e *EngineError) Unwrap() error {
	return e.Err
}

// CodeOf returns the engine error code carried by err, or CodeUnknown.
func CodeOf(err error) ErrorCode {
	var engineErr *EngineError
	if errors.As(err, &engineErr) {
		return engineErr.Code
	}
	return CodeUnknown
}

package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"podbrief/internal/app/api/provider"
	"podbrief/internal/config"
)

const defaultModel = "gemini-2.0-flash"

func init() {
	provider.RegisterSummarizer("gemini", func(cfg config.EnginesConfig) (provider.Summarizer, error) {
		return NewSummarizer(context.Background(), cfg.GeminiAPIKey, cfg.SummaryModel)
	})
}

// Summarizer asks a Gemini model for a JSON summary.
type Summarizer struct {
	client *genai.Client
	model  string
}

func NewSummarizer(ctx context.Context, apiKey, model string) (*Summarizer, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is not set")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	if model == "" {
		model = defaultModel
	}
	return &Summarizer{client: client, model: model}, nil
}

func (s *Summarizer) Name() string {
	return "gemini"
}

func (s *Summarizer) Summarize(ctx context.Context, text, languageHint string) (*provider.SummaryContent, error) {
	resp, err := s.client.Models.GenerateContent(ctx, s.model, genai.Text(provider.SummaryPrompt(text, languageHint)), &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
	})
	if err != nil {
		return nil, classifyError(err)
	}

	raw := resp.Text()
	if raw == "" {
		return nil, &provider.EngineError{
			Code:     provider.CodeInvalidResponse,
			Message:  "gemini returned no candidates",
			Provider: s.Name(),
		}
	}

	content, err := provider.ParseSummaryJSON(raw)
	if err != nil {
		return nil, &provider.EngineError{
			Code:     provider.CodeInvalidResponse,
			Message:  fmt.Sprintf("model %s returned an unusable summary", s.model),
			Provider: s.Name(),
			Err:      err,
		}
	}
	return content, nil
}

func classifyError(err error) error {
	engineErr := &provider.EngineError{Provider: "gemini", Message: "generate content failed", Err: err}

	var apiErr genai.APIError
	if asAPIError(err, &apiErr) {
		switch {
		case apiErr.Code == 401 || apiErr.Code == 403:
			engineErr.Code = provider.CodeInvalidCredentials
		case apiErr.Code == 429 && strings.Contains(strings.ToLower(apiErr.Message), "quota"):
			engineErr.Code = provider.CodeQuotaExceeded
		case apiErr.Code == 429:
			engineErr.Code = provider.CodeRateLimited
			engineErr.Retryable = true
		default:
			engineErr.Code = provider.CodeUnknown
			engineErr.Retryable = apiErr.Code >= 500
		}
		return engineErr
	}

	engineErr.Code = provider.CodeUnknown
	engineErr.Retryable = true
	return engineErr
}

func asAPIError(err error, target *genai.APIError) bool {
	var value genai.APIError
	if errors.As(err, &value) {
		*target = value
		return true
	}
	var ptr *genai.APIError
	if errors.As(err, &ptr) && ptr != nil {
		*target = *ptr
		return true
	}
	return false
}

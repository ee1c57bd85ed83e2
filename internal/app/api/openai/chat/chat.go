package chat

import (
	"context"
	"fmt"

	"github.com/sashabaranov/go-openai"

	"podbrief/internal/app/api/provider"
	openaiclient "podbrief/internal/app/api/openai"
	"podbrief/internal/config"
)

const defaultModel = openai.GPT4oMini

func init() {
	provider.RegisterSummarizer("openai", func(cfg config.EnginesConfig) (provider.Summarizer, error) {
		client, err := openaiclient.NewClient(cfg)
		if err != nil {
			return nil, err
		}
		return NewSummarizer(client, cfg.SummaryModel), nil
	})
}

// Summarizer asks an OpenAI chat model for a JSON summary.
type Summarizer struct {
	client *openai.Client
	model  string
}

func NewSummarizer(client *openai.Client, model string) *Summarizer {
	if model == "" {
		model = defaultModel
	}
	return &Summarizer{client: client, model: model}
}

func (s *Summarizer) Name() string {
	return "openai"
}

func (s *Summarizer) Summarize(ctx context.Context, text, languageHint string) (*provider.SummaryContent, error) {
	request := openai.ChatCompletionRequest{
		Model: s.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: provider.SummaryPrompt(text, languageHint),
			},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Temperature: 0.2,
	}

	resp, err := s.client.CreateChatCompletion(ctx, request)
	if err != nil {
		return nil, openaiclient.ClassifyError(err)
	}
	if len(resp.Choices) == 0 {
		return nil, &provider.EngineError{
			Code:     provider.CodeInvalidResponse,
			Message:  "chat completion returned no choices",
			Provider: s.Name(),
		}
	}

	content, err := provider.ParseSummaryJSON(resp.Choices[0].Message.Content)
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

package openai

import (
	"fmt"

	"github.com/sashabaranov/go-openai"

	"podbrief/internal/config"
)

// NewClient builds an OpenAI client from engine configuration.
func NewClient(cfg config.EnginesConfig) (*openai.Client, error) {
	if cfg.OpenAIAPIKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is not set")
	}
	clientConfig := openai.DefaultConfig(cfg.OpenAIAPIKey)
	if cfg.OpenAIBaseURL != "" {
		clientConfig.BaseURL = cfg.OpenAIBaseURL
	}
	return openai.NewClientWithConfig(clientConfig), nil
}

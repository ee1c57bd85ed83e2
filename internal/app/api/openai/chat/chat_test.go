package chat

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"podbrief/internal/app/api/provider"
)

func newTestSummarizer(t *testing.T, reply string, status int) *Summarizer {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)

		var req openai.ChatCompletionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.NotNil(t, req.ResponseFormat)
		assert.Equal(t, openai.ChatCompletionResponseFormatTypeJSONObject, req.ResponseFormat.Type)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(reply))
	}))
	t.Cleanup(server.Close)

	cfg := openai.DefaultConfig("sk-test")
	cfg.BaseURL = server.URL + "/v1"
	return NewSummarizer(openai.NewClientWithConfig(cfg), "")
}

func TestSummarize_Success(t *testing.T) {
	content := `{\"short_summary\":\"A talk about Go.\",\"long_summary\":\"Longer.\",\"bullet_points\":[\"one\"],\"keywords\":[\"go\"],\"sentiment\":\"neutral\",\"language\":\"en\"}`
	reply := `{"id":"chatcmpl-1","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"` + content + `"},"finish_reason":"stop"}]}`

	s := newTestSummarizer(t, reply, http.StatusOK)
	summary, err := s.Summarize(context.Background(), "transcript", "en")
	require.NoError(t, err)
	assert.Equal(t, "A talk about Go.", summary.ShortSummary)
	assert.Equal(t, "neutral", summary.Sentiment)
}

func TestSummarize_UnusableReply(t *testing.T) {
	reply := `{"id":"chatcmpl-1","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"sorry"},"finish_reason":"stop"}]}`

	s := newTestSummarizer(t, reply, http.StatusOK)
	_, err := s.Summarize(context.Background(), "transcript", "")
	assert.Equal(t, provider.CodeInvalidResponse, provider.CodeOf(err))
}

func TestSummarize_RateLimited(t *testing.T) {
	s := newTestSummarizer(t, `{"error":{"message":"Rate limit reached","type":"requests","code":"rate_limit_exceeded"}}`, http.StatusTooManyRequests)
	_, err := s.Summarize(context.Background(), "transcript", "")
	assert.Equal(t, provider.CodeRateLimited, provider.CodeOf(err))
}

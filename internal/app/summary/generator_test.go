package summary

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"podbrief/internal/app/api/provider"
	apperrors "podbrief/internal/app/errors"
	"podbrief/internal/app/model"
)

type memStore struct {
	mu             sync.Mutex
	transcriptions map[string]*model.Transcription
	summaries      map[string]*model.Summary
}

func newMemStore() *memStore {
	return &memStore{
		transcriptions: map[string]*model.Transcription{},
		summaries:      map[string]*model.Summary{},
	}
}

func (m *memStore) GetTranscription(_ context.Context, id string) (*model.Transcription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.transcriptions[id]
	if !ok {
		return nil, apperrors.NotFound("transcription", id)
	}
	return t, nil
}

func (m *memStore) CreateSummary(_ context.Context, sum *model.Summary) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.summaries[sum.TranscriptionID]; ok {
		return false, nil
	}
	m.summaries[sum.TranscriptionID] = sum
	return true, nil
}

type mockSummarizer struct {
	mock.Mock
}

func (m *mockSummarizer) Summarize(ctx context.Context, text, languageHint string) (*provider.SummaryContent, error) {
	args := m.Called(ctx, text, languageHint)
	content, _ := args.Get(0).(*provider.SummaryContent)
	return content, args.Error(1)
}

func (m *mockSummarizer) Name() string { return "mock" }

func TestGenerate_StoresNormalizedSummary(t *testing.T) {
	store := newMemStore()
	store.transcriptions["t1"] = &model.Transcription{ID: "t1", Text: "a long talk", Language: sql.NullString{String: "de", Valid: true}}

	summarizer := new(mockSummarizer)
	summarizer.On("Summarize", mock.Anything, "a long talk", "de").Return(&provider.SummaryContent{
		ShortSummary: " Kurz. ",
		BulletPoints: []string{"eins", "", "eins", "zwei"},
		Keywords:     []string{"Go", "go"},
		Sentiment:    "POSITIVE",
	}, nil)

	g := NewGenerator(store, summarizer, 1000, zap.NewNop())
	g.Generate(context.Background(), "t1")
	g.Generate(context.Background(), "t1")

	sum := store.summaries["t1"]
	require.NotNil(t, sum)
	assert.Equal(t, "Kurz.", sum.ShortSummary)
	assert.Equal(t, model.StringList{"eins", "zwei"}, sum.BulletPoints)
	assert.Equal(t, model.StringList{"go"}, sum.Keywords)
	assert.Equal(t, model.SentimentPositive, sum.Sentiment)
	assert.Equal(t, "de", sum.Language)
	summarizer.AssertNumberOfCalls(t, "Summarize", 2)
}

func TestGenerate_FailureIsSwallowed(t *testing.T) {
	store := newMemStore()
	store.transcriptions["t1"] = &model.Transcription{ID: "t1", Text: "text"}

	summarizer := new(mockSummarizer)
	summarizer.On("Summarize", mock.Anything, "text", "").Return(nil, errors.New("engine down"))

	g := NewGenerator(store, summarizer, 0, zap.NewNop())
	assert.NotPanics(t, func() { g.Generate(context.Background(), "t1") })
	assert.Empty(t, store.summaries)
}

func TestGenerate_NilSummarizer(t *testing.T) {
	store := newMemStore()
	g := NewGenerator(store, nil, 0, zap.NewNop())
	g.Generate(context.Background(), "missing")
	assert.Empty(t, store.summaries)
}

func TestNormalize_Sentiment(t *testing.T) {
	assert.Equal(t, model.SentimentNeutral, Normalize(&provider.SummaryContent{Sentiment: "mixed"}, "").Sentiment)
	assert.Equal(t, model.SentimentNegative, Normalize(&provider.SummaryContent{Sentiment: " negative"}, "").Sentiment)
	assert.Equal(t, "und", Normalize(&provider.SummaryContent{}, "").Language)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", Truncate("short", 100))
	assert.Equal(t, "héllo wö", Truncate("héllo wörld", 8))
	assert.LessOrEqual(t, len([]rune(Truncate("one two three four five six", 12))), 12)
	assert.Equal(t, "abc", Truncate("abc", 0))
}

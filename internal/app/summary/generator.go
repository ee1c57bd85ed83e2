package summary

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"podbrief/internal/app/api/provider"
	"podbrief/internal/app/model"
)

// Store is the persistence the generator needs.
type Store interface {
	GetTranscription(ctx context.Context, id string) (*model.Transcription, error)
	CreateSummary(ctx context.Context, sum *model.Summary) (bool, error)
}

// Generator enriches finished transcriptions with an LLM summary.
type Generator struct {
	store      Store
	summarizer provider.Summarizer
	maxChars   int
	timeout    time.Duration
	logger     *zap.Logger
}

// NewGenerator creates a Generator. A nil summarizer disables summaries.
func NewGenerator(store Store, summarizer provider.Summarizer, maxChars int, logger *zap.Logger) *Generator {
	return &Generator{
		store:      store,
		summarizer: summarizer,
		maxChars:   maxChars,
		timeout:    2 * time.Minute,
		logger:     logger.Named("summary"),
	}
}

// Generate summarizes one transcription. Failures are logged, never returned:
// a transcript without a summary is still a valid result.
func (g *Generator) Generate(ctx context.Context, transcriptionID string) {
	if g.summarizer == nil {
		return
	}
	created, err := g.generate(ctx, transcriptionID)
	if err != nil {
		g.logger.Warn("summary generation failed",
			zap.String("transcription_id", transcriptionID),
			zap.String("provider", g.summarizer.Name()),
			zap.String("code", string(provider.CodeOf(err))),
			zap.Error(err),
		)
		return
	}
	if created {
		g.logger.Info("summary stored", zap.String("transcription_id", transcriptionID))
	}
}

func (g *Generator) generate(ctx context.Context, transcriptionID string) (bool, error) {
	t, err := g.store.GetTranscription(ctx, transcriptionID)
	if err != nil {
		return false, fmt.Errorf("load transcription: %w", err)
	}
	if strings.TrimSpace(t.Text) == "" {
		return false, nil
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	hint := t.Language.String
	content, err := g.summarizer.Summarize(ctx, Truncate(t.Text, g.maxChars), hint)
	if err != nil {
		return false, err
	}

	sum := Normalize(content, hint)
	sum.ID = uuid.NewString()
	sum.TranscriptionID = transcriptionID
	return g.store.CreateSummary(ctx, sum)
}

// Normalize coerces an engine reply into a storable Summary.
func Normalize(content *provider.SummaryContent, languageHint string) *model.Summary {
	clean := func(items []string) model.StringList {
		items = lo.Map(items, func(s string, _ int) string { return strings.TrimSpace(s) })
		items = lo.Filter(items, func(s string, _ int) bool { return s != "" })
		return model.StringList(lo.Uniq(items))
	}

	language := strings.TrimSpace(content.Language)
	if language == "" {
		language = languageHint
	}
	if language == "" {
		language = "und"
	}

	return &model.Summary{
		ShortSummary: strings.TrimSpace(content.ShortSummary),
		LongSummary:  strings.TrimSpace(content.LongSummary),
		BulletPoints: clean(content.BulletPoints),
		Keywords:     clean(lo.Map(content.Keywords, func(s string, _ int) string { return strings.ToLower(s) })),
		Sentiment:    normalizeSentiment(content.Sentiment),
		Language:     language,
	}
}

func normalizeSentiment(s string) model.Sentiment {
	switch model.Sentiment(strings.ToLower(strings.TrimSpace(s))) {
	case model.SentimentPositive:
		return model.SentimentPositive
	case model.SentimentNegative:
		return model.SentimentNegative
	default:
		return model.SentimentNeutral
	}
}

// Truncate cuts text to at most maxChars runes, preferring a word boundary.
func Truncate(text string, maxChars int) string {
	if maxChars <= 0 {
		return text
	}
	runes := []rune(text)
	if len(runes) <= maxChars {
		return text
	}
	cut := runes[:maxChars]
	for i := len(cut) - 1; i > maxChars*9/10; i-- {
		if unicode.IsSpace(cut[i]) {
			cut = cut[:i]
			break
		}
	}
	return string(cut)
}

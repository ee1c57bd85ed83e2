package repository

import (
	"context"

	"podbrief/internal/app/model"
)

const summaryColumns = "id, transcription_id, short_summary, long_summary, bullet_points, keywords, sentiment, language, created_at"

// CreateSummary stores a summary; it reports false when one already exists
// for the transcription.
func (s *Store) CreateSummary(ctx context.Context, sum *model.Summary) (bool, error) {
	if sum.CreatedAt.IsZero() {
		sum.CreatedAt = s.now()
	}
	res, err := s.q(ctx).ExecContext(ctx, s.rebind(
		`INSERT INTO summaries (id, transcription_id, short_summary, long_summary, bullet_points, keywords, sentiment, language, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (transcription_id) DO NOTHING`),
		sum.ID, sum.TranscriptionID, sum.ShortSummary, sum.LongSummary, sum.BulletPoints, sum.Keywords,
		sum.Sentiment, sum.Language, sum.CreatedAt)
	if err != nil {
		return false, mapError(err, "summary", sum.TranscriptionID)
	}
	n, err := rowsAffected(res)
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// GetSummaryByTranscription loads the summary of a transcription.
func (s *Store) GetSummaryByTranscription(ctx context.Context, transcriptionID string) (*model.Summary, error) {
	var sum model.Summary
	err := s.q(ctx).GetContext(ctx, &sum, s.rebind(
		"SELECT "+summaryColumns+" FROM summaries WHERE transcription_id = ?"), transcriptionID)
	if err != nil {
		return nil, mapError(err, "summary", transcriptionID)
	}
	return &sum, nil
}

package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	apperrors "podbrief/internal/app/errors"
	"podbrief/internal/app/model"
)

const transcriptionColumns = "id, owner_id, audio_file_id, text, language, cost_cents, is_public, share_token, created_at"

// CreateTranscription inserts the settled transcript. A second transcription
// for the same audio file fails with ErrAlreadyExists.
func (s *Store) CreateTranscription(ctx context.Context, t *model.Transcription) error {
	if t.CreatedAt.IsZero() {
		t.CreatedAt = s.now()
	}
	_, err := s.q(ctx).ExecContext(ctx, s.rebind(
		`INSERT INTO transcriptions (id, owner_id, audio_file_id, text, language, cost_cents, is_public, share_token, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		t.ID, t.OwnerID, t.AudioFileID, t.Text, t.Language, t.CostCents, t.IsPublic, t.ShareToken, t.CreatedAt)
	return mapError(err, "transcription", t.ID)
}

// GetTranscription loads a transcription by id.
func (s *Store) GetTranscription(ctx context.Context, id string) (*model.Transcription, error) {
	var t model.Transcription
	err := s.q(ctx).GetContext(ctx, &t, s.rebind("SELECT "+transcriptionColumns+" FROM transcriptions WHERE id = ?"), id)
	if err != nil {
		return nil, mapError(err, "transcription", id)
	}
	return &t, nil
}

// GetTranscriptionByAudioFile loads the transcription produced for an audio file.
func (s *Store) GetTranscriptionByAudioFile(ctx context.Context, audioFileID string) (*model.Transcription, error) {
	var t model.Transcription
	err := s.q(ctx).GetContext(ctx, &t, s.rebind(
		"SELECT "+transcriptionColumns+" FROM transcriptions WHERE audio_file_id = ?"), audioFileID)
	if err != nil {
		return nil, mapError(err, "transcription for audio file", audioFileID)
	}
	return &t, nil
}

// GetPublicTranscription loads a shared transcription by its token.
func (s *Store) GetPublicTranscription(ctx context.Context, token string) (*model.Transcription, error) {
	var t model.Transcription
	err := s.q(ctx).GetContext(ctx, &t, s.rebind(
		"SELECT "+transcriptionColumns+" FROM transcriptions WHERE share_token = ? AND is_public = TRUE"), token)
	if err != nil {
		return nil, mapError(err, "shared transcription", "token")
	}
	return &t, nil
}

// EnableSharing makes the transcription public. The candidate token is only
// stored when the row has none yet; the effective token is returned.
func (s *Store) EnableSharing(ctx context.Context, ownerID, id, candidateToken string) (string, error) {
	var token sql.NullString
	err := s.q(ctx).GetContext(ctx, &token, s.rebind(
		`UPDATE transcriptions SET is_public = TRUE, share_token = COALESCE(share_token, ?)
		 WHERE id = ? AND owner_id = ?
		 RETURNING share_token`),
		candidateToken, id, ownerID)
	if err != nil {
		return "", mapError(err, "transcription", id)
	}
	if !token.Valid {
		return "", fmt.Errorf("transcription %s: share token missing after update: %w", id, apperrors.ErrConflict)
	}
	return token.String, nil
}

// DisableSharing hides the transcription. The token is retained so that
// re-enabling restores the same link.
func (s *Store) DisableSharing(ctx context.Context, ownerID, id string) error {
	res, err := s.q(ctx).ExecContext(ctx, s.rebind(
		"UPDATE transcriptions SET is_public = FALSE WHERE id = ? AND owner_id = ?"), id, ownerID)
	if err != nil {
		return mapError(err, "transcription", id)
	}
	n, err := rowsAffected(res)
	if err != nil {
		return err
	}
	if n == 0 {
		return apperrors.NotFound("transcription", id)
	}
	return nil
}

// ExportRow is one transcript with its source file name, for spreadsheet export.
type ExportRow struct {
	TranscriptionID  string          `db:"id"`
	OriginalFilename sql.NullString  `db:"original_filename"`
	DurationSeconds  sql.NullFloat64 `db:"duration_seconds"`
	CostCents        int64           `db:"cost_cents"`
	Language         sql.NullString  `db:"language"`
	Text             string          `db:"text"`
	CreatedAt        time.Time       `db:"created_at"`
}

// ListExportRows returns every transcription owned by ownerID, oldest first.
func (s *Store) ListExportRows(ctx context.Context, ownerID string) ([]ExportRow, error) {
	query, args, err := s.builder.
		Select("t.id", "a.original_filename", "a.duration_seconds", "t.cost_cents", "t.language", "t.text", "t.created_at").
		From("transcriptions t").
		LeftJoin("audio_files a ON a.id = t.audio_file_id").
		Where("t.owner_id = ?", ownerID).
		OrderBy("t.created_at").ToSql()
	if err != nil {
		return nil, fmt.Errorf("build export query: %w", err)
	}
	rows := []ExportRow{}
	if err := s.q(ctx).SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, mapError(err, "transcriptions", ownerID)
	}
	return rows, nil
}

package repository

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	apperrors "podbrief/internal/app/errors"
	"podbrief/internal/app/model"
)

const audioFileColumns = `id, owner_id, location_ref, original_filename, content_type, size_bytes,
	duration_seconds, status, error_reason, attempts, processing_started_at, created_at, updated_at`

// AudioFileFilter narrows ListAudioFiles.
type AudioFileFilter struct {
	OwnerID string
	Status  model.JobStatus
	Limit   uint64
	Offset  uint64
}

// CreateAudioFile inserts a new job row. CreatedAt/UpdatedAt are filled in when zero.
func (s *Store) CreateAudioFile(ctx context.Context, f *model.AudioFile) error {
	now := s.now()
	if f.CreatedAt.IsZero() {
		f.CreatedAt = now
	}
	f.UpdatedAt = now
	if f.Status == "" {
		f.Status = model.StatusPending
	}
	_, err := s.q(ctx).ExecContext(ctx, s.rebind(
		`INSERT INTO audio_files (id, owner_id, location_ref, original_filename, content_type, size_bytes,
			duration_seconds, status, error_reason, attempts, processing_started_at, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		f.ID, f.OwnerID, f.LocationRef, f.OriginalFilename, f.ContentType, f.SizeBytes,
		f.DurationSeconds, f.Status, f.ErrorReason, f.Attempts, f.ProcessingStartedAt, f.CreatedAt, f.UpdatedAt)
	return mapError(err, "audio file", f.ID)
}

// GetAudioFile loads a job by id.
func (s *Store) GetAudioFile(ctx context.Context, id string) (*model.AudioFile, error) {
	var f model.AudioFile
	err := s.q(ctx).GetContext(ctx, &f, s.rebind("SELECT "+audioFileColumns+" FROM audio_files WHERE id = ?"), id)
	if err != nil {
		return nil, mapError(err, "audio file", id)
	}
	return &f, nil
}

// GetAudioFileForOwner loads a job only if it belongs to ownerID.
func (s *Store) GetAudioFileForOwner(ctx context.Context, ownerID, id string) (*model.AudioFile, error) {
	var f model.AudioFile
	err := s.q(ctx).GetContext(ctx, &f, s.rebind(
		"SELECT "+audioFileColumns+" FROM audio_files WHERE id = ? AND owner_id = ?"), id, ownerID)
	if err != nil {
		return nil, mapError(err, "audio file", id)
	}
	return &f, nil
}

// ListAudioFiles returns one page of jobs, newest first, and the total count.
func (s *Store) ListAudioFiles(ctx context.Context, filter AudioFileFilter) ([]model.AudioFile, int, error) {
	where := sq.And{}
	if filter.OwnerID != "" {
		where = append(where, sq.Eq{"owner_id": filter.OwnerID})
	}
	if filter.Status != "" {
		where = append(where, sq.Eq{"status": filter.Status})
	}

	countSQL, countArgs, err := s.builder.Select("COUNT(*)").From("audio_files").Where(where).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build count query: %w", err)
	}
	var total int
	if err := s.q(ctx).GetContext(ctx, &total, countSQL, countArgs...); err != nil {
		return nil, 0, mapError(err, "audio files", filter.OwnerID)
	}

	limit := filter.Limit
	if limit == 0 {
		limit = 20
	}
	query, args, err := s.builder.Select(audioFileColumns).From("audio_files").Where(where).
		OrderBy("created_at DESC", "id").Limit(limit).Offset(filter.Offset).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list query: %w", err)
	}
	files := []model.AudioFile{}
	if err := s.q(ctx).SelectContext(ctx, &files, query, args...); err != nil {
		return nil, 0, mapError(err, "audio files", filter.OwnerID)
	}
	return files, total, nil
}

// ClaimAudioFile moves a job to processing. It succeeds for pending jobs and
// for processing jobs whose claim is older than stallCutoff; in every other
// state it returns false without touching the row.
func (s *Store) ClaimAudioFile(ctx context.Context, id string, stallCutoff time.Time) (bool, error) {
	now := s.now()
	res, err := s.q(ctx).ExecContext(ctx, s.rebind(
		`UPDATE audio_files
		 SET status = ?, processing_started_at = ?, attempts = attempts + 1, error_reason = NULL, updated_at = ?
		 WHERE id = ? AND (status = ? OR (status = ? AND processing_started_at < ?))`),
		model.StatusProcessing, now, now, id, model.StatusPending, model.StatusProcessing, stallCutoff.UTC())
	if err != nil {
		return false, mapError(err, "audio file", id)
	}
	n, err := rowsAffected(res)
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// CompleteAudioFile marks a processing job completed with its measured duration.
func (s *Store) CompleteAudioFile(ctx context.Context, id string, durationSeconds float64) error {
	res, err := s.q(ctx).ExecContext(ctx, s.rebind(
		`UPDATE audio_files SET status = ?, duration_seconds = ?, error_reason = NULL, updated_at = ?
		 WHERE id = ? AND status = ?`),
		model.StatusCompleted, durationSeconds, s.now(), id, model.StatusProcessing)
	if err != nil {
		return mapError(err, "audio file", id)
	}
	n, err := rowsAffected(res)
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("audio file %s is no longer processing: %w", id, apperrors.ErrConflict)
	}
	return nil
}

// FailAudioFile marks a processing job as error with a reason category.
func (s *Store) FailAudioFile(ctx context.Context, id string, reason string) error {
	res, err := s.q(ctx).ExecContext(ctx, s.rebind(
		`UPDATE audio_files SET status = ?, error_reason = ?, updated_at = ?
		 WHERE id = ? AND status = ?`),
		model.StatusError, reason, s.now(), id, model.StatusProcessing)
	if err != nil {
		return mapError(err, "audio file", id)
	}
	n, err := rowsAffected(res)
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("audio file %s is no longer processing: %w", id, apperrors.ErrConflict)
	}
	return nil
}

// ResetAudioFile puts an errored or stalled job back to pending so it can be
// claimed again. Completed and actively processing jobs are left alone.
func (s *Store) ResetAudioFile(ctx context.Context, ownerID, id string, stallCutoff time.Time) (bool, error) {
	res, err := s.q(ctx).ExecContext(ctx, s.rebind(
		`UPDATE audio_files SET status = ?, error_reason = NULL, processing_started_at = NULL, updated_at = ?
		 WHERE id = ? AND owner_id = ?
		   AND (status = ? OR status = ? OR (status = ? AND processing_started_at < ?))`),
		model.StatusPending, s.now(), id, ownerID,
		model.StatusError, model.StatusPending, model.StatusProcessing, stallCutoff.UTC())
	if err != nil {
		return false, mapError(err, "audio file", id)
	}
	n, err := rowsAffected(res)
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// ListStuckAudioFiles returns ids of pending jobs and of processing jobs
// claimed before stallCutoff, oldest first.
func (s *Store) ListStuckAudioFiles(ctx context.Context, stallCutoff time.Time, limit uint64) ([]string, error) {
	query, args, err := s.builder.Select("id").From("audio_files").
		Where(sq.Or{
			sq.Eq{"status": model.StatusPending},
			sq.And{sq.Eq{"status": model.StatusProcessing}, sq.Lt{"processing_started_at": stallCutoff.UTC()}},
		}).
		OrderBy("created_at", "id").Limit(limit).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build sweep query: %w", err)
	}
	ids := []string{}
	if err := s.q(ctx).SelectContext(ctx, &ids, query, args...); err != nil {
		return nil, mapError(err, "audio files", "stuck")
	}
	return ids, nil
}

// ListExpiredAudioFiles returns terminal jobs created before cutoff.
func (s *Store) ListExpiredAudioFiles(ctx context.Context, cutoff time.Time, limit uint64) ([]model.AudioFile, error) {
	query, args, err := s.builder.Select(audioFileColumns).From("audio_files").
		Where(sq.And{
			sq.Eq{"status": []model.JobStatus{model.StatusCompleted, model.StatusError}},
			sq.Lt{"created_at": cutoff.UTC()},
		}).
		OrderBy("created_at").Limit(limit).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build retention query: %w", err)
	}
	files := []model.AudioFile{}
	if err := s.q(ctx).SelectContext(ctx, &files, query, args...); err != nil {
		return nil, mapError(err, "audio files", "expired")
	}
	return files, nil
}

// ListLocationRefs returns the blob references of every job owned by ownerID.
func (s *Store) ListLocationRefs(ctx context.Context, ownerID string) ([]string, error) {
	refs := []string{}
	err := s.q(ctx).SelectContext(ctx, &refs, s.rebind(
		"SELECT location_ref FROM audio_files WHERE owner_id = ? AND location_ref <> ''"), ownerID)
	if err != nil {
		return nil, mapError(err, "audio files", ownerID)
	}
	return refs, nil
}

// DeleteAudioFile removes a job row. Its transcription, if any, is kept with a null audio_file_id.
func (s *Store) DeleteAudioFile(ctx context.Context, id string) error {
	_, err := s.q(ctx).ExecContext(ctx, s.rebind("DELETE FROM audio_files WHERE id = ?"), id)
	return mapError(err, "audio file", id)
}

package retention

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	apperrors "podbrief/internal/app/errors"
	"podbrief/internal/app/model"
	"podbrief/internal/app/storage/blob"
)

const batchSize = 100

// Store lists and removes expired jobs.
type Store interface {
	Now() time.Time
	ListExpiredAudioFiles(ctx context.Context, cutoff time.Time, limit uint64) ([]model.AudioFile, error)
	DeleteAudioFile(ctx context.Context, id string) error
}

// StagingPurger removes abandoned chunk sets.
type StagingPurger interface {
	PurgeStaging(ctx context.Context) (int, error)
}

// Report summarizes one janitor pass.
type Report struct {
	AudioFiles    int `json:"audio_files"`
	BlobFailures  int `json:"blob_failures"`
	StagedUploads int `json:"staged_uploads"`
}

// Janitor deletes finished jobs older than the retention window together
// with their stored audio. Transcriptions outlive their audio.
type Janitor struct {
	store     Store
	blobs     blob.Store
	staging   StagingPurger
	retention time.Duration
	logger    *zap.Logger
}

func NewJanitor(store Store, blobs blob.Store, staging StagingPurger, retentionDays int, logger *zap.Logger) *Janitor {
	return &Janitor{
		store:     store,
		blobs:     blobs,
		staging:   staging,
		retention: time.Duration(retentionDays) * 24 * time.Hour,
		logger:    logger.Named("retention"),
	}
}

// RunOnce performs a full pass. A zero retention keeps audio forever.
func (j *Janitor) RunOnce(ctx context.Context) (Report, error) {
	var report Report

	if j.staging != nil {
		n, err := j.staging.PurgeStaging(ctx)
		if err != nil {
			j.logger.Warn("staging purge failed", zap.Error(err))
		}
		report.StagedUploads = n
	}
	if j.retention <= 0 {
		return report, nil
	}

	cutoff := j.store.Now().Add(-j.retention)
	for {
		files, err := j.store.ListExpiredAudioFiles(ctx, cutoff, batchSize)
		if err != nil {
			return report, err
		}
		if len(files) == 0 {
			break
		}
		for _, f := range files {
			if err := ctx.Err(); err != nil {
				return report, err
			}
			if err := j.blobs.Delete(ctx, f.LocationRef); err != nil && !errors.Is(err, apperrors.ErrNotFound) {
				// keep the row so the next pass retries the blob
				report.BlobFailures++
				j.logger.Warn("failed to delete expired blob", zap.String("audio_file_id", f.ID), zap.Error(err))
				continue
			}
			if err := j.store.DeleteAudioFile(ctx, f.ID); err != nil {
				return report, err
			}
			report.AudioFiles++
		}
		if len(files) < batchSize || report.BlobFailures > 0 {
			break
		}
	}

	if report.AudioFiles > 0 || report.StagedUploads > 0 {
		j.logger.Info("retention pass complete",
			zap.Int("audio_files", report.AudioFiles),
			zap.Int("staged_uploads", report.StagedUploads),
			zap.Int("blob_failures", report.BlobFailures))
	}
	return report, nil
}

// Run repeats RunOnce every interval until ctx is cancelled.
func (j *Janitor) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		if _, err := j.RunOnce(ctx); err != nil && ctx.Err() == nil {
			j.logger.Error("retention pass failed", zap.Error(err))
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

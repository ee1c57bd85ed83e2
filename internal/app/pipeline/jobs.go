package pipeline

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	apperrors "podbrief/internal/app/errors"
	"podbrief/internal/app/events"
	"podbrief/internal/app/model"
)

var (
	// ErrJobCompleted is returned when retrying a job that already succeeded.
	ErrJobCompleted = apperrors.Wrap(apperrors.ErrConflict, "job already completed")
	// ErrJobInProgress is returned when retrying a job a worker currently holds.
	ErrJobInProgress = apperrors.Wrap(apperrors.ErrConflict, "job is being processed")
)

// JobStatus is the owner-facing view of a job.
type JobStatus struct {
	AudioFile     *model.AudioFile
	Transcription *model.Transcription
	Summary       *model.Summary
}

// GetJobStatus returns the job with its transcript and summary when present.
func (p *Processor) GetJobStatus(ctx context.Context, ownerID, audioFileID string) (*JobStatus, error) {
	job, err := p.store.GetAudioFileForOwner(ctx, ownerID, audioFileID)
	if err != nil {
		return nil, err
	}
	status := &JobStatus{AudioFile: job}
	if job.Status != model.StatusCompleted {
		return status, nil
	}

	t, err := p.store.GetTranscriptionByAudioFile(ctx, job.ID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return status, nil
		}
		return nil, fmt.Errorf("load transcription: %w", err)
	}
	status.Transcription = t

	sum, err := p.store.GetSummaryByTranscription(ctx, t.ID)
	switch {
	case err == nil:
		status.Summary = sum
	case !errors.Is(err, apperrors.ErrNotFound):
		return nil, fmt.Errorf("load summary: %w", err)
	}
	return status, nil
}

// RetryJob puts an errored (or stalled) job back to pending and dispatches it.
func (p *Processor) RetryJob(ctx context.Context, ownerID, audioFileID string) error {
	job, err := p.store.GetAudioFileForOwner(ctx, ownerID, audioFileID)
	if err != nil {
		return err
	}
	if job.Status == model.StatusCompleted {
		return ErrJobCompleted
	}

	reset, err := p.store.ResetAudioFile(ctx, ownerID, audioFileID, p.stallCutoff())
	if err != nil {
		return fmt.Errorf("reset audio file: %w", err)
	}
	if !reset {
		current, err := p.store.GetAudioFileForOwner(ctx, ownerID, audioFileID)
		if err == nil && current.Status == model.StatusCompleted {
			return ErrJobCompleted
		}
		return ErrJobInProgress
	}

	p.logger.Info("job reset for retry",
		zap.String("audio_file_id", audioFileID),
		zap.String("owner_id", ownerID),
		zap.String("previous_status", string(job.Status)),
	)
	p.publish(ownerID, events.JobEvent{AudioFileID: audioFileID, Status: string(model.StatusPending)})
	// A task still unwinding from the previous attempt leaves the row pending
	// for the sweep.
	if err := p.Dispatch(ctx, audioFileID); err != nil && !errors.Is(err, ErrAlreadyQueued) {
		return err
	}
	return nil
}

package services

import (
	"context"
	"fmt"

	"podbrief/internal/api/v1/dto"
	"podbrief/internal/app/model"
	"podbrief/internal/app/pipeline"
	"podbrief/internal/app/repository"
)

// JobLister pages through an owner's jobs.
type JobLister interface {
	ListAudioFiles(ctx context.Context, filter repository.AudioFileFilter) ([]model.AudioFile, int, error)
}

// JobController reads and retries jobs.
type JobController interface {
	GetJobStatus(ctx context.Context, ownerID, audioFileID string) (*pipeline.JobStatus, error)
	RetryJob(ctx context.Context, ownerID, audioFileID string) error
}

type jobService struct {
	lister JobLister
	jobs   JobController
}

func NewJobService(lister JobLister, jobs JobController) JobService {
	return &jobService{lister: lister, jobs: jobs}
}

func (s *jobService) ListJobs(ctx context.Context, ownerID string, q dto.ListJobsQuery) (*dto.JobListResponse, error) {
	files, total, err := s.lister.ListAudioFiles(ctx, repository.AudioFileFilter{
		OwnerID: ownerID,
		Status:  model.JobStatus(q.Status),
		Limit:   uint64(q.Limit),
		Offset:  uint64((q.Page - 1) * q.Limit),
	})
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}

	jobs := make([]dto.JobResponse, 0, len(files))
	for i := range files {
		jobs = append(jobs, dto.NewJobResponse(&files[i]))
	}
	return &dto.JobListResponse{Jobs: jobs, Pagination: dto.NewPagination(q.Page, q.Limit, total)}, nil
}

func (s *jobService) GetJob(ctx context.Context, ownerID, id string) (*dto.JobStatusResponse, error) {
	status, err := s.jobs.GetJobStatus(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	return &dto.JobStatusResponse{
		JobResponse: dto.NewJobResponse(status.AudioFile),
		Transcript:  dto.NewTranscriptResponse(status.Transcription),
		Summary:     dto.NewSummaryResponse(status.Summary),
	}, nil
}

func (s *jobService) RetryJob(ctx context.Context, ownerID, id string) (*dto.JobResponse, error) {
	if err := s.jobs.RetryJob(ctx, ownerID, id); err != nil {
		return nil, err
	}
	status, err := s.jobs.GetJobStatus(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	resp := dto.NewJobResponse(status.AudioFile)
	return &resp, nil
}

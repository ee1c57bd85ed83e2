package services

import (
	"context"
	"io"

	"podbrief/internal/api/v1/dto"
	"podbrief/internal/app/account"
	"podbrief/internal/app/billing"
	"podbrief/internal/app/ingest"
)

// UploadService accepts audio through the three ingest paths.
type UploadService interface {
	Ingest(ctx context.Context, ownerID string, src ingest.Source) (ingest.IngestResult, error)
	SaveChunk(ctx context.Context, ownerID string, meta ingest.ChunkMeta, body io.Reader) (ingest.ChunkAck, error)
	Complete(ctx context.Context, ownerID, uploadID string) (ingest.IngestResult, error)
	Cleanup(ctx context.Context, ownerID, uploadID string) error
}

// JobService exposes job state to owners.
type JobService interface {
	ListJobs(ctx context.Context, ownerID string, query dto.ListJobsQuery) (*dto.JobListResponse, error)
	GetJob(ctx context.Context, ownerID, id string) (*dto.JobStatusResponse, error)
	RetryJob(ctx context.Context, ownerID, id string) (*dto.JobResponse, error)
}

// ShareService manages public transcript links.
type ShareService interface {
	EnableSharing(ctx context.Context, ownerID, transcriptionID string) (*dto.ShareResponse, error)
	DisableSharing(ctx context.Context, ownerID, transcriptionID string) error
	GetShared(ctx context.Context, token string) (*dto.SharedTranscriptResponse, error)
}

// CreditService reports balances and estimates.
type CreditService interface {
	Balance(ctx context.Context, userID string) (*dto.BalanceResponse, error)
	Estimate(ctx context.Context, userID string, sizeBytes int64) (*dto.EstimateResponse, error)
	Purchases(ctx context.Context, userID string, limit int) ([]dto.PurchaseResponse, error)
}

// BillingService applies payments.
type BillingService interface {
	HandleWebhook(ctx context.Context, payload []byte, signature string) (billing.ApplyResult, error)
	VerifySession(ctx context.Context, userID, sessionID string) (billing.ApplyResult, error)
}

// AccountService manages the caller's account.
type AccountService interface {
	Profile(ctx context.Context, userID string) (*account.Profile, error)
	Delete(ctx context.Context, userID string) (account.DeletionReport, error)
}

// SweepService re-dispatches stuck jobs.
type SweepService interface {
	Sweep(ctx context.Context) (int, error)
}

package test

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"

	"podbrief/internal/api/v1/dto"
	"podbrief/internal/app/billing"
	"podbrief/internal/app/ingest"
)

type mockUploadService struct{ mock.Mock }

func (m *mockUploadService) Ingest(ctx context.Context, ownerID string, src ingest.Source) (ingest.IngestResult, error) {
	args := m.Called(ctx, ownerID, src)
	return args.Get(0).(ingest.IngestResult), args.Error(1)
}

func (m *mockUploadService) SaveChunk(ctx context.Context, ownerID string, meta ingest.ChunkMeta, body io.Reader) (ingest.ChunkAck, error) {
	data, _ := io.ReadAll(body)
	args := m.Called(ctx, ownerID, meta, data)
	return args.Get(0).(ingest.ChunkAck), args.Error(1)
}

func (m *mockUploadService) Complete(ctx context.Context, ownerID, uploadID string) (ingest.IngestResult, error) {
	args := m.Called(ctx, ownerID, uploadID)
	return args.Get(0).(ingest.IngestResult), args.Error(1)
}

func (m *mockUploadService) Cleanup(ctx context.Context, ownerID, uploadID string) error {
	return m.Called(ctx, ownerID, uploadID).Error(0)
}

type mockJobService struct{ mock.Mock }

func (m *mockJobService) ListJobs(ctx context.Context, ownerID string, q dto.ListJobsQuery) (*dto.JobListResponse, error) {
	args := m.Called(ctx, ownerID, q)
	resp, _ := args.Get(0).(*dto.JobListResponse)
	return resp, args.Error(1)
}

func (m *mockJobService) GetJob(ctx context.Context, ownerID, id string) (*dto.JobStatusResponse, error) {
	args := m.Called(ctx, ownerID, id)
	resp, _ := args.Get(0).(*dto.JobStatusResponse)
	return resp, args.Error(1)
}

func (m *mockJobService) RetryJob(ctx context.Context, ownerID, id string) (*dto.JobResponse, error) {
	args := m.Called(ctx, ownerID, id)
	resp, _ := args.Get(0).(*dto.JobResponse)
	return resp, args.Error(1)
}

type mockBillingService struct{ mock.Mock }

func (m *mockBillingService) HandleWebhook(ctx context.Context, payload []byte, signature string) (billing.ApplyResult, error) {
	args := m.Called(ctx, payload, signature)
	return args.Get(0).(billing.ApplyResult), args.Error(1)
}

func (m *mockBillingService) VerifySession(ctx context.Context, userID, sessionID string) (billing.ApplyResult, error) {
	args := m.Called(ctx, userID, sessionID)
	return args.Get(0).(billing.ApplyResult), args.Error(1)
}

type mockCreditService struct{ mock.Mock }

func (m *mockCreditService) Balance(ctx context.Context, userID string) (*dto.BalanceResponse, error) {
	args := m.Called(ctx, userID)
	resp, _ := args.Get(0).(*dto.BalanceResponse)
	return resp, args.Error(1)
}

func (m *mockCreditService) Estimate(ctx context.Context, userID string, size int64) (*dto.EstimateResponse, error) {
	args := m.Called(ctx, userID, size)
	resp, _ := args.Get(0).(*dto.EstimateResponse)
	return resp, args.Error(1)
}

func (m *mockCreditService) Purchases(ctx context.Context, userID string, limit int) ([]dto.PurchaseResponse, error) {
	args := m.Called(ctx, userID, limit)
	resp, _ := args.Get(0).([]dto.PurchaseResponse)
	return resp, args.Error(1)
}

package test

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"podbrief/internal/api/v1/handlers"
	"podbrief/internal/app/ingest"
	"podbrief/internal/app/model"
)

func TestUploadHandler_Direct(t *testing.T) {
	tests := []struct {
		name           string
		serviceErr     error
		expectedStatus int
		validateBody   func(*testing.T, *httptest.ResponseRecorder)
	}{
		{
			name:           "accepted",
			expectedStatus: http.StatusAccepted,
			validateBody: func(t *testing.T, rec *httptest.ResponseRecorder) {
				body := decode(t, rec)
				assert.Equal(t, "af-1", body["audio_file_id"])
				assert.Equal(t, "pending", body["status"])
			},
		},
		{
			name:           "too large",
			serviceErr:     ingest.ErrFileTooLarge,
			expectedStatus: http.StatusRequestEntityTooLarge,
			validateBody: func(t *testing.T, rec *httptest.ResponseRecorder) {
				assert.Equal(t, "file_too_large", decode(t, rec)["kind"])
			},
		},
		{
			name:           "unsupported type",
			serviceErr:     ingest.ErrUnsupportedType,
			expectedStatus: http.StatusUnsupportedMediaType,
		},
		{
			name:           "rate limited",
			serviceErr:     &ingest.RateLimitedError{RetryAfter: 90 * time.Second},
			expectedStatus: http.StatusTooManyRequests,
			validateBody: func(t *testing.T, rec *httptest.ResponseRecorder) {
				assert.Equal(t, "90", rec.Header().Get("Retry-After"))
				assert.Equal(t, "rate_limited", decode(t, rec)["kind"])
			},
		},
		{
			name: "insufficient credits",
			serviceErr: &ingest.InsufficientCreditsError{
				Required:  decimal.RequireFromString("3"),
				Balance:   decimal.RequireFromString("0.5"),
				Shortfall: decimal.RequireFromString("2.5"),
			},
			expectedStatus: http.StatusPaymentRequired,
			validateBody: func(t *testing.T, rec *httptest.ResponseRecorder) {
				details := decode(t, rec)["details"].(map[string]any)
				assert.Equal(t, "3.00", details["required"])
				assert.Equal(t, "2.50", details["shortfall"])
			},
		},
		{
			name:           "unexpected error is hidden",
			serviceErr:     fmt.Errorf("disk on fire"),
			expectedStatus: http.StatusInternalServerError,
			validateBody: func(t *testing.T, rec *httptest.ResponseRecorder) {
				assert.NotContains(t, rec.Body.String(), "disk on fire")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := setupTestRouter(t)
			svc := &mockUploadService{}
			svc.On("Ingest", mock.Anything, testUserID, mock.MatchedBy(func(src ingest.Source) bool {
				d, ok := src.(ingest.DirectSource)
				return ok && d.Filename == "episode.mp3" && d.ContentType == "audio/mpeg" && d.Size == 3
			})).Return(ingest.IngestResult{AudioFileID: "af-1", Status: model.StatusPending}, tt.serviceErr)

			router.POST("/uploads", handlers.NewUploadHandler(svc).Direct)
			req := multipartRequest(t, "/uploads", nil, formFile{"file", "episode.mp3", "audio/mpeg", []byte{1, 2, 3}})
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code, rec.Body.String())
			if tt.validateBody != nil {
				tt.validateBody(t, rec)
			}
			svc.AssertExpectations(t)
		})
	}
}

func TestUploadHandler_DirectWithoutFile(t *testing.T) {
	router := setupTestRouter(t)
	router.POST("/uploads", handlers.NewUploadHandler(&mockUploadService{}).Direct)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, multipartRequest(t, "/uploads", map[string]string{"x": "y"}))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUploadHandler_Chunk(t *testing.T) {
	router := setupTestRouter(t)
	svc := &mockUploadService{}
	uploadID := uuid.NewString()
	svc.On("SaveChunk", mock.Anything, testUserID, ingest.ChunkMeta{
		UploadID: uploadID, Index: 1, Total: 3, Filename: "big.mp3", ContentType: "audio/mpeg", TotalSize: 9,
	}, []byte("abc")).Return(ingest.ChunkAck{UploadID: uploadID, Index: 1, Received: 2, Total: 3}, nil)

	router.POST("/uploads/chunks", handlers.NewUploadHandler(svc).Chunk)
	req := multipartRequest(t, "/uploads/chunks", map[string]string{
		"upload_id": uploadID, "index": "1", "total": "3", "filename": "big.mp3",
		"content_type": "audio/mpeg", "total_size": "9",
	}, formFile{"chunk", "blob", "application/octet-stream", []byte("abc")})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, float64(2), decode(t, rec)["received"])
	svc.AssertExpectations(t)
}

func TestUploadHandler_ChunkValidation(t *testing.T) {
	router := setupTestRouter(t)
	router.POST("/uploads/chunks", handlers.NewUploadHandler(&mockUploadService{}).Chunk)

	for name, fields := range map[string]map[string]string{
		"bad upload id":   {"upload_id": "nope", "index": "0", "total": "1", "filename": "a.mp3"},
		"index past end":  {"upload_id": uuid.NewString(), "index": "2", "total": "2", "filename": "a.mp3"},
		"missing total":   {"upload_id": uuid.NewString(), "index": "0", "filename": "a.mp3"},
		"missing filename": {"upload_id": uuid.NewString(), "index": "0", "total": "1"},
	} {
		t.Run(name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, multipartRequest(t, "/uploads/chunks", fields, formFile{"chunk", "blob", "", []byte("x")}))
			assert.Equal(t, http.StatusUnprocessableEntity, rec.Code, rec.Body.String())
			assert.Equal(t, "validation", decode(t, rec)["kind"])
		})
	}
}

func TestUploadHandler_CompleteMissingChunks(t *testing.T) {
	router := setupTestRouter(t)
	svc := &mockUploadService{}
	svc.On("Complete", mock.Anything, testUserID, "up-1").
		Return(ingest.IngestResult{}, &ingest.MissingChunksError{UploadID: "up-1", Missing: []int{1, 4}})

	router.POST("/uploads/chunks/:uploadId/complete", handlers.NewUploadHandler(svc).Complete)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/uploads/chunks/up-1/complete", nil))

	assert.Equal(t, http.StatusConflict, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "missing_chunks", body["code"])
	assert.Equal(t, []any{float64(1), float64(4)}, body["details"].(map[string]any)["missing"])
}

func TestUploadHandler_Remote(t *testing.T) {
	router := setupTestRouter(t)
	svc := &mockUploadService{}
	svc.On("Ingest", mock.Anything, testUserID, ingest.NewRemoteSource("https://example.com/ep/1")).
		Return(ingest.IngestResult{AudioFileID: "af-2", Status: model.StatusPending}, nil)
	router.POST("/uploads/remote", handlers.NewUploadHandler(svc).Remote)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/uploads/remote", bytes.NewBufferString(`{"url":"https://example.com/ep/1"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusAccepted, rec.Code)

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/uploads/remote", bytes.NewBufferString(`{"url":"not a url"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	svc.AssertNumberOfCalls(t, "Ingest", 1)
}

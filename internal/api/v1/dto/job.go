package dto

import (
	"time"

	"podbrief/internal/api/errors"
	"podbrief/internal/app/model"
)

// ListJobsQuery filters GET /jobs.
type ListJobsQuery struct {
	Page   int    `form:"page,default=1"   binding:"min=1"`
	Limit  int    `form:"limit,default=20" binding:"min=1,max=100"`
	Status string `form:"status"           binding:"omitempty,oneof=pending processing completed error"`
}

// Validate performs domain-specific validation
func (q *ListJobsQuery) Validate() error {
	if q.Page > 10000 {
		return errors.NewValidationError("Invalid query", map[string]string{"page": "is too large"})
	}
	return nil
}

// JobResponse is one job in API responses.
type JobResponse struct {
	ID               string    `json:"id"`
	Status           string    `json:"status"`
	ErrorReason      string    `json:"error_reason,omitempty"`
	OriginalFilename string    `json:"original_filename"`
	ContentType      string    `json:"content_type"`
	SizeBytes        int64     `json:"size_bytes"`
	DurationSeconds  *float64  `json:"duration_seconds,omitempty"`
	Attempts         int       `json:"attempts"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// NewJobResponse converts an AudioFile.
func NewJobResponse(f *model.AudioFile) JobResponse {
	resp := JobResponse{
		ID:               f.ID,
		Status:           string(f.Status),
		OriginalFilename: f.OriginalFilename,
		ContentType:      f.ContentType,
		SizeBytes:        f.SizeBytes,
		Attempts:         f.Attempts,
		CreatedAt:        f.CreatedAt,
		UpdatedAt:        f.UpdatedAt,
	}
	if f.ErrorReason.Valid {
		resp.ErrorReason = f.ErrorReason.String
	}
	if f.DurationSeconds.Valid {
		d := f.DurationSeconds.Float64
		resp.DurationSeconds = &d
	}
	return resp
}

// PaginationResponse describes a page of results.
type PaginationResponse struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

func NewPagination(page, limit, total int) PaginationResponse {
	pages := 0
	if limit > 0 {
		pages = (total + limit - 1) / limit
	}
	return PaginationResponse{Page: page, Limit: limit, Total: total, TotalPages: pages}
}

// JobListResponse is returned by GET /jobs.
type JobListResponse struct {
	Jobs       []JobResponse      `json:"jobs"`
	Pagination PaginationResponse `json:"pagination"`
}

// TranscriptResponse is a transcript attached to a job.
type TranscriptResponse struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Language  string    `json:"language,omitempty"`
	Cost      string    `json:"cost"`
	IsPublic  bool      `json:"is_public"`
	CreatedAt time.Time `json:"created_at"`
}

func NewTranscriptResponse(t *model.Transcription) *TranscriptResponse {
	if t == nil {
		return nil
	}
	resp := &TranscriptResponse{
		ID:        t.ID,
		Text:      t.Text,
		Cost:      model.DecimalFromCents(t.CostCents).StringFixed(2),
		IsPublic:  t.IsPublic,
		CreatedAt: t.CreatedAt,
	}
	if t.Language.Valid {
		resp.Language = t.Language.String
	}
	return resp
}

// SummaryResponse is the structured summary of a transcript.
type SummaryResponse struct {
	ShortSummary string   `json:"short_summary"`
	LongSummary  string   `json:"long_summary"`
	BulletPoints []string `json:"bullet_points"`
	Keywords     []string `json:"keywords"`
	Sentiment    string   `json:"sentiment"`
	Language     string   `json:"language"`
}

func NewSummaryResponse(s *model.Summary) *SummaryResponse {
	if s == nil {
		return nil
	}
	return &SummaryResponse{
		ShortSummary: s.ShortSummary,
		LongSummary:  s.LongSummary,
		BulletPoints: nonNil(s.BulletPoints),
		Keywords:     nonNil(s.Keywords),
		Sentiment:    string(s.Sentiment),
		Language:     s.Language,
	}
}

func nonNil(l model.StringList) []string {
	if l == nil {
		return []string{}
	}
	return l
}

// JobStatusResponse is returned by GET /jobs/:id.
type JobStatusResponse struct {
	JobResponse
	Transcript *TranscriptResponse `json:"transcript,omitempty"`
	Summary    *SummaryResponse    `json:"summary,omitempty"`
}

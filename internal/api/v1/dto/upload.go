package dto

import (
	"strings"

	"podbrief/internal/api/errors"
)

// ChunkUploadForm carries the fields sent with each chunk.
type ChunkUploadForm struct {
	UploadID    string `form:"upload_id"    binding:"required,uuid"`
	Index       int    `form:"index"        binding:"min=0"`
	Total       int    `form:"total"        binding:"required,min=1"`
	Filename    string `form:"filename"     binding:"required,max=255"`
	ContentType string `form:"content_type" binding:"max=100"`
	TotalSize   int64  `form:"total_size"   binding:"min=0"`
}

// Validate performs domain-specific validation
func (f *ChunkUploadForm) Validate() error {
	if f.Index >= f.Total {
		return errors.NewValidationError("Invalid chunk", map[string]string{"index": "must be less than total"})
	}
	return nil
}

// RemoteUploadRequest is the body of POST /uploads/remote.
type RemoteUploadRequest struct {
	URL string `json:"url" binding:"required,url"`
}

// Validate performs domain-specific validation
func (r *RemoteUploadRequest) Validate() error {
	if !strings.HasPrefix(r.URL, "http://") && !strings.HasPrefix(r.URL, "https://") {
		return errors.NewValidationError("Invalid URL", map[string]string{"url": "must be http or https"})
	}
	return nil
}

// UploadResponse is returned once an upload is queued.
type UploadResponse struct {
	AudioFileID string `json:"audio_file_id"`
	Status      string `json:"status"`
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	SizeBytes   int64  `json:"size_bytes"`
}

// ChunkResponse acknowledges a chunk.
type ChunkResponse struct {
	UploadID string `json:"upload_id"`
	Index    int    `json:"index"`
	Received int    `json:"received"`
	Total    int    `json:"total"`
}

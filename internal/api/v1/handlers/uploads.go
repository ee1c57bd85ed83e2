package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"podbrief/internal/api/errors"
	"podbrief/internal/api/middleware"
	"podbrief/internal/api/v1/dto"
	"podbrief/internal/api/v1/services"
	"podbrief/internal/app/ingest"
)

// UploadHandler handles the three ingest paths.
type UploadHandler struct {
	service services.UploadService
}

func NewUploadHandler(service services.UploadService) *UploadHandler {
	return &UploadHandler{service: service}
}

func uploadResponse(r ingest.IngestResult) dto.UploadResponse {
	return dto.UploadResponse{
		AudioFileID: r.AudioFileID,
		Status:      string(r.Status),
		Filename:    r.Filename,
		ContentType: r.ContentType,
		SizeBytes:   r.SizeBytes,
	}
}

// Direct handles POST /api/v1/uploads
//
// @Summary Upload an audio file
// @Tags uploads
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Audio file"
// @Success 202 {object} dto.UploadResponse
// @Failure 402 {object} errors.APIError "Insufficient credits"
// @Failure 413 {object} errors.APIError "File too large"
// @Failure 415 {object} errors.APIError "Unsupported media type"
// @Failure 429 {object} errors.APIError "Upload rate limit reached"
// @Security BearerAuth
// @Router /uploads [post]
func (h *UploadHandler) Direct(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		middleware.HandleError(c, errors.NewBadRequestError("No file uploaded"))
		return
	}
	defer file.Close()

	src := ingest.NewDirectSource(header.Filename, header.Header.Get("Content-Type"), header.Size, file)
	result, err := h.service.Ingest(c.Request.Context(), middleware.UserID(c), src)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, uploadResponse(result))
}

// Chunk handles POST /api/v1/uploads/chunks
//
// @Summary Upload one chunk of a large file
// @Tags uploads
// @Accept multipart/form-data
// @Produce json
// @Param chunk formData file true "Chunk bytes"
// @Param upload_id formData string true "Client generated UUID"
// @Param index formData int true "Zero based chunk index"
// @Param total formData int true "Number of chunks"
// @Param filename formData string true "Original file name"
// @Param content_type formData string false "Declared MIME type"
// @Param total_size formData int false "Size of the whole file in bytes"
// @Success 200 {object} dto.ChunkResponse
// @Failure 402 {object} errors.APIError "Insufficient credits"
// @Failure 429 {object} errors.APIError "Upload rate limit reached"
// @Security BearerAuth
// @Router /uploads/chunks [post]
func (h *UploadHandler) Chunk(c *gin.Context) {
	var form dto.ChunkUploadForm
	if err := middleware.ValidateForm(c, &form); err != nil {
		middleware.HandleError(c, err)
		return
	}
	chunk, _, err := c.Request.FormFile("chunk")
	if err != nil {
		middleware.HandleError(c, errors.NewBadRequestError("No chunk uploaded"))
		return
	}
	defer chunk.Close()

	ack, err := h.service.SaveChunk(c.Request.Context(), middleware.UserID(c), ingest.ChunkMeta{
		UploadID:    form.UploadID,
		Index:       form.Index,
		Total:       form.Total,
		Filename:    form.Filename,
		ContentType: form.ContentType,
		TotalSize:   form.TotalSize,
	}, chunk)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ChunkResponse{UploadID: ack.UploadID, Index: ack.Index, Received: ack.Received, Total: ack.Total})
}

// Complete handles POST /api/v1/uploads/chunks/:uploadId/complete
//
// @Summary Assemble a chunked upload
// @Tags uploads
// @Produce json
// @Param uploadId path string true "Upload ID"
// @Success 202 {object} dto.UploadResponse
// @Failure 404 {object} errors.APIError "Unknown upload"
// @Failure 409 {object} errors.APIError "Missing chunks"
// @Security BearerAuth
// @Router /uploads/chunks/{uploadId}/complete [post]
func (h *UploadHandler) Complete(c *gin.Context) {
	result, err := h.service.Complete(c.Request.Context(), middleware.UserID(c), c.Param("uploadId"))
	if err != nil {
		middleware.HandleError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, uploadResponse(result))
}

// Cleanup handles DELETE /api/v1/uploads/chunks/:uploadId
//
// @Summary Discard a chunked upload
// @Tags uploads
// @Param uploadId path string true "Upload ID"
// @Success 204
// @Security BearerAuth
// @Router /uploads/chunks/{uploadId} [delete]
func (h *UploadHandler) Cleanup(c *gin.Context) {
	if err := h.service.Cleanup(c.Request.Context(), middleware.UserID(c), c.Param("uploadId")); err != nil {
		middleware.HandleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Remote handles POST /api/v1/uploads/remote
//
// @Summary Ingest audio from a link
// @Tags uploads
// @Accept json
// @Produce json
// @Param request body dto.RemoteUploadRequest true "Media or page URL"
// @Success 202 {object} dto.UploadResponse
// @Failure 400 {object} errors.APIError "No media found"
// @Security BearerAuth
// @Router /uploads/remote [post]
func (h *UploadHandler) Remote(c *gin.Context) {
	var req dto.RemoteUploadRequest
	if err := middleware.ValidateRequest(c, &req); err != nil {
		middleware.HandleError(c, err)
		return
	}
	result, err := h.service.Ingest(c.Request.Context(), middleware.UserID(c), ingest.NewRemoteSource(req.URL))
	if err != nil {
		middleware.HandleError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, uploadResponse(result))
}

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"podbrief/internal/api/middleware"
	"podbrief/internal/api/v1/services"
)

type ShareHandler struct {
	service services.ShareService
}

func NewShareHandler(service services.ShareService) *ShareHandler {
	return &ShareHandler{service: service}
}

// Enable handles POST /api/v1/transcriptions/:id/share
//
// @Summary Make a transcript public
// @Tags sharing
// @Produce json
// @Param id path string true "Transcription ID"
// @Success 200 {object} dto.ShareResponse
// @Security BearerAuth
// @Router /transcriptions/{id}/share [post]
func (h *ShareHandler) Enable(c *gin.Context) {
	resp, err := h.service.EnableSharing(c.Request.Context(), middleware.UserID(c), c.Param("id"))
	if err != nil {
		middleware.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Disable handles DELETE /api/v1/transcriptions/:id/share
//
// @Summary Stop sharing a transcript
// @Tags sharing
// @Param id path string true "Transcription ID"
// @Success 204
// @Security BearerAuth
// @Router /transcriptions/{id}/share [delete]
func (h *ShareHandler) Disable(c *gin.Context) {
	if err := h.service.DisableSharing(c.Request.Context(), middleware.UserID(c), c.Param("id")); err != nil {
		middleware.HandleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Shared handles GET /api/v1/shared/:token
//
// @Summary Read a public transcript
// @Tags sharing
// @Produce json
// @Param token path string true "Share token"
// @Success 200 {object} dto.SharedTranscriptResponse
// @Failure 404 {object} errors.APIError "Not shared"
// @Router /shared/{token} [get]
func (h *ShareHandler) Shared(c *gin.Context) {
	resp, err := h.service.GetShared(c.Request.Context(), c.Param("token"))
	if err != nil {
		middleware.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

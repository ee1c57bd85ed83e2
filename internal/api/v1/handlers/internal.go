package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"podbrief/internal/api/middleware"
	"podbrief/internal/api/v1/services"
)

type InternalHandler struct {
	sweeper services.SweepService
}

func NewInternalHandler(sweeper services.SweepService) *InternalHandler {
	return &InternalHandler{sweeper: sweeper}
}

// Sweep handles POST /api/v1/internal/sweep
//
// @Summary Re-dispatch stuck jobs
// @Tags internal
// @Produce json
// @Param X-Cron-Secret header string true "Shared secret"
// @Success 200 {object} map[string]int
// @Router /internal/sweep [post]
func (h *InternalHandler) Sweep(c *gin.Context) {
	n, err := h.sweeper.Sweep(c.Request.Context())
	if err != nil {
		middleware.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"dispatched": n})
}

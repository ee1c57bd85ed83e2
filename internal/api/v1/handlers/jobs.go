package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"podbrief/internal/api/middleware"
	"podbrief/internal/api/v1/dto"
	"podbrief/internal/api/v1/services"
)

// JobHandler handles job status endpoints
type JobHandler struct {
	service services.JobService
}

func NewJobHandler(service services.JobService) *JobHandler {
	return &JobHandler{service: service}
}

// List handles GET /api/v1/jobs
//
// @Summary List the caller's jobs
// @Tags jobs
// @Produce json
// @Param page query int false "Page number" default(1) minimum(1)
// @Param limit query int false "Items per page" default(20) minimum(1) maximum(100)
// @Param status query string false "Filter by status" Enums(pending,processing,completed,error)
// @Success 200 {object} dto.JobListResponse
// @Header 200 {string} X-Total-Count "Total number of jobs"
// @Security BearerAuth
// @Router /jobs [get]
func (h *JobHandler) List(c *gin.Context) {
	var query dto.ListJobsQuery
	if err := middleware.ValidateQuery(c, &query); err != nil {
		middleware.HandleError(c, err)
		return
	}

	response, err := h.service.ListJobs(c.Request.Context(), middleware.UserID(c), query)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}

	c.Header("X-Total-Count", strconv.Itoa(response.Pagination.Total))
	c.JSON(http.StatusOK, response)
}

// Get handles GET /api/v1/jobs/:id
//
// @Summary Job status with transcript and summary
// @Tags jobs
// @Produce json
// @Param id path string true "Job ID"
// @Success 200 {object} dto.JobStatusResponse
// @Failure 404 {object} errors.APIError "Job not found"
// @Security BearerAuth
// @Router /jobs/{id} [get]
func (h *JobHandler) Get(c *gin.Context) {
	response, err := h.service.GetJob(c.Request.Context(), middleware.UserID(c), c.Param("id"))
	if err != nil {
		middleware.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, response)
}

// Retry handles POST /api/v1/jobs/:id/retry
//
// @Summary Retry a failed job
// @Tags jobs
// @Produce json
// @Param id path string true "Job ID"
// @Success 202 {object} dto.JobResponse
// @Failure 409 {object} errors.APIError "Job completed or in progress"
// @Security BearerAuth
// @Router /jobs/{id}/retry [post]
func (h *JobHandler) Retry(c *gin.Context) {
	response, err := h.service.RetryJob(c.Request.Context(), middleware.UserID(c), c.Param("id"))
	if err != nil {
		middleware.HandleError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, response)
}

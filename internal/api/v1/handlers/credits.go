package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"podbrief/internal/api/middleware"
	"podbrief/internal/api/v1/dto"
	"podbrief/internal/api/v1/services"
)

const purchaseHistoryLimit = 50

type CreditHandler struct {
	service services.CreditService
}

func NewCreditHandler(service services.CreditService) *CreditHandler {
	return &CreditHandler{service: service}
}

// Balance handles GET /api/v1/credits
//
// @Summary Current credit balance
// @Tags credits
// @Produce json
// @Success 200 {object} dto.BalanceResponse
// @Security BearerAuth
// @Router /credits [get]
func (h *CreditHandler) Balance(c *gin.Context) {
	resp, err := h.service.Balance(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		middleware.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Estimate handles GET /api/v1/credits/estimate
//
// @Summary Estimate the cost of a file by size
// @Tags credits
// @Produce json
// @Param size query int true "File size in bytes"
// @Success 200 {object} dto.EstimateResponse
// @Security BearerAuth
// @Router /credits/estimate [get]
func (h *CreditHandler) Estimate(c *gin.Context) {
	var q dto.EstimateQuery
	if err := middleware.ValidateQuery(c, &q); err != nil {
		middleware.HandleError(c, err)
		return
	}
	resp, err := h.service.Estimate(c.Request.Context(), middleware.UserID(c), q.Size)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Purchases handles GET /api/v1/credits/purchases
//
// @Summary Purchase history
// @Tags credits
// @Produce json
// @Success 200 {array} dto.PurchaseResponse
// @Security BearerAuth
// @Router /credits/purchases [get]
func (h *CreditHandler) Purchases(c *gin.Context) {
	limit := purchaseHistoryLimit
	if v, err := strconv.Atoi(c.Query("limit")); err == nil && v > 0 && v < purchaseHistoryLimit {
		limit = v
	}
	resp, err := h.service.Purchases(c.Request.Context(), middleware.UserID(c), limit)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

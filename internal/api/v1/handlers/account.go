package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"podbrief/internal/api/middleware"
	"podbrief/internal/api/v1/services"
)

type AccountHandler struct {
	service services.AccountService
}

func NewAccountHandler(service services.AccountService) *AccountHandler {
	return &AccountHandler{service: service}
}

// Me handles GET /api/v1/account
//
// @Summary The caller's account
// @Tags account
// @Produce json
// @Success 200 {object} account.Profile
// @Security BearerAuth
// @Router /account [get]
func (h *AccountHandler) Me(c *gin.Context) {
	p, err := h.service.Profile(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		middleware.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// Delete handles DELETE /api/v1/account
//
// @Summary Delete the caller's account and all its data
// @Tags account
// @Produce json
// @Success 200 {object} account.DeletionReport
// @Security BearerAuth
// @Router /account [delete]
func (h *AccountHandler) Delete(c *gin.Context) {
	report, err := h.service.Delete(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		middleware.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

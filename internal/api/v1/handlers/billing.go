package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"podbrief/internal/api/errors"
	"podbrief/internal/api/middleware"
	"podbrief/internal/api/v1/dto"
	"podbrief/internal/api/v1/services"
	"podbrief/internal/app/billing"
)

// maxWebhookBytes caps webhook bodies; Stripe events are far smaller.
const maxWebhookBytes = 64 << 10

type BillingHandler struct {
	billing services.BillingService
	credits services.CreditService
}

func NewBillingHandler(billing services.BillingService, credits services.CreditService) *BillingHandler {
	return &BillingHandler{billing: billing, credits: credits}
}

// Webhook handles POST /api/v1/webhooks/payments
//
// @Summary Payment provider webhook
// @Tags billing
// @Accept json
// @Produce json
// @Param Stripe-Signature header string true "Webhook signature"
// @Success 200 {object} map[string]string
// @Failure 400 {object} errors.APIError "Malformed or unsigned event"
// @Router /webhooks/payments [post]
func (h *BillingHandler) Webhook(c *gin.Context) {
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBytes))
	if err != nil {
		middleware.HandleError(c, errors.NewBadRequestError("could not read body"))
		return
	}

	result, err := h.billing.HandleWebhook(c.Request.Context(), payload, c.GetHeader("Stripe-Signature"))
	if err != nil {
		if billing.IsRejected(err) {
			middleware.HandleError(c, errors.NewBadRequestError(err.Error()))
			return
		}
		// transient failures return 5xx so the provider redelivers
		middleware.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"result": string(result)})
}

// Verify handles POST /api/v1/billing/verify
//
// @Summary Verify a completed checkout session
// @Tags billing
// @Accept json
// @Produce json
// @Param request body dto.VerifySessionRequest true "Checkout session"
// @Success 200 {object} dto.VerifySessionResponse
// @Failure 403 {object} errors.APIError "Session belongs to another user"
// @Security BearerAuth
// @Router /billing/verify [post]
func (h *BillingHandler) Verify(c *gin.Context) {
	var req dto.VerifySessionRequest
	if err := middleware.ValidateRequest(c, &req); err != nil {
		middleware.HandleError(c, err)
		return
	}

	userID := middleware.UserID(c)
	result, err := h.billing.VerifySession(c.Request.Context(), userID, req.SessionID)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}
	balance, err := h.credits.Balance(c.Request.Context(), userID)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.VerifySessionResponse{Result: string(result), Balance: balance.Balance})
}

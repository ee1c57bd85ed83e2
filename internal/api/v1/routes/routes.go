package routes

import (
	"github.com/gin-gonic/gin"

	"podbrief/internal/api/v1/handlers"
	"podbrief/internal/api/v1/services"
)

// ServiceContainer holds all services needed by handlers
type ServiceContainer struct {
	UploadService  services.UploadService
	JobService     services.JobService
	ShareService   services.ShareService
	CreditService  services.CreditService
	BillingService services.BillingService
	AccountService services.AccountService
	SweepService   services.SweepService
	EventHandler   *handlers.EventHandler
}

// Guards are the access middlewares applied per route group.
type Guards struct {
	Auth gin.HandlerFunc
	Cron gin.HandlerFunc
}

// RegisterRoutes registers all v1 API routes
func RegisterRoutes(router *gin.RouterGroup, container *ServiceContainer, guards Guards) {
	shareHandler := handlers.NewShareHandler(container.ShareService)
	billingHandler := handlers.NewBillingHandler(container.BillingService, container.CreditService)

	// Unauthenticated
	router.GET("/shared/:token", shareHandler.Shared)
	router.POST("/webhooks/payments", billingHandler.Webhook)
	router.POST("/internal/sweep", guards.Cron, handlers.NewInternalHandler(container.SweepService).Sweep)

	authed := router.Group("", guards.Auth)

	uploadHandler := handlers.NewUploadHandler(container.UploadService)
	uploads := authed.Group("/uploads")
	{
		uploads.POST("", uploadHandler.Direct)
		uploads.POST("/remote", uploadHandler.Remote)
		uploads.POST("/chunks", uploadHandler.Chunk)
		uploads.POST("/chunks/:uploadId/complete", uploadHandler.Complete)
		uploads.DELETE("/chunks/:uploadId", uploadHandler.Cleanup)
	}

	jobHandler := handlers.NewJobHandler(container.JobService)
	jobs := authed.Group("/jobs")
	{
		jobs.GET("", jobHandler.List)
		jobs.GET("/:id", jobHandler.Get)
		jobs.POST("/:id/retry", jobHandler.Retry)
	}

	transcriptions := authed.Group("/transcriptions")
	{
		transcriptions.POST("/:id/share", shareHandler.Enable)
		transcriptions.DELETE("/:id/share", shareHandler.Disable)
	}

	creditHandler := handlers.NewCreditHandler(container.CreditService)
	credits := authed.Group("/credits")
	{
		credits.GET("", creditHandler.Balance)
		credits.GET("/estimate", creditHandler.Estimate)
		credits.GET("/purchases", creditHandler.Purchases)
	}

	authed.POST("/billing/verify", billingHandler.Verify)

	accountHandler := handlers.NewAccountHandler(container.AccountService)
	authed.GET("/account", accountHandler.Me)
	authed.DELETE("/account", accountHandler.Delete)

	if container.EventHandler != nil {
		authed.GET("/ws/jobs", container.EventHandler.Jobs)
	}
}

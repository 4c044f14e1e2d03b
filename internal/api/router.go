package api

import (
	"github.com/gin-gonic/gin"

	v1 "github.com/mailbeam/billing/internal/api/v1"
	"github.com/mailbeam/billing/internal/config"
	"github.com/mailbeam/billing/internal/logger"
	"github.com/mailbeam/billing/internal/rest/middleware"
	"github.com/mailbeam/billing/internal/types"
)

// Handlers groups the HTTP handlers wired into the router.
type Handlers struct {
	Health    *v1.HealthHandler
	Agreement *v1.AgreementHandler
	Billing   *v1.BillingHandler
}

// NewRouter builds the gin engine with the service routes.
func NewRouter(handlers Handlers, cfg *config.Configuration, logger *logger.Logger) *gin.Engine {
	if cfg.Deployment.Mode == types.ModeProd {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(
		gin.Recovery(),
		middleware.RequestIDMiddleware,
		middleware.ErrorHandler(),
	)

	router.GET("/health", handlers.Health.Health)

	group := router.Group("/v1")
	accounts := group.Group("/accounts/:account")
	{
		accounts.POST("/agreements", handlers.Agreement.CreateAgreement)
		accounts.GET("/billing-profile", handlers.Billing.GetBillingProfile)
		accounts.PUT("/billing-information", handlers.Billing.UpdateBillingInformation)
		accounts.GET("/payment-method", handlers.Billing.GetPaymentMethod)
		accounts.PUT("/payment-method", handlers.Billing.UpdatePaymentMethod)
		accounts.GET("/plans/current", handlers.Billing.GetCurrentPlan)
	}

	return router
}

package service

import (
	"github.com/mailbeam/billing/internal/alert"
	"github.com/mailbeam/billing/internal/config"
	"github.com/mailbeam/billing/internal/domain/billing"
	"github.com/mailbeam/billing/internal/domain/plan"
	"github.com/mailbeam/billing/internal/domain/promotion"
	"github.com/mailbeam/billing/internal/domain/subscriber"
	"github.com/mailbeam/billing/internal/email"
	"github.com/mailbeam/billing/internal/integration/crm"
	"github.com/mailbeam/billing/internal/integration/gateway"
	"github.com/mailbeam/billing/internal/integration/invoicing"
	"github.com/mailbeam/billing/internal/logger"
	"github.com/mailbeam/billing/internal/notification"
	"github.com/mailbeam/billing/internal/security"
	"github.com/mailbeam/billing/internal/sentry"
)

// ServiceParams bundles the dependencies shared by the services. Every
// service embeds it and picks what it needs.
type ServiceParams struct {
	Logger *logger.Logger
	Config *config.Configuration

	SubscriberRepo subscriber.Repository
	PlanRepo       plan.Repository
	PromotionRepo  promotion.Repository
	BillingRepo    billing.Repository

	EncryptionService security.EncryptionService

	GatewayClient   gateway.Client
	InvoicingClient invoicing.Client
	CRMClient       crm.Client

	AlertService          alert.Service
	EmailService          email.Service
	NotificationPublisher notification.Publisher

	Sentry *sentry.Service
}

// NewServiceParams assembles the shared service dependencies.
func NewServiceParams(
	logger *logger.Logger,
	cfg *config.Configuration,
	subscriberRepo subscriber.Repository,
	planRepo plan.Repository,
	promotionRepo promotion.Repository,
	billingRepo billing.Repository,
	encryptionService security.EncryptionService,
	gatewayClient gateway.Client,
	invoicingClient invoicing.Client,
	crmClient crm.Client,
	alertService alert.Service,
	emailService email.Service,
	notificationPublisher notification.Publisher,
	sentryService *sentry.Service,
) ServiceParams {
	return ServiceParams{
		Logger:                logger,
		Config:                cfg,
		SubscriberRepo:        subscriberRepo,
		PlanRepo:              planRepo,
		PromotionRepo:         promotionRepo,
		BillingRepo:           billingRepo,
		EncryptionService:     encryptionService,
		GatewayClient:         gatewayClient,
		InvoicingClient:       invoicingClient,
		CRMClient:             crmClient,
		AlertService:          alertService,
		EmailService:          emailService,
		NotificationPublisher: notificationPublisher,
		Sentry:                sentryService,
	}
}

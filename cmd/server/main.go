package main

import (
	"context"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"

	"github.com/mailbeam/billing/internal/alert"
	"github.com/mailbeam/billing/internal/api"
	v1 "github.com/mailbeam/billing/internal/api/v1"
	"github.com/mailbeam/billing/internal/cache"
	"github.com/mailbeam/billing/internal/config"
	"github.com/mailbeam/billing/internal/email"
	"github.com/mailbeam/billing/internal/httpclient"
	"github.com/mailbeam/billing/internal/integration/crm"
	"github.com/mailbeam/billing/internal/integration/gateway"
	"github.com/mailbeam/billing/internal/integration/invoicing"
	"github.com/mailbeam/billing/internal/logger"
	"github.com/mailbeam/billing/internal/notification"
	"github.com/mailbeam/billing/internal/postgres"
	"github.com/mailbeam/billing/internal/pubsub/memory"
	pubsubRouter "github.com/mailbeam/billing/internal/pubsub/router"
	"github.com/mailbeam/billing/internal/repository"
	"github.com/mailbeam/billing/internal/security"
	"github.com/mailbeam/billing/internal/sentry"
	"github.com/mailbeam/billing/internal/service"
	"github.com/mailbeam/billing/internal/validator"
)

func main() {
	app := fx.New(
		fx.Provide(
			config.NewConfig,
			logger.NewLogger,
			postgres.NewClient,
			cache.NewInMemoryCache,
			httpclient.NewDefaultClient,
			security.NewEncryptionService,
			newCRMSerializer,
			gateway.NewClient,
			invoicing.NewClient,
			crm.NewClient,
			alert.NewService,
			email.NewService,
			memory.NewPubSub,
			pubsubRouter.NewRouter,
			service.NewServiceParams,
			service.NewSyncService,
			service.NewAgreementService,
			service.NewBillingService,
			v1.NewHealthHandler,
			v1.NewAgreementHandler,
			v1.NewBillingHandler,
			newHandlers,
			api.NewRouter,
		),
		repository.Module(),
		sentry.Module(),
		notification.Module(),
		fx.Invoke(initValidator),
		fx.Invoke(startServer),
	)

	app.Run()
}

func initValidator() {
	validator.NewValidator()
}

func newCRMSerializer(cfg *config.Configuration) *crm.Serializer {
	return crm.NewSerializer(cfg.CRM.TimeFormat)
}

func newHandlers(
	health *v1.HealthHandler,
	agreement *v1.AgreementHandler,
	billing *v1.BillingHandler,
) api.Handlers {
	return api.Handlers{
		Health:    health,
		Agreement: agreement,
		Billing:   billing,
	}
}

func startServer(
	lc fx.Lifecycle,
	engine *gin.Engine,
	msgRouter *pubsubRouter.Router,
	db *postgres.Client,
	cfg *config.Configuration,
	log *logger.Logger,
) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			// The router runs for the lifetime of the process; Close
			// drains it on shutdown
			go func() {
				if err := msgRouter.Run(context.Background()); err != nil {
					log.Errorw("notification router stopped", "error", err)
				}
			}()

			go func() {
				log.Infow("starting server", "address", cfg.Server.Address)
				if err := engine.Run(cfg.Server.Address); err != nil {
					log.Fatalf("server stopped: %v", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			// Drain in-flight notification dispatches before closing
			// the database
			if err := msgRouter.Close(); err != nil {
				log.Errorw("failed to close notification router", "error", err)
			}
			return db.Close()
		},
	})
}

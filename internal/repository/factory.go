package repository

import (
	"go.uber.org/fx"

	pg "github.com/mailbeam/billing/internal/repository/postgres"
)

// Module provides the postgres-backed domain repositories
func Module() fx.Option {
	return fx.Options(
		fx.Provide(
			pg.NewSubscriberRepository,
			pg.NewPlanRepository,
			pg.NewPromotionRepository,
			pg.NewBillingRepository,
		),
	)
}

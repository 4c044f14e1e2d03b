package postgres

import (
	"context"
	"database/sql"

	"github.com/mailbeam/billing/internal/cache"
	"github.com/mailbeam/billing/internal/domain/plan"
	ierr "github.com/mailbeam/billing/internal/errors"
	"github.com/mailbeam/billing/internal/logger"
	"github.com/mailbeam/billing/internal/postgres"
)

type planRepository struct {
	client *postgres.Client
	logger *logger.Logger
	cache  cache.Cache
}

// NewPlanRepository creates the postgres plan repository. Offers change
// rarely, so lookups go through the in-memory cache.
func NewPlanRepository(client *postgres.Client, logger *logger.Logger, cache cache.Cache) plan.Repository {
	return &planRepository{client: client, logger: logger, cache: cache}
}

func (r *planRepository) GetByID(ctx context.Context, id string) (*plan.Offer, error) {
	key := cache.GenerateKey(cache.PrefixPlan, id)
	if cached, found := r.cache.Get(ctx, key); found {
		if offer, ok := cached.(*plan.Offer); ok {
			return offer, nil
		}
	}

	const query = `
		SELECT id, plan_type, fee, email_qty, subscriber_qty, credit_qty,
		       status, created_at, updated_at, created_by, updated_by
		FROM plans
		WHERE id = $1 AND status = 'published'`

	var offer plan.Offer
	if err := r.client.DB.GetContext(ctx, &offer, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, ierr.NewError("plan not found").
				WithHint("The requested plan does not exist").
				WithReportableDetails(map[string]any{
					"plan_id": id,
				}).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to load plan").
			Mark(ierr.ErrDatabase)
	}

	r.cache.Set(ctx, key, &offer, cache.DefaultExpiration)
	return &offer, nil
}

package postgres

import (
	"context"
	"database/sql"

	"github.com/mailbeam/billing/internal/domain/promotion"
	ierr "github.com/mailbeam/billing/internal/errors"
	"github.com/mailbeam/billing/internal/logger"
	"github.com/mailbeam/billing/internal/postgres"
)

type promotionRepository struct {
	client *postgres.Client
	logger *logger.Logger
}

// NewPromotionRepository creates the postgres promotion repository.
// Promotions are not cached; TimesUsed must stay current.
func NewPromotionRepository(client *postgres.Client, logger *logger.Logger) promotion.Repository {
	return &promotionRepository{client: client, logger: logger}
}

func (r *promotionRepository) GetValidByCode(ctx context.Context, code string, planID string) (*promotion.Promotion, error) {
	const query = `
		SELECT id, code, times_used, plan_id, extra_credits, discount_percentage,
		       status, created_at, updated_at, created_by, updated_by
		FROM promotions
		WHERE code = $1 AND status = 'published'
		  AND (plan_id IS NULL OR plan_id = $2)`

	var promo promotion.Promotion
	if err := r.client.DB.GetContext(ctx, &promo, query, code, planID); err != nil {
		if err == sql.ErrNoRows {
			return nil, ierr.NewError("promotion not found").
				WithHint("The promo code is not valid").
				WithReportableDetails(map[string]any{
					"promocode": code,
					"plan_id":   planID,
				}).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to load promotion").
			Mark(ierr.ErrDatabase)
	}
	return &promo, nil
}

func (r *promotionRepository) IncrementUsage(ctx context.Context, id string) error {
	const query = `
		UPDATE promotions
		SET times_used = times_used + 1, updated_at = NOW()
		WHERE id = $1`

	result, err := r.client.DB.ExecContext(ctx, query, id)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to increment promotion usage").
			Mark(ierr.ErrDatabase)
	}
	if rows, err := result.RowsAffected(); err == nil && rows == 0 {
		return ierr.NewError("promotion not found").
			WithHint("The promotion no longer exists").
			Mark(ierr.ErrNotFound)
	}
	return nil
}

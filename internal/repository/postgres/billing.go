package postgres

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"

	"github.com/mailbeam/billing/internal/cache"
	"github.com/mailbeam/billing/internal/domain/billing"
	ierr "github.com/mailbeam/billing/internal/errors"
	"github.com/mailbeam/billing/internal/logger"
	"github.com/mailbeam/billing/internal/postgres"
)

type billingRepository struct {
	client *postgres.Client
	logger *logger.Logger
	cache  cache.Cache
}

// NewBillingRepository creates the postgres billing ledger repository.
func NewBillingRepository(client *postgres.Client, logger *logger.Logger, cache cache.Cache) billing.Repository {
	return &billingRepository{client: client, logger: logger, cache: cache}
}

func (r *billingRepository) CreateAccountingEntries(ctx context.Context, entries []*billing.AccountingEntry) error {
	const query = `
		INSERT INTO accounting_entries (
			id, invoice_id, subscriber_id, entry_type, amount,
			payment_method, authorization_token, date,
			status, created_at, updated_at, created_by, updated_by
		) VALUES (
			:id, :invoice_id, :subscriber_id, :entry_type, :amount,
			:payment_method, :authorization_token, :date,
			:status, :created_at, :updated_at, :created_by, :updated_by
		)`

	// Both rows of a charge land together or not at all
	return r.client.WithTx(ctx, func(tx *sqlx.Tx) error {
		for _, entry := range entries {
			if _, err := tx.NamedExecContext(ctx, query, entry); err != nil {
				return ierr.WithError(err).
					WithHint("Failed to write accounting entry").
					Mark(ierr.ErrDatabase)
			}
		}
		return nil
	})
}

func (r *billingRepository) CreateBillingCredit(ctx context.Context, credit *billing.Credit) error {
	const query = `
		INSERT INTO billing_credits (
			id, subscriber_id, plan_id, plan_type, payment_method,
			promotion_id, discount_id, invoice_id, authorization_token, total,
			status, created_at, updated_at, created_by, updated_by
		) VALUES (
			:id, :subscriber_id, :plan_id, :plan_type, :payment_method,
			:promotion_id, :discount_id, :invoice_id, :authorization_token, :total,
			:status, :created_at, :updated_at, :created_by, :updated_by
		)`

	if _, err := r.client.DB.NamedExecContext(ctx, query, credit); err != nil {
		return ierr.WithError(err).
			WithHint("Failed to write billing credit").
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *billingRepository) GetBillingCredit(ctx context.Context, id string) (*billing.Credit, error) {
	const query = `
		SELECT id, subscriber_id, plan_id, plan_type, payment_method,
		       promotion_id, discount_id, invoice_id, authorization_token, total,
		       status, created_at, updated_at, created_by, updated_by
		FROM billing_credits
		WHERE id = $1`

	var credit billing.Credit
	if err := r.client.DB.GetContext(ctx, &credit, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, ierr.NewError("billing credit not found").
				WithHint("The billing credit does not exist").
				WithReportableDetails(map[string]any{
					"billing_credit_id": id,
				}).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to load billing credit").
			Mark(ierr.ErrDatabase)
	}
	return &credit, nil
}

func (r *billingRepository) CreateMovementCredit(ctx context.Context, movement *billing.MovementCredit) error {
	const query = `
		INSERT INTO movement_credits (
			id, subscriber_id, billing_credit_id, partial_balance, date,
			status, created_at, updated_at, created_by, updated_by
		) VALUES (
			:id, :subscriber_id, :billing_credit_id, :partial_balance, :date,
			:status, :created_at, :updated_at, :created_by, :updated_by
		)`

	if _, err := r.client.DB.NamedExecContext(ctx, query, movement); err != nil {
		return ierr.WithError(err).
			WithHint("Failed to write movement credit").
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *billingRepository) ActivateStandBySubscribers(ctx context.Context, subscriberID string) (int, error) {
	const query = `
		UPDATE contacts
		SET stand_by = FALSE, updated_at = NOW()
		WHERE subscriber_id = $1 AND stand_by = TRUE`

	result, err := r.client.DB.ExecContext(ctx, query, subscriberID)
	if err != nil {
		return 0, ierr.WithError(err).
			WithHint("Failed to activate stand-by contacts").
			Mark(ierr.ErrDatabase)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return 0, ierr.WithError(err).
			WithHint("Failed to activate stand-by contacts").
			Mark(ierr.ErrDatabase)
	}
	return int(rows), nil
}

func (r *billingRepository) GetDiscountInfo(ctx context.Context, discountID string) (*billing.DiscountInfo, error) {
	key := cache.GenerateKey(cache.PrefixDiscount, discountID)
	if cached, found := r.cache.Get(ctx, key); found {
		if info, ok := cached.(*billing.DiscountInfo); ok {
			return info, nil
		}
	}

	const query = `
		SELECT id, description, percentage, months_amount
		FROM discounts
		WHERE id = $1`

	var info billing.DiscountInfo
	if err := r.client.DB.GetContext(ctx, &info, query, discountID); err != nil {
		if err == sql.ErrNoRows {
			return nil, ierr.NewError("discount not found").
				WithHint("The discount does not exist").
				WithReportableDetails(map[string]any{
					"discount_id": discountID,
				}).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to load discount").
			Mark(ierr.ErrDatabase)
	}

	r.cache.Set(ctx, key, &info, cache.DefaultExpiration)
	return &info, nil
}

package postgres

import (
	"context"
	"database/sql"

	"github.com/mailbeam/billing/internal/domain/subscriber"
	ierr "github.com/mailbeam/billing/internal/errors"
	"github.com/mailbeam/billing/internal/logger"
	"github.com/mailbeam/billing/internal/postgres"
)

type subscriberRepository struct {
	client *postgres.Client
	logger *logger.Logger
}

// NewSubscriberRepository creates the postgres subscriber repository.
func NewSubscriberRepository(client *postgres.Client, logger *logger.Logger) subscriber.Repository {
	return &subscriberRepository{client: client, logger: logger}
}

func (r *subscriberRepository) GetByAccountName(ctx context.Context, accountName string) (*subscriber.Subscriber, error) {
	const query = `
		SELECT id, account_name, email, first_name, language,
		       payment_method, billing_country, address, city, zip_code, province,
		       plan_type, current_plan_id,
		       current_billing_credit_id, available_credit, upgrade_pending,
		       first_payment_at, upgraded_at, max_subscribers, origin_inbound,
		       responsible_billing,
		       status, created_at, updated_at, created_by, updated_by
		FROM subscribers
		WHERE account_name = $1 AND status = 'published'`

	var sub subscriber.Subscriber
	if err := r.client.DB.GetContext(ctx, &sub, query, accountName); err != nil {
		if err == sql.ErrNoRows {
			return nil, ierr.NewError("subscriber not found").
				WithHint("No billing profile exists for this account").
				WithReportableDetails(map[string]any{
					"account_name": accountName,
				}).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to load subscriber").
			Mark(ierr.ErrDatabase)
	}
	return &sub, nil
}

func (r *subscriberRepository) UpdateBillingState(ctx context.Context, s *subscriber.Subscriber) error {
	const query = `
		UPDATE subscribers SET
			plan_type = :plan_type,
			current_plan_id = :current_plan_id,
			current_billing_credit_id = :current_billing_credit_id,
			available_credit = :available_credit,
			upgrade_pending = :upgrade_pending,
			first_payment_at = :first_payment_at,
			upgraded_at = :upgraded_at,
			max_subscribers = :max_subscribers,
			origin_inbound = :origin_inbound,
			updated_at = :updated_at,
			updated_by = :updated_by
		WHERE id = :id`

	result, err := r.client.DB.NamedExecContext(ctx, query, s)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to update subscriber billing state").
			Mark(ierr.ErrDatabase)
	}
	if rows, err := result.RowsAffected(); err == nil && rows == 0 {
		return ierr.NewError("subscriber not found").
			WithHint("No billing profile exists for this account").
			Mark(ierr.ErrNotFound)
	}
	return nil
}

func (r *subscriberRepository) UpdateBillingInformation(ctx context.Context, s *subscriber.Subscriber) error {
	const query = `
		UPDATE subscribers SET
			billing_country = :billing_country,
			address = :address,
			city = :city,
			zip_code = :zip_code,
			province = :province,
			updated_at = :updated_at,
			updated_by = :updated_by
		WHERE id = :id`

	result, err := r.client.DB.NamedExecContext(ctx, query, s)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to update billing information").
			Mark(ierr.ErrDatabase)
	}
	if rows, err := result.RowsAffected(); err == nil && rows == 0 {
		return ierr.NewError("subscriber not found").
			WithHint("No billing profile exists for this account").
			Mark(ierr.ErrNotFound)
	}
	return nil
}

func (r *subscriberRepository) UpdatePaymentMethod(ctx context.Context, s *subscriber.Subscriber) error {
	const query = `
		UPDATE subscribers SET
			payment_method = :payment_method,
			updated_at = :updated_at,
			updated_by = :updated_by
		WHERE id = :id`

	result, err := r.client.DB.NamedExecContext(ctx, query, s)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to update payment method").
			Mark(ierr.ErrDatabase)
	}
	if rows, err := result.RowsAffected(); err == nil && rows == 0 {
		return ierr.NewError("subscriber not found").
			WithHint("No billing profile exists for this account").
			Mark(ierr.ErrNotFound)
	}
	return nil
}

func (r *subscriberRepository) CreatePaymentInstrument(ctx context.Context, instrument *subscriber.PaymentInstrument) error {
	const query = `
		INSERT INTO payment_instruments (
			id, subscriber_id, number, holder_name, expiry_month,
			expiry_year, last_four, brand,
			status, created_at, updated_at, created_by, updated_by
		) VALUES (
			:id, :subscriber_id, :number, :holder_name, :expiry_month,
			:expiry_year, :last_four, :brand,
			:status, :created_at, :updated_at, :created_by, :updated_by
		)`

	if _, err := r.client.DB.NamedExecContext(ctx, query, instrument); err != nil {
		return ierr.WithError(err).
			WithHint("Failed to store payment instrument").
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *subscriberRepository) GetPaymentInstrument(ctx context.Context, subscriberID string) (*subscriber.PaymentInstrument, error) {
	const query = `
		SELECT id, subscriber_id, number, holder_name, expiry_month,
		       expiry_year, last_four, brand,
		       status, created_at, updated_at, created_by, updated_by
		FROM payment_instruments
		WHERE subscriber_id = $1 AND status = 'published'
		ORDER BY created_at DESC
		LIMIT 1`

	var instrument subscriber.PaymentInstrument
	if err := r.client.DB.GetContext(ctx, &instrument, query, subscriberID); err != nil {
		if err == sql.ErrNoRows {
			return nil, ierr.NewError("payment instrument not found").
				WithHint("No payment instrument is stored for this account").
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to load payment instrument").
			Mark(ierr.ErrDatabase)
	}
	return &instrument, nil
}

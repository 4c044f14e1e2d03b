package dto

import (
	"time"

	"github.com/shopspring/decimal"

	ierr "github.com/mailbeam/billing/internal/errors"
	"github.com/mailbeam/billing/internal/types"
	"github.com/mailbeam/billing/internal/validator"
)

// BillingProfileResponse is the read model of a subscriber's billing state
type BillingProfileResponse struct {
	AccountName        string                   `json:"account_name"`
	Email              string                   `json:"email"`
	PaymentMethod      types.PaymentMethod      `json:"payment_method"`
	BillingCountry     types.Country            `json:"billing_country"`
	Address            *string                  `json:"address,omitempty"`
	City               *string                  `json:"city,omitempty"`
	ZipCode            *string                  `json:"zip_code,omitempty"`
	Province           *string                  `json:"province,omitempty"`
	PlanType           types.PlanType           `json:"plan_type"`
	ResponsibleBilling types.ResponsibleBilling `json:"responsible_billing"`
	AvailableCredit    decimal.Decimal          `json:"available_credit"`
	UpgradePending     bool                     `json:"upgrade_pending"`
	MaxSubscribers     *int                     `json:"max_subscribers,omitempty"`
	UpgradedAt         *time.Time               `json:"upgraded_at,omitempty"`
}

// UpdateBillingInformationRequest is the body of
// PUT /v1/accounts/:account/billing-information
type UpdateBillingInformationRequest struct {
	BillingCountry string `json:"billing_country" validate:"required,len=2,alpha"`
	Address        string `json:"address,omitempty"`
	City           string `json:"city,omitempty"`
	ZipCode        string `json:"zip_code,omitempty"`
	Province       string `json:"province,omitempty"`
}

func (r *UpdateBillingInformationRequest) Validate() error {
	return validator.ValidateRequest(r)
}

// PaymentMethodResponse is the registered payment method of an account.
// Card fields are present only when a stored instrument exists.
type PaymentMethodResponse struct {
	PaymentMethod types.PaymentMethod `json:"payment_method"`
	LastFour      string              `json:"last_four,omitempty"`
	Brand         string              `json:"brand,omitempty"`
	ExpiryMonth   int                 `json:"expiry_month,omitempty"`
	ExpiryYear    int                 `json:"expiry_year,omitempty"`
}

// CardRequest is a new card submitted with a payment method change.
// The number and holder are encrypted before they are stored.
type CardRequest struct {
	Number      string `json:"number" validate:"required,min=12,max=19,numeric"`
	HolderName  string `json:"holder_name" validate:"required"`
	ExpiryMonth int    `json:"expiry_month" validate:"required,min=1,max=12"`
	ExpiryYear  int    `json:"expiry_year" validate:"required,min=2000"`
	Brand       string `json:"brand,omitempty"`
}

// UpdatePaymentMethodRequest is the body of
// PUT /v1/accounts/:account/payment-method
type UpdatePaymentMethodRequest struct {
	PaymentMethod types.PaymentMethod `json:"payment_method" validate:"required"`
	Card          *CardRequest        `json:"card,omitempty"`
}

func (r *UpdatePaymentMethodRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}
	if err := r.PaymentMethod.Validate(); err != nil {
		return ierr.WithError(err).
			WithHint("The payment method is not supported").
			WithReportableDetails(map[string]any{
				"payment_method": r.PaymentMethod.String(),
			}).
			Mark(ierr.ErrValidation)
	}
	if r.PaymentMethod == types.PaymentMethodCard && r.Card == nil {
		return ierr.NewError("card details are required").
			WithHint("Card details are required for the card payment method").
			Mark(ierr.ErrValidation)
	}
	return nil
}

// CurrentPlanResponse is the subscriber's active plan
type CurrentPlanResponse struct {
	PlanID        string          `json:"plan_id"`
	PlanType      types.PlanType  `json:"plan_type"`
	Fee           decimal.Decimal `json:"fee"`
	EmailQty      *int            `json:"email_qty,omitempty"`
	SubscriberQty *int            `json:"subscriber_qty,omitempty"`
	CreditQty     *int            `json:"credit_qty,omitempty"`
}

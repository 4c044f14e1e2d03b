package subscriber

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/mailbeam/billing/internal/types"
)

// Subscriber is the billing profile of an account on the platform.
type Subscriber struct {
	ID          string `db:"id"`
	AccountName string `db:"account_name"`
	Email       string `db:"email"`
	FirstName   string `db:"first_name"`
	Language    string `db:"language"`

	// PaymentMethod is the method registered ahead of the upgrade.
	PaymentMethod  types.PaymentMethod `db:"payment_method"`
	BillingCountry types.Country       `db:"billing_country"`

	Address  *string `db:"address"`
	City     *string `db:"city"`
	ZipCode  *string `db:"zip_code"`
	Province *string `db:"province"`

	// PlanType is the current plan tier; PlanTypeFree means no paid plan.
	PlanType      types.PlanType `db:"plan_type"`
	CurrentPlanID *string        `db:"current_plan_id"`

	CurrentBillingCreditID *string         `db:"current_billing_credit_id"`
	AvailableCredit        decimal.Decimal `db:"available_credit"`

	UpgradePending bool       `db:"upgrade_pending"`
	FirstPaymentAt *time.Time `db:"first_payment_at"`
	UpgradedAt     *time.Time `db:"upgraded_at"`

	MaxSubscribers *int    `db:"max_subscribers"`
	OriginInbound  *string `db:"origin_inbound"`

	ResponsibleBilling types.ResponsibleBilling `db:"responsible_billing"`

	types.BaseModel
}

// HasPaidPlan reports whether the subscriber already holds a paid plan.
func (s *Subscriber) HasPaidPlan() bool {
	return s.PlanType != types.PlanTypeFree
}

// PaymentInstrument is a stored payment instrument. Number and HolderName
// are encrypted at rest; they are decrypted only in memory for the charge
// and the invoicing push.
type PaymentInstrument struct {
	ID           string `db:"id"`
	SubscriberID string `db:"subscriber_id"`

	Number     string `db:"number"`
	HolderName string `db:"holder_name"`

	ExpiryMonth int    `db:"expiry_month"`
	ExpiryYear  int    `db:"expiry_year"`
	LastFour    string `db:"last_four"`
	Brand       string `db:"brand"`

	types.BaseModel
}

// Card is a decrypted payment instrument. It lives only on the stack of a
// single agreement run and is never persisted or logged.
type Card struct {
	Number      string
	HolderName  string
	ExpiryMonth int
	ExpiryYear  int
	Brand       string
}

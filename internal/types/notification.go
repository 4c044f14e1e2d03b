package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// AgreementCompletedEvent is the message published to the notifications
// topic once an agreement creation run has passed its commit point. The
// handler consumes it asynchronously from the request path.
type AgreementCompletedEvent struct {
	ID              string          `json:"id"`
	AccountName     string          `json:"account_name"`
	SubscriberID    string          `json:"subscriber_id"`
	BillingCreditID string          `json:"billing_credit_id"`
	PlanID          string          `json:"plan_id"`
	PlanType        PlanType        `json:"plan_type"`
	PaymentMethod   PaymentMethod   `json:"payment_method"`
	PromoCode       string          `json:"promo_code,omitempty"`
	DiscountID      string          `json:"discount_id,omitempty"`
	UpgradePending  bool            `json:"upgrade_pending"`
	PartialBalance  decimal.Decimal `json:"partial_balance"`
	Timestamp       time.Time       `json:"timestamp"`
}

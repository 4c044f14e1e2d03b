package plan

import (
	"github.com/shopspring/decimal"

	"github.com/mailbeam/billing/internal/types"
)

// Offer is a purchasable plan.
type Offer struct {
	ID       string          `db:"id"`
	PlanType types.PlanType  `db:"plan_type"`
	Fee      decimal.Decimal `db:"fee"`

	// EmailQty applies to monthly plans, SubscriberQty to subscriber
	// limited plans, CreditQty to individual credit packs.
	EmailQty      *int `db:"email_qty"`
	SubscriberQty *int `db:"subscriber_qty"`
	CreditQty     *int `db:"credit_qty"`

	types.BaseModel
}

package promotion

import (
	"github.com/shopspring/decimal"

	"github.com/mailbeam/billing/internal/types"
)

// Promotion is a promo code applicable to an upgrade. ExtraCredits and
// DiscountPercentage are mutually exclusive by convention.
type Promotion struct {
	ID        string `db:"id"`
	Code      string `db:"code"`
	TimesUsed int    `db:"times_used"`

	// PlanID restricts the promotion to a single plan when set
	PlanID *string `db:"plan_id"`

	ExtraCredits       *int             `db:"extra_credits"`
	DiscountPercentage *decimal.Decimal `db:"discount_percentage"`

	types.BaseModel
}

// AppliesTo reports whether the promotion may be used on the given plan.
func (p *Promotion) AppliesTo(planID string) bool {
	return p.PlanID == nil || *p.PlanID == planID
}

// IsFullDiscount reports whether the promotion waives the entire fee.
func (p *Promotion) IsFullDiscount() bool {
	return p.DiscountPercentage != nil && p.DiscountPercentage.Equal(decimal.NewFromInt(100))
}

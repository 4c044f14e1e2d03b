package billing

import (
	"github.com/mailbeam/billing/internal/domain/promotion"
	"github.com/mailbeam/billing/internal/types"
)

// IsUpgradePending decides whether an agreement settles immediately or
// stays pending until an out-of-band payment is confirmed. Card charges
// settle in-line; a full-discount promotion leaves nothing to pay.
func IsUpgradePending(method types.PaymentMethod, promo *promotion.Promotion) bool {
	if method == types.PaymentMethodCard {
		return false
	}
	if promo != nil && promo.IsFullDiscount() {
		return false
	}
	return true
}

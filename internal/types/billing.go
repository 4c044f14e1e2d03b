package types

import (
	"fmt"

	"github.com/samber/lo"
)

// ResponsibleBilling identifies which external system owns the
// subscriber's billing relationship.
type ResponsibleBilling string

const (
	ResponsibleBillingInternal      ResponsibleBilling = "INTERNAL"
	ResponsibleBillingQuickBooks    ResponsibleBilling = "QUICKBOOKS"
	ResponsibleBillingClientManager ResponsibleBilling = "CLIENT_MANAGER"
	ResponsibleBillingReseller      ResponsibleBilling = "RESELLER"
)

func (r ResponsibleBilling) String() string {
	return string(r)
}

func (r ResponsibleBilling) Validate() error {
	allowed := []ResponsibleBilling{
		ResponsibleBillingInternal,
		ResponsibleBillingQuickBooks,
		ResponsibleBillingClientManager,
		ResponsibleBillingReseller,
	}
	if !lo.Contains(allowed, r) {
		return fmt.Errorf("invalid responsible billing: %s", r)
	}
	return nil
}

// IsCRMManaged reports whether the subscriber's billing relationship is
// mirrored in the CRM and upgrades must be propagated there.
func (r ResponsibleBilling) IsCRMManaged() bool {
	return r == ResponsibleBillingQuickBooks || r == ResponsibleBillingClientManager
}

// DiscountType describes the shape of a promotion's benefit
type DiscountType string

const (
	DiscountTypeCredits    DiscountType = "CREDITS"
	DiscountTypePercentage DiscountType = "PERCENTAGE"
)

func (d DiscountType) String() string {
	return string(d)
}

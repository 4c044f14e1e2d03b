package service

import (
	"fmt"

	"github.com/samber/lo"

	"github.com/mailbeam/billing/internal/domain/plan"
	"github.com/mailbeam/billing/internal/domain/subscriber"
	ierr "github.com/mailbeam/billing/internal/errors"
	"github.com/mailbeam/billing/internal/types"
)

// Rejection is a typed eligibility result. The checks return it instead
// of an error so the orchestrator decides once how a rejected run is
// logged, alerted and surfaced.
type Rejection struct {
	Reason  types.RejectionReason
	Message string
}

// ToError converts the rejection into a client-safe validation error.
func (r *Rejection) ToError() error {
	return ierr.NewError(r.Message).
		WithHint(r.Message).
		WithReportableDetails(map[string]any{
			"reason": r.Reason.String(),
		}).
		Mark(ierr.ErrValidation)
}

// CheckSubscriber runs the ordered eligibility checks that depend only
// on the subscriber's billing profile. The first failing check wins.
func CheckSubscriber(sub *subscriber.Subscriber) *Rejection {
	if !lo.Contains(types.AllowedBillingPaymentMethods, sub.PaymentMethod) {
		return &Rejection{
			Reason:  types.RejectionInvalidPaymentMethod,
			Message: fmt.Sprintf("payment method %s is not supported for upgrades", sub.PaymentMethod),
		}
	}

	if sub.PaymentMethod == types.PaymentMethodTransfer &&
		!lo.Contains(types.AllowedTransferCountries, sub.BillingCountry) {
		return &Rejection{
			Reason:  types.RejectionCountryNotAllowed,
			Message: fmt.Sprintf("transfer payments are not supported in %s", sub.BillingCountry),
		}
	}

	if sub.HasPaidPlan() {
		return &Rejection{
			Reason:  types.RejectionSubscriberNotFree,
			Message: "account already has an active paid plan",
		}
	}

	return nil
}

// CheckPlanOffer validates that the target plan is a purchasable type.
func CheckPlanOffer(offer *plan.Offer) *Rejection {
	if !lo.Contains(types.AllowedBillingPlanTypes, offer.PlanType) {
		return &Rejection{
			Reason:  types.RejectionInvalidPlanType,
			Message: fmt.Sprintf("plan type %s cannot be purchased", offer.PlanType),
		}
	}
	return nil
}

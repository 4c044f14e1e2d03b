package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mailbeam/billing/internal/domain/plan"
	"github.com/mailbeam/billing/internal/domain/subscriber"
	"github.com/mailbeam/billing/internal/types"
)

func freeTierSubscriber(method types.PaymentMethod, country types.Country) *subscriber.Subscriber {
	return &subscriber.Subscriber{
		ID:             "sub_1",
		AccountName:    "acme",
		PaymentMethod:  method,
		BillingCountry: country,
		PlanType:       types.PlanTypeFree,
	}
}

func TestCheckSubscriber(t *testing.T) {
	tests := []struct {
		name     string
		sub      *subscriber.Subscriber
		expected types.RejectionReason
	}{
		{
			name: "card on free tier passes",
			sub:  freeTierSubscriber(types.PaymentMethodCard, types.CountryArgentina),
		},
		{
			name: "transfer in allowed country passes",
			sub:  freeTierSubscriber(types.PaymentMethodTransfer, types.CountryColombia),
		},
		{
			name:     "mercado pago is rejected",
			sub:      freeTierSubscriber(types.PaymentMethodMercadoPago, types.CountryArgentina),
			expected: types.RejectionInvalidPaymentMethod,
		},
		{
			name:     "debit is rejected",
			sub:      freeTierSubscriber(types.PaymentMethodDebit, types.CountryMexico),
			expected: types.RejectionInvalidPaymentMethod,
		},
		{
			name:     "transfer outside allowed countries is rejected",
			sub:      freeTierSubscriber(types.PaymentMethodTransfer, types.CountryArgentina),
			expected: types.RejectionCountryNotAllowed,
		},
		{
			name: "existing paid plan is rejected",
			sub: func() *subscriber.Subscriber {
				sub := freeTierSubscriber(types.PaymentMethodCard, types.CountryArgentina)
				sub.PlanType = types.PlanTypeMonthly
				return sub
			}(),
			expected: types.RejectionSubscriberNotFree,
		},
		{
			// The first failing check wins even when several would fail
			name: "payment method check runs before free tier check",
			sub: func() *subscriber.Subscriber {
				sub := freeTierSubscriber(types.PaymentMethodMercadoPago, types.CountryArgentina)
				sub.PlanType = types.PlanTypeMonthly
				return sub
			}(),
			expected: types.RejectionInvalidPaymentMethod,
		},
		{
			name: "country check runs before free tier check",
			sub: func() *subscriber.Subscriber {
				sub := freeTierSubscriber(types.PaymentMethodTransfer, types.CountryUSA)
				sub.PlanType = types.PlanTypeMonthly
				return sub
			}(),
			expected: types.RejectionCountryNotAllowed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rej := CheckSubscriber(tt.sub)
			if tt.expected == "" {
				assert.Nil(t, rej)
				return
			}
			if assert.NotNil(t, rej) {
				assert.Equal(t, tt.expected, rej.Reason)
				assert.NotEmpty(t, rej.Message)
			}
		})
	}
}

func TestCheckPlanOffer(t *testing.T) {
	for _, planType := range types.AllowedBillingPlanTypes {
		assert.Nil(t, CheckPlanOffer(&plan.Offer{ID: "plan_1", PlanType: planType}))
	}

	rej := CheckPlanOffer(&plan.Offer{ID: "plan_free", PlanType: types.PlanTypeFree})
	if assert.NotNil(t, rej) {
		assert.Equal(t, types.RejectionInvalidPlanType, rej.Reason)
	}
}

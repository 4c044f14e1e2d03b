package types

import (
	"fmt"

	"github.com/samber/lo"
)

// PaymentMethod represents how a subscriber pays for their plan
type PaymentMethod string

const (
	PaymentMethodCard        PaymentMethod = "CARD"
	PaymentMethodTransfer    PaymentMethod = "TRANSFER"
	PaymentMethodMercadoPago PaymentMethod = "MERCADO_PAGO"
	PaymentMethodDebit       PaymentMethod = "DEBIT"
)

func (m PaymentMethod) String() string {
	return string(m)
}

func (m PaymentMethod) Validate() error {
	allowed := []PaymentMethod{
		PaymentMethodCard,
		PaymentMethodTransfer,
		PaymentMethodMercadoPago,
		PaymentMethodDebit,
	}
	if !lo.Contains(allowed, m) {
		return fmt.Errorf("invalid payment method: %s", m)
	}
	return nil
}

// AllowedBillingPaymentMethods are the only methods accepted for
// self-service agreement creation.
var AllowedBillingPaymentMethods = []PaymentMethod{
	PaymentMethodCard,
	PaymentMethodTransfer,
}

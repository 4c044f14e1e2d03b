package invoicing

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/mailbeam/billing/internal/types"
)

// Payload is the transaction pushed to the external invoicing system
// after a settled card charge. CardNumber and CardHolder are the
// decrypted instrument fields; the payload is sent and discarded.
type Payload struct {
	BillingSystemID int    `json:"billing_system_id"`
	InvoiceID       string `json:"invoice_id"`

	AccountName string `json:"account_name"`
	Email       string `json:"email"`
	FirstName   string `json:"first_name"`

	CardNumber string `json:"card_number"`
	CardHolder string `json:"card_holder"`

	BillingCreditID    string          `json:"billing_credit_id"`
	Amount             decimal.Decimal `json:"amount"`
	AuthorizationToken string          `json:"authorization_token"`

	PriorPlanType types.PlanType `json:"prior_plan_type"`
	PriorPlanID   *string        `json:"prior_plan_id,omitempty"`
	NewPlanType   types.PlanType `json:"new_plan_type"`
	NewPlanID     string         `json:"new_plan_id"`

	TransactionDate time.Time `json:"transaction_date"`
}

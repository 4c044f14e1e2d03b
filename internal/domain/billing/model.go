package billing

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/mailbeam/billing/internal/types"
)

// Credit is a billing credit, the durable record of a completed upgrade.
// Once written it is never rolled back.
type Credit struct {
	ID           string `db:"id"`
	SubscriberID string `db:"subscriber_id"`
	PlanID       string `db:"plan_id"`

	PlanType      types.PlanType      `db:"plan_type"`
	PaymentMethod types.PaymentMethod `db:"payment_method"`

	PromotionID *string `db:"promotion_id"`
	DiscountID  *string `db:"discount_id"`

	InvoiceID          *string `db:"invoice_id"`
	AuthorizationToken *string `db:"authorization_token"`

	Total decimal.Decimal `db:"total"`

	types.BaseModel
}

// MovementCredit records the balance carried over from the subscriber's
// prior state when an upgrade to a non subscriber-limited plan completes.
type MovementCredit struct {
	ID              string          `db:"id"`
	SubscriberID    string          `db:"subscriber_id"`
	BillingCreditID string          `db:"billing_credit_id"`
	PartialBalance  decimal.Decimal `db:"partial_balance"`
	Date            time.Time       `db:"date"`

	types.BaseModel
}

// AccountingEntryType distinguishes the invoice record from the payment
// record written for a single charge.
type AccountingEntryType string

const (
	AccountingEntryInvoice AccountingEntryType = "invoice"
	AccountingEntryPayment AccountingEntryType = "payment"
)

// AccountingEntry is a row pushed to the accounting ledger for a charge.
type AccountingEntry struct {
	ID           string              `db:"id"`
	InvoiceID    string              `db:"invoice_id"`
	SubscriberID string              `db:"subscriber_id"`
	EntryType    AccountingEntryType `db:"entry_type"`

	Amount             decimal.Decimal     `db:"amount"`
	PaymentMethod      types.PaymentMethod `db:"payment_method"`
	AuthorizationToken *string             `db:"authorization_token"`
	Date               time.Time           `db:"date"`

	types.BaseModel
}

// DiscountInfo is the metadata of an applied billing discount, used to
// enrich the upgrade notification.
type DiscountInfo struct {
	ID           string          `db:"id"`
	Description  string          `db:"description"`
	Percentage   decimal.Decimal `db:"percentage"`
	MonthsAmount int             `db:"months_amount"`
}

package crm

import (
	"time"

	"github.com/shopspring/decimal"
)

// CRM modules an upgrade projection can be written to.
const (
	ModuleAccounts = "Accounts"
	ModuleLeads    = "Leads"
)

// Contact is a CRM contact matched by email.
type Contact struct {
	ID          string `json:"id"`
	Email       string `json:"Email"`
	AccountName string `json:"Account_Name"`
}

// Lead is a CRM lead matched by email.
type Lead struct {
	ID    string `json:"id"`
	Email string `json:"Email"`
}

// Account is a CRM account linked to a contact.
type Account struct {
	ID   string `json:"id"`
	Name string `json:"Account_Name"`
}

// UpgradeProjection is the subset of agreement data written onto the
// matched CRM entity after an upgrade completes.
type UpgradeProjection struct {
	PlanType       string          `json:"Plan_Type"`
	PlanFee        decimal.Decimal `json:"Plan_Fee"`
	PaymentMethod  string          `json:"Payment_Method"`
	PromoCode      string          `json:"Promo_Code,omitempty"`
	UpgradePending bool            `json:"Upgrade_Pending"`
	UpgradeDate    time.Time       `json:"Upgrade_Date"`
}

type searchResponse[T any] struct {
	Data []T `json:"data"`
}

type updatePayload struct {
	Data []interface{} `json:"data"`
}

package billing

import "context"

// Repository is the billing ledger. CreateBillingCredit is the commit
// point of the agreement workflow; nothing here compensates or deletes.
type Repository interface {
	// CreateAccountingEntries writes the invoice and payment rows for a
	// settled charge
	CreateAccountingEntries(ctx context.Context, entries []*AccountingEntry) error

	// CreateBillingCredit writes the billing credit
	CreateBillingCredit(ctx context.Context, credit *Credit) error

	// GetBillingCredit returns a billing credit by id
	GetBillingCredit(ctx context.Context, id string) (*Credit, error)

	// CreateMovementCredit records the carried-over balance of an upgrade
	CreateMovementCredit(ctx context.Context, movement *MovementCredit) error

	// ActivateStandBySubscribers activates stand-by contacts for the
	// subscriber and returns how many were activated
	ActivateStandBySubscribers(ctx context.Context, subscriberID string) (int, error)

	// GetDiscountInfo returns the metadata of a billing discount
	GetDiscountInfo(ctx context.Context, discountID string) (*DiscountInfo, error)
}

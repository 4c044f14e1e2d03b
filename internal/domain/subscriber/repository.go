package subscriber

import "context"

// Repository provides access to subscriber billing profiles and their
// stored payment instruments.
type Repository interface {
	// GetByAccountName returns the subscriber for the given account name
	GetByAccountName(ctx context.Context, accountName string) (*Subscriber, error)

	// UpdateBillingState persists the post-commit billing fields of the
	// subscriber (plan, credit pointer, balance, pending flag, timestamps)
	UpdateBillingState(ctx context.Context, s *Subscriber) error

	// GetPaymentInstrument returns the stored instrument for the subscriber
	GetPaymentInstrument(ctx context.Context, subscriberID string) (*PaymentInstrument, error)

	// UpdateBillingInformation persists the subscriber's billing address
	UpdateBillingInformation(ctx context.Context, s *Subscriber) error

	// UpdatePaymentMethod persists the subscriber's registered payment method
	UpdatePaymentMethod(ctx context.Context, s *Subscriber) error

	// CreatePaymentInstrument stores a new encrypted instrument. The
	// latest instrument wins; older ones are kept for audit.
	CreatePaymentInstrument(ctx context.Context, instrument *PaymentInstrument) error
}

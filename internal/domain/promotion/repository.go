package promotion

import "context"

// Repository provides promo code resolution and usage accounting.
type Repository interface {
	// GetValidByCode resolves an active promo code for the given target
	// plan. An unknown or inactive code, or one restricted to a different
	// plan, is a not found error.
	GetValidByCode(ctx context.Context, code string, planID string) (*Promotion, error)

	// IncrementUsage bumps the usage counter of a promotion
	IncrementUsage(ctx context.Context, id string) error
}

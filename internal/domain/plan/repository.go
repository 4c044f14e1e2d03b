package plan

import "context"

// Repository provides plan offer lookups.
type Repository interface {
	// GetByID returns the offer with the given id
	GetByID(ctx context.Context, id string) (*Offer, error)
}

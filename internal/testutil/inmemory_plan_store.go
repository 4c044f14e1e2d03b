package testutil

import (
	"context"

	"github.com/mailbeam/billing/internal/domain/plan"
	ierr "github.com/mailbeam/billing/internal/errors"
)

// InMemoryPlanStore is an in-memory implementation of plan.Repository
type InMemoryPlanStore struct {
	offers *InMemoryStore[*plan.Offer]
}

func NewInMemoryPlanStore() *InMemoryPlanStore {
	return &InMemoryPlanStore{
		offers: NewInMemoryStore[*plan.Offer](),
	}
}

// AddOffer seeds a plan offer
func (s *InMemoryPlanStore) AddOffer(offer *plan.Offer) {
	_ = s.offers.Create(context.Background(), offer.ID, offer)
}

func (s *InMemoryPlanStore) GetByID(ctx context.Context, id string) (*plan.Offer, error) {
	offer, err := s.offers.Get(ctx, id)
	if err != nil {
		return nil, ierr.NewError("plan not found").
			WithHint("The requested plan does not exist").
			Mark(ierr.ErrNotFound)
	}
	return offer, nil
}

func (s *InMemoryPlanStore) Clear() {
	s.offers.Clear()
}

package testutil

import (
	"context"
	"sync"

	"github.com/mailbeam/billing/internal/domain/promotion"
	ierr "github.com/mailbeam/billing/internal/errors"
)

// InMemoryPromotionStore is an in-memory implementation of promotion.Repository
type InMemoryPromotionStore struct {
	mu         sync.Mutex
	promotions map[string]*promotion.Promotion // keyed by code

	// IncrementErr, when set, is returned by IncrementUsage
	IncrementErr error
}

func NewInMemoryPromotionStore() *InMemoryPromotionStore {
	return &InMemoryPromotionStore{
		promotions: make(map[string]*promotion.Promotion),
	}
}

// AddPromotion seeds a promotion
func (s *InMemoryPromotionStore) AddPromotion(promo *promotion.Promotion) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.promotions[promo.Code] = promo
}

func (s *InMemoryPromotionStore) GetValidByCode(ctx context.Context, code string, planID string) (*promotion.Promotion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	promo, exists := s.promotions[code]
	if !exists || !promo.AppliesTo(planID) {
		return nil, ierr.NewError("promotion not found").
			WithHint("The promo code is not valid").
			Mark(ierr.ErrNotFound)
	}
	return promo, nil
}

func (s *InMemoryPromotionStore) IncrementUsage(ctx context.Context, id string) error {
	if s.IncrementErr != nil {
		return s.IncrementErr
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, promo := range s.promotions {
		if promo.ID == id {
			promo.TimesUsed++
			return nil
		}
	}
	return ierr.NewError("promotion not found").
		WithHint("The promotion no longer exists").
		Mark(ierr.ErrNotFound)
}

func (s *InMemoryPromotionStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.promotions = make(map[string]*promotion.Promotion)
	s.IncrementErr = nil
}

package testutil

import (
	"context"
	"sync"

	"github.com/mailbeam/billing/internal/domain/billing"
	ierr "github.com/mailbeam/billing/internal/errors"
)

// InMemoryBillingStore is an in-memory implementation of the billing
// ledger with injectable failures for exercising the workflow's abort
// and absorb paths.
type InMemoryBillingStore struct {
	mu        sync.Mutex
	credits   map[string]*billing.Credit
	movements []*billing.MovementCredit
	entries   []*billing.AccountingEntry
	discounts map[string]*billing.DiscountInfo

	// StandByCount is returned by ActivateStandBySubscribers
	StandByCount int

	CreateEntriesErr  error
	CreateCreditErr   error
	CreateMovementErr error
	ActivateErr       error
}

func NewInMemoryBillingStore() *InMemoryBillingStore {
	return &InMemoryBillingStore{
		credits:   make(map[string]*billing.Credit),
		discounts: make(map[string]*billing.DiscountInfo),
	}
}

// AddDiscount seeds a discount
func (s *InMemoryBillingStore) AddDiscount(info *billing.DiscountInfo) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.discounts[info.ID] = info
}

func (s *InMemoryBillingStore) CreateAccountingEntries(ctx context.Context, entries []*billing.AccountingEntry) error {
	if s.CreateEntriesErr != nil {
		return s.CreateEntriesErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, entries...)
	return nil
}

func (s *InMemoryBillingStore) CreateBillingCredit(ctx context.Context, credit *billing.Credit) error {
	if s.CreateCreditErr != nil {
		return s.CreateCreditErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.credits[credit.ID] = credit
	return nil
}

func (s *InMemoryBillingStore) GetBillingCredit(ctx context.Context, id string) (*billing.Credit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	credit, exists := s.credits[id]
	if !exists {
		return nil, ierr.NewError("billing credit not found").
			WithHint("The billing credit does not exist").
			Mark(ierr.ErrNotFound)
	}
	return credit, nil
}

func (s *InMemoryBillingStore) CreateMovementCredit(ctx context.Context, movement *billing.MovementCredit) error {
	if s.CreateMovementErr != nil {
		return s.CreateMovementErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.movements = append(s.movements, movement)
	return nil
}

func (s *InMemoryBillingStore) ActivateStandBySubscribers(ctx context.Context, subscriberID string) (int, error) {
	if s.ActivateErr != nil {
		return 0, s.ActivateErr
	}
	return s.StandByCount, nil
}

func (s *InMemoryBillingStore) GetDiscountInfo(ctx context.Context, discountID string) (*billing.DiscountInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	info, exists := s.discounts[discountID]
	if !exists {
		return nil, ierr.NewError("discount not found").
			WithHint("The discount does not exist").
			Mark(ierr.ErrNotFound)
	}
	return info, nil
}

// Credits returns the committed billing credits
func (s *InMemoryBillingStore) Credits() []*billing.Credit {
	s.mu.Lock()
	defer s.mu.Unlock()
	result := make([]*billing.Credit, 0, len(s.credits))
	for _, credit := range s.credits {
		result = append(result, credit)
	}
	return result
}

// Movements returns the recorded movement credits
func (s *InMemoryBillingStore) Movements() []*billing.MovementCredit {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*billing.MovementCredit{}, s.movements...)
}

// Entries returns the written accounting entries
func (s *InMemoryBillingStore) Entries() []*billing.AccountingEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*billing.AccountingEntry{}, s.entries...)
}

func (s *InMemoryBillingStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.credits = make(map[string]*billing.Credit)
	s.movements = nil
	s.entries = nil
	s.discounts = make(map[string]*billing.DiscountInfo)
	s.StandByCount = 0
	s.CreateEntriesErr = nil
	s.CreateCreditErr = nil
	s.CreateMovementErr = nil
	s.ActivateErr = nil
}

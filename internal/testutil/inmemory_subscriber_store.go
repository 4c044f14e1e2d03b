package testutil

import (
	"context"

	"github.com/mailbeam/billing/internal/domain/subscriber"
	ierr "github.com/mailbeam/billing/internal/errors"
)

// InMemorySubscriberStore is an in-memory implementation of subscriber.Repository
type InMemorySubscriberStore struct {
	subscribers *InMemoryStore[*subscriber.Subscriber]
	instruments *InMemoryStore[*subscriber.PaymentInstrument]

	// UpdateErr, when set, is returned by UpdateBillingState
	UpdateErr error
}

func NewInMemorySubscriberStore() *InMemorySubscriberStore {
	return &InMemorySubscriberStore{
		subscribers: NewInMemoryStore[*subscriber.Subscriber](),
		instruments: NewInMemoryStore[*subscriber.PaymentInstrument](),
	}
}

// AddSubscriber seeds a subscriber, keyed by account name
func (s *InMemorySubscriberStore) AddSubscriber(sub *subscriber.Subscriber) {
	_ = s.subscribers.Create(context.Background(), sub.AccountName, sub)
}

// AddInstrument seeds a payment instrument, keyed by subscriber id
func (s *InMemorySubscriberStore) AddInstrument(instrument *subscriber.PaymentInstrument) {
	_ = s.instruments.Create(context.Background(), instrument.SubscriberID, instrument)
}

func (s *InMemorySubscriberStore) GetByAccountName(ctx context.Context, accountName string) (*subscriber.Subscriber, error) {
	sub, err := s.subscribers.Get(ctx, accountName)
	if err != nil {
		return nil, ierr.NewError("subscriber not found").
			WithHint("No billing profile exists for this account").
			Mark(ierr.ErrNotFound)
	}
	return sub, nil
}

func (s *InMemorySubscriberStore) UpdateBillingState(ctx context.Context, sub *subscriber.Subscriber) error {
	if s.UpdateErr != nil {
		return s.UpdateErr
	}
	return s.subscribers.Update(ctx, sub.AccountName, sub)
}

func (s *InMemorySubscriberStore) UpdateBillingInformation(ctx context.Context, sub *subscriber.Subscriber) error {
	if s.UpdateErr != nil {
		return s.UpdateErr
	}
	return s.subscribers.Update(ctx, sub.AccountName, sub)
}

func (s *InMemorySubscriberStore) UpdatePaymentMethod(ctx context.Context, sub *subscriber.Subscriber) error {
	if s.UpdateErr != nil {
		return s.UpdateErr
	}
	return s.subscribers.Update(ctx, sub.AccountName, sub)
}

func (s *InMemorySubscriberStore) CreatePaymentInstrument(ctx context.Context, instrument *subscriber.PaymentInstrument) error {
	// Latest instrument wins, matching the repository's newest-first read
	_ = s.instruments.Delete(ctx, instrument.SubscriberID)
	return s.instruments.Create(ctx, instrument.SubscriberID, instrument)
}

func (s *InMemorySubscriberStore) GetPaymentInstrument(ctx context.Context, subscriberID string) (*subscriber.PaymentInstrument, error) {
	instrument, err := s.instruments.Get(ctx, subscriberID)
	if err != nil {
		return nil, ierr.NewError("payment instrument not found").
			WithHint("No payment instrument is stored for this account").
			Mark(ierr.ErrNotFound)
	}
	return instrument, nil
}

func (s *InMemorySubscriberStore) Clear() {
	s.subscribers.Clear()
	s.instruments.Clear()
	s.UpdateErr = nil
}

package testutil

import (
	"context"
	"sync"

	"github.com/mailbeam/billing/internal/domain/subscriber"
	"github.com/mailbeam/billing/internal/email"
	"github.com/mailbeam/billing/internal/integration/crm"
	"github.com/mailbeam/billing/internal/integration/gateway"
	"github.com/mailbeam/billing/internal/integration/invoicing"
	"github.com/mailbeam/billing/internal/types"
)

// FakeGatewayClient records charge attempts and answers with a fixed
// token or error.
type FakeGatewayClient struct {
	mu      sync.Mutex
	Token   string
	Err     error
	Charges []*gateway.ChargeRequest
}

func NewFakeGatewayClient() *FakeGatewayClient {
	return &FakeGatewayClient{Token: "auth-token-1"}
}

func (f *FakeGatewayClient) Charge(ctx context.Context, req *gateway.ChargeRequest) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Charges = append(f.Charges, req)
	if f.Err != nil {
		return "", f.Err
	}
	return f.Token, nil
}

func (f *FakeGatewayClient) Clear() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Charges = nil
	f.Err = nil
	f.Token = "auth-token-1"
}

// FakeInvoicingClient records pushed payloads.
type FakeInvoicingClient struct {
	mu     sync.Mutex
	Err    error
	Pushes []*invoicing.Payload
}

func NewFakeInvoicingClient() *FakeInvoicingClient {
	return &FakeInvoicingClient{}
}

func (f *FakeInvoicingClient) Push(ctx context.Context, payload *invoicing.Payload) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Pushes = append(f.Pushes, payload)
	return f.Err
}

func (f *FakeInvoicingClient) Clear() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Pushes = nil
	f.Err = nil
}

// CRMUpdate records a single entity update.
type CRMUpdate struct {
	Module     string
	EntityID   string
	Projection *crm.UpgradeProjection
}

// FakeCRMClient answers lookups from seeded entities and records updates.
type FakeCRMClient struct {
	mu sync.Mutex

	Contact *crm.Contact
	Lead    *crm.Lead
	Account *crm.Account

	ContactErr error
	LeadErr    error
	AccountErr error
	UpdateErr  error

	Updates []CRMUpdate
}

func NewFakeCRMClient() *FakeCRMClient {
	return &FakeCRMClient{}
}

func (f *FakeCRMClient) FindContactByEmail(ctx context.Context, email string) (*crm.Contact, error) {
	if f.ContactErr != nil {
		return nil, f.ContactErr
	}
	return f.Contact, nil
}

func (f *FakeCRMClient) FindLeadByEmail(ctx context.Context, email string) (*crm.Lead, error) {
	if f.LeadErr != nil {
		return nil, f.LeadErr
	}
	return f.Lead, nil
}

func (f *FakeCRMClient) FindAccountByName(ctx context.Context, name string) (*crm.Account, error) {
	if f.AccountErr != nil {
		return nil, f.AccountErr
	}
	return f.Account, nil
}

func (f *FakeCRMClient) UpdateEntity(ctx context.Context, module string, id string, projection *crm.UpgradeProjection) error {
	if f.UpdateErr != nil {
		return f.UpdateErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Updates = append(f.Updates, CRMUpdate{Module: module, EntityID: id, Projection: projection})
	return nil
}

func (f *FakeCRMClient) Clear() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Contact = nil
	f.Lead = nil
	f.Account = nil
	f.ContactErr = nil
	f.LeadErr = nil
	f.AccountErr = nil
	f.UpdateErr = nil
	f.Updates = nil
}

// RecordingAlertService captures alert messages instead of posting them.
type RecordingAlertService struct {
	mu       sync.Mutex
	Messages []string
}

func NewRecordingAlertService() *RecordingAlertService {
	return &RecordingAlertService{}
}

func (s *RecordingAlertService) Notify(ctx context.Context, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Messages = append(s.Messages, message)
}

func (s *RecordingAlertService) NotifyError(ctx context.Context, scope string, err error) {
	s.Notify(ctx, scope+": "+err.Error())
}

func (s *RecordingAlertService) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Messages = nil
}

// SentEmail records one email dispatch.
type SentEmail struct {
	Kind      string
	To        *email.Recipient
	Credits   int
	Upgrade   *email.UpgradeData
	MaxSubs   int
	Activated int
}

// InMemoryEmailSender implements email.Service and records every send.
type InMemoryEmailSender struct {
	mu    sync.Mutex
	Err   error
	Sends []SentEmail
}

func NewInMemoryEmailSender() *InMemoryEmailSender {
	return &InMemoryEmailSender{}
}

func (s *InMemoryEmailSender) SendCreditsEmail(ctx context.Context, to *email.Recipient, credits int) error {
	if s.Err != nil {
		return s.Err
	}
	s.record(SentEmail{Kind: "credits", To: to, Credits: credits})
	return nil
}

func (s *InMemoryEmailSender) SendUpgradeEmail(ctx context.Context, to *email.Recipient, data *email.UpgradeData) error {
	if s.Err != nil {
		return s.Err
	}
	s.record(SentEmail{Kind: "upgrade", To: to, Upgrade: data})
	return nil
}

func (s *InMemoryEmailSender) SendSubscribersPlanEmail(ctx context.Context, to *email.Recipient, maxSubscribers int) error {
	if s.Err != nil {
		return s.Err
	}
	s.record(SentEmail{Kind: "subscribers_plan", To: to, MaxSubs: maxSubscribers})
	return nil
}

func (s *InMemoryEmailSender) SendStandByActivatedEmail(ctx context.Context, to *email.Recipient, activated int) error {
	if s.Err != nil {
		return s.Err
	}
	s.record(SentEmail{Kind: "stand_by_activated", To: to, Activated: activated})
	return nil
}

func (s *InMemoryEmailSender) record(sent SentEmail) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Sends = append(s.Sends, sent)
}

// SendsOfKind returns the recorded sends of one kind
func (s *InMemoryEmailSender) SendsOfKind(kind string) []SentEmail {
	s.mu.Lock()
	defer s.mu.Unlock()
	var result []SentEmail
	for _, sent := range s.Sends {
		if sent.Kind == kind {
			result = append(result, sent)
		}
	}
	return result
}

func (s *InMemoryEmailSender) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Sends = nil
	s.Err = nil
}

// RecordingNotificationPublisher captures published agreement events.
type RecordingNotificationPublisher struct {
	mu     sync.Mutex
	Err    error
	Events []*types.AgreementCompletedEvent
}

func NewRecordingNotificationPublisher() *RecordingNotificationPublisher {
	return &RecordingNotificationPublisher{}
}

func (p *RecordingNotificationPublisher) PublishAgreementCompleted(ctx context.Context, event *types.AgreementCompletedEvent) error {
	if p.Err != nil {
		return p.Err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Events = append(p.Events, event)
	return nil
}

func (p *RecordingNotificationPublisher) Clear() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Events = nil
	p.Err = nil
}

// NewCardSubscriber builds a free-tier card subscriber for tests.
func NewCardSubscriber(accountName string) *subscriber.Subscriber {
	return &subscriber.Subscriber{
		ID:             "sub_" + accountName,
		AccountName:    accountName,
		Email:          accountName + "@example.com",
		FirstName:      "Test",
		Language:       "en",
		PaymentMethod:  types.PaymentMethodCard,
		BillingCountry: types.CountryArgentina,
		PlanType:       types.PlanTypeFree,
		BaseModel:      types.GetDefaultBaseModel(context.Background()),
	}
}

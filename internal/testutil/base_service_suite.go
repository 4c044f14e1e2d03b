package testutil

import (
	"context"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mailbeam/billing/internal/config"
	"github.com/mailbeam/billing/internal/logger"
	"github.com/mailbeam/billing/internal/security"
	"github.com/mailbeam/billing/internal/sentry"
	"github.com/mailbeam/billing/internal/types"
	"github.com/mailbeam/billing/internal/validator"
)

// Stores holds all the repository fakes for testing
type Stores struct {
	SubscriberRepo *InMemorySubscriberStore
	PlanRepo       *InMemoryPlanStore
	PromotionRepo  *InMemoryPromotionStore
	BillingRepo    *InMemoryBillingStore
}

// Collaborators holds the external collaborator fakes
type Collaborators struct {
	Gateway   *FakeGatewayClient
	Invoicing *FakeInvoicingClient
	CRM       *FakeCRMClient
	Alert     *RecordingAlertService
	Email     *InMemoryEmailSender
	Publisher *RecordingNotificationPublisher
}

// BaseServiceTestSuite provides common functionality for all service test suites
type BaseServiceTestSuite struct {
	suite.Suite
	ctx           context.Context
	stores        Stores
	collaborators Collaborators
	encryption    security.EncryptionService
	sentrySvc     *sentry.Service
	logger        *logger.Logger
	config        *config.Configuration
	now           time.Time
}

// SetupSuite is called once before running the tests in the suite
func (s *BaseServiceTestSuite) SetupSuite() {
	validator.NewValidator()

	cfg := config.GetDefaultConfig()
	s.config = cfg

	var err error
	s.logger, err = logger.NewLogger(cfg)
	if err != nil {
		s.T().Fatalf("failed to create logger: %v", err)
	}

	s.encryption, err = security.NewEncryptionService(cfg, s.logger)
	if err != nil {
		s.T().Fatalf("failed to create encryption service: %v", err)
	}

	s.sentrySvc = sentry.NewSentryService(cfg, s.logger)
}

// SetupTest is called before each test
func (s *BaseServiceTestSuite) SetupTest() {
	s.setupContext()
	s.setupStores()
	s.now = time.Now().UTC()
}

// TearDownTest is called after each test
func (s *BaseServiceTestSuite) TearDownTest() {
	s.ClearStores()
}

func (s *BaseServiceTestSuite) setupContext() {
	s.ctx = context.Background()
	s.ctx = context.WithValue(s.ctx, types.CtxUserID, "user_test")
	s.ctx = context.WithValue(s.ctx, types.CtxRequestID, types.GenerateUUID())
}

func (s *BaseServiceTestSuite) setupStores() {
	s.stores = Stores{
		SubscriberRepo: NewInMemorySubscriberStore(),
		PlanRepo:       NewInMemoryPlanStore(),
		PromotionRepo:  NewInMemoryPromotionStore(),
		BillingRepo:    NewInMemoryBillingStore(),
	}
	s.collaborators = Collaborators{
		Gateway:   NewFakeGatewayClient(),
		Invoicing: NewFakeInvoicingClient(),
		CRM:       NewFakeCRMClient(),
		Alert:     NewRecordingAlertService(),
		Email:     NewInMemoryEmailSender(),
		Publisher: NewRecordingNotificationPublisher(),
	}
}

// ClearStores resets all stores and fakes
func (s *BaseServiceTestSuite) ClearStores() {
	s.stores.SubscriberRepo.Clear()
	s.stores.PlanRepo.Clear()
	s.stores.PromotionRepo.Clear()
	s.stores.BillingRepo.Clear()
	s.collaborators.Gateway.Clear()
	s.collaborators.Invoicing.Clear()
	s.collaborators.CRM.Clear()
	s.collaborators.Alert.Clear()
	s.collaborators.Email.Clear()
	s.collaborators.Publisher.Clear()
}

// GetContext returns the test context
func (s *BaseServiceTestSuite) GetContext() context.Context {
	return s.ctx
}

// GetConfig returns the test configuration
func (s *BaseServiceTestSuite) GetConfig() *config.Configuration {
	return s.config
}

// GetStores returns all test repositories
func (s *BaseServiceTestSuite) GetStores() Stores {
	return s.stores
}

// GetCollaborators returns the external collaborator fakes
func (s *BaseServiceTestSuite) GetCollaborators() Collaborators {
	return s.collaborators
}

// GetEncryption returns the test encryption service
func (s *BaseServiceTestSuite) GetEncryption() security.EncryptionService {
	return s.encryption
}

// GetSentry returns the disabled sentry service for tests
func (s *BaseServiceTestSuite) GetSentry() *sentry.Service {
	return s.sentrySvc
}

// GetLogger returns the test logger
func (s *BaseServiceTestSuite) GetLogger() *logger.Logger {
	return s.logger
}

// GetNow returns the current test time
func (s *BaseServiceTestSuite) GetNow() time.Time {
	return s.now.UTC()
}

package service

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"github.com/mailbeam/billing/internal/api/dto"
	"github.com/mailbeam/billing/internal/domain/billing"
	"github.com/mailbeam/billing/internal/domain/plan"
	"github.com/mailbeam/billing/internal/domain/promotion"
	"github.com/mailbeam/billing/internal/domain/subscriber"
	ierr "github.com/mailbeam/billing/internal/errors"
	"github.com/mailbeam/billing/internal/testutil"
	"github.com/mailbeam/billing/internal/types"
)

type AgreementServiceSuite struct {
	testutil.BaseServiceTestSuite
	service AgreementService
}

func TestAgreementService(t *testing.T) {
	suite.Run(t, new(AgreementServiceSuite))
}

func (s *AgreementServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	stores := s.GetStores()
	collab := s.GetCollaborators()
	params := ServiceParams{
		Logger:                s.GetLogger(),
		Config:                s.GetConfig(),
		SubscriberRepo:        stores.SubscriberRepo,
		PlanRepo:              stores.PlanRepo,
		PromotionRepo:         stores.PromotionRepo,
		BillingRepo:           stores.BillingRepo,
		EncryptionService:     s.GetEncryption(),
		GatewayClient:         collab.Gateway,
		InvoicingClient:       collab.Invoicing,
		CRMClient:             collab.CRM,
		AlertService:          collab.Alert,
		EmailService:          collab.Email,
		NotificationPublisher: collab.Publisher,
		Sentry:                s.GetSentry(),
	}
	s.service = NewAgreementService(params, NewSyncService(params))
}

func (s *AgreementServiceSuite) seedCardSubscriber(accountName string) *subscriber.Subscriber {
	sub := testutil.NewCardSubscriber(accountName)
	sub.AvailableCredit = decimal.NewFromInt(10)
	s.GetStores().SubscriberRepo.AddSubscriber(sub)
	return sub
}

func (s *AgreementServiceSuite) seedTransferSubscriber(accountName string) *subscriber.Subscriber {
	sub := testutil.NewCardSubscriber(accountName)
	sub.PaymentMethod = types.PaymentMethodTransfer
	sub.BillingCountry = types.CountryColombia
	sub.AvailableCredit = decimal.NewFromInt(10)
	s.GetStores().SubscriberRepo.AddSubscriber(sub)
	return sub
}

func (s *AgreementServiceSuite) seedInstrument(subscriberID string) {
	number, err := s.GetEncryption().Encrypt("4111111111111111")
	s.Require().NoError(err)
	holder, err := s.GetEncryption().Encrypt("Jane Roe")
	s.Require().NoError(err)
	s.GetStores().SubscriberRepo.AddInstrument(&subscriber.PaymentInstrument{
		ID:           "pi_1",
		SubscriberID: subscriberID,
		Number:       number,
		HolderName:   holder,
		ExpiryMonth:  12,
		ExpiryYear:   2030,
		LastFour:     "1111",
		Brand:        "visa",
		BaseModel:    types.GetDefaultBaseModel(context.Background()),
	})
}

func (s *AgreementServiceSuite) seedMonthlyPlan() *plan.Offer {
	credits := 500
	offer := &plan.Offer{
		ID:        "plan_monthly",
		PlanType:  types.PlanTypeMonthly,
		Fee:       decimal.NewFromInt(50),
		CreditQty: &credits,
	}
	s.GetStores().PlanRepo.AddOffer(offer)
	return offer
}

func (s *AgreementServiceSuite) seedSubscribersPlan() *plan.Offer {
	qty := 2500
	offer := &plan.Offer{
		ID:            "plan_subscribers",
		PlanType:      types.PlanTypeSubscribers,
		Fee:           decimal.NewFromInt(80),
		SubscriberQty: &qty,
	}
	s.GetStores().PlanRepo.AddOffer(offer)
	return offer
}

func (s *AgreementServiceSuite) monthlyRequest() *dto.CreateAgreementRequest {
	return &dto.CreateAgreementRequest{
		PlanID: "plan_monthly",
		Total:  decimal.NewFromInt(50),
	}
}

func (s *AgreementServiceSuite) TestCardUpgradeHappyPath() {
	s.seedCardSubscriber("acme")
	s.seedInstrument("sub_acme")
	s.seedMonthlyPlan()

	resp, err := s.service.CreateAgreement(s.GetContext(), "acme", s.monthlyRequest())
	s.Require().NoError(err)
	s.Require().NotNil(resp)
	s.Equal(types.StateCompleted, resp.State)
	s.False(resp.UpgradePending)
	s.Require().NotNil(resp.InvoiceID)

	collab := s.GetCollaborators()
	stores := s.GetStores()

	// The gateway saw the decrypted card exactly once
	s.Require().Len(collab.Gateway.Charges, 1)
	charge := collab.Gateway.Charges[0]
	s.Equal("4111111111111111", charge.Card.Number)
	s.Equal("Jane Roe", charge.Card.HolderName)
	s.True(charge.Amount.Equal(decimal.NewFromInt(50)))

	// One invoice entry and one payment entry, same invoice id
	entries := stores.BillingRepo.Entries()
	s.Require().Len(entries, 2)
	s.Equal(billing.AccountingEntryInvoice, entries[0].EntryType)
	s.Equal(billing.AccountingEntryPayment, entries[1].EntryType)
	s.Equal(entries[0].InvoiceID, entries[1].InvoiceID)
	s.Require().NotNil(entries[1].AuthorizationToken)
	s.Equal("auth-token-1", *entries[1].AuthorizationToken)

	// The billing credit carries the settlement
	credits := stores.BillingRepo.Credits()
	s.Require().Len(credits, 1)
	credit := credits[0]
	s.Equal(resp.BillingCreditID, credit.ID)
	s.Require().NotNil(credit.AuthorizationToken)
	s.Equal("auth-token-1", *credit.AuthorizationToken)
	s.Require().NotNil(credit.InvoiceID)
	s.Equal(*resp.InvoiceID, *credit.InvoiceID)

	// Subscriber state moved to the new plan
	sub, err := stores.SubscriberRepo.GetByAccountName(s.GetContext(), "acme")
	s.Require().NoError(err)
	s.Equal(types.PlanTypeMonthly, sub.PlanType)
	s.Require().NotNil(sub.CurrentPlanID)
	s.Equal("plan_monthly", *sub.CurrentPlanID)
	s.Require().NotNil(sub.CurrentBillingCreditID)
	s.Equal(credit.ID, *sub.CurrentBillingCreditID)
	s.False(sub.UpgradePending)
	s.NotNil(sub.FirstPaymentAt)
	s.NotNil(sub.UpgradedAt)
	s.True(sub.AvailableCredit.Equal(decimal.NewFromInt(510)))

	// The pre-commit balance was carried over as a movement credit
	movements := stores.BillingRepo.Movements()
	s.Require().Len(movements, 1)
	s.True(movements[0].PartialBalance.Equal(decimal.NewFromInt(10)))
	s.Equal(credit.ID, movements[0].BillingCreditID)

	// Invoicing got the settled charge
	s.Require().Len(collab.Invoicing.Pushes, 1)
	s.Equal(*resp.InvoiceID, collab.Invoicing.Pushes[0].InvoiceID)
	s.Equal("4111111111111111", collab.Invoicing.Pushes[0].CardNumber)

	// And the completion event went out
	s.Require().Len(collab.Publisher.Events, 1)
	event := collab.Publisher.Events[0]
	s.Equal("acme", event.AccountName)
	s.Equal(credit.ID, event.BillingCreditID)
	s.False(event.UpgradePending)
}

func (s *AgreementServiceSuite) TestTransferUpgradeIsPending() {
	s.seedTransferSubscriber("acme")
	s.seedMonthlyPlan()

	resp, err := s.service.CreateAgreement(s.GetContext(), "acme", s.monthlyRequest())
	s.Require().NoError(err)
	s.True(resp.UpgradePending)
	s.Nil(resp.InvoiceID)

	collab := s.GetCollaborators()
	stores := s.GetStores()

	// Transfers settle out of band, nothing touches the gateway
	s.Empty(collab.Gateway.Charges)
	s.Empty(stores.BillingRepo.Entries())
	s.Empty(collab.Invoicing.Pushes)

	credits := stores.BillingRepo.Credits()
	s.Require().Len(credits, 1)
	s.Nil(credits[0].AuthorizationToken)
	s.Nil(credits[0].InvoiceID)

	sub, err := stores.SubscriberRepo.GetByAccountName(s.GetContext(), "acme")
	s.Require().NoError(err)
	s.True(sub.UpgradePending)
	s.Nil(sub.FirstPaymentAt)
	s.Nil(sub.UpgradedAt)

	s.Require().Len(collab.Publisher.Events, 1)
	s.True(collab.Publisher.Events[0].UpgradePending)
}

func (s *AgreementServiceSuite) TestSubscribersPlanActivatesStandBy() {
	s.seedCardSubscriber("acme")
	s.seedInstrument("sub_acme")
	s.seedSubscribersPlan()
	s.GetStores().BillingRepo.StandByCount = 3

	req := &dto.CreateAgreementRequest{
		PlanID: "plan_subscribers",
		Total:  decimal.NewFromInt(80),
	}
	resp, err := s.service.CreateAgreement(s.GetContext(), "acme", req)
	s.Require().NoError(err)
	s.Equal(types.StateCompleted, resp.State)

	stores := s.GetStores()
	sub, err := stores.SubscriberRepo.GetByAccountName(s.GetContext(), "acme")
	s.Require().NoError(err)
	s.Require().NotNil(sub.MaxSubscribers)
	s.Equal(2500, *sub.MaxSubscribers)

	// Stand-by activation replaces the movement credit branch
	s.Empty(stores.BillingRepo.Movements())

	sends := s.GetCollaborators().Email.SendsOfKind("stand_by_activated")
	s.Require().Len(sends, 1)
	s.Equal(3, sends[0].Activated)
}

func (s *AgreementServiceSuite) TestRejectsUnsupportedPaymentMethod() {
	sub := testutil.NewCardSubscriber("acme")
	sub.PaymentMethod = types.PaymentMethodMercadoPago
	s.GetStores().SubscriberRepo.AddSubscriber(sub)
	s.seedMonthlyPlan()

	resp, err := s.service.CreateAgreement(s.GetContext(), "acme", s.monthlyRequest())
	s.Require().Error(err)
	s.Nil(resp)
	s.True(ierr.IsValidation(err))
	s.Empty(s.GetCollaborators().Gateway.Charges)
	s.Empty(s.GetStores().BillingRepo.Credits())
	s.NotEmpty(s.GetCollaborators().Alert.Messages)
}

func (s *AgreementServiceSuite) TestRejectsTransferOutsideAllowedCountries() {
	sub := testutil.NewCardSubscriber("acme")
	sub.PaymentMethod = types.PaymentMethodTransfer
	sub.BillingCountry = types.CountryArgentina
	s.GetStores().SubscriberRepo.AddSubscriber(sub)
	s.seedMonthlyPlan()

	_, err := s.service.CreateAgreement(s.GetContext(), "acme", s.monthlyRequest())
	s.Require().Error(err)
	s.True(ierr.IsValidation(err))
	s.Empty(s.GetStores().BillingRepo.Credits())
}

func (s *AgreementServiceSuite) TestRejectsSubscriberWithPaidPlan() {
	sub := testutil.NewCardSubscriber("acme")
	sub.PlanType = types.PlanTypeMonthly
	s.GetStores().SubscriberRepo.AddSubscriber(sub)
	s.seedMonthlyPlan()

	_, err := s.service.CreateAgreement(s.GetContext(), "acme", s.monthlyRequest())
	s.Require().Error(err)
	s.True(ierr.IsValidation(err))
	s.Empty(s.GetStores().BillingRepo.Credits())
}

func (s *AgreementServiceSuite) TestRejectsUnknownPlan() {
	s.seedCardSubscriber("acme")

	req := &dto.CreateAgreementRequest{
		PlanID: "plan_missing",
		Total:  decimal.NewFromInt(50),
	}
	_, err := s.service.CreateAgreement(s.GetContext(), "acme", req)
	s.Require().Error(err)
	s.True(ierr.IsNotFound(err))
	s.Empty(s.GetCollaborators().Gateway.Charges)
	s.Empty(s.GetStores().BillingRepo.Credits())
}

func (s *AgreementServiceSuite) TestRejectsFreePlanTarget() {
	s.seedCardSubscriber("acme")
	s.GetStores().PlanRepo.AddOffer(&plan.Offer{
		ID:       "plan_free",
		PlanType: types.PlanTypeFree,
	})

	req := &dto.CreateAgreementRequest{
		PlanID: "plan_free",
		Total:  decimal.Zero,
	}
	_, err := s.service.CreateAgreement(s.GetContext(), "acme", req)
	s.Require().Error(err)
	s.True(ierr.IsValidation(err))
	s.Empty(s.GetStores().BillingRepo.Credits())
}

func (s *AgreementServiceSuite) TestRejectsInvalidPromoCodeBeforeCharging() {
	s.seedCardSubscriber("acme")
	s.seedInstrument("sub_acme")
	s.seedMonthlyPlan()

	req := s.monthlyRequest()
	req.PromoCode = "NOPE"

	_, err := s.service.CreateAgreement(s.GetContext(), "acme", req)
	s.Require().Error(err)
	s.True(ierr.IsValidation(err))
	s.Empty(s.GetCollaborators().Gateway.Charges)
	s.Empty(s.GetStores().BillingRepo.Credits())
}

func (s *AgreementServiceSuite) TestPromoRestrictedToAnotherPlanIsRejected() {
	s.seedCardSubscriber("acme")
	s.seedInstrument("sub_acme")
	s.seedMonthlyPlan()

	otherPlan := "plan_subscribers"
	s.GetStores().PromotionRepo.AddPromotion(&promotion.Promotion{
		ID: "promo_sub", Code: "SUBONLY", PlanID: &otherPlan,
	})

	req := s.monthlyRequest()
	req.PromoCode = "SUBONLY"

	_, err := s.service.CreateAgreement(s.GetContext(), "acme", req)
	s.Require().Error(err)
	s.True(ierr.IsValidation(err))
	s.Empty(s.GetCollaborators().Gateway.Charges)
	s.Empty(s.GetStores().BillingRepo.Credits())
}

func (s *AgreementServiceSuite) TestPromoRestrictedToTargetPlanResolves() {
	s.seedCardSubscriber("acme")
	s.seedInstrument("sub_acme")
	s.seedMonthlyPlan()

	targetPlan := "plan_monthly"
	promo := &promotion.Promotion{ID: "promo_monthly", Code: "MONTHLY10", PlanID: &targetPlan}
	s.GetStores().PromotionRepo.AddPromotion(promo)

	req := s.monthlyRequest()
	req.PromoCode = "MONTHLY10"

	_, err := s.service.CreateAgreement(s.GetContext(), "acme", req)
	s.Require().NoError(err)
	s.Equal(1, promo.TimesUsed)

	credits := s.GetStores().BillingRepo.Credits()
	s.Require().Len(credits, 1)
	s.Require().NotNil(credits[0].PromotionID)
	s.Equal("promo_monthly", *credits[0].PromotionID)
}

func (s *AgreementServiceSuite) TestMissingInstrumentIsSystemError() {
	s.seedCardSubscriber("acme")
	s.seedMonthlyPlan()

	_, err := s.service.CreateAgreement(s.GetContext(), "acme", s.monthlyRequest())
	s.Require().Error(err)
	s.False(ierr.IsRejection(err))
	s.Equal(500, ierr.HTTPStatusFromErr(err))
	s.Empty(s.GetStores().BillingRepo.Credits())
}

func (s *AgreementServiceSuite) TestDeclinedChargeAbortsBeforeCommit() {
	s.seedCardSubscriber("acme")
	s.seedInstrument("sub_acme")
	s.seedMonthlyPlan()

	promo := &promotion.Promotion{ID: "promo_1", Code: "SAVE10"}
	s.GetStores().PromotionRepo.AddPromotion(promo)
	s.GetCollaborators().Gateway.Err = ierr.NewError("card declined").
		WithHint("The charge was not approved").
		Mark(ierr.ErrPaymentDeclined)

	req := s.monthlyRequest()
	req.PromoCode = "SAVE10"

	_, err := s.service.CreateAgreement(s.GetContext(), "acme", req)
	s.Require().Error(err)
	s.True(ierr.IsPaymentDeclined(err))

	stores := s.GetStores()
	s.Empty(stores.BillingRepo.Credits())
	s.Empty(stores.BillingRepo.Entries())
	s.Empty(stores.BillingRepo.Movements())

	// The aborted run never counted the promotion
	s.Equal(0, promo.TimesUsed)

	// And the subscriber kept its free tier
	sub, err := stores.SubscriberRepo.GetByAccountName(s.GetContext(), "acme")
	s.Require().NoError(err)
	s.Equal(types.PlanTypeFree, sub.PlanType)
}

func (s *AgreementServiceSuite) TestFullDiscountPromoSettlesImmediately() {
	s.seedTransferSubscriber("acme")
	s.seedMonthlyPlan()

	pct := decimal.NewFromInt(100)
	promo := &promotion.Promotion{ID: "promo_free", Code: "ONUS", DiscountPercentage: &pct}
	s.GetStores().PromotionRepo.AddPromotion(promo)

	req := &dto.CreateAgreementRequest{
		PlanID:    "plan_monthly",
		Total:     decimal.Zero,
		PromoCode: "ONUS",
	}
	resp, err := s.service.CreateAgreement(s.GetContext(), "acme", req)
	s.Require().NoError(err)

	// Nothing is owed, so the transfer does not stay pending
	s.False(resp.UpgradePending)
	s.Equal(1, promo.TimesUsed)

	sub, err := s.GetStores().SubscriberRepo.GetByAccountName(s.GetContext(), "acme")
	s.Require().NoError(err)
	s.False(sub.UpgradePending)
	s.NotNil(sub.FirstPaymentAt)
}

func (s *AgreementServiceSuite) TestPromoExtraCreditsAddedOnCommit() {
	s.seedCardSubscriber("acme")
	s.seedInstrument("sub_acme")
	s.seedMonthlyPlan()

	extra := 100
	s.GetStores().PromotionRepo.AddPromotion(&promotion.Promotion{
		ID: "promo_extra", Code: "PLUS100", ExtraCredits: &extra,
	})

	req := s.monthlyRequest()
	req.PromoCode = "PLUS100"

	_, err := s.service.CreateAgreement(s.GetContext(), "acme", req)
	s.Require().NoError(err)

	sub, err := s.GetStores().SubscriberRepo.GetByAccountName(s.GetContext(), "acme")
	s.Require().NoError(err)
	s.True(sub.AvailableCredit.Equal(decimal.NewFromInt(610)))

	credits := s.GetStores().BillingRepo.Credits()
	s.Require().Len(credits, 1)
	s.Require().NotNil(credits[0].PromotionID)
	s.Equal("promo_extra", *credits[0].PromotionID)
}

func (s *AgreementServiceSuite) TestSyncFailuresDoNotFailTheRun() {
	sub := s.seedCardSubscriber("acme")
	sub.ResponsibleBilling = types.ResponsibleBillingQuickBooks
	s.seedInstrument("sub_acme")
	s.seedMonthlyPlan()

	collab := s.GetCollaborators()
	collab.Invoicing.Err = ierr.NewError("invoicing down").Mark(ierr.ErrIntegration)
	collab.CRM.ContactErr = ierr.NewError("crm down").Mark(ierr.ErrIntegration)

	resp, err := s.service.CreateAgreement(s.GetContext(), "acme", s.monthlyRequest())
	s.Require().NoError(err)
	s.Equal(types.StateCompleted, resp.State)

	// The committed credit survives both external failures
	s.Len(s.GetStores().BillingRepo.Credits(), 1)
	s.NotEmpty(collab.Alert.Messages)

	// The notification still went out
	s.Len(collab.Publisher.Events, 1)
}

func (s *AgreementServiceSuite) TestPublisherFailureDoesNotFailTheRun() {
	s.seedCardSubscriber("acme")
	s.seedInstrument("sub_acme")
	s.seedMonthlyPlan()

	s.GetCollaborators().Publisher.Err = ierr.NewError("broker unavailable").Mark(ierr.ErrIntegration)

	resp, err := s.service.CreateAgreement(s.GetContext(), "acme", s.monthlyRequest())
	s.Require().NoError(err)
	s.Equal(types.StateCompleted, resp.State)
	s.Len(s.GetStores().BillingRepo.Credits(), 1)
	s.NotEmpty(s.GetCollaborators().Alert.Messages)
}

func (s *AgreementServiceSuite) TestMovementFailureAfterCommitKeepsCredit() {
	s.seedCardSubscriber("acme")
	s.seedInstrument("sub_acme")
	s.seedMonthlyPlan()

	s.GetStores().BillingRepo.CreateMovementErr = ierr.NewError("write failed").Mark(ierr.ErrDatabase)

	_, err := s.service.CreateAgreement(s.GetContext(), "acme", s.monthlyRequest())
	s.Require().Error(err)

	// The commit point already passed, billing state is not rolled back
	s.Len(s.GetStores().BillingRepo.Credits(), 1)
	sub, getErr := s.GetStores().SubscriberRepo.GetByAccountName(s.GetContext(), "acme")
	s.Require().NoError(getErr)
	s.Equal(types.PlanTypeMonthly, sub.PlanType)
}

func (s *AgreementServiceSuite) TestValidatesRequestBeforeAnyStep() {
	s.seedCardSubscriber("acme")

	req := &dto.CreateAgreementRequest{Total: decimal.NewFromInt(50)}
	_, err := s.service.CreateAgreement(s.GetContext(), "acme", req)
	s.Require().Error(err)
	s.True(ierr.IsValidation(err))

	req = &dto.CreateAgreementRequest{PlanID: "plan_monthly", Total: decimal.NewFromInt(-1)}
	_, err = s.service.CreateAgreement(s.GetContext(), "acme", req)
	s.Require().Error(err)
	s.True(ierr.IsValidation(err))
}

func (s *AgreementServiceSuite) TestUnknownAccountIsNotFound() {
	s.seedMonthlyPlan()

	_, err := s.service.CreateAgreement(s.GetContext(), "ghost", s.monthlyRequest())
	s.Require().Error(err)
	s.True(ierr.IsNotFound(err))
}

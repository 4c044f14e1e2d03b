package notification

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"github.com/mailbeam/billing/internal/domain/billing"
	"github.com/mailbeam/billing/internal/domain/plan"
	"github.com/mailbeam/billing/internal/testutil"
	"github.com/mailbeam/billing/internal/types"
)

type HandlerSuite struct {
	testutil.BaseServiceTestSuite
	handler *Handler
}

func TestHandler(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	stores := s.GetStores()
	collab := s.GetCollaborators()
	s.handler = NewHandler(
		stores.SubscriberRepo,
		stores.PlanRepo,
		stores.BillingRepo,
		collab.Email,
		collab.Alert,
		s.GetLogger(),
	)
}

func (s *HandlerSuite) newMessage(event *types.AgreementCompletedEvent) *message.Message {
	payload, err := json.Marshal(event)
	s.Require().NoError(err)
	return message.NewMessage(event.ID, payload)
}

func (s *HandlerSuite) seedUpgradedSubscriber(planType types.PlanType) {
	sub := testutil.NewCardSubscriber("acme")
	sub.PlanType = planType
	if planType == types.PlanTypeSubscribers {
		qty := 2500
		sub.MaxSubscribers = &qty
	}
	s.GetStores().SubscriberRepo.AddSubscriber(sub)
}

func (s *HandlerSuite) seedCredit(id string, total int64) {
	err := s.GetStores().BillingRepo.CreateBillingCredit(s.GetContext(), &billing.Credit{
		ID:           id,
		SubscriberID: "sub_acme",
		Total:        decimal.NewFromInt(total),
	})
	s.Require().NoError(err)
}

func (s *HandlerSuite) newEvent(planType types.PlanType) *types.AgreementCompletedEvent {
	return &types.AgreementCompletedEvent{
		ID:              "evt_1",
		AccountName:     "acme",
		SubscriberID:    "sub_acme",
		BillingCreditID: "bc_1",
		PlanID:          "plan_1",
		PlanType:        planType,
		PaymentMethod:   types.PaymentMethodCard,
		Timestamp:       time.Now().UTC(),
	}
}

func (s *HandlerSuite) TestIndividualPlanSendsCreditsEmail() {
	s.seedUpgradedSubscriber(types.PlanTypeIndividual)
	credits := 1500
	s.GetStores().PlanRepo.AddOffer(&plan.Offer{
		ID:        "plan_1",
		PlanType:  types.PlanTypeIndividual,
		CreditQty: &credits,
	})

	err := s.handler.Handle(s.newMessage(s.newEvent(types.PlanTypeIndividual)))
	s.Require().NoError(err)

	sends := s.GetCollaborators().Email.SendsOfKind("credits")
	s.Require().Len(sends, 1)
	s.Equal(1500, sends[0].Credits)
	s.Equal("acme@example.com", sends[0].To.Email)

	s.Empty(s.GetCollaborators().Email.SendsOfKind("upgrade"))
}

func (s *HandlerSuite) TestMonthlyPlanSendsUpgradeEmail() {
	s.seedUpgradedSubscriber(types.PlanTypeMonthly)
	s.seedCredit("bc_1", 50)

	err := s.handler.Handle(s.newMessage(s.newEvent(types.PlanTypeMonthly)))
	s.Require().NoError(err)

	sends := s.GetCollaborators().Email.SendsOfKind("upgrade")
	s.Require().Len(sends, 1)
	s.True(sends[0].Upgrade.Fee.Equal(decimal.NewFromInt(50)))
	s.False(sends[0].Upgrade.UpgradePending)

	s.Empty(s.GetCollaborators().Email.SendsOfKind("subscribers_plan"))
}

func (s *HandlerSuite) TestUpgradeEmailCarriesDiscountMetadata() {
	s.seedUpgradedSubscriber(types.PlanTypeMonthly)
	s.seedCredit("bc_1", 50)
	s.GetStores().BillingRepo.AddDiscount(&billing.DiscountInfo{
		ID:           "disc_1",
		Description:  "3 months half price",
		Percentage:   decimal.NewFromInt(50),
		MonthsAmount: 3,
	})

	event := s.newEvent(types.PlanTypeMonthly)
	event.DiscountID = "disc_1"

	err := s.handler.Handle(s.newMessage(event))
	s.Require().NoError(err)

	sends := s.GetCollaborators().Email.SendsOfKind("upgrade")
	s.Require().Len(sends, 1)
	s.Equal("3 months half price", sends[0].Upgrade.DiscountDescription)
	s.Equal(3, sends[0].Upgrade.DiscountMonths)
}

func (s *HandlerSuite) TestMissingDiscountDoesNotFailTheEmail() {
	s.seedUpgradedSubscriber(types.PlanTypeMonthly)
	s.seedCredit("bc_1", 50)

	event := s.newEvent(types.PlanTypeMonthly)
	event.DiscountID = "disc_gone"

	err := s.handler.Handle(s.newMessage(event))
	s.Require().NoError(err)

	sends := s.GetCollaborators().Email.SendsOfKind("upgrade")
	s.Require().Len(sends, 1)
	s.Empty(sends[0].Upgrade.DiscountDescription)
}

func (s *HandlerSuite) TestSubscribersPlanSendsBothEmails() {
	s.seedUpgradedSubscriber(types.PlanTypeSubscribers)
	s.seedCredit("bc_1", 80)

	err := s.handler.Handle(s.newMessage(s.newEvent(types.PlanTypeSubscribers)))
	s.Require().NoError(err)

	planSends := s.GetCollaborators().Email.SendsOfKind("subscribers_plan")
	s.Require().Len(planSends, 1)
	s.Equal(2500, planSends[0].MaxSubs)

	s.Len(s.GetCollaborators().Email.SendsOfKind("upgrade"), 1)
}

func (s *HandlerSuite) TestPendingUpgradeSuppressesSubscribersPlanEmail() {
	s.seedUpgradedSubscriber(types.PlanTypeSubscribers)
	s.seedCredit("bc_1", 80)

	event := s.newEvent(types.PlanTypeSubscribers)
	event.PaymentMethod = types.PaymentMethodTransfer
	event.UpgradePending = true

	err := s.handler.Handle(s.newMessage(event))
	s.Require().NoError(err)

	s.Empty(s.GetCollaborators().Email.SendsOfKind("subscribers_plan"))

	sends := s.GetCollaborators().Email.SendsOfKind("upgrade")
	s.Require().Len(sends, 1)
	s.True(sends[0].Upgrade.UpgradePending)
}

func (s *HandlerSuite) TestAlertSummaryMentionsPromoAndPending() {
	s.seedUpgradedSubscriber(types.PlanTypeMonthly)
	s.seedCredit("bc_1", 50)

	event := s.newEvent(types.PlanTypeMonthly)
	event.PromoCode = "SAVE10"
	event.UpgradePending = true

	err := s.handler.Handle(s.newMessage(event))
	s.Require().NoError(err)

	messages := s.GetCollaborators().Alert.Messages
	s.Require().Len(messages, 1)
	s.Contains(messages[0], "acme")
	s.Contains(messages[0], "SAVE10")
	s.Contains(messages[0], "payment pending")
}

func (s *HandlerSuite) TestMalformedPayloadIsRejected() {
	msg := message.NewMessage("bad", []byte("{not json"))
	err := s.handler.Handle(msg)
	s.Require().Error(err)
}

func (s *HandlerSuite) TestUnknownAccountPropagatesError() {
	err := s.handler.Handle(s.newMessage(s.newEvent(types.PlanTypeMonthly)))
	s.Require().Error(err)
	s.Empty(s.GetCollaborators().Email.SendsOfKind("upgrade"))
}

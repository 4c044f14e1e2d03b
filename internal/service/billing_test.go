package service

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"github.com/mailbeam/billing/internal/api/dto"
	"github.com/mailbeam/billing/internal/domain/plan"
	"github.com/mailbeam/billing/internal/domain/subscriber"
	ierr "github.com/mailbeam/billing/internal/errors"
	"github.com/mailbeam/billing/internal/testutil"
	"github.com/mailbeam/billing/internal/types"
)

type BillingServiceSuite struct {
	testutil.BaseServiceTestSuite
	service BillingService
}

func TestBillingService(t *testing.T) {
	suite.Run(t, new(BillingServiceSuite))
}

func (s *BillingServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	stores := s.GetStores()
	params := ServiceParams{
		Logger:            s.GetLogger(),
		Config:            s.GetConfig(),
		SubscriberRepo:    stores.SubscriberRepo,
		PlanRepo:          stores.PlanRepo,
		EncryptionService: s.GetEncryption(),
	}
	s.service = NewBillingService(params)
}

func (s *BillingServiceSuite) seedSubscriber(accountName string) *subscriber.Subscriber {
	sub := testutil.NewCardSubscriber(accountName)
	sub.AvailableCredit = decimal.NewFromInt(25)
	s.GetStores().SubscriberRepo.AddSubscriber(sub)
	return sub
}

func (s *BillingServiceSuite) TestGetBillingProfile() {
	sub := s.seedSubscriber("acme")
	address := "742 Evergreen Terrace"
	sub.Address = &address

	resp, err := s.service.GetBillingProfile(context.Background(), "acme")
	s.NoError(err)
	s.Equal("acme", resp.AccountName)
	s.Equal("acme@example.com", resp.Email)
	s.Equal(types.PaymentMethodCard, resp.PaymentMethod)
	s.Equal(types.CountryArgentina, resp.BillingCountry)
	s.Require().NotNil(resp.Address)
	s.Equal(address, *resp.Address)
	s.True(decimal.NewFromInt(25).Equal(resp.AvailableCredit))
}

func (s *BillingServiceSuite) TestGetBillingProfileUnknownAccount() {
	_, err := s.service.GetBillingProfile(context.Background(), "ghost")
	s.Error(err)
	s.True(ierr.IsNotFound(err))
}

func (s *BillingServiceSuite) TestGetCurrentPlanOnFreeTierIsNotFound() {
	s.seedSubscriber("acme")

	_, err := s.service.GetCurrentPlan(context.Background(), "acme")
	s.Error(err)
	s.True(ierr.IsNotFound(err))
}

func (s *BillingServiceSuite) TestGetCurrentPlan() {
	sub := s.seedSubscriber("acme")
	credits := 500
	s.GetStores().PlanRepo.AddOffer(&plan.Offer{
		ID:        "plan_monthly",
		PlanType:  types.PlanTypeMonthly,
		Fee:       decimal.NewFromInt(50),
		CreditQty: &credits,
	})
	planID := "plan_monthly"
	sub.CurrentPlanID = &planID
	sub.PlanType = types.PlanTypeMonthly

	resp, err := s.service.GetCurrentPlan(context.Background(), "acme")
	s.NoError(err)
	s.Equal("plan_monthly", resp.PlanID)
	s.Equal(types.PlanTypeMonthly, resp.PlanType)
	s.True(decimal.NewFromInt(50).Equal(resp.Fee))
	s.Require().NotNil(resp.CreditQty)
	s.Equal(500, *resp.CreditQty)
}

func (s *BillingServiceSuite) TestUpdateBillingInformation() {
	s.seedSubscriber("acme")

	resp, err := s.service.UpdateBillingInformation(context.Background(), "acme", &dto.UpdateBillingInformationRequest{
		BillingCountry: "co",
		Address:        "Calle 93 11-27",
		City:           "Bogota",
		ZipCode:        "110221",
	})
	s.NoError(err)
	s.Equal(types.CountryColombia, resp.BillingCountry)
	s.Require().NotNil(resp.Address)
	s.Equal("Calle 93 11-27", *resp.Address)
	s.Require().NotNil(resp.City)
	s.Equal("Bogota", *resp.City)
	s.Nil(resp.Province)

	sub, err := s.GetStores().SubscriberRepo.GetByAccountName(context.Background(), "acme")
	s.Require().NoError(err)
	s.Equal(types.CountryColombia, sub.BillingCountry)
	s.Require().NotNil(sub.ZipCode)
	s.Equal("110221", *sub.ZipCode)
}

func (s *BillingServiceSuite) TestUpdateBillingInformationRejectsBadCountry() {
	s.seedSubscriber("acme")

	_, err := s.service.UpdateBillingInformation(context.Background(), "acme", &dto.UpdateBillingInformationRequest{
		BillingCountry: "argentina",
	})
	s.Error(err)
	s.True(ierr.IsValidation(err))
}

func (s *BillingServiceSuite) TestGetPaymentMethodWithoutInstrument() {
	s.seedSubscriber("acme")

	resp, err := s.service.GetPaymentMethod(context.Background(), "acme")
	s.NoError(err)
	s.Equal(types.PaymentMethodCard, resp.PaymentMethod)
	s.Empty(resp.LastFour)
	s.Empty(resp.Brand)
}

func (s *BillingServiceSuite) TestGetPaymentMethodWithInstrument() {
	s.seedSubscriber("acme")
	s.GetStores().SubscriberRepo.AddInstrument(&subscriber.PaymentInstrument{
		ID:           "pi_1",
		SubscriberID: "sub_acme",
		ExpiryMonth:  12,
		ExpiryYear:   2030,
		LastFour:     "1111",
		Brand:        "visa",
		BaseModel:    types.GetDefaultBaseModel(context.Background()),
	})

	resp, err := s.service.GetPaymentMethod(context.Background(), "acme")
	s.NoError(err)
	s.Equal(types.PaymentMethodCard, resp.PaymentMethod)
	s.Equal("1111", resp.LastFour)
	s.Equal("visa", resp.Brand)
	s.Equal(12, resp.ExpiryMonth)
	s.Equal(2030, resp.ExpiryYear)
}

func (s *BillingServiceSuite) TestUpdatePaymentMethodWithCard() {
	s.seedSubscriber("acme")

	resp, err := s.service.UpdatePaymentMethod(context.Background(), "acme", &dto.UpdatePaymentMethodRequest{
		PaymentMethod: types.PaymentMethodCard,
		Card: &dto.CardRequest{
			Number:      "4111111111111111",
			HolderName:  "Jane Roe",
			ExpiryMonth: 12,
			ExpiryYear:  2031,
			Brand:       "visa",
		},
	})
	s.NoError(err)
	s.Equal(types.PaymentMethodCard, resp.PaymentMethod)
	s.Equal("1111", resp.LastFour)
	s.Equal("visa", resp.Brand)

	instrument, err := s.GetStores().SubscriberRepo.GetPaymentInstrument(context.Background(), "sub_acme")
	s.Require().NoError(err)
	s.NotEqual("4111111111111111", instrument.Number)

	number, err := s.GetEncryption().Decrypt(instrument.Number)
	s.Require().NoError(err)
	s.Equal("4111111111111111", number)
	holder, err := s.GetEncryption().Decrypt(instrument.HolderName)
	s.Require().NoError(err)
	s.Equal("Jane Roe", holder)
}

func (s *BillingServiceSuite) TestUpdatePaymentMethodToTransfer() {
	s.seedSubscriber("acme")

	resp, err := s.service.UpdatePaymentMethod(context.Background(), "acme", &dto.UpdatePaymentMethodRequest{
		PaymentMethod: types.PaymentMethodTransfer,
	})
	s.NoError(err)
	s.Equal(types.PaymentMethodTransfer, resp.PaymentMethod)
	s.Empty(resp.LastFour)

	sub, err := s.GetStores().SubscriberRepo.GetByAccountName(context.Background(), "acme")
	s.Require().NoError(err)
	s.Equal(types.PaymentMethodTransfer, sub.PaymentMethod)
}

func (s *BillingServiceSuite) TestUpdatePaymentMethodCardRequiresDetails() {
	s.seedSubscriber("acme")

	_, err := s.service.UpdatePaymentMethod(context.Background(), "acme", &dto.UpdatePaymentMethodRequest{
		PaymentMethod: types.PaymentMethodCard,
	})
	s.Error(err)
	s.True(ierr.IsValidation(err))
}

func (s *BillingServiceSuite) TestUpdatePaymentMethodRejectsUnknownMethod() {
	s.seedSubscriber("acme")

	_, err := s.service.UpdatePaymentMethod(context.Background(), "acme", &dto.UpdatePaymentMethodRequest{
		PaymentMethod: types.PaymentMethod("BARTER"),
	})
	s.Error(err)
	s.True(ierr.IsValidation(err))
}

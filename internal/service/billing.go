package service

import (
	"context"
	"strings"
	"time"

	"github.com/mailbeam/billing/internal/api/dto"
	"github.com/mailbeam/billing/internal/domain/subscriber"
	ierr "github.com/mailbeam/billing/internal/errors"
	"github.com/mailbeam/billing/internal/types"
)

// BillingService serves the billing profile: the read side plus the
// self-service updates of billing information and payment method.
type BillingService interface {
	GetBillingProfile(ctx context.Context, accountName string) (*dto.BillingProfileResponse, error)
	GetCurrentPlan(ctx context.Context, accountName string) (*dto.CurrentPlanResponse, error)
	UpdateBillingInformation(ctx context.Context, accountName string, req *dto.UpdateBillingInformationRequest) (*dto.BillingProfileResponse, error)
	GetPaymentMethod(ctx context.Context, accountName string) (*dto.PaymentMethodResponse, error)
	UpdatePaymentMethod(ctx context.Context, accountName string, req *dto.UpdatePaymentMethodRequest) (*dto.PaymentMethodResponse, error)
}

type billingService struct {
	ServiceParams
}

// NewBillingService creates the billing profile read service.
func NewBillingService(params ServiceParams) BillingService {
	return &billingService{ServiceParams: params}
}

func (s *billingService) GetBillingProfile(ctx context.Context, accountName string) (*dto.BillingProfileResponse, error) {
	sub, err := s.SubscriberRepo.GetByAccountName(ctx, accountName)
	if err != nil {
		return nil, err
	}
	return s.toProfileResponse(sub), nil
}

func (s *billingService) toProfileResponse(sub *subscriber.Subscriber) *dto.BillingProfileResponse {
	return &dto.BillingProfileResponse{
		AccountName:        sub.AccountName,
		Email:              sub.Email,
		PaymentMethod:      sub.PaymentMethod,
		BillingCountry:     sub.BillingCountry,
		Address:            sub.Address,
		City:               sub.City,
		ZipCode:            sub.ZipCode,
		Province:           sub.Province,
		PlanType:           sub.PlanType,
		ResponsibleBilling: sub.ResponsibleBilling,
		AvailableCredit:    sub.AvailableCredit,
		UpgradePending:     sub.UpgradePending,
		MaxSubscribers:     sub.MaxSubscribers,
		UpgradedAt:         sub.UpgradedAt,
	}
}

func (s *billingService) GetCurrentPlan(ctx context.Context, accountName string) (*dto.CurrentPlanResponse, error) {
	sub, err := s.SubscriberRepo.GetByAccountName(ctx, accountName)
	if err != nil {
		return nil, err
	}

	if sub.CurrentPlanID == nil {
		return nil, ierr.NewError("account has no active plan").
			WithHint("The account is on the free tier").
			WithReportableDetails(map[string]any{
				"account_name": accountName,
			}).
			Mark(ierr.ErrNotFound)
	}

	offer, err := s.PlanRepo.GetByID(ctx, *sub.CurrentPlanID)
	if err != nil {
		return nil, err
	}

	return &dto.CurrentPlanResponse{
		PlanID:        offer.ID,
		PlanType:      offer.PlanType,
		Fee:           offer.Fee,
		EmailQty:      offer.EmailQty,
		SubscriberQty: offer.SubscriberQty,
		CreditQty:     offer.CreditQty,
	}, nil
}

func (s *billingService) UpdateBillingInformation(ctx context.Context, accountName string, req *dto.UpdateBillingInformationRequest) (*dto.BillingProfileResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	sub, err := s.SubscriberRepo.GetByAccountName(ctx, accountName)
	if err != nil {
		return nil, err
	}

	sub.BillingCountry = types.Country(strings.ToUpper(req.BillingCountry))
	sub.Address = types.ToNillableString(req.Address)
	sub.City = types.ToNillableString(req.City)
	sub.ZipCode = types.ToNillableString(req.ZipCode)
	sub.Province = types.ToNillableString(req.Province)
	sub.UpdatedAt = time.Now().UTC()
	sub.UpdatedBy = types.GetUserID(ctx)

	if err := s.SubscriberRepo.UpdateBillingInformation(ctx, sub); err != nil {
		return nil, err
	}

	s.Logger.Infow("updated billing information",
		"account_name", accountName,
		"billing_country", sub.BillingCountry,
	)
	return s.toProfileResponse(sub), nil
}

func (s *billingService) GetPaymentMethod(ctx context.Context, accountName string) (*dto.PaymentMethodResponse, error) {
	sub, err := s.SubscriberRepo.GetByAccountName(ctx, accountName)
	if err != nil {
		return nil, err
	}

	resp := &dto.PaymentMethodResponse{PaymentMethod: sub.PaymentMethod}

	// A method without a stored instrument is a valid state; only real
	// failures propagate
	instrument, err := s.SubscriberRepo.GetPaymentInstrument(ctx, sub.ID)
	if err != nil {
		if ierr.IsNotFound(err) {
			return resp, nil
		}
		return nil, err
	}

	resp.LastFour = instrument.LastFour
	resp.Brand = instrument.Brand
	resp.ExpiryMonth = instrument.ExpiryMonth
	resp.ExpiryYear = instrument.ExpiryYear
	return resp, nil
}

func (s *billingService) UpdatePaymentMethod(ctx context.Context, accountName string, req *dto.UpdatePaymentMethodRequest) (*dto.PaymentMethodResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	sub, err := s.SubscriberRepo.GetByAccountName(ctx, accountName)
	if err != nil {
		return nil, err
	}

	resp := &dto.PaymentMethodResponse{PaymentMethod: req.PaymentMethod}

	if req.Card != nil {
		number, err := s.EncryptionService.Encrypt(req.Card.Number)
		if err != nil {
			return nil, err
		}
		holder, err := s.EncryptionService.Encrypt(req.Card.HolderName)
		if err != nil {
			return nil, err
		}

		instrument := &subscriber.PaymentInstrument{
			ID:           types.GenerateUUIDWithPrefix(types.UUID_PREFIX_PAYMENT_INSTRUMENT),
			SubscriberID: sub.ID,
			Number:       number,
			HolderName:   holder,
			ExpiryMonth:  req.Card.ExpiryMonth,
			ExpiryYear:   req.Card.ExpiryYear,
			LastFour:     req.Card.Number[len(req.Card.Number)-4:],
			Brand:        req.Card.Brand,
			BaseModel:    types.GetDefaultBaseModel(ctx),
		}
		if err := s.SubscriberRepo.CreatePaymentInstrument(ctx, instrument); err != nil {
			return nil, err
		}

		resp.LastFour = instrument.LastFour
		resp.Brand = instrument.Brand
		resp.ExpiryMonth = instrument.ExpiryMonth
		resp.ExpiryYear = instrument.ExpiryYear
	}

	sub.PaymentMethod = req.PaymentMethod
	sub.UpdatedAt = time.Now().UTC()
	sub.UpdatedBy = types.GetUserID(ctx)
	if err := s.SubscriberRepo.UpdatePaymentMethod(ctx, sub); err != nil {
		return nil, err
	}

	s.Logger.Infow("updated payment method",
		"account_name", accountName,
		"payment_method", req.PaymentMethod,
	)
	return resp, nil
}

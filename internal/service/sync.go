package service

import (
	"context"
	"time"

	"github.com/mailbeam/billing/internal/domain/billing"
	"github.com/mailbeam/billing/internal/domain/plan"
	"github.com/mailbeam/billing/internal/domain/subscriber"
	"github.com/mailbeam/billing/internal/integration/crm"
	"github.com/mailbeam/billing/internal/integration/invoicing"
	"github.com/mailbeam/billing/internal/types"
)

// SyncRequest carries the committed run data the external systems need.
type SyncRequest struct {
	Subscriber *subscriber.Subscriber

	// Card is the decrypted instrument, present only when the run
	// settled a card charge
	Card *subscriber.Card

	Credit    *billing.Credit
	PriorPlan *plan.Offer // nil when upgrading from the free tier
	NewPlan   *plan.Offer

	AuthToken string
	InvoiceID string

	PromoCode      string
	UpgradePending bool
}

// SyncService propagates a committed upgrade to the invoicing system and
// the CRM. Every failure here is absorbed: logged, alerted and dropped.
// Nothing after the commit point rolls billing state back.
type SyncService interface {
	DispatchUpgradeSync(ctx context.Context, req *SyncRequest)
}

type syncService struct {
	ServiceParams
}

// NewSyncService creates the external sync dispatcher.
func NewSyncService(params ServiceParams) SyncService {
	return &syncService{ServiceParams: params}
}

func (s *syncService) DispatchUpgradeSync(ctx context.Context, req *SyncRequest) {
	if req.Card != nil && req.Credit.Total.IsPositive() {
		s.pushInvoicing(ctx, req)
	}

	if req.Subscriber.ResponsibleBilling.IsCRMManaged() {
		s.syncCRM(ctx, req)
	}
}

func (s *syncService) pushInvoicing(ctx context.Context, req *SyncRequest) {
	payload := &invoicing.Payload{
		InvoiceID:          req.InvoiceID,
		AccountName:        req.Subscriber.AccountName,
		Email:              req.Subscriber.Email,
		FirstName:          req.Subscriber.FirstName,
		CardNumber:         req.Card.Number,
		CardHolder:         req.Card.HolderName,
		BillingCreditID:    req.Credit.ID,
		Amount:             req.Credit.Total,
		AuthorizationToken: req.AuthToken,
		PriorPlanType:      types.PlanTypeFree,
		NewPlanType:        req.NewPlan.PlanType,
		NewPlanID:          req.NewPlan.ID,
		TransactionDate:    time.Now().UTC(),
	}
	if req.PriorPlan != nil {
		payload.PriorPlanType = req.PriorPlan.PlanType
		payload.PriorPlanID = &req.PriorPlan.ID
	}

	if err := s.InvoicingClient.Push(ctx, payload); err != nil {
		s.Logger.Errorw("invoicing push failed",
			"error", err,
			"account_name", req.Subscriber.AccountName,
			"invoice_id", req.InvoiceID,
		)
		s.AlertService.NotifyError(ctx, "invoicing sync", err)
	}
}

func (s *syncService) syncCRM(ctx context.Context, req *SyncRequest) {
	projection := &crm.UpgradeProjection{
		PlanType:       req.NewPlan.PlanType.String(),
		PlanFee:        req.NewPlan.Fee,
		PaymentMethod:  req.Subscriber.PaymentMethod.String(),
		PromoCode:      req.PromoCode,
		UpgradePending: req.UpgradePending,
		UpgradeDate:    time.Now().UTC(),
	}

	contact, err := s.CRMClient.FindContactByEmail(ctx, req.Subscriber.Email)
	if err != nil {
		s.absorbCRM(ctx, req, "contact lookup", err)
		return
	}

	// An existing contact always ends the branch here; leads are only
	// searched when no contact matches at all
	if contact != nil {
		if contact.AccountName == "" {
			s.Logger.Warnw("CRM contact has no linked account, skipping sync",
				"account_name", req.Subscriber.AccountName,
				"crm_contact", contact.ID,
			)
			return
		}
		account, err := s.CRMClient.FindAccountByName(ctx, contact.AccountName)
		if err != nil {
			s.absorbCRM(ctx, req, "account lookup", err)
			return
		}
		if account == nil {
			s.Logger.Warnw("CRM contact has no resolvable account, skipping sync",
				"account_name", req.Subscriber.AccountName,
				"crm_account", contact.AccountName,
			)
			return
		}
		if err := s.CRMClient.UpdateEntity(ctx, crm.ModuleAccounts, account.ID, projection); err != nil {
			s.absorbCRM(ctx, req, "account update", err)
		}
		return
	}

	lead, err := s.CRMClient.FindLeadByEmail(ctx, req.Subscriber.Email)
	if err != nil {
		s.absorbCRM(ctx, req, "lead lookup", err)
		return
	}
	if lead == nil {
		s.Logger.Warnw("no CRM contact or lead matches subscriber, skipping sync",
			"account_name", req.Subscriber.AccountName,
		)
		return
	}
	if err := s.CRMClient.UpdateEntity(ctx, crm.ModuleLeads, lead.ID, projection); err != nil {
		s.absorbCRM(ctx, req, "lead update", err)
	}
}

func (s *syncService) absorbCRM(ctx context.Context, req *SyncRequest, scope string, err error) {
	s.Logger.Errorw("CRM sync failed",
		"error", err,
		"scope", scope,
		"account_name", req.Subscriber.AccountName,
	)
	s.AlertService.NotifyError(ctx, "CRM "+scope, err)
}

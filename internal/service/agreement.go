package service

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mailbeam/billing/internal/api/dto"
	"github.com/mailbeam/billing/internal/domain/billing"
	"github.com/mailbeam/billing/internal/domain/plan"
	"github.com/mailbeam/billing/internal/domain/promotion"
	"github.com/mailbeam/billing/internal/domain/subscriber"
	"github.com/mailbeam/billing/internal/email"
	ierr "github.com/mailbeam/billing/internal/errors"
	"github.com/mailbeam/billing/internal/integration/gateway"
	"github.com/mailbeam/billing/internal/types"
)

// AgreementService runs the agreement creation workflow: a strictly
// sequential sequence of steps with an asymmetric failure policy. Steps
// up to the ledger commit abort the run; the billing credit write is the
// commit point; later steps absorb their failures and never roll back
// committed billing state.
type AgreementService interface {
	CreateAgreement(ctx context.Context, accountName string, req *dto.CreateAgreementRequest) (*dto.CreateAgreementResponse, error)
}

type agreementService struct {
	ServiceParams
	syncSvc SyncService
}

// NewAgreementService creates the agreement workflow orchestrator.
func NewAgreementService(params ServiceParams, syncSvc SyncService) AgreementService {
	return &agreementService{
		ServiceParams: params,
		syncSvc:       syncSvc,
	}
}

// agreementRun is the mutable context of a single workflow run. Steps
// read what earlier steps produced and write what later steps need.
type agreementRun struct {
	id          string
	accountName string
	req         *dto.CreateAgreementRequest

	state types.AgreementRunState

	sub         *subscriber.Subscriber
	currentPlan *plan.Offer // nil when upgrading from the free tier
	newPlan     *plan.Offer
	promo       *promotion.Promotion

	card      *subscriber.Card
	authToken string
	invoiceID string

	credit         *billing.Credit
	creditID       string
	partialBalance decimal.Decimal
	upgradePending bool
}

// step is one named unit of the workflow. Steps with absorb set run
// after the commit point; their failures are logged and alerted but
// never abort the run.
type step struct {
	name   string
	state  types.AgreementRunState
	absorb bool
	run    func(ctx context.Context, r *agreementRun) error
}

func (s *agreementService) steps() []step {
	return []step{
		{"validate_subscriber", types.StateValidating, false, s.validateSubscriber},
		{"resolve_plan", types.StateResolvingPlan, false, s.resolvePlan},
		{"resolve_promotion", types.StateResolvingPromotion, false, s.resolvePromotion},
		{"charge_payment", types.StateCharging, false, s.chargePayment},
		{"commit_ledger", types.StateCommittingLedger, false, s.commitLedger},
		{"activate_or_carry_balance", types.StatePostCommitBranch, false, s.postCommitBranch},
		{"sync_external", types.StateSyncingExternal, true, s.syncExternal},
		{"notify", types.StateNotifying, true, s.notify},
	}
}

func (s *agreementService) CreateAgreement(ctx context.Context, accountName string, req *dto.CreateAgreementRequest) (resp *dto.CreateAgreementResponse, err error) {
	run := &agreementRun{
		id:          types.GenerateUUIDWithPrefix(types.UUID_PREFIX_AGREEMENT),
		accountName: accountName,
		req:         req,
		state:       types.StateValidating,
	}

	// Outermost catch: anything unexpected becomes a captured, alerted
	// system error instead of tearing the process down
	defer func() {
		if p := recover(); p != nil {
			run.state = types.StateFailed
			err = ierr.NewError(fmt.Sprintf("panic in agreement workflow: %v", p)).
				WithHint("Something went wrong creating the agreement").
				Mark(ierr.ErrSystem)
			s.Sentry.CaptureException(err)
			s.Logger.Errorw("agreement workflow panicked",
				"agreement_id", run.id,
				"account_name", accountName,
				"panic", p,
			)
			s.AlertService.NotifyError(ctx, "agreement workflow panic", err)
			resp = nil
		}
	}()

	if err := req.Validate(); err != nil {
		return nil, err
	}

	s.Logger.Infow("starting agreement creation",
		"agreement_id", run.id,
		"account_name", accountName,
		"plan_id", req.PlanID,
	)

	for _, st := range s.steps() {
		run.state = st.state
		stepErr := st.run(ctx, run)
		if stepErr == nil {
			continue
		}
		if st.absorb {
			s.Logger.Errorw("post-commit step failed, continuing",
				"agreement_id", run.id,
				"account_name", accountName,
				"step", st.name,
				"error", stepErr,
			)
			s.AlertService.NotifyError(ctx, fmt.Sprintf("agreement %s step", st.name), stepErr)
			continue
		}
		return nil, s.abort(ctx, run, st.name, stepErr)
	}

	run.state = types.StateCompleted
	s.Logger.Infow("agreement created",
		"agreement_id", run.id,
		"account_name", accountName,
		"billing_credit_id", run.creditID,
		"upgrade_pending", run.upgradePending,
	)

	resp = &dto.CreateAgreementResponse{
		AgreementID:     run.id,
		BillingCreditID: run.creditID,
		PlanID:          run.newPlan.ID,
		PlanType:        run.newPlan.PlanType,
		Total:           run.req.Total,
		UpgradePending:  run.upgradePending,
		State:           run.state,
	}
	if run.invoiceID != "" {
		resp.InvoiceID = &run.invoiceID
	}
	return resp, nil
}

// abort classifies a failed pre-commit step and closes out the run.
// Rejections and declined charges end in StateRejected; everything else
// is unexpected and ends in StateFailed.
func (s *agreementService) abort(ctx context.Context, run *agreementRun, stepName string, err error) error {
	if ierr.IsRejection(err) || ierr.IsPaymentDeclined(err) {
		run.state = types.StateRejected
		s.Logger.Infow("agreement rejected",
			"agreement_id", run.id,
			"account_name", run.accountName,
			"step", stepName,
			"error", err,
		)
		s.AlertService.Notify(ctx, fmt.Sprintf(
			"agreement for account %s rejected at %s: %v", run.accountName, stepName, err))
		return err
	}

	run.state = types.StateFailed
	s.Sentry.CaptureException(err)
	s.Logger.Errorw("agreement failed",
		"agreement_id", run.id,
		"account_name", run.accountName,
		"step", stepName,
		"error", err,
	)
	s.AlertService.NotifyError(ctx, fmt.Sprintf("agreement %s step", stepName), err)
	return err
}

func (s *agreementService) validateSubscriber(ctx context.Context, run *agreementRun) error {
	sub, err := s.SubscriberRepo.GetByAccountName(ctx, run.accountName)
	if err != nil {
		return err
	}
	run.sub = sub

	if rej := CheckSubscriber(sub); rej != nil {
		return rej.ToError()
	}
	return nil
}

func (s *agreementService) resolvePlan(ctx context.Context, run *agreementRun) error {
	if run.sub.CurrentPlanID != nil {
		current, err := s.PlanRepo.GetByID(ctx, *run.sub.CurrentPlanID)
		if err != nil {
			return err
		}
		run.currentPlan = current
	}

	offer, err := s.PlanRepo.GetByID(ctx, run.req.PlanID)
	if err != nil {
		if ierr.IsNotFound(err) {
			return ierr.WithError(err).
				WithHint("The requested plan does not exist").
				WithReportableDetails(map[string]any{
					"reason":  types.RejectionInvalidPlan.String(),
					"plan_id": run.req.PlanID,
				}).
				Mark(ierr.ErrNotFound)
		}
		return err
	}

	if rej := CheckPlanOffer(offer); rej != nil {
		return rej.ToError()
	}
	run.newPlan = offer
	return nil
}

func (s *agreementService) resolvePromotion(ctx context.Context, run *agreementRun) error {
	// No promo code on the request means no promotion, not an error
	if run.req.PromoCode == "" {
		return nil
	}

	promo, err := s.PromotionRepo.GetValidByCode(ctx, run.req.PromoCode, run.req.PlanID)
	if err != nil {
		if ierr.IsNotFound(err) {
			return ierr.NewError("promo code is not valid").
				WithHint("The promo code is not valid for this purchase").
				WithReportableDetails(map[string]any{
					"reason":    types.RejectionInvalidPromotion.String(),
					"promocode": run.req.PromoCode,
				}).
				Mark(ierr.ErrValidation)
		}
		return err
	}
	run.promo = promo
	return nil
}

// chargePayment settles the fee through the gateway. Only card runs with
// a positive total charge; transfers settle out of band.
func (s *agreementService) chargePayment(ctx context.Context, run *agreementRun) error {
	if run.sub.PaymentMethod != types.PaymentMethodCard || !run.req.Total.IsPositive() {
		return nil
	}

	instrument, err := s.SubscriberRepo.GetPaymentInstrument(ctx, run.sub.ID)
	if err != nil {
		if ierr.IsNotFound(err) {
			// A card subscriber without a stored instrument is a data
			// integrity problem, not a client mistake
			return ierr.WithError(err).
				WithHint("Something went wrong creating the agreement").
				WithReportableDetails(map[string]any{
					"reason": types.RejectionMissingPaymentInstrument.String(),
				}).
				Mark(ierr.ErrSystem)
		}
		return err
	}

	number, err := s.EncryptionService.Decrypt(instrument.Number)
	if err != nil {
		return err
	}
	holder, err := s.EncryptionService.Decrypt(instrument.HolderName)
	if err != nil {
		return err
	}
	run.card = &subscriber.Card{
		Number:      number,
		HolderName:  holder,
		ExpiryMonth: instrument.ExpiryMonth,
		ExpiryYear:  instrument.ExpiryYear,
		Brand:       instrument.Brand,
	}

	token, err := s.GatewayClient.Charge(ctx, &gateway.ChargeRequest{
		SubscriberID: run.sub.ID,
		AccountName:  run.accountName,
		Amount:       run.req.Total,
		Card:         run.card,
	})
	if err != nil {
		return err
	}
	run.authToken = token
	run.invoiceID = types.GenerateShortIDWithPrefix(types.SHORT_ID_PREFIX_INVOICE)

	now := time.Now().UTC()
	base := types.GetDefaultBaseModel(ctx)
	entries := []*billing.AccountingEntry{
		{
			ID:            types.GenerateUUIDWithPrefix(types.UUID_PREFIX_ACCOUNTING_ENTRY),
			InvoiceID:     run.invoiceID,
			SubscriberID:  run.sub.ID,
			EntryType:     billing.AccountingEntryInvoice,
			Amount:        run.req.Total,
			PaymentMethod: run.sub.PaymentMethod,
			Date:          now,
			BaseModel:     base,
		},
		{
			ID:                 types.GenerateUUIDWithPrefix(types.UUID_PREFIX_ACCOUNTING_ENTRY),
			InvoiceID:          run.invoiceID,
			SubscriberID:       run.sub.ID,
			EntryType:          billing.AccountingEntryPayment,
			Amount:             run.req.Total,
			PaymentMethod:      run.sub.PaymentMethod,
			AuthorizationToken: &run.authToken,
			Date:               now,
			BaseModel:          base,
		},
	}
	return s.BillingRepo.CreateAccountingEntries(ctx, entries)
}

// commitLedger writes the billing credit and updates the subscriber.
// The credit write is the commit point of the whole workflow.
func (s *agreementService) commitLedger(ctx context.Context, run *agreementRun) error {
	run.partialBalance = run.sub.AvailableCredit
	run.upgradePending = billing.IsUpgradePending(run.sub.PaymentMethod, run.promo)

	credit := &billing.Credit{
		ID:            types.GenerateUUIDWithPrefix(types.UUID_PREFIX_BILLING_CREDIT),
		SubscriberID:  run.sub.ID,
		PlanID:        run.newPlan.ID,
		PlanType:      run.newPlan.PlanType,
		PaymentMethod: run.sub.PaymentMethod,
		Total:         run.req.Total,
		BaseModel:     types.GetDefaultBaseModel(ctx),
	}
	if run.promo != nil {
		credit.PromotionID = &run.promo.ID
	}
	if run.req.DiscountID != "" {
		credit.DiscountID = &run.req.DiscountID
	}
	if run.invoiceID != "" {
		credit.InvoiceID = &run.invoiceID
	}
	if run.authToken != "" {
		credit.AuthorizationToken = &run.authToken
	}

	if err := s.BillingRepo.CreateBillingCredit(ctx, credit); err != nil {
		return err
	}
	run.credit = credit
	run.creditID = credit.ID

	now := time.Now().UTC()
	sub := run.sub
	sub.PlanType = run.newPlan.PlanType
	sub.CurrentPlanID = &run.newPlan.ID
	sub.CurrentBillingCreditID = &credit.ID
	sub.UpgradePending = run.upgradePending
	// Upgrade and first payment timestamps are written together once the
	// fee is settled; a pending transfer leaves both unset
	if !run.upgradePending {
		sub.UpgradedAt = &now
		if sub.FirstPaymentAt == nil {
			sub.FirstPaymentAt = &now
		}
	}
	if run.newPlan.PlanType == types.PlanTypeSubscribers && run.newPlan.SubscriberQty != nil {
		sub.MaxSubscribers = run.newPlan.SubscriberQty
	}
	if run.newPlan.CreditQty != nil {
		sub.AvailableCredit = sub.AvailableCredit.Add(decimal.NewFromInt(int64(*run.newPlan.CreditQty)))
	}
	if run.promo != nil && run.promo.ExtraCredits != nil {
		sub.AvailableCredit = sub.AvailableCredit.Add(decimal.NewFromInt(int64(*run.promo.ExtraCredits)))
	}
	if run.req.OriginInbound != "" {
		sub.OriginInbound = &run.req.OriginInbound
	}
	sub.UpdatedAt = now

	return s.SubscriberRepo.UpdateBillingState(ctx, sub)
}

// postCommitBranch runs exactly one of the two post-commit branches:
// subscriber limited plans activate stand-by contacts, everything else
// carries the pre-commit balance over as a movement credit. Promotion
// usage is counted here, after the commit.
func (s *agreementService) postCommitBranch(ctx context.Context, run *agreementRun) error {
	if run.newPlan.PlanType == types.PlanTypeSubscribers {
		activated, err := s.BillingRepo.ActivateStandBySubscribers(ctx, run.sub.ID)
		if err != nil {
			return err
		}
		if activated > 0 {
			// Best-effort courtesy email, the branch does not depend on it
			sendErr := s.EmailService.SendStandByActivatedEmail(ctx, s.recipient(run), activated)
			if sendErr != nil {
				s.Logger.Errorw("failed to send stand-by activation email",
					"error", sendErr,
					"account_name", run.accountName,
				)
			}
		}
	} else {
		movement := &billing.MovementCredit{
			ID:              types.GenerateUUIDWithPrefix(types.UUID_PREFIX_MOVEMENT_CREDIT),
			SubscriberID:    run.sub.ID,
			BillingCreditID: run.creditID,
			PartialBalance:  run.partialBalance,
			Date:            time.Now().UTC(),
			BaseModel:       types.GetDefaultBaseModel(ctx),
		}
		if err := s.BillingRepo.CreateMovementCredit(ctx, movement); err != nil {
			return err
		}
	}

	if run.promo != nil {
		if err := s.PromotionRepo.IncrementUsage(ctx, run.promo.ID); err != nil {
			return err
		}
	}
	return nil
}

func (s *agreementService) syncExternal(ctx context.Context, run *agreementRun) error {
	s.syncSvc.DispatchUpgradeSync(ctx, &SyncRequest{
		Subscriber:     run.sub,
		Card:           run.card,
		Credit:         run.credit,
		PriorPlan:      run.currentPlan,
		NewPlan:        run.newPlan,
		AuthToken:      run.authToken,
		InvoiceID:      run.invoiceID,
		PromoCode:      run.req.PromoCode,
		UpgradePending: run.upgradePending,
	})
	return nil
}

func (s *agreementService) notify(ctx context.Context, run *agreementRun) error {
	event := &types.AgreementCompletedEvent{
		ID:              types.GenerateUUIDWithPrefix(types.UUID_PREFIX_NOTIFICATION_EVENT),
		AccountName:     run.accountName,
		SubscriberID:    run.sub.ID,
		BillingCreditID: run.creditID,
		PlanID:          run.newPlan.ID,
		PlanType:        run.newPlan.PlanType,
		PaymentMethod:   run.sub.PaymentMethod,
		PromoCode:       run.req.PromoCode,
		DiscountID:      run.req.DiscountID,
		UpgradePending:  run.upgradePending,
		PartialBalance:  run.partialBalance,
		Timestamp:       time.Now().UTC(),
	}
	return s.NotificationPublisher.PublishAgreementCompleted(ctx, event)
}

func (s *agreementService) recipient(run *agreementRun) *email.Recipient {
	return &email.Recipient{
		Email:     run.sub.Email,
		FirstName: run.sub.FirstName,
		Language:  run.sub.Language,
	}
}

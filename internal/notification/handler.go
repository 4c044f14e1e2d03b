package notification

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/mailbeam/billing/internal/alert"
	"github.com/mailbeam/billing/internal/domain/billing"
	"github.com/mailbeam/billing/internal/domain/plan"
	"github.com/mailbeam/billing/internal/domain/subscriber"
	"github.com/mailbeam/billing/internal/email"
	ierr "github.com/mailbeam/billing/internal/errors"
	"github.com/mailbeam/billing/internal/logger"
	"github.com/mailbeam/billing/internal/types"
)

// Handler consumes agreement completed events and performs the
// notification fan-out: the ops alert summary and the per-plan-type
// subscriber emails. It runs off the request path; its failures are
// observable only through logs and alerts.
type Handler struct {
	subscriberRepo subscriber.Repository
	planRepo       plan.Repository
	billingRepo    billing.Repository
	emailSvc       email.Service
	alertSvc       alert.Service
	logger         *logger.Logger
}

// NewHandler creates a notification handler.
func NewHandler(
	subscriberRepo subscriber.Repository,
	planRepo plan.Repository,
	billingRepo billing.Repository,
	emailSvc email.Service,
	alertSvc alert.Service,
	logger *logger.Logger,
) *Handler {
	return &Handler{
		subscriberRepo: subscriberRepo,
		planRepo:       planRepo,
		billingRepo:    billingRepo,
		emailSvc:       emailSvc,
		alertSvc:       alertSvc,
		logger:         logger,
	}
}

// Handle processes a single agreement completed event.
func (h *Handler) Handle(msg *message.Message) error {
	var event types.AgreementCompletedEvent
	if err := json.Unmarshal(msg.Payload, &event); err != nil {
		return ierr.WithError(err).
			WithHint("Failed to decode agreement event").
			Mark(ierr.ErrValidation)
	}

	ctx := msg.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	h.alertSvc.Notify(ctx, h.successSummary(&event))

	sub, err := h.subscriberRepo.GetByAccountName(ctx, event.AccountName)
	if err != nil {
		return err
	}

	to := &email.Recipient{
		Email:     sub.Email,
		FirstName: sub.FirstName,
		Language:  sub.Language,
	}

	if event.PlanType == types.PlanTypeIndividual {
		return h.sendCreditsEmail(ctx, &event, to)
	}
	return h.sendUpgradeEmails(ctx, &event, sub, to)
}

func (h *Handler) successSummary(event *types.AgreementCompletedEvent) string {
	summary := fmt.Sprintf(":tada: account %s upgraded to a %s plan via %s (credit %s)",
		event.AccountName, event.PlanType, event.PaymentMethod, event.BillingCreditID)
	if event.PromoCode != "" {
		summary += fmt.Sprintf(" with promo code %s", event.PromoCode)
	}
	if event.UpgradePending {
		summary += " (payment pending)"
	}
	return summary
}

func (h *Handler) sendCreditsEmail(ctx context.Context, event *types.AgreementCompletedEvent, to *email.Recipient) error {
	offer, err := h.planRepo.GetByID(ctx, event.PlanID)
	if err != nil {
		return err
	}
	credits := 0
	if offer.CreditQty != nil {
		credits = *offer.CreditQty
	}
	return h.emailSvc.SendCreditsEmail(ctx, to, credits)
}

func (h *Handler) sendUpgradeEmails(ctx context.Context, event *types.AgreementCompletedEvent, sub *subscriber.Subscriber, to *email.Recipient) error {
	if event.PlanType == types.PlanTypeSubscribers && !event.UpgradePending {
		maxSubscribers := 0
		if sub.MaxSubscribers != nil {
			maxSubscribers = *sub.MaxSubscribers
		}
		if err := h.emailSvc.SendSubscribersPlanEmail(ctx, to, maxSubscribers); err != nil {
			return err
		}
	}

	credit, err := h.billingRepo.GetBillingCredit(ctx, event.BillingCreditID)
	if err != nil {
		return err
	}

	data := &email.UpgradeData{
		PlanType:       string(event.PlanType),
		Fee:            credit.Total,
		UpgradePending: event.UpgradePending,
	}

	if event.DiscountID != "" {
		discount, err := h.billingRepo.GetDiscountInfo(ctx, event.DiscountID)
		if err != nil {
			h.logger.Errorw("failed to load discount info for upgrade email",
				"error", err,
				"discount_id", event.DiscountID,
			)
		} else {
			data.DiscountDescription = discount.Description
			data.DiscountPercentage = discount.Percentage
			data.DiscountMonths = discount.MonthsAmount
		}
	}

	return h.emailSvc.SendUpgradeEmail(ctx, to, data)
}

package email

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/mailbeam/billing/internal/config"
	ierr "github.com/mailbeam/billing/internal/errors"
	"github.com/mailbeam/billing/internal/httpclient"
	"github.com/mailbeam/billing/internal/logger"
)

// Recipient identifies the subscriber an email is addressed to.
type Recipient struct {
	Email     string
	FirstName string
	Language  string
}

// UpgradeData carries the template parameters of the upgrade email.
type UpgradeData struct {
	PlanType       string
	Fee            decimal.Decimal
	UpgradePending bool

	// Discount metadata, present only when the agreement carried one
	DiscountDescription string
	DiscountPercentage  decimal.Decimal
	DiscountMonths      int
}

// Service sends the transactional emails of the agreement workflow.
type Service interface {
	// SendCreditsEmail confirms an individual credit pack purchase
	SendCreditsEmail(ctx context.Context, to *Recipient, credits int) error

	// SendUpgradeEmail confirms a plan upgrade
	SendUpgradeEmail(ctx context.Context, to *Recipient, data *UpgradeData) error

	// SendSubscribersPlanEmail confirms an active subscriber limited plan
	SendSubscribersPlanEmail(ctx context.Context, to *Recipient, maxSubscribers int) error

	// SendStandByActivatedEmail reports how many stand-by contacts were
	// activated by the upgrade
	SendStandByActivatedEmail(ctx context.Context, to *Recipient, activated int) error
}

type sendPayload struct {
	TemplateID string         `json:"template_id"`
	To         string         `json:"to"`
	From       string         `json:"from"`
	Language   string         `json:"language,omitempty"`
	Params     map[string]any `json:"params,omitempty"`
}

type templateService struct {
	httpClient httpclient.Client
	cfg        *config.Configuration
	logger     *logger.Logger
}

// NewService creates the transactional email service.
func NewService(httpClient httpclient.Client, cfg *config.Configuration, logger *logger.Logger) Service {
	return &templateService{
		httpClient: httpClient,
		cfg:        cfg,
		logger:     logger,
	}
}

func (s *templateService) SendCreditsEmail(ctx context.Context, to *Recipient, credits int) error {
	return s.send(ctx, s.cfg.Email.CreditsTemplateID, to, map[string]any{
		"first_name": to.FirstName,
		"credits":    credits,
	})
}

func (s *templateService) SendUpgradeEmail(ctx context.Context, to *Recipient, data *UpgradeData) error {
	params := map[string]any{
		"first_name":      to.FirstName,
		"plan_type":       data.PlanType,
		"fee":             data.Fee.StringFixed(2),
		"upgrade_pending": data.UpgradePending,
	}
	if data.DiscountDescription != "" {
		params["discount_description"] = data.DiscountDescription
		params["discount_percentage"] = data.DiscountPercentage.String()
		params["discount_months"] = data.DiscountMonths
	}
	return s.send(ctx, s.cfg.Email.UpgradeTemplateID, to, params)
}

func (s *templateService) SendSubscribersPlanEmail(ctx context.Context, to *Recipient, maxSubscribers int) error {
	return s.send(ctx, s.cfg.Email.SubscribersPlanTemplateID, to, map[string]any{
		"first_name":      to.FirstName,
		"max_subscribers": maxSubscribers,
	})
}

func (s *templateService) SendStandByActivatedEmail(ctx context.Context, to *Recipient, activated int) error {
	return s.send(ctx, s.cfg.Email.StandByActivatedTemplateID, to, map[string]any{
		"first_name": to.FirstName,
		"activated":  activated,
	})
}

func (s *templateService) send(ctx context.Context, templateID string, to *Recipient, params map[string]any) error {
	body, err := json.Marshal(sendPayload{
		TemplateID: templateID,
		To:         to.Email,
		From:       s.cfg.Email.FromAddress,
		Language:   to.Language,
		Params:     params,
	})
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to build email payload").
			Mark(ierr.ErrSystem)
	}

	_, err = s.httpClient.Send(ctx, &httpclient.Request{
		Method: http.MethodPost,
		URL:    s.cfg.Email.BaseURL + "/send",
		Headers: map[string]string{
			"Authorization": "Bearer " + s.cfg.Email.APIKey,
		},
		Body: body,
	})
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to send email").
			WithReportableDetails(map[string]any{
				"template_id": templateID,
			}).
			Mark(ierr.ErrIntegration)
	}

	s.logger.Infow("sent email", "template_id", templateID, "to", to.Email)
	return nil
}

package gateway

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/mailbeam/billing/internal/config"
	"github.com/mailbeam/billing/internal/domain/subscriber"
	ierr "github.com/mailbeam/billing/internal/errors"
	"github.com/mailbeam/billing/internal/httpclient"
	"github.com/mailbeam/billing/internal/logger"
	"github.com/mailbeam/billing/internal/security"
)

// Client charges payment instruments through the external processor.
type Client interface {
	// Charge settles the given amount against the card and returns the
	// processor's authorization token. A declined or unreachable gateway
	// is reported as a payment declined error; the two cases are not
	// distinguishable from the processor's responses.
	Charge(ctx context.Context, req *ChargeRequest) (string, error)
}

// ChargeRequest carries the decrypted card for a single charge attempt.
type ChargeRequest struct {
	SubscriberID string
	AccountName  string
	Amount       decimal.Decimal
	Card         *subscriber.Card
}

type chargePayload struct {
	Amount      string `json:"amount"`
	CardNumber  string `json:"card_number"`
	CardHolder  string `json:"card_holder"`
	ExpiryMonth int    `json:"expiry_month"`
	ExpiryYear  int    `json:"expiry_year"`
	Reference   string `json:"reference"`
}

type chargeResponse struct {
	AuthorizationToken string `json:"authorization_token"`
}

type client struct {
	httpClient httpclient.Client
	cfg        *config.Configuration
	logger     *logger.Logger
}

// NewClient creates a payment gateway client.
func NewClient(httpClient httpclient.Client, cfg *config.Configuration, logger *logger.Logger) Client {
	return &client{
		httpClient: httpClient,
		cfg:        cfg,
		logger:     logger,
	}
}

func (c *client) Charge(ctx context.Context, req *ChargeRequest) (string, error) {
	payload := chargePayload{
		Amount:      req.Amount.StringFixed(2),
		CardNumber:  req.Card.Number,
		CardHolder:  req.Card.HolderName,
		ExpiryMonth: req.Card.ExpiryMonth,
		ExpiryYear:  req.Card.ExpiryYear,
		Reference:   req.SubscriberID,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", ierr.WithError(err).
			WithHint("Failed to build charge request").
			Mark(ierr.ErrSystem)
	}

	c.logger.Infow("charging payment instrument",
		"account_name", req.AccountName,
		"amount", payload.Amount,
		"card", security.MaskCardNumber(req.Card.Number),
	)

	resp, err := c.httpClient.Send(ctx, &httpclient.Request{
		Method: http.MethodPost,
		URL:    c.cfg.Gateway.BaseURL + "/charges",
		Headers: map[string]string{
			"Authorization": "Bearer " + c.cfg.Gateway.APIKey,
		},
		Body: body,
	})
	if err != nil {
		return "", ierr.WithError(err).
			WithHint("The payment could not be processed").
			WithReportableDetails(map[string]any{
				"account_name": req.AccountName,
			}).
			Mark(ierr.ErrPaymentDeclined)
	}

	var chargeResp chargeResponse
	if err := json.Unmarshal(resp.Body, &chargeResp); err != nil {
		return "", ierr.WithError(err).
			WithHint("The payment could not be processed").
			Mark(ierr.ErrPaymentDeclined)
	}

	if chargeResp.AuthorizationToken == "" {
		return "", ierr.NewError("gateway returned no authorization token").
			WithHint("The payment could not be processed").
			Mark(ierr.ErrPaymentDeclined)
	}

	return chargeResp.AuthorizationToken, nil
}

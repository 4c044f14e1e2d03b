package invoicing

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/mailbeam/billing/internal/config"
	ierr "github.com/mailbeam/billing/internal/errors"
	"github.com/mailbeam/billing/internal/httpclient"
	"github.com/mailbeam/billing/internal/logger"
)

// Client pushes settled transactions to the external invoicing system.
// Callers treat failures as best-effort; the push never blocks or rolls
// back committed billing state.
type Client interface {
	Push(ctx context.Context, payload *Payload) error
}

type client struct {
	httpClient httpclient.Client
	cfg        *config.Configuration
	logger     *logger.Logger
}

// NewClient creates an invoicing system client.
func NewClient(httpClient httpclient.Client, cfg *config.Configuration, logger *logger.Logger) Client {
	return &client{
		httpClient: httpClient,
		cfg:        cfg,
		logger:     logger,
	}
}

func (c *client) Push(ctx context.Context, payload *Payload) error {
	payload.BillingSystemID = c.cfg.Invoicing.BillingSystemID

	body, err := json.Marshal(payload)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to build invoicing payload").
			Mark(ierr.ErrIntegration)
	}

	_, err = c.httpClient.Send(ctx, &httpclient.Request{
		Method: http.MethodPost,
		URL:    c.cfg.Invoicing.BaseURL + c.cfg.Invoicing.TransactionRoute,
		Body:   body,
	})
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to push transaction to the invoicing system").
			WithReportableDetails(map[string]any{
				"invoice_id": payload.InvoiceID,
			}).
			Mark(ierr.ErrIntegration)
	}

	c.logger.Infow("pushed transaction to invoicing system",
		"invoice_id", payload.InvoiceID,
		"billing_credit_id", payload.BillingCreditID,
	)
	return nil
}

package crm

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/mailbeam/billing/internal/config"
	ierr "github.com/mailbeam/billing/internal/errors"
	"github.com/mailbeam/billing/internal/httpclient"
	"github.com/mailbeam/billing/internal/logger"
)

// Client is the CRM adapter. Lookups return (nil, nil) when no entity
// matches; only transport and protocol failures are errors.
type Client interface {
	// FindContactByEmail returns the contact with the given email, if any
	FindContactByEmail(ctx context.Context, email string) (*Contact, error)

	// FindLeadByEmail returns the lead with the given email, if any
	FindLeadByEmail(ctx context.Context, email string) (*Lead, error)

	// FindAccountByName returns the account with the given name, if any
	FindAccountByName(ctx context.Context, name string) (*Account, error)

	// UpdateEntity writes the upgrade projection onto an entity of the
	// given module
	UpdateEntity(ctx context.Context, module string, id string, projection *UpgradeProjection) error
}

type client struct {
	httpClient httpclient.Client
	serializer *Serializer
	cfg        *config.Configuration
	logger     *logger.Logger
}

// NewClient creates a CRM client. Payload timestamps are rendered with
// the serializer's configured format.
func NewClient(httpClient httpclient.Client, serializer *Serializer, cfg *config.Configuration, logger *logger.Logger) Client {
	return &client{
		httpClient: httpClient,
		serializer: serializer,
		cfg:        cfg,
		logger:     logger,
	}
}

func (c *client) FindContactByEmail(ctx context.Context, email string) (*Contact, error) {
	return search[Contact](ctx, c, "Contacts", "Email", email)
}

func (c *client) FindLeadByEmail(ctx context.Context, email string) (*Lead, error) {
	return search[Lead](ctx, c, ModuleLeads, "Email", email)
}

func (c *client) FindAccountByName(ctx context.Context, name string) (*Account, error) {
	return search[Account](ctx, c, ModuleAccounts, "Account_Name", name)
}

func (c *client) UpdateEntity(ctx context.Context, module string, id string, projection *UpgradeProjection) error {
	body, err := c.serializer.Marshal(updatePayload{Data: []interface{}{projection}})
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to build CRM payload").
			Mark(ierr.ErrIntegration)
	}

	_, err = c.httpClient.Send(ctx, &httpclient.Request{
		Method:  http.MethodPut,
		URL:     fmt.Sprintf("%s/%s/%s", c.cfg.CRM.BaseURL, module, id),
		Headers: c.authHeaders(),
		Body:    body,
	})
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to update CRM entity").
			WithReportableDetails(map[string]any{
				"module": module,
			}).
			Mark(ierr.ErrIntegration)
	}

	c.logger.Infow("updated CRM entity", "module", module, "entity_id", id)
	return nil
}

// search queries a module by a single field and returns the first match,
// or nil when the CRM reports no content.
func search[T any](ctx context.Context, c *client, module, field, value string) (*T, error) {
	criteria := url.QueryEscape(fmt.Sprintf("(%s:equals:%s)", field, value))
	resp, err := c.httpClient.Send(ctx, &httpclient.Request{
		Method:  http.MethodGet,
		URL:     fmt.Sprintf("%s/%s/search?criteria=%s", c.cfg.CRM.BaseURL, module, criteria),
		Headers: c.authHeaders(),
	})
	if err != nil {
		if httpErr, ok := httpclient.IsHTTPError(err); ok && httpErr.StatusCode == http.StatusNotFound {
			return nil, nil
		}
		return nil, ierr.WithError(err).
			WithHint("CRM search failed").
			WithReportableDetails(map[string]any{
				"module": module,
			}).
			Mark(ierr.ErrIntegration)
	}

	// The CRM answers 204 with an empty body when nothing matches
	if resp.StatusCode == http.StatusNoContent || len(resp.Body) == 0 {
		return nil, nil
	}

	var result searchResponse[T]
	if err := c.serializer.Unmarshal(resp.Body, &result); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to parse CRM response").
			Mark(ierr.ErrIntegration)
	}
	if len(result.Data) == 0 {
		return nil, nil
	}
	return &result.Data[0], nil
}

func (c *client) authHeaders() map[string]string {
	return map[string]string{
		"Authorization": "Zoho-oauthtoken " + c.cfg.CRM.AccessToken,
	}
}

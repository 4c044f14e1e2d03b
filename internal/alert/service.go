package alert

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/mailbeam/billing/internal/config"
	"github.com/mailbeam/billing/internal/httpclient"
	"github.com/mailbeam/billing/internal/logger"
)

// Service posts operational notices to the team alert channel. It never
// returns an error; a lost alert is logged and dropped.
type Service interface {
	// Notify posts a plain message
	Notify(ctx context.Context, message string)

	// NotifyError posts an error notice for the given scope
	NotifyError(ctx context.Context, scope string, err error)
}

type webhookMessage struct {
	Channel string `json:"channel,omitempty"`
	Text    string `json:"text"`
}

type webhookService struct {
	httpClient httpclient.Client
	cfg        *config.Configuration
	logger     *logger.Logger
}

// NewService creates the alert channel service.
func NewService(httpClient httpclient.Client, cfg *config.Configuration, logger *logger.Logger) Service {
	return &webhookService{
		httpClient: httpClient,
		cfg:        cfg,
		logger:     logger,
	}
}

func (s *webhookService) Notify(ctx context.Context, message string) {
	if s.cfg.Alert.WebhookURL == "" {
		s.logger.Debugw("alert webhook not configured, dropping alert", "message", message)
		return
	}

	body, err := json.Marshal(webhookMessage{
		Channel: s.cfg.Alert.Channel,
		Text:    message,
	})
	if err != nil {
		s.logger.Errorw("failed to build alert payload", "error", err)
		return
	}

	_, err = s.httpClient.Send(ctx, &httpclient.Request{
		Method: http.MethodPost,
		URL:    s.cfg.Alert.WebhookURL,
		Body:   body,
	})
	if err != nil {
		s.logger.Errorw("failed to post alert", "error", err, "message", message)
	}
}

func (s *webhookService) NotifyError(ctx context.Context, scope string, err error) {
	s.Notify(ctx, fmt.Sprintf(":warning: %s: %v", scope, err))
}

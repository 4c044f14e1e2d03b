package notification

import (
	"context"
	"encoding/json"

	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/mailbeam/billing/internal/config"
	ierr "github.com/mailbeam/billing/internal/errors"
	"github.com/mailbeam/billing/internal/logger"
	"github.com/mailbeam/billing/internal/pubsub"
	"github.com/mailbeam/billing/internal/types"
)

// Publisher enqueues agreement completed events for asynchronous
// dispatch. Publishing is the only notification work done on the
// request path.
type Publisher interface {
	PublishAgreementCompleted(ctx context.Context, event *types.AgreementCompletedEvent) error
}

type publisher struct {
	pubSub pubsub.Publisher
	cfg    *config.Configuration
	logger *logger.Logger
}

// NewPublisher creates a notification publisher.
func NewPublisher(pubSub pubsub.PubSub, cfg *config.Configuration, logger *logger.Logger) Publisher {
	return &publisher{
		pubSub: pubSub,
		cfg:    cfg,
		logger: logger,
	}
}

func (p *publisher) PublishAgreementCompleted(ctx context.Context, event *types.AgreementCompletedEvent) error {
	if !p.cfg.Notifications.Enabled {
		p.logger.Debugw("notifications disabled, skipping publish", "event_id", event.ID)
		return nil
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to marshal agreement event").
			Mark(ierr.ErrSystem)
	}

	msg := message.NewMessage(event.ID, payload)
	msg.Metadata.Set("account_name", event.AccountName)

	if err := p.pubSub.Publish(ctx, p.cfg.Notifications.Topic, msg); err != nil {
		return ierr.WithError(err).
			WithHint("Failed to publish agreement event").
			Mark(ierr.ErrSystem)
	}

	p.logger.Infow("published agreement completed event",
		"event_id", event.ID,
		"account_name", event.AccountName,
		"topic", p.cfg.Notifications.Topic,
	)
	return nil
}

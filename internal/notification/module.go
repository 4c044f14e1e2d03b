package notification

import (
	"go.uber.org/fx"

	"github.com/mailbeam/billing/internal/config"
	"github.com/mailbeam/billing/internal/pubsub"
	"github.com/mailbeam/billing/internal/pubsub/router"
)

// Module provides fx options for the notification dispatcher
func Module() fx.Option {
	return fx.Options(
		fx.Provide(NewPublisher),
		fx.Provide(NewHandler),
		fx.Invoke(RegisterHandler),
	)
}

// RegisterHandler subscribes the notification handler to the
// notifications topic on the message router
func RegisterHandler(r *router.Router, pubSub pubsub.PubSub, handler *Handler, cfg *config.Configuration) {
	r.AddNoPublishHandler(
		"agreement_notifications",
		cfg.Notifications.Topic,
		pubSub,
		handler.Handle,
	)
}

package testutil

import (
	"context"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	"github.com/mailbeam/billing/internal/pubsub"
)

// InMemoryPubSub is a gochannel pubsub for tests
type InMemoryPubSub struct {
	pubsub *gochannel.GoChannel
}

func NewInMemoryPubSub() pubsub.PubSub {
	return &InMemoryPubSub{
		pubsub: gochannel.NewGoChannel(
			gochannel.Config{Persistent: true},
			watermill.NopLogger{},
		),
	}
}

func (p *InMemoryPubSub) Publish(ctx context.Context, topic string, msg *message.Message) error {
	return p.pubsub.Publish(topic, msg)
}

func (p *InMemoryPubSub) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	return p.pubsub.Subscribe(ctx, topic)
}

func (p *InMemoryPubSub) Close() error {
	return p.pubsub.Close()
}

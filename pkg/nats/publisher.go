package nats

import (
	"context"
	"fmt"

	"github.com/abgdnv/inventory/pkg/config"
	"github.com/abgdnv/inventory/pkg/messaging"
	"github.com/nats-io/nats.go/jetstream"
)

type NatsPublisher struct {
	js   jetstream.JetStream
	opts []jetstream.PublishOpt
}

// NewNatsPublisher publishes on js, retrying "no responders" per retry.
func NewNatsPublisher(js jetstream.JetStream, retry config.RetryConfig) *NatsPublisher {
	return &NatsPublisher{
		js: js,
		opts: []jetstream.PublishOpt{
			jetstream.WithRetryAttempts(int(retry.MaxAttempts)),
			jetstream.WithRetryWait(retry.InitialBackoff),
		},
	}
}

func (p *NatsPublisher) Publish(ctx context.Context, event messaging.Event) error {
	data, err := event.Payload()
	if err != nil {
		return fmt.Errorf("failed to get event payload: %w", err)
	}
	if _, err = p.js.Publish(ctx, event.Subject(), data, p.opts...); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", event.Subject(), err)
	}
	return nil
}

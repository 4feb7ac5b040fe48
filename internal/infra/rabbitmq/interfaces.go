package rabbitmq

import (
	"context"
	"log"
)

type PublisherInterface interface {
	Publish(ctx context.Context, routingKey string, data any) error
}

var (
	_ PublisherInterface = (*Publisher)(nil)
	_ PublisherInterface = NopPublisher{}
)

// NopPublisher drops events. Used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(_ context.Context, routingKey string, _ any) error {
	log.Printf("event %s dropped: no broker configured", routingKey)
	return nil
}

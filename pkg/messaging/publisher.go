// Package messaging defines the domain event contract and publisher decorators.
package messaging

import (
	"context"
)

const (
	// ProductsSubjects matches every subject the inventory service publishes on.
	ProductsSubjects = "products.>"
	// ProductsCreatedSubject carries events.ProductCreatedEvent.
	ProductsCreatedSubject = "products.created"
	// ProductsStockChangedSubject carries events.StockChangedEvent.
	ProductsStockChangedSubject = "products.stock_changed"
)

type Event interface {
	Subject() string
	Payload() ([]byte, error)
}

type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// NoopPublisher drops every event. Used when no broker is configured.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, Event) error { return nil }

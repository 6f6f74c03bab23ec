// Package events holds the payloads published by the inventory service.
package events

import (
	"encoding/json"
	"time"

	"github.com/abgdnv/inventory/pkg/messaging"
)

// Carrier holds the trace context of the request that caused the event.
type ProductCreatedEvent struct {
	Carrier        map[string]string `json:"carrier,omitempty"`
	ProductID      string            `json:"product_id"`
	Name           string            `json:"name"`
	Price          int64             `json:"price"`
	StockAvailable int32             `json:"stock_available"`
	CreatedAt      time.Time         `json:"created_at"`
}

func (e ProductCreatedEvent) Subject() string {
	return messaging.ProductsCreatedSubject
}

func (e ProductCreatedEvent) Payload() ([]byte, error) {
	return json.Marshal(e)
}

// StockChangedEvent is emitted after a stock adjustment. Delta is negative for decrements.
type StockChangedEvent struct {
	Carrier        map[string]string `json:"carrier,omitempty"`
	ProductID      string            `json:"product_id"`
	Delta          int32             `json:"delta"`
	StockAvailable int32             `json:"stock_available"`
	ChangedAt      time.Time         `json:"changed_at"`
}

func (e StockChangedEvent) Subject() string {
	return messaging.ProductsStockChangedSubject
}

func (e StockChangedEvent) Payload() ([]byte, error) {
	return json.Marshal(e)
}

package events

import (
	"time"

	"warehouse/internal/models"
)

// StockEvent is published after a product's quantities change.
type StockEvent struct {
	MovementID       string              `json:"movementId"`
	Type             models.MovementKind `json:"type"`
	ProductID        int64               `json:"productId"`
	Quantity         int                 `json:"quantity"`
	InStockQuantity  int                 `json:"inStockQuantity"`
	ReservedQuantity int                 `json:"reservedQuantity"`
	OccurredAt       time.Time           `json:"occurredAt"`
}

// NewStockEvent builds the event announcing movement.
func NewStockEvent(movement models.StockMovement) StockEvent {
	return StockEvent{
		MovementID:       movement.ID,
		Type:             movement.Kind,
		ProductID:        movement.ProductID,
		Quantity:         movement.Quantity,
		InStockQuantity:  movement.InStockQuantity,
		ReservedQuantity: movement.ReservedQuantity,
		OccurredAt:       movement.CreatedAt,
	}
}

// RoutingKey is the key the event is published under, e.g. "stock.reserve".
func (e StockEvent) RoutingKey() string {
	return "stock." + string(e.Type)
}

// Publisher sends stock events to a message broker.
type Publisher interface {
	Publish(event StockEvent) error
	Close() error
}

// NopPublisher drops every event. It is used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(StockEvent) error { return nil }

func (NopPublisher) Close() error { return nil }

package models

import "time"

// MovementKind names the operation that changed a product's quantities.
type MovementKind string

const (
	MovementReserve MovementKind = "reserve"
	MovementShip    MovementKind = "ship"
	MovementRestock MovementKind = "restock"
	MovementCreate  MovementKind = "create"
)

// StockMovement is one entry in a product's quantity history. The quantity
// fields hold the product state after the movement was applied.
type StockMovement struct {
	ID               string       `json:"id" gorm:"primaryKey;type:varchar(36)"`
	ProductID        int64        `json:"productId" gorm:"index;not null"`
	Kind             MovementKind `json:"kind" gorm:"type:varchar(16);not null"`
	Quantity         int          `json:"quantity"`
	InStockQuantity  int          `json:"inStockQuantity"`
	ReservedQuantity int          `json:"reservedQuantity"`
	CreatedAt        time.Time    `json:"createdAt"`
}

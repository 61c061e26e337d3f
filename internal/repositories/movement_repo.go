package repositories

import (
	"warehouse/internal/models"
)

// MovementRepository defines the interface for the stock movement ledger.
type MovementRepository interface {
	Create(movement *models.StockMovement) error
	// ListByProduct returns a product's movements, oldest first.
	ListByProduct(productID int64) ([]models.StockMovement, error)
}

package repositories

import (
	"errors"

	"warehouse/internal/models"
)

// ErrProductNotFound is returned when no product has the requested ID.
var ErrProductNotFound = errors.New("product not found")

// ProductRepository defines the interface for product data access.
type ProductRepository interface {
	Get(id int64) (*models.Product, error)
	// List returns every product in insertion order.
	List() ([]models.Product, error)
	// Insert stores product and writes the assigned ID back into it.
	Insert(product *models.Product) error
	// UpdateQuantities overwrites the stock and reserved quantities of the
	// product with the same ID.
	UpdateQuantities(product *models.Product) error
}

package repositories

import (
	"fmt"
	"sync"

	"warehouse/internal/models"
)

// MemoryProductRepository is an in-memory implementation of ProductRepository.
type MemoryProductRepository struct {
	products map[int64]models.Product
	order    []int64
	maxID    int64
	mu       sync.RWMutex
}

// NewMemoryProductRepository creates a new instance of MemoryProductRepository.
func NewMemoryProductRepository() *MemoryProductRepository {
	return &MemoryProductRepository{
		products: make(map[int64]models.Product),
	}
}

// Get returns a product by its ID.
func (r *MemoryProductRepository) Get(id int64) (*models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	product, ok := r.products[id]
	if !ok {
		return nil, fmt.Errorf("product with ID %d: %w", id, ErrProductNotFound)
	}
	return &product, nil
}

// List returns all products in the order they were inserted.
func (r *MemoryProductRepository) List() ([]models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	productList := make([]models.Product, 0, len(r.order))
	for _, id := range r.order {
		productList = append(productList, r.products[id])
	}
	return productList, nil
}

// Insert adds a new product. A positive, unused ID is kept; otherwise the
// next ID after the highest one stored is assigned.
func (r *MemoryProductRepository) Insert(product *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.products[product.ID]; taken || product.ID <= 0 {
		product.ID = r.maxID + 1
	}
	if product.ID > r.maxID {
		r.maxID = product.ID
	}
	r.products[product.ID] = *product
	r.order = append(r.order, product.ID)
	return nil
}

// UpdateQuantities overwrites the quantities of an existing product.
func (r *MemoryProductRepository) UpdateQuantities(product *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.products[product.ID]
	if !ok {
		return fmt.Errorf("product with ID %d for update: %w", product.ID, ErrProductNotFound)
	}
	stored.InStockQuantity = product.InStockQuantity
	stored.ReservedQuantity = product.ReservedQuantity
	r.products[product.ID] = stored
	return nil
}

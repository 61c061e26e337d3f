package repositories

import (
	"errors"
	"fmt"

	"warehouse/internal/models"

	"gorm.io/gorm"
)

// GORMProductRepository is a GORM implementation of ProductRepository.
type GORMProductRepository struct {
	db *gorm.DB
}

// NewGORMProductRepository creates a new instance of GORMProductRepository.
func NewGORMProductRepository(db *gorm.DB) *GORMProductRepository {
	return &GORMProductRepository{
		db: db,
	}
}

// Get retrieves a single product by its ID from the database.
func (r *GORMProductRepository) Get(id int64) (*models.Product, error) {
	var product models.Product
	if err := r.db.First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("product with ID %d: %w", id, ErrProductNotFound)
		}
		return nil, fmt.Errorf("failed to get product by ID %d: %w", id, err)
	}
	return &product, nil
}

// List retrieves all products ordered by ID, which follows insertion order
// for auto-incremented keys.
func (r *GORMProductRepository) List() ([]models.Product, error) {
	var products []models.Product
	if err := r.db.Order("id").Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return products, nil
}

// Insert creates a new product in the database. A taken or non-positive ID
// is replaced by max(id)+1. IDs are always assigned here, never by a database
// sequence, so explicit-ID inserts cannot leave a sequence behind the table.
func (r *GORMProductRepository) Insert(product *models.Product) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if product.ID > 0 {
			var count int64
			if err := tx.Model(&models.Product{}).Where("id = ?", product.ID).Count(&count).Error; err != nil {
				return fmt.Errorf("failed to check product ID %d: %w", product.ID, err)
			}
			if count > 0 {
				product.ID = 0
			}
		}
		if product.ID <= 0 {
			var maxID int64
			if err := tx.Model(&models.Product{}).Select("COALESCE(MAX(id), 0)").Scan(&maxID).Error; err != nil {
				return fmt.Errorf("failed to allocate product ID: %w", err)
			}
			product.ID = maxID + 1
		}
		if err := tx.Create(product).Error; err != nil {
			return fmt.Errorf("failed to insert product: %w", err)
		}
		return nil
	})
}

// UpdateQuantities writes the stock and reserved quantities of an existing product.
func (r *GORMProductRepository) UpdateQuantities(product *models.Product) error {
	// A map is used so zero quantities are written too.
	res := r.db.Model(&models.Product{}).Where("id = ?", product.ID).Updates(map[string]interface{}{
		"in_stock_quantity": product.InStockQuantity,
		"reserved_quantity": product.ReservedQuantity,
	})
	if res.Error != nil {
		return fmt.Errorf("failed to update product quantities: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("product with ID %d for update: %w", product.ID, ErrProductNotFound)
	}
	return nil
}

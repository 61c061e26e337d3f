package repositories

import (
	"fmt"

	"warehouse/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMMovementRepository is a GORM implementation of MovementRepository.
type GORMMovementRepository struct {
	db *gorm.DB
}

// NewGORMMovementRepository creates a new instance of GORMMovementRepository.
func NewGORMMovementRepository(db *gorm.DB) *GORMMovementRepository {
	return &GORMMovementRepository{
		db: db,
	}
}

// Create inserts a movement into the database.
func (r *GORMMovementRepository) Create(movement *models.StockMovement) error {
	if movement.ID == "" {
		movement.ID = uuid.New().String()
	}
	if err := r.db.Create(movement).Error; err != nil {
		return fmt.Errorf("failed to create stock movement: %w", err)
	}
	return nil
}

// ListByProduct retrieves a product's movements, oldest first.
func (r *GORMMovementRepository) ListByProduct(productID int64) ([]models.StockMovement, error) {
	var movements []models.StockMovement
	err := r.db.Where("product_id = ?", productID).Order("created_at").Find(&movements).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list movements for product %d: %w", productID, err)
	}
	return movements, nil
}

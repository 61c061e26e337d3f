package repositories

import (
	"sync"
	"time"

	"warehouse/internal/models"

	"github.com/google/uuid"
)

// MemoryMovementRepository is an in-memory implementation of MovementRepository.
type MemoryMovementRepository struct {
	movements map[int64][]models.StockMovement
	mu        sync.RWMutex
}

// NewMemoryMovementRepository creates a new instance of MemoryMovementRepository.
func NewMemoryMovementRepository() *MemoryMovementRepository {
	return &MemoryMovementRepository{
		movements: make(map[int64][]models.StockMovement),
	}
}

// Create appends a movement to its product's history.
func (r *MemoryMovementRepository) Create(movement *models.StockMovement) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if movement.ID == "" {
		movement.ID = uuid.New().String()
	}
	if movement.CreatedAt.IsZero() {
		movement.CreatedAt = time.Now()
	}
	r.movements[movement.ProductID] = append(r.movements[movement.ProductID], *movement)
	return nil
}

// ListByProduct returns the movements recorded for a product.
func (r *MemoryMovementRepository) ListByProduct(productID int64) ([]models.StockMovement, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	history := r.movements[productID]
	out := make([]models.StockMovement, len(history))
	copy(out, history)
	return out, nil
}

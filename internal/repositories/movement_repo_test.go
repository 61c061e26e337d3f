package repositories_test

import (
	"fmt"
	"testing"
	"time"

	"warehouse/internal/models"
	"warehouse/internal/repositories"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func movementStores(t *testing.T) map[string]repositories.MovementRepository {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.New().String())
	db, err := repositories.OpenDatabase("sqlite", dsn)
	require.NoError(t, err)
	return map[string]repositories.MovementRepository{
		"memory": repositories.NewMemoryMovementRepository(),
		"gorm":   repositories.NewGORMMovementRepository(db),
	}
}

func TestMovementRepository_CreateAndList(t *testing.T) {
	for name, repo := range movementStores(t) {
		t.Run(name, func(t *testing.T) {
			start := time.Now()
			reserve := &models.StockMovement{ProductID: 1, Kind: models.MovementReserve, Quantity: 2, InStockQuantity: 10, ReservedQuantity: 2, CreatedAt: start}
			ship := &models.StockMovement{ProductID: 1, Kind: models.MovementShip, Quantity: 2, InStockQuantity: 8, ReservedQuantity: 0, CreatedAt: start.Add(time.Second)}
			other := &models.StockMovement{ProductID: 2, Kind: models.MovementRestock, Quantity: 5, InStockQuantity: 5, CreatedAt: start}

			for _, m := range []*models.StockMovement{reserve, ship, other} {
				require.NoError(t, repo.Create(m))
				assert.NotEmpty(t, m.ID)
			}

			history, err := repo.ListByProduct(1)
			require.NoError(t, err)
			require.Len(t, history, 2)
			assert.Equal(t, models.MovementReserve, history[0].Kind)
			assert.Equal(t, models.MovementShip, history[1].Kind)
			assert.Equal(t, 8, history[1].InStockQuantity)

			empty, err := repo.ListByProduct(42)
			require.NoError(t, err)
			assert.Empty(t, empty)
		})
	}
}

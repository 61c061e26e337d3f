package models

// Product represents a product held in the warehouse.
type Product struct {
	ID               int64  `json:"id" gorm:"primaryKey;autoIncrement"`
	Name             string `json:"name" gorm:"type:varchar(255);not null"`
	InStockQuantity  int    `json:"inStockQuantity" gorm:"not null;default:0"`
	ReservedQuantity int    `json:"reservedQuantity" gorm:"not null;default:0"`
}

// Available returns the number of units that are neither shipped nor reserved.
func (p Product) Available() int {
	return p.InStockQuantity - p.ReservedQuantity
}

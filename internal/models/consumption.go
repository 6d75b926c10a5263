package models

import "time"

const (
	MinQuantity = 1
	MaxQuantity = 5
)

// ConsumptionRecord stores a copy of the product price at recording time.
// Batch records come from multi-unit submissions and carry an approximate
// timestamp, so month-bucketed statistics skip them.
type ConsumptionRecord struct {
	ID        uint      `gorm:"primaryKey"`
	UserID    uint      `gorm:"not null;index:idx_consumption_user_product"`
	ProductID uint      `gorm:"not null;index:idx_consumption_user_product"`
	Price     float64   `gorm:"not null"`
	Batch     bool      `gorm:"not null;default:false"`
	CreatedAt time.Time `gorm:"not null;index"`
}

// ProductTotal aggregates one user's records for one product.
type ProductTotal struct {
	ProductID uint    `gorm:"column:product_id"`
	Count     int64   `gorm:"column:count"`
	Total     float64 `gorm:"column:total"`
}

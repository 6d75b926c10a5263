package models

import (
	"time"

	"gorm.io/gorm"
)

type Product struct {
	ID        uint    `gorm:"primaryKey"`
	Name      string  `gorm:"not null"`
	Price     float64 `gorm:"not null"`
	Style     string  `gorm:"not null;default:''"`
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

// Removed reports whether the product was soft-deleted while records still point at it.
func (product Product) Removed() bool {
	return product.DeletedAt.Valid
}

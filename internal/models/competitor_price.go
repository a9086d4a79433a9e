package models

import (
	"time"

	"gorm.io/gorm"
)

// CompetitorPrice is an observed competitor quote for a product on a given day.
type CompetitorPrice struct {
	gorm.Model
	ProductID      uint      `gorm:"index:idx_competitor_product_date;not null" json:"product_id"`
	CompetitorName string    `gorm:"index:idx_competitor_product_date;not null" json:"competitor_name"`
	Price          float64   `gorm:"not null" json:"price"`
	Date           time.Time `gorm:"index:idx_competitor_product_date;not null" json:"date"`
}

package models

import (
	"time"

	"gorm.io/gorm"
)

// Sale is one historical transaction record. Rows are immutable once written;
// the estimation pipeline only ever reads them.
type Sale struct {
	gorm.Model
	ProductID       uint      `gorm:"index:idx_product_date;not null" json:"product_id"`
	Date            time.Time `gorm:"index:idx_product_date;not null" json:"date"`
	Quantity        float64   `gorm:"not null" json:"quantity"`
	Price           float64   `gorm:"not null" json:"price"`
	Revenue         float64   `json:"revenue"`
	Cost            float64   `json:"cost"`
	Profit          float64   `json:"profit"`
	DiscountPercent float64   `gorm:"default:0" json:"discount_percent"`
	CompetitorPrice *float64  `json:"competitor_price,omitempty"`
	Season          string    `json:"season"`
	IsHoliday       bool      `gorm:"default:false" json:"is_holiday"`
	PromotionActive bool      `gorm:"default:false" json:"promotion_active"`
}

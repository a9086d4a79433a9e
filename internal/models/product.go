package models

import "gorm.io/gorm"

// Product represents a catalog entry with its current pricing.
type Product struct {
	gorm.Model
	SKU          string  `gorm:"uniqueIndex" json:"sku"`
	Name         string  `gorm:"not null" json:"name"`
	Category     string  `gorm:"index" json:"category"`
	UnitCost     float64 `gorm:"not null" json:"unit_cost"`
	CurrentPrice float64 `gorm:"not null" json:"current_price"`
	Currency     string  `gorm:"default:USD" json:"currency"`
}

// Margin returns the gross margin fraction at the current price.
func (p *Product) Margin() float64 {
	if p.CurrentPrice == 0 {
		return 0
	}
	return (p.CurrentPrice - p.UnitCost) / p.CurrentPrice
}

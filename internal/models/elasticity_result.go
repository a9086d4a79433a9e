package models

import (
	"time"

	"gorm.io/gorm"
)

// Elasticity type classifications.
const (
	TypeHighlyElastic = "highly_elastic"
	TypeElastic       = "elastic"
	TypeUnitElastic   = "unit_elastic"
	TypeInelastic     = "inelastic"
)

// Recommended pricing actions stored alongside a calculation.
const (
	ActionIncreasePrice = "increase_price"
	ActionDecreasePrice = "decrease_price"
	ActionHoldPrice     = "hold_price"
)

// ElasticityResult is one completed elasticity calculation. The table is an
// append-only log: rows are never updated in place, readers take the newest
// row per product as the current value.
type ElasticityResult struct {
	gorm.Model
	ProductID             uint       `gorm:"index;not null" json:"product_id"`
	Coefficient           float64    `gorm:"not null" json:"coefficient"`
	ElasticityType        string     `json:"elasticity_type"`
	RSquared              *float64   `json:"r_squared"`
	SampleSize            int        `json:"sample_size"`
	ModelType             string     `json:"model_type"` // "linear" or "gradient_boosting"
	ConfidenceLow         *float64   `json:"confidence_low"`
	ConfidenceHigh        *float64   `json:"confidence_high"`
	CalculationDate       time.Time  `gorm:"index" json:"calculation_date"`
	PeriodStart           *time.Time `json:"period_start"`
	PeriodEnd             *time.Time `json:"period_end"`
	RecommendedAction     string     `json:"recommended_action"`
	OptimalPrice          float64    `json:"optimal_price"`
	ExpectedRevenueChange float64    `json:"expected_revenue_change_percent"`
}

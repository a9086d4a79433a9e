package models

import "gorm.io/gorm"

// Scenario recommendation actions.
const (
	ScenarioIncreasePrice          = "increase_price"
	ScenarioDecreasePrice          = "decrease_price"
	ScenarioHoldPrice              = "hold_price"
	ScenarioReducePriceCautiously  = "reduce_price_cautiously"
	ScenarioRaisePriceAggressively = "raise_price_aggressively"
)

// Risk levels attached to a scenario recommendation.
const (
	RiskLow    = "low"
	RiskMedium = "medium"
	RiskHigh   = "high"
)

// Scenario is one persisted what-if simulation. Percent-change fields are
// pointers: a nil value means the baseline was zero and the delta is
// undefined, not that it was zero.
type Scenario struct {
	gorm.Model
	Name               string   `json:"name"`
	ProductID          uint     `gorm:"index" json:"product_id"`
	CurrentPrice       float64  `gorm:"not null" json:"current_price"`
	NewPrice           float64  `gorm:"not null" json:"new_price"`
	PriceChangePercent float64  `gorm:"not null" json:"price_change_percent"`
	CurrentDemand      float64  `json:"current_demand"`
	PredictedDemand    float64  `json:"predicted_demand"`
	DemandChangePct    *float64 `json:"demand_change_percent"`
	CurrentRevenue     float64  `json:"current_revenue"`
	PredictedRevenue   float64  `json:"predicted_revenue"`
	RevenueChangePct   *float64 `json:"revenue_change_percent"`
	CurrentProfit      float64  `json:"current_profit"`
	PredictedProfit    float64  `json:"predicted_profit"`
	ProfitChangePct    *float64 `json:"profit_change_percent"`
	SimulationDays     int      `gorm:"default:30" json:"simulation_days"`
	ElasticityUsed     float64  `json:"elasticity_used"`
	Action             string   `json:"action"`
	RiskLevel          string   `json:"risk_level"`
}

package scenario

import (
	"fmt"

	"github.com/Uddhav-Saikia/ElasticRev/internal/elasticity"
	"github.com/Uddhav-Saikia/ElasticRev/internal/models"
)

// Risk thresholds on the absolute price change fraction.
const (
	riskHighThreshold   = 0.20
	riskMediumThreshold = 0.10

	// Revenue/profit gain (in percent) above which a price raise is worth
	// pushing aggressively.
	strongGainPercent = 5.0
)

// Limits bounds the simulated price move, in percent. Zero values disable
// the corresponding bound.
type Limits struct {
	MaxIncreasePercent float64
	MaxDecreasePercent float64
}

// Input is everything a simulation needs, captured by value: the result
// record it came from can be superseded without affecting this run.
type Input struct {
	ProductID      uint
	CurrentPrice   float64
	UnitCost       float64
	NewPrice       float64
	Elasticity     float64
	ConfidenceLow  *float64
	ConfidenceHigh *float64
	// CurrentDemand is the average daily quantity over the baseline window.
	CurrentDemand  float64
	SimulationDays int
	Limits         Limits
}

// Band is the demand/revenue range implied by the coefficient's confidence
// interval.
type Band struct {
	DemandLow   float64 `json:"demand_low"`
	DemandHigh  float64 `json:"demand_high"`
	RevenueLow  float64 `json:"revenue_low"`
	RevenueHigh float64 `json:"revenue_high"`
}

// Recommendation is the action and risk attached to a simulation.
type Recommendation struct {
	Action    string `json:"action"`
	RiskLevel string `json:"risk_level"`
}

// Result is one completed what-if projection. Percent-change fields are nil
// when the corresponding baseline is zero.
type Result struct {
	ProductID             uint           `json:"product_id"`
	CurrentPrice          float64        `json:"current_price"`
	NewPrice              float64        `json:"new_price"`
	PriceChangePercent    float64        `json:"price_change_percent"`
	CurrentDemand         float64        `json:"current_demand"`
	PredictedDemand       float64        `json:"predicted_demand"`
	DemandChangePercent   *float64       `json:"demand_change_percent"`
	CurrentRevenue        float64        `json:"current_revenue"`
	PredictedRevenue      float64        `json:"predicted_revenue"`
	RevenueChangePercent  *float64       `json:"revenue_change_percent"`
	CurrentProfit         float64        `json:"current_profit"`
	PredictedProfit       float64        `json:"predicted_profit"`
	ProfitChangePercent   *float64       `json:"profit_change_percent"`
	TotalCurrentRevenue   float64        `json:"total_current_revenue"`
	TotalPredictedRevenue float64        `json:"total_predicted_revenue"`
	TotalCurrentProfit    float64        `json:"total_current_profit"`
	TotalPredictedProfit  float64        `json:"total_predicted_profit"`
	ConfidenceBand        *Band          `json:"confidence_band,omitempty"`
	SimulationDays        int            `json:"simulation_days"`
	ElasticityUsed        float64        `json:"elasticity_used"`
	Recommendation        Recommendation `json:"recommendation"`
}

// Simulate projects demand, revenue and profit under a hypothetical price.
//
// The demand response is the linear local approximation around the current
// operating point: demand change fraction = elasticity * price change
// fraction. This deliberately differs from the power-law relation the
// optimal-price solver uses; the two forms are kept as-is so outputs stay
// comparable with historical simulations.
func Simulate(in Input) (*Result, error) {
	if in.NewPrice <= 0 {
		return nil, fmt.Errorf("%w: new price must be positive, got %.2f", elasticity.ErrSimulationInput, in.NewPrice)
	}
	if in.CurrentPrice <= 0 {
		return nil, fmt.Errorf("%w: missing current price baseline", elasticity.ErrSimulationInput)
	}
	if in.SimulationDays <= 0 {
		return nil, fmt.Errorf("%w: simulation days must be positive, got %d", elasticity.ErrSimulationInput, in.SimulationDays)
	}

	priceChange := (in.NewPrice - in.CurrentPrice) / in.CurrentPrice
	if in.Limits.MaxIncreasePercent > 0 && priceChange*100 > in.Limits.MaxIncreasePercent {
		return nil, fmt.Errorf("%w: price increase %.1f%% exceeds %.0f%% limit",
			elasticity.ErrSimulationInput, priceChange*100, in.Limits.MaxIncreasePercent)
	}
	if in.Limits.MaxDecreasePercent > 0 && priceChange*100 < -in.Limits.MaxDecreasePercent {
		return nil, fmt.Errorf("%w: price decrease %.1f%% exceeds %.0f%% limit",
			elasticity.ErrSimulationInput, -priceChange*100, in.Limits.MaxDecreasePercent)
	}

	demandChange := in.Elasticity * priceChange
	predictedDemand := in.CurrentDemand * (1 + demandChange)

	currentRevenue := in.CurrentPrice * in.CurrentDemand
	predictedRevenue := in.NewPrice * predictedDemand
	currentProfit := (in.CurrentPrice - in.UnitCost) * in.CurrentDemand
	predictedProfit := (in.NewPrice - in.UnitCost) * predictedDemand

	days := float64(in.SimulationDays)

	result := &Result{
		ProductID:             in.ProductID,
		CurrentPrice:          in.CurrentPrice,
		NewPrice:              in.NewPrice,
		PriceChangePercent:    priceChange * 100,
		CurrentDemand:         in.CurrentDemand,
		PredictedDemand:       predictedDemand,
		CurrentRevenue:        currentRevenue,
		PredictedRevenue:      predictedRevenue,
		CurrentProfit:         currentProfit,
		PredictedProfit:       predictedProfit,
		TotalCurrentRevenue:   currentRevenue * days,
		TotalPredictedRevenue: predictedRevenue * days,
		TotalCurrentProfit:    currentProfit * days,
		TotalPredictedProfit:  predictedProfit * days,
		SimulationDays:        in.SimulationDays,
		ElasticityUsed:        in.Elasticity,
	}

	// Zero baselines make the percent deltas undefined, not zero.
	if in.CurrentDemand != 0 {
		result.DemandChangePercent = pct(demandChange * 100)
	}
	if currentRevenue != 0 {
		result.RevenueChangePercent = pct((predictedRevenue - currentRevenue) / currentRevenue * 100)
	}
	if currentProfit != 0 {
		result.ProfitChangePercent = pct((predictedProfit - currentProfit) / currentProfit * 100)
	}

	result.ConfidenceBand = confidenceBand(in, priceChange)
	result.Recommendation = recommend(priceChange, result.RevenueChangePercent, result.ProfitChangePercent)

	return result, nil
}

// confidenceBand projects demand and revenue at the interval's bounds.
// Missing bounds fall back to +-20% around the point estimate, matching how
// older results without stored intervals were treated.
func confidenceBand(in Input, priceChange float64) *Band {
	low := in.Elasticity * 0.8
	high := in.Elasticity * 1.2
	if in.ConfidenceLow != nil {
		low = *in.ConfidenceLow
	}
	if in.ConfidenceHigh != nil {
		high = *in.ConfidenceHigh
	}

	demandLow := in.CurrentDemand * (1 + low*priceChange)
	demandHigh := in.CurrentDemand * (1 + high*priceChange)
	if demandLow > demandHigh {
		demandLow, demandHigh = demandHigh, demandLow
	}

	return &Band{
		DemandLow:   demandLow,
		DemandHigh:  demandHigh,
		RevenueLow:  in.NewPrice * demandLow,
		RevenueHigh: in.NewPrice * demandHigh,
	}
}

// recommend picks the action from the projected revenue/profit deltas and the
// risk level from the size of the price move alone.
func recommend(priceChange float64, revenueChange, profitChange *float64) Recommendation {
	risk := models.RiskLow
	abs := priceChange
	if abs < 0 {
		abs = -abs
	}
	switch {
	case abs > riskHighThreshold:
		risk = models.RiskHigh
	case abs > riskMediumThreshold:
		risk = models.RiskMedium
	}

	if revenueChange == nil || profitChange == nil {
		return Recommendation{Action: models.ScenarioHoldPrice, RiskLevel: risk}
	}

	rev, prof := *revenueChange, *profitChange
	action := models.ScenarioHoldPrice
	switch {
	case rev > 0 && prof > 0:
		switch {
		case priceChange > 0 && rev > strongGainPercent && prof > strongGainPercent:
			action = models.ScenarioRaisePriceAggressively
		case priceChange > 0:
			action = models.ScenarioIncreasePrice
		case priceChange < 0:
			action = models.ScenarioDecreasePrice
		}
	case (rev > 0 || prof > 0) && priceChange < 0:
		// Mixed outcome on a price cut: volume play, worth trying carefully.
		action = models.ScenarioReducePriceCautiously
	}

	return Recommendation{Action: action, RiskLevel: risk}
}

func pct(v float64) *float64 { return &v }

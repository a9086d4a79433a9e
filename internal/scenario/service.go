package scenario

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/Uddhav-Saikia/ElasticRev/internal/config"
	"github.com/Uddhav-Saikia/ElasticRev/internal/elasticity"
	"github.com/Uddhav-Saikia/ElasticRev/internal/models"
	"github.com/Uddhav-Saikia/ElasticRev/internal/store"
	"go.uber.org/zap"
)

// Service runs simulations against stored elasticity results and persists the
// outcome. The simulation itself stays in the pure Simulate function; the
// service only assembles its input and writes the record.
type Service struct {
	logger *zap.Logger
	cfg    config.Scenario
	store  *store.Store
}

// NewService creates a scenario service.
func NewService(logger *zap.Logger, cfg config.Scenario, st *store.Store) *Service {
	return &Service{logger: logger, cfg: cfg, store: st}
}

// Simulate loads the latest elasticity result and the demand baseline for a
// product, projects the price change, and appends the scenario record.
func (s *Service) Simulate(productID uint, newPrice float64, days int) (*Result, error) {
	if days <= 0 {
		days = s.cfg.DefaultDays
	}

	product, err := s.store.Product(productID)
	if err != nil {
		return nil, err
	}

	latest, err := s.store.LatestResult(productID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("%w: no elasticity baseline for product %d, calculate elasticity first",
				elasticity.ErrSimulationInput, productID)
		}
		return nil, err
	}

	baselineDays := s.cfg.BaselineDays
	if baselineDays <= 0 {
		baselineDays = 90
	}
	since := time.Now().AddDate(0, 0, -baselineDays)
	avgQuantity, _, _, n, err := s.store.AverageDailyDemand(productID, since)
	if err != nil {
		return nil, err
	}
	if n < 10 {
		return nil, fmt.Errorf("%w: only %d sales in the trailing %d days", elasticity.ErrInsufficientData, n, baselineDays)
	}

	result, err := Simulate(Input{
		ProductID:      productID,
		CurrentPrice:   product.CurrentPrice,
		UnitCost:       product.UnitCost,
		NewPrice:       newPrice,
		Elasticity:     latest.Coefficient,
		ConfidenceLow:  latest.ConfidenceLow,
		ConfidenceHigh: latest.ConfidenceHigh,
		CurrentDemand:  avgQuantity,
		SimulationDays: days,
		Limits: Limits{
			MaxIncreasePercent: s.cfg.MaxIncreasePercent,
			MaxDecreasePercent: s.cfg.MaxDecreasePercent,
		},
	})
	if err != nil {
		return nil, err
	}

	record := &models.Scenario{
		Name:               scenarioName(result),
		ProductID:          productID,
		CurrentPrice:       result.CurrentPrice,
		NewPrice:           result.NewPrice,
		PriceChangePercent: result.PriceChangePercent,
		CurrentDemand:      result.CurrentDemand,
		PredictedDemand:    result.PredictedDemand,
		DemandChangePct:    result.DemandChangePercent,
		CurrentRevenue:     result.CurrentRevenue,
		PredictedRevenue:   result.PredictedRevenue,
		RevenueChangePct:   result.RevenueChangePercent,
		CurrentProfit:      result.CurrentProfit,
		PredictedProfit:    result.PredictedProfit,
		ProfitChangePct:    result.ProfitChangePercent,
		SimulationDays:     result.SimulationDays,
		ElasticityUsed:     result.ElasticityUsed,
		Action:             result.Recommendation.Action,
		RiskLevel:          result.Recommendation.RiskLevel,
	}
	if err := s.store.SaveScenario(record); err != nil {
		return nil, err
	}

	s.logger.Info("Scenario simulated",
		zap.Uint("product_id", productID),
		zap.Float64("new_price", newPrice),
		zap.String("action", result.Recommendation.Action),
		zap.String("risk", result.Recommendation.RiskLevel))

	return result, nil
}

func scenarioName(r *Result) string {
	direction := "Increase"
	if r.PriceChangePercent < 0 {
		direction = "Decrease"
	}
	return fmt.Sprintf("Price %s %.1f%% - %d days", direction, math.Abs(r.PriceChangePercent), r.SimulationDays)
}

// CurvePoint is one sampled point on the power-law demand curve.
type CurvePoint struct {
	Price    float64 `json:"price"`
	Quantity float64 `json:"quantity"`
	Revenue  float64 `json:"revenue"`
	Profit   float64 `json:"profit"`
}

// Curve holds demand/revenue/profit sampled across a price range.
type Curve struct {
	ProductID       uint         `json:"product_id"`
	CurrentPrice    float64      `json:"current_price"`
	CurrentQuantity float64      `json:"current_quantity"`
	Elasticity      float64      `json:"elasticity"`
	OptimalPrice    float64      `json:"optimal_price"`
	Points          []CurvePoint `json:"points"`
}

// DemandCurve samples the fitted power-law relation Q = Q0 * (P/P0)^e across
// 70%..130% of the current price. Unlike Simulate, this uses the same
// exponential form as the optimal-price solver, because the curve is meant to
// show the solver's own optimum in context.
func (s *Service) DemandCurve(productID uint, points int) (*Curve, error) {
	if points <= 1 {
		points = 50
	}

	product, err := s.store.Product(productID)
	if err != nil {
		return nil, err
	}
	latest, err := s.store.LatestResult(productID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("%w: no elasticity baseline for product %d", elasticity.ErrSimulationInput, productID)
		}
		return nil, err
	}

	baselineDays := s.cfg.BaselineDays
	if baselineDays <= 0 {
		baselineDays = 90
	}
	avgQuantity, _, _, n, err := s.store.AverageDailyDemand(productID, time.Now().AddDate(0, 0, -baselineDays))
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, fmt.Errorf("%w: no demand baseline for product %d", elasticity.ErrInsufficientData, productID)
	}

	curve := &Curve{
		ProductID:       productID,
		CurrentPrice:    product.CurrentPrice,
		CurrentQuantity: avgQuantity,
		Elasticity:      latest.Coefficient,
		OptimalPrice:    latest.OptimalPrice,
	}

	minPrice := product.CurrentPrice * 0.7
	maxPrice := product.CurrentPrice * 1.3
	step := (maxPrice - minPrice) / float64(points-1)

	for i := 0; i < points; i++ {
		price := minPrice + step*float64(i)
		quantity := avgQuantity * math.Pow(price/product.CurrentPrice, latest.Coefficient)
		curve.Points = append(curve.Points, CurvePoint{
			Price:    price,
			Quantity: quantity,
			Revenue:  price * quantity,
			Profit:   (price - product.UnitCost) * quantity,
		})
	}

	return curve, nil
}

package scenario

import (
	"time"

	"go.uber.org/zap"
)

// SeasonalResult is a projection with the demand side rescaled by the
// product's historical seasonal pattern.
type SeasonalResult struct {
	*Result
	Season         string  `json:"season"`
	SeasonalFactor float64 `json:"seasonal_factor"`
}

// SimulateSeasonal runs an ordinary simulation, then rescales the predicted
// demand by how the named season historically compares to the labeled
// average. History without season labels, or an unseen season, leaves the
// projection unchanged (factor 1).
func (s *Service) SimulateSeasonal(productID uint, newPrice float64, days int, season string) (*SeasonalResult, error) {
	factor, err := s.seasonalFactor(productID, season)
	if err != nil {
		return nil, err
	}

	base, err := s.Simulate(productID, newPrice, days)
	if err != nil {
		return nil, err
	}
	if factor == 1 {
		return &SeasonalResult{Result: base, Season: season, SeasonalFactor: 1}, nil
	}

	product, err := s.store.Product(productID)
	if err != nil {
		return nil, err
	}

	adjusted := *base
	adjusted.PredictedDemand = base.PredictedDemand * factor
	adjusted.PredictedRevenue = adjusted.NewPrice * adjusted.PredictedDemand
	adjusted.PredictedProfit = (adjusted.NewPrice - product.UnitCost) * adjusted.PredictedDemand

	horizon := float64(adjusted.SimulationDays)
	adjusted.TotalPredictedRevenue = adjusted.PredictedRevenue * horizon
	adjusted.TotalPredictedProfit = adjusted.PredictedProfit * horizon

	// The deltas have to track the rescaled predictions, not the base run's.
	adjusted.DemandChangePercent = nil
	adjusted.RevenueChangePercent = nil
	adjusted.ProfitChangePercent = nil
	if adjusted.CurrentDemand != 0 {
		adjusted.DemandChangePercent = pct((adjusted.PredictedDemand - adjusted.CurrentDemand) / adjusted.CurrentDemand * 100)
	}
	if adjusted.CurrentRevenue != 0 {
		adjusted.RevenueChangePercent = pct((adjusted.PredictedRevenue - adjusted.CurrentRevenue) / adjusted.CurrentRevenue * 100)
	}
	if adjusted.CurrentProfit != 0 {
		adjusted.ProfitChangePercent = pct((adjusted.PredictedProfit - adjusted.CurrentProfit) / adjusted.CurrentProfit * 100)
	}

	if base.ConfidenceBand != nil {
		adjusted.ConfidenceBand = &Band{
			DemandLow:   base.ConfidenceBand.DemandLow * factor,
			DemandHigh:  base.ConfidenceBand.DemandHigh * factor,
			RevenueLow:  base.ConfidenceBand.RevenueLow * factor,
			RevenueHigh: base.ConfidenceBand.RevenueHigh * factor,
		}
	}

	s.logger.Info("Seasonal scenario simulated",
		zap.Uint("product_id", productID),
		zap.String("season", season),
		zap.Float64("seasonal_factor", factor))

	return &SeasonalResult{Result: &adjusted, Season: season, SeasonalFactor: factor}, nil
}

// seasonalFactor is the ratio of the season's mean quantity to the mean over
// all season-labeled rows in the baseline window.
func (s *Service) seasonalFactor(productID uint, season string) (float64, error) {
	baselineDays := s.cfg.BaselineDays
	if baselineDays <= 0 {
		baselineDays = 90
	}
	sales, err := s.store.History(productID, time.Now().AddDate(0, 0, -baselineDays), time.Time{})
	if err != nil {
		return 0, err
	}

	var labeledSum, seasonSum float64
	var labeledN, seasonN int
	for _, sale := range sales {
		if sale.Season == "" {
			continue
		}
		labeledSum += sale.Quantity
		labeledN++
		if sale.Season == season {
			seasonSum += sale.Quantity
			seasonN++
		}
	}
	if labeledN == 0 || seasonN == 0 || labeledSum == 0 {
		return 1, nil
	}
	return (seasonSum / float64(seasonN)) / (labeledSum / float64(labeledN)), nil
}

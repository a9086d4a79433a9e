package scenario

import (
	"fmt"

	"github.com/Uddhav-Saikia/ElasticRev/internal/elasticity"
	"go.uber.org/zap"
)

// BulkSimError is one product/price-change combination that could not be
// simulated. The rest of the grid proceeds regardless.
type BulkSimError struct {
	ProductID          uint    `json:"product_id"`
	PriceChangePercent float64 `json:"price_change_percent"`
	Kind               string  `json:"kind"`
	Message            string  `json:"message"`
}

// BulkSimReport aggregates a product-by-price-change simulation grid.
type BulkSimReport struct {
	Scenarios                   []*Result      `json:"scenarios"`
	TotalScenarios              int            `json:"total_scenarios"`
	TotalRevenueImpact          float64        `json:"total_revenue_impact"`
	TotalProfitImpact           float64        `json:"total_profit_impact"`
	AverageRevenueChangePercent *float64       `json:"average_revenue_change_percent"`
	Errors                      []BulkSimError `json:"errors,omitempty"`
}

// BulkSimulate runs every product against every relative price change over
// the default horizon. Failures are collected per combination instead of
// aborting the grid; each successful run is persisted like a single Simulate.
func (s *Service) BulkSimulate(productIDs []uint, priceChangePercents []float64) (*BulkSimReport, error) {
	if len(productIDs) == 0 || len(priceChangePercents) == 0 {
		return nil, fmt.Errorf("%w: bulk simulation needs at least one product and one price change",
			elasticity.ErrSimulationInput)
	}

	report := &BulkSimReport{}
	var revPctSum float64
	var revPctN int

	for _, productID := range productIDs {
		product, err := s.store.Product(productID)
		if err != nil {
			for _, change := range priceChangePercents {
				report.Errors = append(report.Errors, bulkError(productID, change, err))
			}
			continue
		}

		for _, change := range priceChangePercents {
			result, err := s.Simulate(productID, product.CurrentPrice*(1+change/100), s.cfg.DefaultDays)
			if err != nil {
				report.Errors = append(report.Errors, bulkError(productID, change, err))
				continue
			}

			report.Scenarios = append(report.Scenarios, result)
			report.TotalRevenueImpact += result.TotalPredictedRevenue - result.TotalCurrentRevenue
			report.TotalProfitImpact += result.TotalPredictedProfit - result.TotalCurrentProfit
			if result.RevenueChangePercent != nil {
				revPctSum += *result.RevenueChangePercent
				revPctN++
			}
		}
	}

	report.TotalScenarios = len(report.Scenarios)
	if revPctN > 0 {
		report.AverageRevenueChangePercent = pct(revPctSum / float64(revPctN))
	}

	s.logger.Info("Bulk simulation finished",
		zap.Int("products", len(productIDs)),
		zap.Int("scenarios", report.TotalScenarios),
		zap.Int("errors", len(report.Errors)))

	return report, nil
}

func bulkError(productID uint, change float64, err error) BulkSimError {
	return BulkSimError{
		ProductID:          productID,
		PriceChangePercent: change,
		Kind:               elasticity.KindOf(err),
		Message:            err.Error(),
	}
}

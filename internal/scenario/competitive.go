package scenario

import (
	"fmt"

	"github.com/Uddhav-Saikia/ElasticRev/internal/elasticity"
	"go.uber.org/zap"
)

// CompetitiveResponse describes the expected competitor reaction to a price
// move: after DelayDays they match MatchPercent of the change. A full match
// cancels the relative price advantage entirely.
type CompetitiveResponse struct {
	DelayDays    int     `json:"delay_days"`
	MatchPercent float64 `json:"match_percent"`
}

// CompetitiveResult is the two-phase projection around a competitor reaction.
type CompetitiveResult struct {
	ProductID          uint                `json:"product_id"`
	PriceChangePercent float64             `json:"our_price_change_percent"`
	Response           CompetitiveResponse `json:"competitor_response"`
	Phase1             *Result             `json:"phase1"`
	Phase2             *Result             `json:"phase2"`
	TotalRevenueImpact float64             `json:"total_revenue_impact"`
	TotalProfitImpact  float64             `json:"total_profit_impact"`
}

// SimulateCompetitiveResponse projects a price move in two phases: the window
// before the competitor reacts, at the full change, and the tail after they
// match, at the effective change that survives the matching. Both phases are
// persisted as ordinary scenarios.
func (s *Service) SimulateCompetitiveResponse(productID uint, priceChangePercent float64, resp CompetitiveResponse) (*CompetitiveResult, error) {
	if resp.DelayDays <= 0 {
		resp.DelayDays = 7
	}
	if resp.MatchPercent < 0 || resp.MatchPercent > 100 {
		return nil, fmt.Errorf("%w: match percent must be within [0, 100], got %.1f",
			elasticity.ErrSimulationInput, resp.MatchPercent)
	}

	product, err := s.store.Product(productID)
	if err != nil {
		return nil, err
	}

	phase1, err := s.Simulate(productID, product.CurrentPrice*(1+priceChangePercent/100), resp.DelayDays)
	if err != nil {
		return nil, err
	}

	effectiveChange := priceChangePercent * (1 - resp.MatchPercent/100)
	phase2, err := s.Simulate(productID, product.CurrentPrice*(1+effectiveChange/100), s.cfg.DefaultDays)
	if err != nil {
		return nil, err
	}

	result := &CompetitiveResult{
		ProductID:          productID,
		PriceChangePercent: priceChangePercent,
		Response:           resp,
		Phase1:             phase1,
		Phase2:             phase2,
		TotalRevenueImpact: (phase1.TotalPredictedRevenue - phase1.TotalCurrentRevenue) +
			(phase2.TotalPredictedRevenue - phase2.TotalCurrentRevenue),
		TotalProfitImpact: (phase1.TotalPredictedProfit - phase1.TotalCurrentProfit) +
			(phase2.TotalPredictedProfit - phase2.TotalCurrentProfit),
	}

	s.logger.Info("Competitive response simulated",
		zap.Uint("product_id", productID),
		zap.Float64("price_change_percent", priceChangePercent),
		zap.Float64("match_percent", resp.MatchPercent),
		zap.Float64("total_revenue_impact", result.TotalRevenueImpact))

	return result, nil
}

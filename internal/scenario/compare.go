package scenario

import (
	"fmt"

	"github.com/Uddhav-Saikia/ElasticRev/internal/elasticity"
	"github.com/Uddhav-Saikia/ElasticRev/internal/models"
)

// Comparison ranks a set of stored scenarios against each other, one winner
// per objective.
type Comparison struct {
	Scenarios      []models.Scenario `json:"scenarios"`
	BestForRevenue *models.Scenario  `json:"best_for_revenue"`
	BestForProfit  *models.Scenario  `json:"best_for_profit"`
	BestForVolume  *models.Scenario  `json:"best_for_volume"`
}

// CompareScenarios loads the given stored scenarios and picks the best one
// per objective by its percent delta. A scenario with an undefined (nil)
// delta never wins that objective.
func (s *Service) CompareScenarios(ids []uint) (*Comparison, error) {
	scenarios, err := s.store.ScenariosByIDs(ids)
	if err != nil {
		return nil, err
	}
	if len(scenarios) == 0 {
		return nil, fmt.Errorf("%w: no scenarios found", elasticity.ErrSimulationInput)
	}

	cmp := &Comparison{Scenarios: scenarios}
	for i := range scenarios {
		sc := &scenarios[i]
		if beats(sc.RevenueChangePct, cmp.BestForRevenue, func(m *models.Scenario) *float64 { return m.RevenueChangePct }) {
			cmp.BestForRevenue = sc
		}
		if beats(sc.ProfitChangePct, cmp.BestForProfit, func(m *models.Scenario) *float64 { return m.ProfitChangePct }) {
			cmp.BestForProfit = sc
		}
		if beats(sc.DemandChangePct, cmp.BestForVolume, func(m *models.Scenario) *float64 { return m.DemandChangePct }) {
			cmp.BestForVolume = sc
		}
	}
	return cmp, nil
}

func beats(candidate *float64, incumbent *models.Scenario, metric func(*models.Scenario) *float64) bool {
	if candidate == nil {
		return false
	}
	if incumbent == nil {
		return true
	}
	current := metric(incumbent)
	if current == nil {
		return true
	}
	return *candidate > *current
}

package scenario

import (
	"testing"

	"github.com/Uddhav-Saikia/ElasticRev/internal/elasticity"
	"github.com/Uddhav-Saikia/ElasticRev/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestService_SimulateCompetitiveResponse_TwoPhases(t *testing.T) {
	service, st, db := setupServiceTest(t)
	product := seedProduct(t, db)
	seedResult(t, st, product.ID, -1.5)
	seedRecentSales(t, db, product.ID, 20, 1000)

	// Zero delay falls back to the one-week default.
	result, err := service.SimulateCompetitiveResponse(product.ID, -10, CompetitiveResponse{MatchPercent: 100})

	assert.NoError(t, err)
	assert.Equal(t, 7, result.Response.DelayDays)

	// Phase 1 runs the full cut for the delay window: 1000 -> 1150.
	assert.Equal(t, 7, result.Phase1.SimulationDays)
	assert.InDelta(t, 90.0, result.Phase1.NewPrice, 1e-9)
	assert.InDelta(t, 1150.0, result.Phase1.PredictedDemand, 1e-9)

	// A full match erases the relative advantage: phase 2 is the status quo.
	assert.Equal(t, 30, result.Phase2.SimulationDays)
	assert.InDelta(t, 100.0, result.Phase2.NewPrice, 1e-9)
	assert.InDelta(t, 1000.0, result.Phase2.PredictedDemand, 1e-9)

	// Impacts sum both phases: 7 * (90*1150 - 100*1000) + 0.
	assert.InDelta(t, 7*3500.0, result.TotalRevenueImpact, 1e-6)
	assert.InDelta(t, 7*(30*1150.0-40*1000.0), result.TotalProfitImpact, 1e-6)

	// Both phases land in the scenarios log.
	var count int64
	assert.NoError(t, db.Model(&models.Scenario{}).Where("product_id = ?", product.ID).Count(&count).Error)
	assert.Equal(t, int64(2), count)
}

func TestService_SimulateCompetitiveResponse_PartialMatch(t *testing.T) {
	service, st, db := setupServiceTest(t)
	product := seedProduct(t, db)
	seedResult(t, st, product.ID, -1.5)
	seedRecentSales(t, db, product.ID, 20, 1000)

	result, err := service.SimulateCompetitiveResponse(product.ID, -10, CompetitiveResponse{DelayDays: 14, MatchPercent: 50})

	assert.NoError(t, err)
	assert.Equal(t, 14, result.Phase1.SimulationDays)
	// Half the cut survives the match: -5% at e = -1.5 gives 1075.
	assert.InDelta(t, 95.0, result.Phase2.NewPrice, 1e-9)
	assert.InDelta(t, 1075.0, result.Phase2.PredictedDemand, 1e-9)
}

func TestService_SimulateCompetitiveResponse_MatchPercentBounds(t *testing.T) {
	service, st, db := setupServiceTest(t)
	product := seedProduct(t, db)
	seedResult(t, st, product.ID, -1.5)
	seedRecentSales(t, db, product.ID, 20, 1000)

	for _, match := range []float64{-1, 101} {
		_, err := service.SimulateCompetitiveResponse(product.ID, -10, CompetitiveResponse{MatchPercent: match})
		assert.ErrorIs(t, err, elasticity.ErrSimulationInput)
	}
}

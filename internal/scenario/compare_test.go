package scenario

import (
	"testing"

	"github.com/Uddhav-Saikia/ElasticRev/internal/elasticity"
	"github.com/Uddhav-Saikia/ElasticRev/internal/models"
	"github.com/Uddhav-Saikia/ElasticRev/internal/store"
	"github.com/stretchr/testify/assert"
)

func seedScenario(t *testing.T, st *store.Store, revenuePct, profitPct, demandPct *float64) uint {
	scenario := &models.Scenario{
		ProductID:        1,
		CurrentPrice:     100,
		NewPrice:         90,
		RevenueChangePct: revenuePct,
		ProfitChangePct:  profitPct,
		DemandChangePct:  demandPct,
	}
	assert.NoError(t, st.SaveScenario(scenario))
	return scenario.ID
}

func TestService_CompareScenarios_PicksBestPerObjective(t *testing.T) {
	service, st, _ := setupServiceTest(t)

	// Volume play: revenue up a little, profit down, demand up a lot.
	volumeID := seedScenario(t, st, pct(3.5), pct(-13.75), pct(15.0))
	// Margin play: best revenue and profit, demand shrinks.
	marginID := seedScenario(t, st, pct(6.0), pct(2.0), pct(-8.0))
	// Undefined deltas must never win anything.
	nilID := seedScenario(t, st, nil, nil, nil)

	cmp, err := service.CompareScenarios([]uint{volumeID, marginID, nilID})

	assert.NoError(t, err)
	assert.Len(t, cmp.Scenarios, 3)
	assert.Equal(t, marginID, cmp.BestForRevenue.ID)
	assert.Equal(t, marginID, cmp.BestForProfit.ID)
	assert.Equal(t, volumeID, cmp.BestForVolume.ID)
}

func TestService_CompareScenarios_AllDeltasUndefined(t *testing.T) {
	service, st, _ := setupServiceTest(t)
	id := seedScenario(t, st, nil, nil, nil)

	cmp, err := service.CompareScenarios([]uint{id})

	assert.NoError(t, err)
	assert.Len(t, cmp.Scenarios, 1)
	assert.Nil(t, cmp.BestForRevenue)
	assert.Nil(t, cmp.BestForProfit)
	assert.Nil(t, cmp.BestForVolume)
}

func TestService_CompareScenarios_NoneFound(t *testing.T) {
	service, _, _ := setupServiceTest(t)

	_, err := service.CompareScenarios([]uint{41, 42})

	assert.ErrorIs(t, err, elasticity.ErrSimulationInput)
}

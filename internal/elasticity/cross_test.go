package elasticity

import (
	"math"
	"testing"
	"time"

	"github.com/Uddhav-Saikia/ElasticRev/internal/models"
	"github.com/stretchr/testify/assert"
)

// pairedSales builds two date-aligned histories where demand for A follows
// B's price through Q_A = a * P_B^e.
func pairedSales(n int, a, e float64) (salesA, salesB []models.Sale) {
	start := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		date := start.AddDate(0, 0, i)
		priceB := 20.0 + float64(i)
		salesB = append(salesB, models.Sale{ProductID: 2, Date: date, Price: priceB, Quantity: 50})
		salesA = append(salesA, models.Sale{
			ProductID: 1,
			Date:      date,
			Price:     12.0,
			Quantity:  a * math.Pow(priceB, e),
		})
	}
	return salesA, salesB
}

func TestCrossElasticity_Substitutes(t *testing.T) {
	// Demand for A rises with B's price.
	salesA, salesB := pairedSales(20, 10, 1.2)

	result, err := CrossElasticity(salesA, salesB, 10)

	assert.NoError(t, err)
	assert.InDelta(t, 1.2, result.CrossElasticity, 1e-6)
	assert.Equal(t, RelationshipSubstitutes, result.Relationship)
	assert.Equal(t, 20, result.SampleSize)
}

func TestCrossElasticity_Complements(t *testing.T) {
	salesA, salesB := pairedSales(20, 100000, -0.8)

	result, err := CrossElasticity(salesA, salesB, 10)

	assert.NoError(t, err)
	assert.InDelta(t, -0.8, result.CrossElasticity, 1e-6)
	assert.Equal(t, RelationshipComplements, result.Relationship)
}

func TestCrossElasticity_Independent(t *testing.T) {
	salesA, salesB := pairedSales(20, 500, 0.05)

	result, err := CrossElasticity(salesA, salesB, 10)

	assert.NoError(t, err)
	assert.Equal(t, RelationshipIndependent, result.Relationship)
}

func TestCrossElasticity_NoDateOverlap(t *testing.T) {
	salesA, salesB := pairedSales(20, 10, 1.2)
	for i := range salesB {
		salesB[i].Date = salesB[i].Date.AddDate(1, 0, 0)
	}

	_, err := CrossElasticity(salesA, salesB, 10)

	assert.ErrorIs(t, err, ErrInsufficientData)
}

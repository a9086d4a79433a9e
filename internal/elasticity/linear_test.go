package elasticity

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/Uddhav-Saikia/ElasticRev/internal/models"
	"github.com/stretchr/testify/assert"
)

// powerLawSales builds a history where quantity follows Q = A * P^e exactly.
// Prices are spaced tightly so the boosting model's derivative window around
// the mean price always covers observed points.
func powerLawSales(n int, a, e float64) []models.Sale {
	sales := make([]models.Sale, 0, n)
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		price := 10.0 + float64(i)*0.1
		sales = append(sales, models.Sale{
			ProductID: 1,
			Date:      start.AddDate(0, 0, i),
			Price:     price,
			Quantity:  a * math.Pow(price, e),
		})
	}
	return sales
}

func TestLinearModel_RecoversElasticity(t *testing.T) {
	// Arrange: noiseless power-law demand with e = -1.5.
	fs, err := BuildFeatures(powerLawSales(30, 5000, -1.5), DefaultFeatureOptions())
	assert.NoError(t, err)

	// Act
	fitted, err := (&LinearModel{}).Fit(context.Background(), fs)

	// Assert
	assert.NoError(t, err)
	coef, rsq := fitted.Coefficient()
	assert.InDelta(t, -1.5, coef, 1e-6)
	assert.NotNil(t, rsq)
	assert.InDelta(t, 1.0, *rsq, 1e-6)

	// A noiseless fit has a near-zero standard error, so the interval
	// collapses onto the point estimate.
	low, high, err := fitted.ConfidenceInterval(context.Background())
	assert.NoError(t, err)
	assert.InDelta(t, -1.5, low, 1e-3)
	assert.InDelta(t, -1.5, high, 1e-3)
	assert.LessOrEqual(t, low, high)
}

func TestLinearModel_Deterministic(t *testing.T) {
	fs, err := BuildFeatures(powerLawSales(25, 2000, -2.2), DefaultFeatureOptions())
	assert.NoError(t, err)

	model := &LinearModel{}
	first, err := model.Fit(context.Background(), fs)
	assert.NoError(t, err)
	second, err := model.Fit(context.Background(), fs)
	assert.NoError(t, err)

	coefA, _ := first.Coefficient()
	coefB, _ := second.Coefficient()
	assert.Equal(t, coefA, coefB)
}

func TestLinearModel_WithContextFeatures(t *testing.T) {
	// Demand responds to price and to promotions; the price weight must come
	// out unchanged by the extra column.
	sales := powerLawSales(30, 5000, -1.5)
	for i := range sales {
		if i%3 == 0 {
			sales[i].PromotionActive = true
			sales[i].Quantity *= math.Exp(0.2)
		}
	}

	fs, err := BuildFeatures(sales, DefaultFeatureOptions())
	assert.NoError(t, err)
	assert.Contains(t, fs.Columns, ColPromotionActive)

	fitted, err := (&LinearModel{}).Fit(context.Background(), fs)
	assert.NoError(t, err)

	coef, _ := fitted.Coefficient()
	assert.InDelta(t, -1.5, coef, 1e-6)
}

func TestOlsFit_TooFewRows(t *testing.T) {
	x := [][]float64{{1}, {2}}
	y := []float64{1, 2}

	_, err := olsFit(x, y)

	assert.ErrorIs(t, err, ErrInsufficientData)
}

func TestOlsFit_SingularDesignMatrix(t *testing.T) {
	// Two identical columns are perfectly collinear.
	x := make([][]float64, 12)
	y := make([]float64, 12)
	for i := range x {
		v := float64(i + 1)
		x[i] = []float64{v, v}
		y[i] = 2 * v
	}

	_, err := olsFit(x, y)

	assert.ErrorIs(t, err, ErrModelFit)
}

func TestTQuantile975(t *testing.T) {
	// Reference values from standard t tables.
	assert.InDelta(t, 2.228, tQuantile975(10), 0.01)
	assert.InDelta(t, 2.086, tQuantile975(20), 0.01)
	assert.InDelta(t, 1.984, tQuantile975(100), 0.01)
	assert.InDelta(t, 1.96, tQuantile975(100000), 0.001)
}

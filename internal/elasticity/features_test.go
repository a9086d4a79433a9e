package elasticity

import (
	"math"
	"testing"
	"time"

	"github.com/Uddhav-Saikia/ElasticRev/internal/models"
	"github.com/stretchr/testify/assert"
)

// makeSales builds a simple history with varying prices and quantities.
func makeSales(n int) []models.Sale {
	sales := make([]models.Sale, 0, n)
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		price := 10.0 + float64(i)*0.5
		sales = append(sales, models.Sale{
			ProductID: 1,
			Date:      start.AddDate(0, 0, i),
			Price:     price,
			Quantity:  100.0 - float64(i),
		})
	}
	return sales
}

func TestBuildFeatures_InsufficientRecords(t *testing.T) {
	_, err := BuildFeatures(makeSales(3), DefaultFeatureOptions())

	assert.ErrorIs(t, err, ErrInsufficientData)
}

func TestBuildFeatures_Basic(t *testing.T) {
	fs, err := BuildFeatures(makeSales(20), DefaultFeatureOptions())

	assert.NoError(t, err)
	assert.Len(t, fs.Y, 20)
	assert.Len(t, fs.X, 20)
	// No discounts, holidays or promotions in the history, so only the price
	// column survives pruning.
	assert.Equal(t, []string{ColLogPrice}, fs.Columns)
	assert.InDelta(t, math.Log(10.0), fs.X[0][0], 1e-9)
	assert.InDelta(t, math.Log(100.0), fs.Y[0], 1e-9)
}

func TestBuildFeatures_KeepsVaryingContextColumns(t *testing.T) {
	sales := makeSales(20)
	for i := range sales {
		if i%2 == 0 {
			sales[i].DiscountPercent = 10
			sales[i].IsHoliday = true
			sales[i].PromotionActive = true
		}
	}

	fs, err := BuildFeatures(sales, DefaultFeatureOptions())

	assert.NoError(t, err)
	assert.Equal(t, []string{ColLogPrice, ColDiscountPercent, ColIsHoliday, ColPromotionActive}, fs.Columns)
}

func TestBuildFeatures_ZeroQuantityDrop(t *testing.T) {
	sales := makeSales(12)
	sales[0].Quantity = 0
	sales[1].Quantity = 0
	sales[2].Quantity = 0

	// 12 records minus 3 dropped leaves 9, below the minimum of 10.
	_, err := BuildFeatures(sales, DefaultFeatureOptions())

	assert.ErrorIs(t, err, ErrInsufficientData)
}

func TestBuildFeatures_ZeroQuantityFloor(t *testing.T) {
	sales := makeSales(12)
	sales[0].Quantity = 0
	sales[1].Quantity = 0
	sales[2].Quantity = 0

	opts := DefaultFeatureOptions()
	opts.ZeroQuantity = ZeroQuantityFloor

	fs, err := BuildFeatures(sales, opts)

	assert.NoError(t, err)
	assert.Len(t, fs.Y, 12)
	assert.InDelta(t, math.Log(0.5), fs.Y[0], 1e-9)
}

func TestBuildFeatures_NonPositivePriceAlwaysDropped(t *testing.T) {
	sales := makeSales(11)
	sales[0].Price = 0

	fs, err := BuildFeatures(sales, DefaultFeatureOptions())

	assert.NoError(t, err)
	assert.Len(t, fs.Y, 10)
}

func TestBuildFeatures_ConstantPriceRejected(t *testing.T) {
	sales := makeSales(15)
	for i := range sales {
		sales[i].Price = 9.99
	}

	_, err := BuildFeatures(sales, DefaultFeatureOptions())

	assert.ErrorIs(t, err, ErrInsufficientData)
	assert.Contains(t, err.Error(), "price variance")
}

func TestBuildFeatures_CompetitorColumn(t *testing.T) {
	sales := makeSales(12)
	competitor := 11.5
	sales[4].CompetitorPrice = &competitor

	fs, err := BuildFeatures(sales, DefaultFeatureOptions())

	assert.NoError(t, err)
	assert.Contains(t, fs.Columns, ColLogCompetitorPrice)

	// Records without a quote fall back to their own price.
	idx := len(fs.Columns) - 1
	assert.InDelta(t, math.Log(sales[0].Price), fs.X[0][idx], 1e-9)
	assert.InDelta(t, math.Log(11.5), fs.X[4][idx], 1e-9)
}

func TestPercentile(t *testing.T) {
	sorted := []float64{1, 2, 3, 4, 5}

	assert.InDelta(t, 1.0, percentile(sorted, 0), 1e-9)
	assert.InDelta(t, 3.0, percentile(sorted, 0.5), 1e-9)
	assert.InDelta(t, 5.0, percentile(sorted, 1), 1e-9)
	assert.InDelta(t, 1.1, percentile(sorted, 0.025), 1e-9)
	assert.InDelta(t, 4.9, percentile(sorted, 0.975), 1e-9)
}

package elasticity

import (
	"fmt"
	"math"

	"github.com/Uddhav-Saikia/ElasticRev/internal/models"
)

// Feature column names, in the order they appear in FeatureSet.X.
const (
	ColLogPrice           = "log_price"
	ColDiscountPercent    = "discount_percent"
	ColIsHoliday          = "is_holiday"
	ColPromotionActive    = "promotion_active"
	ColLogCompetitorPrice = "log_competitor_price"
)

// ZeroQuantityPolicy decides what happens to records with quantity <= 0,
// which have no defined log transform.
type ZeroQuantityPolicy string

const (
	// ZeroQuantityDrop removes the record. This reduces the sample size.
	ZeroQuantityDrop ZeroQuantityPolicy = "drop"
	// ZeroQuantityFloor replaces the quantity with QuantityFloor and keeps
	// the record.
	ZeroQuantityFloor ZeroQuantityPolicy = "floor"
)

// FeatureOptions configures the transaction-to-matrix transform.
type FeatureOptions struct {
	MinSamples    int
	ZeroQuantity  ZeroQuantityPolicy
	QuantityFloor float64
}

// DefaultFeatureOptions returns the production defaults.
func DefaultFeatureOptions() FeatureOptions {
	return FeatureOptions{
		MinSamples:    10,
		ZeroQuantity:  ZeroQuantityDrop,
		QuantityFloor: 0.5,
	}
}

// FeatureSet is the model-ready matrix derived from one product's history.
// X rows parallel Y; Prices and Quantities hold the raw values of the kept
// records for derivative-based coefficient extraction.
type FeatureSet struct {
	Columns      []string
	X            [][]float64
	Y            []float64 // log quantity
	Prices       []float64
	Quantities   []float64
	MeanPrice    float64
	MeanQuantity float64
}

// LogPriceIndex returns the column index of log_price. It is always the first
// column, the accessor exists so model code does not hardcode the layout.
func (fs *FeatureSet) LogPriceIndex() int { return 0 }

// BuildFeatures transforms an ordered sales history into a feature matrix and
// log-quantity target. It is a pure transform with no side effects.
//
// Records with non-positive price are always dropped. Records with
// non-positive quantity follow opts.ZeroQuantity. The log_competitor_price
// column is only emitted when at least one record carries a competitor quote;
// records without one fall back to their own price, matching how the history
// was recorded upstream.
func BuildFeatures(sales []models.Sale, opts FeatureOptions) (*FeatureSet, error) {
	if opts.MinSamples <= 0 {
		opts.MinSamples = DefaultFeatureOptions().MinSamples
	}
	if opts.ZeroQuantity == "" {
		opts.ZeroQuantity = ZeroQuantityDrop
	}

	if len(sales) < opts.MinSamples {
		return nil, fmt.Errorf("%w: %d records, need at least %d", ErrInsufficientData, len(sales), opts.MinSamples)
	}

	hasCompetitor := false
	for _, s := range sales {
		if s.CompetitorPrice != nil && *s.CompetitorPrice > 0 {
			hasCompetitor = true
			break
		}
	}

	columns := []string{ColLogPrice, ColDiscountPercent, ColIsHoliday, ColPromotionActive}
	if hasCompetitor {
		columns = append(columns, ColLogCompetitorPrice)
	}

	fs := &FeatureSet{Columns: columns}

	for _, s := range sales {
		if s.Price <= 0 {
			continue
		}

		quantity := s.Quantity
		if quantity <= 0 {
			if opts.ZeroQuantity == ZeroQuantityDrop {
				continue
			}
			quantity = opts.QuantityFloor
		}

		row := make([]float64, 0, len(columns))
		row = append(row, math.Log(s.Price))
		row = append(row, s.DiscountPercent)
		row = append(row, boolFeature(s.IsHoliday))
		row = append(row, boolFeature(s.PromotionActive))
		if hasCompetitor {
			competitor := s.Price
			if s.CompetitorPrice != nil && *s.CompetitorPrice > 0 {
				competitor = *s.CompetitorPrice
			}
			row = append(row, math.Log(competitor))
		}

		fs.X = append(fs.X, row)
		fs.Y = append(fs.Y, math.Log(quantity))
		fs.Prices = append(fs.Prices, s.Price)
		fs.Quantities = append(fs.Quantities, quantity)
	}

	n := len(fs.X)
	if n < opts.MinSamples {
		return nil, fmt.Errorf("%w: %d usable records after filtering, need at least %d", ErrInsufficientData, n, opts.MinSamples)
	}

	fs.MeanPrice = mean(fs.Prices)
	fs.MeanQuantity = mean(fs.Quantities)

	if variance(fs.Prices, fs.MeanPrice) == 0 {
		return nil, fmt.Errorf("%w: price variance is zero", ErrInsufficientData)
	}
	if variance(fs.Quantities, fs.MeanQuantity) == 0 {
		return nil, fmt.Errorf("%w: quantity variance is zero", ErrInsufficientData)
	}

	fs.pruneConstantColumns()

	return fs, nil
}

// pruneConstantColumns drops context columns with zero variance across the
// kept records. A history with no holidays or promotions would otherwise put
// an all-zero column into the design matrix and make it singular. log_price
// is always kept; its variance is guarded separately.
func (fs *FeatureSet) pruneConstantColumns() {
	keep := []int{fs.LogPriceIndex()}
	for j := 1; j < len(fs.Columns); j++ {
		col := make([]float64, len(fs.X))
		for i, row := range fs.X {
			col[i] = row[j]
		}
		if variance(col, mean(col)) > 0 {
			keep = append(keep, j)
		}
	}
	if len(keep) == len(fs.Columns) {
		return
	}

	columns := make([]string, 0, len(keep))
	for _, j := range keep {
		columns = append(columns, fs.Columns[j])
	}
	for i, row := range fs.X {
		pruned := make([]float64, 0, len(keep))
		for _, j := range keep {
			pruned = append(pruned, row[j])
		}
		fs.X[i] = pruned
	}
	fs.Columns = columns
}

func boolFeature(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func variance(values []float64, mean float64) float64 {
	if len(values) < 2 {
		return 0
	}
	sumSq := 0.0
	for _, v := range values {
		diff := v - mean
		sumSq += diff * diff
	}
	return sumSq / float64(len(values)-1)
}

// percentile uses linear interpolation over a pre-sorted ascending slice.
func percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if n == 1 {
		return sorted[0]
	}

	idx := p * float64(n-1)
	lower := int(idx)
	upper := lower + 1
	if upper >= n {
		return sorted[n-1]
	}

	frac := idx - float64(lower)
	return sorted[lower] + frac*(sorted[upper]-sorted[lower])
}

package elasticity

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sort"
	"time"
)

// Gradient-boosting hyperparameters. The bootstrap refits use fewer trees so
// the interval stays affordable at O(iterations) full refits.
const (
	boostTrees          = 100
	boostBootstrapTrees = 50
	boostLearningRate   = 0.1
	boostMaxDepth       = 3
	boostMinLeaf        = 1
	derivativeStep      = 0.01 // +-1% of mean price
)

// GradientBoostingModel estimates elasticity with boosted regression trees of
// raw quantity on price and context features. The coefficient is extracted as
// a central-difference derivative of predicted quantity at the mean price,
// converted through e = (dQ/dP) * (P/Q). Strictly more expensive than the
// linear variant; callers opt in for higher fidelity on non-linear demand.
type GradientBoostingModel struct {
	params ModelParams
}

// NewGradientBoostingModel creates the variant with the given tunables.
func NewGradientBoostingModel(params ModelParams) *GradientBoostingModel {
	if params.BootstrapIters <= 0 {
		params.BootstrapIters = 100
	}
	return &GradientBoostingModel{params: params}
}

// Type implements Model.
func (m *GradientBoostingModel) Type() ModelType { return ModelGradientBoosting }

// Fit implements Model.
func (m *GradientBoostingModel) Fit(ctx context.Context, fs *FeatureSet) (Fitted, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ensemble := fitEnsemble(fs.X, fs.Quantities, boostTrees)

	coef, err := extractElasticity(ensemble, fs)
	if err != nil {
		return nil, err
	}

	// In-sample coefficient of determination against raw quantities.
	rsq := rSquared(ensemble, fs.X, fs.Quantities)

	return &boostedFit{
		fs:          fs,
		coefficient: coef,
		rsquared:    rsq,
		params:      m.params,
	}, nil
}

type boostedFit struct {
	fs          *FeatureSet
	coefficient float64
	rsquared    float64
	params      ModelParams
}

// Coefficient implements Fitted.
func (f *boostedFit) Coefficient() (float64, *float64) {
	rsq := f.rsquared
	return f.coefficient, &rsq
}

// ConfidenceInterval implements Fitted. Bootstrap: resample the training set
// with replacement, refit, re-extract the coefficient, and take the
// 2.5th/97.5th percentiles of the resulting distribution. Cancellation is
// checked between iterations so a caller can abandon a long job.
func (f *boostedFit) ConfidenceInterval(ctx context.Context) (float64, float64, error) {
	seed := f.params.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	n := len(f.fs.X)
	coefficients := make([]float64, 0, f.params.BootstrapIters)

	for iter := 0; iter < f.params.BootstrapIters; iter++ {
		if err := ctx.Err(); err != nil {
			return 0, 0, fmt.Errorf("bootstrap canceled after %d iterations: %w", iter, err)
		}

		sampleX := make([][]float64, n)
		sampleQ := make([]float64, n)
		for i := 0; i < n; i++ {
			j := rng.Intn(n)
			sampleX[i] = f.fs.X[j]
			sampleQ[i] = f.fs.Quantities[j]
		}

		ensemble := fitEnsemble(sampleX, sampleQ, boostBootstrapTrees)
		coef, err := extractElasticity(ensemble, f.fs)
		if err != nil {
			// A degenerate resample (e.g. one repeated row) is skipped, not
			// fatal to the interval.
			continue
		}
		coefficients = append(coefficients, coef)
	}

	if len(coefficients) == 0 {
		return 0, 0, fmt.Errorf("%w: no successful bootstrap refits", ErrModelFit)
	}

	sort.Float64s(coefficients)
	return percentile(coefficients, 0.025), percentile(coefficients, 0.975), nil
}

// extractElasticity evaluates the fitted ensemble at the mean operating point
// with the price perturbed by +-1%, and converts the numerical derivative to
// a point elasticity.
func extractElasticity(ensemble *boostedEnsemble, fs *FeatureSet) (float64, error) {
	if fs.MeanQuantity == 0 || fs.MeanPrice == 0 {
		return 0, fmt.Errorf("%w: zero mean price or quantity", ErrModelFit)
	}

	base := columnMeans(fs.X)
	priceIdx := fs.LogPriceIndex()

	plus := make([]float64, len(base))
	minus := make([]float64, len(base))
	copy(plus, base)
	copy(minus, base)
	plus[priceIdx] = math.Log(fs.MeanPrice * (1 + derivativeStep))
	minus[priceIdx] = math.Log(fs.MeanPrice * (1 - derivativeStep))

	qPlus := ensemble.predict(plus)
	qMinus := ensemble.predict(minus)

	dQdP := (qPlus - qMinus) / (2 * derivativeStep * fs.MeanPrice)
	coef := dQdP * fs.MeanPrice / fs.MeanQuantity

	if math.IsNaN(coef) || math.IsInf(coef, 0) {
		return 0, fmt.Errorf("%w: non-finite derivative at mean price", ErrModelFit)
	}
	return coef, nil
}

func columnMeans(x [][]float64) []float64 {
	if len(x) == 0 {
		return nil
	}
	means := make([]float64, len(x[0]))
	for _, row := range x {
		for j, v := range row {
			means[j] += v
		}
	}
	for j := range means {
		means[j] /= float64(len(x))
	}
	return means
}

func rSquared(ensemble *boostedEnsemble, x [][]float64, y []float64) float64 {
	meanY := mean(y)
	ssr, sst := 0.0, 0.0
	for i, row := range x {
		residual := y[i] - ensemble.predict(row)
		ssr += residual * residual
		dev := y[i] - meanY
		sst += dev * dev
	}
	if sst == 0 {
		return 0
	}
	return 1 - ssr/sst
}

// boostedEnsemble is a least-squares gradient-boosting machine: a constant
// base prediction plus shrunken regression trees fitted to residuals.
type boostedEnsemble struct {
	base  float64
	trees []*treeNode
	lr    float64
}

func fitEnsemble(x [][]float64, y []float64, nTrees int) *boostedEnsemble {
	ensemble := &boostedEnsemble{base: mean(y), lr: boostLearningRate}

	residuals := make([]float64, len(y))
	for i, v := range y {
		residuals[i] = v - ensemble.base
	}

	indices := make([]int, len(y))
	for i := range indices {
		indices[i] = i
	}

	for t := 0; t < nTrees; t++ {
		tree := buildTree(x, residuals, indices, 0)
		ensemble.trees = append(ensemble.trees, tree)
		for i, row := range x {
			residuals[i] -= ensemble.lr * tree.predict(row)
		}
	}
	return ensemble
}

func (e *boostedEnsemble) predict(row []float64) float64 {
	pred := e.base
	for _, tree := range e.trees {
		pred += e.lr * tree.predict(row)
	}
	return pred
}

// treeNode is a binary regression tree node. Leaves carry the mean residual
// of their samples.
type treeNode struct {
	leaf      bool
	value     float64
	feature   int
	threshold float64
	left      *treeNode
	right     *treeNode
}

func (n *treeNode) predict(row []float64) float64 {
	node := n
	for !node.leaf {
		if row[node.feature] <= node.threshold {
			node = node.left
		} else {
			node = node.right
		}
	}
	return node.value
}

// buildTree grows a depth-limited tree by exhaustive variance-reduction
// splits. Thresholds are midpoints between adjacent sorted feature values.
func buildTree(x [][]float64, y []float64, indices []int, depth int) *treeNode {
	leafValue := func() *treeNode {
		sum := 0.0
		for _, i := range indices {
			sum += y[i]
		}
		return &treeNode{leaf: true, value: sum / float64(len(indices))}
	}

	if depth >= boostMaxDepth || len(indices) <= 2*boostMinLeaf {
		return leafValue()
	}

	feature, threshold, ok := bestSplit(x, y, indices)
	if !ok {
		return leafValue()
	}

	var left, right []int
	for _, i := range indices {
		if x[i][feature] <= threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	if len(left) < boostMinLeaf || len(right) < boostMinLeaf {
		return leafValue()
	}

	return &treeNode{
		feature:   feature,
		threshold: threshold,
		left:      buildTree(x, y, left, depth+1),
		right:     buildTree(x, y, right, depth+1),
	}
}

// bestSplit scans every feature with a sorted prefix-sum sweep and returns
// the split minimizing the summed squared error of the two children.
func bestSplit(x [][]float64, y []float64, indices []int) (int, float64, bool) {
	n := len(indices)
	nFeatures := len(x[indices[0]])

	totalSum := 0.0
	for _, i := range indices {
		totalSum += y[i]
	}

	// A split must beat the parent's own score to count as a gain.
	bestGain := totalSum * totalSum / float64(n)
	bestFeature := -1
	bestThreshold := 0.0

	sorted := make([]int, n)
	for f := 0; f < nFeatures; f++ {
		copy(sorted, indices)
		sort.Slice(sorted, func(a, b int) bool {
			return x[sorted[a]][f] < x[sorted[b]][f]
		})

		leftSum := 0.0
		for pos := 0; pos < n-1; pos++ {
			i := sorted[pos]
			leftSum += y[i]

			// No valid threshold between equal values.
			if x[i][f] == x[sorted[pos+1]][f] {
				continue
			}

			leftN := float64(pos + 1)
			rightN := float64(n - pos - 1)
			if int(leftN) < boostMinLeaf || int(rightN) < boostMinLeaf {
				continue
			}

			rightSum := totalSum - leftSum
			// Variance-reduction gain, dropping terms constant across splits.
			gain := leftSum*leftSum/leftN + rightSum*rightSum/rightN
			if gain > bestGain {
				bestGain = gain
				bestFeature = f
				bestThreshold = (x[i][f] + x[sorted[pos+1]][f]) / 2
			}
		}
	}

	if bestFeature < 0 {
		return 0, 0, false
	}
	return bestFeature, bestThreshold, true
}

package elasticity

import (
	"context"
	"fmt"
	"math"
)

// LinearModel estimates elasticity with an ordinary-least-squares regression
// of log quantity on log price plus the contextual features. In a log-log
// model the fitted weight on log_price is the point elasticity directly.
// The fit is fully deterministic: identical input produces bit-identical
// coefficient, r-squared and interval.
type LinearModel struct{}

// Type implements Model.
func (m *LinearModel) Type() ModelType { return ModelLinear }

// Fit implements Model.
func (m *LinearModel) Fit(_ context.Context, fs *FeatureSet) (Fitted, error) {
	fit, err := olsFit(fs.X, fs.Y)
	if err != nil {
		return nil, err
	}

	// Coefficient index 0 is the intercept, feature j maps to j+1.
	coefIdx := fs.LogPriceIndex() + 1
	coef := fit.beta[coefIdx]
	if math.IsNaN(coef) || math.IsInf(coef, 0) {
		return nil, fmt.Errorf("%w: non-finite log_price weight", ErrModelFit)
	}

	return &linearFit{
		coefficient: coef,
		rsquared:    fit.rsquared,
		stderr:      fit.stderr[coefIdx],
		dof:         fit.dof,
	}, nil
}

type linearFit struct {
	coefficient float64
	rsquared    float64
	stderr      float64
	dof         int
}

// Coefficient implements Fitted.
func (f *linearFit) Coefficient() (float64, *float64) {
	rsq := f.rsquared
	return f.coefficient, &rsq
}

// ConfidenceInterval implements Fitted. The interval is the analytic 95%
// interval from the weight's standard error and the Student-t quantile at the
// residual degrees of freedom.
func (f *linearFit) ConfidenceInterval(_ context.Context) (float64, float64, error) {
	t := tQuantile975(f.dof)
	return f.coefficient - t*f.stderr, f.coefficient + t*f.stderr, nil
}

// olsResult holds the pieces of an OLS fit shared by the linear model and the
// cross-elasticity estimator.
type olsResult struct {
	beta     []float64 // intercept first
	stderr   []float64
	rsquared float64
	dof      int // residual degrees of freedom
}

// olsFit solves the normal equations for y = b0 + b·x with an intercept
// column prepended. Fails with ErrModelFit when the design matrix is
// singular (collinear features).
func olsFit(x [][]float64, y []float64) (*olsResult, error) {
	n := len(x)
	if n == 0 || n != len(y) {
		return nil, fmt.Errorf("%w: empty or mismatched design matrix", ErrModelFit)
	}
	p := len(x[0]) + 1 // intercept
	if n <= p {
		return nil, fmt.Errorf("%w: %d rows for %d parameters", ErrInsufficientData, n, p)
	}

	// X'X and X'y with the implicit leading ones column.
	xtx := make([][]float64, p)
	for i := range xtx {
		xtx[i] = make([]float64, p)
	}
	xty := make([]float64, p)

	for r := 0; r < n; r++ {
		row := make([]float64, p)
		row[0] = 1
		copy(row[1:], x[r])
		for i := 0; i < p; i++ {
			xty[i] += row[i] * y[r]
			for j := i; j < p; j++ {
				xtx[i][j] += row[i] * row[j]
			}
		}
	}
	// Mirror the upper triangle.
	for i := 1; i < p; i++ {
		for j := 0; j < i; j++ {
			xtx[i][j] = xtx[j][i]
		}
	}

	inv, err := invertMatrix(xtx)
	if err != nil {
		return nil, err
	}

	beta := make([]float64, p)
	for i := 0; i < p; i++ {
		for j := 0; j < p; j++ {
			beta[i] += inv[i][j] * xty[j]
		}
	}

	// Residual sum of squares and total sum of squares.
	meanY := mean(y)
	ssr, sst := 0.0, 0.0
	for r := 0; r < n; r++ {
		pred := beta[0]
		for j := 0; j < p-1; j++ {
			pred += beta[j+1] * x[r][j]
		}
		residual := y[r] - pred
		ssr += residual * residual
		dev := y[r] - meanY
		sst += dev * dev
	}

	dof := n - p
	sigma2 := ssr / float64(dof)
	stderr := make([]float64, p)
	for i := 0; i < p; i++ {
		stderr[i] = math.Sqrt(sigma2 * inv[i][i])
	}

	rsquared := 0.0
	if sst > 0 {
		rsquared = 1 - ssr/sst
	}

	for _, b := range beta {
		if math.IsNaN(b) || math.IsInf(b, 0) {
			return nil, fmt.Errorf("%w: non-finite weights", ErrModelFit)
		}
	}

	return &olsResult{beta: beta, stderr: stderr, rsquared: rsquared, dof: dof}, nil
}

// invertMatrix inverts a square matrix with Gauss-Jordan elimination and
// partial pivoting. The matrices here are tiny (at most 7x7).
func invertMatrix(m [][]float64) ([][]float64, error) {
	n := len(m)
	aug := make([][]float64, n)
	for i := 0; i < n; i++ {
		aug[i] = make([]float64, 2*n)
		copy(aug[i], m[i])
		aug[i][n+i] = 1
	}

	for col := 0; col < n; col++ {
		pivot := col
		for r := col + 1; r < n; r++ {
			if math.Abs(aug[r][col]) > math.Abs(aug[pivot][col]) {
				pivot = r
			}
		}
		if math.Abs(aug[pivot][col]) < 1e-12 {
			return nil, fmt.Errorf("%w: singular design matrix", ErrModelFit)
		}
		aug[col], aug[pivot] = aug[pivot], aug[col]

		pv := aug[col][col]
		for j := 0; j < 2*n; j++ {
			aug[col][j] /= pv
		}
		for r := 0; r < n; r++ {
			if r == col {
				continue
			}
			factor := aug[r][col]
			if factor == 0 {
				continue
			}
			for j := 0; j < 2*n; j++ {
				aug[r][j] -= factor * aug[col][j]
			}
		}
	}

	inv := make([][]float64, n)
	for i := 0; i < n; i++ {
		inv[i] = aug[i][n:]
	}
	return inv, nil
}

// tQuantile975 approximates the 97.5th percentile of the Student-t
// distribution with df degrees of freedom via a Cornish-Fisher expansion
// around the normal quantile. Accurate to ~1e-3 for df >= 5, which is well
// inside the minimum-sample guarantee.
func tQuantile975(df int) float64 {
	const z = 1.959963984540054 // Phi^-1(0.975)
	if df <= 0 {
		return z
	}
	v := float64(df)
	z3 := z * z * z
	z5 := z3 * z * z
	z7 := z5 * z * z
	t := z +
		(z3+z)/(4*v) +
		(5*z5+16*z3+3*z)/(96*v*v) +
		(3*z7+19*z5+17*z3-15*z)/(384*v*v*v)
	return t
}

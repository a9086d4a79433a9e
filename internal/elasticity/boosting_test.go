package elasticity

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGradientBoosting_RecoversDownwardSlope(t *testing.T) {
	// Strictly decreasing power-law demand. The boosted ensemble is a step
	// function, so only the sign and rough magnitude are asserted.
	fs, err := BuildFeatures(powerLawSales(40, 100000, -2.0), DefaultFeatureOptions())
	assert.NoError(t, err)

	model := NewGradientBoostingModel(ModelParams{BootstrapIters: 10, Seed: 1})
	fitted, err := model.Fit(context.Background(), fs)
	assert.NoError(t, err)

	coef, rsq := fitted.Coefficient()
	assert.Negative(t, coef)
	assert.NotNil(t, rsq)
	assert.Greater(t, *rsq, 0.9)
}

func TestGradientBoosting_SeededIntervalIsReproducible(t *testing.T) {
	fs, err := BuildFeatures(powerLawSales(30, 50000, -1.8), DefaultFeatureOptions())
	assert.NoError(t, err)

	params := ModelParams{BootstrapIters: 20, Seed: 42}

	fittedA, err := NewGradientBoostingModel(params).Fit(context.Background(), fs)
	assert.NoError(t, err)
	lowA, highA, err := fittedA.ConfidenceInterval(context.Background())
	assert.NoError(t, err)

	fittedB, err := NewGradientBoostingModel(params).Fit(context.Background(), fs)
	assert.NoError(t, err)
	lowB, highB, err := fittedB.ConfidenceInterval(context.Background())
	assert.NoError(t, err)

	assert.Equal(t, lowA, lowB)
	assert.Equal(t, highA, highB)
	assert.LessOrEqual(t, lowA, highA)
}

func TestGradientBoosting_IntervalHonorsCancellation(t *testing.T) {
	fs, err := BuildFeatures(powerLawSales(30, 50000, -1.8), DefaultFeatureOptions())
	assert.NoError(t, err)

	fitted, err := NewGradientBoostingModel(ModelParams{BootstrapIters: 1000, Seed: 7}).Fit(context.Background(), fs)
	assert.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err = fitted.ConfidenceInterval(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestGradientBoosting_FitHonorsCancellation(t *testing.T) {
	fs, err := BuildFeatures(powerLawSales(30, 50000, -1.8), DefaultFeatureOptions())
	assert.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = NewGradientBoostingModel(ModelParams{}).Fit(ctx, fs)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFitEnsemble_PredictsTrainingData(t *testing.T) {
	x := [][]float64{{1}, {2}, {3}, {4}, {5}, {6}}
	y := []float64{10, 9, 8, 4, 3, 2}

	ensemble := fitEnsemble(x, y, boostTrees)

	for i, row := range x {
		assert.InDelta(t, y[i], ensemble.predict(row), 0.5, "row %d", i)
	}
}

func TestParseModelType(t *testing.T) {
	tests := []struct {
		in      string
		want    ModelType
		wantErr bool
	}{
		{"linear", ModelLinear, false},
		{"linear_regression", ModelLinear, false},
		{"", ModelLinear, false},
		{"gradient_boosting", ModelGradientBoosting, false},
		{"quadratic", ModelLinear, true},
	}

	for _, tt := range tests {
		got, err := ParseModelType(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		assert.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

package elasticity

import (
	"context"
	"fmt"
)

// ModelType selects the estimation variant.
type ModelType int

const (
	ModelLinear ModelType = iota
	ModelGradientBoosting
)

// String returns the persisted name of the model type.
func (t ModelType) String() string {
	switch t {
	case ModelLinear:
		return "linear"
	case ModelGradientBoosting:
		return "gradient_boosting"
	default:
		return "unknown"
	}
}

// ParseModelType converts an external tag into a ModelType.
func ParseModelType(s string) (ModelType, error) {
	switch s {
	case "linear", "linear_regression", "":
		return ModelLinear, nil
	case "gradient_boosting":
		return ModelGradientBoosting, nil
	default:
		return ModelLinear, fmt.Errorf("unknown model type %q", s)
	}
}

// ModelParams tunes a model instance. Zero values fall back to defaults.
type ModelParams struct {
	// BootstrapIters is the number of resample-and-refit rounds used for the
	// gradient-boosting confidence interval.
	BootstrapIters int
	// Seed fixes the bootstrap RNG for reproducible intervals. 0 means
	// time-seeded.
	Seed int64
}

// Model fits a demand-vs-price relationship on a feature set.
type Model interface {
	Type() ModelType
	Fit(ctx context.Context, fs *FeatureSet) (Fitted, error)
}

// Fitted exposes the coefficient and its uncertainty for one completed fit.
type Fitted interface {
	// Coefficient returns the signed point elasticity and the fit's
	// r-squared. A nil r-squared means the model does not provide one.
	Coefficient() (float64, *float64)

	// ConfidenceInterval returns the 95% interval bounds for the
	// coefficient. The gradient-boosting variant refits under the hood and
	// honors ctx cancellation between iterations.
	ConfidenceInterval(ctx context.Context) (low, high float64, err error)
}

// NewModel is the enum-keyed factory for estimation variants.
func NewModel(t ModelType, params ModelParams) (Model, error) {
	switch t {
	case ModelLinear:
		return &LinearModel{}, nil
	case ModelGradientBoosting:
		return NewGradientBoostingModel(params), nil
	default:
		return nil, fmt.Errorf("no model registered for type %d", t)
	}
}

package elasticity

import "errors"

// Error taxonomy of the estimation core. Callers match with errors.Is and map
// the kind to their own surface (HTTP status, batch report entry, ...).
// Every error is local to one product and one calculation.
var (
	// ErrInsufficientData means the history has too few usable records or
	// degenerate variance. Not retryable with the same input.
	ErrInsufficientData = errors.New("insufficient data for elasticity calculation")

	// ErrModelFit means the fit did not converge or produced NaN/Inf output.
	// The caller may retry with the other model variant.
	ErrModelFit = errors.New("model fit failed")

	// ErrDegenerateElasticity means the coefficient sits exactly on the
	// singular point of the markup rule (e == -1).
	ErrDegenerateElasticity = errors.New("degenerate elasticity coefficient")

	// ErrSimulationInput means a scenario request was rejected before any
	// computation (non-positive price, missing baseline, out-of-bounds move).
	ErrSimulationInput = errors.New("invalid simulation input")
)

// Machine-readable error kinds.
const (
	KindInsufficientData     = "insufficient_data"
	KindModelFit             = "model_fit"
	KindDegenerateElasticity = "degenerate_elasticity"
	KindSimulationInput      = "simulation_input"
	KindInternal             = "internal"
)

// KindOf maps an error to its machine-readable kind.
func KindOf(err error) string {
	switch {
	case errors.Is(err, ErrInsufficientData):
		return KindInsufficientData
	case errors.Is(err, ErrModelFit):
		return KindModelFit
	case errors.Is(err, ErrDegenerateElasticity):
		return KindDegenerateElasticity
	case errors.Is(err, ErrSimulationInput):
		return KindSimulationInput
	default:
		return KindInternal
	}
}

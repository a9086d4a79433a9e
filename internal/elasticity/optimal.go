package elasticity

import (
	"fmt"
	"math"

	"github.com/Uddhav-Saikia/ElasticRev/internal/models"
)

// SolverOptions tunes the optimal-price computation.
type SolverOptions struct {
	// InelasticPriceCap bounds the price raise suggested for inelastic
	// demand, as a fraction over the current price. In-model the markup rule
	// has no optimum for e > -1 (any raise improves revenue), so the cap is
	// a policy choice, not a derivation.
	InelasticPriceCap float64
}

// DefaultSolverOptions returns the production defaults.
func DefaultSolverOptions() SolverOptions {
	return SolverOptions{InelasticPriceCap: 0.5}
}

// PriceSolution is the output of the optimal-price computation.
type PriceSolution struct {
	OptimalPrice                 float64
	ExpectedRevenueChangePercent float64
	RecommendedAction            string
}

// OptimalPrice computes the revenue-maximizing price for a fitted elasticity.
//
// For elastic demand (e < -1) the standard markup rule applies:
// P* = c * e / (e + 1). At e == -1 exactly the rule is singular and the
// solver fails with ErrDegenerateElasticity; the caller decides the fallback.
// For inelastic demand (e > -1) the in-model optimum is unbounded, so the
// solver returns the policy-capped raise instead.
//
// The expected revenue change evaluates demand at P* through the power-law
// relation Q* = Q * (P*/P)^e and compares P*·Q* to P·Q.
func OptimalPrice(coefficient, unitCost, currentPrice, avgQuantity float64, opts SolverOptions) (*PriceSolution, error) {
	if opts.InelasticPriceCap <= 0 {
		opts.InelasticPriceCap = DefaultSolverOptions().InelasticPriceCap
	}
	if currentPrice <= 0 {
		return nil, fmt.Errorf("%w: non-positive current price", ErrDegenerateElasticity)
	}

	var optimal float64
	switch {
	case coefficient == -1:
		return nil, fmt.Errorf("%w: markup rule singular at e = -1", ErrDegenerateElasticity)
	case coefficient < -1:
		optimal = unitCost * (coefficient / (coefficient + 1))
	default:
		// Inelastic (or positive-sloping) demand: policy cap.
		optimal = currentPrice * (1 + opts.InelasticPriceCap)
	}

	if math.IsNaN(optimal) || math.IsInf(optimal, 0) || optimal <= 0 {
		return nil, fmt.Errorf("%w: non-finite optimal price", ErrDegenerateElasticity)
	}

	revenueChange := 0.0
	baseline := currentPrice * avgQuantity
	if baseline > 0 {
		predictedQty := avgQuantity * math.Pow(optimal/currentPrice, coefficient)
		revenueChange = (optimal*predictedQty - baseline) / baseline * 100
	}

	return &PriceSolution{
		OptimalPrice:                 optimal,
		ExpectedRevenueChangePercent: revenueChange,
		RecommendedAction:            actionFor(optimal, currentPrice),
	}, nil
}

// actionFor derives the stored recommendation from the price move direction.
// Moves under half a percent are treated as holds.
func actionFor(optimal, current float64) string {
	const tolerance = 0.005
	switch {
	case optimal > current*(1+tolerance):
		return models.ActionIncreasePrice
	case optimal < current*(1-tolerance):
		return models.ActionDecreasePrice
	default:
		return models.ActionHoldPrice
	}
}

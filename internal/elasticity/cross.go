package elasticity

import (
	"fmt"
	"math"

	"github.com/Uddhav-Saikia/ElasticRev/internal/models"
)

// Cross-elasticity relationship classifications.
const (
	RelationshipSubstitutes = "substitutes"
	RelationshipComplements = "complements"
	RelationshipIndependent = "independent"

	crossRelationThreshold = 0.3
)

// CrossElasticityResult describes how demand for one product responds to the
// other product's price.
type CrossElasticityResult struct {
	CrossElasticity float64
	Relationship    string
	RSquared        float64
	SampleSize      int
}

// CrossElasticity regresses log quantity of product A on log price of
// product B over date-aligned sales rows. A positive coefficient marks
// substitutes, a negative one complements.
func CrossElasticity(salesA, salesB []models.Sale, minSamples int) (*CrossElasticityResult, error) {
	if minSamples <= 0 {
		minSamples = DefaultFeatureOptions().MinSamples
	}

	pricesByDate := make(map[string]float64, len(salesB))
	for _, s := range salesB {
		if s.Price > 0 {
			pricesByDate[s.Date.Format("2006-01-02")] = s.Price
		}
	}

	var x [][]float64
	var y []float64
	for _, s := range salesA {
		price, ok := pricesByDate[s.Date.Format("2006-01-02")]
		if !ok || s.Quantity <= 0 {
			continue
		}
		x = append(x, []float64{math.Log(price)})
		y = append(y, math.Log(s.Quantity))
	}

	if len(x) < minSamples {
		return nil, fmt.Errorf("%w: %d overlapping records, need at least %d", ErrInsufficientData, len(x), minSamples)
	}

	fit, err := olsFit(x, y)
	if err != nil {
		return nil, err
	}

	coef := fit.beta[1]
	relationship := RelationshipIndependent
	switch {
	case coef > crossRelationThreshold:
		relationship = RelationshipSubstitutes
	case coef < -crossRelationThreshold:
		relationship = RelationshipComplements
	}

	return &CrossElasticityResult{
		CrossElasticity: coef,
		Relationship:    relationship,
		RSquared:        fit.rsquared,
		SampleSize:      len(x),
	}, nil
}

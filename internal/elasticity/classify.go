package elasticity

import (
	"math"

	"github.com/Uddhav-Saikia/ElasticRev/internal/models"
)

// Classification thresholds on |coefficient|.
const (
	highlyElasticThreshold = 2.0
	elasticThreshold       = 1.0
	unitElasticLow         = 0.9
	unitElasticHigh        = 1.1
)

// Classify maps a signed coefficient to its elasticity type. Only the
// magnitude matters; the sign carries no classification meaning.
//
// The unit-elastic band [0.9, 1.1] is checked first as an inclusive band, so
// a value like 1.05 never falls through to "elastic" on the overlapping
// threshold.
func Classify(coefficient float64) string {
	magnitude := math.Abs(coefficient)

	switch {
	case magnitude >= unitElasticLow && magnitude <= unitElasticHigh:
		return models.TypeUnitElastic
	case magnitude > highlyElasticThreshold:
		return models.TypeHighlyElastic
	case magnitude > elasticThreshold:
		return models.TypeElastic
	default:
		return models.TypeInelastic
	}
}

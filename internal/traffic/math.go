package traffic

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// CalculateMean returns the arithmetic mean of the present (non-NaN) values and how many
// values contributed. With no present values the mean is NaN.
func CalculateMean(values []float64) (float64, int) {
	present := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) {
			present = append(present, v)
		}
	}
	if len(present) == 0 {
		return math.NaN(), 0
	}
	return stat.Mean(present, nil), len(present)
}

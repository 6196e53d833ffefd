package traffic

import (
	"math"

	"tollcalc/internal/matrix"
	"tollcalc/internal/table"

	"github.com/shopspring/decimal"
)

// Dataset-1 column names.
const (
	ColID1   = "id_1"
	ColID2   = "id_2"
	ColRoute = "route"
	ColCar   = "car"
	ColBus   = "bus"
	ColTruck = "truck"
)

// MultiplyMatrix thresholds and factors.
const (
	multiplyThreshold = 20.0
	multiplyHigh      = 0.75
	multiplyLow       = 1.25
)

// GenerateCarMatrix pivots car values into an id_1 × id_2 matrix with a zeroed diagonal.
func GenerateCarMatrix(rel *table.Relation) (*matrix.Matrix, error) {
	m, err := matrix.Pivot(rel, ColID1, ColID2, ColCar)
	if err != nil {
		return nil, err
	}
	m.ZeroDiagonal()
	return m, nil
}

// MultiplyMatrix scales every cell: values above 20 by 0.75, the rest by 1.25, each result
// rounded half away from zero to one decimal place.
func MultiplyMatrix(m *matrix.Matrix) *matrix.Matrix {
	return m.Map(AdjustValue)
}

// AdjustValue applies the MultiplyMatrix rule to a single value. Infinities are scaled
// without rounding.
func AdjustValue(v float64) float64 {
	factor := multiplyLow
	if v > multiplyThreshold {
		factor = multiplyHigh
	}
	if math.IsInf(v, 0) {
		return v * factor
	}
	out, _ := decimal.NewFromFloat(v).Mul(decimal.NewFromFloat(factor)).Round(1).Float64()
	return out
}

package matrix

import (
	"fmt"

	"tollcalc/internal/table"

	"github.com/rs/zerolog/log"
)

// Pivot turns a long-form relation into a matrix keyed by rowCol × colCol holding valCol.
// Keys are the sorted unique values of each key column. Pairs missing from the input stay
// absent. When a pair repeats, the last row in input order wins.
func Pivot(rel *table.Relation, rowCol, colCol, valCol string) (*Matrix, error) {
	if err := rel.Require(rowCol, colCol, valCol); err != nil {
		return nil, err
	}
	rows, err := rel.Ints(rowCol)
	if err != nil {
		return nil, err
	}
	cols, err := rel.Ints(colCol)
	if err != nil {
		return nil, err
	}
	vals, err := rel.Floats(valCol)
	if err != nil {
		return nil, err
	}

	m := New(rows, cols)
	duplicates := 0
	seen := make(map[[2]int64]bool, len(rows))
	for i := range rows {
		pair := [2]int64{rows[i], cols[i]}
		if seen[pair] {
			duplicates++
		}
		seen[pair] = true
		if err := m.SetKey(rows[i], cols[i], vals[i]); err != nil {
			return nil, fmt.Errorf("pivot row %d: %w", i, err)
		}
	}

	r, c := m.Shape()
	ev := log.Debug().Int("rows", r).Int("cols", c).Int("pairs", len(seen))
	if duplicates > 0 {
		ev = log.Warn().Int("rows", r).Int("cols", c).Int("duplicates", duplicates)
	}
	ev.Str("valueColumn", valCol).Msg("Pivoted relation into matrix")
	return m, nil
}

// Unroll flattens every off-diagonal cell into (startCol, endCol, valCol) rows, iterating
// row positions in the outer loop and column positions in the inner loop. Cells whose row
// and column positions are equal are skipped; absent cells yield a missing value.
func (m *Matrix) Unroll(startCol, endCol, valCol string) *table.Relation {
	out := table.New(startCol, endCol, valCol)
	rows, cols := m.Shape()
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			if i == j {
				continue
			}
			var val any
			if v, ok := m.At(i, j); ok {
				val = v
			}
			out.Append(m.rowKeys[i], m.colKeys[j], val)
		}
	}
	return out
}

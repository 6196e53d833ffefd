package matrix

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"slices"
)

// ErrShape is returned when an operation needs matching row and column keys.
var ErrShape = errors.New("matrix shape mismatch")

// Matrix is a dense numeric table indexed by sorted integer row and column keys.
// A NaN cell means the pair has no value.
type Matrix struct {
	rowKeys []int64
	colKeys []int64
	rowPos  map[int64]int
	colPos  map[int64]int
	cells   []float64 // row-major
}

// New creates a matrix with every cell absent. Keys are copied, sorted and deduplicated.
func New(rowKeys, colKeys []int64) *Matrix {
	rows := sortedUnique(rowKeys)
	cols := sortedUnique(colKeys)
	m := &Matrix{
		rowKeys: rows,
		colKeys: cols,
		rowPos:  positions(rows),
		colPos:  positions(cols),
		cells:   make([]float64, len(rows)*len(cols)),
	}
	for i := range m.cells {
		m.cells[i] = math.NaN()
	}
	return m
}

func sortedUnique(keys []int64) []int64 {
	out := slices.Clone(keys)
	slices.Sort(out)
	return slices.Compact(out)
}

func positions(keys []int64) map[int64]int {
	pos := make(map[int64]int, len(keys))
	for i, k := range keys {
		pos[k] = i
	}
	return pos
}

// RowKeys returns the row keys in ascending order.
func (m *Matrix) RowKeys() []int64 { return slices.Clone(m.rowKeys) }

// ColKeys returns the column keys in ascending order.
func (m *Matrix) ColKeys() []int64 { return slices.Clone(m.colKeys) }

// Shape returns the number of rows and columns.
func (m *Matrix) Shape() (int, int) { return len(m.rowKeys), len(m.colKeys) }

// At returns the cell at a row and column position and whether it holds a value.
func (m *Matrix) At(i, j int) (float64, bool) {
	v := m.cells[i*len(m.colKeys)+j]
	return v, !math.IsNaN(v)
}

// Get returns the cell for a (row key, column key) pair.
func (m *Matrix) Get(row, col int64) (float64, bool) {
	i, ok := m.rowPos[row]
	if !ok {
		return math.NaN(), false
	}
	j, ok := m.colPos[col]
	if !ok {
		return math.NaN(), false
	}
	return m.At(i, j)
}

// Set stores v at a row and column position. NaN clears the cell.
func (m *Matrix) Set(i, j int, v float64) {
	m.cells[i*len(m.colKeys)+j] = v
}

// SetKey stores v for a (row key, column key) pair.
func (m *Matrix) SetKey(row, col int64, v float64) error {
	i, ok := m.rowPos[row]
	if !ok {
		return fmt.Errorf("unknown row key %d", row)
	}
	j, ok := m.colPos[col]
	if !ok {
		return fmt.Errorf("unknown column key %d", col)
	}
	m.Set(i, j, v)
	return nil
}

// Clone returns a deep copy.
func (m *Matrix) Clone() *Matrix {
	return &Matrix{
		rowKeys: m.rowKeys,
		colKeys: m.colKeys,
		rowPos:  m.rowPos,
		colPos:  m.colPos,
		cells:   slices.Clone(m.cells),
	}
}

// ZeroDiagonal sets cells (i, i) to 0 for every position i below min(rows, cols).
// The rule is positional: with unequal key sets the zeroed cells need not pair equal keys.
func (m *Matrix) ZeroDiagonal() {
	n := min(len(m.rowKeys), len(m.colKeys))
	for i := 0; i < n; i++ {
		m.Set(i, i, 0)
	}
}

// Fill replaces every absent cell with v.
func (m *Matrix) Fill(v float64) {
	for i, c := range m.cells {
		if math.IsNaN(c) {
			m.cells[i] = v
		}
	}
}

// Map returns a new matrix with f applied to every present cell. Absent cells stay absent.
func (m *Matrix) Map(f func(float64) float64) *Matrix {
	out := m.Clone()
	for i, c := range out.cells {
		if !math.IsNaN(c) {
			out.cells[i] = f(c)
		}
	}
	return out
}

// AddTranspose returns m + mᵀ. Row and column keys must be identical.
func (m *Matrix) AddTranspose() (*Matrix, error) {
	if !slices.Equal(m.rowKeys, m.colKeys) {
		return nil, fmt.Errorf("%w: transpose add needs equal row and column keys (%d rows, %d cols)",
			ErrShape, len(m.rowKeys), len(m.colKeys))
	}

	n := len(m.rowKeys)
	out := m.Clone()
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			out.cells[i*n+j] = m.cells[i*n+j] + m.cells[j*n+i]
		}
	}
	return out, nil
}

// Dense returns a copy of the cells as rows of values, NaN for absent cells.
func (m *Matrix) Dense() [][]float64 {
	rows, cols := m.Shape()
	out := make([][]float64, rows)
	for i := range out {
		out[i] = slices.Clone(m.cells[i*cols : (i+1)*cols])
	}
	return out
}

type matrixJSON struct {
	Rows    []int64      `json:"rows"`
	Columns []int64      `json:"columns"`
	Cells   [][]*float64 `json:"cells"`
}

// MarshalJSON encodes keys and cells; absent cells become null.
func (m *Matrix) MarshalJSON() ([]byte, error) {
	rows, cols := m.Shape()
	out := matrixJSON{
		Rows:    m.rowKeys,
		Columns: m.colKeys,
		Cells:   make([][]*float64, rows),
	}
	for i := 0; i < rows; i++ {
		out.Cells[i] = make([]*float64, cols)
		for j := 0; j < cols; j++ {
			if v, ok := m.At(i, j); ok {
				out.Cells[i][j] = &v
			}
		}
	}
	return json.Marshal(out)
}

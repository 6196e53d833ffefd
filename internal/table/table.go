package table

import (
	"fmt"
	"math"
	"slices"
	"strconv"
)

// Relation is an ordered table of rows over named columns.
// Cells hold int64, float64, string, or nil for a missing value.
type Relation struct {
	columns []string
	index   map[string]int
	rows    [][]any
}

// New creates an empty relation with the given column names.
func New(columns ...string) *Relation {
	r := &Relation{
		columns: slices.Clone(columns),
		index:   make(map[string]int, len(columns)),
	}
	for i, c := range columns {
		r.index[c] = i
	}
	return r
}

// Append adds a row. Short rows are padded with missing values; extra cells are dropped.
func (r *Relation) Append(cells ...any) {
	row := make([]any, len(r.columns))
	copy(row, cells)
	r.rows = append(r.rows, row)
}

// Columns returns the column names in order.
func (r *Relation) Columns() []string {
	return slices.Clone(r.columns)
}

// Len returns the number of rows.
func (r *Relation) Len() int {
	return len(r.rows)
}

// Has reports whether the relation has the named column.
func (r *Relation) Has(col string) bool {
	_, ok := r.index[col]
	return ok
}

// Require fails with ErrMissingColumn for the first absent column.
func (r *Relation) Require(cols ...string) error {
	for _, c := range cols {
		if !r.Has(c) {
			return fmt.Errorf("%w: %q", ErrMissingColumn, c)
		}
	}
	return nil
}

// Value returns the raw cell at (row, col).
func (r *Relation) Value(row int, col string) (any, error) {
	i, ok := r.index[col]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrMissingColumn, col)
	}
	if row < 0 || row >= len(r.rows) {
		return nil, fmt.Errorf("row %d out of range [0,%d)", row, len(r.rows))
	}
	return r.rows[row][i], nil
}

// Row returns a copy of the cells of one row keyed by column name.
func (r *Relation) Row(row int) map[string]any {
	out := make(map[string]any, len(r.columns))
	for i, c := range r.columns {
		out[c] = r.rows[row][i]
	}
	return out
}

// Clone returns a deep copy of the relation.
func (r *Relation) Clone() *Relation {
	out := New(r.columns...)
	out.rows = make([][]any, len(r.rows))
	for i, row := range r.rows {
		out.rows[i] = slices.Clone(row)
	}
	return out
}

// WithColumn returns a copy of r with col set to values. An existing column is replaced
// in place; a new one is appended to the right.
func (r *Relation) WithColumn(col string, values []any) (*Relation, error) {
	if len(values) != len(r.rows) {
		return nil, fmt.Errorf("column %q has %d values, relation has %d rows", col, len(values), len(r.rows))
	}

	out := r.Clone()
	i, ok := out.index[col]
	if !ok {
		i = len(out.columns)
		out.columns = append(out.columns, col)
		out.index[col] = i
		for j := range out.rows {
			out.rows[j] = append(out.rows[j], nil)
		}
	}
	for j, v := range values {
		out.rows[j][i] = v
	}
	return out, nil
}

// Floats returns a numeric column. Missing cells become NaN; infinite cells are rejected.
func (r *Relation) Floats(col string) ([]float64, error) {
	i, ok := r.index[col]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrMissingColumn, col)
	}

	out := make([]float64, len(r.rows))
	for j, row := range r.rows {
		switch v := row[i].(type) {
		case float64:
			if math.IsInf(v, 0) {
				return nil, fmt.Errorf("%w: column %q row %d: %v is not finite", ErrTypeMismatch, col, j, v)
			}
			out[j] = v
		case int64:
			out[j] = float64(v)
		case nil:
			out[j] = math.NaN()
		default:
			return nil, fmt.Errorf("%w: column %q row %d: %v is not numeric", ErrTypeMismatch, col, j, v)
		}
	}
	return out, nil
}

// Ints returns an integer id column. Integral floats are accepted.
func (r *Relation) Ints(col string) ([]int64, error) {
	i, ok := r.index[col]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrMissingColumn, col)
	}

	out := make([]int64, len(r.rows))
	for j, row := range r.rows {
		switch v := row[i].(type) {
		case int64:
			out[j] = v
		case float64:
			if v != math.Trunc(v) || math.IsInf(v, 0) {
				return nil, fmt.Errorf("%w: column %q row %d: %v is not an integer", ErrTypeMismatch, col, j, v)
			}
			out[j] = int64(v)
		default:
			return nil, fmt.Errorf("%w: column %q row %d: %v is not an integer", ErrTypeMismatch, col, j, v)
		}
	}
	return out, nil
}

// Strings returns a key column. Numbers are formatted canonically.
func (r *Relation) Strings(col string) ([]string, error) {
	i, ok := r.index[col]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrMissingColumn, col)
	}

	out := make([]string, len(r.rows))
	for j, row := range r.rows {
		switch v := row[i].(type) {
		case string:
			out[j] = v
		case int64:
			out[j] = strconv.FormatInt(v, 10)
		case float64:
			out[j] = strconv.FormatFloat(v, 'f', -1, 64)
		default:
			return nil, fmt.Errorf("%w: column %q row %d: missing value", ErrTypeMismatch, col, j)
		}
	}
	return out, nil
}

// FloatsToCells converts a numeric slice into cells, mapping NaN to a missing value.
func FloatsToCells(values []float64) []any {
	out := make([]any, len(values))
	for i, v := range values {
		if math.IsNaN(v) {
			continue
		}
		out[i] = v
	}
	return out
}

// StringsToCells converts a string slice into cells.
func StringsToCells(values []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}

// missingMarkers are the textual cells read as missing values, as pandas writes them.
var missingMarkers = map[string]bool{
	"nan": true, "NaN": true, "NAN": true,
	"NA": true, "N/A": true, "null": true,
}

// ParseCell infers the type of a textual cell: integer, finite float, missing (empty or a
// missing marker) or string. Infinities stay strings.
func ParseCell(s string) any {
	if s == "" || missingMarkers[s] {
		return nil
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
		return f
	}
	return s
}

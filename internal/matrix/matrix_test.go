package matrix

import (
	"encoding/json"
	"math"
	"testing"

	"tollcalc/internal/table"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func longForm(rows ...[3]float64) *table.Relation {
	rel := table.New("id_1", "id_2", "car")
	for _, r := range rows {
		rel.Append(int64(r[0]), int64(r[1]), r[2])
	}
	return rel
}

func TestPivot_SortedKeysAndAbsentPairs(t *testing.T) {
	rel := longForm(
		[3]float64{3, 1, 7},
		[3]float64{1, 3, 5},
		[3]float64{1, 1, 9},
	)

	m, err := Pivot(rel, "id_1", "id_2", "car")
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 3}, m.RowKeys())
	assert.Equal(t, []int64{1, 3}, m.ColKeys())

	v, ok := m.Get(1, 3)
	assert.True(t, ok)
	assert.Equal(t, 5.0, v)

	_, ok = m.Get(3, 3)
	assert.False(t, ok, "pair never seen must stay absent")
}

func TestPivot_LastDuplicateWins(t *testing.T) {
	rel := longForm(
		[3]float64{1, 2, 5},
		[3]float64{1, 2, 8},
	)
	m, err := Pivot(rel, "id_1", "id_2", "car")
	require.NoError(t, err)
	v, _ := m.Get(1, 2)
	assert.Equal(t, 8.0, v)
}

func TestPivot_Errors(t *testing.T) {
	rel := table.New("id_1", "id_2")
	_, err := Pivot(rel, "id_1", "id_2", "car")
	require.ErrorIs(t, err, table.ErrMissingColumn)

	rel = table.New("id_1", "id_2", "car")
	rel.Append(int64(1), int64(2), "lots")
	_, err = Pivot(rel, "id_1", "id_2", "car")
	require.ErrorIs(t, err, table.ErrTypeMismatch)
}

func TestZeroDiagonal_Positional(t *testing.T) {
	// Rows {1,2,3}, cols {2,3}: positions (0,0)=(1,2) and (1,1)=(2,3) are zeroed,
	// although neither pairs equal keys.
	m := New([]int64{1, 2, 3}, []int64{2, 3})
	m.Fill(4)
	m.ZeroDiagonal()

	v, _ := m.Get(1, 2)
	assert.Equal(t, 0.0, v)
	v, _ = m.Get(2, 3)
	assert.Equal(t, 0.0, v)
	v, _ = m.Get(2, 2)
	assert.Equal(t, 4.0, v, "keyed diagonal at a different position is left alone")
	v, _ = m.Get(3, 3)
	assert.Equal(t, 4.0, v)
}

func TestMap_SkipsAbsentAndDoesNotMutate(t *testing.T) {
	m := New([]int64{1, 2}, []int64{1, 2})
	m.Set(0, 1, 10)

	out := m.Map(func(v float64) float64 { return v * 2 })
	v, _ := out.At(0, 1)
	assert.Equal(t, 20.0, v)
	_, ok := out.At(1, 0)
	assert.False(t, ok)

	orig, _ := m.At(0, 1)
	assert.Equal(t, 10.0, orig)
}

func TestAddTranspose(t *testing.T) {
	m := New([]int64{1, 2}, []int64{1, 2})
	m.Fill(0)
	m.Set(0, 1, 3)
	m.Set(1, 0, 4)

	sym, err := m.AddTranspose()
	require.NoError(t, err)
	a, _ := sym.At(0, 1)
	b, _ := sym.At(1, 0)
	assert.Equal(t, 7.0, a)
	assert.Equal(t, 7.0, b)

	_, err = New([]int64{1}, []int64{2}).AddTranspose()
	require.ErrorIs(t, err, ErrShape)
}

func TestUnroll_OrderAndSkipsDiagonal(t *testing.T) {
	m := New([]int64{10, 20, 30}, []int64{10, 20, 30})
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			m.Set(i, j, float64(i*3+j))
		}
	}

	rel := m.Unroll("id_start", "id_end", "distance")
	require.Equal(t, 6, rel.Len())

	starts, _ := rel.Ints("id_start")
	ends, _ := rel.Ints("id_end")
	dists, _ := rel.Floats("distance")
	assert.Equal(t, []int64{10, 10, 20, 20, 30, 30}, starts)
	assert.Equal(t, []int64{20, 30, 10, 30, 10, 20}, ends)
	assert.Equal(t, []float64{1, 2, 3, 5, 6, 7}, dists)
}

func TestUnrollPivot_RoundTrip(t *testing.T) {
	m := New([]int64{1, 2, 3}, []int64{1, 2, 3})
	m.Set(0, 1, 1.5)
	m.Set(0, 2, 2.5)
	m.Set(1, 0, 3.5)
	m.Set(1, 2, 4.5)
	m.Set(2, 0, 5.5)
	m.Set(2, 1, 6.5)
	m.ZeroDiagonal()

	rel := m.Unroll("id_start", "id_end", "distance")
	back, err := Pivot(rel, "id_start", "id_end", "distance")
	require.NoError(t, err)
	back.ZeroDiagonal()

	assert.Equal(t, m.RowKeys(), back.RowKeys())
	assert.Equal(t, m.ColKeys(), back.ColKeys())
	assert.Equal(t, m.Dense(), back.Dense())
}

func TestUnroll_AbsentCellIsMissing(t *testing.T) {
	m := New([]int64{1, 2}, []int64{1, 2})
	rel := m.Unroll("id_start", "id_end", "distance")
	d, err := rel.Floats("distance")
	require.NoError(t, err)
	assert.True(t, math.IsNaN(d[0]))
}

func TestMarshalJSON_NullForAbsent(t *testing.T) {
	m := New([]int64{1, 2}, []int64{1, 2})
	m.Set(0, 1, 2.5)
	m.ZeroDiagonal()

	out, err := json.Marshal(m)
	require.NoError(t, err)
	assert.JSONEq(t, `{"rows":[1,2],"columns":[1,2],"cells":[[0,2.5],[null,0]]}`, string(out))
}

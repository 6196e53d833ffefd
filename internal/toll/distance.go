package toll

import (
	"errors"
	"fmt"
	"math"
	"slices"

	"tollcalc/internal/matrix"
	"tollcalc/internal/table"

	"github.com/rs/zerolog/log"
)

// Dataset-3 column names.
const (
	ColIDStart  = "id_start"
	ColIDEnd    = "id_end"
	ColDistance = "distance"
)

const proximityTolerance = 0.1

var (
	// ErrReferenceNotFound is returned when no row carries the reference id.
	ErrReferenceNotFound = errors.New("reference not found")

	// ErrUndefinedAverage is returned when the reference rows have no distance values.
	ErrUndefinedAverage = errors.New("undefined average")
)

// CalculateDistanceMatrix builds a symmetric cumulative distance matrix from one-way edges.
// Each edge is mirrored, repeated (start, end) pairs are summed, the pivot over all points
// is zero-filled, and the result is added to its own transpose. Edges present in both
// directions are therefore counted twice. The positional diagonal is forced to zero.
func CalculateDistanceMatrix(rel *table.Relation) (*matrix.Matrix, error) {
	if err := rel.Require(ColIDStart, ColIDEnd, ColDistance); err != nil {
		return nil, err
	}
	starts, err := rel.Ints(ColIDStart)
	if err != nil {
		return nil, err
	}
	ends, err := rel.Ints(ColIDEnd)
	if err != nil {
		return nil, err
	}
	dists, err := rel.Floats(ColDistance)
	if err != nil {
		return nil, err
	}

	points := slices.Concat(starts, ends)
	m := matrix.New(points, points)
	m.Fill(0)

	add := func(a, b int64, d float64) error {
		cur, _ := m.Get(a, b)
		return m.SetKey(a, b, cur+d)
	}
	for i := range starts {
		// Missing distances contribute nothing to the sum.
		d := dists[i]
		if math.IsNaN(d) {
			d = 0
		}
		if err := add(starts[i], ends[i], d); err != nil {
			return nil, fmt.Errorf("edge %d: %w", i, err)
		}
		if err := add(ends[i], starts[i], d); err != nil {
			return nil, fmt.Errorf("edge %d: %w", i, err)
		}
	}

	sym, err := m.AddTranspose()
	if err != nil {
		return nil, err
	}
	sym.ZeroDiagonal()

	n, _ := sym.Shape()
	log.Debug().Int("edges", len(starts)).Int("points", n).Msg("Built distance matrix")
	return sym, nil
}

// UnrollDistanceMatrix flattens a distance matrix into id_start, id_end, distance rows.
func UnrollDistanceMatrix(m *matrix.Matrix) *table.Relation {
	return m.Unroll(ColIDStart, ColIDEnd, ColDistance)
}

// FindIDsWithinTenPercentageThreshold averages the reference id's distances and returns
// every other id_start that has at least one row whose distance lies within 10% of that
// average, sorted ascending.
func FindIDsWithinTenPercentageThreshold(rel *table.Relation, reference int64) ([]int64, error) {
	starts, err := rel.Ints(ColIDStart)
	if err != nil {
		return nil, err
	}
	dists, err := rel.Floats(ColDistance)
	if err != nil {
		return nil, err
	}

	var refDists []float64
	for i, id := range starts {
		if id == reference {
			refDists = append(refDists, dists[i])
		}
	}
	if len(refDists) == 0 {
		return nil, fmt.Errorf("%w: id %d", ErrReferenceNotFound, reference)
	}
	avg, n := mean(refDists)
	if n == 0 {
		return nil, fmt.Errorf("%w: id %d has no distance values", ErrUndefinedAverage, reference)
	}

	lower := avg - proximityTolerance*avg
	upper := avg + proximityTolerance*avg

	seen := make(map[int64]bool)
	ids := []int64{}
	for i, id := range starts {
		if id == reference || seen[id] {
			continue
		}
		if d := dists[i]; d >= lower && d <= upper {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)

	log.Debug().Int64("reference", reference).Float64("average", avg).
		Float64("lower", lower).Float64("upper", upper).Int("matches", len(ids)).
		Msg("Found ids within threshold")
	return ids, nil
}

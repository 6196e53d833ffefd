package traffic

import (
	"cmp"
	"fmt"
	"math"
	"slices"
	"strconv"

	"tollcalc/internal/table"

	"github.com/rs/zerolog/log"
)

const (
	busMeanMultiple   = 2.0
	routeTruckMinimum = 7.0
)

// GetBusIndexes returns the ascending row positions whose bus value is strictly greater
// than twice the column mean. Missing values are left out of the mean and never qualify.
func GetBusIndexes(rel *table.Relation) ([]int, error) {
	bus, err := rel.Floats(ColBus)
	if err != nil {
		return nil, err
	}

	mean, n := CalculateMean(bus)
	indexes := []int{}
	if n == 0 {
		return indexes, nil
	}

	threshold := busMeanMultiple * mean
	for i, v := range bus {
		if v > threshold {
			indexes = append(indexes, i)
		}
	}

	log.Debug().Float64("mean", mean).Float64("threshold", threshold).Int("matches", len(indexes)).Msg("Selected bus indexes")
	return indexes, nil
}

// FilterRoutes returns the routes whose average truck value is strictly greater than 7.
// When every route key is numeric the keys keep their type and sort numerically; otherwise
// they sort lexicographically by their text. Rows without a route are skipped.
func FilterRoutes(rel *table.Relation) ([]any, error) {
	if err := rel.Require(ColRoute); err != nil {
		return nil, err
	}
	trucks, err := rel.Floats(ColTruck)
	if err != nil {
		return nil, err
	}

	type routeGroup struct {
		key    any
		values []float64
	}
	groups := make(map[string]*routeGroup)
	numeric := true
	for i, truck := range trucks {
		cell, err := rel.Value(i, ColRoute)
		if err != nil {
			return nil, err
		}
		if cell == nil {
			continue
		}
		if _, ok := cell.(string); ok {
			numeric = false
		}

		label := routeLabel(cell)
		g, ok := groups[label]
		if !ok {
			g = &routeGroup{key: cell}
			groups[label] = g
		}
		g.values = append(g.values, truck)
	}

	selected := []any{}
	for _, g := range groups {
		mean, _ := CalculateMean(g.values)
		if !math.IsNaN(mean) && mean > routeTruckMinimum {
			selected = append(selected, g.key)
		}
	}

	if numeric {
		slices.SortFunc(selected, func(a, b any) int {
			return cmp.Compare(routeNumber(a), routeNumber(b))
		})
	} else {
		slices.SortFunc(selected, func(a, b any) int {
			return cmp.Compare(routeLabel(a), routeLabel(b))
		})
	}

	log.Debug().Int("routes", len(groups)).Int("selected", len(selected)).Bool("numeric", numeric).Msg("Filtered routes by truck average")
	return selected, nil
}

// routeLabel formats a route cell so that 9 and 9.0 name the same route.
func routeLabel(cell any) string {
	switch v := cell.(type) {
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}

func routeNumber(cell any) float64 {
	switch v := cell.(type) {
	case int64:
		return float64(v)
	case float64:
		return v
	default:
		return math.NaN()
	}
}

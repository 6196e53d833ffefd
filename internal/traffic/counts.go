package traffic

import (
	"slices"
	"strings"

	"tollcalc/internal/table"

	"github.com/rs/zerolog/log"
)

// Category labels for car volumes.
const (
	CategoryLow     = "low"
	CategoryMedium  = "medium"
	CategoryHigh    = "high"
	CategoryUnknown = "unknown"
)

// Band maps values matching its predicate to a label.
type Band struct {
	Label string
	Match func(v float64) bool
}

// CarBands are evaluated in order; the first match wins. Upper bounds are inclusive.
var CarBands = []Band{
	{Label: CategoryLow, Match: func(v float64) bool { return v <= 15 }},
	{Label: CategoryMedium, Match: func(v float64) bool { return v > 15 && v <= 25 }},
	{Label: CategoryHigh, Match: func(v float64) bool { return v > 25 }},
}

// Categorize returns the label of the first band matching v, or CategoryUnknown.
// Missing (NaN) values match no band.
func Categorize(v float64, bands []Band) string {
	for _, b := range bands {
		if b.Match(v) {
			return b.Label
		}
	}
	return CategoryUnknown
}

// CategoryCount is the number of rows that fell into one category.
type CategoryCount struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

// GetTypeCount buckets the car column into categories and counts rows per category.
// Only categories that occur are returned, sorted by label.
func GetTypeCount(rel *table.Relation) ([]CategoryCount, error) {
	cars, err := rel.Floats(ColCar)
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int)
	for _, v := range cars {
		counts[Categorize(v, CarBands)]++
	}

	results := make([]CategoryCount, 0, len(counts))
	for label, n := range counts {
		results = append(results, CategoryCount{Category: label, Count: n})
	}
	slices.SortFunc(results, func(a, b CategoryCount) int {
		return strings.Compare(a.Category, b.Category)
	})

	log.Debug().Int("rows", len(cars)).Int("categories", len(results)).Msg("Counted car categories")
	return results, nil
}

// CountsByCategory converts counts into a label-keyed map.
func CountsByCategory(counts []CategoryCount) map[string]int {
	out := make(map[string]int, len(counts))
	for _, c := range counts {
		out[c.Category] = c.Count
	}
	return out
}

package traffic

import (
	"cmp"
	"slices"
	"time"

	"tollcalc/internal/table"

	"github.com/rs/zerolog/log"
)

// Dataset-2 column names.
const (
	ColID        = "id"
	ColStartDay  = "startDay"
	ColStartTime = "startTime"
	ColEndDay    = "endDay"
	ColEndTime   = "endTime"
)

const (
	coverageDays     = 7
	coverageDuration = coverageDays * 24 * time.Hour
)

// Coverage reports whether one (id, id_2) pair's intervals span a full week.
type Coverage struct {
	ID       int64 `json:"id"`
	ID2      int64 `json:"id_2"`
	Complete bool  `json:"complete"`
}

type coverageKey struct {
	id, id2 int64
}

type coverageGroup struct {
	minDuration time.Duration
	startDates  map[time.Time]struct{}
}

// TimeCheck groups rows by (id, id_2) and marks a group complete when its shortest
// interval lasts at least seven days and its start timestamps fall on exactly seven
// distinct calendar dates. Results are sorted by id, then id_2.
func TimeCheck(rel *table.Relation) ([]Coverage, error) {
	if err := rel.Require(ColID, ColID2, ColStartDay, ColStartTime, ColEndDay, ColEndTime); err != nil {
		return nil, err
	}
	ids, err := rel.Ints(ColID)
	if err != nil {
		return nil, err
	}
	ids2, err := rel.Ints(ColID2)
	if err != nil {
		return nil, err
	}

	groups := make(map[coverageKey]*coverageGroup)
	for i := range ids {
		start, err := rel.DayTime(i, ColStartDay, ColStartTime)
		if err != nil {
			return nil, err
		}
		end, err := rel.DayTime(i, ColEndDay, ColEndTime)
		if err != nil {
			return nil, err
		}
		duration := end.Sub(start)

		key := coverageKey{ids[i], ids2[i]}
		g, ok := groups[key]
		if !ok {
			g = &coverageGroup{minDuration: duration, startDates: make(map[time.Time]struct{})}
			groups[key] = g
		}
		g.minDuration = min(g.minDuration, duration)
		g.startDates[start.Truncate(24*time.Hour)] = struct{}{}
	}

	results := make([]Coverage, 0, len(groups))
	for key, g := range groups {
		results = append(results, Coverage{
			ID:       key.id,
			ID2:      key.id2,
			Complete: g.minDuration >= coverageDuration && len(g.startDates) == coverageDays,
		})
	}
	slices.SortFunc(results, func(a, b Coverage) int {
		if c := cmp.Compare(a.ID, b.ID); c != 0 {
			return c
		}
		return cmp.Compare(a.ID2, b.ID2)
	})

	log.Debug().Int("rows", len(ids)).Int("groups", len(results)).Msg("Checked interval coverage")
	return results, nil
}

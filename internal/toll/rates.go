package toll

import (
	"fmt"
	"math"
	"time"

	"tollcalc/internal/table"

	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/floats"
)

// Trip day and time column names used by CalculateTimeBasedTollRates.
const (
	ColStartDay  = "start_day"
	ColStartTime = "start_time"
	ColEndDay    = "end_day"
	ColEndTime   = "end_time"
)

func mean(values []float64) (float64, int) {
	present := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) {
			present = append(present, v)
		}
	}
	if len(present) == 0 {
		return math.NaN(), 0
	}
	return floats.Sum(present) / float64(len(present)), len(present)
}

// CalculateTollRate returns a copy of rel with one column per vehicle in the schedule,
// each equal to distance × the vehicle's coefficient. Existing rate columns are replaced.
func CalculateTollRate(rel *table.Relation, schedule Schedule) (*table.Relation, error) {
	dists, err := rel.Floats(ColDistance)
	if err != nil {
		return nil, err
	}

	out := rel
	for _, v := range schedule.Vehicles {
		rates := make([]float64, len(dists))
		copy(rates, dists)
		floats.Scale(v.Coefficient, rates)

		out, err = out.WithColumn(v.Vehicle, table.FloatsToCells(rates))
		if err != nil {
			return nil, err
		}
	}

	log.Debug().Int("rows", rel.Len()).Strs("vehicles", schedule.VehicleColumns()).Msg("Calculated flat toll rates")
	return out, nil
}

// CalculateTimeBasedTollRates returns a copy of rel with every vehicle rate column scaled
// by the schedule factor for the row's start day and start time. Day columns are rewritten
// as weekday names and time columns as HH:MM:SS.
func CalculateTimeBasedTollRates(rel *table.Relation, schedule Schedule) (*table.Relation, error) {
	vehicles := schedule.VehicleColumns()
	if err := rel.Require(ColStartDay, ColStartTime, ColEndDay, ColEndTime); err != nil {
		return nil, err
	}
	if err := rel.Require(vehicles...); err != nil {
		return nil, err
	}

	n := rel.Len()
	startDays := make([]string, n)
	endDays := make([]string, n)
	startTimes := make([]string, n)
	endTimes := make([]string, n)
	factors := make([]float64, n)

	for i := 0; i < n; i++ {
		start, err := rel.DayTime(i, ColStartDay, ColStartTime)
		if err != nil {
			return nil, err
		}
		end, err := rel.DayTime(i, ColEndDay, ColEndTime)
		if err != nil {
			return nil, err
		}

		startClock := timeOfDay(start)
		startDays[i] = start.Weekday().String()
		endDays[i] = end.Weekday().String()
		startTimes[i] = table.FormatClock(startClock)
		endTimes[i] = table.FormatClock(timeOfDay(end))
		factors[i] = schedule.Factor(start.Weekday(), startClock)
	}

	out := rel
	var err error
	for _, col := range []struct {
		name   string
		values []string
	}{
		{ColStartDay, startDays},
		{ColStartTime, startTimes},
		{ColEndDay, endDays},
		{ColEndTime, endTimes},
	} {
		if out, err = out.WithColumn(col.name, table.StringsToCells(col.values)); err != nil {
			return nil, err
		}
	}

	for _, vehicle := range vehicles {
		rates, err := rel.Floats(vehicle)
		if err != nil {
			return nil, err
		}
		floats.Mul(rates, factors)
		if out, err = out.WithColumn(vehicle, table.FloatsToCells(rates)); err != nil {
			return nil, fmt.Errorf("rate column %q: %w", vehicle, err)
		}
	}

	log.Debug().Int("rows", n).Msg("Applied time-based toll discounts")
	return out, nil
}

func timeOfDay(t time.Time) time.Duration {
	return t.Sub(t.Truncate(24 * time.Hour))
}

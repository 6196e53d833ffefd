package toll

import (
	"fmt"
	"time"
)

// VehicleRate is the flat per-distance coefficient for one vehicle class.
type VehicleRate struct {
	Vehicle     string  `json:"vehicle" yaml:"vehicle"`
	Coefficient float64 `json:"coefficient" yaml:"coefficient"`
}

// TimeBand applies Factor to trips starting between From and To, both inclusive.
type TimeBand struct {
	From   time.Duration `json:"from"`
	To     time.Duration `json:"to"`
	Factor float64       `json:"factor"`
}

// Contains reports whether a time of day falls inside the band.
func (b TimeBand) Contains(clock time.Duration) bool {
	return b.From <= clock && clock <= b.To
}

// Schedule holds every constant used to derive toll rates.
type Schedule struct {
	Vehicles      []VehicleRate `json:"vehicles"`
	WeekdayBands  []TimeBand    `json:"weekday_bands"`
	WeekendFactor float64       `json:"weekend_factor"`
}

func clock(h, m, s int) time.Duration {
	return time.Duration(h)*time.Hour + time.Duration(m)*time.Minute + time.Duration(s)*time.Second
}

// DefaultSchedule returns the standard coefficients and discounts.
func DefaultSchedule() Schedule {
	return Schedule{
		Vehicles: []VehicleRate{
			{Vehicle: "moto", Coefficient: 0.8},
			{Vehicle: "car", Coefficient: 1.2},
			{Vehicle: "rv", Coefficient: 1.5},
			{Vehicle: "bus", Coefficient: 2.2},
			{Vehicle: "truck", Coefficient: 3.6},
		},
		WeekdayBands: []TimeBand{
			{From: clock(0, 0, 0), To: clock(10, 0, 0), Factor: 0.8},
			{From: clock(10, 0, 0), To: clock(18, 0, 0), Factor: 1.2},
			{From: clock(18, 0, 0), To: clock(23, 59, 59), Factor: 0.8},
		},
		WeekendFactor: 0.7,
	}
}

// VehicleColumns returns the rate column names in schedule order.
func (s Schedule) VehicleColumns() []string {
	cols := make([]string, len(s.Vehicles))
	for i, v := range s.Vehicles {
		cols[i] = v.Vehicle
	}
	return cols
}

// Factor returns the multiplier for a trip starting on day at clock. Weekends use the flat
// factor; weekdays use the first matching band, or 1 when none matches.
func (s Schedule) Factor(day time.Weekday, clock time.Duration) float64 {
	if day == time.Saturday || day == time.Sunday {
		return s.WeekendFactor
	}
	for _, b := range s.WeekdayBands {
		if b.Contains(clock) {
			return b.Factor
		}
	}
	return 1
}

// Validate checks that the schedule is usable.
func (s Schedule) Validate() error {
	if len(s.Vehicles) == 0 {
		return fmt.Errorf("schedule has no vehicle rates")
	}
	seen := make(map[string]bool)
	for _, v := range s.Vehicles {
		if v.Vehicle == "" {
			return fmt.Errorf("vehicle rate with empty name")
		}
		if seen[v.Vehicle] {
			return fmt.Errorf("duplicate vehicle %q", v.Vehicle)
		}
		seen[v.Vehicle] = true
		if v.Coefficient <= 0 {
			return fmt.Errorf("vehicle %q: coefficient must be positive, got %v", v.Vehicle, v.Coefficient)
		}
	}
	for i, b := range s.WeekdayBands {
		if b.From < 0 || b.To >= 24*time.Hour || b.From > b.To {
			return fmt.Errorf("weekday band %d: invalid range %v-%v", i, b.From, b.To)
		}
		if b.Factor <= 0 {
			return fmt.Errorf("weekday band %d: factor must be positive, got %v", i, b.Factor)
		}
	}
	if s.WeekendFactor <= 0 {
		return fmt.Errorf("weekend factor must be positive, got %v", s.WeekendFactor)
	}
	return nil
}

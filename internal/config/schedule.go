package config

import (
	"fmt"
	"os"

	"tollcalc/internal/table"
	"tollcalc/internal/toll"

	"gopkg.in/yaml.v3"
)

// scheduleFile mirrors toll.Schedule with clock strings for the band limits.
// Sections left out of the file keep their default values.
type scheduleFile struct {
	Vehicles      []toll.VehicleRate `yaml:"vehicles"`
	WeekdayBands  []bandFile         `yaml:"weekday_bands"`
	WeekendFactor *float64           `yaml:"weekend_factor"`
}

type bandFile struct {
	From   string  `yaml:"from"`
	To     string  `yaml:"to"`
	Factor float64 `yaml:"factor"`
}

// LoadSchedule reads a YAML rate schedule. An empty path returns the default schedule.
func LoadSchedule(path string) (toll.Schedule, error) {
	if path == "" {
		return toll.DefaultSchedule(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return toll.Schedule{}, fmt.Errorf("schedule: read file: %w", err)
	}
	return ParseSchedule(data)
}

// ParseSchedule decodes and validates a YAML rate schedule.
func ParseSchedule(data []byte) (toll.Schedule, error) {
	var f scheduleFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return toll.Schedule{}, fmt.Errorf("schedule: parse yaml: %w", err)
	}

	s := toll.DefaultSchedule()
	if len(f.Vehicles) > 0 {
		s.Vehicles = f.Vehicles
	}
	if len(f.WeekdayBands) > 0 {
		s.WeekdayBands = make([]toll.TimeBand, len(f.WeekdayBands))
		for i, b := range f.WeekdayBands {
			from, err := table.ParseClock(b.From)
			if err != nil {
				return toll.Schedule{}, fmt.Errorf("schedule: weekday band %d: %w", i, err)
			}
			to, err := table.ParseClock(b.To)
			if err != nil {
				return toll.Schedule{}, fmt.Errorf("schedule: weekday band %d: %w", i, err)
			}
			s.WeekdayBands[i] = toll.TimeBand{From: from, To: to, Factor: b.Factor}
		}
	}
	if f.WeekendFactor != nil {
		s.WeekendFactor = *f.WeekendFactor
	}

	if err := s.Validate(); err != nil {
		return toll.Schedule{}, fmt.Errorf("schedule: %w", err)
	}
	return s, nil
}

package table

import (
	"fmt"
	"strings"
	"time"
)

// ReferenceWeek is the Monday that weekday names are anchored to when a day column holds
// names instead of dates.
var ReferenceWeek = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

var weekdays = map[string]time.Weekday{
	"monday": time.Monday, "mon": time.Monday,
	"tuesday": time.Tuesday, "tue": time.Tuesday, "tues": time.Tuesday,
	"wednesday": time.Wednesday, "wed": time.Wednesday,
	"thursday": time.Thursday, "thu": time.Thursday, "thurs": time.Thursday,
	"friday": time.Friday, "fri": time.Friday,
	"saturday": time.Saturday, "sat": time.Saturday,
	"sunday": time.Sunday, "sun": time.Sunday,
}

// ParseDay interprets a weekday name (anchored onto ReferenceWeek) or an ISO date and
// returns midnight of that day in UTC.
func ParseDay(s string) (time.Time, error) {
	v := strings.TrimSpace(s)
	if wd, ok := weekdays[strings.ToLower(v)]; ok {
		offset := (int(wd) + 6) % 7 // Monday = 0
		return ReferenceWeek.AddDate(0, 0, offset), nil
	}
	if t, err := time.Parse(time.DateOnly, v); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("%w: day %q", ErrParse, s)
}

// ParseClock interprets HH:MM:SS or HH:MM and returns the offset from midnight.
func ParseClock(s string) (time.Duration, error) {
	v := strings.TrimSpace(s)
	for _, layout := range []string{time.TimeOnly, "15:04"} {
		if t, err := time.Parse(layout, v); err == nil {
			return time.Duration(t.Hour())*time.Hour +
				time.Duration(t.Minute())*time.Minute +
				time.Duration(t.Second())*time.Second, nil
		}
	}
	return 0, fmt.Errorf("%w: time %q", ErrParse, s)
}

// FormatClock renders an offset from midnight as HH:MM:SS.
func FormatClock(d time.Duration) string {
	return time.Time{}.Add(d).Format(time.TimeOnly)
}

// DayTime parses a day cell and a time cell and combines them into one timestamp.
func (r *Relation) DayTime(row int, dayCol, timeCol string) (time.Time, error) {
	day, err := r.Value(row, dayCol)
	if err != nil {
		return time.Time{}, err
	}
	clock, err := r.Value(row, timeCol)
	if err != nil {
		return time.Time{}, err
	}

	ds, ok := day.(string)
	if !ok {
		return time.Time{}, fmt.Errorf("%w: column %q row %d: day %v", ErrParse, dayCol, row, day)
	}
	cs, ok := clock.(string)
	if !ok {
		return time.Time{}, fmt.Errorf("%w: column %q row %d: time %v", ErrParse, timeCol, row, clock)
	}

	d, err := ParseDay(ds)
	if err != nil {
		return time.Time{}, fmt.Errorf("column %q row %d: %w", dayCol, row, err)
	}
	c, err := ParseClock(cs)
	if err != nil {
		return time.Time{}, fmt.Errorf("column %q row %d: %w", timeCol, row, err)
	}
	return d.Add(c), nil
}

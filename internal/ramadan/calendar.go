package ramadan

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"sort"
	"time"

	"gopkg.in/yaml.v3"
)

// ErrUnknownYear is returned when the calendar has no entry for a year.
var ErrUnknownYear = errors.New("no Ramadan dates for year")

// maxDays bounds a single Ramadan; a lunar month is 29 or 30 days.
const maxDays = 30

const dateLayout = "2006-01-02"

//go:embed calendar.yaml
var defaultCalendarYAML []byte

// Range is an inclusive span of calendar dates.
type Range struct {
	Start time.Time
	End   time.Time
}

// Days returns the number of dates in the range, counting both ends.
func (r Range) Days() int {
	return int(dateOnly(r.End).Sub(dateOnly(r.Start)).Hours()/24) + 1
}

// Calendar maps a Gregorian year to the dates of Ramadan in that year.
type Calendar struct {
	ranges map[int]Range
}

type calendarFile struct {
	Years map[int]struct {
		Start string `yaml:"start"`
		End   string `yaml:"end"`
	} `yaml:"years"`
}

// DefaultCalendar returns the built-in table.
func DefaultCalendar() *Calendar {
	cal, err := ParseCalendar(defaultCalendarYAML)
	if err != nil {
		panic(fmt.Sprintf("ramadan: embedded calendar is invalid: %v", err))
	}
	return cal
}

// LoadCalendar reads a YAML calendar from path. An empty path returns the
// built-in table.
func LoadCalendar(path string) (*Calendar, error) {
	if path == "" {
		return DefaultCalendar(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read Ramadan calendar: %w", err)
	}
	cal, err := ParseCalendar(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cal, nil
}

// ParseCalendar decodes a YAML calendar of the form
//
//	years:
//	  2026: {start: 2026-02-18, end: 2026-03-19}
func ParseCalendar(data []byte) (*Calendar, error) {
	var file calendarFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse Ramadan calendar: %w", err)
	}

	cal := &Calendar{ranges: make(map[int]Range, len(file.Years))}
	for year, entry := range file.Years {
		start, err := time.Parse(dateLayout, entry.Start)
		if err != nil {
			return nil, fmt.Errorf("year %d: invalid start %q: %w", year, entry.Start, err)
		}
		end, err := time.Parse(dateLayout, entry.End)
		if err != nil {
			return nil, fmt.Errorf("year %d: invalid end %q: %w", year, entry.End, err)
		}
		r := Range{Start: start, End: end}
		if end.Before(start) {
			return nil, fmt.Errorf("year %d: end %s before start %s", year, entry.End, entry.Start)
		}
		if r.Days() > maxDays {
			return nil, fmt.Errorf("year %d: %d days is longer than a lunar month", year, r.Days())
		}
		if start.Year() != year {
			return nil, fmt.Errorf("year %d: start %s is in another year", year, entry.Start)
		}
		cal.ranges[year] = r
	}
	return cal, nil
}

// Range returns the dates of Ramadan in year.
func (c *Calendar) Range(year int) (Range, error) {
	r, ok := c.ranges[year]
	if !ok {
		return Range{}, fmt.Errorf("%w %d", ErrUnknownYear, year)
	}
	return r, nil
}

// Years lists the years in the calendar in ascending order.
func (c *Calendar) Years() []int {
	years := make([]int, 0, len(c.ranges))
	for y := range c.ranges {
		years = append(years, y)
	}
	sort.Ints(years)
	return years
}

// Contains reports whether date falls within Ramadan according to the calendar.
func (c *Calendar) Contains(date time.Time) bool {
	r, ok := c.ranges[date.Year()]
	if !ok {
		return false
	}
	d := dateOnly(date)
	return !d.Before(r.Start) && !d.After(r.End)
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Package ramadan builds per-day fasting schedules from the prayer times.
package ramadan

import (
	"time"

	"github.com/halalcities/halalcities/internal/geo"
	"github.com/halalcities/halalcities/internal/prayer"
)

// Day is one fasting day: it starts at Fajr (end of suhoor) and ends at Maghrib (iftar).
type Day struct {
	Index    int // 1-based
	Date     time.Time
	Suhoor   time.Time
	Iftar    time.Time
	Duration time.Duration
}

// Available reports whether both ends of the fast could be computed.
func (d Day) Available() bool {
	return !d.Suhoor.IsZero() && !d.Iftar.IsZero()
}

// DurationMinutes returns the fast length in whole minutes.
func (d Day) DurationMinutes() int {
	return int(d.Duration / time.Minute)
}

// Build returns one Day per date in r, inclusive. Calculations run with the
// Ramadan flag set, so delay-based Isha methods use their Ramadan offset.
func Build(coord geo.Coordinate, r Range, method prayer.Method, opts prayer.Options) []Day {
	opts.Ramadan = true

	n := r.Days()
	if n <= 0 {
		return nil
	}

	days := make([]Day, 0, n)
	start := dateOnly(r.Start)
	for i := 0; i < n; i++ {
		times := prayer.Calculate(coord, start.AddDate(0, 0, i), method, opts)

		day := Day{
			Index:  i + 1,
			Date:   times.Date,
			Suhoor: times.Fajr,
			Iftar:  times.Maghrib,
		}
		if day.Available() {
			day.Duration = day.Iftar.Sub(day.Suhoor)
		}
		days = append(days, day)
	}
	return days
}

// ForYear builds the schedule for the Ramadan that cal lists for year.
func ForYear(cal *Calendar, coord geo.Coordinate, year int, method prayer.Method, opts prayer.Options) ([]Day, error) {
	r, err := cal.Range(year)
	if err != nil {
		return nil, err
	}
	return Build(coord, r, method, opts), nil
}

// Summary aggregates the fast lengths of the available days.
type Summary struct {
	Days     int
	Shortest time.Duration
	Longest  time.Duration
	Average  time.Duration
}

// Summarize reduces days to shortest, longest and mean fast. Unavailable days
// are skipped; with none left the zero Summary is returned.
func Summarize(days []Day) Summary {
	var s Summary
	var total time.Duration
	for _, d := range days {
		if !d.Available() {
			continue
		}
		if s.Days == 0 || d.Duration < s.Shortest {
			s.Shortest = d.Duration
		}
		if d.Duration > s.Longest {
			s.Longest = d.Duration
		}
		total += d.Duration
		s.Days++
	}
	if s.Days > 0 {
		s.Average = (total / time.Duration(s.Days)).Round(time.Minute)
	}
	return s
}

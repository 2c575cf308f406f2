package prayer

import (
	"fmt"
	"strings"
	"time"

	"github.com/halalcities/halalcities/internal/api"
	"github.com/halalcities/halalcities/internal/geo"
)

// Names of the six daily events, in chronological order.
const (
	Fajr    = "Fajr"
	Sunrise = "Sunrise"
	Dhuhr   = "Dhuhr"
	Asr     = "Asr"
	Maghrib = "Maghrib"
	Isha    = "Isha"
)

// Prayer represents a single prayer with its name and time.
// A zero Time means the prayer is unavailable on that date.
type Prayer struct {
	Name string
	Time time.Time
}

// Available reports whether the prayer has a time.
func (p Prayer) Available() bool {
	return !p.Time.IsZero()
}

// AllPrayerNames lists every prayer/event the Al Adhan API can return, in chronological order.
var AllPrayerNames = []string{
	Fajr, Sunrise, Dhuhr, Asr, "Sunset", Maghrib, Isha,
	"Imsak", "Midnight", "Firstthird", "Lastthird",
}

// DefaultPrayerNames are the six events computed locally and tracked by default.
var DefaultPrayerNames = []string{
	Fajr, Sunrise, Dhuhr, Asr, Maghrib, Isha,
}

// ShortNames maps full prayer names to short abbreviations.
var ShortNames = map[string]string{
	Fajr:         "F",
	Sunrise:      "S",
	Dhuhr:        "D",
	Asr:          "A",
	"Sunset":     "St",
	Maghrib:      "M",
	Isha:         "I",
	"Imsak":      "Im",
	"Midnight":   "Mi",
	"Firstthird": "F3",
	"Lastthird":  "L3",
}

// CanonicalName returns the known spelling of a prayer name, matched
// case-insensitively. Unknown names are returned unchanged.
func CanonicalName(name string) string {
	for _, n := range AllPrayerNames {
		if strings.EqualFold(n, name) {
			return n
		}
	}
	return name
}

// ParseTimings converts Al Adhan timings into a slice of Prayer structs for the given date.
// It filters to only include the specified prayer names.
func ParseTimings(timings api.Timings, date time.Time, loc *time.Location, selected []string) ([]Prayer, error) {
	var prayers []Prayer
	for _, name := range selected {
		name = CanonicalName(name)
		raw, ok := timings.Clock(name)
		if !ok {
			return nil, fmt.Errorf("unknown prayer name: %s", name)
		}

		t, err := ParseClock(raw, date, loc)
		if err != nil {
			return nil, fmt.Errorf("failed to parse time for %s (%q): %w", name, raw, err)
		}

		prayers = append(prayers, Prayer{Name: name, Time: t})
	}

	return prayers, nil
}

// NextPrayer finds the first available prayer after now, in slice order.
// It returns nil once every prayer of the day has passed.
func NextPrayer(prayers []Prayer, now time.Time) *Prayer {
	for i := range prayers {
		if prayers[i].Available() && prayers[i].Time.After(now) {
			return &prayers[i]
		}
	}
	return nil
}

// CurrentPrayer returns the latest prayer whose time is at or before now.
// Sunrise ends Fajr rather than starting a prayer, so it is never current.
// It returns nil before the day's first prayer.
func CurrentPrayer(prayers []Prayer, now time.Time) *Prayer {
	var current *Prayer
	for i := range prayers {
		p := &prayers[i]
		if !p.Available() || p.Name == Sunrise {
			continue
		}
		if p.Time.After(now) {
			break
		}
		current = p
	}
	return current
}

// NextInfo describes the upcoming prayer relative to a moment.
type NextInfo struct {
	Name           string        `json:"name"`
	Time           time.Time     `json:"time"`
	Remaining      time.Duration `json:"remaining"`
	RemainingLabel string        `json:"remaining_label"`
}

// Resolve finds the prayer following now. When now is past the last entry
// it wraps to the first available prayer at the same clock time on the next
// day. ok is false only when no entry has a time.
func Resolve(prayers []Prayer, now time.Time) (info NextInfo, ok bool) {
	next := NextPrayer(prayers, now)
	if next == nil {
		for i := range prayers {
			if prayers[i].Available() {
				next = &Prayer{Name: prayers[i].Name, Time: prayers[i].Time.AddDate(0, 0, 1)}
				break
			}
		}
	}
	if next == nil {
		return NextInfo{}, false
	}

	d := TimeRemaining(*next, now)
	return NextInfo{
		Name:           next.Name,
		Time:           next.Time,
		Remaining:      d,
		RemainingLabel: FormatRemaining(d),
	}, true
}

// TimeRemaining returns the duration until the given prayer time.
func TimeRemaining(prayer Prayer, now time.Time) time.Duration {
	return prayer.Time.Sub(now)
}

// FormatRemaining formats a duration as "Xh Ym" or "Ym" if less than an hour.
func FormatRemaining(d time.Duration) string {
	if d < 0 {
		return "0m"
	}
	h := int(d.Hours())
	m := int(d.Minutes()) % 60

	if h > 0 {
		return fmt.Sprintf("%dh %dm", h, m)
	}
	return fmt.Sprintf("%dm", m)
}

var clockLayouts = []string{"15:04", "3:04 PM", "3:04PM"}

// ParseClock parses a clock string like "15:02", "03:02 PM" or "15:02 (BST)"
// into a time.Time on the given date in the given location.
func ParseClock(raw string, date time.Time, loc *time.Location) (time.Time, error) {
	// Strip timezone suffix like " (BST)" that the API sometimes appends.
	s := strings.TrimSpace(raw)
	if idx := strings.Index(s, "("); idx != -1 {
		s = strings.TrimSpace(s[:idx])
	}
	s = strings.ToUpper(s)

	for _, layout := range clockLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return time.Date(date.Year(), date.Month(), date.Day(), t.Hour(), t.Minute(), 0, 0, loc), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid time format: %q", raw)
}

// Upcoming resolves the next prayer after now from the schedules of now's
// civil date and the day after, so the answer after Isha is tomorrow's real
// Fajr rather than an estimate.
func Upcoming(coord geo.Coordinate, now time.Time, method Method, opts Options) (NextInfo, bool) {
	loc := opts.Location
	if loc == nil {
		loc = LongitudeZone(coord.Longitude)
		opts.Location = loc
	}
	local := now.In(loc)
	prayers := Calculate(coord, local, method, opts).Prayers()
	prayers = append(prayers, Calculate(coord, local.AddDate(0, 0, 1), method, opts).Prayers()...)
	return Resolve(prayers, now)
}

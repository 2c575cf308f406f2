package prayer

import (
	"fmt"
	"strings"
	"time"
)

// Clock layouts for the "time_format" setting.
const (
	Layout12h = "03:04 PM"
	Layout24h = "15:04"
)

// Unavailable is printed in place of a time the sun never reaches.
const Unavailable = "--:--"

// TimeLayout maps a "12h"/"24h" setting to a Go time layout.
func TimeLayout(format string) string {
	if format == "12h" {
		return Layout12h
	}
	return Layout24h
}

// FormatClock formats t with layout, or returns Unavailable for the zero time.
func FormatClock(t time.Time, layout string) string {
	if t.IsZero() {
		return Unavailable
	}
	return t.Format(layout)
}

// Times is one day's prayer schedule for a place.
// A zero field means the time is unavailable on that date.
type Times struct {
	Date     time.Time // midnight of the civil date in Location
	Location *time.Location
	Method   Method

	Fajr    time.Time
	Sunrise time.Time
	Dhuhr   time.Time
	Asr     time.Time
	Maghrib time.Time
	Isha    time.Time
}

// Prayers returns the six entries in canonical order, including unavailable ones.
func (t Times) Prayers() []Prayer {
	return []Prayer{
		{Name: Fajr, Time: t.Fajr},
		{Name: Sunrise, Time: t.Sunrise},
		{Name: Dhuhr, Time: t.Dhuhr},
		{Name: Asr, Time: t.Asr},
		{Name: Maghrib, Time: t.Maghrib},
		{Name: Isha, Time: t.Isha},
	}
}

// Get looks up a time by prayer name, case-insensitively.
func (t Times) Get(name string) (time.Time, bool) {
	for _, p := range t.Prayers() {
		if strings.EqualFold(p.Name, name) {
			return p.Time, true
		}
	}
	return time.Time{}, false
}

// Select returns the named entries in the order given.
func (t Times) Select(names []string) ([]Prayer, error) {
	out := make([]Prayer, 0, len(names))
	for _, name := range names {
		tm, ok := t.Get(name)
		if !ok {
			return nil, fmt.Errorf("unknown prayer name: %s", name)
		}
		out = append(out, Prayer{Name: CanonicalName(name), Time: tm})
	}
	return out, nil
}

// Clock formats the named field with layout. Unknown names and unavailable
// times both give Unavailable.
func (t Times) Clock(name, layout string) string {
	tm, _ := t.Get(name)
	return FormatClock(tm, layout)
}

// Strings formats every field with layout.
func (t Times) Strings(layout string) Clocks {
	return Clocks{
		Fajr:    FormatClock(t.Fajr, layout),
		Sunrise: FormatClock(t.Sunrise, layout),
		Dhuhr:   FormatClock(t.Dhuhr, layout),
		Asr:     FormatClock(t.Asr, layout),
		Maghrib: FormatClock(t.Maghrib, layout),
		Isha:    FormatClock(t.Isha, layout),
	}
}

// Clocks is the display form of Times: one clock string per field.
type Clocks struct {
	Fajr    string `json:"fajr"`
	Sunrise string `json:"sunrise"`
	Dhuhr   string `json:"dhuhr"`
	Asr     string `json:"asr"`
	Maghrib string `json:"maghrib"`
	Isha    string `json:"isha"`
}

// Parse converts the clock strings back into prayers on date in loc.
// Unavailable entries become prayers with a zero time.
func (c Clocks) Parse(date time.Time, loc *time.Location) ([]Prayer, error) {
	raw := []struct{ name, value string }{
		{Fajr, c.Fajr}, {Sunrise, c.Sunrise}, {Dhuhr, c.Dhuhr},
		{Asr, c.Asr}, {Maghrib, c.Maghrib}, {Isha, c.Isha},
	}

	prayers := make([]Prayer, 0, len(raw))
	for _, r := range raw {
		if strings.TrimSpace(r.value) == Unavailable {
			prayers = append(prayers, Prayer{Name: r.name})
			continue
		}
		t, err := ParseClock(r.value, date, loc)
		if err != nil {
			return nil, fmt.Errorf("failed to parse time for %s (%q): %w", r.name, r.value, err)
		}
		prayers = append(prayers, Prayer{Name: r.name, Time: t})
	}
	return prayers, nil
}

package server

import (
	"time"

	"github.com/halalcities/halalcities/internal/directory"
	"github.com/halalcities/halalcities/internal/geo"
	"github.com/halalcities/halalcities/internal/prayer"
	"github.com/halalcities/halalcities/internal/qibla"
	"github.com/halalcities/halalcities/internal/ramadan"
)

type methodResponse struct {
	Tag       string  `json:"tag"`
	Name      string  `json:"name"`
	FajrAngle float64 `json:"fajr_angle"`
	IshaAngle float64 `json:"isha_angle,omitempty"`
	IshaDelay int     `json:"isha_delay_minutes,omitempty"`
}

type prayerTimesResponse struct {
	Date         string          `json:"date"`
	Timezone     string          `json:"timezone"`
	Method       string          `json:"method"`
	School       string          `json:"school"`
	HighLatitude string          `json:"high_latitude"`
	Ramadan      bool            `json:"ramadan"`
	Coordinates  geo.Coordinate  `json:"coordinates"`
	Times        prayer.Clocks   `json:"times"`
	City         *directory.City `json:"city,omitempty"`
}

type qiblaResponse struct {
	Coordinates geo.Coordinate `json:"coordinates"`
	qibla.Result
	Compass string          `json:"compass"`
	City    *directory.City `json:"city,omitempty"`
}

type nextResponse struct {
	prayer.NextInfo
	Current string `json:"current,omitempty"`
}

type ramadanDay struct {
	Day             int    `json:"day"`
	Date            string `json:"date"`
	Suhoor          string `json:"suhoor"`
	Iftar           string `json:"iftar"`
	DurationMinutes int    `json:"duration_minutes"`
}

type ramadanSummary struct {
	Days            int `json:"days"`
	ShortestMinutes int `json:"shortest_minutes"`
	LongestMinutes  int `json:"longest_minutes"`
	AverageMinutes  int `json:"average_minutes"`
}

type ramadanResponse struct {
	Year     int            `json:"year"`
	Start    string         `json:"start"`
	End      string         `json:"end"`
	Method   string         `json:"method"`
	Timezone string         `json:"timezone"`
	Days     []ramadanDay   `json:"days"`
	Summary  ramadanSummary `json:"summary"`
}

func newRamadanResponse(year int, r ramadan.Range, m prayer.Method, loc *time.Location, days []ramadan.Day) ramadanResponse {
	out := ramadanResponse{
		Year:     year,
		Start:    r.Start.Format(dateLayout),
		End:      r.End.Format(dateLayout),
		Method:   m.String(),
		Timezone: loc.String(),
		Days:     make([]ramadanDay, 0, len(days)),
	}
	for _, d := range days {
		out.Days = append(out.Days, ramadanDay{
			Day:             d.Index,
			Date:            d.Date.Format(dateLayout),
			Suhoor:          prayer.FormatClock(d.Suhoor.In(loc), prayer.Layout24h),
			Iftar:           prayer.FormatClock(d.Iftar.In(loc), prayer.Layout24h),
			DurationMinutes: d.DurationMinutes(),
		})
	}
	s := ramadan.Summarize(days)
	out.Summary = ramadanSummary{
		Days:            s.Days,
		ShortestMinutes: int(s.Shortest / time.Minute),
		LongestMinutes:  int(s.Longest / time.Minute),
		AverageMinutes:  int(s.Average / time.Minute),
	}
	return out
}

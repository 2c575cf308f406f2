package api

import (
	"fmt"
	"time"

	"github.com/halalcities/halalcities/internal/geo"
)

// Response represents the top-level Al Adhan API response.
type Response struct {
	Code   int    `json:"code"`
	Status string `json:"status"`
	Data   Data   `json:"data"`
}

// Data holds the prayer timings, date info, and metadata.
type Data struct {
	Timings Timings  `json:"timings"`
	Date    DateInfo `json:"date"`
	Meta    Meta     `json:"meta"`
}

// Timings holds the reference clock times as the API sends them, "HH:MM"
// with an optional zone suffix such as " (BST)".
type Timings struct {
	Fajr       string `json:"Fajr"`
	Sunrise    string `json:"Sunrise"`
	Dhuhr      string `json:"Dhuhr"`
	Asr        string `json:"Asr"`
	Sunset     string `json:"Sunset"`
	Maghrib    string `json:"Maghrib"`
	Isha       string `json:"Isha"`
	Imsak      string `json:"Imsak"`
	Midnight   string `json:"Midnight"`
	Firstthird string `json:"Firstthird"`
	Lastthird  string `json:"Lastthird"`
}

// Clock returns the raw time of the named event. Names are the JSON keys,
// matched as given.
func (t Timings) Clock(name string) (string, bool) {
	switch name {
	case "Fajr":
		return t.Fajr, true
	case "Sunrise":
		return t.Sunrise, true
	case "Dhuhr":
		return t.Dhuhr, true
	case "Asr":
		return t.Asr, true
	case "Sunset":
		return t.Sunset, true
	case "Maghrib":
		return t.Maghrib, true
	case "Isha":
		return t.Isha, true
	case "Imsak":
		return t.Imsak, true
	case "Midnight":
		return t.Midnight, true
	case "Firstthird":
		return t.Firstthird, true
	case "Lastthird":
		return t.Lastthird, true
	}
	return "", false
}

// DateInfo contains date representations.
type DateInfo struct {
	Readable  string        `json:"readable"`
	Timestamp string        `json:"timestamp"`
	Hijri     HijriDate     `json:"hijri"`
	Gregorian GregorianDate `json:"gregorian"`
}

// HijriDate represents the Hijri (Islamic) date from the API response.
type HijriDate struct {
	Date        string           `json:"date"` // e.g. "10-08-1447"
	Day         string           `json:"day"`
	Month       HijriMonth       `json:"month"`
	Year        string           `json:"year"`
	Designation HijriDesignation `json:"designation"`
}

// HijriMonth represents the month in the Hijri calendar.
type HijriMonth struct {
	Number int    `json:"number"`
	En     string `json:"en"` // English name, e.g. "Shaʿbān"
	Ar     string `json:"ar"` // Arabic name
}

// HijriDesignation contains the calendar designation labels.
type HijriDesignation struct {
	Abbreviated string `json:"abbreviated"` // "AH"
	Expanded    string `json:"expanded"`    // "Anno Hegirae"
}

// Format returns the Hijri date as "DD MonthName YYYY AH".
func (h HijriDate) Format() string {
	if h.Day == "" || h.Month.En == "" || h.Year == "" {
		return ""
	}
	abbr := h.Designation.Abbreviated
	if abbr == "" {
		abbr = "AH"
	}
	return h.Day + " " + h.Month.En + " " + h.Year + " " + abbr
}

// GregorianDate represents the Gregorian date from the API response.
type GregorianDate struct {
	Date    string         `json:"date"` // e.g. "28-02-2026"
	Day     string         `json:"day"`
	Weekday GregorianDay   `json:"weekday"`
	Month   GregorianMonth `json:"month"`
	Year    string         `json:"year"`
}

// GregorianDay contains the weekday name.
type GregorianDay struct {
	En string `json:"en"` // e.g. "Saturday"
}

// GregorianMonth contains the month details.
type GregorianMonth struct {
	Number int    `json:"number"`
	En     string `json:"en"` // e.g. "February"
}

// Meta contains request metadata returned by the API.
type Meta struct {
	Latitude  float64    `json:"latitude"`
	Longitude float64    `json:"longitude"`
	Timezone  string     `json:"timezone"`
	Method    MethodInfo `json:"method"`
	School    string     `json:"school"`
}

// Coordinate returns the point the API computed for. For city queries this
// is the API's geocoding of the city, and must be validated before use.
func (m Meta) Coordinate() geo.Coordinate {
	return geo.Coordinate{Latitude: m.Latitude, Longitude: m.Longitude}
}

// Location loads the IANA zone the timings are expressed in.
func (m Meta) Location() (*time.Location, error) {
	if m.Timezone == "" {
		return nil, fmt.Errorf("response has no timezone")
	}
	tz, err := time.LoadLocation(m.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", m.Timezone, err)
	}
	return tz, nil
}

// MethodInfo identifies the calculation method used.
type MethodInfo struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// CalendarResponse is the monthly calendar response: one Data per day of the
// month, in order.
type CalendarResponse struct {
	Code   int    `json:"code"`
	Status string `json:"status"`
	Data   []Data `json:"data"`
}

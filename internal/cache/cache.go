package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/halalcities/halalcities/internal/api"
	"github.com/halalcities/halalcities/internal/geo"
	"github.com/halalcities/halalcities/internal/ramadan"
)

const (
	geoKey      = "geolocation"
	geoTTL      = 24 * time.Hour
	timingsTTL  = 48 * time.Hour
	calendarTTL = 45 * 24 * time.Hour
	ramadanTTL  = 30 * 24 * time.Hour
)

// Cache provides typed access to a Store for geolocation, Al Adhan
// responses and Ramadan schedules.
type Cache struct {
	store Store
	now   func() time.Time
}

// New wraps store.
func New(store Store) *Cache {
	return &Cache{store: store, now: time.Now}
}

// Close releases the underlying store.
func (c *Cache) Close() error {
	return c.store.Close()
}

// Query identifies the parameters that change a cached result, so different
// locations, methods and schools get separate entries.
type Query struct {
	Latitude     float64
	Longitude    float64
	City         string
	Country      string
	Method       int
	School       int
	HighLatitude int
	Timezone     string
}

func (q Query) key(kind, period string) string {
	return fmt.Sprintf("%s|%s|%.6f|%.6f|%s|%s|%d|%d|%d|%s",
		kind, period, q.Latitude, q.Longitude, q.City, q.Country, q.Method, q.School, q.HighLatitude, q.Timezone)
}

// TimingsEntry stores a day's Al Adhan times along with metadata for validation.
type TimingsEntry struct {
	Date    string        `json:"date"` // YYYY-MM-DD
	Method  int           `json:"method"`
	School  int           `json:"school"`
	Timings api.Timings   `json:"timings"`
	Hijri   api.HijriDate `json:"hijri"`
	Meta    api.Meta      `json:"meta"`
}

// CalendarEntry stores a month of Al Adhan times.
type CalendarEntry struct {
	Year  int        `json:"year"`
	Month int        `json:"month"`
	Days  []api.Data `json:"days"`
}

// GeoEntry stores a cached geolocation result with a timestamp.
type GeoEntry struct {
	Location geo.Location `json:"location"`
	CachedAt time.Time    `json:"cached_at"`
}

// RamadanEntry stores a computed Ramadan schedule.
type RamadanEntry struct {
	Year  int           `json:"year"`
	Start string        `json:"start"` // YYYY-MM-DD
	End   string        `json:"end"`
	Days  []ramadan.Day `json:"days"`
}

// LoadTimings returns the cached Al Adhan times for date, or nil if the entry
// is missing or for another day.
func (c *Cache) LoadTimings(ctx context.Context, date time.Time, q Query) *TimingsEntry {
	dateStr := date.Format("2006-01-02")
	var entry TimingsEntry
	if !c.load(ctx, q.key("timings", dateStr), &entry) {
		return nil
	}
	// Stale cache for a previous day is useless.
	if entry.Date != dateStr {
		return nil
	}
	return &entry
}

// SaveTimings writes an Al Adhan response for date.
func (c *Cache) SaveTimings(ctx context.Context, date time.Time, q Query, resp *api.Response) error {
	dateStr := date.Format("2006-01-02")
	entry := TimingsEntry{
		Date:    dateStr,
		Method:  q.Method,
		School:  q.School,
		Timings: resp.Data.Timings,
		Hijri:   resp.Data.Date.Hijri,
		Meta:    resp.Data.Meta,
	}
	return c.save(ctx, q.key("timings", dateStr), entry, timingsTTL)
}

// LoadCalendar returns a cached month, or nil.
func (c *Cache) LoadCalendar(ctx context.Context, year int, month time.Month, q Query) *CalendarEntry {
	var entry CalendarEntry
	if !c.load(ctx, q.key("calendar", calendarPeriod(year, month)), &entry) {
		return nil
	}
	if entry.Year != year || entry.Month != int(month) {
		return nil
	}
	return &entry
}

// SaveCalendar writes a month of Al Adhan times.
func (c *Cache) SaveCalendar(ctx context.Context, year int, month time.Month, q Query, resp *api.CalendarResponse) error {
	entry := CalendarEntry{Year: year, Month: int(month), Days: resp.Data}
	return c.save(ctx, q.key("calendar", calendarPeriod(year, month)), entry, calendarTTL)
}

// LoadRamadan returns the cached schedule of year's Ramadan over r, or nil.
// A schedule built for other dates, such as before the calendar was
// corrected, is never returned.
func (c *Cache) LoadRamadan(ctx context.Context, year int, r ramadan.Range, q Query) []ramadan.Day {
	var entry RamadanEntry
	if !c.load(ctx, q.key("ramadan", ramadanPeriod(year, r)), &entry) {
		return nil
	}
	start, end := r.Start.Format("2006-01-02"), r.End.Format("2006-01-02")
	if entry.Year != year || entry.Start != start || entry.End != end || len(entry.Days) != r.Days() {
		return nil
	}
	return entry.Days
}

// SaveRamadan writes a schedule computed over r.
func (c *Cache) SaveRamadan(ctx context.Context, year int, r ramadan.Range, q Query, days []ramadan.Day) error {
	entry := RamadanEntry{
		Year:  year,
		Start: r.Start.Format("2006-01-02"),
		End:   r.End.Format("2006-01-02"),
		Days:  days,
	}
	return c.save(ctx, q.key("ramadan", ramadanPeriod(year, r)), entry, ramadanTTL)
}

// LoadGeo returns the cached geolocation, or nil if it is missing or older
// than 24 hours.
func (c *Cache) LoadGeo(ctx context.Context) *geo.Location {
	var entry GeoEntry
	if !c.load(ctx, geoKey, &entry) {
		return nil
	}
	if c.now().Sub(entry.CachedAt) > geoTTL {
		return nil
	}
	return &entry.Location
}

// SaveGeo writes a geolocation result.
func (c *Cache) SaveGeo(ctx context.Context, loc *geo.Location) error {
	entry := GeoEntry{Location: *loc, CachedAt: c.now()}
	return c.save(ctx, geoKey, entry, geoTTL)
}

func (c *Cache) load(ctx context.Context, key string, out any) bool {
	data, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrMiss) {
			log.Debug().Err(err).Str("key", key).Msg("cache read failed")
		}
		return false
	}
	if err := json.Unmarshal(data, out); err != nil {
		log.Debug().Err(err).Str("key", key).Msg("cache entry corrupt")
		return false
	}
	return true
}

func (c *Cache) save(ctx context.Context, key string, v any, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal cache entry: %w", err)
	}
	return c.store.Set(ctx, key, data, ttl)
}

func ramadanPeriod(year int, r ramadan.Range) string {
	return fmt.Sprintf("%d|%s|%s", year, r.Start.Format("2006-01-02"), r.End.Format("2006-01-02"))
}

func calendarPeriod(year int, month time.Month) string {
	return fmt.Sprintf("%04d-%02d", year, int(month))
}

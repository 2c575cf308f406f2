// Package directory stores the named cities users can look up instead of
// typing coordinates. Records live in SQLite by default or in Postgres when
// a database URL is configured.
package directory

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	_ "time/tzdata"
	"unicode"

	"github.com/halalcities/halalcities/internal/geo"
	"github.com/halalcities/halalcities/internal/prayer"
)

// ErrCityNotFound is returned when no city matches a slug or name.
var ErrCityNotFound = errors.New("city not found")

// City is a named place with everything needed to compute its prayer times.
type City struct {
	Slug      string  `json:"slug" db:"slug"`
	Name      string  `json:"name" db:"name"`
	Country   string  `json:"country" db:"country"`
	Latitude  float64 `json:"latitude" db:"latitude"`
	Longitude float64 `json:"longitude" db:"longitude"`
	Timezone  string  `json:"timezone" db:"timezone"`
	// Method is the customary calculation method tag, empty for the caller's default.
	Method string `json:"method,omitempty" db:"method"`
}

// Coordinate returns the city's position.
func (c City) Coordinate() geo.Coordinate {
	return geo.Coordinate{Latitude: c.Latitude, Longitude: c.Longitude}
}

// Location loads the city's IANA zone.
func (c City) Location() (*time.Location, error) {
	return time.LoadLocation(c.Timezone)
}

// MethodOr returns the city's method, or def when it has none.
func (c City) MethodOr(def prayer.Method) prayer.Method {
	if c.Method == "" {
		return def
	}
	m, err := prayer.ParseMethod(c.Method)
	if err != nil {
		return def
	}
	return m
}

// Validate checks the record before it is written.
func (c City) Validate() error {
	if c.Slug == "" {
		return errors.New("city slug is required")
	}
	if c.Slug != Slugify(c.Slug) {
		return fmt.Errorf("invalid city slug %q", c.Slug)
	}
	if strings.TrimSpace(c.Name) == "" {
		return errors.New("city name is required")
	}
	if err := c.Coordinate().Validate(); err != nil {
		return err
	}
	if _, err := c.Location(); err != nil {
		return fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	if c.Method != "" {
		if _, err := prayer.ParseMethod(c.Method); err != nil {
			return err
		}
	}
	return nil
}

// Store is the city repository.
type Store interface {
	// ListCities returns cities ordered by country then name. An empty
	// country lists all of them; otherwise the match is case-insensitive.
	ListCities(ctx context.Context, country string) ([]City, error)
	GetCity(ctx context.Context, slug string) (City, error)
	// FindCity matches by name or slug, case-insensitively. An empty
	// country matches any country.
	FindCity(ctx context.Context, name, country string) (City, error)
	UpsertCity(ctx context.Context, city City) error
	Close() error
}

// Open picks the backend from dsn: postgres:// and postgresql:// URLs go to
// Postgres, anything else is treated as an SQLite file path.
func Open(ctx context.Context, dsn string) (Store, error) {
	if IsPostgresURL(dsn) {
		pg, err := OpenPostgres(ctx, dsn, PostgresOptions{})
		if err != nil {
			return nil, err
		}
		return pg, nil
	}
	lite, err := OpenSQLite(dsn)
	if err != nil {
		return nil, err
	}
	return lite, nil
}

// IsPostgresURL reports whether dsn names a Postgres server.
func IsPostgresURL(dsn string) bool {
	lower := strings.ToLower(dsn)
	return strings.HasPrefix(lower, "postgres://") || strings.HasPrefix(lower, "postgresql://")
}

// Slugify lowercases s and joins its words with hyphens.
// "Kuala Lumpur" becomes "kuala-lumpur".
func Slugify(s string) string {
	var sb strings.Builder
	pendingDash := false
	for _, r := range strings.ToLower(s) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			if pendingDash && sb.Len() > 0 {
				sb.WriteByte('-')
			}
			pendingDash = false
			sb.WriteRune(r)
		default:
			pendingDash = true
		}
	}
	return sb.String()
}

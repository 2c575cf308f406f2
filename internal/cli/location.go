package cli

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/halalcities/halalcities/internal/api"
	"github.com/halalcities/halalcities/internal/cache"
	"github.com/halalcities/halalcities/internal/config"
	"github.com/halalcities/halalcities/internal/directory"
	"github.com/halalcities/halalcities/internal/geo"
	"github.com/halalcities/halalcities/internal/prayer"
)

// newAPIClient is replaced in tests to point at an httptest server.
var newAPIClient = api.NewClient

// detectLocation is replaced in tests so nothing reaches ip-api.com.
var detectLocation = geo.DetectLocation

// locationSource records where the coordinates came from.
type locationSource string

const (
	sourceConfig    locationSource = "config"
	sourceDirectory locationSource = "directory"
	sourceLookup    locationSource = "al-adhan"
	sourceCache     locationSource = "cache"
	sourceDetected  locationSource = "ip"
)

// resolvedLocation holds the place all calculations run for.
type resolvedLocation struct {
	Coord    geo.Coordinate
	City     string
	Country  string
	Timezone *time.Location
	Source   locationSource
	// Method is the city's customary method, if the directory has one.
	Method string
}

// Label returns "City, Country" or the coordinates when the place has no name.
func (l resolvedLocation) Label() string {
	switch {
	case l.City != "" && l.Country != "":
		return l.City + ", " + l.Country
	case l.City != "":
		return l.City
	default:
		return l.Coord.String()
	}
}

// resolveLocation determines the location in priority order:
// coordinates from flags or config, a city from the directory (looked up
// online and stored when unknown), the cached IP location, and finally
// IP geolocation.
func resolveLocation(ctx context.Context, cfg *config.Config, c *cache.Cache) (resolvedLocation, error) {
	loc, err := locate(ctx, cfg, c)
	if err != nil {
		return resolvedLocation{}, err
	}

	// An explicit timezone beats whatever the source suggested.
	if cfg.Timezone != "" {
		tz, err := time.LoadLocation(cfg.Timezone)
		if err != nil {
			return resolvedLocation{}, fmt.Errorf("invalid timezone %q: %w", cfg.Timezone, err)
		}
		loc.Timezone = tz
	}
	if loc.Timezone == nil {
		loc.Timezone = prayer.LongitudeZone(loc.Coord.Longitude)
		log.Debug().Str("zone", loc.Timezone.String()).Msg("no timezone known, using longitude zone")
	}
	return loc, nil
}

func locate(ctx context.Context, cfg *config.Config, c *cache.Cache) (resolvedLocation, error) {
	if cfg.HasCoordinates() {
		coord := cfg.Coordinate()
		if err := coord.Validate(); err != nil {
			return resolvedLocation{}, err
		}
		return resolvedLocation{Coord: coord, City: cfg.City, Country: cfg.Country, Source: sourceConfig}, nil
	}

	if cfg.City != "" {
		return lookupCity(ctx, cfg)
	}

	if c != nil {
		if g := c.LoadGeo(ctx); g != nil {
			return fromGeo(*g, sourceCache), nil
		}
	}

	g, err := detectLocation(ctx)
	if err != nil {
		return resolvedLocation{}, fmt.Errorf("could not detect location (set --city or --latitude/--longitude): %w", err)
	}
	if c != nil {
		if err := c.SaveGeo(ctx, g); err != nil {
			log.Warn().Err(err).Msg("failed to cache location")
		}
	}
	return fromGeo(*g, sourceDetected), nil
}

func fromGeo(g geo.Location, source locationSource) resolvedLocation {
	loc := resolvedLocation{Coord: g.Coordinate(), City: g.City, Country: g.Country, Source: source}
	if g.Timezone != "" {
		if tz, err := time.LoadLocation(g.Timezone); err == nil {
			loc.Timezone = tz
		}
	}
	return loc
}

func fromCity(city directory.City, source locationSource) resolvedLocation {
	loc := resolvedLocation{
		Coord:   city.Coordinate(),
		City:    city.Name,
		Country: city.Country,
		Method:  city.Method,
		Source:  source,
	}
	if tz, err := city.Location(); err == nil {
		loc.Timezone = tz
	}
	return loc
}

// lookupCity finds cfg.City in the directory. Unknown cities are geocoded
// through Al Adhan when a country is given and stored for offline use.
func lookupCity(ctx context.Context, cfg *config.Config) (resolvedLocation, error) {
	store, err := openDirectory(ctx, cfg)
	if err != nil {
		return resolvedLocation{}, err
	}
	defer store.Close()

	city, err := store.FindCity(ctx, cfg.City, cfg.Country)
	if err == nil {
		return fromCity(city, sourceDirectory), nil
	}
	if !errors.Is(err, directory.ErrCityNotFound) {
		return resolvedLocation{}, err
	}
	if cfg.Country == "" {
		return resolvedLocation{}, fmt.Errorf("city %q is not in the directory; pass --country to look it up online", cfg.City)
	}

	city, err = geocodeCity(ctx, store, cfg.City, cfg.Country)
	if err != nil {
		return resolvedLocation{}, err
	}
	return fromCity(city, sourceLookup), nil
}

// geocodeCity asks Al Adhan where a city is and adds it to the directory.
func geocodeCity(ctx context.Context, store directory.Store, name, country string) (directory.City, error) {
	city, err := fetchCity(ctx, store, name, country)
	if err != nil {
		return directory.City{}, err
	}
	if err := store.UpsertCity(ctx, city); err != nil {
		return directory.City{}, fmt.Errorf("failed to store %s: %w", name, err)
	}
	return city, nil
}

// fetchCity looks a city up through Al Adhan without storing it. The slug
// gets the country appended when the plain one belongs to another country.
func fetchCity(ctx context.Context, store directory.Store, name, country string) (directory.City, error) {
	log.Info().Str("city", name).Str("country", country).Msg("looking up city online")

	resp, err := newAPIClient().FetchByCity(ctx, nowFunc(), name, country, -1, -1)
	if err != nil {
		return directory.City{}, fmt.Errorf("failed to look up %s, %s: %w", name, country, err)
	}

	coord := resp.Data.Meta.Coordinate()
	if coord.IsZero() {
		return directory.City{}, fmt.Errorf("Al Adhan returned no coordinates for %s, %s", name, country)
	}
	if err := coord.Validate(); err != nil {
		return directory.City{}, fmt.Errorf("Al Adhan returned a bad location for %s, %s: %w", name, country, err)
	}
	tz := ""
	if _, err := resp.Data.Meta.Location(); err == nil {
		tz = resp.Data.Meta.Timezone
	} else {
		log.Warn().Err(err).Str("city", name).Msg("ignoring timezone from Al Adhan")
	}

	slug := directory.Slugify(name)
	if existing, err := store.GetCity(ctx, slug); err == nil && existing.Country != country {
		slug = directory.Slugify(name + " " + country)
	}

	return directory.City{
		Slug:      slug,
		Name:      name,
		Country:   country,
		Latitude:  coord.Latitude,
		Longitude: coord.Longitude,
		Timezone:  tz,
	}, nil
}

// openDirectory opens the configured city directory, seeding it with the
// built-in cities on first use.
func openDirectory(ctx context.Context, cfg *config.Config) (directory.Store, error) {
	dsn := cfg.Database
	if dsn == "" {
		dir, err := cacheDir(cfg)
		if err != nil {
			return nil, err
		}
		dsn = filepath.Join(dir, "cities.db")
	}

	store, err := directory.Open(ctx, dsn)
	if err != nil {
		return nil, err
	}

	if err := ensureSeeded(ctx, store); err != nil {
		store.Close()
		return nil, err
	}
	return store, nil
}

// ensureSeeded loads the built-in cities into an empty directory. A
// directory with any cities is left alone so edits survive.
func ensureSeeded(ctx context.Context, store directory.Store) error {
	cities, err := store.ListCities(ctx, "")
	if err != nil {
		return err
	}
	if len(cities) > 0 {
		return nil
	}
	return directory.Seed(ctx, store)
}

// cacheDir returns the configured cache directory or the default one.
func cacheDir(cfg *config.Config) (string, error) {
	if cfg.CacheDir != "" {
		return cfg.CacheDir, nil
	}
	store, err := cache.NewFileStore("")
	if err != nil {
		return "", err
	}
	return store.Dir(), nil
}

// openCache opens the file cache. A cache that cannot be opened is not
// fatal; callers get nil and run uncached.
func openCache(cfg *config.Config) *cache.Cache {
	store, err := cache.NewFileStore(cfg.CacheDir)
	if err != nil {
		log.Warn().Err(err).Msg("cache disabled")
		return nil
	}
	return cache.New(store)
}

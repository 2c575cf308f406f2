package server

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/halalcities/halalcities/internal/geo"
	"github.com/halalcities/halalcities/internal/prayer"
)

var errInvalidParam = errors.New("invalid parameter")

const dateLayout = "2006-01-02"

// coordinate reads the required lat and lon query parameters.
func coordinate(c *gin.Context) (geo.Coordinate, error) {
	lat, err := floatParam(c, "lat")
	if err != nil {
		return geo.Coordinate{}, err
	}
	lon, err := floatParam(c, "lon")
	if err != nil {
		return geo.Coordinate{}, err
	}
	coord := geo.Coordinate{Latitude: lat, Longitude: lon}
	if err := coord.Validate(); err != nil {
		return geo.Coordinate{}, err
	}
	return coord, nil
}

func floatParam(c *gin.Context, name string) (float64, error) {
	raw, ok := c.GetQuery(name)
	if !ok || raw == "" {
		return 0, fmt.Errorf("%w: %s is required", errInvalidParam, name)
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be a number", errInvalidParam, name)
	}
	return v, nil
}

// method reads the method parameter, accepting a tag such as "MWL".
func method(c *gin.Context, def prayer.Method) (prayer.Method, error) {
	raw := c.Query("method")
	if raw == "" {
		return def, nil
	}
	return prayer.ParseMethod(raw)
}

// location reads tz, falling back to def.
func location(c *gin.Context, def *time.Location) (*time.Location, error) {
	raw := c.Query("tz")
	if raw == "" {
		return def, nil
	}
	loc, err := time.LoadLocation(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: unknown timezone %q", errInvalidParam, raw)
	}
	return loc, nil
}

// options reads school, high_lat and tz into calculation options.
func options(c *gin.Context, defLoc *time.Location) (prayer.Options, error) {
	var opts prayer.Options
	loc, err := location(c, defLoc)
	if err != nil {
		return opts, err
	}
	opts.Location = loc

	school, err := prayer.ParseSchool(c.Query("school"))
	if err != nil {
		return opts, fmt.Errorf("%w: %v", errInvalidParam, err)
	}
	opts.School = school

	if raw := c.Query("high_lat"); raw != "" {
		rule, err := prayer.ParseHighLatitudeRule(raw)
		if err != nil {
			return opts, fmt.Errorf("%w: %v", errInvalidParam, err)
		}
		opts.HighLatitude = rule
	}
	return opts, nil
}

// date reads an optional YYYY-MM-DD date; the default is today in loc.
func date(c *gin.Context, loc *time.Location, now time.Time) (time.Time, error) {
	raw := c.Query("date")
	if raw == "" {
		return now.In(loc), nil
	}
	d, err := time.ParseInLocation(dateLayout, raw, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date must be YYYY-MM-DD", errInvalidParam)
	}
	return d, nil
}

// instant reads an optional RFC 3339 "now" override.
func instant(c *gin.Context, now time.Time) (time.Time, error) {
	raw := c.Query("now")
	if raw == "" {
		return now, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: now must be RFC 3339", errInvalidParam)
	}
	return t, nil
}

// layout reads format=12h|24h.
func layout(c *gin.Context) (string, error) {
	switch f := c.Query("format"); f {
	case "", "24h":
		return prayer.Layout24h, nil
	case "12h":
		return prayer.Layout12h, nil
	default:
		return "", fmt.Errorf("%w: format must be 12h or 24h", errInvalidParam)
	}
}

// Package config provides persistent configuration for the halalcities CLI.
//
// Configuration is stored as JSON at ~/.config/halalcities/config.json
// (XDG-compliant). The merge priority is: CLI flags > config file > defaults.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata" // timezone names must resolve on hosts without zoneinfo

	"github.com/halalcities/halalcities/internal/geo"
	"github.com/halalcities/halalcities/internal/prayer"
)

const (
	configDirName  = "halalcities"
	configFileName = "config.json"
)

// ValidKeys lists all config keys that can be set via `config set`.
var ValidKeys = []string{
	"city", "country",
	"latitude", "longitude",
	"timezone",
	"method", "school", "high_latitude",
	"time_format",
	"prayers",
	"cache_dir",
	"database",
	"ramadan_calendar",
}

// Config holds all user-configurable settings.
// Zero values mean "not set" (use defaults or auto-detect).
type Config struct {
	City            string  `json:"city,omitempty"`
	Country         string  `json:"country,omitempty"`
	Latitude        float64 `json:"latitude,omitempty"`
	Longitude       float64 `json:"longitude,omitempty"`
	Timezone        string  `json:"timezone,omitempty"`      // IANA name, e.g. "Europe/London"
	Method          string  `json:"method,omitempty"`        // tag, e.g. "MWL"
	School          string  `json:"school,omitempty"`        // "shafi" or "hanafi"
	HighLatitude    string  `json:"high_latitude,omitempty"` // "none", "middle-of-night", ...
	TimeFormat      string  `json:"time_format,omitempty"`   // "12h" or "24h"
	Prayers         string  `json:"prayers,omitempty"`       // comma-separated list
	CacheDir        string  `json:"cache_dir,omitempty"`
	Database        string  `json:"database,omitempty"` // SQLite path or Postgres URL of the city directory
	RamadanCalendar string  `json:"ramadan_calendar,omitempty"`
}

// Defaults returns a Config with all default values applied.
func Defaults() Config {
	return Config{
		Method:       prayer.DefaultMethod.String(),
		School:       strings.ToLower(prayer.Shafi.String()),
		HighLatitude: prayer.HighLatNone.String(),
		TimeFormat:   "24h",
	}
}

// Dir returns the config directory path.
// It respects $XDG_CONFIG_HOME if set, otherwise uses ~/.config/.
func Dir() (string, error) {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("cannot determine home directory: %w", err)
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, configDirName), nil
}

// Path returns the full path to the config file.
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configFileName), nil
}

// Load reads the config file from disk.
// If the file does not exist, it returns an empty Config (not an error).
// If the file exists but is invalid JSON, it returns an error.
func Load() (*Config, error) {
	path, err := Path()
	if err != nil {
		return nil, err
	}

	return LoadFrom(path)
}

// LoadFrom reads the config from a specific file path.
func LoadFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg := Config{}
			return &cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", path, err)
	}

	return &cfg, nil
}

// Save writes the config to disk, creating the directory if needed.
func (c *Config) Save() error {
	path, err := Path()
	if err != nil {
		return err
	}

	return c.SaveTo(path)
}

// SaveTo writes the config to a specific file path.
func (c *Config) SaveTo(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("cannot create config directory %s: %w", dir, err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Reset deletes the config file.
func Reset() error {
	path, err := Path()
	if err != nil {
		return err
	}

	return ResetAt(path)
}

// ResetAt deletes the config file at a specific path.
func ResetAt(path string) error {
	err := os.Remove(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete config file: %w", err)
	}
	return nil
}

// Set sets a config key to the given value.
// It validates the key name and parses the value into the correct type.
func (c *Config) Set(key, value string) error {
	switch key {
	case "city":
		c.City = value
	case "country":
		c.Country = value
	case "latitude":
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid latitude %q: must be a number", value)
		}
		if err := (geo.Coordinate{Latitude: v}).Validate(); err != nil {
			return fmt.Errorf("invalid latitude %q: %w", value, err)
		}
		c.Latitude = v
	case "longitude":
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid longitude %q: must be a number", value)
		}
		if err := (geo.Coordinate{Longitude: v}).Validate(); err != nil {
			return fmt.Errorf("invalid longitude %q: %w", value, err)
		}
		c.Longitude = v
	case "timezone":
		if _, err := time.LoadLocation(value); err != nil {
			return fmt.Errorf("invalid timezone %q: %w", value, err)
		}
		c.Timezone = value
	case "method":
		m, err := prayer.ParseMethod(value)
		if err != nil {
			return err
		}
		c.Method = m.String()
	case "school":
		s, err := prayer.ParseSchool(value)
		if err != nil {
			return err
		}
		c.School = strings.ToLower(s.String())
	case "high_latitude":
		r, err := prayer.ParseHighLatitudeRule(value)
		if err != nil {
			return err
		}
		c.HighLatitude = r.String()
	case "time_format":
		if value != "12h" && value != "24h" {
			return fmt.Errorf("invalid time_format %q: must be \"12h\" or \"24h\"", value)
		}
		c.TimeFormat = value
	case "prayers":
		// Validate each prayer name.
		names := strings.Split(value, ",")
		for _, n := range names {
			n = strings.TrimSpace(n)
			if !isValidPrayerName(n) {
				return fmt.Errorf("invalid prayer name %q in prayers list", n)
			}
		}
		c.Prayers = value
	case "cache_dir":
		c.CacheDir = value
	case "database":
		c.Database = value
	case "ramadan_calendar":
		c.RamadanCalendar = value
	default:
		return fmt.Errorf("unknown config key %q; valid keys: %s", key, strings.Join(ValidKeys, ", "))
	}

	return nil
}

// Get returns the string value of a config key.
func (c *Config) Get(key string) (string, error) {
	switch key {
	case "city":
		return c.City, nil
	case "country":
		return c.Country, nil
	case "latitude":
		if c.Latitude == 0 {
			return "", nil
		}
		return strconv.FormatFloat(c.Latitude, 'f', -1, 64), nil
	case "longitude":
		if c.Longitude == 0 {
			return "", nil
		}
		return strconv.FormatFloat(c.Longitude, 'f', -1, 64), nil
	case "timezone":
		return c.Timezone, nil
	case "method":
		return c.Method, nil
	case "school":
		return c.School, nil
	case "high_latitude":
		return c.HighLatitude, nil
	case "time_format":
		return c.TimeFormat, nil
	case "prayers":
		return c.Prayers, nil
	case "cache_dir":
		return c.CacheDir, nil
	case "database":
		return c.Database, nil
	case "ramadan_calendar":
		return c.RamadanCalendar, nil
	default:
		return "", fmt.Errorf("unknown config key %q", key)
	}
}

func isValidPrayerName(name string) bool {
	for _, n := range prayer.DefaultPrayerNames {
		if n == name {
			return true
		}
	}
	return false
}

// HasCoordinates reports whether both latitude and longitude are set.
func (c *Config) HasCoordinates() bool {
	return c.Latitude != 0 || c.Longitude != 0
}

// Coordinate returns the configured coordinates.
func (c *Config) Coordinate() geo.Coordinate {
	return geo.Coordinate{Latitude: c.Latitude, Longitude: c.Longitude}
}

// MethodOrDefault returns the configured method, falling back to def when
// unset or unrecognised.
func (c *Config) MethodOrDefault(def prayer.Method) prayer.Method {
	if c.Method == "" {
		return def
	}
	m, err := prayer.ParseMethod(c.Method)
	if err != nil {
		return def
	}
	return m
}

// SchoolOrDefault returns the configured school, falling back to def.
func (c *Config) SchoolOrDefault(def prayer.School) prayer.School {
	if c.School == "" {
		return def
	}
	s, err := prayer.ParseSchool(c.School)
	if err != nil {
		return def
	}
	return s
}

// HighLatitudeOrDefault returns the configured rule, falling back to def.
func (c *Config) HighLatitudeOrDefault(def prayer.HighLatitudeRule) prayer.HighLatitudeRule {
	if c.HighLatitude == "" {
		return def
	}
	r, err := prayer.ParseHighLatitudeRule(c.HighLatitude)
	if err != nil {
		return def
	}
	return r
}

// PrayerNames returns the configured prayer list, or nil when unset.
func (c *Config) PrayerNames() []string {
	if c.Prayers == "" {
		return nil
	}
	var names []string
	for _, n := range strings.Split(c.Prayers, ",") {
		if n = strings.TrimSpace(n); n != "" {
			names = append(names, n)
		}
	}
	return names
}

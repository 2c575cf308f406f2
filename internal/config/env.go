package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/halalcities/halalcities/internal/prayer"
)

// ServerConfig holds the environment-based settings of the serve and
// broadcast commands.
type ServerConfig struct {
	ServerAddress   string
	DatabaseURL     string // Postgres DSN; takes precedence over SQLitePath
	SQLitePath      string
	RedisAddress    string
	RedisUsername   string
	RedisPassword   string
	RedisDB         int
	MQTTBroker      string
	MQTTClientID    string
	LogLevel        string
	LogFormat       string
	RamadanCalendar string
	DefaultMethod   prayer.Method
	BroadcastEvery  time.Duration
}

// LoadServer reads configuration from environment variables. Values in
// envFile (if it exists) fill variables that are not already set.
func LoadServer(envFile string) (*ServerConfig, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
		}
	}

	cfg := &ServerConfig{
		ServerAddress:   getenv("SERVER_ADDRESS", ":8080"),
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		SQLitePath:      os.Getenv("SQLITE_PATH"),
		RedisAddress:    os.Getenv("REDIS_ADDRESS"),
		RedisUsername:   os.Getenv("REDIS_USERNAME"),
		RedisPassword:   os.Getenv("REDIS_PASSWORD"),
		MQTTBroker:      os.Getenv("MQTT_BROKER"),
		MQTTClientID:    getenv("MQTT_CLIENT_ID", "halalcities"),
		LogLevel:        getenv("LOG_LEVEL", "info"),
		LogFormat:       getenv("LOG_FORMAT", "json"),
		RamadanCalendar: os.Getenv("RAMADAN_CALENDAR"),
		DefaultMethod:   prayer.DefaultMethod,
		BroadcastEvery:  time.Minute,
	}

	if v := os.Getenv("REDIS_DB"); v != "" {
		db, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid REDIS_DB %q: must be an integer", v)
		}
		cfg.RedisDB = db
	}

	if v := os.Getenv("DEFAULT_METHOD"); v != "" {
		m, err := prayer.ParseMethod(v)
		if err != nil {
			return nil, fmt.Errorf("invalid DEFAULT_METHOD: %w", err)
		}
		cfg.DefaultMethod = m
	}

	if v := os.Getenv("BROADCAST_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return nil, fmt.Errorf("invalid BROADCAST_INTERVAL %q: must be a positive duration", v)
		}
		cfg.BroadcastEvery = d
	}

	if cfg.DatabaseURL == "" && cfg.SQLitePath == "" {
		cfg.SQLitePath = "halalcities.db"
	}

	return cfg, nil
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/halalcities/halalcities/internal/cache"
	"github.com/halalcities/halalcities/internal/config"
	"github.com/halalcities/halalcities/internal/directory"
	"github.com/halalcities/halalcities/internal/display"
	"github.com/halalcities/halalcities/internal/logging"
	"github.com/halalcities/halalcities/internal/ramadan"
	"github.com/halalcities/halalcities/internal/server"
)

var flagEnvFile string

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Serve prayer times, Qibla and Ramadan schedules over HTTP.

Configuration comes from the environment (or --env-file):
  SERVER_ADDRESS    listen address (default :8080)
  DATABASE_URL      Postgres city directory; otherwise SQLITE_PATH is used
  SQLITE_PATH       SQLite city directory (default halalcities.db)
  REDIS_ADDRESS     optional Redis cache for Ramadan schedules
  DEFAULT_METHOD    method used when a request names none
  RAMADAN_CALENDAR  YAML file replacing the built-in Ramadan dates
  LOG_LEVEL, LOG_FORMAT`,
		Args: cobra.NoArgs,
		RunE: runServe,
	}
	cmd.Flags().StringVar(&flagEnvFile, "env-file", ".env", "File with environment variables; missing files are ignored")
	return cmd
}

// backend holds the shared dependencies of the serve and broadcast commands.
type backend struct {
	cfg      *config.ServerConfig
	cities   directory.Store
	cache    *cache.Cache
	calendar *ramadan.Calendar
}

// openBackend loads the server environment, switches logging to its
// settings and opens the city directory and the optional Redis cache.
func openBackend(cmd *cobra.Command) (*backend, error) {
	cfg, err := config.LoadServer(flagEnvFile)
	if err != nil {
		return nil, err
	}

	level := cfg.LogLevel
	if flagWasSet(cmd.Flags(), cmd.Root().PersistentFlags(), "log-level") {
		level = FlagLogLevel
	}
	if err := logging.Setup(logging.Options{
		Level:   level,
		Format:  cfg.LogFormat,
		Output:  cmd.ErrOrStderr(),
		NoColor: !display.Enabled(),
	}); err != nil {
		return nil, err
	}

	calendar, err := ramadan.LoadCalendar(cfg.RamadanCalendar)
	if err != nil {
		return nil, err
	}

	ctx := cmd.Context()
	dsn := cfg.DatabaseURL
	if dsn == "" {
		dsn = cfg.SQLitePath
	}
	cities, err := directory.Open(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open city directory: %w", err)
	}
	if err := ensureSeeded(ctx, cities); err != nil {
		cities.Close()
		return nil, err
	}

	b := &backend{cfg: cfg, cities: cities, calendar: calendar}
	if cfg.RedisAddress != "" {
		b.cache = openRedisCache(ctx, cfg)
	}
	return b, nil
}

// openRedisCache returns nil when Redis does not answer; the server then
// runs uncached.
func openRedisCache(ctx context.Context, cfg *config.ServerConfig) *cache.Cache {
	store := cache.NewRedisStore(cache.NewRedisClient(cache.RedisConfig{
		Address:  cfg.RedisAddress,
		Username: cfg.RedisUsername,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}), "halalcities:")

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := store.Ping(pingCtx); err != nil {
		log.Warn().Err(err).Str("addr", cfg.RedisAddress).Msg("redis unavailable, running without cache")
		store.Close()
		return nil
	}
	log.Info().Str("addr", cfg.RedisAddress).Msg("redis cache enabled")
	return cache.New(store)
}

func (b *backend) Close() {
	closeCache(b.cache)
	if err := b.cities.Close(); err != nil {
		log.Warn().Err(err).Msg("failed to close city directory")
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	b, err := openBackend(cmd)
	if err != nil {
		return err
	}
	defer b.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	router := server.NewRouter(server.Deps{
		Cities:        b.cities,
		Cache:         b.cache,
		Calendar:      b.calendar,
		DefaultMethod: b.cfg.DefaultMethod,
		Now:           nowFunc,
	})
	return server.Serve(ctx, b.cfg.ServerAddress, router)
}

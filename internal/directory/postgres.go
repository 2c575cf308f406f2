package directory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog/log"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS cities (
	slug TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	country TEXT NOT NULL,
	latitude DOUBLE PRECISION NOT NULL,
	longitude DOUBLE PRECISION NOT NULL,
	timezone TEXT NOT NULL,
	method TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS cities_country ON cities (lower(country));
`

// PostgresOptions tunes the initial connection.
type PostgresOptions struct {
	MaxRetries    int           // default 10
	RetryInterval time.Duration // default 2s
}

// PostgresStore keeps cities in a shared Postgres database.
type PostgresStore struct {
	db *sqlx.DB
}

// OpenPostgres connects to databaseURL, retrying while the server comes up,
// and creates the cities table if needed.
func OpenPostgres(ctx context.Context, databaseURL string, opts PostgresOptions) (*PostgresStore, error) {
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = 10
	}
	if opts.RetryInterval <= 0 {
		opts.RetryInterval = 2 * time.Second
	}

	var (
		db  *sqlx.DB
		err error
	)
	for attempt := 1; attempt <= opts.MaxRetries; attempt++ {
		db, err = sqlx.ConnectContext(ctx, "postgres", databaseURL)
		if err == nil {
			log.Info().Msg("connected to database")
			break
		}

		log.Error().Err(err).
			Int("attempt", attempt).
			Msgf("failed to connect to database, retrying in %s", opts.RetryInterval)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(opts.RetryInterval):
		}
	}
	if err != nil {
		return nil, fmt.Errorf("could not connect to database after %d attempts: %w", opts.MaxRetries, err)
	}

	if _, err := db.ExecContext(ctx, postgresSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &PostgresStore{db: db}, nil
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}

func (s *PostgresStore) ListCities(ctx context.Context, country string) ([]City, error) {
	var cities []City
	var err error
	if country == "" {
		err = s.db.SelectContext(ctx, &cities, `
			SELECT `+cityColumns+`
			FROM cities
			ORDER BY country, name`)
	} else {
		err = s.db.SelectContext(ctx, &cities, `
			SELECT `+cityColumns+`
			FROM cities
			WHERE lower(country) = lower($1)
			ORDER BY name`, country)
	}
	return cities, err
}

func (s *PostgresStore) GetCity(ctx context.Context, slug string) (City, error) {
	var c City
	err := s.db.GetContext(ctx, &c, `
		SELECT `+cityColumns+`
		FROM cities
		WHERE slug = $1`, Slugify(slug))
	return c, notFound(err, slug)
}

func (s *PostgresStore) FindCity(ctx context.Context, name, country string) (City, error) {
	var c City
	err := s.db.GetContext(ctx, &c, `
		SELECT `+cityColumns+`
		FROM cities
		WHERE (lower(name) = lower($1) OR slug = $2)
		  AND ($3 = '' OR lower(country) = lower($3))
		ORDER BY name
		LIMIT 1`, name, Slugify(name), country)
	return c, notFound(err, name)
}

func (s *PostgresStore) UpsertCity(ctx context.Context, c City) error {
	if err := c.Validate(); err != nil {
		return err
	}
	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO cities (`+cityColumns+`)
		VALUES (:slug, :name, :country, :latitude, :longitude, :timezone, :method)
		ON CONFLICT (slug) DO UPDATE SET
			name = EXCLUDED.name,
			country = EXCLUDED.country,
			latitude = EXCLUDED.latitude,
			longitude = EXCLUDED.longitude,
			timezone = EXCLUDED.timezone,
			method = EXCLUDED.method`, c)
	if err != nil {
		log.Error().Err(err).Str("slug", c.Slug).Msg("failed to upsert city")
		return fmt.Errorf("upsert city %s: %w", c.Slug, err)
	}
	return nil
}

func notFound(err error, query string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %s", ErrCityNotFound, query)
	}
	return err
}

package directory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS cities (
	slug TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	country TEXT NOT NULL,
	latitude REAL NOT NULL,
	longitude REAL NOT NULL,
	timezone TEXT NOT NULL,
	method TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS cities_country ON cities (country COLLATE NOCASE);
`

const cityColumns = "slug, name, country, latitude, longitude, timezone, method"

// SQLiteStore keeps cities in a local SQLite file.
type SQLiteStore struct {
	conn *sql.DB
}

// OpenSQLite opens or creates the database at path and applies the schema.
func OpenSQLite(path string) (*SQLiteStore, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// One connection keeps :memory: databases shared and writes serialised.
	conn.SetMaxOpenConns(1)

	if _, err := conn.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("set wal mode: %w", err)
	}
	if _, err := conn.Exec(sqliteSchema); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &SQLiteStore{conn: conn}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.conn.Close()
}

func (s *SQLiteStore) ListCities(ctx context.Context, country string) ([]City, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if country == "" {
		rows, err = s.conn.QueryContext(ctx,
			"SELECT "+cityColumns+" FROM cities ORDER BY country, name")
	} else {
		rows, err = s.conn.QueryContext(ctx,
			"SELECT "+cityColumns+" FROM cities WHERE country = ? COLLATE NOCASE ORDER BY name", country)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cities []City
	for rows.Next() {
		c, err := scanCity(rows)
		if err != nil {
			return nil, err
		}
		cities = append(cities, c)
	}
	return cities, rows.Err()
}

func (s *SQLiteStore) GetCity(ctx context.Context, slug string) (City, error) {
	row := s.conn.QueryRowContext(ctx,
		"SELECT "+cityColumns+" FROM cities WHERE slug = ?", Slugify(slug))
	return oneCity(row, slug)
}

func (s *SQLiteStore) FindCity(ctx context.Context, name, country string) (City, error) {
	row := s.conn.QueryRowContext(ctx, `
		SELECT `+cityColumns+` FROM cities
		WHERE (name = ? COLLATE NOCASE OR slug = ?)
		  AND (? = '' OR country = ? COLLATE NOCASE)
		ORDER BY name
		LIMIT 1`,
		name, Slugify(name), country, country)
	return oneCity(row, name)
}

func (s *SQLiteStore) UpsertCity(ctx context.Context, c City) error {
	if err := c.Validate(); err != nil {
		return err
	}
	_, err := s.conn.ExecContext(ctx, `
		INSERT INTO cities (`+cityColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (slug) DO UPDATE SET
			name = excluded.name,
			country = excluded.country,
			latitude = excluded.latitude,
			longitude = excluded.longitude,
			timezone = excluded.timezone,
			method = excluded.method`,
		c.Slug, c.Name, c.Country, c.Latitude, c.Longitude, c.Timezone, c.Method)
	if err != nil {
		return fmt.Errorf("upsert city %s: %w", c.Slug, err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanCity(row scanner) (City, error) {
	var c City
	err := row.Scan(&c.Slug, &c.Name, &c.Country, &c.Latitude, &c.Longitude, &c.Timezone, &c.Method)
	return c, err
}

func oneCity(row *sql.Row, query string) (City, error) {
	c, err := scanCity(row)
	if errors.Is(err, sql.ErrNoRows) {
		return City{}, fmt.Errorf("%w: %s", ErrCityNotFound, query)
	}
	return c, err
}

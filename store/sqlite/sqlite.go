/*
Package sqlite provides the SQLite-backed store for countries, settings,
and trips.

PURPOSE:
  Persists the three kinds of data the engine works with:
  - countries:  the statutory country table with rate histories
  - settings:   the single active calculator settings snapshot
  - trips:      traveler trips with stages, expenses, and computed days

  Rate histories and trip bodies are stored as JSON documents (the
  factory package's JSON forms); the relational columns carry only what
  queries filter on. The same pattern applies unchanged to PostgreSQL.

INTERFACES IMPLEMENTED:
  rates.CountryLookup: Country resolution for the rate resolver
  api.Store:           Trip/country/settings persistence for the HTTP edge

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) so readers don't block
  the single writer.

USAGE:
  store, err := sqlite.New("./data/travel.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

SEE ALSO:
  - factory: JSON forms used for the document columns
  - store/memory: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/warp/travel-engine/calc"
	"github.com/warp/travel-engine/factory"
	"github.com/warp/travel-engine/rates"
	"github.com/warp/travel-engine/trip"
)

// ErrNoSettings is returned when no settings snapshot has been saved yet.
var ErrNoSettings = errors.New("no settings snapshot stored")

// Store implements country, settings, and trip persistence on SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a store backed by the database at the given path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS countries (
		code TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		redirect_to TEXT,
		rates_json TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS settings (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		settings_json TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS trips (
		id TEXT PRIMARY KEY,
		traveler_id TEXT NOT NULL,
		begin_date TEXT NOT NULL,
		end_date TEXT NOT NULL,
		trip_json TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_trips_traveler ON trips(traveler_id);
	CREATE INDEX IF NOT EXISTS idx_trips_begin ON trips(begin_date);
	`
	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// COUNTRIES
// =============================================================================

// CountryByCode implements rates.CountryLookup.
func (s *Store) CountryByCode(ctx context.Context, code string) (*rates.Country, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var name, ratesJSON string
	var redirect sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT name, redirect_to, rates_json FROM countries WHERE code = ?`, code,
	).Scan(&name, &redirect, &ratesJSON)
	if err == sql.ErrNoRows {
		return nil, &rates.CountryNotFoundError{Code: code}
	}
	if err != nil {
		return nil, fmt.Errorf("load country %s: %w", code, err)
	}

	var doc factory.CountryJSON
	if err := json.Unmarshal([]byte(ratesJSON), &doc); err != nil {
		return nil, fmt.Errorf("decode country %s: %w", code, err)
	}
	doc.Code = code
	doc.Name = name
	doc.RatesRedirectTo = redirect.String

	c, err := factory.CountryFromJSON(doc)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// UpsertCountry writes or replaces a country table entry.
func (s *Store) UpsertCountry(ctx context.Context, c rates.Country) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := factory.CountryToJSON(c)
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode country %s: %w", c.Code, err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO countries (code, name, redirect_to, rates_json, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(code) DO UPDATE SET
			name = excluded.name,
			redirect_to = excluded.redirect_to,
			rates_json = excluded.rates_json,
			updated_at = excluded.updated_at`,
		c.Code, c.Name, nullable(c.RatesRedirectTo), string(body), now())
	if err != nil {
		return fmt.Errorf("upsert country %s: %w", c.Code, err)
	}
	return nil
}

// ListCountries returns all country entries ordered by code.
func (s *Store) ListCountries(ctx context.Context) ([]rates.Country, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT code, name, redirect_to, rates_json FROM countries ORDER BY code`)
	if err != nil {
		return nil, fmt.Errorf("list countries: %w", err)
	}
	defer rows.Close()

	var list []rates.Country
	for rows.Next() {
		var code, name, ratesJSON string
		var redirect sql.NullString
		if err := rows.Scan(&code, &name, &redirect, &ratesJSON); err != nil {
			return nil, err
		}
		var doc factory.CountryJSON
		if err := json.Unmarshal([]byte(ratesJSON), &doc); err != nil {
			return nil, fmt.Errorf("decode country %s: %w", code, err)
		}
		doc.Code = code
		doc.Name = name
		doc.RatesRedirectTo = redirect.String
		c, err := factory.CountryFromJSON(doc)
		if err != nil {
			return nil, err
		}
		list = append(list, c)
	}
	return list, rows.Err()
}

// =============================================================================
// SETTINGS
// =============================================================================

// SaveSettings replaces the single active settings snapshot.
func (s *Store) SaveSettings(ctx context.Context, settings calc.Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	body, err := json.Marshal(factory.SettingsToJSON(settings))
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO settings (id, settings_json, updated_at) VALUES (1, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			settings_json = excluded.settings_json,
			updated_at = excluded.updated_at`,
		string(body), now())
	if err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}

// LoadSettings returns the active settings snapshot, or ErrNoSettings
// when none has been saved.
func (s *Store) LoadSettings(ctx context.Context) (calc.Settings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var body string
	err := s.db.QueryRowContext(ctx,
		`SELECT settings_json FROM settings WHERE id = 1`).Scan(&body)
	if err == sql.ErrNoRows {
		return calc.Settings{}, ErrNoSettings
	}
	if err != nil {
		return calc.Settings{}, fmt.Errorf("load settings: %w", err)
	}
	return factory.ParseSettings([]byte(body))
}

// =============================================================================
// TRIPS
// =============================================================================

// SaveTrip writes or replaces a trip including its computed day list.
func (s *Store) SaveTrip(ctx context.Context, t *trip.Trip) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	body, err := json.Marshal(factory.TripToJSON(t))
	if err != nil {
		return fmt.Errorf("encode trip %s: %w", t.ID, err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO trips (id, traveler_id, begin_date, end_date, trip_json, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			traveler_id = excluded.traveler_id,
			begin_date = excluded.begin_date,
			end_date = excluded.end_date,
			trip_json = excluded.trip_json,
			updated_at = excluded.updated_at`,
		t.ID, t.TravelerID,
		t.Begin.Format("2006-01-02"), t.End.Format("2006-01-02"),
		string(body), now())
	if err != nil {
		return fmt.Errorf("save trip %s: %w", t.ID, err)
	}
	return nil
}

// TripByID loads one trip; returns (nil, nil) when it does not exist.
func (s *Store) TripByID(ctx context.Context, id string) (*trip.Trip, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var body string
	err := s.db.QueryRowContext(ctx,
		`SELECT trip_json FROM trips WHERE id = ?`, id).Scan(&body)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load trip %s: %w", id, err)
	}
	return decodeTrip(body)
}

// ListTrips returns all trips ordered by begin date.
func (s *Store) ListTrips(ctx context.Context) ([]*trip.Trip, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT trip_json FROM trips ORDER BY begin_date, id`)
	if err != nil {
		return nil, fmt.Errorf("list trips: %w", err)
	}
	defer rows.Close()

	var list []*trip.Trip
	for rows.Next() {
		var body string
		if err := rows.Scan(&body); err != nil {
			return nil, err
		}
		t, err := decodeTrip(body)
		if err != nil {
			return nil, err
		}
		list = append(list, t)
	}
	return list, rows.Err()
}

// DeleteTrip removes a trip.
func (s *Store) DeleteTrip(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `DELETE FROM trips WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete trip %s: %w", id, err)
	}
	return nil
}

func decodeTrip(body string) (*trip.Trip, error) {
	var doc factory.TripJSON
	if err := json.Unmarshal([]byte(body), &doc); err != nil {
		return nil, fmt.Errorf("decode trip: %w", err)
	}
	return factory.TripFromJSON(doc)
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339)
}

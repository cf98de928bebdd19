// Package memory provides in-memory store implementations for testing
// and development.
package memory

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/warp/travel-engine/calc"
	"github.com/warp/travel-engine/factory"
	"github.com/warp/travel-engine/rates"
	"github.com/warp/travel-engine/trip"
)

// ErrNoSettings is returned when no settings snapshot has been saved yet.
var ErrNoSettings = errors.New("no settings snapshot stored")

// =============================================================================
// MEMORY STORE - Countries and trips, no persistence
// =============================================================================

// Store keeps countries, trips, and the settings snapshot in maps. It
// satisfies rates.CountryLookup and the api.Store interface.
type Store struct {
	mu        sync.RWMutex
	countries map[string]rates.Country
	trips     map[string]*trip.Trip
	settings  *calc.Settings
}

func New() *Store {
	return &Store{
		countries: make(map[string]rates.Country),
		trips:     make(map[string]*trip.Trip),
	}
}

// =============================================================================
// COUNTRIES
// =============================================================================

// CountryByCode implements rates.CountryLookup.
func (s *Store) CountryByCode(_ context.Context, code string) (*rates.Country, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.countries[code]
	if !ok {
		return nil, &rates.CountryNotFoundError{Code: code}
	}
	return &c, nil
}

func (s *Store) UpsertCountry(_ context.Context, c rates.Country) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.countries[c.Code] = c
	return nil
}

func (s *Store) ListCountries(_ context.Context) ([]rates.Country, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	list := make([]rates.Country, 0, len(s.countries))
	for _, c := range s.countries {
		list = append(list, c)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Code < list[j].Code })
	return list, nil
}

// Seed loads a batch of countries, replacing existing codes.
func (s *Store) Seed(countries ...rates.Country) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range countries {
		s.countries[c.Code] = c
	}
}

// =============================================================================
// SETTINGS
// =============================================================================

func (s *Store) SaveSettings(_ context.Context, settings calc.Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings = &settings
	return nil
}

func (s *Store) LoadSettings(_ context.Context) (calc.Settings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.settings == nil {
		return calc.Settings{}, ErrNoSettings
	}
	return *s.settings, nil
}

// =============================================================================
// TRIPS
// =============================================================================

// SaveTrip stores a snapshot of the trip. Stored state is isolated from
// the caller's pointer: mutating the trip after saving, or mutating a
// trip returned by a load, never changes what the store holds. The
// sqlite store has the same semantics via its document column.
func (s *Store) SaveTrip(_ context.Context, t *trip.Trip) error {
	snapshot, err := cloneTrip(t)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.trips[t.ID] = snapshot
	return nil
}

func (s *Store) TripByID(_ context.Context, id string) (*trip.Trip, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.trips[id]
	if !ok {
		return nil, nil
	}
	return cloneTrip(t)
}

func (s *Store) ListTrips(_ context.Context) ([]*trip.Trip, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	list := make([]*trip.Trip, 0, len(s.trips))
	for _, t := range s.trips {
		clone, err := cloneTrip(t)
		if err != nil {
			return nil, err
		}
		list = append(list, clone)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list, nil
}

func (s *Store) DeleteTrip(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.trips, id)
	return nil
}

// cloneTrip deep-copies a trip through its JSON form.
func cloneTrip(t *trip.Trip) (*trip.Trip, error) {
	return factory.TripFromJSON(factory.TripToJSON(t))
}

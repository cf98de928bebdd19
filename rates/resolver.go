package rates

import (
	"context"
	"sync"
	"time"

	"github.com/warp/travel-engine/trip"
)

// maxRedirectDepth bounds RatesRedirectTo chains. Real data has chains of
// length one (territory -> parent country); anything deeper than this is
// a cycle.
const maxRedirectDepth = 8

// =============================================================================
// COUNTRY LOOKUP - External collaborator owning country storage
// =============================================================================

// CountryLookup supplies country table entries. The resolver never owns
// country storage; implementations may be backed by a database.
type CountryLookup interface {
	CountryByCode(ctx context.Context, code string) (*Country, error)
}

// =============================================================================
// RESOLVER
// =============================================================================

// Resolver selects the applicable per-diem rate entry for a country, a
// date, and an optional locality. Safe for concurrent use; the fallback
// country may be swapped at runtime when settings change.
type Resolver struct {
	countries CountryLookup

	mu       sync.RWMutex
	fallback string
}

func NewResolver(countries CountryLookup, fallbackCountry string) *Resolver {
	return &Resolver{countries: countries, fallback: fallbackCountry}
}

// SetFallbackCountry swaps the country used when a rate table is empty.
// Called when the settings snapshot is updated.
func (r *Resolver) SetFallbackCountry(code string) {
	r.mu.Lock()
	r.fallback = code
	r.mu.Unlock()
}

// FallbackCountry returns the currently configured fallback country code.
func (r *Resolver) FallbackCountry() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.fallback
}

// Resolve returns the rate entry applicable in the given country on the
// given date. A non-empty locality selects a locality override when the
// chosen entry carries one; redirects and fallbacks drop the locality.
func (r *Resolver) Resolve(ctx context.Context, country string, date time.Time, locality string) (Rate, error) {
	return r.resolve(ctx, country, date, locality, 0)
}

func (r *Resolver) resolve(ctx context.Context, code string, date time.Time, locality string, depth int) (Rate, error) {
	if depth > maxRedirectDepth {
		return Rate{}, ErrRedirectLoop
	}

	c, err := r.countries.CountryByCode(ctx, code)
	if err != nil {
		return Rate{}, err
	}
	if c == nil {
		return Rate{}, &CountryNotFoundError{Code: code}
	}

	if c.RatesRedirectTo != "" {
		return r.resolve(ctx, c.RatesRedirectTo, date, "", depth+1)
	}
	if len(c.Rates) == 0 {
		return r.resolve(ctx, r.FallbackCountry(), date, "", depth+1)
	}

	// Latest entry with ValidFrom <= date. Rates are ordered ascending,
	// so walk from the end.
	day := trip.DayOf(date)
	for i := len(c.Rates) - 1; i >= 0; i-- {
		if !trip.DayOf(c.Rates[i].ValidFrom).After(day) {
			return c.Rates[i].RateFor(locality), nil
		}
	}
	return Rate{}, &NoApplicableRateError{Country: c.Code, Date: day}
}

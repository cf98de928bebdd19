/*
Package rates resolves statutory per-diem rate tables.

PURPOSE:
  Given a country, a calendar date, and an optional locality, return the
  applicable per-diem amounts: the partial-day catering rate, the full-day
  catering rate, and the overnight rate.

RESOLUTION ORDER:
  1. If the country redirects (RatesRedirectTo), resolve against the
     target country for the same date. The locality is NOT propagated.
  2. If the country has no rate table, resolve against the configured
     fallback country.
  3. Select the table entry with the latest ValidFrom <= date. If even the
     earliest entry is in the future, resolution fails.
  4. If a locality was given and the selected entry carries a matching
     locality override, the override's amounts win.

REDIRECT CHAINS:
  The data model does not prove redirect chains acyclic, so resolution
  enforces a hard depth bound and fails with ErrRedirectLoop instead of
  recursing forever.

SEE ALSO:
  - resolver.go: The Resolver and its CountryLookup dependency
  - errors.go: Sentinel and structured resolution errors
*/
package rates

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// COUNTRY AND RATE TABLES
// =============================================================================

// Country is one entry of the statutory country table.
type Country struct {
	Code string // ISO-like country code, e.g. "DE", "US"
	Name string

	// RatesRedirectTo names another country whose rate table applies
	// instead. When set, Rates is ignored entirely.
	RatesRedirectTo string

	// Rates is the dated rate history, ordered by ValidFrom ascending.
	// ValidFrom values are unique per country by construction.
	Rates []RateSet
}

// RateSet is one dated entry of a country's rate history.
type RateSet struct {
	ValidFrom       time.Time
	CateringPartial decimal.Decimal // partial-day catering lump sum
	CateringFull    decimal.Decimal // full-day catering lump sum
	Overnight       decimal.Decimal // overnight-stay lump sum

	// Localities are city-level overrides of the three amounts.
	Localities []LocalityRate
}

// LocalityRate overrides the country-level amounts for one locality.
type LocalityRate struct {
	Locality        string
	CateringPartial decimal.Decimal
	CateringFull    decimal.Decimal
	Overnight       decimal.Decimal
}

// Rate is a resolved amount triple, either country-level or a locality
// override.
type Rate struct {
	CateringPartial decimal.Decimal
	CateringFull    decimal.Decimal
	Overnight       decimal.Decimal
}

// RateFor returns the entry's amounts for the given locality, falling
// back to the country-level amounts when no override matches.
func (rs RateSet) RateFor(locality string) Rate {
	if locality != "" {
		for _, l := range rs.Localities {
			if l.Locality == locality {
				return Rate{
					CateringPartial: l.CateringPartial,
					CateringFull:    l.CateringFull,
					Overnight:       l.Overnight,
				}
			}
		}
	}
	return Rate{
		CateringPartial: rs.CateringPartial,
		CateringFull:    rs.CateringFull,
		Overnight:       rs.Overnight,
	}
}

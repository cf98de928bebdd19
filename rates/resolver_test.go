package rates_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/travel-engine/rates"
	"github.com/warp/travel-engine/store/memory"
)

// =============================================================================
// TEST INFRASTRUCTURE
// =============================================================================

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func date(y int, m time.Month, day int) time.Time {
	return time.Date(y, m, day, 0, 0, 0, 0, time.UTC)
}

func newResolver(t *testing.T, countries ...rates.Country) *rates.Resolver {
	t.Helper()
	store := memory.New()
	store.Seed(countries...)
	return rates.NewResolver(store, "DE")
}

func germany() rates.Country {
	return rates.Country{
		Code: "DE", Name: "Germany",
		Rates: []rates.RateSet{{
			ValidFrom:       date(2024, time.January, 1),
			CateringPartial: d("14"), CateringFull: d("28"), Overnight: d("20"),
		}},
	}
}

func unitedStates() rates.Country {
	return rates.Country{
		Code: "US", Name: "United States",
		Rates: []rates.RateSet{
			{
				ValidFrom:       date(2024, time.January, 1),
				CateringPartial: d("40"), CateringFull: d("59"), Overnight: d("150"),
				Localities: []rates.LocalityRate{{
					Locality:        "New York City",
					CateringPartial: d("44"), CateringFull: d("66"), Overnight: d("308"),
				}},
			},
			{
				ValidFrom:       date(2025, time.January, 1),
				CateringPartial: d("42"), CateringFull: d("62"), Overnight: d("160"),
			},
		},
	}
}

// =============================================================================
// HISTORICAL RATE SELECTION
// =============================================================================

func TestResolve_SelectsLatestEntryNotAfterDate(t *testing.T) {
	// GIVEN: A rate history with entries valid from 2024 and 2025
	// WHEN: Resolving for a date in mid-2024
	// THEN: The 2024 entry applies, not the newer 2025 one

	r := newResolver(t, germany(), unitedStates())

	rate, err := r.Resolve(context.Background(), "US", date(2024, time.June, 1), "")
	require.NoError(t, err)
	assert.True(t, rate.CateringFull.Equal(d("59")), "expected the 2024 entry, got %s", rate.CateringFull)

	rate, err = r.Resolve(context.Background(), "US", date(2025, time.June, 1), "")
	require.NoError(t, err)
	assert.True(t, rate.CateringFull.Equal(d("62")), "expected the 2025 entry, got %s", rate.CateringFull)
}

func TestResolve_FailsBeforeEarliestEntry(t *testing.T) {
	r := newResolver(t, germany(), unitedStates())

	_, err := r.Resolve(context.Background(), "US", date(2023, time.January, 1), "")
	require.Error(t, err)
	assert.ErrorIs(t, err, rates.ErrNoApplicableRate)

	var detail *rates.NoApplicableRateError
	require.ErrorAs(t, err, &detail)
	assert.Equal(t, "US", detail.Country)
}

// =============================================================================
// LOCALITY OVERRIDES
// =============================================================================

func TestResolve_LocalityOverrideWins(t *testing.T) {
	r := newResolver(t, germany(), unitedStates())

	rate, err := r.Resolve(context.Background(), "US", date(2024, time.June, 1), "New York City")
	require.NoError(t, err)
	assert.True(t, rate.Overnight.Equal(d("308")))
}

func TestResolve_UnknownLocalityFallsBackToCountryLevel(t *testing.T) {
	r := newResolver(t, germany(), unitedStates())

	rate, err := r.Resolve(context.Background(), "US", date(2024, time.June, 1), "Boston")
	require.NoError(t, err)
	assert.True(t, rate.Overnight.Equal(d("150")))
}

func TestResolve_LocalityNotCarriedIntoSelectedEntryWithoutOverride(t *testing.T) {
	// The 2025 entry has no locality overrides; a locality request for a
	// 2025 date must return country-level amounts.
	r := newResolver(t, germany(), unitedStates())

	rate, err := r.Resolve(context.Background(), "US", date(2025, time.June, 1), "New York City")
	require.NoError(t, err)
	assert.True(t, rate.Overnight.Equal(d("160")))
}

// =============================================================================
// REDIRECTS AND FALLBACK
// =============================================================================

func TestResolve_FollowsRedirect_DroppingLocality(t *testing.T) {
	// GIVEN: Monaco redirecting to France, which has a Paris override
	// WHEN: Resolving Monaco with locality "Paris"
	// THEN: France's country-level amounts apply; the locality is not
	//       propagated across the redirect

	france := rates.Country{
		Code: "FR", Name: "France",
		Rates: []rates.RateSet{{
			ValidFrom:       date(2024, time.January, 1),
			CateringPartial: d("16"), CateringFull: d("24"), Overnight: d("30"),
			Localities: []rates.LocalityRate{{
				Locality:        "Paris",
				CateringPartial: d("22"), CateringFull: d("33"), Overnight: d("60"),
			}},
		}},
	}
	monaco := rates.Country{Code: "MC", Name: "Monaco", RatesRedirectTo: "FR"}

	r := newResolver(t, germany(), france, monaco)

	rate, err := r.Resolve(context.Background(), "MC", date(2024, time.June, 1), "Paris")
	require.NoError(t, err)
	assert.True(t, rate.Overnight.Equal(d("30")), "locality must not survive the redirect")
}

func TestResolve_EmptyRateTableUsesFallbackCountry(t *testing.T) {
	noRates := rates.Country{Code: "XX", Name: "Nowhere"}
	r := newResolver(t, germany(), noRates)

	rate, err := r.Resolve(context.Background(), "XX", date(2024, time.June, 1), "")
	require.NoError(t, err)
	assert.True(t, rate.CateringFull.Equal(d("28")), "expected the German fallback rates")
}

func TestResolve_RedirectCycleFails(t *testing.T) {
	a := rates.Country{Code: "AA", RatesRedirectTo: "BB"}
	b := rates.Country{Code: "BB", RatesRedirectTo: "AA"}
	r := newResolver(t, germany(), a, b)

	_, err := r.Resolve(context.Background(), "AA", date(2024, time.June, 1), "")
	assert.ErrorIs(t, err, rates.ErrRedirectLoop)
}

func TestResolve_UnknownCountry(t *testing.T) {
	r := newResolver(t, germany())

	_, err := r.Resolve(context.Background(), "ZZ", date(2024, time.June, 1), "")
	assert.ErrorIs(t, err, rates.ErrCountryNotFound)
}

func TestSetFallbackCountry_TakesEffect(t *testing.T) {
	france := rates.Country{
		Code: "FR",
		Rates: []rates.RateSet{{
			ValidFrom:       date(2024, time.January, 1),
			CateringPartial: d("16"), CateringFull: d("24"), Overnight: d("30"),
		}},
	}
	noRates := rates.Country{Code: "XX"}
	r := newResolver(t, germany(), france, noRates)

	r.SetFallbackCountry("FR")
	rate, err := r.Resolve(context.Background(), "XX", date(2024, time.June, 1), "")
	require.NoError(t, err)
	assert.True(t, rate.CateringFull.Equal(d("24")))
}

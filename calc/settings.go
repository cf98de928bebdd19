package calc

import (
	"github.com/shopspring/decimal"

	"github.com/warp/travel-engine/trip"
)

// =============================================================================
// SETTINGS - Immutable configuration snapshot for the calculator
// =============================================================================

// LastWorkDefault selects how the last place of work is derived when a
// trip does not set one explicitly.
type LastWorkDefault string

const (
	// LastWorkDestination attributes the tail of the trip to the trip's
	// destination place.
	LastWorkDestination LastWorkDefault = "destination"

	// LastWorkFinalStageEnd attributes the tail of the trip to wherever
	// the final stage ends.
	LastWorkFinalStageEnd LastWorkDefault = "final_stage_end"
)

// Factor is a multiplier applied to a lump sum for international trips,
// with a per-country exception list.
type Factor struct {
	Multiplier decimal.Decimal

	// ExceptionCountries lists country codes the multiplier does NOT
	// apply to (typically the home country).
	ExceptionCountries []string
}

// AppliesTo reports whether the factor changes the amount for a day
// attributed to the given country.
func (f Factor) AppliesTo(country string) bool {
	if f.Multiplier.IsZero() || f.Multiplier.Equal(decimal.NewFromInt(1)) {
		return false
	}
	for _, c := range f.ExceptionCountries {
		if c == country {
			return false
		}
	}
	return true
}

// Settings is the full configuration the calculator depends on. It is
// injected at construction as one immutable snapshot and swapped
// atomically via Calculator.UpdateSettings; nothing in here is consulted
// through globals.
type Settings struct {
	// Currency all computed amounts are denominated in.
	Currency string

	// MileageRates maps a vehicle refund class to its per-km rate.
	MileageRates map[trip.RefundClass]decimal.Decimal

	// Meal-cut fractions of the full-day catering rate, subtracted per
	// meal that was provided to the traveler.
	BreakfastCut decimal.Decimal
	LunchCut     decimal.Decimal
	DinnerCut    decimal.Decimal

	// International-factor multipliers for the two lump-sum kinds.
	CateringFactor  Factor
	OvernightFactor Factor

	// FallbackCountry is used when a country's rate table is empty.
	FallbackCountry string

	// Second-midnight countries for stages spanning more than one
	// midnight: the traveler is deemed to be in these for the second
	// midnight of an air or sea stage.
	AirSecondMidnightCountry string
	SeaSecondMidnightCountry string

	// SpouseRefundEnabled gates lump-sum doubling; the trip must also
	// claim it.
	SpouseRefundEnabled bool

	// LastPlaceOfWorkDefault derives the last place of work for trips
	// that do not set one explicitly.
	LastPlaceOfWorkDefault LastWorkDefault

	// Advisory thresholds; violations warn, never block.
	MinHoursOfTravel     int
	MinProfessionalShare float64

	// MaxTripDays bounds the derived day list as a safety limit against
	// malformed stage data.
	MaxTripDays int
}

// MileageRate returns the per-km rate for a refund class, zero when the
// class is not configured.
func (s Settings) MileageRate(class trip.RefundClass) decimal.Decimal {
	if r, ok := s.MileageRates[class]; ok {
		return r
	}
	return decimal.Zero
}

// MealCut returns the total fraction of the full-day rate to subtract for
// the day's provided meals.
func (s Settings) MealCut(d *trip.Day) decimal.Decimal {
	cut := decimal.Zero
	if !d.Breakfast {
		cut = cut.Add(s.BreakfastCut)
	}
	if !d.Lunch {
		cut = cut.Add(s.LunchCut)
	}
	if !d.Dinner {
		cut = cut.Add(s.DinnerCut)
	}
	return cut
}

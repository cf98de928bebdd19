/*
Package factory converts JSON seed documents into domain configuration.

PURPOSE:
  Reimbursement settings and country rate tables are data, not code:
  administrators maintain them as JSON documents, and this package turns
  those documents into calc.Settings and rates.Country values. It also
  provides the built-in statutory defaults used when no document has been
  loaded yet.

WHY JSON?
  - Non-developers can adjust rates and cut fractions
  - Version control for rate-table history
  - Database storage of the active settings snapshot

SEE ALSO:
  - calc/settings.go: The domain settings type
  - rates/country.go: The domain country type
  - store/sqlite: Persists the JSON forms defined here
*/
package factory

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/warp/travel-engine/calc"
	"github.com/warp/travel-engine/trip"
)

// =============================================================================
// JSON SCHEMA TYPES
// =============================================================================

// SettingsJSON is the JSON representation of the calculator settings.
type SettingsJSON struct {
	Currency string `json:"currency"`

	// Per-km mileage rates by refund class, decimal strings.
	MileageRates map[string]string `json:"mileage_rates"`

	BreakfastCut string `json:"breakfast_cut"`
	LunchCut     string `json:"lunch_cut"`
	DinnerCut    string `json:"dinner_cut"`

	CateringFactor  FactorJSON `json:"catering_factor"`
	OvernightFactor FactorJSON `json:"overnight_factor"`

	FallbackCountry          string `json:"fallback_country"`
	AirSecondMidnightCountry string `json:"air_second_midnight_country"`
	SeaSecondMidnightCountry string `json:"sea_second_midnight_country"`

	SpouseRefundEnabled    bool   `json:"spouse_refund_enabled"`
	LastPlaceOfWorkDefault string `json:"last_place_of_work_default,omitempty"`

	MinHoursOfTravel     int     `json:"min_hours_of_travel"`
	MinProfessionalShare float64 `json:"min_professional_share"`
	MaxTripDays          int     `json:"max_trip_days"`
}

// FactorJSON represents an international-factor multiplier.
type FactorJSON struct {
	Multiplier         string   `json:"multiplier"`
	ExceptionCountries []string `json:"exception_countries,omitempty"`
}

// =============================================================================
// PARSING
// =============================================================================

// ParseSettings converts a settings JSON document into calc.Settings.
func ParseSettings(data []byte) (calc.Settings, error) {
	var js SettingsJSON
	if err := json.Unmarshal(data, &js); err != nil {
		return calc.Settings{}, fmt.Errorf("parse settings: %w", err)
	}
	return SettingsFromJSON(js)
}

// SettingsFromJSON converts the JSON form into the domain form.
func SettingsFromJSON(js SettingsJSON) (calc.Settings, error) {
	s := calc.Settings{
		Currency:                 js.Currency,
		MileageRates:             make(map[trip.RefundClass]decimal.Decimal, len(js.MileageRates)),
		FallbackCountry:          js.FallbackCountry,
		AirSecondMidnightCountry: js.AirSecondMidnightCountry,
		SeaSecondMidnightCountry: js.SeaSecondMidnightCountry,
		SpouseRefundEnabled:      js.SpouseRefundEnabled,
		LastPlaceOfWorkDefault:   calc.LastWorkDefault(js.LastPlaceOfWorkDefault),
		MinHoursOfTravel:         js.MinHoursOfTravel,
		MinProfessionalShare:     js.MinProfessionalShare,
		MaxTripDays:              js.MaxTripDays,
	}

	for class, rate := range js.MileageRates {
		d, err := decimal.NewFromString(rate)
		if err != nil {
			return calc.Settings{}, fmt.Errorf("mileage rate for %q: %w", class, err)
		}
		s.MileageRates[trip.RefundClass(class)] = d
	}

	var err error
	if s.BreakfastCut, err = parseFraction("breakfast_cut", js.BreakfastCut); err != nil {
		return calc.Settings{}, err
	}
	if s.LunchCut, err = parseFraction("lunch_cut", js.LunchCut); err != nil {
		return calc.Settings{}, err
	}
	if s.DinnerCut, err = parseFraction("dinner_cut", js.DinnerCut); err != nil {
		return calc.Settings{}, err
	}
	if s.CateringFactor, err = factorFromJSON("catering_factor", js.CateringFactor); err != nil {
		return calc.Settings{}, err
	}
	if s.OvernightFactor, err = factorFromJSON("overnight_factor", js.OvernightFactor); err != nil {
		return calc.Settings{}, err
	}
	return s, nil
}

// SettingsToJSON converts domain settings back into the JSON form for
// persistence.
func SettingsToJSON(s calc.Settings) SettingsJSON {
	js := SettingsJSON{
		Currency:                 s.Currency,
		MileageRates:             make(map[string]string, len(s.MileageRates)),
		BreakfastCut:             s.BreakfastCut.String(),
		LunchCut:                 s.LunchCut.String(),
		DinnerCut:                s.DinnerCut.String(),
		CateringFactor:           factorToJSON(s.CateringFactor),
		OvernightFactor:          factorToJSON(s.OvernightFactor),
		FallbackCountry:          s.FallbackCountry,
		AirSecondMidnightCountry: s.AirSecondMidnightCountry,
		SeaSecondMidnightCountry: s.SeaSecondMidnightCountry,
		SpouseRefundEnabled:      s.SpouseRefundEnabled,
		LastPlaceOfWorkDefault:   string(s.LastPlaceOfWorkDefault),
		MinHoursOfTravel:         s.MinHoursOfTravel,
		MinProfessionalShare:     s.MinProfessionalShare,
		MaxTripDays:              s.MaxTripDays,
	}
	for class, rate := range s.MileageRates {
		js.MileageRates[string(class)] = rate.String()
	}
	return js
}

func parseFraction(field, value string) (decimal.Decimal, error) {
	if value == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%s: %w", field, err)
	}
	return d, nil
}

func factorFromJSON(field string, js FactorJSON) (calc.Factor, error) {
	f := calc.Factor{ExceptionCountries: js.ExceptionCountries}
	if js.Multiplier == "" {
		f.Multiplier = decimal.NewFromInt(1)
		return f, nil
	}
	d, err := decimal.NewFromString(js.Multiplier)
	if err != nil {
		return calc.Factor{}, fmt.Errorf("%s multiplier: %w", field, err)
	}
	f.Multiplier = d
	return f, nil
}

func factorToJSON(f calc.Factor) FactorJSON {
	return FactorJSON{
		Multiplier:         f.Multiplier.String(),
		ExceptionCountries: f.ExceptionCountries,
	}
}

// =============================================================================
// DEFAULTS
// =============================================================================

// DefaultSettings returns the built-in statutory defaults: the German
// meal-cut fractions (breakfast 20%, lunch and dinner 40% of the full-day
// rate) and the customary mileage classes.
func DefaultSettings() calc.Settings {
	return calc.Settings{
		Currency: "EUR",
		MileageRates: map[trip.RefundClass]decimal.Decimal{
			trip.RefundClassCar:        decimal.RequireFromString("0.30"),
			trip.RefundClassMotorcycle: decimal.RequireFromString("0.20"),
			trip.RefundClassHalfCar:    decimal.RequireFromString("0.15"),
		},
		BreakfastCut:             decimal.RequireFromString("0.2"),
		LunchCut:                 decimal.RequireFromString("0.4"),
		DinnerCut:                decimal.RequireFromString("0.4"),
		CateringFactor:           calc.Factor{Multiplier: decimal.NewFromInt(1)},
		OvernightFactor:          calc.Factor{Multiplier: decimal.NewFromInt(1)},
		FallbackCountry:          "DE",
		AirSecondMidnightCountry: "DE",
		SeaSecondMidnightCountry: "DE",
		LastPlaceOfWorkDefault:   calc.LastWorkDestination,
		MinHoursOfTravel:         8,
		MinProfessionalShare:     0.5,
		MaxTripDays:              92,
	}
}

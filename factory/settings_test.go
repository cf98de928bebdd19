package factory_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/travel-engine/calc"
	"github.com/warp/travel-engine/factory"
	"github.com/warp/travel-engine/trip"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// =============================================================================
// SETTINGS PARSING
// =============================================================================

func TestParseSettings_FullDocument(t *testing.T) {
	doc := []byte(`{
		"currency": "EUR",
		"mileage_rates": {"car": "0.30", "motorcycle": "0.20", "half_car": "0.15"},
		"breakfast_cut": "0.2",
		"lunch_cut": "0.4",
		"dinner_cut": "0.4",
		"catering_factor": {"multiplier": "1.2", "exception_countries": ["DE"]},
		"overnight_factor": {"multiplier": "1"},
		"fallback_country": "DE",
		"air_second_midnight_country": "DE",
		"sea_second_midnight_country": "DE",
		"spouse_refund_enabled": true,
		"last_place_of_work_default": "destination",
		"min_hours_of_travel": 8,
		"min_professional_share": 0.5,
		"max_trip_days": 92
	}`)

	s, err := factory.ParseSettings(doc)
	require.NoError(t, err)

	assert.Equal(t, "EUR", s.Currency)
	assert.Equal(t, "0.3", s.MileageRate(trip.RefundClassCar).String())
	assert.Equal(t, "0.15", s.MileageRate(trip.RefundClassHalfCar).String())
	assert.Equal(t, "0.4", s.DinnerCut.String())
	assert.Equal(t, "1.2", s.CateringFactor.Multiplier.String())
	assert.Equal(t, []string{"DE"}, s.CateringFactor.ExceptionCountries)
	assert.True(t, s.SpouseRefundEnabled)
	assert.Equal(t, calc.LastWorkDestination, s.LastPlaceOfWorkDefault)
	assert.Equal(t, 92, s.MaxTripDays)
}

func TestParseSettings_EmptyMultiplierDefaultsToOne(t *testing.T) {
	// An omitted factor multiplier means "no factor", which is 1.

	s, err := factory.ParseSettings([]byte(`{"currency": "EUR"}`))
	require.NoError(t, err)
	assert.Equal(t, "1", s.CateringFactor.Multiplier.String())
	assert.Equal(t, "1", s.OvernightFactor.Multiplier.String())
}

func TestParseSettings_BadFraction(t *testing.T) {
	_, err := factory.ParseSettings([]byte(`{"currency": "EUR", "lunch_cut": "forty"}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "lunch_cut")
}

func TestParseSettings_BadMileageRate(t *testing.T) {
	_, err := factory.ParseSettings([]byte(`{"mileage_rates": {"car": "cheap"}}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "car")
}

func TestSettings_JSONRoundTrip(t *testing.T) {
	original := factory.DefaultSettings()
	original.SpouseRefundEnabled = true
	original.CateringFactor = calc.Factor{
		Multiplier:         d("1.2"),
		ExceptionCountries: []string{"DE", "AT"},
	}

	restored, err := factory.SettingsFromJSON(factory.SettingsToJSON(original))
	require.NoError(t, err)

	assert.Equal(t, original.Currency, restored.Currency)
	assert.True(t, original.MileageRates[trip.RefundClassCar].Equal(restored.MileageRates[trip.RefundClassCar]))
	assert.True(t, original.BreakfastCut.Equal(restored.BreakfastCut))
	assert.True(t, original.CateringFactor.Multiplier.Equal(restored.CateringFactor.Multiplier))
	assert.Equal(t, original.CateringFactor.ExceptionCountries, restored.CateringFactor.ExceptionCountries)
	assert.Equal(t, original.LastPlaceOfWorkDefault, restored.LastPlaceOfWorkDefault)
	assert.Equal(t, original.SpouseRefundEnabled, restored.SpouseRefundEnabled)
}

// =============================================================================
// DEFAULTS
// =============================================================================

func TestDefaultSettings_StatutoryValues(t *testing.T) {
	s := factory.DefaultSettings()

	assert.Equal(t, "EUR", s.Currency)
	assert.Equal(t, "0.3", s.MileageRate(trip.RefundClassCar).String())
	assert.Equal(t, "0.2", s.MileageRate(trip.RefundClassMotorcycle).String())
	assert.Equal(t, "0.15", s.MileageRate(trip.RefundClassHalfCar).String())
	assert.Equal(t, "0.2", s.BreakfastCut.String())
	assert.Equal(t, "0.4", s.LunchCut.String())
	assert.Equal(t, "0.4", s.DinnerCut.String())
	assert.Equal(t, "DE", s.FallbackCountry)
	assert.False(t, s.CateringFactor.AppliesTo("US"), "default factor is neutral")
	assert.False(t, s.SpouseRefundEnabled)
}

/*
calculator_test.go - Calculator entry-point behavior

ORGANIZATION OF THE calc TEST SUITE:
  calculator_test.go: Shared fixtures, progress, professional share,
                      mileage costs, idempotence, flag preservation
  validator_test.go:  Overlap and continuity conflicts, advisory warnings
  days_test.go:       Border crossings and per-day country attribution
  refunds_test.go:    Catering and overnight lump sums

READING THESE TESTS:
  Each test has a descriptive name, GIVEN/WHEN/THEN comments for the
  scenarios, and assertions with explanatory messages.
*/
package calc_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/travel-engine/calc"
	"github.com/warp/travel-engine/rates"
	"github.com/warp/travel-engine/store/memory"
	"github.com/warp/travel-engine/trip"
)

// =============================================================================
// TEST INFRASTRUCTURE
// =============================================================================

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func at(y int, m time.Month, day, hour, min int) time.Time {
	return time.Date(y, m, day, hour, min, 0, 0, time.UTC)
}

func day(y int, m time.Month, dd int) time.Time {
	return time.Date(y, m, dd, 0, 0, 0, 0, time.UTC)
}

func berlin() trip.Place { return trip.Place{Locality: "Berlin", Country: "DE"} }
func paris() trip.Place  { return trip.Place{Locality: "Paris", Country: "FR"} }
func nyc() trip.Place    { return trip.Place{Locality: "New York City", Country: "US"} }

// testSettings returns settings with the statutory defaults used across
// the suite: mileage 0.30/0.20/0.15, meal cuts 0.2/0.4/0.4, neutral
// factors, no last-place-of-work default.
func testSettings() calc.Settings {
	return calc.Settings{
		Currency: "EUR",
		MileageRates: map[trip.RefundClass]decimal.Decimal{
			trip.RefundClassCar:        d("0.30"),
			trip.RefundClassMotorcycle: d("0.20"),
			trip.RefundClassHalfCar:    d("0.15"),
		},
		BreakfastCut:             d("0.2"),
		LunchCut:                 d("0.4"),
		DinnerCut:                d("0.4"),
		CateringFactor:           calc.Factor{Multiplier: d("1")},
		OvernightFactor:          calc.Factor{Multiplier: d("1")},
		FallbackCountry:          "DE",
		AirSecondMidnightCountry: "AIR",
		SeaSecondMidnightCountry: "SEA",
		MinHoursOfTravel:         8,
		MinProfessionalShare:     0.5,
		MaxTripDays:              92,
	}
}

// seededStore returns a memory store with the rate fixtures the suite
// resolves against.
func seededStore() *memory.Store {
	store := memory.New()
	store.Seed(
		rates.Country{Code: "DE", Name: "Germany", Rates: []rates.RateSet{{
			ValidFrom:       day(2024, time.January, 1),
			CateringPartial: d("14"), CateringFull: d("28"), Overnight: d("20"),
		}}},
		rates.Country{Code: "FR", Name: "France", Rates: []rates.RateSet{{
			ValidFrom:       day(2024, time.January, 1),
			CateringPartial: d("16"), CateringFull: d("24"), Overnight: d("30"),
		}}},
		rates.Country{Code: "US", Name: "United States", Rates: []rates.RateSet{{
			ValidFrom:       day(2024, time.January, 1),
			CateringPartial: d("40"), CateringFull: d("59"), Overnight: d("150"),
			Localities: []rates.LocalityRate{{
				Locality:        "New York City",
				CateringPartial: d("44"), CateringFull: d("66"), Overnight: d("308"),
			}},
		}}},
		rates.Country{Code: "AT", Name: "Austria", Rates: []rates.RateSet{{
			ValidFrom:       day(2024, time.January, 1),
			CateringPartial: d("20"), CateringFull: d("40"), Overnight: d("25"),
		}}},
		rates.Country{Code: "AIR", Name: "Air transit", Rates: []rates.RateSet{{
			ValidFrom:       day(2024, time.January, 1),
			CateringPartial: d("10"), CateringFull: d("20"), Overnight: d("0"),
		}}},
		rates.Country{Code: "SEA", Name: "Sea transit", Rates: []rates.RateSet{{
			ValidFrom:       day(2024, time.January, 1),
			CateringPartial: d("11"), CateringFull: d("22"), Overnight: d("0"),
		}}},
	)
	return store
}

func newCalculator(settings calc.Settings) *calc.Calculator {
	return calc.New(seededStore(), settings)
}

// stage builds a plain ground stage between two places.
func stage(dep, arr time.Time, from, to trip.Place) *trip.Stage {
	return &trip.Stage{
		Departure: dep,
		Arrival:   arr,
		Start:     from,
		End:       to,
		Transport: trip.Transport{Kind: trip.TransportOther},
		Purpose:   trip.PurposeProfessional,
	}
}

func carStage(dep, arr time.Time, from, to trip.Place, km string, class trip.RefundClass) *trip.Stage {
	s := stage(dep, arr, from, to)
	s.Transport = trip.Transport{
		Kind:        trip.TransportOwnCar,
		DistanceKm:  d(km),
		RefundClass: class,
	}
	return s
}

func mustCalculate(t *testing.T, c *calc.Calculator, tr *trip.Trip) {
	t.Helper()
	conflicts, err := c.Calculate(context.Background(), tr)
	require.NoError(t, err)
	require.Empty(t, conflicts, "expected a consistent itinerary")
}

// domesticTrip is a three-day all-French trip: out on June 1, back on
// June 3, approved window matching the stage span.
func domesticTrip() *trip.Trip {
	return &trip.Trip{
		ID:          "trip-fr",
		Begin:       day(2024, time.June, 1),
		End:         day(2024, time.June, 3),
		Destination: paris(),
		Stages: []*trip.Stage{
			stage(at(2024, time.June, 1, 8, 0), at(2024, time.June, 1, 12, 0), paris(), paris()),
			stage(at(2024, time.June, 3, 14, 0), at(2024, time.June, 3, 18, 0), paris(), paris()),
		},
	}
}

// =============================================================================
// PROGRESS
// =============================================================================

func TestCalculate_Progress_NoStages(t *testing.T) {
	c := newCalculator(testSettings())
	tr := &trip.Trip{Begin: day(2024, time.June, 1), End: day(2024, time.June, 3)}

	mustCalculate(t, c, tr)
	assert.Zero(t, tr.Progress)
	assert.Empty(t, tr.Days)
}

func TestCalculate_Progress_FullWindowCovered(t *testing.T) {
	c := newCalculator(testSettings())
	tr := domesticTrip()

	mustCalculate(t, c, tr)
	assert.Equal(t, float64(100), tr.Progress)
}

func TestCalculate_Progress_PartialCoverage(t *testing.T) {
	// GIVEN: A four-day approved window
	// WHEN: The stages only span two days
	// THEN: Progress is 50

	c := newCalculator(testSettings())
	tr := domesticTrip()
	tr.End = day(2024, time.June, 4) // approved span grows to 4 days
	tr.Stages[1].Departure = at(2024, time.June, 2, 14, 0)
	tr.Stages[1].Arrival = at(2024, time.June, 2, 18, 0)

	mustCalculate(t, c, tr)
	assert.Equal(t, float64(50), tr.Progress)
}

func TestCalculate_Progress_ClampedAt100(t *testing.T) {
	c := newCalculator(testSettings())
	tr := domesticTrip()
	tr.End = day(2024, time.June, 2) // stages overrun the approved window

	mustCalculate(t, c, tr)
	assert.Equal(t, float64(100), tr.Progress)
}

// =============================================================================
// PROFESSIONAL SHARE
// =============================================================================

func TestCalculate_ProfessionalShare_AllProfessional(t *testing.T) {
	c := newCalculator(testSettings())
	tr := domesticTrip()

	mustCalculate(t, c, tr)
	require.NotNil(t, tr.ProfessionalShare)
	assert.Equal(t, float64(1), *tr.ProfessionalShare)
}

func TestCalculate_ProfessionalShare_CountsProfessionalDays(t *testing.T) {
	// GIVEN: A calculated three-day trip
	// WHEN: One day is flagged private and the trip is recalculated
	// THEN: The share is 2/3, with the flag preserved by date

	c := newCalculator(testSettings())
	tr := domesticTrip()
	mustCalculate(t, c, tr)
	require.Len(t, tr.Days, 3)

	tr.Days[1].Purpose = trip.PurposePrivate
	mustCalculate(t, c, tr)

	require.NotNil(t, tr.ProfessionalShare)
	assert.InDelta(t, 2.0/3.0, *tr.ProfessionalShare, 1e-9)
}

// =============================================================================
// OWN-CAR MILEAGE COSTS
// =============================================================================

func TestCalculate_OwnCarCost_WrittenBack(t *testing.T) {
	// GIVEN: An 850 km own-car leg at the car class (0.30/km) and an
	//        850 km return at the half-car class (0.15/km)
	// THEN:  Costs 255.00 and 127.50 overwrite the declared stage costs

	c := newCalculator(testSettings())
	out := carStage(at(2024, time.June, 1, 8, 0), at(2024, time.June, 1, 16, 0),
		berlin(), paris(), "850", trip.RefundClassCar)
	out.Cost = trip.NewMoney(999, "EUR") // declared cost is replaced
	back := carStage(at(2024, time.June, 3, 8, 0), at(2024, time.June, 3, 16, 0),
		paris(), berlin(), "850", trip.RefundClassHalfCar)

	tr := &trip.Trip{
		Begin: day(2024, time.June, 1), End: day(2024, time.June, 3),
		Destination: paris(),
		Stages:      []*trip.Stage{out, back},
	}
	mustCalculate(t, c, tr)

	assert.Equal(t, "255.00 EUR", out.Cost.String())
	assert.Equal(t, "127.50 EUR", back.Cost.String())
}

func TestCalculate_NonCarStageCostUntouched(t *testing.T) {
	c := newCalculator(testSettings())
	tr := domesticTrip()
	tr.Stages[0].Cost = trip.NewMoney(89.90, "EUR")

	mustCalculate(t, c, tr)
	assert.Equal(t, "89.90 EUR", tr.Stages[0].Cost.String())
}

// =============================================================================
// IDEMPOTENCE AND FLAG PRESERVATION
// =============================================================================

func TestCalculate_Idempotent(t *testing.T) {
	// Calling calculate twice on an unchanged trip yields identical
	// derived fields.

	c := newCalculator(testSettings())
	tr := domesticTrip()
	tr.Days = nil

	mustCalculate(t, c, tr)
	firstProgress := tr.Progress
	firstShare := *tr.ProfessionalShare
	firstDays := snapshotDays(tr)

	mustCalculate(t, c, tr)
	assert.Equal(t, firstProgress, tr.Progress)
	assert.Equal(t, firstShare, *tr.ProfessionalShare)
	assert.Equal(t, firstDays, snapshotDays(tr))
}

func TestCalculate_FlagsSurviveRangeExtension(t *testing.T) {
	// GIVEN: A calculated trip with customized day flags
	// WHEN: A new stage extends the date range and the trip recalculates
	// THEN: The old days keep their flags; the new day gets defaults

	c := newCalculator(testSettings())
	tr := domesticTrip()
	mustCalculate(t, c, tr)
	require.Len(t, tr.Days, 3)

	tr.Days[1].Dinner = false
	tr.Days[1].OvernightStay = true
	tr.Days[1].Purpose = trip.PurposePrivate

	tr.Stages = append(tr.Stages,
		stage(at(2024, time.June, 4, 9, 0), at(2024, time.June, 4, 11, 0), paris(), paris()))
	mustCalculate(t, c, tr)

	require.Len(t, tr.Days, 4)
	assert.False(t, tr.Days[1].Dinner)
	assert.True(t, tr.Days[1].OvernightStay)
	assert.Equal(t, trip.PurposePrivate, tr.Days[1].Purpose)
	assert.True(t, tr.Days[3].Breakfast, "new day starts with default flags")
	assert.Equal(t, trip.PurposeProfessional, tr.Days[3].Purpose)
}

func TestCalculate_ConflictLeavesDerivedFieldsAlone(t *testing.T) {
	// GIVEN: A successfully calculated trip
	// WHEN: An overlapping stage is added and calculation re-runs
	// THEN: Conflicts come back and the previously derived days survive

	c := newCalculator(testSettings())
	tr := domesticTrip()
	mustCalculate(t, c, tr)
	before := snapshotDays(tr)

	overlapping := stage(at(2024, time.June, 1, 9, 0), at(2024, time.June, 1, 13, 0), paris(), paris())
	tr.Stages = append(tr.Stages, overlapping)

	conflicts, err := c.Calculate(context.Background(), tr)
	require.NoError(t, err)
	require.NotEmpty(t, conflicts)
	assert.Equal(t, before, snapshotDays(tr), "derived days must not change on conflict")
}

// snapshotDays captures the derived day fields for comparison.
type daySnapshot struct {
	date      time.Time
	country   string
	locality  string
	catering  string
	overnight string
}

func snapshotDays(tr *trip.Trip) []daySnapshot {
	snaps := make([]daySnapshot, 0, len(tr.Days))
	for _, dy := range tr.Days {
		snaps = append(snaps, daySnapshot{
			date:      dy.Date,
			country:   dy.Country,
			locality:  dy.Locality,
			catering:  dy.CateringRefund.String(),
			overnight: dy.OvernightRefund.String(),
		})
	}
	return snaps
}

// =============================================================================
// SETTINGS UPDATE
// =============================================================================

func TestUpdateSettings_PropagatesToResolverAndRates(t *testing.T) {
	// GIVEN: A calculator whose settings change the car mileage rate
	// WHEN: UpdateSettings swaps the snapshot
	// THEN: The next calculation uses the new rate

	c := newCalculator(testSettings())
	tr := &trip.Trip{
		Begin: day(2024, time.June, 1), End: day(2024, time.June, 1),
		Destination: paris(),
		Stages: []*trip.Stage{carStage(at(2024, time.June, 1, 8, 0), at(2024, time.June, 1, 12, 0),
			paris(), paris(), "100", trip.RefundClassCar)},
	}
	mustCalculate(t, c, tr)
	assert.Equal(t, "30.00 EUR", tr.Stages[0].Cost.String())

	updated := testSettings()
	updated.MileageRates[trip.RefundClassCar] = d("0.38")
	c.UpdateSettings(updated)

	mustCalculate(t, c, tr)
	assert.Equal(t, "38.00 EUR", tr.Stages[0].Cost.String())
}

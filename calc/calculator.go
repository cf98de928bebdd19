/*
Package calc validates itineraries and computes statutory reimbursements.

PURPOSE:
  The Calculator is the single entry point invoked whenever a trip's
  stages or expenses change. It validates the itinerary and, when
  consistent, rederives everything the trip displays: the per-day country
  attribution, catering and overnight lump sums, own-car mileage costs,
  and the progress / professional-share summary fields.

CALCULATION ORDER (Calculate):
  1. Sort stages by departure and expenses by cost date (stable).
  2. Validate. Any blocking conflict stops here; the trip keeps its
     previous derived fields so a partially-invalid trip never shows
     stale-but-plausible numbers as fresh ones.
  3. Progress: share of the approved window covered by stages.
  4. Day derivation: border-crossing events -> per-day country/locality,
     with caller flags preserved by date and the last-place-of-work
     override applied (days.go).
  5. Professional share.
  6. Own-car mileage costs written back onto the stages.
  7. Catering refunds (catering.go).
  8. Overnight refunds (overnight.go).

OWNERSHIP:
  Calculate takes exclusive ownership of the trip for the duration of the
  call. The Calculator itself holds no per-trip state and may be shared;
  distinct trips may be calculated concurrently.

ERRORS:
  Blocking conflicts are data, returned in the conflict list. An error
  return means rate resolution failed (missing rate table entry), which
  is a configuration gap and fatal for the request.

SEE ALSO:
  - validator.go: Blocking and advisory checks
  - rates package: Per-diem rate resolution
*/
package calc

import (
	"context"

	"github.com/warp/travel-engine/rates"
	"github.com/warp/travel-engine/trip"
)

// Calculator computes a trip's statutory reimbursement.
type Calculator struct {
	settings  Settings
	resolver  *rates.Resolver
	validator *Validator
}

// New wires a Calculator against the country lookup collaborator with an
// initial settings snapshot.
func New(countries rates.CountryLookup, settings Settings) *Calculator {
	return &Calculator{
		settings:  settings,
		resolver:  rates.NewResolver(countries, settings.FallbackCountry),
		validator: NewValidator(settings),
	}
}

// Settings returns the current settings snapshot.
func (c *Calculator) Settings() Settings { return c.settings }

// UpdateSettings swaps the settings snapshot and propagates the fallback
// country into the rate resolver. Must not race with Calculate calls.
func (c *Calculator) UpdateSettings(settings Settings) {
	c.settings = settings
	c.resolver.SetFallbackCountry(settings.FallbackCountry)
	c.validator = NewValidator(settings)
}

// Check runs the advisory checks for the trip.
func (c *Calculator) Check(t *trip.Trip) []Warning {
	return c.validator.Check(t)
}

// Calculate validates the trip and, when consistent, rederives all
// computed fields in place. A non-empty conflict list means the trip was
// left untouched past sorting and must not be persisted as calculated.
func (c *Calculator) Calculate(ctx context.Context, t *trip.Trip) ([]Conflict, error) {
	t.SortStages()
	t.SortExpenses()

	if conflicts := c.validator.Validate(t); len(conflicts) > 0 {
		return conflicts, nil
	}

	t.Progress = c.progress(t)
	c.calculateDays(t)
	t.ProfessionalShare = professionalShare(t.Days)
	c.applyMileageCosts(t)

	if err := c.addCateringRefunds(ctx, t); err != nil {
		return nil, err
	}
	if err := c.addOvernightRefunds(ctx, t); err != nil {
		return nil, err
	}
	return nil, nil
}

// progress is the ratio of the stage-covered day span to the approved day
// span, as a percentage clamped to 100. A stageless trip has progress 0.
func (c *Calculator) progress(t *trip.Trip) float64 {
	if len(t.Stages) == 0 {
		return 0
	}
	approved := trip.DaysBetween(t.Begin, t.End) + 1
	if approved <= 0 {
		return 0
	}
	covered := trip.DaysBetween(t.FirstDeparture(), t.LastArrival()) + 1
	p := float64(covered) / float64(approved) * 100
	if p > 100 {
		p = 100
	}
	return p
}

// professionalShare is the fraction of days marked professional: 1 when
// no day is marked otherwise, 0 for an empty day list.
func professionalShare(days []*trip.Day) *float64 {
	share := 0.0
	if len(days) > 0 {
		professional := 0
		for _, d := range days {
			if d.Purpose == trip.PurposeProfessional {
				professional++
			}
		}
		share = float64(professional) / float64(len(days))
	}
	return &share
}

// applyMileageCosts overwrites each own-car stage's cost with distance
// times the per-km rate of its refund class, rounded to cents.
func (c *Calculator) applyMileageCosts(t *trip.Trip) {
	for _, s := range t.Stages {
		if s.Transport.Kind != trip.TransportOwnCar {
			continue
		}
		rate := c.settings.MileageRate(s.Transport.RefundClass)
		s.Cost = trip.Money{
			Amount:   s.Transport.DistanceKm.Mul(rate).Round(2),
			Currency: c.settings.Currency,
		}
	}
}

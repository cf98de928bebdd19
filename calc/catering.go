/*
catering.go - Catering lump-sum refunds

PURPOSE:
  Awards the per-day catering allowance. Which days qualify and at which
  rate class depends on the total elapsed travel time:

  > 24h:       every professional day is refunded; the first and last day
               at the partial-day class, the days between at the full-day
               class.
  8h to 24h:   at most one partial-day refund per qualifying day. With two
               calendar days, whichever day individually exceeds eight
               hours of actual travel qualifies; if neither does, the
               longer of the two. With a single day, that day qualifies.
  <= 8h:       no catering refund.

AMOUNT DERIVATION (per refunded day):
  1. Resolve the rate for the day's country/date/locality; take the
     partial or full catering amount per the class above.
  2. Subtract, per meal provided to the traveler, the configured fraction
     of the FULL-day rate; floor at zero. Round to cents.
  3. Multiply by the international catering factor unless the day's
     country is on the exception list. Round to cents.
  4. Double when spouse refund is settings-enabled and claimed. Round to
     cents.
*/
package calc

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/warp/travel-engine/trip"
)

var two = decimal.NewFromInt(2)

// addCateringRefunds computes the catering refund for every day of the
// trip. Days and stages must already be derived and sorted.
func (c *Calculator) addCateringRefunds(ctx context.Context, t *trip.Trip) error {
	for _, d := range t.Days {
		d.CateringRefund = trip.ZeroMoney(c.settings.Currency)
	}
	if len(t.Days) == 0 {
		return nil
	}

	elapsed := t.TotalElapsed()
	switch {
	case elapsed > 24*time.Hour:
		last := len(t.Days) - 1
		for i, d := range t.Days {
			if d.Purpose != trip.PurposeProfessional {
				continue
			}
			partial := i == 0 || i == last
			if err := c.applyCatering(ctx, t, d, partial); err != nil {
				return err
			}
		}

	case elapsed > 8*time.Hour:
		for _, d := range c.partialDayCandidates(t) {
			if d.Purpose != trip.PurposeProfessional {
				continue
			}
			if err := c.applyCatering(ctx, t, d, true); err != nil {
				return err
			}
		}
	}
	return nil
}

// partialDayCandidates picks which day(s) of a trip between 8 and 24
// hours receive the partial-day allowance. For a two-day trip the travel
// time of each day is measured against the shared midnight; a day
// individually exceeding eight hours qualifies, and when neither does,
// the longer one.
func (c *Calculator) partialDayCandidates(t *trip.Trip) []*trip.Day {
	switch len(t.Days) {
	case 1:
		return []*trip.Day{t.Days[0]}
	case 2:
		midnight := t.Days[1].Date
		firstSpan := midnight.Sub(t.FirstDeparture())
		secondSpan := t.LastArrival().Sub(midnight)

		var candidates []*trip.Day
		if firstSpan > 8*time.Hour {
			candidates = append(candidates, t.Days[0])
		}
		if secondSpan > 8*time.Hour {
			candidates = append(candidates, t.Days[1])
		}
		if len(candidates) == 0 {
			if firstSpan >= secondSpan {
				candidates = append(candidates, t.Days[0])
			} else {
				candidates = append(candidates, t.Days[1])
			}
		}
		return candidates
	default:
		// A trip under 24 hours cannot span three calendar days.
		return nil
	}
}

// applyCatering derives and records one day's catering refund.
func (c *Calculator) applyCatering(ctx context.Context, t *trip.Trip, d *trip.Day, partial bool) error {
	rate, err := c.resolver.Resolve(ctx, d.Country, d.Date, d.Locality)
	if err != nil {
		return err
	}

	amount := rate.CateringFull
	if partial {
		amount = rate.CateringPartial
	}

	// Meal cuts are always fractions of the full-day rate, even when the
	// base is the partial-day amount.
	amount = amount.Sub(rate.CateringFull.Mul(c.settings.MealCut(d)))
	if amount.IsNegative() {
		amount = decimal.Zero
	}
	amount = amount.Round(2)

	if c.settings.CateringFactor.AppliesTo(d.Country) {
		amount = amount.Mul(c.settings.CateringFactor.Multiplier).Round(2)
	}
	if c.settings.SpouseRefundEnabled && t.ClaimSpouseRefund {
		amount = amount.Mul(two).Round(2)
	}

	d.CateringRefund = trip.Money{Amount: amount, Currency: c.settings.Currency}
	return nil
}

/*
overnight.go - Overnight lump-sum refunds

PURPOSE:
  Awards the overnight allowance for each night of the trip. A day earns
  an overnight refund when the caller claimed one, the day is
  professional, and the traveler was not in transit at that day's
  midnight: a midnight falling strictly inside a single stage's interval
  means the night was spent traveling, not staying, and earns nothing.

  The last day has no following night and never earns an overnight
  refund.

AMOUNT DERIVATION:
  The overnight rate for the day's country/date/locality, with the same
  factor-exception and spouse-doubling treatment as catering, rounded to
  cents at each multiplicative step.
*/
package calc

import (
	"context"

	"github.com/warp/travel-engine/trip"
)

// addOvernightRefunds computes the overnight refund for every day except
// the last. A forward-advancing cursor walks the sorted stage list once
// to find the stage, if any, straddling each midnight.
func (c *Calculator) addOvernightRefunds(ctx context.Context, t *trip.Trip) error {
	for _, d := range t.Days {
		d.OvernightRefund = trip.ZeroMoney(c.settings.Currency)
	}
	if len(t.Days) < 2 {
		return nil
	}

	cursor := 0
	for _, d := range t.Days[:len(t.Days)-1] {
		if !d.OvernightStay || d.Purpose != trip.PurposeProfessional {
			continue
		}

		midnight := trip.NextMidnight(d.Date)
		for cursor < len(t.Stages) && !t.Stages[cursor].Arrival.After(midnight) {
			cursor++
		}
		if cursor < len(t.Stages) {
			s := t.Stages[cursor]
			if s.Departure.Before(midnight) && s.Arrival.After(midnight) {
				continue // in transit across this midnight
			}
		}

		rate, err := c.resolver.Resolve(ctx, d.Country, d.Date, d.Locality)
		if err != nil {
			return err
		}
		amount := rate.Overnight.Round(2)
		if c.settings.OvernightFactor.AppliesTo(d.Country) {
			amount = amount.Mul(c.settings.OvernightFactor.Multiplier).Round(2)
		}
		if c.settings.SpouseRefundEnabled && t.ClaimSpouseRefund {
			amount = amount.Mul(two).Round(2)
		}
		d.OvernightRefund = trip.Money{Amount: amount, Currency: c.settings.Currency}
	}
	return nil
}

/*
days.go - Per-day country attribution

PURPOSE:
  Derives the trip's day list from its stages. Each calendar day between
  the first departure and the last arrival is attributed to exactly one
  country/locality, determined by a list of border-crossing events walked
  against each day's end-of-day instant.

BORDER-CROSSING EVENTS:
  - The first stage's departure opens the trip in its start place.
  - Every stage that ends somewhere other than it started emits a
    crossing at its arrival.
  - A stage spanning more than one midnight additionally emits transit
    crossings: ground stages splice in the caller-supplied midnight
    countries (one per successive midnight, order-significant); air and
    sea stages synthesize a single crossing 24 hours after departure into
    the configured second-midnight country.

DAY ATTRIBUTION:
  A day belongs to the latest crossing at or before 23:59:59.999 of that
  day. Afterwards, the last-place-of-work override rewrites every day
  from the date that place first becomes reachable.

FLAG PRESERVATION:
  The day list is regenerated wholesale on every calculation, but the
  caller-supplied flags (meal eligibility, overnight stay, purpose) are
  re-attached by calendar date from the previous list.
*/
package calc

import (
	"sort"
	"time"

	"github.com/warp/travel-engine/trip"
)

// crossing is a derived point in time at which the current country
// changes for day-attribution purposes.
type crossing struct {
	at    time.Time
	place trip.Place
}

// calculateDays rebuilds the trip's day list. Stages must be sorted.
func (c *Calculator) calculateDays(t *trip.Trip) {
	if len(t.Stages) == 0 {
		t.Days = nil
		return
	}

	crossings := c.borderCrossings(t)
	previous := t.DaysByDate()

	span := trip.DaySpan(t.FirstDeparture(), t.LastArrival())
	if max := c.settings.MaxTripDays; max > 0 && len(span) > max {
		span = span[:max]
	}

	days := make([]*trip.Day, 0, len(span))
	for _, date := range span {
		day := &trip.Day{
			Date:      date,
			Breakfast: true,
			Lunch:     true,
			Dinner:    true,
			Purpose:   trip.PurposeProfessional,
		}
		if prev, ok := previous[date]; ok {
			day.Breakfast = prev.Breakfast
			day.Lunch = prev.Lunch
			day.Dinner = prev.Dinner
			day.OvernightStay = prev.OvernightStay
			day.Purpose = prev.Purpose
		}

		// Latest crossing at or before the day's end instant wins.
		end := trip.EndOfDay(date)
		for _, cr := range crossings {
			if cr.at.After(end) {
				break
			}
			day.Country = cr.place.Country
			day.Locality = cr.place.Locality
		}

		days = append(days, day)
	}

	t.Days = days
	c.applyLastPlaceOfWork(t)
}

// borderCrossings walks the sorted stages and emits the full, time-ordered
// crossing-event list.
func (c *Calculator) borderCrossings(t *trip.Trip) []crossing {
	events := []crossing{{at: t.Stages[0].Departure, place: t.Stages[0].Start}}

	for _, s := range t.Stages {
		if s.CrossesBorder() {
			events = append(events, crossing{at: s.Arrival, place: s.End})
		}
		if trip.MidnightsSpanned(s.Departure, s.Arrival) > 1 {
			events = append(events, c.transitCrossings(s)...)
		}
	}

	sort.SliceStable(events, func(i, j int) bool {
		return events[i].at.Before(events[j].at)
	})
	return events
}

// transitCrossings synthesizes the in-transit crossings for a stage that
// spans more than one midnight.
func (c *Calculator) transitCrossings(s *trip.Stage) []crossing {
	switch s.Transport.Kind {
	case trip.TransportAirplane:
		return []crossing{{
			at:    s.Departure.Add(24 * time.Hour),
			place: trip.Place{Country: c.settings.AirSecondMidnightCountry},
		}}
	case trip.TransportShipOrFerry:
		return []crossing{{
			at:    s.Departure.Add(24 * time.Hour),
			place: trip.Place{Country: c.settings.SeaSecondMidnightCountry},
		}}
	default:
		// Ground transport: the caller pre-identified the country for each
		// successive midnight of the stage.
		events := make([]crossing, 0, len(s.MidnightCountries))
		for i, code := range s.MidnightCountries {
			events = append(events, crossing{
				at:    s.Departure.Add(time.Duration(i+1) * 24 * time.Hour),
				place: trip.Place{Country: code},
			})
		}
		return events
	}
}

// applyLastPlaceOfWork rewrites the tail of the day list with one fixed
// place: either the trip's explicit override or the place derived per
// settings (destination or final stage end). Every day on or after the
// earliest date that place is reachable is attributed to it.
func (c *Calculator) applyLastPlaceOfWork(t *trip.Trip) {
	place := t.LastPlaceOfWork
	if place == nil {
		switch c.settings.LastPlaceOfWorkDefault {
		case LastWorkDestination:
			if !t.Destination.IsZero() {
				place = &t.Destination
			}
		case LastWorkFinalStageEnd:
			place = &t.Stages[len(t.Stages)-1].End
		}
	}
	if place == nil || place.IsZero() {
		return
	}

	from, ok := c.reachableFrom(t, *place)
	if !ok {
		return
	}
	for _, d := range t.Days {
		if !d.Date.Before(from) {
			d.Country = place.Country
			d.Locality = place.Locality
		}
	}
}

// reachableFrom finds the earliest date the place becomes reachable:
// stages are scanned in reverse for the first end-place match on country,
// with an exact locality match preferred over a same-country one.
func (c *Calculator) reachableFrom(t *trip.Trip, place trip.Place) (time.Time, bool) {
	var countryMatch time.Time
	found := false
	for i := len(t.Stages) - 1; i >= 0; i-- {
		s := t.Stages[i]
		if s.End.Country != place.Country {
			continue
		}
		if s.End.Locality == place.Locality {
			return trip.DayOf(s.Arrival), true
		}
		if !found {
			countryMatch = trip.DayOf(s.Arrival)
			found = true
		}
	}
	return countryMatch, found
}

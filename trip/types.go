/*
Package trip defines the travel-expense domain model.

PURPOSE:
  Holds the aggregate a traveler submits for reimbursement: the trip with
  its ordered movement stages, declared expenses, and the per-day records
  the allowance calculator derives from them.

KEY CONCEPTS IN THIS FILE (types.go):
  - Trip: Aggregate root with approved window, stages, expenses, days
  - Stage: One continuous movement segment (flight, drive, ferry leg)
  - Day: One calendar day of the trip with eligibility flags and refunds
  - Place: Locality + country, the unit of geographic attribution
  - Transport: How a stage was traveled; own-car stages carry distance
    and a refund class for mileage reimbursement

OWNERSHIP:
  A Trip and everything it references is owned by exactly one caller at a
  time. The allowance calculator takes the trip for the duration of a
  calculation and rewrites Days wholesale and own-car stage costs in
  place; callers must not share a Trip between concurrent calculations.

SEE ALSO:
  - money.go: Decimal-backed monetary amounts
  - time.go: UTC day-granularity helpers
  - calc package: Validation and allowance calculation over these types
*/
package trip

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// PLACE
// =============================================================================

// Place is a geographic location: a locality within a country.
// Country is an ISO-like country code; Locality is free-form and only
// meaningful for locality-level rate overrides (e.g. "New York City").
type Place struct {
	Locality string
	Country  string
}

// Equal compares both components. Day attribution treats a stage whose
// start and end places are Equal as not crossing a border.
func (p Place) Equal(other Place) bool {
	return p.Locality == other.Locality && p.Country == other.Country
}

// IsZero reports whether the place carries no country. A place without a
// country cannot be attributed and is treated as unset.
func (p Place) IsZero() bool { return p.Country == "" }

// =============================================================================
// TRANSPORT
// =============================================================================

type TransportKind string

const (
	TransportOwnCar      TransportKind = "own_car"
	TransportAirplane    TransportKind = "airplane"
	TransportShipOrFerry TransportKind = "ship_or_ferry"
	TransportOther       TransportKind = "other"
)

// RefundClass is the mileage tariff bracket for privately owned vehicles.
type RefundClass string

const (
	RefundClassCar        RefundClass = "car"
	RefundClassMotorcycle RefundClass = "motorcycle"
	RefundClassHalfCar    RefundClass = "half_car"
)

// Transport describes how a stage was traveled. DistanceKm and RefundClass
// are only meaningful for TransportOwnCar.
type Transport struct {
	Kind        TransportKind
	DistanceKm  decimal.Decimal
	RefundClass RefundClass
}

// =============================================================================
// PURPOSE
// =============================================================================

// Purpose classifies a stage or a day. Stages are professional or mixed;
// days are professional or private. Only professional days earn per-diem
// refunds.
type Purpose string

const (
	PurposeProfessional Purpose = "professional"
	PurposeMixed        Purpose = "mixed"
	PurposePrivate      Purpose = "private"
)

// =============================================================================
// STAGE
// =============================================================================

// Stage is one continuous movement segment of a trip.
type Stage struct {
	ID        string
	Departure time.Time
	Arrival   time.Time
	Start     Place
	End       Place
	Transport Transport

	// MidnightCountries lists, in order, the countries the traveler is in at
	// each successive midnight of a ground stage spanning more than one
	// midnight. Supplied by the caller; ignored for air and sea stages,
	// which use the configured second-midnight countries instead.
	MidnightCountries []string

	// Cost is the declared cost of the stage. For own-car stages the
	// calculator overwrites it with distance times the class mileage rate.
	Cost Money

	Purpose Purpose
}

// CrossesBorder reports whether the stage ends somewhere other than it
// started, at locality granularity.
func (s *Stage) CrossesBorder() bool { return !s.Start.Equal(s.End) }

// =============================================================================
// EXPENSE
// =============================================================================

// Expense is a declared cost entry (hotel bill, conference fee, ...).
// Expenses feed the trip total; they do not affect per-diem computation.
type Expense struct {
	ID          string
	Description string
	Cost        Money
	CostDate    time.Time
	Purpose     Purpose
}

// =============================================================================
// DAY
// =============================================================================

// Day is one calendar day of the trip window.
//
// The meal and overnight flags and the purpose are supplied by the caller
// and survive recalculation: when the day list is regenerated the flags
// are re-attached by calendar date. A meal flag set to false means the
// meal was provided to the traveler, so its statutory fraction is cut
// from the catering allowance.
type Day struct {
	Date time.Time // UTC midnight identifying the calendar day

	// Caller-supplied flags, preserved across recalculation by date.
	Breakfast     bool // per-diem share for breakfast claimable
	Lunch         bool
	Dinner        bool
	OvernightStay bool // overnight lump sum claimed for the following night
	Purpose       Purpose

	// Calculator-derived fields, rewritten on every calculation.
	Country         string
	Locality        string
	CateringRefund  Money
	OvernightRefund Money
}

// =============================================================================
// TRIP
// =============================================================================

// Trip is the aggregate root for one business trip.
type Trip struct {
	ID         string
	TravelerID string

	// Approved trip window, day granularity.
	Begin time.Time
	End   time.Time

	Destination     Place
	LastPlaceOfWork *Place // explicit override; nil means derive per settings

	// ClaimSpouseRefund doubles lump sums when the settings also allow it.
	ClaimSpouseRefund bool

	Stages   []*Stage
	Expenses []*Expense
	Days     []*Day

	// Derived summary fields.
	Progress          float64  // 0..100, share of the approved window covered
	ProfessionalShare *float64 // 0..1; nil until first calculation
}

// SortStages orders stages chronologically by departure. The sort is
// stable so equal departures keep their submission order.
func (t *Trip) SortStages() {
	sort.SliceStable(t.Stages, func(i, j int) bool {
		return t.Stages[i].Departure.Before(t.Stages[j].Departure)
	})
}

// SortExpenses orders expenses chronologically by cost date.
func (t *Trip) SortExpenses() {
	sort.SliceStable(t.Expenses, func(i, j int) bool {
		return t.Expenses[i].CostDate.Before(t.Expenses[j].CostDate)
	})
}

// FirstDeparture returns the departure of the first stage.
// Stages must be sorted; returns zero time for a stageless trip.
func (t *Trip) FirstDeparture() time.Time {
	if len(t.Stages) == 0 {
		return time.Time{}
	}
	return t.Stages[0].Departure
}

// LastArrival returns the arrival of the final stage.
// Stages must be sorted; returns zero time for a stageless trip.
func (t *Trip) LastArrival() time.Time {
	if len(t.Stages) == 0 {
		return time.Time{}
	}
	return t.Stages[len(t.Stages)-1].Arrival
}

// TotalElapsed is the wall-clock span from first departure to last
// arrival. Zero for a stageless trip.
func (t *Trip) TotalElapsed() time.Duration {
	if len(t.Stages) == 0 {
		return 0
	}
	return t.LastArrival().Sub(t.FirstDeparture())
}

// TotalExpenses folds the declared expense costs. Currency is taken from
// the first expense; entries are assumed pre-converted to one currency.
func (t *Trip) TotalExpenses() Money {
	if len(t.Expenses) == 0 {
		return Money{Amount: decimal.Zero}
	}
	total := ZeroMoney(t.Expenses[0].Cost.Currency)
	for _, e := range t.Expenses {
		total = total.Add(e.Cost)
	}
	return total
}

// DaysByDate indexes the current day list by normalized date. Used to
// preserve caller-supplied flags when the day list is regenerated.
func (t *Trip) DaysByDate() map[time.Time]*Day {
	byDate := make(map[time.Time]*Day, len(t.Days))
	for _, d := range t.Days {
		byDate[DayOf(d.Date)] = d
	}
	return byDate
}

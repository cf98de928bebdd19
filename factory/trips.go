package factory

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/warp/travel-engine/trip"
)

// =============================================================================
// TRIP JSON SCHEMA - Wire and storage representation of a trip
// =============================================================================

// Instants use RFC 3339; day-granular dates use 2006-01-02; monetary
// amounts and distances are decimal strings.
const dateLayout = "2006-01-02"

type TripJSON struct {
	ID                string        `json:"id"`
	TravelerID        string        `json:"traveler_id"`
	Begin             string        `json:"begin"`
	End               string        `json:"end"`
	Destination       PlaceJSON     `json:"destination"`
	LastPlaceOfWork   *PlaceJSON    `json:"last_place_of_work,omitempty"`
	ClaimSpouseRefund bool          `json:"claim_spouse_refund,omitempty"`
	Stages            []StageJSON   `json:"stages"`
	Expenses          []ExpenseJSON `json:"expenses"`
	Days              []DayJSON     `json:"days"`
	Progress          float64       `json:"progress"`
	ProfessionalShare *float64      `json:"professional_share,omitempty"`
}

type PlaceJSON struct {
	Locality string `json:"locality,omitempty"`
	Country  string `json:"country"`
}

type TransportJSON struct {
	Kind        string `json:"kind"`
	DistanceKm  string `json:"distance_km,omitempty"`
	RefundClass string `json:"refund_class,omitempty"`
}

type MoneyJSON struct {
	Amount   string `json:"amount"`
	Currency string `json:"currency"`
}

type StageJSON struct {
	ID                string        `json:"id"`
	Departure         string        `json:"departure"`
	Arrival           string        `json:"arrival"`
	Start             PlaceJSON     `json:"start"`
	End               PlaceJSON     `json:"end"`
	Transport         TransportJSON `json:"transport"`
	MidnightCountries []string      `json:"midnight_countries,omitempty"`
	Cost              MoneyJSON     `json:"cost"`
	Purpose           string        `json:"purpose"`
}

type ExpenseJSON struct {
	ID          string    `json:"id"`
	Description string    `json:"description"`
	Cost        MoneyJSON `json:"cost"`
	CostDate    string    `json:"cost_date"`
	Purpose     string    `json:"purpose"`
}

type DayJSON struct {
	Date            string    `json:"date"`
	Breakfast       bool      `json:"breakfast"`
	Lunch           bool      `json:"lunch"`
	Dinner          bool      `json:"dinner"`
	OvernightStay   bool      `json:"overnight_stay"`
	Purpose         string    `json:"purpose"`
	Country         string    `json:"country,omitempty"`
	Locality        string    `json:"locality,omitempty"`
	CateringRefund  MoneyJSON `json:"catering_refund"`
	OvernightRefund MoneyJSON `json:"overnight_refund"`
}

// =============================================================================
// DOMAIN -> JSON
// =============================================================================

func TripToJSON(t *trip.Trip) TripJSON {
	js := TripJSON{
		ID:                t.ID,
		TravelerID:        t.TravelerID,
		Begin:             t.Begin.Format(dateLayout),
		End:               t.End.Format(dateLayout),
		Destination:       placeToJSON(t.Destination),
		ClaimSpouseRefund: t.ClaimSpouseRefund,
		Stages:            make([]StageJSON, 0, len(t.Stages)),
		Expenses:          make([]ExpenseJSON, 0, len(t.Expenses)),
		Days:              make([]DayJSON, 0, len(t.Days)),
		Progress:          t.Progress,
		ProfessionalShare: t.ProfessionalShare,
	}
	if t.LastPlaceOfWork != nil {
		p := placeToJSON(*t.LastPlaceOfWork)
		js.LastPlaceOfWork = &p
	}
	for _, s := range t.Stages {
		js.Stages = append(js.Stages, StageToJSON(s))
	}
	for _, e := range t.Expenses {
		js.Expenses = append(js.Expenses, ExpenseToJSON(e))
	}
	for _, d := range t.Days {
		js.Days = append(js.Days, DayToJSON(d))
	}
	return js
}

func StageToJSON(s *trip.Stage) StageJSON {
	js := StageJSON{
		ID:                s.ID,
		Departure:         s.Departure.UTC().Format(time.RFC3339),
		Arrival:           s.Arrival.UTC().Format(time.RFC3339),
		Start:             placeToJSON(s.Start),
		End:               placeToJSON(s.End),
		Transport:         TransportJSON{Kind: string(s.Transport.Kind)},
		MidnightCountries: s.MidnightCountries,
		Cost:              moneyToJSON(s.Cost),
		Purpose:           string(s.Purpose),
	}
	if s.Transport.Kind == trip.TransportOwnCar {
		js.Transport.DistanceKm = s.Transport.DistanceKm.String()
		js.Transport.RefundClass = string(s.Transport.RefundClass)
	}
	return js
}

func ExpenseToJSON(e *trip.Expense) ExpenseJSON {
	return ExpenseJSON{
		ID:          e.ID,
		Description: e.Description,
		Cost:        moneyToJSON(e.Cost),
		CostDate:    e.CostDate.UTC().Format(time.RFC3339),
		Purpose:     string(e.Purpose),
	}
}

func DayToJSON(d *trip.Day) DayJSON {
	return DayJSON{
		Date:            d.Date.Format(dateLayout),
		Breakfast:       d.Breakfast,
		Lunch:           d.Lunch,
		Dinner:          d.Dinner,
		OvernightStay:   d.OvernightStay,
		Purpose:         string(d.Purpose),
		Country:         d.Country,
		Locality:        d.Locality,
		CateringRefund:  moneyToJSON(d.CateringRefund),
		OvernightRefund: moneyToJSON(d.OvernightRefund),
	}
}

func placeToJSON(p trip.Place) PlaceJSON {
	return PlaceJSON{Locality: p.Locality, Country: p.Country}
}

func moneyToJSON(m trip.Money) MoneyJSON {
	return MoneyJSON{Amount: m.Amount.String(), Currency: m.Currency}
}

// =============================================================================
// JSON -> DOMAIN
// =============================================================================

func TripFromJSON(js TripJSON) (*trip.Trip, error) {
	begin, err := time.ParseInLocation(dateLayout, js.Begin, time.UTC)
	if err != nil {
		return nil, fmt.Errorf("trip %s: begin: %w", js.ID, err)
	}
	end, err := time.ParseInLocation(dateLayout, js.End, time.UTC)
	if err != nil {
		return nil, fmt.Errorf("trip %s: end: %w", js.ID, err)
	}

	t := &trip.Trip{
		ID:                js.ID,
		TravelerID:        js.TravelerID,
		Begin:             begin,
		End:               end,
		Destination:       placeFromJSON(js.Destination),
		ClaimSpouseRefund: js.ClaimSpouseRefund,
		Progress:          js.Progress,
		ProfessionalShare: js.ProfessionalShare,
	}
	if js.LastPlaceOfWork != nil {
		p := placeFromJSON(*js.LastPlaceOfWork)
		t.LastPlaceOfWork = &p
	}
	for _, s := range js.Stages {
		stage, err := StageFromJSON(s)
		if err != nil {
			return nil, fmt.Errorf("trip %s: %w", js.ID, err)
		}
		t.Stages = append(t.Stages, stage)
	}
	for _, e := range js.Expenses {
		expense, err := ExpenseFromJSON(e)
		if err != nil {
			return nil, fmt.Errorf("trip %s: %w", js.ID, err)
		}
		t.Expenses = append(t.Expenses, expense)
	}
	for _, d := range js.Days {
		day, err := dayFromJSON(d)
		if err != nil {
			return nil, fmt.Errorf("trip %s: %w", js.ID, err)
		}
		t.Days = append(t.Days, day)
	}
	return t, nil
}

func StageFromJSON(js StageJSON) (*trip.Stage, error) {
	departure, err := time.Parse(time.RFC3339, js.Departure)
	if err != nil {
		return nil, fmt.Errorf("stage %s: departure: %w", js.ID, err)
	}
	arrival, err := time.Parse(time.RFC3339, js.Arrival)
	if err != nil {
		return nil, fmt.Errorf("stage %s: arrival: %w", js.ID, err)
	}
	cost, err := moneyFromJSON(js.Cost)
	if err != nil {
		return nil, fmt.Errorf("stage %s: cost: %w", js.ID, err)
	}

	s := &trip.Stage{
		ID:                js.ID,
		Departure:         departure.UTC(),
		Arrival:           arrival.UTC(),
		Start:             placeFromJSON(js.Start),
		End:               placeFromJSON(js.End),
		Transport:         trip.Transport{Kind: trip.TransportKind(js.Transport.Kind)},
		MidnightCountries: js.MidnightCountries,
		Cost:              cost,
		Purpose:           trip.Purpose(js.Purpose),
	}
	if s.Transport.Kind == trip.TransportOwnCar {
		if js.Transport.DistanceKm != "" {
			if s.Transport.DistanceKm, err = decimal.NewFromString(js.Transport.DistanceKm); err != nil {
				return nil, fmt.Errorf("stage %s: distance_km: %w", js.ID, err)
			}
		}
		s.Transport.RefundClass = trip.RefundClass(js.Transport.RefundClass)
	}
	return s, nil
}

func ExpenseFromJSON(js ExpenseJSON) (*trip.Expense, error) {
	costDate, err := time.Parse(time.RFC3339, js.CostDate)
	if err != nil {
		return nil, fmt.Errorf("expense %s: cost_date: %w", js.ID, err)
	}
	cost, err := moneyFromJSON(js.Cost)
	if err != nil {
		return nil, fmt.Errorf("expense %s: cost: %w", js.ID, err)
	}
	return &trip.Expense{
		ID:          js.ID,
		Description: js.Description,
		Cost:        cost,
		CostDate:    costDate.UTC(),
		Purpose:     trip.Purpose(js.Purpose),
	}, nil
}

func dayFromJSON(js DayJSON) (*trip.Day, error) {
	date, err := time.ParseInLocation(dateLayout, js.Date, time.UTC)
	if err != nil {
		return nil, fmt.Errorf("day %s: %w", js.Date, err)
	}
	catering, err := moneyFromJSON(js.CateringRefund)
	if err != nil {
		return nil, fmt.Errorf("day %s: catering_refund: %w", js.Date, err)
	}
	overnight, err := moneyFromJSON(js.OvernightRefund)
	if err != nil {
		return nil, fmt.Errorf("day %s: overnight_refund: %w", js.Date, err)
	}
	return &trip.Day{
		Date:            date,
		Breakfast:       js.Breakfast,
		Lunch:           js.Lunch,
		Dinner:          js.Dinner,
		OvernightStay:   js.OvernightStay,
		Purpose:         trip.Purpose(js.Purpose),
		Country:         js.Country,
		Locality:        js.Locality,
		CateringRefund:  catering,
		OvernightRefund: overnight,
	}, nil
}

func placeFromJSON(js PlaceJSON) trip.Place {
	return trip.Place{Locality: js.Locality, Country: js.Country}
}

func moneyFromJSON(js MoneyJSON) (trip.Money, error) {
	if js.Amount == "" {
		return trip.ZeroMoney(js.Currency), nil
	}
	amount, err := decimal.NewFromString(js.Amount)
	if err != nil {
		return trip.Money{}, err
	}
	return trip.Money{Amount: amount, Currency: js.Currency}, nil
}

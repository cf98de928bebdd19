package factory

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/warp/travel-engine/rates"
)

// =============================================================================
// COUNTRY JSON SCHEMA
// =============================================================================

// CountryJSON is the JSON representation of one country table entry.
//
//	{
//	  "code": "US",
//	  "name": "United States",
//	  "rates": [
//	    {
//	      "valid_from": "2024-01-01",
//	      "catering_partial": "40", "catering_full": "59", "overnight": "150",
//	      "localities": [
//	        {"locality": "New York City",
//	         "catering_partial": "44", "catering_full": "66", "overnight": "308"}
//	      ]
//	    }
//	  ]
//	}
type CountryJSON struct {
	Code            string        `json:"code"`
	Name            string        `json:"name"`
	RatesRedirectTo string        `json:"rates_redirect_to,omitempty"`
	Rates           []RateSetJSON `json:"rates,omitempty"`
}

type RateSetJSON struct {
	ValidFrom       string         `json:"valid_from"` // 2006-01-02
	CateringPartial string         `json:"catering_partial"`
	CateringFull    string         `json:"catering_full"`
	Overnight       string         `json:"overnight"`
	Localities      []LocalityJSON `json:"localities,omitempty"`
}

type LocalityJSON struct {
	Locality        string `json:"locality"`
	CateringPartial string `json:"catering_partial"`
	CateringFull    string `json:"catering_full"`
	Overnight       string `json:"overnight"`
}

// =============================================================================
// PARSING
// =============================================================================

// ParseCountries converts a JSON array of countries into domain values.
func ParseCountries(data []byte) ([]rates.Country, error) {
	var docs []CountryJSON
	if err := json.Unmarshal(data, &docs); err != nil {
		return nil, fmt.Errorf("parse countries: %w", err)
	}
	countries := make([]rates.Country, 0, len(docs))
	for _, doc := range docs {
		c, err := CountryFromJSON(doc)
		if err != nil {
			return nil, err
		}
		countries = append(countries, c)
	}
	return countries, nil
}

// CountryFromJSON converts one country document into the domain form.
func CountryFromJSON(js CountryJSON) (rates.Country, error) {
	c := rates.Country{
		Code:            js.Code,
		Name:            js.Name,
		RatesRedirectTo: js.RatesRedirectTo,
	}
	for _, rs := range js.Rates {
		set, err := rateSetFromJSON(js.Code, rs)
		if err != nil {
			return rates.Country{}, err
		}
		c.Rates = append(c.Rates, set)
	}
	// Rate selection assumes an ascending history; documents may arrive in
	// any order.
	sort.Slice(c.Rates, func(i, j int) bool {
		return c.Rates[i].ValidFrom.Before(c.Rates[j].ValidFrom)
	})
	return c, nil
}

// CountryToJSON converts a domain country back into the JSON form.
func CountryToJSON(c rates.Country) CountryJSON {
	js := CountryJSON{Code: c.Code, Name: c.Name, RatesRedirectTo: c.RatesRedirectTo}
	for _, rs := range c.Rates {
		set := RateSetJSON{
			ValidFrom:       rs.ValidFrom.Format("2006-01-02"),
			CateringPartial: rs.CateringPartial.String(),
			CateringFull:    rs.CateringFull.String(),
			Overnight:       rs.Overnight.String(),
		}
		for _, l := range rs.Localities {
			set.Localities = append(set.Localities, LocalityJSON{
				Locality:        l.Locality,
				CateringPartial: l.CateringPartial.String(),
				CateringFull:    l.CateringFull.String(),
				Overnight:       l.Overnight.String(),
			})
		}
		js.Rates = append(js.Rates, set)
	}
	return js
}

func rateSetFromJSON(country string, js RateSetJSON) (rates.RateSet, error) {
	validFrom, err := time.ParseInLocation("2006-01-02", js.ValidFrom, time.UTC)
	if err != nil {
		return rates.RateSet{}, fmt.Errorf("country %s: valid_from: %w", country, err)
	}
	set := rates.RateSet{ValidFrom: validFrom}
	if set.CateringPartial, set.CateringFull, set.Overnight, err = parseAmounts(
		country, js.CateringPartial, js.CateringFull, js.Overnight); err != nil {
		return rates.RateSet{}, err
	}
	for _, l := range js.Localities {
		loc := rates.LocalityRate{Locality: l.Locality}
		if loc.CateringPartial, loc.CateringFull, loc.Overnight, err = parseAmounts(
			country, l.CateringPartial, l.CateringFull, l.Overnight); err != nil {
			return rates.RateSet{}, err
		}
		set.Localities = append(set.Localities, loc)
	}
	return set, nil
}

func parseAmounts(country, partial, full, overnight string) (p, f, o decimal.Decimal, err error) {
	if p, err = decimal.NewFromString(partial); err != nil {
		return p, f, o, fmt.Errorf("country %s: catering_partial: %w", country, err)
	}
	if f, err = decimal.NewFromString(full); err != nil {
		return p, f, o, fmt.Errorf("country %s: catering_full: %w", country, err)
	}
	if o, err = decimal.NewFromString(overnight); err != nil {
		return p, f, o, fmt.Errorf("country %s: overnight: %w", country, err)
	}
	return p, f, o, nil
}

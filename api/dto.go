/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  JSON structures for API communication. Trip bodies reuse the factory
  package's JSON forms (the same documents the store persists), so the
  wire format and the storage format cannot drift apart. This file adds
  the request envelopes and the calculation-result wrappers.

NAMING CONVENTION:
  - *Request: Request body types from clients
  - *Response: Response wrappers returned to clients

SEE ALSO:
  - handlers.go: Uses these types
  - factory/trips.go: TripJSON / StageJSON / ExpenseJSON forms
*/
package api

import "github.com/warp/travel-engine/factory"

// =============================================================================
// REQUEST TYPES
// =============================================================================

// CreateTripRequest opens a trip for a traveler.
type CreateTripRequest struct {
	TravelerID        string             `json:"traveler_id"`
	Begin             string             `json:"begin"` // 2006-01-02
	End               string             `json:"end"`
	Destination       factory.PlaceJSON  `json:"destination"`
	LastPlaceOfWork   *factory.PlaceJSON `json:"last_place_of_work,omitempty"`
	ClaimSpouseRefund bool               `json:"claim_spouse_refund,omitempty"`
}

// StageRequest adds or replaces a stage. The ID is server-assigned on
// add and taken from the URL on update.
type StageRequest struct {
	Departure         string                `json:"departure"` // RFC 3339
	Arrival           string                `json:"arrival"`
	Start             factory.PlaceJSON     `json:"start"`
	End               factory.PlaceJSON     `json:"end"`
	Transport         factory.TransportJSON `json:"transport"`
	MidnightCountries []string              `json:"midnight_countries,omitempty"`
	Cost              factory.MoneyJSON     `json:"cost"`
	Purpose           string                `json:"purpose"`
}

// ExpenseRequest adds an expense entry.
type ExpenseRequest struct {
	Description string            `json:"description"`
	Cost        factory.MoneyJSON `json:"cost"`
	CostDate    string            `json:"cost_date"` // RFC 3339
	Purpose     string            `json:"purpose"`
}

// DayFlagsRequest updates the caller-supplied flags of one day.
type DayFlagsRequest struct {
	Breakfast     *bool   `json:"breakfast,omitempty"`
	Lunch         *bool   `json:"lunch,omitempty"`
	Dinner        *bool   `json:"dinner,omitempty"`
	OvernightStay *bool   `json:"overnight_stay,omitempty"`
	Purpose       *string `json:"purpose,omitempty"`
}

// =============================================================================
// RESPONSE TYPES
// =============================================================================

// ConflictDTO is one blocking validation finding.
type ConflictDTO struct {
	Reason string   `json:"reason"`
	Paths  []string `json:"paths"`
}

// WarningDTO is one advisory finding.
type WarningDTO struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// TripResponse wraps a trip with its advisory warnings and the declared
// expense total.
type TripResponse struct {
	Trip          factory.TripJSON  `json:"trip"`
	Warnings      []WarningDTO      `json:"warnings"`
	TotalExpenses factory.MoneyJSON `json:"total_expenses"`
}

// ConflictResponse is returned with HTTP 409 when a mutation leaves the
// itinerary inconsistent. The trip was not saved as calculated.
type ConflictResponse struct {
	Conflicts []ConflictDTO `json:"conflicts"`
}

// ErrorResponse is the uniform error envelope.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

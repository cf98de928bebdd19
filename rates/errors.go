package rates

import (
	"errors"
	"fmt"
	"time"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrCountryNotFound is returned when the country lookup has no entry
	// for a requested code.
	ErrCountryNotFound = errors.New("country not found")

	// ErrNoApplicableRate is returned when a country's rate history has no
	// entry valid on the requested date. This indicates a configuration
	// gap upstream, not a user input error; callers treat it as fatal for
	// the calculation.
	ErrNoApplicableRate = errors.New("no applicable rate for date")

	// ErrRedirectLoop is returned when following RatesRedirectTo exceeds
	// the depth bound, which only happens with cyclic country data.
	ErrRedirectLoop = errors.New("country rate redirect loop")
)

// =============================================================================
// STRUCTURED ERRORS - Carry resolution context
// =============================================================================

// NoApplicableRateError reports which country/date combination had no
// valid rate entry.
type NoApplicableRateError struct {
	Country string
	Date    time.Time
}

func (e *NoApplicableRateError) Error() string {
	return fmt.Sprintf("no applicable rate for %s on %s", e.Country, e.Date.Format("2006-01-02"))
}

func (e *NoApplicableRateError) Unwrap() error { return ErrNoApplicableRate }

// CountryNotFoundError reports a missing country table entry.
type CountryNotFoundError struct {
	Code string
}

func (e *CountryNotFoundError) Error() string {
	return fmt.Sprintf("country %q not found", e.Code)
}

func (e *CountryNotFoundError) Unwrap() error { return ErrCountryNotFound }

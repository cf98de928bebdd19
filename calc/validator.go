/*
validator.go - Itinerary validation

PURPOSE:
  Pure checks over a trip's stage list. Two blocking checks (overlapping
  stage intervals, geographically discontinuous itineraries) and two
  advisory checks (short trip, low professional share).

COMPLEXITY:
  Overlap detection compares every unordered stage pair, which is
  quadratic. Trip stage counts are small, and the pairwise form keeps the
  containment/partial classification exhaustive.

SEE ALSO:
  - conflicts.go: Conflict and Warning types
  - calculator.go: Runs validation before any derivation
*/
package calc

import (
	"fmt"
	"time"

	"github.com/warp/travel-engine/trip"
)

// Validator checks itinerary consistency. It is pure and side-effect-free
// and may run concurrently across distinct trips.
type Validator struct {
	settings Settings
}

func NewValidator(settings Settings) *Validator {
	return &Validator{settings: settings}
}

// Validate runs all blocking checks. Stages must already be sorted by
// departure. An empty result means the itinerary is consistent.
func (v *Validator) Validate(t *trip.Trip) []Conflict {
	var conflicts []Conflict
	conflicts = append(conflicts, v.validateDates(t)...)
	conflicts = append(conflicts, v.validateCountries(t)...)
	return conflicts
}

// validateDates flags every pair of stages whose travel intervals
// overlap. Touching endpoints (one stage arriving exactly when the next
// departs) are not an overlap.
func (v *Validator) validateDates(t *trip.Trip) []Conflict {
	var conflicts []Conflict
	for i := 0; i < len(t.Stages); i++ {
		for j := i + 1; j < len(t.Stages); j++ {
			if c := classifyOverlap(i, j, t.Stages[i], t.Stages[j]); c != nil {
				conflicts = append(conflicts, *c)
			}
		}
	}
	return conflicts
}

// classifyOverlap compares two stage intervals. Stage a departs no later
// than stage b (sorted order). Returns nil when the intervals are
// disjoint, a containment conflict naming all four endpoints, or a
// partial-overlap conflict naming the two offending endpoints.
func classifyOverlap(i, j int, a, b *trip.Stage) *Conflict {
	if !b.Departure.Before(a.Arrival) {
		return nil // disjoint or back-to-back
	}
	if !b.Arrival.After(a.Arrival) {
		// b lies entirely inside a
		return &Conflict{
			Reason: ReasonStagesOverlap,
			Paths: []string{
				StageField(i, "departure"), StageField(i, "arrival"),
				StageField(j, "departure"), StageField(j, "arrival"),
			},
		}
	}
	// b departs before a arrives and outlasts it
	return &Conflict{
		Reason: ReasonStagesOverlap,
		Paths:  []string{StageField(i, "arrival"), StageField(j, "departure")},
	}
}

// validateCountries requires the itinerary to be geographically
// continuous: each stage must start in the country the previous one
// ended in.
func (v *Validator) validateCountries(t *trip.Trip) []Conflict {
	var conflicts []Conflict
	for i := 0; i+1 < len(t.Stages); i++ {
		prev, next := t.Stages[i], t.Stages[i+1]
		if prev.End.Country != next.Start.Country {
			conflicts = append(conflicts, Conflict{
				Reason: ReasonCountryDiscontinuity,
				Paths: []string{
					StageField(i, "end.country"),
					StageField(i+1, "start.country"),
				},
			})
		}
	}
	return conflicts
}

// Check runs the advisory checks. The professional share warning relies
// on the trip's derived ProfessionalShare field and is skipped until a
// calculation has produced one.
func (v *Validator) Check(t *trip.Trip) []Warning {
	var warnings []Warning

	if min := v.settings.MinHoursOfTravel; min > 0 && len(t.Stages) > 0 {
		if t.TotalElapsed() < time.Duration(min)*time.Hour {
			warnings = append(warnings, Warning{
				Kind:    WarnShortTrip,
				Message: fmt.Sprintf("trip is shorter than %d hours", min),
			})
		}
	}

	if t.ProfessionalShare != nil && *t.ProfessionalShare < v.settings.MinProfessionalShare {
		warnings = append(warnings, Warning{
			Kind: WarnLowProfessionalShare,
			Message: fmt.Sprintf("professional share %.0f%% is below the required %.0f%%",
				*t.ProfessionalShare*100, v.settings.MinProfessionalShare*100),
		})
	}

	return warnings
}

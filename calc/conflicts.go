package calc

import "fmt"

// =============================================================================
// CONFLICTS - Blocking validation findings, returned as data
// =============================================================================

// ConflictReason is a machine-readable reason code for a blocking
// itinerary conflict.
type ConflictReason string

const (
	// ReasonStagesOverlap marks two stages whose time intervals overlap,
	// fully or partially.
	ReasonStagesOverlap ConflictReason = "stages_overlap"

	// ReasonCountryDiscontinuity marks adjacent stages where one ends in
	// a different country than the next one starts in.
	ReasonCountryDiscontinuity ConflictReason = "country_discontinuity"
)

// Conflict is a blocking validation finding. Paths name the exact inputs
// at fault (e.g. "stages.0.arrival") so a caller can highlight them.
// Conflicts are returned as data, never as errors, and suppress all
// derived-field writes.
type Conflict struct {
	Reason ConflictReason
	Paths  []string
}

// StageField builds the field path for stage i's field, matching the
// wire representation of a trip ("stages.2.departure").
func StageField(i int, field string) string {
	return fmt.Sprintf("stages.%d.%s", i, field)
}

// =============================================================================
// WARNINGS - Advisory findings, never blocking
// =============================================================================

type WarningKind string

const (
	WarnShortTrip            WarningKind = "short_trip"
	WarnLowProfessionalShare WarningKind = "low_professional_share"
)

// Warning is an advisory finding. Warnings inform the traveler but never
// block calculation or persistence.
type Warning struct {
	Kind    WarningKind
	Message string
}

package trip

import "time"

// =============================================================================
// DAY-GRANULAR TIME - All calculation runs on UTC calendar days
// =============================================================================

// DayOf truncates an instant to its UTC calendar day (midnight).
// Day identity throughout the engine is the midnight instant returned here.
func DayOf(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// EndOfDay returns the last represented instant of the day containing t:
// 23:59:59.999. Border-crossing events are matched against this instant,
// so a crossing at any point during the day counts for that day.
func EndOfDay(t time.Time) time.Time {
	return DayOf(t).Add(24*time.Hour - time.Millisecond)
}

// NextMidnight returns the first midnight strictly after the day containing t.
func NextMidnight(t time.Time) time.Time {
	return DayOf(t).AddDate(0, 0, 1)
}

// DaysBetween returns the number of calendar-day boundaries between two
// instants. Same day yields 0, adjacent days 1, regardless of clock times.
func DaysBetween(from, to time.Time) int {
	return int(DayOf(to).Sub(DayOf(from)).Hours() / 24)
}

// MidnightsSpanned returns how many midnights an interval crosses.
func MidnightsSpanned(from, to time.Time) int {
	return DaysBetween(from, to)
}

// DaySpan returns every calendar day from the day of from to the day of to,
// inclusive, as midnight instants.
func DaySpan(from, to time.Time) []time.Time {
	var days []time.Time
	for d := DayOf(from); !d.After(DayOf(to)); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}

// SameDay reports whether two instants fall on the same UTC calendar day.
func SameDay(a, b time.Time) bool {
	return DayOf(a).Equal(DayOf(b))
}

package validator

import "fleetdesk/pkg/model"

// Overlaps reports whether two schedules conflict: identical calendar
// date and intersecting [startTime, endTime) windows. The intervals are
// half-open, so back-to-back bookings do not overlap. Lexicographic
// comparison is valid because times are fixed-width HH:mm strings.
func Overlaps(existing, candidate *model.Schedule) bool {
	if !sameDate(existing.Date, candidate.Date) {
		return false
	}
	return existing.StartTime < candidate.EndTime && existing.EndTime > candidate.StartTime
}

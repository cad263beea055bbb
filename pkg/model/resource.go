package model

// Availability is the scheduling view of a driver or professional: the
// daily working window plus the weekdays the resource works at all.
// The booking validator consumes only this projection.
type Availability struct {
	StartTime  string
	EndTime    string
	ActiveDays []string
}

// ActiveOn reports whether day is one of the resource's active weekdays.
// Matching is exact and case-sensitive; an empty set is never active.
func (a Availability) ActiveOn(day string) bool {
	for _, d := range a.ActiveDays {
		if d == day {
			return true
		}
	}
	return false
}

// Covers reports whether the candidate window lies entirely inside the
// working window. Both bounds are inclusive: a booking may start exactly
// at StartTime and end exactly at EndTime. Lexicographic comparison is
// valid because times are fixed-width zero-padded HH:mm strings.
func (a Availability) Covers(start, end string) bool {
	return a.StartTime <= start && a.EndTime >= end
}

package model

import (
	"time"
)

const (
	StatusPending   = "Pending"
	StatusCompleted = "Completed"
	StatusCancelled = "Cancelled"
)

// Weekdays holds the canonical day names; availability matching is
// case-sensitive against exactly these values.
var Weekdays = []string{
	"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday",
}

func IsValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Schedule is a booking of one professional and one driver for a client
// at a specific date and time window.
type Schedule struct {
	ID           string    `json:"id,omitempty" bson:"_id,omitempty"`
	Professional string    `json:"professional" bson:"professional"`
	Driver       string    `json:"driver" bson:"driver"`
	ClientName   string    `json:"clientName" bson:"client_name"`
	Day          string    `json:"day" bson:"day"`
	Date         time.Time `json:"date" bson:"date"`
	StartTime    string    `json:"startTime" bson:"start_time"`
	EndTime      string    `json:"endTime" bson:"end_time"`
	Destination  string    `json:"destination,omitempty" bson:"destination,omitempty"`
	Description  string    `json:"description,omitempty" bson:"description,omitempty"`
	Service      string    `json:"service,omitempty" bson:"service,omitempty"`
	Status       string    `json:"status" bson:"status"`
	CreatedAt    time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt    time.Time `json:"updated_at,omitempty" bson:"updated_at,omitempty"`
}

// ScheduleInput is the request body for creating or replacing a schedule.
// Date stays a string until the validation pipeline parses it; Day is
// advisory only and always recomputed from Date server-side.
type ScheduleInput struct {
	Professional string `json:"professional"`
	Driver       string `json:"driver"`
	ClientName   string `json:"clientName"`
	Day          string `json:"day,omitempty"`
	Date         string `json:"date"`
	StartTime    string `json:"startTime"`
	EndTime      string `json:"endTime"`
	Destination  string `json:"destination,omitempty"`
	Description  string `json:"description,omitempty"`
	Service      string `json:"service,omitempty"`
	Status       string `json:"status,omitempty"`
}

// SameSlot reports whether two schedules occupy the identical
// professional+driver+date+window coordinates.
func (s *Schedule) SameSlot(other *Schedule) bool {
	return s.Professional == other.Professional &&
		s.Driver == other.Driver &&
		s.Date.Equal(other.Date) &&
		s.StartTime == other.StartTime &&
		s.EndTime == other.EndTime
}

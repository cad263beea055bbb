package model

import "time"

const (
	PriorityHigh   = "High"
	PriorityMedium = "Medium"
	PriorityLow    = "Low"
)

type Driver struct {
	ID              string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	FirstName       string    `json:"firstName" bson:"first_name" validate:"required,min=1,max=100"`
	LastName        string    `json:"lastName" bson:"last_name" validate:"required,min=1,max=100"`
	DateOfBirth     string    `json:"dateOfBirth" bson:"date_of_birth" validate:"required"`
	Email           string    `json:"email" bson:"email" validate:"required,email"`
	PhoneNo         string    `json:"phoneNo" bson:"phone_no" validate:"required,min=5,max=20"`
	Country         string    `json:"country" bson:"country" validate:"required,min=2,max=60"`
	BaseLocation    string    `json:"baseLocation" bson:"base_location" validate:"required,min=2,max=200"`
	VehicleCapacity int       `json:"vehicleCapacity" bson:"vehicle_capacity" validate:"required,min=1"`
	StartTime       string    `json:"startTime" bson:"start_time" validate:"required,hhmm"`
	EndTime         string    `json:"endTime" bson:"end_time" validate:"required,hhmm,after=StartTime"`
	BreakStartTime  string    `json:"breakStartTime" bson:"break_start_time" validate:"required,hhmm"`
	BreakEndTime    string    `json:"breakEndTime" bson:"break_end_time" validate:"required,hhmm,after=BreakStartTime"`
	Priority        string    `json:"priority" bson:"priority" validate:"required,oneof=High Medium Low"`
	ActiveDays      []string  `json:"activeDays" bson:"active_days" validate:"omitempty,max=7,dive,oneof=Monday Tuesday Wednesday Thursday Friday Saturday Sunday"`
	Photos          []string  `json:"photos,omitempty" bson:"photos,omitempty" validate:"omitempty,dive,url"`
	CreatedAt       time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
	UpdatedAt       time.Time `json:"updated_at,omitempty" bson:"updated_at,omitempty" validate:"omitempty"`
}

func (d *Driver) Availability() Availability {
	return Availability{
		StartTime:  d.StartTime,
		EndTime:    d.EndTime,
		ActiveDays: d.ActiveDays,
	}
}

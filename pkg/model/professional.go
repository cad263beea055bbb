package model

import "time"

type Professional struct {
	ID                   string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	FirstName            string    `json:"firstName" bson:"first_name" validate:"required,min=1,max=100"`
	LastName             string    `json:"lastName" bson:"last_name" validate:"required,min=1,max=100"`
	DateOfBirth          string    `json:"dateOfBirth" bson:"date_of_birth" validate:"required"`
	Email                string    `json:"email" bson:"email" validate:"required,email"`
	Phone                string    `json:"phone" bson:"phone" validate:"required,min=5,max=20"`
	Country              string    `json:"country" bson:"country" validate:"required,min=2,max=60"`
	Language             string    `json:"language" bson:"language" validate:"required,min=2,max=60"`
	Address              string    `json:"address" bson:"address" validate:"required,min=2,max=200"`
	Location             string    `json:"location" bson:"location" validate:"required,min=2,max=200"`
	Qualification        string    `json:"qualification" bson:"qualification" validate:"required,min=2,max=200"`
	YearsOfExperience    int       `json:"yearsOfExperience" bson:"years_of_experience" validate:"min=0,max=80"`
	Certification        string    `json:"certification" bson:"certification" validate:"required,min=2,max=200"`
	Skills               []string  `json:"skills" bson:"skills" validate:"required,min=1,dive,min=1,max=100"`
	Bio                  string    `json:"bio" bson:"bio" validate:"required,min=2,max=1000"`
	Services             string    `json:"services" bson:"services" validate:"required,min=2,max=200"`
	StartTime            string    `json:"startTime" bson:"start_time" validate:"required,hhmm"`
	EndTime              string    `json:"endTime" bson:"end_time" validate:"required,hhmm,after=StartTime"`
	ActiveForNightShifts bool      `json:"activeForNightShifts" bson:"active_for_night_shifts"`
	ActiveDays           []string  `json:"activeDays" bson:"active_days" validate:"omitempty,max=7,dive,oneof=Monday Tuesday Wednesday Thursday Friday Saturday Sunday"`
	Gender               string    `json:"gender" bson:"gender" validate:"required,min=1,max=30"`
	Avatar               string    `json:"avatar,omitempty" bson:"avatar,omitempty" validate:"omitempty,url"`
	CreatedAt            time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
	UpdatedAt            time.Time `json:"updated_at,omitempty" bson:"updated_at,omitempty" validate:"omitempty"`
}

func (p *Professional) Availability() Availability {
	return Availability{
		StartTime:  p.StartTime,
		EndTime:    p.EndTime,
		ActiveDays: p.ActiveDays,
	}
}

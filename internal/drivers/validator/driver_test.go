package validator

import (
	"strings"
	"testing"

	"fleetdesk/pkg/logger"
	"fleetdesk/pkg/model"
)

func validDriver() *model.Driver {
	return &model.Driver{
		FirstName:       "Maya",
		LastName:        "Okafor",
		DateOfBirth:     "1990-04-12",
		Email:           "maya.okafor@example.com",
		PhoneNo:         "+31612345678",
		Country:         "Netherlands",
		BaseLocation:    "Rotterdam depot",
		VehicleCapacity: 4,
		StartTime:       "08:00",
		EndTime:         "17:00",
		BreakStartTime:  "12:00",
		BreakEndTime:    "12:30",
		Priority:        model.PriorityMedium,
		ActiveDays:      []string{"Monday", "Tuesday", "Wednesday"},
	}
}

func TestDriverValidator(t *testing.T) {
	v := NewDriverValidator(logger.New(logger.Config{Level: "error", Format: logger.JSON, Service: "test"}))

	tests := []struct {
		name        string
		mutate      func(*model.Driver)
		wantField   string
		wantMessage string
	}{
		{
			name:   "valid driver",
			mutate: func(d *model.Driver) {},
		},
		{
			name: "full day window",
			mutate: func(d *model.Driver) {
				d.StartTime = "00:00"
				d.EndTime = "23:59"
			},
		},
		{
			name: "one minute window",
			mutate: func(d *model.Driver) {
				d.StartTime = "09:00"
				d.EndTime = "09:01"
			},
		},
		{
			name: "end time equals start time",
			mutate: func(d *model.Driver) {
				d.StartTime = "09:00"
				d.EndTime = "09:00"
			},
			wantField:   "EndTime",
			wantMessage: "must be after StartTime",
		},
		{
			name: "break end equals break start",
			mutate: func(d *model.Driver) {
				d.BreakStartTime = "12:00"
				d.BreakEndTime = "12:00"
			},
			wantField:   "BreakEndTime",
			wantMessage: "must be after BreakStartTime",
		},
		{
			name:        "missing first name",
			mutate:      func(d *model.Driver) { d.FirstName = "" },
			wantField:   "FirstName",
			wantMessage: "is required",
		},
		{
			name:        "invalid email",
			mutate:      func(d *model.Driver) { d.Email = "not-an-email" },
			wantField:   "Email",
			wantMessage: "valid email",
		},
		{
			name:        "start time missing leading zero",
			mutate:      func(d *model.Driver) { d.StartTime = "8:00" },
			wantField:   "StartTime",
			wantMessage: "HH:mm",
		},
		{
			name:        "end time hour out of range",
			mutate:      func(d *model.Driver) { d.EndTime = "24:00" },
			wantField:   "EndTime",
			wantMessage: "HH:mm",
		},
		{
			name: "end time before start time",
			mutate: func(d *model.Driver) {
				d.StartTime = "17:00"
				d.EndTime = "08:00"
			},
			wantField:   "EndTime",
			wantMessage: "must be after StartTime",
		},
		{
			name:        "unknown priority",
			mutate:      func(d *model.Driver) { d.Priority = "Urgent" },
			wantField:   "Priority",
			wantMessage: "must be one of",
		},
		{
			name:        "unknown active day",
			mutate:      func(d *model.Driver) { d.ActiveDays = []string{"Monday", "Funday"} },
			wantField:   "ActiveDays[1]",
			wantMessage: "must be one of",
		},
		{
			name:        "zero vehicle capacity",
			mutate:      func(d *model.Driver) { d.VehicleCapacity = 0 },
			wantField:   "VehicleCapacity",
			wantMessage: "is required",
		},
		{
			name:        "malformed photo url",
			mutate:      func(d *model.Driver) { d.Photos = []string{"not a url"} },
			wantField:   "Photos[0]",
			wantMessage: "valid URL",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			driver := validDriver()
			tt.mutate(driver)

			err := v.Validate(driver)
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("expected valid driver, got %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("expected validation error on %s", tt.wantField)
			}

			verrs, ok := err.(ValidationErrors)
			if !ok {
				t.Fatalf("expected ValidationErrors, got %T: %v", err, err)
			}

			found := false
			for _, verr := range verrs {
				if verr.Field == tt.wantField {
					found = true
					if !strings.Contains(verr.Message, tt.wantMessage) {
						t.Errorf("expected message containing %q, got %q", tt.wantMessage, verr.Message)
					}
				}
			}
			if !found {
				t.Errorf("expected error on field %s, got %v", tt.wantField, verrs)
			}
		})
	}
}

func TestValidateHHMM_Boundaries(t *testing.T) {
	tests := []struct {
		value string
		want  bool
	}{
		{"00:00", true},
		{"23:59", true},
		{"09:30", true},
		{"24:00", false},
		{"12:60", false},
		{"9:30", false},
		{"0930", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := hhmmRegex.MatchString(tt.value); got != tt.want {
			t.Errorf("hhmm %q: expected %v, got %v", tt.value, tt.want, got)
		}
	}
}

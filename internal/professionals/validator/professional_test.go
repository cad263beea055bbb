package validator

import (
	"strings"
	"testing"

	"fleetdesk/pkg/logger"
	"fleetdesk/pkg/model"
)

func validProfessional() *model.Professional {
	return &model.Professional{
		FirstName:         "Elena",
		LastName:          "Petrova",
		DateOfBirth:       "1988-09-01",
		Email:             "elena.petrova@example.com",
		Phone:             "+31687654321",
		Country:           "Netherlands",
		Language:          "Dutch",
		Address:           "Keizersgracht 12",
		Location:          "Amsterdam",
		Qualification:     "Registered nurse",
		YearsOfExperience: 9,
		Certification:     "BIG registration",
		Skills:            []string{"elderly care"},
		Bio:               "Home-care nurse covering the Amsterdam region.",
		Services:          "Home visits",
		StartTime:         "08:00",
		EndTime:           "16:00",
		Gender:            "female",
		ActiveDays:        []string{"Monday", "Thursday"},
	}
}

func TestProfessionalValidator(t *testing.T) {
	v := NewProfessionalValidator(logger.New(logger.Config{Level: "error", Format: logger.JSON, Service: "test"}))

	tests := []struct {
		name        string
		mutate      func(*model.Professional)
		wantField   string
		wantMessage string
	}{
		{
			name:   "valid professional",
			mutate: func(p *model.Professional) {},
		},
		{
			name: "night shift window",
			mutate: func(p *model.Professional) {
				p.StartTime = "00:00"
				p.EndTime = "23:59"
				p.ActiveForNightShifts = true
			},
		},
		{
			name: "end time equals start time",
			mutate: func(p *model.Professional) {
				p.StartTime = "08:00"
				p.EndTime = "08:00"
			},
			wantField:   "EndTime",
			wantMessage: "must be after StartTime",
		},
		{
			name: "end time before start time",
			mutate: func(p *model.Professional) {
				p.StartTime = "16:00"
				p.EndTime = "08:00"
			},
			wantField:   "EndTime",
			wantMessage: "must be after StartTime",
		},
		{
			name:        "missing skills",
			mutate:      func(p *model.Professional) { p.Skills = nil },
			wantField:   "Skills",
			wantMessage: "is required",
		},
		{
			name:        "malformed avatar url",
			mutate:      func(p *model.Professional) { p.Avatar = "not a url" },
			wantField:   "Avatar",
			wantMessage: "valid URL",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			professional := validProfessional()
			tt.mutate(professional)

			err := v.Validate(professional)
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("expected valid professional, got %v", err)
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

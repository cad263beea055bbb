package validator

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	apperrors "fleetdesk/pkg/errors"
	"fleetdesk/pkg/logger"
	"fleetdesk/pkg/model"
)

const (
	minClientNameLen  = 3
	maxDescriptionLen = 500
	maxServiceLen     = 100

	dateLayout = "2006-01-02"
)

var timeRegex = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)

// ResourceSnapshot is the immutable availability view of the two
// resources a candidate references, fetched once per request and passed
// through the rest of the pipeline.
type ResourceSnapshot struct {
	Driver       model.Availability
	Professional model.Availability
}

// BookingValidator runs the ordered acceptance pipeline for schedule
// creation and update. Checks run in a fixed order and the first
// failure wins; every check returns a typed rejection the handler maps
// straight onto the response.
type BookingValidator struct {
	log *logger.Logger
}

func NewBookingValidator(log *logger.Logger) *BookingValidator {
	return &BookingValidator{log: log}
}

// ValidateInput runs the input-only checks against the raw request body
// and, when all pass, returns the parsed candidate: date at midnight
// UTC, weekday derived from the date, status defaulted to Pending. Any
// caller-supplied day is ignored.
//
// allowPastDate exempts the no-past-date check; the service sets it for
// status-only updates of historical bookings when the policy flag
// permits.
func (v *BookingValidator) ValidateInput(input *model.ScheduleInput, allowPastDate bool) (*model.Schedule, *apperrors.AppError) {
	if input.Professional == "" || input.Driver == "" ||
		strings.TrimSpace(input.ClientName) == "" ||
		input.Date == "" || input.StartTime == "" || input.EndTime == "" {
		return nil, rejectInput(ReasonMissingFields,
			"professional, driver, clientName, date, startTime and endTime are required")
	}

	if utf8.RuneCountInString(strings.TrimSpace(input.ClientName)) < minClientNameLen {
		return nil, rejectInput(ReasonInvalidFieldLength,
			fmt.Sprintf("clientName must be at least %d characters", minClientNameLen))
	}
	if utf8.RuneCountInString(input.Description) > maxDescriptionLen {
		return nil, rejectInput(ReasonInvalidFieldLength,
			fmt.Sprintf("description must be at most %d characters", maxDescriptionLen))
	}
	if utf8.RuneCountInString(input.Service) > maxServiceLen {
		return nil, rejectInput(ReasonInvalidFieldLength,
			fmt.Sprintf("service must be at most %d characters", maxServiceLen))
	}

	status := input.Status
	if status == "" {
		status = model.StatusPending
	} else if !model.IsValidStatus(status) {
		return nil, rejectInput(ReasonInvalidStatus,
			fmt.Sprintf("status must be one of %s, %s or %s",
				model.StatusPending, model.StatusCompleted, model.StatusCancelled))
	}

	date, err := parseDate(input.Date)
	if err != nil {
		return nil, rejectInput(ReasonInvalidDate,
			fmt.Sprintf("date %q is not a valid calendar date", input.Date))
	}

	if !allowPastDate && date.Before(today()) {
		return nil, rejectInput(ReasonDateInPast, "date cannot be in the past")
	}

	if !timeRegex.MatchString(input.StartTime) || !timeRegex.MatchString(input.EndTime) {
		return nil, rejectInput(ReasonInvalidTimeFormat,
			"startTime and endTime must be HH:mm with hour 00-23 and minute 00-59")
	}

	if input.StartTime >= input.EndTime {
		return nil, rejectInput(ReasonTimeOrderInvalid, "startTime must be before endTime")
	}

	return &model.Schedule{
		Professional: input.Professional,
		Driver:       input.Driver,
		ClientName:   strings.TrimSpace(input.ClientName),
		Day:          date.Weekday().String(),
		Date:         date,
		StartTime:    input.StartTime,
		EndTime:      input.EndTime,
		Destination:  input.Destination,
		Description:  input.Description,
		Service:      input.Service,
		Status:       status,
	}, nil
}

// ValidateState runs the state-dependent checks against the resource
// snapshot and the same-day schedules read at request time. excludeID
// scopes the duplicate and overlap scans past the record being updated;
// it is empty on create.
func (v *BookingValidator) ValidateState(candidate *model.Schedule, excludeID string, res ResourceSnapshot, sameDay []*model.Schedule) *apperrors.AppError {
	if candidate.Professional == candidate.Driver {
		return rejectInput(ReasonSamePersonConflict,
			"professional and driver must be different people")
	}

	if !res.Driver.ActiveOn(candidate.Day) {
		return rejectConflict(ReasonDriverUnavailable,
			fmt.Sprintf("driver is not available on %s", candidate.Day))
	}
	if !res.Professional.ActiveOn(candidate.Day) {
		return rejectConflict(ReasonProfessionalUnavailable,
			fmt.Sprintf("professional is not available on %s", candidate.Day))
	}

	if !res.Driver.Covers(candidate.StartTime, candidate.EndTime) {
		return rejectConflict(ReasonOutsideDriverHours,
			fmt.Sprintf("booking window %s-%s is outside driver working hours %s-%s",
				candidate.StartTime, candidate.EndTime, res.Driver.StartTime, res.Driver.EndTime))
	}
	if !res.Professional.Covers(candidate.StartTime, candidate.EndTime) {
		return rejectConflict(ReasonOutsideProfessionalHours,
			fmt.Sprintf("booking window %s-%s is outside professional working hours %s-%s",
				candidate.StartTime, candidate.EndTime, res.Professional.StartTime, res.Professional.EndTime))
	}

	for _, existing := range sameDay {
		if existing.ID == excludeID {
			continue
		}
		if existing.SameSlot(candidate) {
			return rejectConflict(ReasonDuplicateBooking,
				"an identical booking already exists for this slot")
		}
	}

	for _, existing := range sameDay {
		if existing.ID == excludeID || existing.Status == model.StatusCancelled {
			continue
		}
		if existing.Driver == candidate.Driver && Overlaps(existing, candidate) {
			return rejectConflict(ReasonDriverDoubleBooked,
				fmt.Sprintf("driver already has a booking from %s to %s on this date",
					existing.StartTime, existing.EndTime))
		}
	}

	for _, existing := range sameDay {
		if existing.ID == excludeID || existing.Status == model.StatusCancelled {
			continue
		}
		if existing.Professional == candidate.Professional && Overlaps(existing, candidate) {
			return rejectConflict(ReasonProfessionalDoubleBooked,
				fmt.Sprintf("professional already has a booking from %s to %s on this date",
					existing.StartTime, existing.EndTime))
		}
	}

	return nil
}

// ResourceNotFound is the check-8 rejection; the service raises it when
// the directory cannot resolve either referenced id.
func ResourceNotFound(kind, id string) *apperrors.AppError {
	return rejectInput(ReasonResourceNotFound, fmt.Sprintf("%s %q does not exist", kind, id))
}

func parseDate(raw string) (time.Time, error) {
	if t, err := time.Parse(dateLayout, raw); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, err
	}
	return truncateToDay(t.UTC()), nil
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func today() time.Time {
	return truncateToDay(time.Now().UTC())
}

func sameDate(a, b time.Time) bool {
	return truncateToDay(a).Equal(truncateToDay(b))
}

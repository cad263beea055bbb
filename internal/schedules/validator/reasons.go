package validator

import (
	"net/http"

	apperrors "fleetdesk/pkg/errors"
)

// Rejection reason codes, surfaced to callers as the error code of the
// response body. Input problems map to 400, conflicts with existing
// state to 409.
const (
	ReasonMissingFields            = "MISSING_FIELDS"
	ReasonInvalidFieldLength       = "INVALID_FIELD_LENGTH"
	ReasonInvalidStatus            = "INVALID_STATUS"
	ReasonInvalidDate              = "INVALID_DATE"
	ReasonDateInPast               = "DATE_IN_PAST"
	ReasonInvalidTimeFormat        = "INVALID_TIME_FORMAT"
	ReasonTimeOrderInvalid         = "TIME_ORDER_INVALID"
	ReasonResourceNotFound         = "RESOURCE_NOT_FOUND"
	ReasonSamePersonConflict       = "SAME_PERSON_CONFLICT"
	ReasonDriverUnavailable        = "DRIVER_UNAVAILABLE"
	ReasonProfessionalUnavailable  = "PROFESSIONAL_UNAVAILABLE"
	ReasonOutsideDriverHours       = "OUTSIDE_DRIVER_HOURS"
	ReasonOutsideProfessionalHours = "OUTSIDE_PROFESSIONAL_HOURS"
	ReasonDuplicateBooking         = "DUPLICATE_BOOKING"
	ReasonDriverDoubleBooked       = "DRIVER_DOUBLE_BOOKED"
	ReasonProfessionalDoubleBooked = "PROFESSIONAL_DOUBLE_BOOKED"
)

func rejectInput(reason, message string) *apperrors.AppError {
	return apperrors.New(reason, message, http.StatusBadRequest)
}

func rejectConflict(reason, message string) *apperrors.AppError {
	return apperrors.New(reason, message, http.StatusConflict)
}

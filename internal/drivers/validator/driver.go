package validator

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"fleetdesk/pkg/logger"
	"fleetdesk/pkg/model"
)

var hhmmRegex = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return ""
	}
	var messages []string
	for _, err := range v {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %d error(s): [%s]", len(v), strings.Join(messages, "; "))
}

type DriverValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewDriverValidator(log *logger.Logger) *DriverValidator {
	v := validator.New()

	if err := v.RegisterValidation("hhmm", ValidateHHMM); err != nil {
		log.Fatal("Failed to register 'hhmm' validator", "error", err)
	}
	if err := v.RegisterValidation("after", ValidateAfterField); err != nil {
		log.Fatal("Failed to register 'after' validator", "error", err)
	}

	return &DriverValidator{
		validate: v,
		logger:   log,
	}
}

// ValidateHHMM accepts zero-padded wall-clock times, hour 00-23 and
// minute 00-59.
func ValidateHHMM(fl validator.FieldLevel) bool {
	return hhmmRegex.MatchString(fl.Field().String())
}

// ValidateAfterField compares the field against the sibling named in the
// tag parameter. The lexicographic compare is only sound for zero-padded
// HH:mm strings, which the hhmm tag enforces on both fields.
func ValidateAfterField(fl validator.FieldLevel) bool {
	other := fl.Parent().FieldByName(fl.Param())
	if !other.IsValid() || other.Kind() != reflect.String {
		return false
	}
	return fl.Field().String() > other.String()
}

func (v *DriverValidator) Validate(driver *model.Driver) error {
	if err := v.validate.Struct(driver); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return translateValidationErrors(validationErrs)
		}
		return err
	}
	return nil
}

func translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
	var validationErrors ValidationErrors

	for _, err := range errs {
		message := err.Error()

		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", err.Field())
		case "min":
			message = fmt.Sprintf("%s must be at least %s", err.Field(), err.Param())
		case "max":
			message = fmt.Sprintf("%s must be at most %s", err.Field(), err.Param())
		case "email":
			message = fmt.Sprintf("%s must be a valid email address", err.Field())
		case "mongodb":
			message = fmt.Sprintf("%s must be a valid MongoDB ObjectID", err.Field())
		case "oneof":
			message = fmt.Sprintf("%s must be one of: %s", err.Field(), err.Param())
		case "hhmm":
			message = fmt.Sprintf("%s must be a HH:mm time between 00:00 and 23:59", err.Field())
		case "after":
			message = fmt.Sprintf("%s must be after %s", err.Field(), err.Param())
		case "url":
			message = fmt.Sprintf("%s must be a valid URL", err.Field())
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field(),
			Message: message,
		})
	}

	return validationErrors
}

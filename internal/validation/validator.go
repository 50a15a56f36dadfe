// Package validation validates admin request payloads.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"

	"adminhub/internal/models"

	"github.com/go-playground/validator/v10"
)

var (
	once     sync.Once
	validate *validator.Validate
)

func instance() *validator.Validate {
	once.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return f.Name
			}
			return name
		})

		_ = v.RegisterValidation("event_status", validateEventStatus)
		_ = v.RegisterValidation("post_type", validatePostType)
		_ = v.RegisterValidation("media_type", validateMediaType)
		_ = v.RegisterValidation("report_target", validateReportTarget)
		_ = v.RegisterValidation("report_action", validateReportAction)
		_ = v.RegisterValidation("audience", validateAudience)
		validate = v
	})
	return validate
}

// Struct validates s and converts failures into a VALIDATION_ERROR AppError
// listing every offending field.
func Struct(s any) error {
	err := instance().Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return models.NewValidationError(err.Error())
	}

	messages := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		messages = append(messages, describe(fe))
	}
	sort.Strings(messages)
	return models.NewValidationError(strings.Join(messages, "; "))
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "max":
		return fmt.Sprintf("%s must not exceed %s characters", fe.Field(), fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", fe.Field(), fe.Param())
	case "email":
		return fmt.Sprintf("%s must be a valid email address", fe.Field())
	case "latitude", "longitude":
		return fmt.Sprintf("%s must be a valid %s", fe.Field(), fe.Tag())
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}

func validateEventStatus(fl validator.FieldLevel) bool {
	switch models.EventStatus(fl.Field().String()) {
	case models.EventStatusPending, models.EventStatusApproved, models.EventStatusRejected:
		return true
	}
	return false
}

func validatePostType(fl validator.FieldLevel) bool {
	return models.IsValidPostType(fl.Field().String())
}

func validateMediaType(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case models.MediaTypeNone, models.MediaTypeImage, models.MediaTypeVideo:
		return true
	}
	return false
}

func validateReportTarget(fl validator.FieldLevel) bool {
	return models.IsValidReportTarget(fl.Field().String())
}

func validateReportAction(fl validator.FieldLevel) bool {
	return models.IsValidReportAction(fl.Field().String())
}

func validateAudience(fl validator.FieldLevel) bool {
	return models.IsValidAudience(fl.Field().String())
}

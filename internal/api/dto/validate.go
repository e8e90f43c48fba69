package dto

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/spec-kit/helpdesk/internal/domain"
	apperrors "github.com/spec-kit/helpdesk/pkg/util/errorutil"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	mustRegister(v, "phone", func(fl validator.FieldLevel) bool {
		return domain.PhonePattern.MatchString(strings.TrimSpace(fl.Field().String()))
	})
	mustRegister(v, "ticket_status", func(fl validator.FieldLevel) bool {
		_, ok := domain.ParseTicketStatus(fl.Field().String())
		return ok
	})
	return v
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("dto: register validation %q: %v", tag, err))
	}
}

// Validate checks the struct tags of a request payload. Failures come back as a
// VALIDATION_FAILED error with one message per offending field.
func Validate(payload any) error {
	err := validate.Struct(payload)
	if err == nil {
		return nil
	}
	var verr validator.ValidationErrors
	if !errors.As(err, &verr) {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	details := make(map[string]any, len(verr))
	for _, fe := range verr {
		field := fe.Field()
		var msg string
		switch fe.Tag() {
		case "required":
			msg = fmt.Sprintf("%s is required", field)
		case "min":
			msg = fmt.Sprintf("%s must not be empty", field)
		case "max":
			msg = fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
		case "gte":
			msg = fmt.Sprintf("%s must be at least %s", field, fe.Param())
		case "gt":
			msg = fmt.Sprintf("%s must be greater than %s", field, fe.Param())
		case "phone":
			msg = fmt.Sprintf("%s must be an optional + followed by 7 to 15 digits", field)
		case "ticket_status":
			msg = fmt.Sprintf("%s must be one of %s", field, statusList())
		default:
			msg = fmt.Sprintf("%s is invalid", field)
		}
		details[field] = msg
	}
	return apperrors.NewValidationError("invalid payload", details)
}

func statusList() string {
	names := make([]string, 0, len(domain.TicketStatuses))
	for _, s := range domain.TicketStatuses {
		names = append(names, string(s))
	}
	return strings.Join(names, ", ")
}

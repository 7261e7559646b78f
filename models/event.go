package models

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// RedirectEvent is the payload of POST /events. Only Code is kept after
// ingestion; the other fields are validated and dropped.
type RedirectEvent struct {
	Code      string  `json:"code" validate:"required,min=1,max=64"`
	TS        *int64  `json:"ts,omitempty"`
	UserAgent *string `json:"user_agent,omitempty" validate:"omitempty,max=256"`
	Referrer  *string `json:"referrer,omitempty" validate:"omitempty,http_url"`
}

// ValidationError reports the first field that failed validation.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

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
	return v
}

// Validate checks the event against its field rules and returns a
// *ValidationError describing the first failure.
func (e RedirectEvent) Validate() error {
	err := validate.Struct(e)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return &ValidationError{Field: fe.Field(), Reason: reason(fe)}
	}
	return &ValidationError{Field: "body", Reason: err.Error()}
}

func reason(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "required"
	case "min":
		return "too_short"
	case "max":
		return "too_long"
	case "http_url":
		return "not_http_url"
	default:
		return fe.Tag()
	}
}

// ValidCode reports whether code has between 1 and 64 characters.
func ValidCode(code string) bool {
	return validate.Var(code, "required,min=1,max=64") == nil
}

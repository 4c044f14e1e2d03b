// Package validator holds the process-wide request validator. It is
// initialized once at startup; request DTOs call ValidateRequest from
// their Validate methods.
package validator

import (
	"github.com/go-playground/validator/v10"

	ierr "github.com/mailbeam/billing/internal/errors"
)

var validate *validator.Validate

// NewValidator builds the shared validator instance.
func NewValidator() *validator.Validate {
	validate = validator.New()
	return validate
}

// ValidateRequest runs struct-tag validation and converts failures into
// a validation error carrying a per-field detail map.
func ValidateRequest(req interface{}) error {
	if validate == nil {
		return ierr.NewError("validator not initialized").
			WithHint("Validator must be initialized before using it").
			Mark(ierr.ErrSystem)
	}

	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	details := make(map[string]any)
	var fieldErrs validator.ValidationErrors
	if ierr.As(err, &fieldErrs) {
		for _, fe := range fieldErrs {
			details[fe.Field()] = fe.Error()
		}
	}
	return ierr.WithError(err).
		WithHint("Request validation failed").
		WithReportableDetails(details).
		Mark(ierr.ErrValidation)
}

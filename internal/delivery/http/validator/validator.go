// Package validator adapts go-playground/validator to Echo's Validator interface.
package validator

import (
	domainerrors "permitdesk/internal/domain/errors"

	"github.com/go-playground/validator/v10"
)

// requestValidator wraps a shared validator instance for request payloads.
type requestValidator struct {
	validate *validator.Validate
}

// New creates the Echo request validator.
func New() *requestValidator {
	return &requestValidator{
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// Validate implements echo.Validator. Violations surface as the shared
// validation error so the error handler renders a consistent 400 payload.
func (v *requestValidator) Validate(i any) error {
	if err := v.validate.Struct(i); err != nil {
		return domainerrors.ErrValidationFailed.WithDetails(err.Error())
	}

	return nil
}

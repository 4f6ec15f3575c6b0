package handler

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
)

// NewValidator returns the validator used for form structs.
func NewValidator() *validator.Validate {
	return validator.New(validator.WithRequiredStructEnabled())
}

// ValidationDetails turns a validation error into a short "field: rule" list
// suitable as toast details.
func ValidationDetails(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return ""
	}

	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		parts = append(parts, strings.ToLower(fe.Field())+": "+fe.Tag())
	}

	return strings.Join(parts, ", ")
}

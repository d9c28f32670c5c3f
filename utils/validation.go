package utils

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/upb/ops-console/internal/auth"
)

var (
	// validate is the singleton validator instance
	validate *validator.Validate

	viewIDRegex = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]*$`)
)

func init() {
	validate = validator.New()
	_ = validate.RegisterValidation("role", validateRole)
	_ = validate.RegisterValidation("view_id", func(fl validator.FieldLevel) bool {
		return viewIDRegex.MatchString(fl.Field().String())
	})
}

// validateRole accepts auth.Role values and role names inside the closed role set.
func validateRole(fl validator.FieldLevel) bool {
	switch v := fl.Field().Interface().(type) {
	case auth.Role:
		return v.Valid()
	case string:
		_, err := auth.ParseRole(v)
		return err == nil
	}
	return false
}

// ValidateStruct validates a struct using go-playground/validator
func ValidateStruct(s interface{}) error {
	if err := validate.Struct(s); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			return NewValidationError(validationErrors)
		}
		return err
	}
	return nil
}

// ValidationError wraps validation errors with structured details
type ValidationError struct {
	Message string
	Fields  map[string]string
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError creates a ValidationError from validator.ValidationErrors
func NewValidationError(errs validator.ValidationErrors) *ValidationError {
	fields := make(map[string]string)
	for _, err := range errs {
		field := err.Field()

		switch err.Tag() {
		case "required":
			fields[field] = fmt.Sprintf("%s is required", field)
		case "email":
			fields[field] = fmt.Sprintf("%s must be a valid email", field)
		case "role":
			fields[field] = fmt.Sprintf("%s must be one of: %v", field, auth.Roles())
		default:
			fields[field] = fmt.Sprintf("%s validation failed on '%s' tag", field, err.Tag())
		}
	}

	return &ValidationError{
		Message: "Validation failed",
		Fields:  fields,
	}
}

// IsValidationError checks if an error is a ValidationError
func IsValidationError(err error) bool {
	var validationErr *ValidationError
	return errors.As(err, &validationErr)
}

// GetValidationFields extracts field errors from a ValidationError
func GetValidationFields(err error) map[string]string {
	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		return validationErr.Fields
	}
	return nil
}

// ValidateUUID validates an identifier taken from a request path
func ValidateUUID(s string) error {
	if _, err := uuid.Parse(s); err != nil {
		return fmt.Errorf("invalid UUID format: %s", s)
	}
	return nil
}

// ValidateViewID validates a view identifier taken from a request path.
func ValidateViewID(view string) error {
	if err := validate.Var(view, "required,max=64,view_id"); err != nil {
		return fmt.Errorf("invalid view identifier: %q", view)
	}
	return nil
}

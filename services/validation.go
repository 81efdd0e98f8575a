package services

import (
	"errors"
	"fmt"
	"net/mail"
	"strings"
)

// ValidationError is a user-facing input problem. Handlers render it as a 400 toast.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// IsValidationError reports whether err wraps a ValidationError
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

func requireField(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return NewValidationError(field, "is required")
	}
	return nil
}

func validateEmail(email string) error {
	if err := requireField("email", email); err != nil {
		return err
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return NewValidationError("email", "is not a valid email address")
	}
	return nil
}

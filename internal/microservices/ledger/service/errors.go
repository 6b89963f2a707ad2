package service

import (
	"errors"
	"fmt"
)

// ValidationError reports input the ledger refuses to accept.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

func invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// IsValidation separates bad input from infrastructure failures.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

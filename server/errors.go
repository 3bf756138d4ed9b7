package server

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when a requested document does not exist
var ErrNotFound = errors.New("not found")

// ErrAlreadyExists is returned when creating an allow-list entry whose id is taken
var ErrAlreadyExists = errors.New("already exists")

// ValidationError reports a missing or empty required field. Requests
// rejected with it have produced no side effects.
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("missing required field: %s", e.Field)
}

// IsValidation reports whether err is a ValidationError
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

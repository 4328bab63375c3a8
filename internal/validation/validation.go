package validation

import (
	"errors"
	"fmt"
)

// ErrInvalid is the sentinel every *Error unwraps to.
var ErrInvalid = errors.New("invalid input")

// Error reports malformed input for a single field.
type Error struct {
	Field   string
	Message string
}

func New(field, message string) *Error {
	return &Error{Field: field, Message: message}
}

func (e *Error) Error() string {
	if e.Field == "" {
		return e.Message
	}

	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *Error) Unwrap() error {
	return ErrInvalid
}

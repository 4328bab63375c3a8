package invoice

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	ErrNotFound       = errors.New("invoice not found")
	ErrInvalidState   = errors.New("invalid invoice state")
	ErrMissingClient  = errors.New("invoice has no client")
	ErrEmptyInvoice   = errors.New("invoice has no items")
	ErrIssuanceFailed = errors.New("invoice issuance failed")
)

// StateError is returned when an operation is not allowed in the invoice's current status.
type StateError struct {
	ID     uuid.UUID
	Status Status
	Op     string
}

func (e *StateError) Error() string {
	return fmt.Sprintf("cannot %s invoice %s in status %s", e.Op, e.ID, e.Status)
}

func (e *StateError) Unwrap() error {
	return ErrInvalidState
}

package numbering

import (
	"errors"
	"fmt"
	"strings"
)

// Width is the number of digits of a formatted invoice number.
const Width = 8

var (
	ErrAllocationFailed = errors.New("invoice number allocation failed")
	ErrConflict         = errors.New("counter update conflict")
	ErrInvalidPOS       = errors.New("invalid point of sale")
)

// Format renders n as a zero-padded invoice number, e.g. 42 -> "00000042".
func Format(n int64) string {
	return fmt.Sprintf("%0*d", Width, n)
}

// ValidatePOS checks that pos is a non-empty code of at most five digits.
func ValidatePOS(pos string) error {
	if pos == "" || len(pos) > 5 || strings.Trim(pos, "0123456789") != "" {
		return fmt.Errorf("%w: %q", ErrInvalidPOS, pos)
	}

	return nil
}

package booking

import (
	"errors"
	"fmt"
	"strings"
)

// Domain failures. The transport layer maps these onto user-facing messages;
// this package never formats user-visible text.
var (
	// ErrNotFound covers a missing hotel, room category or booking. A cancel
	// attempt by a non-owner also reports ErrNotFound so that the existence
	// of another user's booking is not leaked.
	ErrNotFound = errors.New("not found")

	// ErrInvalidRange means check-in is not strictly before check-out, or
	// the dates could not be parsed at all.
	ErrInvalidRange = errors.New("check-in must be before check-out")

	// ErrConflict means the candidate range overlaps one of the user's
	// active bookings.
	ErrConflict = errors.New("overlaps an existing booking")

	// ErrInvalidPayload means a structured submission carried identifiers
	// that could not be coerced to integers.
	ErrInvalidPayload = errors.New("invalid submission payload")
)

// IncompleteError reports a structured submission with missing fields.
type IncompleteError struct {
	Missing []string
}

func (e *IncompleteError) Error() string {
	return fmt.Sprintf("incomplete submission: missing %s", strings.Join(e.Missing, ", "))
}

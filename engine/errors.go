package engine

import (
	"errors"
	"fmt"
)

// Common matcher errors
var (
	// ErrNoCurrentMatch indicates a call that needs a current match
	// (FindNext, MatchStart, AppendReplacement, ...) before any match
	// was found
	ErrNoCurrentMatch = errors.New("no current match")

	// ErrStartOutOfBounds indicates a search start outside the text
	ErrStartOutOfBounds = errors.New("search start is outside the text")

	// ErrBadReplacement indicates a malformed replacement template
	ErrBadReplacement = errors.New("malformed replacement text")

	// ErrBadGroup indicates a replacement reference to a capture group
	// the pattern does not have
	ErrBadGroup = errors.New("replacement references an invalid capture group")
)

// OverflowError reports that a destination buffer was too small for an
// append operation. Required is the exact total number of runes the
// operation needs; retrying with that capacity succeeds.
//
// Overflow is the only recoverable matcher condition: the substitution core
// resizes and retries on it, and propagates every other error as-is.
type OverflowError struct {
	Required int
}

// Error implements the error interface
func (e *OverflowError) Error() string {
	return fmt.Sprintf("destination buffer too small: %d runes required", e.Required)
}

// IsOverflow reports whether err is (or wraps) an *OverflowError.
func IsOverflow(err error) bool {
	var o *OverflowError
	return errors.As(err, &o)
}

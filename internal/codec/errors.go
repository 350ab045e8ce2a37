package codec

import (
	"errors"
	"fmt"
)

// Decode failures form a closed set. Callers add context with %w
// wrapping and match with errors.Is.
var (
	ErrUnexpectedEOF     = errors.New("unexpected end of input")
	ErrInvalidUTF8       = errors.New("invalid utf-8 in string")
	ErrUnknownIdentifier = errors.New("identifier not registered")
	ErrInvalidValue      = errors.New("invalid value")
)

// TrapError reports a type tag that does not match what the decoder
// expected at that position.
type TrapError struct {
	Expected Trap
	Found    Trap
}

func (e *TrapError) Error() string {
	return fmt.Sprintf("expected %s tag, found %s", e.Expected, e.Found)
}

package services

import (
	"errors"
	"fmt"
)

// ErrNotFound reports that a lookup matched nothing. It is a valid outcome,
// distinct from a storage failure.
var ErrNotFound = errors.New("not found")

// InputError reports an invalid caller-supplied parameter. Handlers surface it
// as a 400; it is never logged as a system failure.
type InputError struct {
	Reason string
}

func (e *InputError) Error() string {
	return e.Reason
}

// invalidInput builds an InputError with a human-readable reason
func invalidInput(format string, args ...interface{}) error {
	return &InputError{Reason: fmt.Sprintf(format, args...)}
}

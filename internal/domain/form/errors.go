package form

import (
	"errors"
	"strings"
)

var (
	ErrMissingFields = errors.New("please fill all required fields")
)

// ValidationError lists the required fields left empty for the chosen category.
type ValidationError struct {
	Missing []Field
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Missing))
	for _, f := range e.Missing {
		names = append(names, string(f))
	}
	return ErrMissingFields.Error() + ": " + strings.Join(names, ", ")
}

func (e *ValidationError) Unwrap() error {
	return ErrMissingFields
}

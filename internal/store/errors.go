package store

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidInput is matched by every validation failure.
var ErrInvalidInput = errors.New("invalid input")

// ErrIDOrder is returned when seeded or restored books do not carry
// strictly increasing ids.
var ErrIDOrder = errors.New("book ids out of order")

// InputError reports which field was rejected.
type InputError struct {
	Field  string
	Reason string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("%s: %s %s", ErrInvalidInput, e.Field, e.Reason)
}

// Unwrap lets errors.Is match ErrInvalidInput.
func (e *InputError) Unwrap() error {
	return ErrInvalidInput
}

// IsInvalidInput returns true if err is, or wraps, a validation failure.
func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

func (s *Store) checkText(field, value string) error {
	if s.allowBlank {
		return nil
	}
	if strings.TrimSpace(value) == "" {
		return &InputError{Field: field, Reason: "must not be blank"}
	}
	return nil
}

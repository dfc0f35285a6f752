package domain

import (
	"errors"
	"fmt"
)

// ErrInvalidArgument marks every caller mistake the engine rejects: bad page
// numbers, unknown enum values, unsupported sort fields.
var ErrInvalidArgument = errors.New("invalid argument")

// ArgumentError names the offending query field. It matches
// ErrInvalidArgument under errors.Is.
type ArgumentError struct {
	Field  string
	Value  string
	Reason string
}

func (e *ArgumentError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("%s: unsupported %s %q", ErrInvalidArgument, e.Field, e.Value)
	}
	return fmt.Sprintf("%s: %s %q: %s", ErrInvalidArgument, e.Field, e.Value, e.Reason)
}

func (e *ArgumentError) Unwrap() error {
	return ErrInvalidArgument
}

func invalid(field, value, reason string) error {
	return &ArgumentError{Field: field, Value: value, Reason: reason}
}

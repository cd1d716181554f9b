package model

import (
	"errors"
	"fmt"
)

// ValidationError covers caller mistakes: bad profile fields, reused or
// unknown invitation tokens, unknown question ids. Never retried internally.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// Validationf builds a ValidationError.
func Validationf(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// Oracle failure classes. Both are recovered locally at every call site via
// the documented fallbacks; they surface only in logs.
var (
	ErrOracleUnavailable     = errors.New("oracle unavailable")
	ErrMalformedOracleOutput = errors.New("malformed oracle output")
)

// PersistenceError wraps storage failures. Writes are whole-aggregate
// overwrites, so resubmitting the identical mutating operation is safe.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence: %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// Persistencef wraps err as a PersistenceError for operation op.
func Persistencef(op string, err error) error {
	return &PersistenceError{Op: op, Err: err}
}

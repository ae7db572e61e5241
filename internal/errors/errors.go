package errors

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Common error types for the console
var (
	// Session errors
	ErrIncompleteSession = errors.New("session requires both token and user")
	ErrSessionNotFound   = errors.New("session not found")
	ErrSessionCorrupt    = errors.New("session corrupt")

	// Backend errors
	ErrSessionExpired = errors.New("session expired")
	ErrUnreachable    = errors.New("backend unreachable")
	ErrBadResponse    = errors.New("unexpected backend response")

	// Authorization errors
	ErrForbidden = errors.New("not permitted for this account")

	// General errors
	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("validation failed")
	ErrInternal   = errors.New("internal error")
)

// FieldErrors maps a form field name to the message shown beside it.
// A FieldErrors value matches ErrValidation with errors.Is.
type FieldErrors map[string]string

func (f FieldErrors) Error() string {
	fields := make([]string, 0, len(f))
	for k := range f {
		fields = append(fields, k)
	}
	sort.Strings(fields)
	parts := make([]string, 0, len(fields))
	for _, k := range fields {
		parts = append(parts, k+": "+f[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (f FieldErrors) Is(target error) bool {
	return target == ErrValidation
}

// Add records msg for field unless the field already has a message.
func (f FieldErrors) Add(field, msg string) {
	if _, ok := f[field]; !ok {
		f[field] = msg
	}
}

// Err returns nil when no field failed.
func (f FieldErrors) Err() error {
	if len(f) == 0 {
		return nil
	}
	return f
}

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// New is errors.New, re-exported so callers need only this package.
func New(text string) error {
	return errors.New(text)
}

package shared

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates the requested record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrInvalidCredentials indicates login failure. The message is
	// deliberately generic so callers cannot tell which field was wrong.
	ErrInvalidCredentials = errors.New("wrong username or password")
	// ErrUnauthenticated indicates no principal is attached to the request.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrInsufficientRole indicates the principal lacks a required role.
	ErrInsufficientRole = errors.New("insufficient role")
	// ErrStoreUnavailable indicates the backing store could not be reached.
	// Must never be collapsed into ErrNotFound.
	ErrStoreUnavailable = errors.New("store unavailable")
	// ErrValidation indicates caller input failed validation.
	ErrValidation = errors.New("invalid input")
	// ErrCSRFTokenMissing occurs when the CSRF token is absent.
	ErrCSRFTokenMissing = errors.New("csrf token missing")
	// ErrCSRFTokenMismatch occurs when CSRF tokens do not match.
	ErrCSRFTokenMismatch = errors.New("csrf token mismatch")
)

// ConflictError reports a uniqueness violation on a single field.
type ConflictError struct {
	Field string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("conflict on %s", e.Field)
}

// Conflict builds a ConflictError for the given field.
func Conflict(field string) error {
	return &ConflictError{Field: field}
}

// ConflictField extracts the conflicting field name when err is a conflict.
func ConflictField(err error) (string, bool) {
	var ce *ConflictError
	if errors.As(err, &ce) {
		return ce.Field, true
	}
	return "", false
}

// IsConflict reports whether err is a uniqueness conflict.
func IsConflict(err error) bool {
	_, ok := ConflictField(err)
	return ok
}

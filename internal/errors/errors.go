// Package errors provides the sentinel errors the domain modules wrap their
// named errors around. Handlers map sentinels to HTTP statuses; use cases and
// repositories never return infrastructure errors directly.
package errors

import (
	"errors"
	"fmt"
)

// Sentinels shared across the acl, claims, oauth, and keys modules.
var (
	// ErrNotFound indicates the requested resource does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict indicates a conflict with existing data, such as a
	// duplicate client ID or key name.
	ErrConflict = errors.New("conflict")

	// ErrInvalidInput indicates the input data fails validation.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnauthorized indicates the request carries no usable identity or
	// credential.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden indicates the resolved principal is denied the operation.
	ErrForbidden = errors.New("forbidden")
)

// New creates a new error with the given message.
func New(message string) error {
	return errors.New(message)
}

// Wrap adds context to an error while preserving the chain, so a named
// domain error stays matchable against its sentinel.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Is reports whether any error in err's tree matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

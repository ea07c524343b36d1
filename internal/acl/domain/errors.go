package domain

import (
	"github.com/allisson/keyguard/internal/errors"
)

// Access-control error definitions.
var (
	// ErrAccessDenied indicates the principal is not granted the requested operation.
	ErrAccessDenied = errors.Wrap(errors.ErrForbidden, "access denied")

	// ErrUnknownOperation indicates an operation outside the closed set.
	ErrUnknownOperation = errors.Wrap(errors.ErrInvalidInput, "unknown operation")

	// ErrDuplicateSubject indicates a rule set contains the same subject twice.
	ErrDuplicateSubject = errors.Wrap(errors.ErrConflict, "duplicate subject in rule set")
)

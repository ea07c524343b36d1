package domain

import (
	"github.com/allisson/keyguard/internal/errors"
)

// Key-specific error definitions.
var (
	// ErrKeyNotFound indicates no key exists with the given name.
	ErrKeyNotFound = errors.Wrap(errors.ErrNotFound, "key not found")

	// ErrDuplicateKey indicates a key with the given name already exists.
	ErrDuplicateKey = errors.Wrap(errors.ErrConflict, "key already exists")
)

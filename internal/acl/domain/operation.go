// Package domain defines the core domain models for access-control policies.
// Policies map subjects (principal names or group names) to the set of key
// management operations they may perform.
package domain

import (
	"fmt"
)

// Operation identifies a key management operation subject to access control.
type Operation string

// The closed set of guarded key management operations.
const (
	OperationCreate      Operation = "CREATE"
	OperationDelete      Operation = "DELETE"
	OperationRollover    Operation = "ROLLOVER"
	OperationGetKeys     Operation = "GET_KEYS"
	OperationGetMetadata Operation = "GET_METADATA"
	OperationGenerateEEK Operation = "GENERATE_EEK"
	OperationDecryptEEK  Operation = "DECRYPT_EEK"
)

// Operations lists every valid operation in declaration order.
func Operations() []Operation {
	return []Operation{
		OperationCreate,
		OperationDelete,
		OperationRollover,
		OperationGetKeys,
		OperationGetMetadata,
		OperationGenerateEEK,
		OperationDecryptEEK,
	}
}

// Valid reports whether the operation is a member of the closed set.
func (o Operation) Valid() bool {
	switch o {
	case OperationCreate,
		OperationDelete,
		OperationRollover,
		OperationGetKeys,
		OperationGetMetadata,
		OperationGenerateEEK,
		OperationDecryptEEK:
		return true
	}
	return false
}

// String returns the wire representation of the operation.
func (o Operation) String() string {
	return string(o)
}

// ParseOperation converts a string into an Operation, rejecting values
// outside the closed set.
func ParseOperation(value string) (Operation, error) {
	op := Operation(value)
	if !op.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownOperation, value)
	}
	return op, nil
}

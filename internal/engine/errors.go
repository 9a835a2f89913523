package engine

import (
	"errors"
	"fmt"

	"github.com/roach88/ahghee/internal/ir"
)

// ErrNotFound is returned by Backend.Read for an unknown id.
var ErrNotFound = errors.New("node not found")

// ErrFilterUnsupported is wrapped by FilterMatcher implementations for
// filters they cannot evaluate.
var ErrFilterUnsupported = errors.New("filter not supported by backend")

// StorageError represents a failure reading or writing a node.
//
// StorageError includes structured fields for diagnostics:
//   - Code identifies the error category
//   - ID names the affected node (zero for batch operations)
//   - Op names the operation ("add", "get", "follow", "history", ...)
type StorageError struct {
	// Code identifies the error category.
	Code ErrorCode

	// ID identifies the affected node.
	ID ir.NodeID

	// Op names the failing operation.
	Op string

	// Err is the underlying cause.
	Err error
}

// ErrorCode categorizes storage errors.
type ErrorCode string

const (
	// ErrCodeStorageFailure indicates the backend failed.
	ErrCodeStorageFailure ErrorCode = "STORAGE_FAILURE"

	// ErrCodeNotFound indicates the requested node does not exist.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"

	// ErrCodeTraversalLimit indicates a traversal exceeded the visit quota.
	ErrCodeTraversalLimit ErrorCode = "TRAVERSAL_LIMIT"
)

// Error implements the error interface.
func (e *StorageError) Error() string {
	if e.ID.IRI != "" {
		return fmt.Sprintf("%s: %s(%s): %v", e.Code, e.Op, e.ID, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", e.Code, e.Op, e.Err)
}

// Unwrap returns the underlying cause.
func (e *StorageError) Unwrap() error {
	return e.Err
}

// IsNotFound returns true if err reports a missing node.
// Uses errors.As/errors.Is to handle wrapped errors.
func IsNotFound(err error) bool {
	var se *StorageError
	if errors.As(err, &se) && se.Code == ErrCodeNotFound {
		return true
	}
	return errors.Is(err, ErrNotFound)
}

// IsStorageFailure returns true if err is a backend failure.
func IsStorageFailure(err error) bool {
	var se *StorageError
	if errors.As(err, &se) {
		return se.Code == ErrCodeStorageFailure
	}
	return false
}

// IsTraversalLimit returns true if err is a traversal quota error.
// Matches both StorageError with ErrCodeTraversalLimit and
// VisitsExceededError.
func IsTraversalLimit(err error) bool {
	var se *StorageError
	if errors.As(err, &se) && se.Code == ErrCodeTraversalLimit {
		return true
	}
	var ve *VisitsExceededError
	return errors.As(err, &ve)
}

// storageError classifies err for the failing op on id.
func storageError(op string, id ir.NodeID, err error) *StorageError {
	code := ErrCodeStorageFailure
	var ve *VisitsExceededError
	switch {
	case errors.Is(err, ErrNotFound):
		code = ErrCodeNotFound
	case errors.As(err, &ve):
		code = ErrCodeTraversalLimit
	}
	return &StorageError{Code: code, ID: id, Op: op, Err: err}
}

// Package errs contains sentinel errors used across layers for stable error mapping.
package errs

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
)

// Common sentinels across repo/service layers.
var (
	// ErrNotFound indicates the requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDataConflict indicates optimistic concurrency failure (concurrency token mismatch).
	ErrDataConflict = errors.New("data conflict")

	// ErrStorage indicates a connectivity or constraint failure reported by the storage layer.
	ErrStorage = errors.New("storage failure")

	// ErrInvalidSelection indicates a selected child identifier that does not parse or does not exist.
	ErrInvalidSelection = errors.New("invalid selection")

	// ErrValidation indicates caller input rejected before any storage access.
	ErrValidation = errors.New("validation")
)

// ConflictError reports a stale write against a versioned entity.
// Current holds the token stored at the time of the check; it is nil when the row was deleted.
type ConflictError struct {
	Entity   string
	ID       int64
	Expected []byte
	Current  []byte
	Deleted  bool
}

func (e *ConflictError) Error() string {
	if e.Deleted {
		return fmt.Sprintf("%s %d: %v: deleted by another writer", e.Entity, e.ID, ErrDataConflict)
	}
	return fmt.Sprintf("%s %d: %v: expected token %s, stored %s",
		e.Entity, e.ID, ErrDataConflict, hex.EncodeToString(e.Expected), hex.EncodeToString(e.Current))
}

// Is makes errors.Is(err, ErrDataConflict) hold for every ConflictError.
func (e *ConflictError) Is(target error) bool { return target == ErrDataConflict }

// StorageError wraps a storage-layer failure, keeping the cause reachable through Unwrap.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string { return fmt.Sprintf("%s: %v: %v", e.Op, ErrStorage, e.Err) }

// Is makes errors.Is(err, ErrStorage) hold for every StorageError.
func (e *StorageError) Is(target error) bool { return target == ErrStorage }

func (e *StorageError) Unwrap() error { return e.Err }

// SelectionError describes one rejected entry of a caller-supplied selection.
type SelectionError struct {
	Value  string
	Reason string
}

func (e *SelectionError) Error() string {
	return fmt.Sprintf("%v %q: %s", ErrInvalidSelection, e.Value, e.Reason)
}

// Is makes errors.Is(err, ErrInvalidSelection) hold for every SelectionError.
func (e *SelectionError) Is(target error) bool { return target == ErrInvalidSelection }

// Storage classifies err as a storage failure unless it already carries a stable kind.
// NotFound, DataConflict and existing StorageErrors are returned unchanged.
func Storage(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrDataConflict), errors.Is(err, ErrStorage):
		return err
	default:
		return &StorageError{Op: op, Err: err}
	}
}

// IsCanceled reports whether err stems from context cancellation or deadline expiry.
func IsCanceled(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

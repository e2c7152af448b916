package domain

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by any operation addressing a request id that
// does not exist.
var ErrNotFound = errors.New("return request not found")

// ErrConcurrentModification is returned when a versioned save loses a
// race with another writer. The caller should reload and retry.
var ErrConcurrentModification = errors.New("return request was modified concurrently")

// ValidationError rejects malformed input: unknown enum values, missing
// required fields, non-positive quantities.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// StorageError wraps an evidence write failure. It aborts the enclosing
// creation: no request record is left claiming photos it does not have.
type StorageError struct {
	Op   string
	Name string
	Err  error
}

func (e *StorageError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("evidence storage %s %q: %v", e.Op, e.Name, e.Err)
	}
	return fmt.Sprintf("evidence storage %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// InvalidTransitionError rejects a status move not defined by the
// lifecycle graph, including any move out of a terminal status.
type InvalidTransitionError struct {
	From ReturnStatus
	To   ReturnStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid status transition %s -> %s", e.From, e.To)
}

// Package apperror defines the error vocabulary of the sync core.
// Every failure that crosses a package boundary is one of these types so
// callers can classify with errors.As / errors.Is instead of matching on
// message strings.
package apperror

import (
	"errors"
	"fmt"
)

// ErrNotInitialized is returned by every store operation issued before Open
// or after Close. Commands fail fast instead of lazily opening the store.
var ErrNotInitialized = errors.New("store not initialized")

// StorageError wraps a local I/O fault (quota, corruption, locked file).
// There is no automatic retry at the storage layer; retry policy belongs to
// the caller.
type StorageError struct {
	Op  string // operation that failed, e.g. "save customer"
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// NewStorage wraps err as a StorageError. Returns nil when err is nil.
func NewStorage(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StorageError{Op: op, Err: err}
}

// RemoteKind classifies a gateway failure by HTTP status class.
type RemoteKind int

const (
	RemoteNetwork RemoteKind = iota // transport-level: unreachable, timeout
	RemoteAuth                      // 401/403 — token invalid or expired
	RemoteClient                    // other 4xx — the remote rejected the payload
	RemoteServer                    // 5xx — the remote is unhealthy
)

func (k RemoteKind) String() string {
	switch k {
	case RemoteNetwork:
		return "network"
	case RemoteAuth:
		return "auth"
	case RemoteClient:
		return "client"
	case RemoteServer:
		return "server"
	default:
		return "unknown"
	}
}

// RemoteError is any failure reported by the Remote Gateway. Status is zero
// for network-level failures that never produced an HTTP response.
type RemoteError struct {
	Kind   RemoteKind
	Status int
	Err    error
}

func (e *RemoteError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("remote: %s (status %d): %v", e.Kind, e.Status, e.Err)
	}
	return fmt.Sprintf("remote: %s: %v", e.Kind, e.Err)
}

func (e *RemoteError) Unwrap() error { return e.Err }

// ClassifyStatus maps an HTTP status code to a RemoteKind.
func ClassifyStatus(status int) RemoteKind {
	switch {
	case status == 401 || status == 403:
		return RemoteAuth
	case status >= 500:
		return RemoteServer
	default:
		return RemoteClient
	}
}

// ValidationError reports a malformed entity rejected at the boundary,
// before any write is attempted. It is never persisted.
type ValidationError struct {
	Detail string
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation: " + e.Detail
	}
	return fmt.Sprintf("validation: %s (%d field errors)", e.Detail, len(e.Fields))
}

func NewValidation(detail string, fields map[string]string) *ValidationError {
	return &ValidationError{Detail: detail, Fields: fields}
}

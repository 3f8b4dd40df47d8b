// Package errors provides the EventStore error taxonomy for the RPKI CA core.
package errors

import (
	"errors"
	"fmt"
)

// Kind is a machine-readable EventStore error classification (§7).
type Kind string

const (
	KindIoError            Kind = "IO_ERROR"
	KindJsonError          Kind = "JSON_ERROR"
	KindKeyExists          Kind = "KEY_EXISTS"
	KindKeyUnknown         Kind = "KEY_UNKNOWN"
	KindInitError          Kind = "INIT_ERROR"
	KindNoHistory          Kind = "NO_HISTORY"
	KindNotInitialised     Kind = "NOT_INITIALISED"
	KindCommandNotFound    Kind = "COMMAND_NOT_FOUND"
	KindCommandOffSetError Kind = "COMMAND_OFFSET_ERROR"
)

// Sentinel errors usable with errors.Is against any StoreError of the
// matching Kind.
var (
	ErrIoError            = errors.New("io error")
	ErrJsonError          = errors.New("json error")
	ErrKeyExists          = errors.New("key already exists")
	ErrKeyUnknown         = errors.New("key does not exist")
	ErrInitError          = errors.New("aggregate init event exists but cannot be applied")
	ErrNoHistory          = errors.New("no history for aggregate")
	ErrNotInitialised     = errors.New("keystore is not initialised")
	ErrCommandNotFound    = errors.New("stored command cannot be found")
	ErrCommandOffSetError = errors.New("stored command offset out of bounds")
)

var sentinelByKind = map[Kind]error{
	KindIoError:            ErrIoError,
	KindJsonError:          ErrJsonError,
	KindKeyExists:          ErrKeyExists,
	KindKeyUnknown:         ErrKeyUnknown,
	KindInitError:          ErrInitError,
	KindNoHistory:          ErrNoHistory,
	KindNotInitialised:     ErrNotInitialised,
	KindCommandNotFound:    ErrCommandNotFound,
	KindCommandOffSetError: ErrCommandOffSetError,
}

// StoreError is a structured EventStore error: a Kind plus an optional
// message and wrapped cause.
type StoreError struct {
	Kind    Kind
	Message string
	Err     error
}

// Error implements the error interface.
func (e *StoreError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap supports errors.Is/As against both the wrapped cause and the
// Kind's sentinel error.
func (e *StoreError) Unwrap() []error {
	if sentinel, ok := sentinelByKind[e.Kind]; ok {
		if e.Err != nil {
			return []error{sentinel, e.Err}
		}
		return []error{sentinel}
	}
	if e.Err != nil {
		return []error{e.Err}
	}
	return nil
}

// New creates a StoreError of the given Kind.
func New(kind Kind, message string) *StoreError {
	return &StoreError{Kind: kind, Message: message}
}

// Wrap creates a StoreError of the given Kind, wrapping an underlying cause.
func Wrap(kind Kind, message string, err error) *StoreError {
	return &StoreError{Kind: kind, Message: message, Err: err}
}

// Is reports whether err is a StoreError of the given Kind.
func Is(err error, kind Kind) bool {
	var se *StoreError
	if errors.As(err, &se) {
		return se.Kind == kind
	}
	return false
}

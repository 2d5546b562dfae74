// Package vibeerr defines the closed set of error kinds returned at the
// boundary of every core vibeMCP operation.
package vibeerr

import (
	"errors"
	"fmt"
)

// Kind is a machine-readable error category.
type Kind string

const (
	KindNotFound         Kind = "not_found"
	KindAlreadyExists    Kind = "already_exists"
	KindInvalidArgument  Kind = "invalid_argument"
	KindInvalidPath      Kind = "invalid_path"
	KindUnsafe           Kind = "unsafe"
	KindLimitExceeded    Kind = "limit_exceeded"
	KindPermissionDenied Kind = "permission_denied"
	KindConflict         Kind = "conflict"
	KindCorrupt          Kind = "corrupt"
	KindTransient        Kind = "transient"
)

// Error is the structured error returned by every core operation.
type Error struct {
	Kind    Kind
	Message string
	Detail  error
}

func (e *Error) Error() string {
	if e.Detail != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Detail)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Detail
}

// New builds an Error of the given kind with a human-readable message.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap builds an Error of the given kind, carrying an underlying cause.
func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Detail: cause}
}

// Is reports whether err is a *Error of the given kind.
func Is(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

// Package apierr defines the typed error taxonomy shared by every layer of
// Filez. Inner layers (C1-C10) return these errors; only the HTTP surface
// (C8) maps them to status codes and the response envelope.
package apierr

import (
	"errors"
	"fmt"
)

// Kind identifies one of the error categories from the taxonomy. Stable
// over the wire via the envelope's "kind" field and the mapped HTTP code.
type Kind string

const (
	KindInvalidRequest    Kind = "InvalidRequest"
	KindUnauthorized      Kind = "Unauthorized"
	KindForbidden         Kind = "Forbidden"
	KindResourceNotFound  Kind = "ResourceNotFound"
	KindConflict          Kind = "Conflict"
	KindUnsupportedMedia  Kind = "UnsupportedMediaType"
	KindPreconditionFail  Kind = "PreconditionFailed"
	KindPayloadTooLarge   Kind = "PayloadTooLarge"
	KindStorageBackendErr Kind = "StorageBackendUnavailable"
	KindInternal          Kind = "Internal"
)

// Error is the typed error carried between layers. It never contains a
// user-facing format string built from raw internal state; Message is
// meant to be shown to the caller as-is.
type Error struct {
	Kind    Kind
	Message string
	// Cause is the wrapped underlying error, if any, kept for logging only.
	Cause error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// New builds an Error of the given kind with a message.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap builds an Error of the given kind wrapping cause, with message as the
// user-facing text.
func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

// Is reports whether err carries the given Kind.
func Is(err error, kind Kind) bool {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Kind == kind
	}
	return false
}

func InvalidRequest(format string, args ...any) *Error {
	return New(KindInvalidRequest, fmt.Sprintf(format, args...))
}

func Unauthorized(message string) *Error {
	return New(KindUnauthorized, message)
}

func Forbidden(message string) *Error {
	return New(KindForbidden, message)
}

func NotFound(resourceType string) *Error {
	return New(KindResourceNotFound, resourceType+" not found")
}

func Conflict(message string) *Error {
	return New(KindConflict, message)
}

func PreconditionFailed(message string) *Error {
	return New(KindPreconditionFail, message)
}

func PayloadTooLarge(message string) *Error {
	return New(KindPayloadTooLarge, message)
}

func Internal(message string, cause error) *Error {
	return Wrap(KindInternal, message, cause)
}

// Package apperr defines the error taxonomy shared by the catalog and order
// services and the mapping from those errors to transport status codes.
//
// Services return *Error values; callers compare with errors.Is against the
// sentinel kinds:
//
//	if errors.Is(err, apperr.ErrNotFound) { ... }
//
// The Message of an Error is always safe to show to untrusted callers. The
// wrapped Err may carry raw storage details and is only meant for logs.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Code is a stable, machine-readable error identifier.
type Code string

const (
	CodeInvalidInput         Code = "invalid_input"
	CodeInvalidStatus        Code = "invalid_status"
	CodeNotFound             Code = "not_found"
	CodeUnsupportedMediaType Code = "unsupported_media_type"
	CodePayloadTooLarge      Code = "payload_too_large"
	CodeStorageUnavailable   Code = "storage_unavailable"
	CodeInternalFailure      Code = "internal_failure"
)

// Sentinel kinds. An *Error matches the sentinel with the same Code.
var (
	ErrInvalidInput         = &Error{Code: CodeInvalidInput, Message: "invalid input"}
	ErrInvalidStatus        = &Error{Code: CodeInvalidStatus, Message: "invalid status"}
	ErrNotFound             = &Error{Code: CodeNotFound, Message: "not found"}
	ErrUnsupportedMediaType = &Error{Code: CodeUnsupportedMediaType, Message: "unsupported media type"}
	ErrPayloadTooLarge      = &Error{Code: CodePayloadTooLarge, Message: "payload too large"}
	ErrStorageUnavailable   = &Error{Code: CodeStorageUnavailable, Message: "storage unavailable"}
	ErrInternalFailure      = &Error{Code: CodeInternalFailure, Message: "internal failure"}
)

// Error is a classified failure with a public message.
type Error struct {
	Code    Code
	Message string
	// Fields holds per-field validation messages for CodeInvalidInput.
	Fields map[string]string
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error with the same Code, so a specific failure compares
// equal to its sentinel kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// InvalidInput builds a validation failure. fields may be nil.
func InvalidInput(message string, fields map[string]string) *Error {
	return &Error{Code: CodeInvalidInput, Message: message, Fields: fields}
}

// InvalidStatus reports a status value outside the order state set.
func InvalidStatus(status string) *Error {
	return &Error{
		Code:    CodeInvalidStatus,
		Message: fmt.Sprintf("%q is not a valid order status", status),
		Fields:  map[string]string{"status": "unknown status"},
	}
}

// NotFound reports a missing entity, e.g. NotFound("product", 7).
func NotFound(entity string, id any) *Error {
	return &Error{Code: CodeNotFound, Message: fmt.Sprintf("%s %v not found", entity, id)}
}

func UnsupportedMediaType(message string) *Error {
	return &Error{Code: CodeUnsupportedMediaType, Message: message}
}

func PayloadTooLarge(limit int64) *Error {
	return &Error{Code: CodePayloadTooLarge, Message: fmt.Sprintf("file exceeds the %d byte limit", limit)}
}

// StorageUnavailable wraps a connectivity failure. Callers may retry.
func StorageUnavailable(err error) *Error {
	return &Error{Code: CodeStorageUnavailable, Message: "storage is unavailable, try again later", Err: err}
}

// Internal wraps an unexpected fault. The public message never includes err.
func Internal(op string, err error) *Error {
	return &Error{Code: CodeInternalFailure, Message: op + " failed", Err: err}
}

// From classifies any error. Unclassified errors become internal failures.
func From(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Internal("operation", err)
}

// HTTPStatus maps an error to the HTTP status the transport should send.
func HTTPStatus(err error) int {
	switch From(err).Code {
	case CodeInvalidInput, CodeInvalidStatus:
		return http.StatusUnprocessableEntity
	case CodeNotFound:
		return http.StatusNotFound
	case CodeUnsupportedMediaType:
		return http.StatusUnsupportedMediaType
	case CodePayloadTooLarge:
		return http.StatusRequestEntityTooLarge
	case CodeStorageUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

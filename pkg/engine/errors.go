// Package engine implements the landing zone reconciliation core: the
// decision engine, the versioned manifest builder, the transient-error
// classifier and backoff retrier, the asynchronous operation poller, and
// the orchestrators that compose them into the deploy workflow.
package engine

import (
	"errors"
	"fmt"
)

// ErrorKind classifies an error for retry and reporting logic.
type ErrorKind string

const (
	// KindInvalidInput indicates malformed or contradictory configuration.
	// Never retried.
	KindInvalidInput ErrorKind = "INVALID_INPUT"

	// KindServiceException indicates the provider responded successfully
	// but violated its contract (missing identifier, missing credential
	// field, more results than the API promises). Never retried.
	KindServiceException ErrorKind = "SERVICE_EXCEPTION"

	// KindOperationFailed indicates a polled provider operation reached
	// its FAILED terminal state. A business outcome, never retried.
	KindOperationFailed ErrorKind = "OPERATION_FAILED"

	// KindConflict indicates an operation was requested while the target
	// resource is already mid-operation.
	KindConflict ErrorKind = "CONFLICT"

	// KindTimeout indicates a poll loop exhausted its attempt budget while
	// the operation was still in progress.
	KindTimeout ErrorKind = "TIMEOUT"
)

// Error is a classified error with resource and operation context.
type Error struct {
	// Kind is the error classification.
	Kind ErrorKind `json:"kind"`

	// Message is the human-readable error message.
	Message string `json:"message"`

	// Resource is the resource identifier that caused the error, if any.
	Resource string `json:"resource,omitempty"`

	// Operation is the operation being performed when the error occurred.
	Operation string `json:"operation,omitempty"`

	// Err is the underlying error.
	Err error `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := fmt.Sprintf("[%s] %s", e.Kind, e.Message)
	if e.Resource != "" {
		msg = fmt.Sprintf("%s (resource=%s)", msg, e.Resource)
	}
	if e.Operation != "" {
		msg = fmt.Sprintf("%s (operation=%s)", msg, e.Operation)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %s", msg, e.Err.Error())
	}
	return msg
}

// Unwrap returns the underlying error for error chain inspection.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is implements error equality checking for errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// WithResource adds resource context to an error.
func (e *Error) WithResource(resourceID string) *Error {
	e.Resource = resourceID
	return e
}

// WithOperation adds operation context to an error.
func (e *Error) WithOperation(operation string) *Error {
	e.Operation = operation
	return e
}

// NewInvalidInputError creates a new input validation error.
func NewInvalidInputError(message string) *Error {
	return &Error{Kind: KindInvalidInput, Message: message}
}

// NewServiceError creates a new provider contract violation error.
func NewServiceError(message string, err error) *Error {
	return &Error{Kind: KindServiceException, Message: message, Err: err}
}

// NewOperationFailedError creates a terminal operation failure error.
func NewOperationFailedError(message string) *Error {
	return &Error{Kind: KindOperationFailed, Message: message}
}

// NewConflictError creates a new conflict error.
func NewConflictError(message string) *Error {
	return &Error{Kind: KindConflict, Message: message}
}

// NewTimeoutError creates a new poll timeout error.
func NewTimeoutError(message string) *Error {
	return &Error{Kind: KindTimeout, Message: message}
}

// IsInvalidInput returns true if the error is an input validation error.
func IsInvalidInput(err error) bool {
	return hasKind(err, KindInvalidInput)
}

// IsServiceException returns true if the error is a contract violation.
func IsServiceException(err error) bool {
	return hasKind(err, KindServiceException)
}

// IsOperationFailed returns true if a polled operation terminally failed.
func IsOperationFailed(err error) bool {
	return hasKind(err, KindOperationFailed)
}

// IsConflict returns true if the error is a conflict error.
func IsConflict(err error) bool {
	return hasKind(err, KindConflict)
}

// IsTimeout returns true if the error is a poll timeout.
func IsTimeout(err error) bool {
	return hasKind(err, KindTimeout)
}

func hasKind(err error, kind ErrorKind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

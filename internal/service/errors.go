package service

import (
	"errors"
	"fmt"
)

// Service sentinel errors. The API layer maps these to status codes.
var (
	// ErrBusy is returned when the same summary or material request is
	// already in flight. API layer maps this to HTTP 409 Conflict.
	ErrBusy = errors.New("request already in progress")

	// ErrDocumentNotReady is returned when materials are requested from a
	// document whose summary is pending or failed.
	ErrDocumentNotReady = errors.New("document is not ready")

	// ErrSessionNotFound is returned for unknown or already finished sessions.
	ErrSessionNotFound = errors.New("study session not found")
)

// ServiceError adds the failing operation to an underlying error.
type ServiceError struct {
	// Operation is the operation that failed (e.g., "create_class")
	Operation string
	// Err is the underlying error
	Err error
}

// Error implements the error interface for ServiceError.
func (e *ServiceError) Error() string {
	return fmt.Sprintf("study service %s failed: %v", e.Operation, e.Err)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewServiceError wraps err with the operation name. Service sentinels are
// returned unwrapped; nil stays nil.
func NewServiceError(operation string, err error) error {
	if err == nil {
		return nil
	}
	for _, sentinel := range []error{ErrBusy, ErrDocumentNotReady, ErrSessionNotFound} {
		if errors.Is(err, sentinel) {
			return err
		}
	}
	return &ServiceError{Operation: operation, Err: err}
}

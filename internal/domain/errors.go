package domain

import (
	"errors"
	"fmt"
)

// Sentinel error kinds. Use errors.Is against these to classify a DomainError.
var (
	ErrValidation   = errors.New("validation failed")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrGateway      = errors.New("payment gateway error")
	ErrStoreCorrupt = errors.New("store corrupt")
	ErrUnavailable  = errors.New("resource unavailable")
	ErrNotification = errors.New("notification failed")
)

// DomainError carries a classification kind plus a client-safe message.
// Cause is kept for logs only and is never rendered to callers.
type DomainError struct {
	Err     error
	Message string
	Field   string
	Cause   error
}

func (e *DomainError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Is lets errors.Is match on the kind.
func (e *DomainError) Is(target error) bool {
	return target == e.Err
}

// Unwrap exposes the underlying cause.
func (e *DomainError) Unwrap() error {
	return e.Cause
}

// NewValidationError reports malformed client input for a named field.
func NewValidationError(field, message string) *DomainError {
	return &DomainError{Err: ErrValidation, Field: field, Message: message}
}

// NewNotFoundError reports a missing entity.
func NewNotFoundError(entity, key string) *DomainError {
	return &DomainError{Err: ErrNotFound, Message: fmt.Sprintf("%s not found: %s", entity, key)}
}

// NewConflictError reports a state conflict such as overlapping stays.
func NewConflictError(message string) *DomainError {
	return &DomainError{Err: ErrConflict, Message: message}
}

// NewGatewayError wraps a payment gateway failure. message must be safe to show.
func NewGatewayError(message string, cause error) *DomainError {
	return &DomainError{Err: ErrGateway, Message: message, Cause: cause}
}

// NewStoreCorruptError reports a ledger that cannot be parsed.
func NewStoreCorruptError(path string, cause error) *DomainError {
	return &DomainError{Err: ErrStoreCorrupt, Message: fmt.Sprintf("booking store %s is corrupt", path), Cause: cause}
}

// NewUnavailableError reports an I/O failure on a backing resource.
func NewUnavailableError(resource string, cause error) *DomainError {
	return &DomainError{Err: ErrUnavailable, Message: fmt.Sprintf("%s unavailable", resource), Cause: cause}
}

// NewNotificationError wraps a delivery failure of a confirmation message.
func NewNotificationError(channel string, cause error) *DomainError {
	return &DomainError{Err: ErrNotification, Message: fmt.Sprintf("%s notification failed", channel), Cause: cause}
}

// IsStoreError reports whether err means the ledger could not be read or written.
func IsStoreError(err error) bool {
	return errors.Is(err, ErrStoreCorrupt) || errors.Is(err, ErrUnavailable)
}

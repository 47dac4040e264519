package domain

import "fmt"

// DomainError represents a domain-specific error
type DomainError struct {
	Code    string
	Message string
	Err     error
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is matches on the error code so wrapped copies still compare equal to the sentinels.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code && e.Message == t.Message
}

// NewDomainError creates a new DomainError
func NewDomainError(code, message string) *DomainError {
	return &DomainError{Code: code, Message: message}
}

// NewDomainErrorWithCause creates a new DomainError with an underlying cause
func NewDomainErrorWithCause(code, message string, err error) *DomainError {
	return &DomainError{Code: code, Message: message, Err: err}
}

// Error codes
const (
	ErrCodeValidation  = "VALIDATION_ERROR"
	ErrCodeNotFound    = "NOT_FOUND"
	ErrCodeUnavailable = "UNAVAILABLE"
	ErrCodeInternal    = "INTERNAL_ERROR"
)

var (
	ErrInvalidCatalog = NewDomainError(ErrCodeValidation, "invalid catalog item")
	ErrEmptyQuery     = NewDomainError(ErrCodeValidation, "empty query")
)

var (
	ErrItemNotFound    = NewDomainError(ErrCodeNotFound, "catalog item not found")
	ErrSessionNotFound = NewDomainError(ErrCodeNotFound, "session not found")
)

var (
	ErrIndexNotReady      = NewDomainError(ErrCodeUnavailable, "retrieval index not ready")
	ErrAllEndpointsFailed = NewDomainError(ErrCodeUnavailable, "all remote retrieval endpoints failed")
)

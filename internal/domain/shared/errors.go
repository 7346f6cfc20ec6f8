package shared

import "fmt"

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrNotFound      = NewDomainError("NOT_FOUND", "Resource not found")
	ErrAlreadyExists = NewDomainError("ALREADY_EXISTS", "Resource already exists")
	ErrInvalidInput  = NewDomainError("INVALID_INPUT", "Invalid input provided")
	ErrUnauthorized  = NewDomainError("UNAUTHORIZED", "Not authorized to perform this action")
	ErrForbidden     = NewDomainError("FORBIDDEN", "Access to this resource is forbidden")

	// ErrAuthFailed deliberately does not say whether the username exists.
	ErrAuthFailed = NewDomainError("AUTH_FAILED", "Username/password is incorrect")

	// ErrNoData marks an empty result after scope/filter restriction. It is
	// recoverable: the caller may widen the selection. Never treated as a
	// server fault.
	ErrNoData = NewDomainError("NO_DATA", "No data available for this selection or access level")
)

// NewSchemaError reports a required dataset column that is absent after
// ingestion. Fatal for the current cycle.
func NewSchemaError(column string) *DomainError {
	return NewDomainError("SCHEMA_ERROR", fmt.Sprintf("Data error: the column %q was not found", column))
}

// NewMergeError reports that the primary and mapping datasets share no join
// key. Fatal for the current cycle.
func NewMergeError(msg string) *DomainError {
	return NewDomainError("MERGE_ERROR", msg)
}

// NewFetchError wraps a dataset fetch failure after retries are exhausted.
func NewFetchError(source string, cause error) *DomainError {
	return NewDomainError("FETCH_ERROR", fmt.Sprintf("Could not load dataset from %s: %v", source, cause))
}

// NewIntegrityError reports a dataset that parsed but is unusable, such as
// every row carrying an invalid invoice date.
func NewIntegrityError(msg string) *DomainError {
	return NewDomainError("DATA_INTEGRITY_ERROR", msg)
}

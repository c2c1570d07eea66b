package shared

import "errors"

// Error codes. The HTTP layer maps each code to a status.
const (
	CodeNotFound            = "NOT_FOUND"
	CodeAlreadyExists       = "ALREADY_EXISTS"
	CodeInvalidInput        = "INVALID_INPUT"
	CodeInsufficientStock   = "INSUFFICIENT_STOCK"
	CodeQuantityMismatch    = "QUANTITY_MISMATCH"
	CodeConcurrencyConflict = "CONCURRENCY_CONFLICT"
	CodeOptimisticLock      = "OPTIMISTIC_LOCK_FAILED"
	CodeStorageUnavailable  = "STORAGE_UNAVAILABLE"
)

// DomainError is a rule violation reported to the caller as {code, message}.
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// NewDomainError creates a new domain error.
func NewDomainError(code, message string) *DomainError {
	return &DomainError{Code: code, Message: message}
}

func (e *DomainError) Error() string {
	return e.Message
}

// Is matches by code, so a reworded copy still satisfies errors.Is.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	return ok && e.Code == t.Code
}

// WithMessage returns a copy of e carrying message.
func (e *DomainError) WithMessage(message string) *DomainError {
	return &DomainError{Code: e.Code, Message: message}
}

// AsDomainError extracts a DomainError from an error chain.
func AsDomainError(err error) (*DomainError, bool) {
	var de *DomainError
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}

var (
	ErrNotFound            = NewDomainError(CodeNotFound, "Resource not found")
	ErrAlreadyExists       = NewDomainError(CodeAlreadyExists, "Resource already exists")
	ErrInvalidInput        = NewDomainError(CodeInvalidInput, "Invalid input provided")
	ErrInsufficientStock   = NewDomainError(CodeInsufficientStock, "Issued quantity exceeds current stock.")
	ErrConcurrencyConflict = NewDomainError(CodeConcurrencyConflict, "The item is being modified by another request, try again")
	ErrOptimisticLock      = NewDomainError(CodeOptimisticLock, "Resource was modified by another transaction")
)

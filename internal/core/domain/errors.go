package domain

import (
	"errors"
	"fmt"
)

// ErrorKind classifies every failure the core can report. The HTTP boundary
// switches on it to pick a status code.
type ErrorKind int

const (
	KindInternal ErrorKind = iota
	KindValidation
	KindUnauthenticated
	KindForbidden
	KindNotFound
	KindConflict
	KindInsufficientStock
	KindTooManyRequests
)

func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindUnauthenticated:
		return "unauthenticated"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindInsufficientStock:
		return "insufficient_stock"
	case KindTooManyRequests:
		return "too_many_requests"
	default:
		return "internal"
	}
}

// FieldError describes one rejected input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error is the single error type returned by the core services.
type Error struct {
	Kind    ErrorKind
	Message string
	// Fields is set for KindValidation.
	Fields []FieldError
	// Available is set for KindInsufficientStock.
	Available int
}

func (e *Error) Error() string {
	if len(e.Fields) == 0 {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Fields)
}

// Is matches errors of the same kind and message, so a freshly built
// insufficient-stock error still satisfies errors.Is(err, ErrInsufficientStock).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Message == e.Message
}

var (
	ErrInvalidCredentials = &Error{Kind: KindUnauthenticated, Message: "Invalid credentials"}
	ErrMissingToken       = &Error{Kind: KindUnauthenticated, Message: "Access denied. No token provided."}
	ErrInvalidToken       = &Error{Kind: KindUnauthenticated, Message: "Invalid token."}
	ErrTokenExpired       = &Error{Kind: KindUnauthenticated, Message: "Token expired."}
	ErrAccountGone        = &Error{Kind: KindUnauthenticated, Message: "Invalid token. User not found."}
	ErrAuthRequired       = &Error{Kind: KindUnauthenticated, Message: "Authentication required."}
	ErrForbidden          = &Error{Kind: KindForbidden, Message: "Access denied. Admin privileges required."}
	ErrUserExists         = &Error{Kind: KindConflict, Message: "Username already exists"}
	ErrUserNotFound       = &Error{Kind: KindNotFound, Message: "user not found"}
	ErrProductNotFound    = &Error{Kind: KindNotFound, Message: "Sweet not found"}
	ErrInsufficientStock  = &Error{Kind: KindInsufficientStock, Message: "Insufficient stock"}
	ErrTooManyAttempts    = &Error{Kind: KindTooManyRequests, Message: "Too many failed login attempts, try again later"}
	ErrValidation         = &Error{Kind: KindValidation, Message: "Validation failed"}
)

// NewValidationError reports every rejected field at once.
func NewValidationError(fields ...FieldError) *Error {
	return &Error{Kind: KindValidation, Message: ErrValidation.Message, Fields: fields}
}

// NewInsufficientStockError carries the stock that was on hand when the
// purchase was rejected.
func NewInsufficientStockError(available int) *Error {
	return &Error{Kind: KindInsufficientStock, Message: ErrInsufficientStock.Message, Available: available}
}

// KindOf returns the kind of the first *Error in err's chain, or KindInternal.
func KindOf(err error) ErrorKind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindInternal
}

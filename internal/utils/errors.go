package utils

import (
	"errors"
	"fmt"
)

// Common application errors used across services. Handlers map them to HTTP
// statuses; anything not listed here is treated as storage unavailability.
var (
	ErrUnauthorized        = errors.New("UNAUTHORIZED")
	ErrValidation          = errors.New("VALIDATION_ERROR")
	ErrInvalidInput        = errors.New("INVALID_INPUT")
	ErrInvalidProduct      = errors.New("INVALID_PRODUCT")
	ErrProductNotOrderable = errors.New("PRODUCT_NOT_ORDERABLE")
	ErrMarginViolation     = errors.New("MARGIN_VIOLATION")
	ErrNotFound            = errors.New("NOT_FOUND")
	ErrConflict            = errors.New("CONFLICT")
	ErrConfiguration       = errors.New("CONFIGURATION_ERROR")
	ErrDecryption          = errors.New("DECRYPTION_ERROR")
	ErrStorageUnavailable  = errors.New("STORAGE_UNAVAILABLE")
)

// ValidationError carries a caller-facing message for a rejected request.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func (e *ValidationError) Unwrap() error { return ErrValidation }

// Invalid returns a ValidationError with a formatted message.
func Invalid(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// ProductError is a business-rule rejection naming the offending product.
type ProductError struct {
	Kind    error
	Product string
}

func (e *ProductError) Error() string {
	switch e.Kind {
	case ErrInvalidProduct:
		return "Invalid product: " + e.Product
	case ErrProductNotOrderable:
		return "Product has no price: " + e.Product
	case ErrMarginViolation:
		return "partnerUnitPrice must be >= base price for " + e.Product
	}
	return e.Kind.Error() + ": " + e.Product
}

func (e *ProductError) Unwrap() error { return e.Kind }

// MessageError attaches a caller-facing message to one of the sentinels above.
type MessageError struct {
	Kind    error
	Message string
}

func (e *MessageError) Error() string { return e.Message }

func (e *MessageError) Unwrap() error { return e.Kind }

// WithMessage returns kind carrying message as its text.
func WithMessage(kind error, message string) error {
	return &MessageError{Kind: kind, Message: message}
}

// NotFound returns ErrNotFound carrying message.
func NotFound(message string) error {
	return WithMessage(ErrNotFound, message)
}

// Unavailable wraps an underlying storage failure. The cause is kept for
// logging; callers only ever see the generic message.
func Unavailable(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
}

package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError represents an application error with HTTP status code
type AppError struct {
	Code    int          `json:"code"`
	Message string       `json:"message"`
	Errors  []FieldError `json:"errors,omitempty"`
	Err     error        `json:"-"`

	// kind links an error to the class sentinel it belongs to (ErrValidation,
	// ErrOutOfStock, ErrRender) so errors.Is works for freshly built values.
	kind *AppError
}

// FieldError represents a validation error for a specific field
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

// Unwrap returns the underlying cause, if any
func (e *AppError) Unwrap() error {
	return e.Err
}

// Is reports whether e belongs to the class represented by target.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	return ok && e.kind != nil && e.kind == t
}

// Error classes
var (
	ErrValidation = &AppError{Code: http.StatusUnprocessableEntity, Message: "Validation failed"}
	ErrOutOfStock = &AppError{Code: http.StatusConflict, Message: "Out of stock"}
	ErrRender     = &AppError{Code: http.StatusInternalServerError, Message: "Receipt generation failed"}
)

// Common errors
var (
	ErrNotFound           = &AppError{Code: http.StatusNotFound, Message: "Resource not found"}
	ErrUnauthorized       = &AppError{Code: http.StatusUnauthorized, Message: "Unauthorized"}
	ErrForbidden          = &AppError{Code: http.StatusForbidden, Message: "Forbidden"}
	ErrBadRequest         = &AppError{Code: http.StatusBadRequest, Message: "Bad request"}
	ErrInternalServer     = &AppError{Code: http.StatusInternalServerError, Message: "Internal server error"}
	ErrConflict           = &AppError{Code: http.StatusConflict, Message: "Resource already exists"}
	ErrInvalidCredentials = &AppError{Code: http.StatusUnauthorized, Message: "Invalid username or password"}
	ErrWrongPassword      = &AppError{Code: http.StatusUnauthorized, Message: "current password is incorrect"}
	ErrTokenExpired       = &AppError{Code: http.StatusUnauthorized, Message: "Token has expired"}
	ErrInvalidToken       = &AppError{Code: http.StatusUnauthorized, Message: "Invalid token"}
)

// Sale and settings validation failures
var (
	ErrEmptyCart           = &AppError{Code: http.StatusUnprocessableEntity, Message: "empty cart", kind: ErrValidation}
	ErrInsufficientPayment = &AppError{Code: http.StatusUnprocessableEntity, Message: "insufficient payment", kind: ErrValidation}
	ErrPasswordMismatch    = &AppError{Code: http.StatusUnprocessableEntity, Message: "passwords do not match", kind: ErrValidation}
)

// NewAppError creates a new application error
func NewAppError(code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// NewValidationError creates a new validation error
func NewValidationError(fieldErrors []FieldError) *AppError {
	return &AppError{
		Code:    http.StatusUnprocessableEntity,
		Message: "Validation failed",
		Errors:  fieldErrors,
		kind:    ErrValidation,
	}
}

// NewValidationMessage creates a validation error carrying only a message
func NewValidationMessage(message string) *AppError {
	return &AppError{
		Code:    http.StatusUnprocessableEntity,
		Message: message,
		kind:    ErrValidation,
	}
}

// NewOutOfStockError reports that a product cannot cover the requested quantity
func NewOutOfStockError(productID string, requested, available int) *AppError {
	return &AppError{
		Code:    http.StatusConflict,
		Message: fmt.Sprintf("insufficient stock for product %s: requested %d, available %d", productID, requested, available),
		kind:    ErrOutOfStock,
	}
}

// NewRenderError wraps a receipt generation failure for the given rendition
func NewRenderError(mode string, cause error) *AppError {
	return &AppError{
		Code:    http.StatusInternalServerError,
		Message: "failed to generate " + mode + " receipt",
		Err:     cause,
		kind:    ErrRender,
	}
}

// NewNotFoundError creates a not found error with a custom message
func NewNotFoundError(resource string) *AppError {
	return &AppError{
		Code:    http.StatusNotFound,
		Message: resource + " not found",
	}
}

// NewConflictError creates a conflict error with a custom message
func NewConflictError(message string) *AppError {
	return &AppError{
		Code:    http.StatusConflict,
		Message: message,
	}
}

// NewBadRequestError creates a bad request error with a custom message
func NewBadRequestError(message string) *AppError {
	return &AppError{
		Code:    http.StatusBadRequest,
		Message: message,
	}
}

// NewInternalError wraps an unexpected failure, hiding the cause from clients
func NewInternalError(cause error) *AppError {
	return &AppError{
		Code:    http.StatusInternalServerError,
		Message: "Internal server error",
		Err:     cause,
	}
}

// IsAppError checks if an error is an AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// IsValidation reports whether err is a validation failure
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

// GetAppError converts an error to AppError if possible
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return &AppError{
		Code:    http.StatusInternalServerError,
		Message: err.Error(),
	}
}

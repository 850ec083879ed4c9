package errors

import (
	"errors"
	"fmt"
)

// ErrorType classifies errors for propagation decisions: validation and
// business errors reject synchronously, internal/external errors are
// retryable via the recovery sweep.
type ErrorType string

const (
	ErrorTypeValidation ErrorType = "validation"
	ErrorTypeBusiness   ErrorType = "business"
	ErrorTypeInternal   ErrorType = "internal"
	ErrorTypeExternal   ErrorType = "external"
	ErrorTypeNotFound   ErrorType = "not_found"
	ErrorTypeConflict   ErrorType = "conflict"
)

// AppError is a structured application error.
type AppError struct {
	Type       ErrorType      `json:"type"`
	Code       string         `json:"code"`
	Message    string         `json:"message"`
	Details    map[string]any `json:"details,omitempty"`
	Cause      error          `json:"-"`
	Retryable  bool           `json:"retryable"`
	StatusCode int            `json:"status_code"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is lets sentinel AppErrors match wrapped copies by code.
func (e *AppError) Is(target error) bool {
	var appErr *AppError
	if errors.As(target, &appErr) {
		return e.Code == appErr.Code
	}
	return false
}

func (e *AppError) WithCause(cause error) *AppError {
	clone := *e
	clone.Cause = cause
	return &clone
}

func (e *AppError) WithDetails(details map[string]any) *AppError {
	clone := *e
	clone.Details = details
	return &clone
}

// Error constructors

func NewValidationError(code, message string) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Code:       code,
		Message:    message,
		Retryable:  false,
		StatusCode: 400,
	}
}

func NewBusinessError(code, message string) *AppError {
	return &AppError{
		Type:       ErrorTypeBusiness,
		Code:       code,
		Message:    message,
		Retryable:  false,
		StatusCode: 422,
	}
}

func NewNotFoundError(code, resource string) *AppError {
	return &AppError{
		Type:       ErrorTypeNotFound,
		Code:       code,
		Message:    fmt.Sprintf("%s not found", resource),
		Retryable:  false,
		StatusCode: 404,
	}
}

func NewConflictError(code, message string) *AppError {
	return &AppError{
		Type:       ErrorTypeConflict,
		Code:       code,
		Message:    message,
		Retryable:  false,
		StatusCode: 409,
	}
}

func NewInternalError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeInternal,
		Code:       "INTERNAL_ERROR",
		Message:    message,
		Retryable:  true,
		StatusCode: 500,
	}
}

func NewStoreError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeExternal,
		Code:       "STORE_UNAVAILABLE",
		Message:    message,
		Retryable:  true,
		StatusCode: 503,
	}
}

// Auction error taxonomy
var (
	ErrDuplicateRequest  = NewConflictError("DUPLICATE_REQUEST", "an active pickup request already exists for this requester and category")
	ErrRequestNotBidding = NewBusinessError("REQUEST_NOT_BIDDING", "pickup request is not accepting bids")
	ErrVendorNotEligible = NewBusinessError("VENDOR_NOT_ELIGIBLE", "vendor does not collect this waste category")
	ErrInvalidAmount     = NewValidationError("INVALID_AMOUNT", "bid amount must be positive")
	ErrStoreUnavailable  = NewStoreError("persistent store unavailable")
	ErrRequestNotFound   = NewNotFoundError("REQUEST_NOT_FOUND", "pickup request")
	ErrBidNotFound       = NewNotFoundError("BID_NOT_FOUND", "bid")
	ErrVendorNotFound    = NewNotFoundError("VENDOR_NOT_FOUND", "vendor")
	ErrFactoryNotFound   = NewNotFoundError("FACTORY_NOT_FOUND", "factory")
	ErrProfileNotFound   = NewNotFoundError("PROFILE_NOT_FOUND", "requester profile")
)

// Wrap wraps an error with a message using fmt.Errorf with %w.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// IsType checks if an error is of a specific type.
func IsType(err error, errorType ErrorType) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type == errorType
	}
	return false
}

// IsRetryable checks if an error is retryable.
func IsRetryable(err error) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Retryable
	}
	return false
}

// GetStatusCode extracts an HTTP status code from an error.
func GetStatusCode(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.StatusCode
	}
	return 500
}

package apperrors

import "errors"

// AppError represents a classified storage error
type AppError struct {
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
	Code    string `json:"code"`
	err     error
}

// Error codes
const (
	ValidationError    = "VALIDATION_ERROR"
	NotFoundError      = "NOT_FOUND_ERROR"
	AlreadyExistsError = "ALREADY_EXISTS_ERROR"
	ConfigurationError = "CONFIGURATION_FATAL"
	InternalError      = "INTERNAL_ERROR"
)

// Error returns the error message
func (e *AppError) Error() string {
	if e.Details != "" {
		return e.Message + ": " + e.Details
	}
	return e.Message
}

// Unwrap returns the underlying cause, if any
func (e *AppError) Unwrap() error {
	return e.err
}

// Is reports whether target is an AppError carrying the same code and message.
// This lets wrapped copies of a sentinel match the sentinel itself.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code && e.Message == t.Message
}

// NewValidationError creates a new validation error
func NewValidationError(message string) *AppError {
	return &AppError{
		Message: message,
		Code:    ValidationError,
	}
}

// NewNotFoundError creates a new not found error
func NewNotFoundError(message string) *AppError {
	return &AppError{
		Message: message,
		Code:    NotFoundError,
	}
}

// NewAlreadyExistsError creates a new already exists error
func NewAlreadyExistsError(message string) *AppError {
	return &AppError{
		Message: message,
		Code:    AlreadyExistsError,
	}
}

// NewConfigurationError creates a fatal configuration error. Callers must abort initialization.
func NewConfigurationError(message string, err error) *AppError {
	appErr := &AppError{
		Message: message,
		Code:    ConfigurationError,
		err:     err,
	}
	if err != nil {
		appErr.Details = err.Error()
	}
	return appErr
}

// NewInternalError creates a new internal error
func NewInternalError(message string, err error) *AppError {
	appErr := &AppError{
		Message: message,
		Code:    InternalError,
		err:     err,
	}
	if err != nil {
		appErr.Details = err.Error()
	}
	return appErr
}

func hasCode(err error, code string) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// IsValidationError checks if the error is a validation error
func IsValidationError(err error) bool {
	return hasCode(err, ValidationError)
}

// IsNotFoundError checks if the error is a not found error
func IsNotFoundError(err error) bool {
	return hasCode(err, NotFoundError)
}

// IsAlreadyExistsError checks if the error is an already exists error
func IsAlreadyExistsError(err error) bool {
	return hasCode(err, AlreadyExistsError)
}

// IsConfigurationError checks if the error is a fatal configuration error
func IsConfigurationError(err error) bool {
	return hasCode(err, ConfigurationError)
}

// IsInternalError checks if the error is an internal error
func IsInternalError(err error) bool {
	return hasCode(err, InternalError)
}

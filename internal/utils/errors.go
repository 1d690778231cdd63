// Package contextutils provides error handling utilities and standardized error types
// for consistent error management across the feedback application.
package contextutils

import (
	"fmt"
	"strings"
)

// ErrorCode represents a standardized error code for API responses
type ErrorCode string

const (
	// Database error codes

	// ErrorCodeDatabaseConnection indicates a database connection error
	ErrorCodeDatabaseConnection ErrorCode = "DATABASE_CONNECTION_ERROR"
	// ErrorCodeDatabaseQuery indicates a database query error
	ErrorCodeDatabaseQuery ErrorCode = "DATABASE_QUERY_ERROR"
	// ErrorCodeRecordNotFound indicates that a requested record was not found
	ErrorCodeRecordNotFound ErrorCode = "RECORD_NOT_FOUND"
	// ErrorCodeRecordExists indicates that a record already exists (duplicate key)
	ErrorCodeRecordExists ErrorCode = "RECORD_ALREADY_EXISTS"

	// Validation error codes

	// ErrorCodeInvalidInput indicates that the provided input is invalid
	ErrorCodeInvalidInput ErrorCode = "INVALID_INPUT"
	// ErrorCodeMissingRequired indicates that a required field is missing
	ErrorCodeMissingRequired ErrorCode = "MISSING_REQUIRED_FIELD"
	// ErrorCodeInvalidFormat indicates that the input format is invalid
	ErrorCodeInvalidFormat ErrorCode = "INVALID_FORMAT"

	// Token error codes

	// ErrorCodeTokenNotFound indicates an unknown or already-consumed survey token
	ErrorCodeTokenNotFound ErrorCode = "TOKEN_NOT_FOUND"

	// Service error codes

	// ErrorCodeServiceUnavailable indicates that the service is temporarily unavailable
	ErrorCodeServiceUnavailable ErrorCode = "SERVICE_UNAVAILABLE"
	// ErrorCodeTimeout indicates that a request has timed out
	ErrorCodeTimeout ErrorCode = "REQUEST_TIMEOUT"
	// ErrorCodeRateLimit indicates that the rate limit has been exceeded
	ErrorCodeRateLimit ErrorCode = "RATE_LIMIT_EXCEEDED"
	// ErrorCodeInternalError indicates an internal server error
	ErrorCodeInternalError ErrorCode = "INTERNAL_SERVER_ERROR"

	// External dependency error codes

	// ErrorCodeGeneratorUnavailable indicates that the text generation provider is unavailable
	ErrorCodeGeneratorUnavailable ErrorCode = "GENERATOR_UNAVAILABLE"
	// ErrorCodeGeneratorRequestFailed indicates that the generation request failed
	ErrorCodeGeneratorRequestFailed ErrorCode = "GENERATOR_REQUEST_FAILED"
	// ErrorCodeGeneratorResponseInvalid indicates that the generation response is invalid
	ErrorCodeGeneratorResponseInvalid ErrorCode = "GENERATOR_RESPONSE_INVALID"
	// ErrorCodeMailSendFailed indicates that an email could not be delivered
	ErrorCodeMailSendFailed ErrorCode = "MAIL_SEND_FAILED"
	// ErrorCodeMailNotConfigured indicates that the mail transport is not configured
	ErrorCodeMailNotConfigured ErrorCode = "MAIL_NOT_CONFIGURED"
	// ErrorCodeArchiveUploadFailed indicates that the archival upload failed
	ErrorCodeArchiveUploadFailed ErrorCode = "ARCHIVE_UPLOAD_FAILED"
	// ErrorCodeArchiveNotConfigured indicates that archival storage is not configured
	ErrorCodeArchiveNotConfigured ErrorCode = "ARCHIVE_NOT_CONFIGURED"
)

// SeverityLevel represents the severity of an error for logging and monitoring
type SeverityLevel string

const (
	// SeverityDebug indicates debug-level errors for development
	SeverityDebug SeverityLevel = "debug"
	// SeverityInfo indicates informational errors
	SeverityInfo SeverityLevel = "info"
	// SeverityWarn indicates warning-level errors
	SeverityWarn SeverityLevel = "warn"
	// SeverityError indicates error-level issues
	SeverityError SeverityLevel = "error"
	// SeverityFatal indicates fatal errors that require immediate attention
	SeverityFatal SeverityLevel = "fatal"
)

// AppError represents a structured error with code, severity, and context
type AppError struct {
	Code     ErrorCode
	Severity SeverityLevel
	Message  string
	Details  string
	Cause    error
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s - %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is implements error comparison for errors.Is
func (e *AppError) Is(target error) bool {
	if appErr, ok := target.(*AppError); ok {
		return e.Code == appErr.Code
	}
	return false
}

// Error types for consistent error handling with associated codes and severity
var (
	// Database errors
	ErrDatabaseConnection = &AppError{
		Code:     ErrorCodeDatabaseConnection,
		Severity: SeverityError,
		Message:  "Database connection failed",
	}

	ErrDatabaseQuery = &AppError{
		Code:     ErrorCodeDatabaseQuery,
		Severity: SeverityError,
		Message:  "Database query failed",
	}

	ErrRecordNotFound = &AppError{
		Code:     ErrorCodeRecordNotFound,
		Severity: SeverityInfo,
		Message:  "Record not found",
	}

	ErrRecordExists = &AppError{
		Code:     ErrorCodeRecordExists,
		Severity: SeverityInfo,
		Message:  "Record already exists",
	}

	// Validation errors
	ErrInvalidInput = &AppError{
		Code:     ErrorCodeInvalidInput,
		Severity: SeverityWarn,
		Message:  "Invalid input",
	}

	ErrMissingRequired = &AppError{
		Code:     ErrorCodeMissingRequired,
		Severity: SeverityWarn,
		Message:  "Missing required field",
	}

	ErrInvalidFormat = &AppError{
		Code:     ErrorCodeInvalidFormat,
		Severity: SeverityWarn,
		Message:  "Invalid format",
	}

	// Token errors. The message deliberately does not distinguish a token
	// that never existed from one that was already consumed.
	ErrTokenNotFound = &AppError{
		Code:     ErrorCodeTokenNotFound,
		Severity: SeverityInfo,
		Message:  "Invalid or expired token",
	}

	// Service errors
	ErrServiceUnavailable = &AppError{
		Code:     ErrorCodeServiceUnavailable,
		Severity: SeverityError,
		Message:  "Service unavailable",
	}

	ErrTimeout = &AppError{
		Code:     ErrorCodeTimeout,
		Severity: SeverityWarn,
		Message:  "Request timeout",
	}

	ErrRateLimit = &AppError{
		Code:     ErrorCodeRateLimit,
		Severity: SeverityWarn,
		Message:  "Rate limit exceeded",
	}

	ErrInternalError = &AppError{
		Code:     ErrorCodeInternalError,
		Severity: SeverityError,
		Message:  "Internal server error",
	}

	// External dependency errors
	ErrGeneratorUnavailable = &AppError{
		Code:     ErrorCodeGeneratorUnavailable,
		Severity: SeverityWarn,
		Message:  "Text generation provider unavailable",
	}

	ErrGeneratorRequestFailed = &AppError{
		Code:     ErrorCodeGeneratorRequestFailed,
		Severity: SeverityWarn,
		Message:  "Text generation request failed",
	}

	ErrGeneratorResponseInvalid = &AppError{
		Code:     ErrorCodeGeneratorResponseInvalid,
		Severity: SeverityWarn,
		Message:  "Text generation response invalid",
	}

	ErrMailSendFailed = &AppError{
		Code:     ErrorCodeMailSendFailed,
		Severity: SeverityWarn,
		Message:  "Email delivery failed",
	}

	ErrMailNotConfigured = &AppError{
		Code:     ErrorCodeMailNotConfigured,
		Severity: SeverityInfo,
		Message:  "Email transport not configured",
	}

	ErrArchiveUploadFailed = &AppError{
		Code:     ErrorCodeArchiveUploadFailed,
		Severity: SeverityWarn,
		Message:  "Archival upload failed",
	}

	ErrArchiveNotConfigured = &AppError{
		Code:     ErrorCodeArchiveNotConfigured,
		Severity: SeverityInfo,
		Message:  "Archival storage not configured",
	}
)

// NewAppError creates a new AppError with the given parameters
func NewAppError(code ErrorCode, severity SeverityLevel, message, details string) *AppError {
	return &AppError{
		Code:     code,
		Severity: severity,
		Message:  message,
		Details:  details,
	}
}

// NewAppErrorWithCause creates a new AppError with an underlying cause
func NewAppErrorWithCause(code ErrorCode, severity SeverityLevel, message, details string, cause error) *AppError {
	return &AppError{
		Code:     code,
		Severity: severity,
		Message:  message,
		Details:  details,
		Cause:    cause,
	}
}

// WrapError wraps an error with additional context, preserving AppError structure if possible
func WrapError(err error, context string) error {
	if err == nil {
		return nil
	}

	if appErr, ok := err.(*AppError); ok {
		return &AppError{
			Code:     appErr.Code,
			Severity: appErr.Severity,
			Message:  context,
			Details:  appErr.Error(),
			Cause:    appErr,
		}
	}

	return &AppError{
		Code:     ErrorCodeInternalError,
		Severity: SeverityError,
		Message:  context,
		Details:  err.Error(),
		Cause:    err,
	}
}

// WrapErrorf wraps an error with formatted context, preserving AppError structure if possible
func WrapErrorf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}

	// Handle %w verb for error wrapping by using fmt.Errorf
	if strings.Contains(format, "%w") {
		wrappedErr := fmt.Errorf(format, args...)

		if appErr, ok := err.(*AppError); ok {
			return &AppError{
				Code:     appErr.Code,
				Severity: appErr.Severity,
				Message:  wrappedErr.Error(),
				Details:  appErr.Error(),
				Cause:    wrappedErr,
			}
		}

		return &AppError{
			Code:     ErrorCodeInternalError,
			Severity: SeverityError,
			Message:  wrappedErr.Error(),
			Details:  err.Error(),
			Cause:    wrappedErr,
		}
	}

	context := fmt.Sprintf(format, args...)
	if appErr, ok := err.(*AppError); ok {
		return &AppError{
			Code:     appErr.Code,
			Severity: appErr.Severity,
			Message:  context,
			Details:  appErr.Error(),
			Cause:    appErr,
		}
	}

	return &AppError{
		Code:     ErrorCodeInternalError,
		Severity: SeverityError,
		Message:  context,
		Details:  err.Error(),
		Cause:    err,
	}
}

// ErrorWithContextf creates a new error with formatted context
func ErrorWithContextf(format string, args ...interface{}) error {
	return &AppError{
		Code:     ErrorCodeInternalError,
		Severity: SeverityError,
		Message:  fmt.Sprintf(format, args...),
	}
}

// IsError checks whether err matches the target AppError by code
func IsError(err error, target *AppError) bool {
	for err != nil {
		if appErr, ok := err.(*AppError); ok && appErr.Code == target.Code {
			return true
		}
		unwrapped, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = unwrapped.Unwrap()
	}
	return false
}

// GetErrorCode extracts the error code from an error, defaulting to internal error
func GetErrorCode(err error) ErrorCode {
	if appErr, ok := err.(*AppError); ok {
		return appErr.Code
	}
	return ErrorCodeInternalError
}

// GetErrorSeverity extracts the severity from an error, defaulting to error level
func GetErrorSeverity(err error) SeverityLevel {
	if appErr, ok := err.(*AppError); ok {
		return appErr.Severity
	}
	return SeverityError
}

// IsRetryable reports whether the caller may reasonably retry the failed operation
func IsRetryable(err error) bool {
	switch GetErrorCode(err) {
	case ErrorCodeTimeout, ErrorCodeServiceUnavailable, ErrorCodeRateLimit,
		ErrorCodeDatabaseConnection, ErrorCodeGeneratorUnavailable:
		return true
	default:
		return false
	}
}

// ToJSON converts the AppError to a JSON-serializable map for API responses
func (e *AppError) ToJSON() map[string]interface{} {
	result := map[string]interface{}{
		"code":    string(e.Code),
		"message": e.Message,
	}
	if e.Details != "" {
		result["details"] = e.Details
	}
	return result
}

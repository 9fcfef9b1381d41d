package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorCode is the kind of failure. Callers branch on it.
type ErrorCode string

const (
	ErrCodeNotFound             ErrorCode = "NOT_FOUND"
	ErrCodeConflict             ErrorCode = "CONFLICT"
	ErrCodeReferentialViolation ErrorCode = "REFERENTIAL_VIOLATION"
	ErrCodeInvalidState         ErrorCode = "INVALID_STATE"
	ErrCodeValidationFailed     ErrorCode = "VALIDATION_FAILED"
	ErrCodeStoreUnavailable     ErrorCode = "STORE_UNAVAILABLE"
	ErrCodeUnauthorized         ErrorCode = "UNAUTHORIZED"
	ErrCodeForbidden            ErrorCode = "FORBIDDEN"
	ErrCodeRateLimited          ErrorCode = "RATE_LIMITED"
	ErrCodeInternal             ErrorCode = "INTERNAL_ERROR"
)

// Reason is a stable, machine readable sub-code that narrows down an ErrorCode.
type Reason string

const (
	ReasonItemNotFound       Reason = "ItemNotFound"
	ReasonUserNotFound       Reason = "UserNotFound"
	ReasonRoleNotFound       Reason = "RoleNotFound"
	ReasonTitleExists        Reason = "TitleExists"
	ReasonRoleExists         Reason = "RoleExists"
	ReasonUserNameExists     Reason = "UserNameExists"
	ReasonEmailExists        Reason = "EmailExists"
	ReasonNoRolesProvided    Reason = "NoRolesProvided"
	ReasonRoleInUse          Reason = "RoleInUse"
	ReasonInvalidCredentials Reason = "InvalidCredentials"
)

// Error represents a structured error with code, reason, message, and optional details
type Error struct {
	Code    ErrorCode              // Kind of failure
	Reason  Reason                 // Optional sub-code
	Message string                 // Human-readable error message
	Details map[string]interface{} // Optional additional details
	Err     error                  // Wrapped underlying error
}

// Error implements the error interface
func (e *Error) Error() string {
	label := string(e.Code)
	if e.Reason != "" {
		label += "/" + string(e.Reason)
	}
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", label, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", label, e.Message)
}

// Unwrap returns the wrapped error for errors.Is and errors.As
func (e *Error) Unwrap() error {
	return e.Err
}

// WithDetail adds a detail to the error
func (e *Error) WithDetail(key string, value interface{}) *Error {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// WithDetails adds multiple details to the error
func (e *Error) WithDetails(details map[string]interface{}) *Error {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	for k, v := range details {
		e.Details[k] = v
	}
	return e
}

// HTTPStatusCode returns the appropriate HTTP status code for this error
func (e *Error) HTTPStatusCode() int {
	// Duplicate titles surface as a bad request, every other conflict as 409.
	if e.Code == ErrCodeConflict && e.Reason == ReasonTitleExists {
		return http.StatusBadRequest
	}
	return MapErrorCodeToHTTPStatus(e.Code)
}

// New creates a new Error with the given code and message
func New(code ErrorCode, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
	}
}

// Newf creates a new Error with formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap wraps an existing error with code and message
func Wrap(err error, code ErrorCode, message string) *Error {
	if err == nil {
		return nil
	}
	return &Error{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// IsCode checks if an error has a specific error code
func IsCode(err error, code ErrorCode) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// IsReason checks if an error carries a specific reason
func IsReason(err error, reason Reason) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Reason == reason
	}
	return false
}

// GetCode extracts the error code from an error
// Returns ErrCodeInternal if the error is not a structured Error
func GetCode(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ErrCodeInternal
}

// GetReason extracts the reason from an error, or "" when there is none.
func GetReason(err error) Reason {
	var e *Error
	if errors.As(err, &e) {
		return e.Reason
	}
	return ""
}

// GetDetails extracts the details from an error
// Returns nil if the error is not a structured Error
func GetDetails(err error) map[string]interface{} {
	var e *Error
	if errors.As(err, &e) {
		return e.Details
	}
	return nil
}

// MapErrorCodeToHTTPStatus maps error codes to HTTP status codes
func MapErrorCodeToHTTPStatus(code ErrorCode) int {
	switch code {
	case ErrCodeValidationFailed, ErrCodeReferentialViolation, ErrCodeInvalidState:
		return http.StatusBadRequest
	case ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case ErrCodeForbidden:
		return http.StatusForbidden
	case ErrCodeNotFound:
		return http.StatusNotFound
	case ErrCodeConflict:
		return http.StatusConflict
	case ErrCodeStoreUnavailable:
		return http.StatusServiceUnavailable
	case ErrCodeRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

func withReason(code ErrorCode, reason Reason, message string) *Error {
	return &Error{Code: code, Reason: reason, Message: message}
}

// NotFound creates a "not found" error
func NotFound(reason Reason, message string) *Error {
	return withReason(ErrCodeNotFound, reason, message)
}

// Conflict creates a uniqueness conflict error
func Conflict(reason Reason, message string) *Error {
	return withReason(ErrCodeConflict, reason, message)
}

// ReferentialViolation creates an error for a reference to something that does not exist
func ReferentialViolation(reason Reason, message string) *Error {
	return withReason(ErrCodeReferentialViolation, reason, message)
}

// InvalidState creates an error for an operation that would leave an invalid state
func InvalidState(reason Reason, message string) *Error {
	return withReason(ErrCodeInvalidState, reason, message)
}

// ValidationFailed creates a "validation failed" error
func ValidationFailed(details map[string]interface{}) *Error {
	return New(ErrCodeValidationFailed, "validation failed").WithDetails(details)
}

// StoreUnavailable wraps a storage failure
func StoreUnavailable(err error) *Error {
	return Wrap(err, ErrCodeStoreUnavailable, "store unavailable")
}

// Unauthorized creates an "unauthorized" error
func Unauthorized(reason Reason, message string) *Error {
	return withReason(ErrCodeUnauthorized, reason, message)
}

// Forbidden creates a "forbidden" error
func Forbidden(message string) *Error {
	return New(ErrCodeForbidden, message)
}

// RateLimited creates a "too many requests" error
func RateLimited(message string) *Error {
	return New(ErrCodeRateLimited, message)
}

// Internal creates an "internal error"
func Internal(message string) *Error {
	return New(ErrCodeInternal, message)
}

// InternalWrap wraps an internal error
func InternalWrap(err error, message string) *Error {
	return Wrap(err, ErrCodeInternal, message)
}

// Ensure returns err unchanged when it is already structured and wraps
// anything else as a store failure. Nil stays nil.
func Ensure(err error) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	return StoreUnavailable(err)
}

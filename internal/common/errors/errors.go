package errors

import (
	"fmt"
	"net/http"
	"time"
)

// ErrorCode identifies the kind of failure.
type ErrorCode string

const (
	// Client-side failures of a backend call
	ErrCodeMissingCredentials ErrorCode = "MISSING_CREDENTIALS"
	ErrCodeHTTP               ErrorCode = "HTTP_ERROR"
	ErrCodeEmptyBody          ErrorCode = "EMPTY_BODY"
	ErrCodeTransport          ErrorCode = "TRANSPORT_ERROR"
	ErrCodeDecode             ErrorCode = "DECODE_ERROR"
	ErrCodeStorage            ErrorCode = "STORAGE_ERROR"

	// General
	ErrCodeInternal        ErrorCode = "INTERNAL_ERROR"
	ErrCodeValidation      ErrorCode = "VALIDATION_ERROR"
	ErrCodeNotFound        ErrorCode = "NOT_FOUND"
	ErrCodeUnauthorized    ErrorCode = "UNAUTHORIZED"
	ErrCodeForbidden       ErrorCode = "FORBIDDEN"
	ErrCodeConflict        ErrorCode = "CONFLICT"
	ErrCodeTooManyRequests ErrorCode = "TOO_MANY_REQUESTS"
	ErrCodeTooLarge        ErrorCode = "PAYLOAD_TOO_LARGE"
	ErrCodeBadRequest      ErrorCode = "BAD_REQUEST"

	// Game rules enforced by the backend
	ErrCodeLocked            ErrorCode = "LOCKED"
	ErrCodeNotEnoughXP       ErrorCode = "NOT_ENOUGH_EXPERIENCE"
	ErrCodeOutfitNotUnlocked ErrorCode = "OUTFIT_NOT_UNLOCKED"
)

// AppError is the typed error shared by the client and the dev backend.
type AppError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   map[string]interface{} `json:"details,omitempty"`
	Context   map[string]string      `json:"context,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	RequestID string                 `json:"request_id,omitempty"`
	UserID    string                 `json:"user_id,omitempty"`
	Cause     error                  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is matches on code so callers can use errors.Is with the sentinel values below.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

func (e *AppError) IsNotFound() bool {
	return e.Code == ErrCodeNotFound
}

func (e *AppError) IsValidation() bool {
	return e.Code == ErrCodeValidation || e.Code == ErrCodeBadRequest
}

func (e *AppError) IsUnauthorized() bool {
	return e.Code == ErrCodeUnauthorized || e.Code == ErrCodeForbidden || e.Code == ErrCodeMissingCredentials
}

func (e *AppError) IsInternal() bool {
	return e.Code == ErrCodeInternal || e.Code == ErrCodeStorage
}

// Status returns the HTTP status carried by an HTTP_ERROR, or 0.
func (e *AppError) Status() int {
	if e.Details == nil {
		return 0
	}
	switch v := e.Details["status"].(type) {
	case int:
		return v
	case float64:
		return int(v)
	}
	return 0
}

// WithContext adds a string context entry.
func (e *AppError) WithContext(key, value string) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]string)
	}
	e.Context[key] = value
	return e
}

// WithDetail adds a detail entry.
func (e *AppError) WithDetail(key string, value interface{}) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

func (e *AppError) WithRequestID(requestID string) *AppError {
	e.RequestID = requestID
	return e
}

func (e *AppError) WithUserID(userID string) *AppError {
	e.UserID = userID
	return e
}

// New creates an application error.
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:      code,
		Message:   message,
		Timestamp: time.Now(),
	}
}

// Wrap wraps err with a code and message.
func Wrap(err error, code ErrorCode, message string) *AppError {
	appErr := New(code, message)
	appErr.Cause = err
	return appErr
}

// Sentinels for errors.Is comparisons.
var (
	ErrMissingCredentials = &AppError{Code: ErrCodeMissingCredentials, Message: "Not signed in"}
	ErrNotFound           = &AppError{Code: ErrCodeNotFound, Message: "Not found"}
	ErrUnauthorized       = &AppError{Code: ErrCodeUnauthorized, Message: "Unauthorized"}
)

// NewMissingCredentialsError is returned when no token or provider id is stored locally.
func NewMissingCredentialsError() *AppError {
	return New(ErrCodeMissingCredentials, "Not signed in: no stored credentials")
}

// NewHTTPError describes a non-2xx response.
func NewHTTPError(status int, message string) *AppError {
	if message == "" {
		message = http.StatusText(status)
	}
	if message == "" {
		message = fmt.Sprintf("Request failed with status %d", status)
	}
	return New(ErrCodeHTTP, message).WithDetail("status", status)
}

func NewEmptyBodyError(path string) *AppError {
	return New(ErrCodeEmptyBody, "Server returned an empty response").WithDetail("path", path)
}

func NewTransportError(err error) *AppError {
	return Wrap(err, ErrCodeTransport, err.Error())
}

func NewValidationError(field, reason string) *AppError {
	return New(ErrCodeValidation, fmt.Sprintf("Validation failed for field '%s': %s", field, reason)).
		WithDetail("field", field).
		WithDetail("reason", reason)
}

func NewNotFoundError(resource, id interface{}) *AppError {
	return New(ErrCodeNotFound, fmt.Sprintf("%s not found", resource)).
		WithDetail("resource", resource).
		WithDetail("id", id)
}

func NewUnauthorizedError(reason string) *AppError {
	return New(ErrCodeUnauthorized, fmt.Sprintf("Unauthorized: %s", reason)).
		WithDetail("reason", reason)
}

func NewStorageError(operation string, err error) *AppError {
	return Wrap(err, ErrCodeStorage, fmt.Sprintf("Local storage operation failed: %s", operation)).
		WithDetail("operation", operation)
}

// IsAppError reports whether err is an *AppError.
func IsAppError(err error) bool {
	_, ok := AsAppError(err)
	return ok
}

// AsAppError unwraps err to an *AppError.
func AsAppError(err error) (*AppError, bool) {
	for err != nil {
		if appErr, ok := err.(*AppError); ok {
			return appErr, true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return nil, false
		}
		err = u.Unwrap()
	}
	return nil, false
}

// Message returns the human-readable text of err for display.
func Message(err error) string {
	if err == nil {
		return ""
	}
	if appErr, ok := AsAppError(err); ok {
		return appErr.Message
	}
	return err.Error()
}

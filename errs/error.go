package errs

import (
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"
)

// Application error codes. They are mapped to HTTP responses at the handler boundary.
const (
	ECONFLICT        = "conflict"
	EINTERNAL        = "internal"
	EINVALID         = "invalid"
	ENOTFOUND        = "not_found"
	EUNAUTHORIZED    = "unauthorized"
	EUNAUTHENTICATED = "unauthenticated"
)

const (
	// IdInvalid is returned when an ID lower than 1 is passed to a service.
	IdInvalid privateError = "models: ID provided was invalid"
	// UserIdValid is returned when a record is about to be stored without an owning user.
	UserIdValid privateError = "models: user ID is required"
	// RememberTooShort is returned when a remember token is not at least 32 bytes.
	RememberTooShort privateError = "models: remember token must be at least 32 bytes"
	// RememberHashEmpty is returned when a user is stored without a remember token hash.
	RememberHashEmpty privateError = "models: remember token hash is required"
)

// privateError is an internal failure whose message is never shown to users.
type privateError string

func (e privateError) Error() string {
	return string(e)
}

// Error represents an application-specific error. Its Message is safe to show
// to end users; any other error is considered internal.
type Error struct {
	// Machine-readable error code.
	Code string
	// Human-readable error message.
	Message string
	// Field the error refers to, if any. Used to attach messages to form fields.
	Field string
}

// Error implements the error interface. Not used by the application otherwise.
func (e *Error) Error() string {
	return fmt.Sprintf("yatube error: code=%s message=%s", e.Code, e.Message)
}

// Errorf is a helper function to return an Error with a given code and formatted message.
func Errorf(code string, format string, args ...interface{}) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// FieldErrorf is like Errorf but ties the message to a form field.
func FieldErrorf(code, field, format string, args ...interface{}) *Error {
	e := Errorf(code, format, args...)
	e.Field = field
	return e
}

// ErrorCode unwraps an application error and returns its code.
// Non-application errors always return EINTERNAL.
func ErrorCode(err error) string {
	var e *Error
	if err == nil {
		return ""
	} else if errors.As(err, &e) {
		return e.Code
	}
	return EINTERNAL
}

// ErrorMessage unwraps an application error and returns its message.
// Non-application errors always return "Internal error."
func ErrorMessage(err error) string {
	var e *Error
	if err == nil {
		return ""
	} else if errors.As(err, &e) {
		return e.Message
	}
	return "Internal error."
}

// ErrorField returns the form field an application error refers to, or "".
func ErrorField(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Field
	}
	return ""
}

// codes maps application error codes to HTTP status codes.
var codes = map[string]int{
	ECONFLICT:        http.StatusConflict,
	EINVALID:         http.StatusBadRequest,
	ENOTFOUND:        http.StatusNotFound,
	EUNAUTHORIZED:    http.StatusForbidden,
	EUNAUTHENTICATED: http.StatusUnauthorized,
	EINTERNAL:        http.StatusInternalServerError,
}

// StatusCode returns the HTTP status code belonging to the error's code.
func StatusCode(err error) int {
	if status, ok := codes[ErrorCode(err)]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// ReturnError writes a plain text error response. Internal errors are logged
// and never leak their message to the client.
func ReturnError(w http.ResponseWriter, r *http.Request, err error) {
	code, message := ErrorCode(err), ErrorMessage(err)
	if code == EINTERNAL {
		LogError(r, err)
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(StatusCode(err))
	_, _ = w.Write([]byte(message + "\n"))
}

// LogError logs an error together with the request that caused it.
func LogError(r *http.Request, err error) {
	zap.L().Error("request failed",
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Error(err),
	)
}

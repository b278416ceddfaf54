package errors

import (
	"errors"
	"fmt"
)

// ErrorType represents the category of a failure
type ErrorType string

const (
	ErrorTypeNetwork      ErrorType = "network"
	ErrorTypeStatus       ErrorType = "status"
	ErrorTypeNotFound     ErrorType = "not_found"
	ErrorTypeParsing      ErrorType = "parsing"
	ErrorTypeInvalidInput ErrorType = "invalid_input"
	ErrorTypeFilesystem   ErrorType = "filesystem"
	ErrorTypeUnknown      ErrorType = "unknown"
)

// Sentinels callers match with errors.Is
var (
	// ErrLookupFailed means the vanity name could not be mapped to a user ID
	ErrLookupFailed = errors.New("could not retrieve user information")

	// ErrFetchFailed means an archive record could not be retrieved
	ErrFetchFailed = errors.New("could not retrieve user data")

	// ErrInvalidInput means the caller passed something unusable
	ErrInvalidInput = errors.New("invalid input")
)

// Error represents a failed operation with type information
type Error struct {
	Type    ErrorType
	Op      string
	Message string
	Code    int
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if e.Code != 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.Code)
	}
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap returns the wrapped cause
func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a typed error
func New(errType ErrorType, op, message string, cause error) *Error {
	return &Error{
		Type:    errType,
		Op:      op,
		Message: message,
		Err:     cause,
	}
}

// StatusError builds the error returned for a non-200 response.
// sentinel is ErrLookupFailed or ErrFetchFailed.
func StatusError(op string, code int, sentinel error) *Error {
	errType := ErrorTypeStatus
	if code == 404 {
		errType = ErrorTypeNotFound
	}
	return &Error{
		Type:    errType,
		Op:      op,
		Message: "unexpected response",
		Code:    code,
		Err:     sentinel,
	}
}

// TypeOf returns the type of the first *Error in the chain
func TypeOf(err error) ErrorType {
	var e *Error
	if errors.As(err, &e) {
		return e.Type
	}
	return ErrorTypeUnknown
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// Join wraps the standard library errors.Join
func Join(errs ...error) error {
	return errors.Join(errs...)
}

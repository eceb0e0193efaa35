package grimoire

import (
	"errors"
	"fmt"
)

// Application error codes.
//
// These are meant to be a coarse classification that survives wrapping,
// so callers can branch on the class of failure without string matching.
const (
	ECANCELED    = "canceled"    // operation stopped by cancellation
	ECONFLICT    = "conflict"    // action conflicts with current state
	ECORRUPT     = "corrupt"     // persisted data failed to parse
	EINTERNAL    = "internal"    // unexpected internal error
	EINVALID     = "invalid"     // validation failed or remote rejected
	ENOTFOUND    = "not_found"   // entity does not exist
	EUNAVAILABLE = "unavailable" // transient transport or remote failure
)

// Error represents an application error with a machine-readable code and
// a human-readable message.
type Error struct {
	// Code is one of the application error code constants above.
	Code string

	// Message is a human-readable description of the error.
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("grimoire error: code=%s message=%s", e.Code, e.Message)
}

// ErrorCode unwraps an application error and returns its code.
// Non-application errors return EINTERNAL; nil returns an empty string.
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
// Non-application errors return a generic message; nil returns "".
func ErrorMessage(err error) string {
	var e *Error
	if err == nil {
		return ""
	} else if errors.As(err, &e) {
		return e.Message
	}
	return "Internal error."
}

// Errorf is a helper to construct an Error with formatting.
func Errorf(code string, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}
